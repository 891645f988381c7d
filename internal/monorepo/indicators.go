package monorepo

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type configIndicator struct {
	file string
	tool string
}

// configIndicators are root files that mark a workspace toolchain, in scan order.
var configIndicators = []configIndicator{
	{"lerna.json", "Lerna"},
	{"nx.json", "Nx"},
	{"rush.json", "Rush"},
	{"pnpm-workspace.yaml", "PNPM Workspace"},
	{"pnpm-workspace.yml", "PNPM Workspace"},
	{"yarn.lock", "Yarn Workspace (potential)"},
	{"turbo.json", "Turborepo"},
}

// containerDirs are conventional parents of workspace members, in scan order.
var containerDirs = []string{
	"packages", "apps", "projects", "modules", "libs",
	"services", "components", "workspaces", "sites",
}

// appIndicators are entries whose presence marks a directory as an application.
var appIndicators = []string{
	"package.json",
	"index.js",
	"index.ts",
	"src/",
	"next.config.js",
	"next.config.ts",
	"vite.config.js",
	"vite.config.ts",
	"Dockerfile",
}

// probeCandidate returns the candidate for dir with every indicator found in it.
func probeCandidate(dir string) Candidate {
	c := Candidate{Name: filepath.Base(dir), Path: dir}
	for _, ind := range appIndicators {
		name := strings.TrimSuffix(ind, "/")
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if strings.HasSuffix(ind, "/") && !info.IsDir() {
			continue
		}
		c.Indicators = append(c.Indicators, ind)
	}
	return c
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// listDirs returns the sorted names of the non-hidden subdirectories of dir.
// Symlinks are not followed.
func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || skipDir(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// qualifyingChildren probes every subdirectory of dir and keeps the qualifying ones.
func qualifyingChildren(dir string) ([]Candidate, error) {
	names, err := listDirs(dir)
	if err != nil {
		return nil, err
	}
	var out []Candidate
	for _, name := range names {
		if c := probeCandidate(filepath.Join(dir, name)); c.Qualifies() {
			out = append(out, c)
		}
	}
	return out, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
