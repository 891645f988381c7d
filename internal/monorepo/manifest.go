package monorepo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// packageJSON holds the fields of a root package.json the classifier reads.
type packageJSON struct {
	Name       string          `json:"name"`
	Workspaces json.RawMessage `json:"workspaces"`
}

// readPackageWorkspaces reports whether the package.json at path declares
// workspaces, and the declared patterns. Both the array form and the
// {"packages": [...]} object form are accepted.
func readPackageWorkspaces(path string) (bool, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	raw := bytes.TrimSpace(pkg.Workspaces)
	switch string(raw) {
	case "", "null", "false", `""`, "0":
		return false, nil, nil
	}

	var patterns []string
	if err := json.Unmarshal(raw, &patterns); err == nil {
		return true, patterns, nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return true, obj.Packages, nil
	}
	return true, nil, nil
}

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// readPnpmPatterns returns the packages globs of a pnpm-workspace file.
func readPnpmPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ws pnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ws.Packages, nil
}

type cargoManifest struct {
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// readCargoWorkspace reports whether the Cargo.toml at path has a
// [workspace] table, and its members.
func readCargoWorkspace(path string) (bool, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil, err
	}
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return false, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if m.Workspace == nil {
		return false, nil, nil
	}
	return true, m.Workspace.Members, nil
}
