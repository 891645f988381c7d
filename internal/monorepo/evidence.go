package monorepo

import (
	"path/filepath"
	"strings"
)

// Reporter receives progress messages while evidence is gathered.
// *output.UI satisfies it.
type Reporter interface {
	Success(format string, a ...any)
	Warning(format string, a ...any)
	Detail(format string, a ...any)
	VerboseLog(format string, a ...any)
}

type nopReporter struct{}

func (nopReporter) Success(string, ...any)    {}
func (nopReporter) Warning(string, ...any)    {}
func (nopReporter) Detail(string, ...any)     {}
func (nopReporter) VerboseLog(string, ...any) {}

// Evidence is everything observed about a root before a decision is made.
type Evidence struct {
	Root    Root
	Signals []Signal
	Groups  []Group
}

// MemberCount returns the number of candidates across all groups.
func (e Evidence) MemberCount() int {
	n := 0
	for _, g := range e.Groups {
		n += len(g.Members)
	}
	return n
}

// Gather scans root for workspace signals and candidate groups. Read errors
// are reported and skipped; Gather never fails.
func Gather(root Root, rep Reporter) Evidence {
	if rep == nil {
		rep = nopReporter{}
	}
	ev := Evidence{Root: root}
	ev.Signals = gatherSignals(root.Path, rep)
	ev.Groups = gatherGroups(root.Path, rep)
	return ev
}

func gatherSignals(dir string, rep Reporter) []Signal {
	var signals []Signal

	for _, ind := range configIndicators {
		path := filepath.Join(dir, ind.file)
		if !isFile(path) {
			continue
		}
		sig := Signal{Kind: SignalConfigFile, File: ind.file, Tool: ind.tool}
		if strings.HasPrefix(ind.file, "pnpm-workspace.") {
			patterns, err := readPnpmPatterns(path)
			if err != nil {
				rep.Warning("Could not parse %s: %v", ind.file, err)
			}
			sig.Patterns = patterns
		}
		rep.Success("Found %s: %s", ind.tool, ind.file)
		signals = append(signals, sig)
	}

	if path := filepath.Join(dir, "package.json"); isFile(path) {
		ok, patterns, err := readPackageWorkspaces(path)
		switch {
		case err != nil:
			rep.Warning("Could not parse package.json: %v", err)
		case ok:
			rep.Success("Found Yarn/NPM Workspaces in package.json")
			if len(patterns) > 0 {
				rep.Detail("Workspace patterns: %s", strings.Join(patterns, ", "))
			}
			signals = append(signals, Signal{
				Kind:     SignalWorkspaceManifest,
				File:     "package.json",
				Tool:     "Yarn/NPM Workspaces",
				Patterns: patterns,
			})
		}
	}

	if path := filepath.Join(dir, "Cargo.toml"); isFile(path) {
		ok, members, err := readCargoWorkspace(path)
		switch {
		case err != nil:
			rep.Warning("Could not parse Cargo.toml: %v", err)
		case ok:
			rep.Success("Found Cargo Workspace in Cargo.toml")
			signals = append(signals, Signal{
				Kind:     SignalWorkspaceManifest,
				File:     "Cargo.toml",
				Tool:     "Cargo Workspace",
				Patterns: members,
			})
		}
	}

	return signals
}

func gatherGroups(dir string, rep Reporter) []Group {
	var groups []Group

	rootApps, err := qualifyingChildren(dir)
	if err != nil {
		rep.Warning("Could not read %s: %v", dir, err)
	}
	if len(rootApps) > 1 {
		rep.Success("Found %d applications at root level", len(rootApps))
		reportMembers(rep, rootApps)
		groups = append(groups, Group{Anchor: ".", Members: rootApps})
	}

	for _, name := range containerDirs {
		path := filepath.Join(dir, name)
		if !isDir(path) {
			rep.VerboseLog("%s/ not found", name)
			continue
		}
		members, err := qualifyingChildren(path)
		if err != nil {
			rep.Warning("Error reading %s/: %v", name, err)
			continue
		}
		if len(members) == 0 {
			rep.VerboseLog("No applications found in %s/", name)
			continue
		}
		rep.Success("Found %d potential applications in %s/", len(members), name)
		reportMembers(rep, members)
		groups = append(groups, Group{Anchor: name, Members: members})
	}

	return groups
}

func reportMembers(rep Reporter, members []Candidate) {
	for _, m := range members {
		rep.Detail("- %s/ (%s)", m.Name, strings.Join(m.Indicators, ", "))
	}
}
