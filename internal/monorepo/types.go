// Package monorepo classifies a checkout as a single application or a
// repository holding several deployable applications.
package monorepo

import "sort"

// Root is the directory being classified.
type Root struct {
	Path string `json:"path"` // absolute
	Name string `json:"name"` // last path segment
}

// SignalKind distinguishes the two kinds of workspace evidence.
type SignalKind string

const (
	SignalConfigFile        SignalKind = "config_file"
	SignalWorkspaceManifest SignalKind = "workspace_manifest"
)

// Signal is a root-level file indicating a workspace toolchain.
type Signal struct {
	Kind     SignalKind `json:"kind"`
	File     string     `json:"file"`
	Tool     string     `json:"tool"`
	Patterns []string   `json:"patterns,omitempty"`
}

// Candidate is a directory that may hold a deployable application.
type Candidate struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Indicators []string `json:"indicators"`
}

// Qualifies reports whether at least one application indicator was found.
func (c Candidate) Qualifies() bool {
	return len(c.Indicators) > 0
}

// Group is a set of qualifying candidates under one anchor directory.
// Anchor "." means the candidates sit directly under the root.
type Group struct {
	Anchor  string      `json:"anchor"`
	Members []Candidate `json:"members"`
}

// Entry is one application to provision.
type Entry struct {
	Name      string `json:"name"`
	BuildPath string `json:"build_path"` // relative to root, slash-separated
}

// Confidence rates how strongly the evidence supports the decision.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Result is the outcome of classifying a root.
type Result struct {
	Root       Root       `json:"root"`
	IsMultiApp bool       `json:"multi_app"`
	Entries    []Entry    `json:"entries"`
	Confidence Confidence `json:"confidence"`
	Signals    []Signal   `json:"signals"`
	Groups     []Group    `json:"groups"`
}

// DuplicateNames returns entry names that occur more than once, sorted.
// Entries are never renamed; this is for display only.
func (r Result) DuplicateNames() []string {
	counts := make(map[string]int, len(r.Entries))
	for _, e := range r.Entries {
		counts[e.Name]++
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}
