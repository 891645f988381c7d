package monorepo

import "path/filepath"

// Option configures Classify.
type Option func(*options)

type options struct {
	heuristicFallback bool
	reporter          Reporter
}

// WithHeuristicFallback controls whether candidate groups without any
// workspace signal still produce a multi-app result. Enabled by default.
func WithHeuristicFallback(enabled bool) Option {
	return func(o *options) { o.heuristicFallback = enabled }
}

// WithReporter sets where progress messages go.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// NewRoot returns the Root for rootPath, resolved to an absolute path when possible.
func NewRoot(rootPath string) Root {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}
	return Root{Path: abs, Name: filepath.Base(abs)}
}

// Classify inspects rootPath and decides how many applications it holds.
// It never fails: unreadable entries are skipped and reported.
func Classify(rootPath string, opts ...Option) Result {
	o := options{heuristicFallback: true, reporter: nopReporter{}}
	for _, opt := range opts {
		opt(&o)
	}

	ev := Gather(NewRoot(rootPath), o.reporter)
	res := Decide(ev, o.heuristicFallback)

	o.reporter.VerboseLog("Config indicators found: %d", len(ev.Signals))
	o.reporter.VerboseLog("Directory groups found: %d", len(ev.Groups))
	o.reporter.VerboseLog("Total potential applications: %d", ev.MemberCount())

	if res.IsMultiApp && res.Confidence == ConfidenceLow {
		o.reporter.Warning("Found structured directories but no monorepo config files")
		o.reporter.Warning("This might be a monorepo without proper configuration")
	}
	if !res.IsMultiApp && ev.MemberCount() > 0 {
		o.reporter.Warning("Found structured directories but no monorepo config files, deploying as a single application")
	}
	for _, name := range res.DuplicateNames() {
		o.reporter.Warning("Application name %q appears more than once", name)
	}
	return res
}
