package monorepo

import "path"

// Decide turns gathered evidence into a classification. It does no I/O.
//
// Any signal together with at least one non-empty group yields a high
// confidence multi-app result. Groups without signals yield a low confidence
// multi-app result when heuristicFallback is set. Everything else is a
// single application built from the root.
func Decide(ev Evidence, heuristicFallback bool) Result {
	res := Result{
		Root:    ev.Root,
		Signals: ev.Signals,
		Groups:  ev.Groups,
	}

	hasGroups := ev.MemberCount() > 0
	switch {
	case len(ev.Signals) > 0 && hasGroups:
		res.IsMultiApp = true
		res.Confidence = ConfidenceHigh
	case len(ev.Signals) == 0 && hasGroups && heuristicFallback:
		res.IsMultiApp = true
		res.Confidence = ConfidenceLow
	}

	if !res.IsMultiApp {
		res.Confidence = ConfidenceHigh
		if hasGroups {
			res.Confidence = ConfidenceLow
		}
		res.Entries = []Entry{{Name: ev.Root.Name, BuildPath: "."}}
		return res
	}

	for _, g := range ev.Groups {
		for _, m := range g.Members {
			bp := m.Name
			if g.Anchor != "." {
				bp = path.Join(g.Anchor, m.Name)
			}
			res.Entries = append(res.Entries, Entry{Name: m.Name, BuildPath: bp})
		}
	}
	return res
}
