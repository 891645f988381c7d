package git

import (
	"net/url"
	"regexp"
	"strings"
)

// Unknown is used for an owner or repository that cannot be parsed.
const Unknown = "unknown"

// Remote is the owner/repository pair of a hosted repository.
type Remote struct {
	Owner      string
	Repository string
}

// FullName returns owner/repository.
func (r Remote) FullName() string {
	return r.Owner + "/" + r.Repository
}

var (
	originFetchRe = regexp.MustCompile(`(?m)^origin\s+(\S+)\s+\(fetch\)`)
	githubURLRe   = regexp.MustCompile(`https://github\.com/\S+`)
)

// ExtractOriginURL returns the fetch URL of origin from `git remote -v` output.
func ExtractOriginURL(remotes string) string {
	m := originFetchRe.FindStringSubmatch(remotes)
	if m == nil {
		return ""
	}
	return m[1]
}

// RepoURLFromOutput finds the repository URL printed by `gh repo create`,
// falling back to https://github.com/<name>.
func RepoURLFromOutput(out, name string) string {
	if u := githubURLRe.FindString(out); u != "" {
		return u
	}
	return "https://github.com/" + name
}

// ParseRemote extracts owner and repository from a remote URL. It accepts
// HTTPS, ssh:// and scp-style (git@host:owner/repo) syntaxes with or without
// a .git suffix. Parts that cannot be determined are reported as Unknown.
func ParseRemote(remoteURL string) Remote {
	raw := strings.TrimSpace(remoteURL)
	raw = strings.TrimSuffix(raw, "/")
	raw = strings.TrimSuffix(raw, ".git")

	var path string
	switch {
	case strings.Contains(raw, "://"):
		if u, err := url.Parse(raw); err == nil {
			path = u.Path
		} else {
			path = raw
		}
	case isSCPLike(raw):
		path = raw[strings.Index(raw, ":")+1:]
	default:
		path = raw
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	r := Remote{Owner: Unknown, Repository: Unknown}
	if n := len(segments); n > 0 {
		r.Repository = segments[n-1]
		if n > 1 {
			r.Owner = segments[n-2]
		}
	}
	return r
}

// isSCPLike reports whether s looks like user@host:path.
func isSCPLike(s string) bool {
	colon := strings.Index(s, ":")
	if colon <= 0 {
		return false
	}
	slash := strings.Index(s, "/")
	return slash < 0 || colon < slash
}
