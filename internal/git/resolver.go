package git

import (
	"errors"
	"fmt"
)

// Resolution is the outcome of resolving a checkout's hosted repository.
type Resolution struct {
	URL         string
	Initialized bool // git init was run
	Created     bool // a new hosted repository was created
}

// Resolver finds or creates the hosted repository for a local checkout.
type Resolver struct {
	git Client
	gh  GitHubClient
}

// NewResolver returns a Resolver using the given clients.
func NewResolver(gc Client, gh GitHubClient) *Resolver {
	return &Resolver{git: gc, gh: gh}
}

// Resolve returns the origin URL of the checkout at dir. A directory that is
// not yet a repository is initialized. When no origin exists a public GitHub
// repository named name is created and pushed through the gh CLI.
func (r *Resolver) Resolve(dir, name string) (*Resolution, error) {
	res := &Resolution{}

	remotes, err := r.git.Remotes(dir)
	if errors.Is(err, ErrNotRepository) {
		if err := r.git.Init(dir); err != nil {
			return nil, fmt.Errorf("initialize repository: %w", err)
		}
		res.Initialized = true
		remotes, err = r.git.Remotes(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}

	if url := ExtractOriginURL(remotes); url != "" {
		res.URL = url
		return res, nil
	}

	if err := r.gh.AuthStatus(dir); err != nil {
		return nil, err
	}

	out, err := r.gh.CreateRepo(dir, name)
	if err != nil {
		return nil, fmt.Errorf("create repository %s: %w", name, err)
	}
	res.URL = RepoURLFromOutput(out, name)
	res.Created = true
	return res, nil
}
