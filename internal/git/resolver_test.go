package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	repo    bool
	remotes string
	initErr error
	inits   int
}

func (f *fakeGit) Remotes(string) (string, error) {
	if !f.repo {
		return "", ErrNotRepository
	}
	return f.remotes, nil
}

func (f *fakeGit) RemoteURL(string) (string, error) {
	return ExtractOriginURL(f.remotes), nil
}

func (f *fakeGit) Init(string) error {
	f.inits++
	if f.initErr != nil {
		return f.initErr
	}
	f.repo = true
	return nil
}

type fakeGH struct {
	authErr   error
	createOut string
	createErr error
	created   []string
}

func (f *fakeGH) AuthStatus(string) error { return f.authErr }

func (f *fakeGH) CreateRepo(_, name string) (string, error) {
	f.created = append(f.created, name)
	return f.createOut, f.createErr
}

func TestResolve_ExistingOrigin(t *testing.T) {
	g := &fakeGit{repo: true, remotes: "origin\tgit@github.com:acme/shop.git (fetch)\norigin\tgit@github.com:acme/shop.git (push)"}
	gh := &fakeGH{}

	res, err := NewResolver(g, gh).Resolve("/tmp/shop", "shop")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:acme/shop.git", res.URL)
	assert.False(t, res.Initialized)
	assert.False(t, res.Created)
	assert.Empty(t, gh.created)
}

func TestResolve_InitializesAndCreates(t *testing.T) {
	g := &fakeGit{}
	gh := &fakeGH{createOut: "https://github.com/acme/shop"}

	res, err := NewResolver(g, gh).Resolve("/tmp/shop", "shop")
	require.NoError(t, err)
	assert.Equal(t, 1, g.inits)
	assert.True(t, res.Initialized)
	assert.True(t, res.Created)
	assert.Equal(t, "https://github.com/acme/shop", res.URL)
	assert.Equal(t, []string{"shop"}, gh.created)
}

func TestResolve_CreateFallbackURL(t *testing.T) {
	g := &fakeGit{repo: true}
	gh := &fakeGH{createOut: "created"}

	res, err := NewResolver(g, gh).Resolve("/tmp/shop", "shop")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/shop", res.URL)
}

func TestResolve_NotAuthenticated(t *testing.T) {
	g := &fakeGit{repo: true}
	gh := &fakeGH{authErr: ErrGHNotAuthenticated}

	_, err := NewResolver(g, gh).Resolve("/tmp/shop", "shop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGHNotAuthenticated))
	assert.Empty(t, gh.created)
}

func TestResolve_GHNotInstalled(t *testing.T) {
	g := &fakeGit{repo: true}
	gh := &fakeGH{createErr: ErrGHNotInstalled}

	_, err := NewResolver(g, gh).Resolve("/tmp/shop", "shop")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGHNotInstalled))
}

func TestResolve_InitFails(t *testing.T) {
	g := &fakeGit{initErr: errors.New("permission denied")}

	_, err := NewResolver(g, &fakeGH{}).Resolve("/tmp/shop", "shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize repository")
}
