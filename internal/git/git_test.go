package git

import (
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo creates a git repo in dir with a user config so commits work on CI.
func initTestRepo(t *testing.T, dir string) {
	t.Helper()
	cmds := [][]string{
		{"git", "-C", dir, "init"},
		{"git", "-C", dir, "config", "user.email", "test@test.com"},
		{"git", "-C", dir, "config", "user.name", "Test"},
	}
	for _, args := range cmds {
		require.NoError(t, exec.Command(args[0], args[1:]...).Run())
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestParseRemote(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		owner string
		repo  string
	}{
		{"https with .git", "https://github.com/joescharf/dokploy-deploy.git", "joescharf", "dokploy-deploy"},
		{"https without .git", "https://github.com/joescharf/dokploy-deploy", "joescharf", "dokploy-deploy"},
		{"ssh scp-style", "git@github.com:joescharf/dokploy-deploy.git", "joescharf", "dokploy-deploy"},
		{"ssh url", "ssh://git@github.com/joescharf/dokploy-deploy.git", "joescharf", "dokploy-deploy"},
		{"trailing slash", "https://github.com/joescharf/dokploy-deploy/", "joescharf", "dokploy-deploy"},
		{"nested path", "https://gitlab.com/group/sub/app.git", "sub", "app"},
		{"bare name", "not-a-url", Unknown, "not-a-url"},
		{"empty", "", Unknown, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseRemote(tt.url)
			assert.Equal(t, tt.owner, r.Owner)
			assert.Equal(t, tt.repo, r.Repository)
		})
	}
}

func TestParseRemote_SyntaxesAgree(t *testing.T) {
	https := ParseRemote("https://github.com/acme/shop.git")
	ssh := ParseRemote("git@github.com:acme/shop.git")
	plain := ParseRemote("https://github.com/acme/shop")

	assert.Equal(t, https, ssh)
	assert.Equal(t, https, plain)
	assert.Equal(t, "acme/shop", https.FullName())
}

func TestExtractOriginURL(t *testing.T) {
	remotes := `upstream	https://github.com/other/pm.git (fetch)
upstream	https://github.com/other/pm.git (push)
origin	git@github.com:joescharf/dokploy-deploy.git (fetch)
origin	git@github.com:joescharf/dokploy-deploy.git (push)`

	assert.Equal(t, "git@github.com:joescharf/dokploy-deploy.git", ExtractOriginURL(remotes))
	assert.Empty(t, ExtractOriginURL("upstream\thttps://github.com/other/pm.git (fetch)"))
	assert.Empty(t, ExtractOriginURL(""))
}

func TestRepoURLFromOutput(t *testing.T) {
	out := "✓ Created repository joescharf/shop on GitHub\n  https://github.com/joescharf/shop\n✓ Pushed commits"
	assert.Equal(t, "https://github.com/joescharf/shop", RepoURLFromOutput(out, "shop"))
	assert.Equal(t, "https://github.com/shop", RepoURLFromOutput("done", "shop"))
}

func TestRealClient_NotRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	_, err := NewClient().Remotes(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRepository))
}

func TestRealClient_InitAndRemotes(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	c := NewClient()
	require.NoError(t, c.Init(dir))

	out, err := c.Remotes(dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	url, err := c.RemoteURL(dir)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestRealClient_RemotesWithOrigin(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initTestRepo(t, dir)
	require.NoError(t, exec.Command("git", "-C", dir, "remote", "add", "origin", "https://github.com/acme/shop.git").Run())

	c := NewClient()
	out, err := c.Remotes(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/shop.git", ExtractOriginURL(out))

	url, err := c.RemoteURL(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/shop.git", url)
}
