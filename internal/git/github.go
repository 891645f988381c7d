package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrGHNotInstalled is returned when the gh CLI is not on PATH.
	ErrGHNotInstalled = errors.New("GitHub CLI not found, install it from https://cli.github.com/")
	// ErrGHNotAuthenticated is returned when `gh auth status` fails.
	ErrGHNotAuthenticated = errors.New("GitHub CLI not authenticated, run: gh auth login")
)

// GitHubClient wraps the gh CLI for repository creation.
type GitHubClient interface {
	AuthStatus(path string) error
	CreateRepo(path, name string) (string, error)
}

// RealGitHubClient implements GitHubClient using the gh CLI.
type RealGitHubClient struct{}

// NewGitHubClient returns a new RealGitHubClient.
func NewGitHubClient() *RealGitHubClient {
	return &RealGitHubClient{}
}

func ghCmd(dir string, args ...string) (string, error) {
	cmd := exec.Command("gh", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrGHNotInstalled
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("gh %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealGitHubClient) AuthStatus(path string) error {
	if _, err := ghCmd(path, "auth", "status"); err != nil {
		if errors.Is(err, ErrGHNotInstalled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrGHNotAuthenticated, err)
	}
	return nil
}

// CreateRepo creates a public repository named name from the checkout at path,
// sets it as origin and pushes. It returns the raw gh output.
func (c *RealGitHubClient) CreateRepo(path, name string) (string, error) {
	return ghCmd(path, "repo", "create", name, "--public", "--source=.", "--remote=origin", "--push")
}
