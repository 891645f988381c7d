package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned when a git command runs outside a work tree.
var ErrNotRepository = errors.New("not a git repository")

// Client defines the git operations needed to resolve a checkout's remote.
// All methods take a path parameter so the client is not bound to the cwd.
type Client interface {
	Remotes(path string) (string, error)
	RemoteURL(path string) (string, error)
	Init(path string) error
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if strings.Contains(strings.ToLower(stderr), "not a git repository") {
				return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), ErrNotRepository)
			}
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), stderr)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Remotes returns the raw output of `git remote -v`.
func (c *RealClient) Remotes(path string) (string, error) {
	return gitCmd(path, "remote", "-v")
}

func (c *RealClient) RemoteURL(path string) (string, error) {
	out, err := gitCmd(path, "remote", "get-url", "origin")
	if err != nil {
		return "", nil // no remote is not an error
	}
	return out, nil
}

func (c *RealClient) Init(path string) error {
	_, err := gitCmd(path, "init")
	return err
}
