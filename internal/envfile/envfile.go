// Package envfile locates and reads the dotenv file shipped with an application.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Candidates are the file names searched, in priority order.
var Candidates = []string{".env", ".env.local", ".env.example"}

// File is a located env file.
type File struct {
	Name string // base name, e.g. ".env.local"
	Path string
}

// Locate returns the first candidate file present in dir.
func Locate(dir string) (*File, bool) {
	for _, name := range Candidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return &File{Name: name, Path: path}, true
	}
	return nil, false
}

// LocateFor finds the env file for the application at buildPath under root.
// An application below the root without its own file falls back to the
// root's file; shared reports that fallback.
func LocateFor(root, buildPath string) (f *File, shared bool, ok bool) {
	dir := filepath.Join(root, filepath.FromSlash(buildPath))
	if f, ok := Locate(dir); ok {
		return f, false, true
	}
	if buildPath == "." || buildPath == "" {
		return nil, false, false
	}
	if f, ok := Locate(root); ok {
		return f, true, true
	}
	return nil, false, false
}

// Read returns the raw contents of the file at path.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read env file: %w", err)
	}
	return string(data), nil
}

// CountVars returns the number of variables defined in content. Content that
// does not parse is counted line by line, ignoring blanks and comments.
func CountVars(content string) int {
	vars, err := godotenv.Unmarshal(content)
	if err == nil {
		return len(vars)
	}
	n := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
	}
	return n
}
