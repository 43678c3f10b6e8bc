package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// TestDataDir is the fixture directory under the project root.
const TestDataDir = "testdata"

// ProjectRoot walks up from this source file to the first directory that
// holds go.mod next to cmd/ and internal/.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if isProjectRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no qrlocal project root above %s", filepath.Dir(filename))
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	if fi, err := os.Stat(filepath.Join(dir, "go.mod")); err != nil || fi.IsDir() {
		return false
	}
	for _, sub := range []string{"cmd", "internal"} {
		if fi, err := os.Stat(filepath.Join(dir, sub)); err != nil || !fi.IsDir() {
			return false
		}
	}
	return true
}

// EnsureDir creates path and its parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o750)
}
