// Package dotdir resolves the .wingman/ directory that holds the CLI's config,
// session and local database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the wingman directory.
	dirName = ".wingman"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .wingman/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.wingman/ dir
//  3. Home ~/.wingman/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating wingman directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// File returns the absolute path of name inside the resolved directory.
func (m *Manager) File(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// localDirExists checks whether a .wingman/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
