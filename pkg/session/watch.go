package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn whenever the session file changes on disk, for example when
// the user logs in or out from another terminal. fn receives nil after a
// logout. Watch blocks until ctx is done and then returns ctx.Err().
func (m *Manager) Watch(ctx context.Context, fn func(*Session)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating session watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: Save replaces the file by rename, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watching session dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}

			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				fn(nil)

			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				s, err := m.Load()
				if errors.Is(err, ErrNotLoggedIn) {
					fn(nil)
					continue
				}
				if err != nil {
					// Partially written by a foreign writer; the next event
					// carries the final content.
					continue
				}
				fn(s)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("session watcher error: %w", err)
		}
	}
}
