package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch invalidates cached entries whenever files under the local content root
// change. The watcher is registered before Watch returns; the returned channel
// is closed once the watcher goroutine exits after ctx is cancelled.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	if l.Remote() {
		return nil, errors.New("content: cannot watch a remote content source")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("content: create watcher: %w", err)
	}
	root, err := filepath.Abs(l.contentDir)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	added := 0
	for _, dir := range []string{DataDir, ProjectsDir} {
		if err := watcher.Add(filepath.Join(root, dir)); err != nil {
			l.logger.Debug("content watcher skipped directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		added++
	}
	if added == 0 {
		_ = watcher.Close()
		return nil, fmt.Errorf("content: nothing to watch under %s", root)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				rel, err := filepath.Rel(root, event.Name)
				if err != nil {
					continue
				}
				key := filepath.ToSlash(rel)
				l.Invalidate(key)
				l.logger.Debug("content changed", zap.String("path", key), zap.String("op", event.Op.String()))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("content watcher error", zap.Error(err))
			}
		}
	}()
	return done, nil
}
