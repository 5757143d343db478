package serviceaccount

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/velora-data/gcpkit/internal/logger"
)

// Evictor drops cached clients built from a credential source.
// *services.ClientFactory satisfies this.
type Evictor interface {
	EvictSource(source string) int
}

// RotationWatcher watches a credential file and evicts dependent cached
// clients when the file is rewritten. This is the explicit opt-in eviction
// path for long-running processes that rotate credentials; nothing is
// evicted unless a watcher is running.
type RotationWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchCredentialFile starts watching path for rewrites. On change it drops
// the resolver's memoized credentials for the path and evicts the factory's
// cached clients built from it. The watch observes the parent directory
// because credential rotation typically replaces the file wholesale.
func WatchCredentialFile(path string, resolver *Resolver, evictor Evictor) (*RotationWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	rw := &RotationWatcher{watcher: w, done: make(chan struct{})}
	go rw.run(path, resolver, evictor)
	return rw, nil
}

func (rw *RotationWatcher) run(path string, resolver *Resolver, evictor Evictor) {
	base := filepath.Base(path)
	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Warn("credential file %s changed, evicting dependent clients", path)
			resolver.Forget(path)
			evictor.EvictSource(path)
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("credential watcher error: %v", err)
		case <-rw.done:
			return
		}
	}
}

// Close stops the watcher.
func (rw *RotationWatcher) Close() error {
	close(rw.done)
	return rw.watcher.Close()
}
