package syncd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchLocalDB watches the local database file for writes by other
// processes (another session on the same machine) and triggers a reconcile
// when they happen. Our own writes fire events too; the debounce window and
// the idempotence of Reconcile absorb them.
func (c *Coordinator) watchLocalDB() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	dbPath := c.store.Path()
	// SQLite in WAL mode writes the -wal sidecar, so watch the directory
	// and filter by base name prefix.
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(dbPath), err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer watcher.Close()

		base := filepath.Base(dbPath)
		var lastPull time.Time
		dirty := false

		ticker := time.NewTicker(c.config.WatchDebounce)
		defer ticker.Stop()

		for {
			select {
			case <-c.ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				dirty = true

			case <-ticker.C:
				if !dirty || c.config.Now().Sub(lastPull) < c.config.WatchDebounce {
					continue
				}
				dirty = false
				lastPull = c.config.Now()
				if err := c.Reconcile(c.ctx); err != nil {
					c.config.Logger.Printf("Watcher reconcile failed: %v", err)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.config.Logger.Printf("Watcher error: %v", err)
			}
		}
	}()
	return nil
}
