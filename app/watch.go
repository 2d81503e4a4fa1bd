//go:build !tinygo

package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"kiosk/hal"
)

// WatchDebounce is how long store files must stay quiet before a reload is
// posted.
const WatchDebounce = 250 * time.Millisecond

// WatchStore posts a NoticeReload to mb whenever files in dir change, once
// writes have settled. It returns when ctx is done.
func WatchStore(ctx context.Context, dir string, mb *Mailbox, l hal.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log := logger{out: l}
	log.debugf("watch: %s", dir)

	timer := time.NewTimer(WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 || !isStoreFile(ev.Name) {
				continue
			}
			timer.Reset(WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.logf("watch: %v", err)
		case <-timer.C:
			if !mb.TrySend(Notice{Kind: NoticeReload}) {
				log.debugf("watch: mailbox full, reload already queued")
			}
		}
	}
}

// isStoreFile skips editor swap files and the json store's temp files.
func isStoreFile(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
