// Package watch reports changes to JSON documents under a directory.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/aquatrack/internal/checksum"
	"github.com/starford/aquatrack/internal/storage"
)

// Change kinds passed to the callback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

const reconcileDelay = 200 * time.Millisecond

// Callback is called after each observed change. path is relative to the
// root and slash-separated.
type Callback func(kind, path string)

// Watcher follows one document directory. Content checksums suppress
// notifications for writes that leave a file unchanged.
type Watcher struct {
	store  storage.Provider
	logger *slog.Logger
	cb     Callback

	seen map[string]string
}

// New returns a Watcher over store's root. logger may be nil.
func New(store storage.Provider, logger *slog.Logger, cb Callback) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{store: store, logger: logger, cb: cb, seen: make(map[string]string)}
}

// Run watches until ctx is cancelled. New directories created at runtime are
// added to the watch list; renames trigger a short reconciliation pass
// against a fresh listing.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := w.store.Root()
	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}
	w.seed()

	w.logger.Info("watch: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			w.logger.Info("watch: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watch: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Files may have landed before the directory was watched.
					w.reconcile()
					continue
				}
			}

			if !isDocument(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.refresh(rel)
			case ev.Op&fsnotify.Remove != 0:
				w.forget(rel)
			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path; the new one arrives as Create
				// when it stays inside a watched directory.
				w.forget(rel)
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) seed() {
	docs, err := w.store.List()
	if err != nil {
		w.logger.Warn("watch: initial list failed", slog.String("error", err.Error()))
		return
	}
	for _, d := range docs {
		w.seen[d.Path] = d.Checksum
	}
}

func (w *Watcher) refresh(rel string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Debug("watch: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	sum := checksum.Sum(data)
	prev, known := w.seen[rel]
	if known && prev == sum {
		return
	}
	w.seen[rel] = sum
	kind := KindUpdated
	if !known {
		kind = KindCreated
	}
	w.notify(kind, rel)
}

func (w *Watcher) forget(rel string) {
	if _, ok := w.seen[rel]; !ok {
		return
	}
	delete(w.seen, rel)
	w.notify(KindDeleted, rel)
}

// reconcile compares the directory listing with what has been seen.
func (w *Watcher) reconcile() {
	docs, err := w.store.List()
	if err != nil {
		w.logger.Warn("watch: reconcile list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]string, len(docs))
	for _, d := range docs {
		disk[d.Path] = d.Checksum
	}
	for p := range w.seen {
		if _, ok := disk[p]; !ok {
			w.forget(p)
		}
	}
	for p, sum := range disk {
		prev, known := w.seen[p]
		if known && prev == sum {
			continue
		}
		w.seen[p] = sum
		if known {
			w.notify(KindUpdated, p)
		} else {
			w.notify(KindCreated, p)
		}
	}
}

func (w *Watcher) notify(kind, rel string) {
	w.logger.Debug("watch: change", slog.String("op", kind), slog.String("path", rel))
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

func isDocument(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), storage.DocumentExt)
}

// addDirsRecursive adds root and its non-hidden subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
