package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/storage"
)

// EventCallback is called after a watcher-driven index change. kind is
// currently always "edited".
type EventCallback func(kind, path string)

// Watch starts an fsnotify watcher on the issues directory and keeps note
// checksums in the index current while the operator edits files, until ctx
// is cancelled. It calls cb (if non-nil) for each note whose content
// actually changed — the tool's own atomic writes land with the checksum
// the index already holds, so they do not fire events.
//
// Rename events (editors often save via rename) are handled by a debounced
// reconcile pass that re-checksums the whole issues directory.
func Watch(ctx context.Context, db *DB, store storage.Provider, vaultRoot, issuesDir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watchDir := filepath.Join(vaultRoot, issuesDir)
	if err := w.Add(watchDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", watchDir))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, issuesDir, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(vaultRoot, ev.Name)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				noteChanged(db, store, rel, logger, cb)

			case ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0:
				// The new content (if any) arrives as a separate Create
				// event; a short reconcile pass catches stragglers.
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// noteChanged re-checksums one note and updates the index when the content
// differs from what the index last saw.
func noteChanged(db *DB, store storage.Provider, rel string, logger *slog.Logger, cb EventCallback) {
	data, err := store.Read(rel)
	if err != nil {
		// The file may have vanished between event and read; reconcile
		// will catch it.
		return
	}
	cs := checksum.Sum(data)

	stored, _ := db.GetChecksumByPath(rel)
	if stored == "" || stored == cs {
		return
	}

	if err := db.SetChecksumByPath(rel, cs); err != nil {
		logger.Warn("watcher: checksum update failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: note edited", slog.String("path", rel), slog.String("checksum", checksum.Short(data)))
	if cb != nil {
		cb("edited", rel)
	}
}

// reconcile re-checksums every tracked note still present on disk.
func reconcile(db *DB, store storage.Provider, issuesDir string, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	for rel, stored := range checksums {
		if !strings.HasPrefix(rel, issuesDir+string(os.PathSeparator)) {
			continue
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			continue
		}
		cs := checksum.Sum(data)
		if cs == stored {
			continue
		}
		if err := db.SetChecksumByPath(rel, cs); err != nil {
			continue
		}
		logger.Debug("reconcile: note edited", slog.String("path", rel))
		if cb != nil {
			cb("edited", rel)
		}
	}
}
