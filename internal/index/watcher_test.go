package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/storage"
)

const watcherIssuesDir = "Jira Tickets"

// watcherTestEnv sets up a vault dir with an issues directory, storage, and DB.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	vaultDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(vaultDir, watcherIssuesDir), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "ansuz-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return vaultDir, store, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func seedNote(t *testing.T, db *DB, vaultDir, key, content string) string {
	t.Helper()
	rel := filepath.Join(watcherIssuesDir, key+".md")
	if err := os.WriteFile(filepath.Join(vaultDir, rel), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	row := IssueRow{
		Key:      key,
		Path:     rel,
		Summary:  key,
		Status:   "To Do",
		Checksum: checksum.Sum([]byte(content)),
	}
	if err := db.UpsertIssue(row, ""); err != nil {
		t.Fatal(err)
	}
	return rel
}

func TestWatcher_OperatorEditUpdatesChecksum(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	rel := seedNote(t, db, vaultDir, "PROJ-1", "original\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, vaultDir, watcherIssuesDir, logger, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	edited := "original\nplus operator notes\n"
	if err := os.WriteFile(filepath.Join(vaultDir, rel), []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksumByPath(rel)
		return cs == checksum.Sum([]byte(edited))
	}, "edited note checksum not updated")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "edited:"+rel {
				return true
			}
		}
		return false
	}, "expected edited callback")
}

func TestWatcher_UnchangedWriteIsSilent(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	rel := seedNote(t, db, vaultDir, "PROJ-1", "same content\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events int

	go Watch(ctx, db, store, vaultDir, watcherIssuesDir, logger, func(_, _ string) {
		mu.Lock()
		events++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	// Same bytes rewritten: the checksum the index holds already matches,
	// which is exactly how the syncer's own writes look to the watcher.
	if err := os.WriteFile(filepath.Join(vaultDir, rel), []byte("same content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if events != 0 {
		t.Errorf("got %d events for an unchanged write, want 0", events)
	}
}

func TestWatcher_UntrackedFileIgnored(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events int

	go Watch(ctx, db, store, vaultDir, watcherIssuesDir, logger, func(_, _ string) {
		mu.Lock()
		events++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	// No issue row points at this path; the watcher has nothing to update.
	rel := filepath.Join(watcherIssuesDir, "scratch.md")
	if err := os.WriteFile(filepath.Join(vaultDir, rel), []byte("scratch\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if events != 0 {
		t.Errorf("got %d events for an untracked file, want 0", events)
	}
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	rel := seedNote(t, db, vaultDir, "PROJ-1", "before rename\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, vaultDir, watcherIssuesDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	// Editors often save by writing a sidecar and renaming it over the note.
	edited := "after rename\n"
	side := filepath.Join(vaultDir, watcherIssuesDir, ".PROJ-1.md.swp.md")
	if err := os.WriteFile(side, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(side, filepath.Join(vaultDir, rel)); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksumByPath(rel)
		return cs == checksum.Sum([]byte(edited))
	}, "renamed-over note checksum not reconciled")
}
