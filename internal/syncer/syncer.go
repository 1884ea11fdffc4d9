// Package syncer orchestrates one sync run: fetch the issue list, regenerate
// the machine-owned region of every note, write the board, record the run.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/storage"
)

// Tracker fetches the current issue list from the remote system.
type Tracker interface {
	Search(ctx context.Context) ([]models.Issue, error)
}

// EventFunc receives sync progress events: "issue.synced", "issue.failed",
// "board.updated". May be nil.
type EventFunc func(kind, path string)

// Result summarises a completed run.
type Result struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Synced    int    `json:"synced"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// Syncer holds the collaborators of a sync run.
type Syncer struct {
	tracker   Tracker
	store     storage.Provider
	db        index.SyncIndex
	issuesDir string
	boardFile string
	logger    *slog.Logger
	events    EventFunc
}

// New creates a Syncer. events may be nil.
func New(tracker Tracker, store storage.Provider, db index.SyncIndex, issuesDir, boardFile string, logger *slog.Logger, events EventFunc) *Syncer {
	return &Syncer{
		tracker:   tracker,
		store:     store,
		db:        db,
		issuesDir: issuesDir,
		boardFile: boardFile,
		logger:    logger,
		events:    events,
	}
}

// Run performs one full sync. A fetch failure aborts before any writes; a
// single issue's failure is logged and counted but never stops the
// remaining issues or the board.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	started := time.Now().UTC()

	issues, err := s.tracker.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("syncer: fetch issues: %w", err)
	}

	res := &Result{RunID: uuid.NewString(), Total: len(issues)}
	for _, issue := range issues {
		if err := s.syncIssue(issue, res); err != nil {
			res.Failed++
			s.logger.Warn("sync: issue failed",
				slog.String("key", issue.Key),
				slog.String("error", err.Error()))
			s.emit("issue.failed", note.IssueFilename(s.issuesDir, issue.Key))
		}
	}

	// The board groups the fetched list, not write outcomes, and is written
	// strictly after every issue file has been processed.
	if err := s.store.Write(s.boardFile, []byte(note.Board(issues))); err != nil {
		res.Failed++
		s.logger.Warn("sync: board write failed", slog.String("error", err.Error()))
	} else {
		s.emit("board.updated", s.boardFile)
	}

	run := index.Run{
		ID:         res.RunID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Total:      res.Total,
		Synced:     res.Synced,
		Unchanged:  res.Unchanged,
		Failed:     res.Failed,
	}
	if err := s.db.RecordRun(run); err != nil {
		s.logger.Warn("sync: record run failed", slog.String("error", err.Error()))
	}

	s.logger.Info("sync: run complete",
		slog.String("run_id", res.RunID),
		slog.Int("total", res.Total),
		slog.Int("synced", res.Synced),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("failed", res.Failed))
	return res, nil
}

// syncIssue regenerates one note file and its index row.
func (s *Syncer) syncIssue(issue models.Issue, res *Result) error {
	rel := note.IssueFilename(s.issuesDir, issue.Key)

	existing, err := s.store.Read(rel)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err == nil && !note.HasMarker(existing) {
		// Recovery path, not an error: a foreign or hand-stripped file is
		// preserved wholesale beneath a fresh marker.
		s.logger.Info("sync: marker missing, preserving existing content", slog.String("path", rel))
	}

	content := []byte(note.IssueFile(issue, existing))

	if bytes.Equal(content, existing) {
		res.Unchanged++
	} else {
		if err := s.store.Write(rel, content); err != nil {
			return err
		}
		res.Synced++
		s.logger.Debug("sync: note written",
			slog.String("path", rel),
			slog.String("checksum", checksum.Short(content)))
		s.emit("issue.synced", rel)
	}

	return s.db.UpsertIssue(index.IssueRow{
		Key:           issue.Key,
		Path:          rel,
		Summary:       issue.Summary,
		Status:        issue.Status,
		Priority:      issue.Priority,
		Link:          issue.Link,
		Checksum:      checksum.Sum(content),
		RemoteUpdated: issue.Updated,
		SyncedAt:      time.Now().UTC(),
	}, note.Body(issue))
}

func (s *Syncer) emit(kind, path string) {
	if s.events != nil {
		s.events(kind, path)
	}
}
