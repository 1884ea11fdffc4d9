package api

import (
	"context"
	"time"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/syncer"
)

// SyncFunc triggers a sync run; the serve loop wires it to the syncer.
type SyncFunc func(ctx context.Context) (*syncer.Result, error)

// Service coordinates the index, the vault, and the sync trigger for the
// API layer.
type Service struct {
	store     storage.Provider
	db        index.SyncIndex
	boardFile string
	sync      SyncFunc
}

// NewService creates a new API service.
func NewService(store storage.Provider, db index.SyncIndex, boardFile string, sync SyncFunc) *Service {
	return &Service{store: store, db: db, boardFile: boardFile, sync: sync}
}

// IssueListItem is a lightweight item in a list response.
type IssueListItem struct {
	Key           string    `json:"key"`
	Summary       string    `json:"summary"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority,omitempty"`
	Link          string    `json:"link"`
	Path          string    `json:"path"`
	RemoteUpdated time.Time `json:"remote_updated"`
	SyncedAt      time.Time `json:"synced_at"`
}

// IssueDetail is the response payload for a single issue note. Content is
// the raw file; Body and UserNotes are its machine- and operator-owned
// regions.
type IssueDetail struct {
	Key         string         `json:"key"`
	Summary     string         `json:"summary"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority,omitempty"`
	Link        string         `json:"link"`
	Path        string         `json:"path"`
	Content     string         `json:"content"`
	Body        string         `json:"body"`
	UserNotes   string         `json:"user_notes"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	SyncedAt    time.Time      `json:"synced_at"`
}

// ListIssues returns index rows, optionally filtered by exact status.
func (s *Service) ListIssues(status string) ([]IssueListItem, error) {
	rows, err := s.db.ListIssues(status)
	if err != nil {
		return nil, err
	}
	items := make([]IssueListItem, len(rows))
	for i, r := range rows {
		items[i] = IssueListItem{
			Key:           r.Key,
			Summary:       r.Summary,
			Status:        r.Status,
			Priority:      r.Priority,
			Link:          r.Link,
			Path:          r.Path,
			RemoteUpdated: r.RemoteUpdated,
			SyncedAt:      r.SyncedAt,
		}
	}
	return items, nil
}

// GetIssue reads an issue's note from the vault and splits it into its
// machine- and operator-owned regions.
func (s *Service) GetIssue(key string) (*IssueDetail, error) {
	row, err := s.db.GetIssue(key)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(row.Path)
	if err != nil {
		return nil, err
	}
	parsed := note.Parse(data)
	return &IssueDetail{
		Key:         row.Key,
		Summary:     row.Summary,
		Status:      row.Status,
		Priority:    row.Priority,
		Link:        row.Link,
		Path:        row.Path,
		Content:     string(data),
		Body:        parsed.Body,
		UserNotes:   parsed.UserNotes,
		Frontmatter: parsed.Frontmatter,
		SyncedAt:    row.SyncedAt,
	}, nil
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Board returns the raw board file content.
func (s *Service) Board() ([]byte, error) {
	return s.store.Read(s.boardFile)
}

// Status returns the last recorded sync run, or nil when none exists.
func (s *Service) Status() (*index.Run, error) {
	return s.db.LastRun()
}

// TriggerSync runs one sync now.
func (s *Service) TriggerSync(ctx context.Context) (*syncer.Result, error) {
	return s.sync(ctx)
}
