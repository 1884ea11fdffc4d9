package index

// SyncIndex defines the interface for sync-state operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type SyncIndex interface {
	UpsertIssue(row IssueRow, body string) error
	GetIssue(key string) (*IssueRow, error)
	GetChecksum(key string) (string, error)
	GetChecksumByPath(path string) (string, error)
	SetChecksumByPath(path, checksum string) error
	AllChecksums() (map[string]string, error)
	ListIssues(status string) ([]IssueRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	RecordRun(run Run) error
	LastRun() (*Run, error)
	Close() error
}

// Verify *DB satisfies SyncIndex at compile time.
var _ SyncIndex = (*DB)(nil)
