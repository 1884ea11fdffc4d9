package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
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
	return db
}

func sampleRow(key, status string) IssueRow {
	return IssueRow{
		Key:           key,
		Path:          "Jira Tickets/" + key + ".md",
		Summary:       "Summary for " + key,
		Status:        status,
		Priority:      "Medium",
		Link:          "https://j/browse/" + key,
		Checksum:      "abc123",
		RemoteUpdated: time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
		SyncedAt:      time.Now().UTC(),
	}
}

func TestUpsertAndGetIssue(t *testing.T) {
	db := testDB(t)
	row := sampleRow("PROJ-1", "To Do")
	if err := db.UpsertIssue(row, "rendered body"); err != nil {
		t.Fatalf("UpsertIssue: %v", err)
	}

	got, err := db.GetIssue("PROJ-1")
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if got.Summary != row.Summary || got.Status != "To Do" || got.Path != row.Path {
		t.Errorf("got %+v", got)
	}
	if !got.RemoteUpdated.Equal(row.RemoteUpdated) {
		t.Errorf("RemoteUpdated = %v, want %v", got.RemoteUpdated, row.RemoteUpdated)
	}
}

func TestUpsertIssue_ReplacesExisting(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertIssue(sampleRow("PROJ-1", "To Do"), "v1"); err != nil {
		t.Fatal(err)
	}
	updated := sampleRow("PROJ-1", "Done")
	updated.Checksum = "def456"
	if err := db.UpsertIssue(updated, "v2"); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetIssue("PROJ-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "Done" || got.Checksum != "def456" {
		t.Errorf("got %+v", got)
	}
	rows, err := db.ListIssues("")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("len = %d, want 1", len(rows))
	}
}

func TestGetIssue_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetIssue("NOPE-1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListIssues_StatusFilter(t *testing.T) {
	db := testDB(t)
	for _, r := range []IssueRow{
		sampleRow("PROJ-2", "To Do"),
		sampleRow("PROJ-1", "In Progress"),
		sampleRow("PROJ-3", "To Do"),
	} {
		if err := db.UpsertIssue(r, ""); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.ListIssues("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d", len(all))
	}
	// Ordered by key.
	if all[0].Key != "PROJ-1" || all[2].Key != "PROJ-3" {
		t.Errorf("order: %v %v %v", all[0].Key, all[1].Key, all[2].Key)
	}

	todo, err := db.ListIssues("To Do")
	if err != nil {
		t.Fatal(err)
	}
	if len(todo) != 2 {
		t.Errorf("len(todo) = %d, want 2", len(todo))
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	row := sampleRow("PROJ-1", "To Do")
	row.Summary = "Fix login redirect"
	if err := db.UpsertIssue(row, "The login page loops back to itself."); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertIssue(sampleRow("PROJ-2", "To Do"), "unrelated"); err != nil {
		t.Fatal(err)
	}

	bySummary, err := db.Search("redirect", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bySummary) != 1 || bySummary[0].Key != "PROJ-1" {
		t.Errorf("bySummary = %+v", bySummary)
	}

	byBody, err := db.Search("loops back", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byBody) != 1 || byBody[0].Snippet == "" {
		t.Errorf("byBody = %+v", byBody)
	}

	none, err := db.Search("zzz-not-there", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("none = %+v", none)
	}
}

func TestChecksumOps(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertIssue(sampleRow("PROJ-1", "To Do"), ""); err != nil {
		t.Fatal(err)
	}

	cs, err := db.GetChecksum("PROJ-1")
	if err != nil || cs != "abc123" {
		t.Errorf("GetChecksum = %q, %v", cs, err)
	}
	cs, err = db.GetChecksum("NOPE-1")
	if err != nil || cs != "" {
		t.Errorf("GetChecksum(missing) = %q, %v", cs, err)
	}

	cs, err = db.GetChecksumByPath("Jira Tickets/PROJ-1.md")
	if err != nil || cs != "abc123" {
		t.Errorf("GetChecksumByPath = %q, %v", cs, err)
	}

	if err := db.SetChecksumByPath("Jira Tickets/PROJ-1.md", "new999"); err != nil {
		t.Fatal(err)
	}
	cs, _ = db.GetChecksumByPath("Jira Tickets/PROJ-1.md")
	if cs != "new999" {
		t.Errorf("checksum after set = %q", cs)
	}

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if all["Jira Tickets/PROJ-1.md"] != "new999" {
		t.Errorf("AllChecksums = %v", all)
	}
}

func TestRecordAndLastRun(t *testing.T) {
	db := testDB(t)

	got, err := db.LastRun()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("LastRun on empty db = %+v, want nil", got)
	}

	now := time.Now().UTC().Truncate(time.Second)
	first := Run{ID: "run-1", StartedAt: now.Add(-time.Minute), FinishedAt: now.Add(-30 * time.Second), Total: 3, Synced: 3}
	second := Run{ID: "run-2", StartedAt: now.Add(-10 * time.Second), FinishedAt: now, Total: 3, Synced: 1, Unchanged: 2}
	if err := db.RecordRun(first); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordRun(second); err != nil {
		t.Fatal(err)
	}

	got, err = db.LastRun()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "run-2" {
		t.Fatalf("LastRun = %+v, want run-2", got)
	}
	if got.Synced != 1 || got.Unchanged != 2 {
		t.Errorf("counters: %+v", got)
	}
}
