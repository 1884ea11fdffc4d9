// Package note composes, merges, and parses the Markdown files Ansuz owns:
// one note per issue plus the kanban board. Every note is split in two by a
// fixed marker line: the machine-owned region above it (frontmatter and
// rendered body, regenerated on every sync) and the operator-owned region
// below it, which is never touched.
package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/models"
)

const (
	frontmatterFence = "---"
	timeLayout       = time.RFC3339
)

// Frontmatter builds the fixed-order metadata block for an issue note,
// fenced by "---" lines. Every key is always emitted, with an empty value
// when the field is absent, so unchanged input yields byte-identical output
// run to run.
//
// The block carries the issue's remote updated timestamp rather than the
// wall-clock sync time: wall-clock values would make every run rewrite
// every file. The sync time lives in the index instead.
func Frontmatter(issue models.Issue) string {
	updated := ""
	if !issue.Updated.IsZero() {
		updated = issue.Updated.UTC().Format(timeLayout)
	}

	var b strings.Builder
	b.WriteString(frontmatterFence + "\n")
	writeField(&b, "jira_key", issue.Key)
	writeField(&b, "jira_summary", issue.Summary)
	writeField(&b, "jira_type", issue.Type)
	writeField(&b, "jira_status", issue.Status)
	writeField(&b, "jira_priority", issue.Priority)
	writeField(&b, "jira_url", issue.Link)
	writeField(&b, "jira_updated", updated)
	b.WriteString(frontmatterFence + "\n")
	return b.String()
}

// writeField emits one key/value line. Values are double-quoted so free-form
// labels ("In Progress", summaries containing colons) stay valid YAML.
func writeField(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s: %q\n", key, value)
}
