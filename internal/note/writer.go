package note

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/adf"
	"github.com/starford/ansuz/internal/models"
)

// noDescription is the body placeholder when the tracker record carries no
// description document.
const noDescription = "No description provided."

// IssueFilename returns the vault-relative path for an issue note. The path
// derives only from the issue key, so it is stable across runs.
func IssueFilename(issuesDir, key string) string {
	return path.Join(issuesDir, key+".md")
}

// IssueFile composes the full note content for an issue: frontmatter and
// rendered body, merged over whatever operator notes the existing content
// carries.
func IssueFile(issue models.Issue, existing []byte) string {
	return Merge(existing, Frontmatter(issue)+Body(issue))
}

// Body renders the machine-owned Markdown body of an issue note.
func Body(issue models.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", issue.Key, issue.Summary)
	fmt.Fprintf(&b, "**Type**: %s\n", orNone(issue.Type))
	fmt.Fprintf(&b, "**Priority**: %s\n", orNone(issue.Priority))
	fmt.Fprintf(&b, "**Status**: %s\n\n", orNone(issue.Status))
	b.WriteString("## Description\n\n")
	desc := adf.Render(issue.Description)
	if desc == "" {
		desc = noDescription + "\n"
	}
	b.WriteString(desc)
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
