package note

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// boardHeader is the frontmatter consumed by the Obsidian kanban plugin.
const boardHeader = "---\nkanban-plugin: basic\n---\n\n"

// Board renders the kanban board file: one column per distinct status in
// the order each status is first seen, one checkbox line per issue in input
// order. Columns are discovered from the data, not configured, and status
// strings are compared exactly (case-sensitive, unnormalised). The board is
// fully machine-owned and overwritten every run.
func Board(issues []models.Issue) string {
	var order []string
	groups := make(map[string][]models.Issue)
	for _, issue := range issues {
		if _, ok := groups[issue.Status]; !ok {
			order = append(order, issue.Status)
		}
		groups[issue.Status] = append(groups[issue.Status], issue)
	}

	var b strings.Builder
	b.WriteString(boardHeader)
	for _, status := range order {
		fmt.Fprintf(&b, "## %s\n\n", status)
		for _, issue := range groups[status] {
			fmt.Fprintf(&b, "- [ ] [%s](%s) %s\n", issue.Key, issue.Link, issue.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}
