package mcpserver

// NoteFormatContract describes the layout of a synced issue note so LLM
// consumers know which region is safe to edit.
const NoteFormatContract = `# Ansuz Note Format Contract

Every issue note in the vault is split into two regions by a fixed marker
line. Respect the split: the tool rewrites everything above the marker on
every sync, and never touches anything below it.

## Structure

` + "```" + `markdown
---
jira_key: "PROJ-42"
jira_summary: "Short issue title"
jira_type: "Task"
jira_status: "In Progress"
jira_priority: "High"
jira_url: "https://example.atlassian.net/browse/PROJ-42"
jira_updated: "2025-01-20T10:15:30Z"
---
# PROJ-42 Short issue title

**Type**: Task
**Priority**: High
**Status**: In Progress

## Description

Rendered issue description (Markdown).
%% USER_NOTES_START %%

Anything down here belongs to the human operator.
` + "```" + `

## Rules

1. **The machine-owned region** (frontmatter and body above the marker) is
   regenerated from the tracker on every sync. Edits there WILL be lost.
2. **The marker line** is exactly ` + "`" + `%% USER_NOTES_START %%` + "`" + `. Never remove,
   duplicate, or move it. If it is missing, the next sync inserts one and
   preserves the whole file beneath it.
3. **The operator-owned region** below the marker is preserved byte for byte
   across syncs. Put notes, checklists, and links there.
4. **The board file** is fully machine-owned: it is overwritten on every run
   and has no operator region.
5. **Encoding** is UTF-8 with a trailing newline.
`
