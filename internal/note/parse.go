package note

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parsed holds the decoded regions of a note file.
type Parsed struct {
	// Frontmatter is the decoded metadata block, nil when absent or invalid.
	Frontmatter map[string]any
	// Body is the machine-owned body: frontmatter and operator region stripped.
	Body string
	// UserNotes is the operator-owned region with the marker line excluded.
	UserNotes string
	// HasMarker reports whether the raw content carried the marker at all.
	HasMarker bool
}

// Parse splits raw note content into frontmatter, machine body, and operator
// notes. It is tolerant by design: a missing marker leaves UserNotes empty,
// missing or invalid frontmatter leaves Frontmatter nil. Parse never fails.
func Parse(data []byte) *Parsed {
	machine := string(data)
	p := &Parsed{}

	if i := strings.Index(machine, UserNotesMarker); i >= 0 {
		p.HasMarker = true
		after := machine[i+len(UserNotesMarker):]
		p.UserNotes = strings.TrimPrefix(after, "\n")
		machine = machine[:i]
	}

	fm, body := splitFrontmatter([]byte(machine))
	p.Frontmatter = fm
	p.Body = body
	return p
}

// splitFrontmatter separates the YAML metadata block (between leading ---
// fences) from the Markdown body. Without a complete, valid block the whole
// input is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}
