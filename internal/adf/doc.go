// Package adf models the tracker's rich-text document tree (Atlassian
// Document Format) and renders it to Markdown.
//
// The node set is open-ended: the tracker may introduce new node kinds at
// any time, so Node carries its kind as a plain string and keeps attributes
// loosely typed. Anything the renderer does not recognise degrades to an
// auditable no-op instead of failing the sync.
package adf

// Node kinds the renderer understands. Any other value is treated as
// unsupported.
const (
	NodeDoc         = "doc"
	NodeParagraph   = "paragraph"
	NodeHeading     = "heading"
	NodeBulletList  = "bulletList"
	NodeOrderedList = "orderedList"
	NodeListItem    = "listItem"
	NodeCodeBlock   = "codeBlock"
	NodeBlockquote  = "blockquote"
	NodeHardBreak   = "hardBreak"
	NodeText        = "text"
	NodeMention     = "mention"
)

// Mark kinds, named as the tracker names them.
const (
	MarkBold   = "strong"
	MarkItalic = "em"
	MarkCode   = "code"
	MarkStrike = "strike"
	MarkLink   = "link"
)

// Document is the root of a rich-text tree: an ordered sequence of block
// nodes. It decodes directly from the tracker's JSON payload.
type Document struct {
	Version int    `json:"version,omitempty"`
	Type    string `json:"type,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// Node is one vertex of the tree. Block nodes carry Content; text leaves
// carry Text and Marks. Attrs holds kind-specific attributes (heading level,
// code-block language, link href) exactly as decoded.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark is an inline formatting attribute attached to a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// attrString returns the named attribute as a string, or "" when absent or
// of another type.
func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}

// attrInt returns the named attribute as an int. JSON numbers decode as
// float64, so both numeric shapes are accepted.
func attrInt(attrs map[string]any, key string, fallback int) int {
	if attrs == nil {
		return fallback
	}
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
