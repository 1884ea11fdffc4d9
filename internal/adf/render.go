package adf

import (
	"fmt"
	"strings"
)

// Render converts a document tree into Markdown. It is total: any finite
// tree renders without error, unknown node kinds degrade to a comment, and
// a nil or empty document renders to the empty string.
func Render(doc *Document) string {
	if doc == nil || len(doc.Content) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range doc.Content {
		renderBlock(&b, n)
	}
	out := strings.TrimRight(b.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// renderBlock emits one top-level block followed by a blank-line separator.
func renderBlock(b *strings.Builder, n Node) {
	switch n.Type {
	case NodeParagraph:
		b.WriteString(renderInline(n.Content))
		b.WriteString("\n\n")

	case NodeHeading:
		level := attrInt(n.Attrs, "level", 1)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		line := strings.Repeat("#", level)
		if inline := renderInline(n.Content); inline != "" {
			line += " " + inline
		}
		b.WriteString(line + "\n\n")

	case NodeBulletList, NodeOrderedList:
		renderList(b, n, 0)
		b.WriteString("\n")

	case NodeCodeBlock:
		b.WriteString("```" + attrString(n.Attrs, "language") + "\n")
		content := codeText(n.Content)
		b.WriteString(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n")

	case NodeBlockquote:
		var inner strings.Builder
		for _, child := range n.Content {
			renderBlock(&inner, child)
		}
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			b.WriteString(strings.TrimRight("> "+line, " ") + "\n")
		}
		b.WriteString("\n")

	case NodeHardBreak:
		b.WriteString("\n")

	case NodeText, NodeMention:
		// Inline content at block level is tolerated and rendered as a
		// bare paragraph.
		b.WriteString(renderInline([]Node{n}))
		b.WriteString("\n\n")

	default:
		b.WriteString(unsupportedComment(n.Type) + "\n\n")
	}
}

// renderList emits one Markdown list, indenting two spaces per nesting level.
func renderList(b *strings.Builder, list Node, depth int) {
	indent := strings.Repeat("  ", depth)
	num := 1
	for _, item := range list.Content {
		marker := "- "
		if list.Type == NodeOrderedList {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		inline, nested := splitListItem(item)
		b.WriteString(strings.TrimRight(indent+marker+inline, " ") + "\n")
		for _, sub := range nested {
			renderList(b, sub, depth+1)
		}
	}
}

// splitListItem separates an item's inline content from any nested lists.
// The inline parts land on the item's own list line; nested lists follow on
// indented lines of their own.
func splitListItem(item Node) (string, []Node) {
	var parts []string
	var nested []Node
	for _, child := range item.Content {
		switch child.Type {
		case NodeBulletList, NodeOrderedList:
			nested = append(nested, child)
		case NodeParagraph:
			if s := renderInline(child.Content); s != "" {
				parts = append(parts, s)
			}
		default:
			if s := renderInline([]Node{child}); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " "), nested
}

// renderInline flattens inline nodes into a single string.
func renderInline(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case NodeText:
			b.WriteString(applyMarks(n.Text, n.Marks))
		case NodeHardBreak:
			b.WriteString("\n")
		case NodeMention:
			label := attrString(n.Attrs, "text")
			if label == "" {
				label = attrString(n.Attrs, "id")
			}
			if label != "" {
				b.WriteString("**" + label + "**")
			}
		default:
			// Unknown inline nodes (emoji, inline cards, future kinds):
			// salvage any text carried by their children, drop the rest.
			if len(n.Content) > 0 {
				b.WriteString(renderInline(n.Content))
			} else if n.Text != "" {
				b.WriteString(n.Text)
			}
		}
	}
	return b.String()
}

// applyMarks wraps text in Markdown delimiters with a fixed nesting order
// (link outermost, then bold, italic, code, strike innermost) so repeated
// renders of the same input are byte-identical.
func applyMarks(text string, marks []Mark) string {
	if text == "" || len(marks) == 0 {
		return text
	}
	var bold, italic, code, strike bool
	var href string
	for _, m := range marks {
		switch m.Type {
		case MarkBold:
			bold = true
		case MarkItalic:
			italic = true
		case MarkCode:
			code = true
		case MarkStrike:
			strike = true
		case MarkLink:
			href = attrString(m.Attrs, "href")
		}
	}
	out := text
	if strike {
		out = "~~" + out + "~~"
	}
	if code {
		out = "`" + out + "`"
	}
	if italic {
		out = "_" + out + "_"
	}
	if bold {
		out = "**" + out + "**"
	}
	if href != "" {
		out = "[" + out + "](" + href + ")"
	}
	return out
}

// codeText concatenates the raw text of a code block's children verbatim,
// ignoring marks.
func codeText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Text != "" {
			b.WriteString(n.Text)
		} else if len(n.Content) > 0 {
			b.WriteString(codeText(n.Content))
		}
	}
	return b.String()
}

// unsupportedComment is the deterministic rendering of a node kind the
// renderer does not understand: invisible in rendered Markdown, auditable
// in the raw file.
func unsupportedComment(kind string) string {
	return fmt.Sprintf("<!-- ansuz: unsupported node %q -->", kind)
}
