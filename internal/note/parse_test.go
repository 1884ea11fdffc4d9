package note

import (
	"testing"
)

func TestParse_FrontmatterBodyAndNotes(t *testing.T) {
	raw := "---\njira_key: \"PROJ-7\"\njira_status: \"To Do\"\n---\n# PROJ-7 Title\n\nbody text\n" +
		UserNotesMarker + "\n\noperator notes\n"
	p := Parse([]byte(raw))
	if !p.HasMarker {
		t.Fatal("HasMarker = false")
	}
	if p.Frontmatter["jira_key"] != "PROJ-7" {
		t.Errorf("jira_key = %v", p.Frontmatter["jira_key"])
	}
	if p.Body != "# PROJ-7 Title\n\nbody text\n" {
		t.Errorf("Body = %q", p.Body)
	}
	if p.UserNotes != "\noperator notes\n" {
		t.Errorf("UserNotes = %q", p.UserNotes)
	}
}

func TestParse_NoMarker(t *testing.T) {
	p := Parse([]byte("# Plain note\n\nno marker\n"))
	if p.HasMarker {
		t.Error("HasMarker = true")
	}
	if p.UserNotes != "" {
		t.Errorf("UserNotes = %q", p.UserNotes)
	}
	if p.Body != "# Plain note\n\nno marker\n" {
		t.Errorf("Body = %q", p.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	p := Parse([]byte("just a body\n" + UserNotesMarker + "\n"))
	if p.Frontmatter != nil {
		t.Errorf("Frontmatter = %v, want nil", p.Frontmatter)
	}
	if p.Body != "just a body\n" {
		t.Errorf("Body = %q", p.Body)
	}
}

func TestParse_InvalidFrontmatterFallsBackToBody(t *testing.T) {
	raw := "---\n: bad: yaml: {{{\n---\nbody\n"
	p := Parse([]byte(raw))
	if p.Frontmatter != nil {
		t.Errorf("Frontmatter = %v, want nil on invalid YAML", p.Frontmatter)
	}
	if p.Body != raw {
		t.Errorf("Body = %q, want raw input", p.Body)
	}
}

func TestParse_Empty(t *testing.T) {
	p := Parse(nil)
	if p.HasMarker || p.Frontmatter != nil || p.Body != "" || p.UserNotes != "" {
		t.Errorf("Parse(nil) = %+v", p)
	}
}
