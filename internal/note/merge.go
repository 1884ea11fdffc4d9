package note

import "strings"

// UserNotesMarker separates the machine-owned region of a note from the
// operator-owned region below it. The literal matches what earlier versions
// of the tool wrote, so existing vaults keep working; rendering never
// produces it, so it cannot collide with issue content.
const UserNotesMarker = "%% USER_NOTES_START %%"

// Merge regenerates the machine-owned region of a note while preserving the
// operator-owned region byte for byte. The merge is textual and
// marker-position-based; the operator section is never parsed.
//
//   - No existing content: machine content, then the marker, then an empty
//     operator section.
//   - Marker present: everything from the first marker occurrence onward
//     (marker included) is carried forward verbatim.
//   - Marker absent: the file predates this tool or the marker was deleted
//     by hand. The whole existing content is preserved beneath a fresh
//     marker so first contact with a foreign file never loses data.
func Merge(existing []byte, machine string) string {
	machine = ensureTrailingNewline(machine)
	if len(existing) == 0 {
		return machine + UserNotesMarker + "\n"
	}
	content := string(existing)
	if i := strings.Index(content, UserNotesMarker); i >= 0 {
		return machine + content[i:]
	}
	return machine + UserNotesMarker + "\n" + content
}

// HasMarker reports whether content already carries the user-notes marker.
// A false result on an existing file is the recovery path, not an error:
// Merge preserves such content wholesale.
func HasMarker(content []byte) bool {
	return strings.Contains(string(content), UserNotesMarker)
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
