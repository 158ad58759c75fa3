package notes

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

// Note is one record produced by save_note.
type Note struct {
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
}

// Filename is the sanitized on-disk name for the note.
func (n Note) Filename() string {
	return types.SanitizeNoteFilename(n.Title)
}

// Body is the persisted content block: the content plus a trailing newline.
func (n Note) Body() string {
	return n.Content + "\n"
}

// ContentLength counts characters of Body.
func (n Note) ContentLength() int {
	return utf8.RuneCountInString(n.Body())
}

// Render serializes the note in its fixed file layout. Header values are
// kept on one line each.
func (n Note) Render() []byte {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(types.SingleLine(n.Title))
	b.WriteString("\nCreated: ")
	b.WriteString(envelope.Timestamp(n.CreatedAt))
	b.WriteString("\n")
	if len(n.Tags) > 0 {
		b.WriteString("Tags: ")
		tags := make([]string, 0, len(n.Tags))
		for _, tag := range n.Tags {
			tags = append(tags, types.SingleLine(tag))
		}
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(n.Body())
	return []byte(b.String())
}
