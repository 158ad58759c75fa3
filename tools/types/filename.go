package types

import (
	"strings"
	"unicode"
)

const (
	NoteFilePrefix = "note_"
	NoteFileSuffix = ".txt"

	// MaxNoteStemLength bounds the sanitized title portion of a note filename.
	MaxNoteStemLength = 64
	// MaxNoteFilenameLength is the longest name SanitizeNoteFilename returns.
	MaxNoteFilenameLength = len(NoteFilePrefix) + MaxNoteStemLength + len(NoteFileSuffix)

	untitledStem = "untitled"
)

// SanitizeTitle keeps only [A-Za-z0-9_ -] of title, with any whitespace
// turned into a plain space, and trims the result. An empty return means
// the title had nothing safe to keep.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case isFilenameRune(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SingleLine replaces control characters, line breaks included, with spaces
// and trims the result.
func SingleLine(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, s))
}

// SanitizeNoteFilename turns an untrusted title into note_<stem>.txt where
// stem only holds [A-Za-z0-9_-]. Feeding the output back in returns it
// unchanged.
func SanitizeNoteFilename(title string) string {
	stem := strings.TrimSuffix(title, NoteFileSuffix)
	stem = strings.TrimPrefix(stem, NoteFilePrefix)

	stem = strings.Join(strings.Fields(SanitizeTitle(stem)), "_")
	if len(stem) > MaxNoteStemLength {
		stem = stem[:MaxNoteStemLength]
	}
	// save_note rejects titles with nothing safe in them; other callers
	// still get a valid name.
	if stem == "" {
		stem = untitledStem
	}
	return NoteFilePrefix + stem + NoteFileSuffix
}

func isFilenameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-' || r == ' '
}
