package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

type SaveResult struct {
	Filename      string   `json:"filename"`
	Title         string   `json:"title"`
	ContentLength int      `json:"content_length"`
	Tags          []string `json:"tags"`
	CreatedAt     string   `json:"created_at"`
	Message       string   `json:"message"`
}

// SaveTool is save_note.
type SaveTool struct {
	storage Storage
	now     func() time.Time
}

func NewSaveTool(storage Storage, now func() time.Time) *SaveTool {
	if now == nil {
		now = time.Now
	}
	return &SaveTool{storage: storage, now: now}
}

func (t *SaveTool) Name() string { return "save_note" }

func (t *SaveTool) Description() string {
	return "Save a note with optional tags, validated inputs, and structured output"
}

func (t *SaveTool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Save Note",
		Fields: []schema.Field{
			{Name: "title", Type: schema.TypeString, Description: "Note title; only letters, digits, spaces, '-' and '_' are kept", Required: true, Trim: true, MinLength: 1, MaxLength: 100, Clean: types.SanitizeTitle},
			{Name: "content", Type: schema.TypeString, Description: "Note content", Required: true, MinLength: 1},
			{Name: "tags", Type: schema.TypeArray, Description: "Optional tags for categorization", Default: []string{}, Clean: types.SingleLine},
		},
	}
}

func (t *SaveTool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "Saved Note",
		Fields: []schema.OutputField{
			{Name: "filename", Type: "string"},
			{Name: "title", Type: "string"},
			{Name: "content_length", Type: "integer", Description: "characters in the persisted body"},
			{Name: "tags", Type: "array"},
			{Name: "created_at", Type: "string"},
			{Name: "message", Type: "string"},
		},
	}
}

func (t *SaveTool) Execute(ctx context.Context, in schema.Values) (any, error) {
	note := Note{
		Title:     in.String("title"),
		Content:   in.String("content"),
		Tags:      in.Strings("tags"),
		CreatedAt: t.now(),
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	filename := note.Filename()
	if err := t.storage.Write(filename, note.Render()); err != nil {
		if _, ok := types.AsFailure(err); !ok {
			err = types.WrapFailure(types.KindIOError, fmt.Sprintf("could not write %q", filename), err)
		}
		return nil, err
	}
	logger.InfoContext(ctx, "Note saved", "filename", filename, "root", t.storage.Root())

	return SaveResult{
		Filename:      filename,
		Title:         note.Title,
		ContentLength: note.ContentLength(),
		Tags:          note.Tags,
		CreatedAt:     envelope.Timestamp(note.CreatedAt),
		Message:       fmt.Sprintf("Note successfully saved to %s", filename),
	}, nil
}
