package notes

import (
	"context"
	"strings"

	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
)

type ReadResult struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	SizeBytes int    `json:"size_bytes"`
	Lines     int    `json:"lines"`
}

// ReadTool is read_file. Only bare names inside the storage root resolve.
type ReadTool struct {
	storage Storage
}

func NewReadTool(storage Storage) *ReadTool {
	return &ReadTool{storage: storage}
}

func (t *ReadTool) Name() string { return "read_file" }

func (t *ReadTool) Description() string {
	return "Read file contents with path traversal protection and structured output"
}

func (t *ReadTool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Read File",
		Fields: []schema.Field{{
			Name:        "filename",
			Type:        schema.TypeString,
			Description: "Name of file to read",
			Required:    true,
			MinLength:   1,
		}},
	}
}

func (t *ReadTool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "File Contents",
		Fields: []schema.OutputField{
			{Name: "filename", Type: "string"},
			{Name: "content", Type: "string"},
			{Name: "size_bytes", Type: "integer"},
			{Name: "lines", Type: "integer"},
		},
	}
}

func (t *ReadTool) Execute(ctx context.Context, in schema.Values) (any, error) {
	filename := in.String("filename")
	data, err := t.storage.Read(filename)
	if err != nil {
		return nil, err
	}
	content := string(data)
	return ReadResult{
		Filename:  filename,
		Content:   content,
		SizeBytes: len(data),
		Lines:     CountLines(content),
	}, nil
}

// CountLines counts lines the way a line splitter does: a trailing newline
// does not open a new line and \r\n, \r, \n all terminate one.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
