package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// MarkdownRenderer exports a session as a markdown slide deck with YAML
// frontmatter, one slide per playback entry.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a new markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

type markdownFrontmatter struct {
	Title     string            `yaml:"title,omitempty"`
	Author    string            `yaml:"author,omitempty"`
	Order     []string          `yaml:"order,omitempty"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
	Generator string            `yaml:"generator"`
}

// Render implements Renderer
func (r *MarkdownRenderer) Render(ctx context.Context, session *entities.Session) ([]byte, error) {
	doc := session.Document

	front := markdownFrontmatter{
		Title:     doc.Title(),
		Author:    strings.TrimSpace(doc.Metadata.Get("Author")),
		Metadata:  map[string]string(doc.Metadata),
		Generator: "sngedit",
	}
	if session.Titled {
		front.Order = session.Labels()
	}

	header, err := yaml.Marshal(front)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var content bytes.Buffer
	content.WriteString("---\n")
	content.Write(header)
	content.WriteString("---\n")

	for _, slide := range session.PlaybackSlides() {
		content.WriteString("\n")
		if title := slide.TrimmedTitle(); title != "" {
			content.WriteString("## " + title + "\n\n")
		}
		content.WriteString(markdownLines(slide.Content))
		content.WriteString("\n\n---\n")
	}

	return content.Bytes(), nil
}

// markdownLines joins lyric lines with hard line breaks
func markdownLines(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	return strings.Join(kept, "  \n")
}

// Supports implements Renderer
func (r *MarkdownRenderer) Supports(format ExportFormat) bool {
	return format == FormatMarkdown
}

// GetMimeType implements Renderer
func (r *MarkdownRenderer) GetMimeType() string {
	return "text/markdown; charset=utf-8"
}

// Extension implements Renderer
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
