package export

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

const (
	separatorLine = "---"
	verseOrderSep = ", "
)

// SNGWriter serializes documents back into SNG text
type SNGWriter struct {
	fieldOrder []string
}

var _ ports.SongSerializer = (*SNGWriter)(nil)

// NewSNGWriter creates a writer emitting metadata in fieldOrder first.
// A nil fieldOrder uses entities.DefaultFieldOrder.
func NewSNGWriter(fieldOrder []string) *SNGWriter {
	if len(fieldOrder) == 0 {
		fieldOrder = entities.DefaultFieldOrder
	}
	return &SNGWriter{fieldOrder: fieldOrder}
}

// Serialize renders doc as SNG text. Slides are written in storage order;
// in titled format the playback order is written as the VerseOrder line.
func (w *SNGWriter) Serialize(doc *entities.Document, order entities.PlaybackOrder, titled bool) string {
	if doc == nil {
		return ""
	}

	lines := make([]string, 0, len(doc.Metadata)+len(doc.Slides)*4)

	for _, key := range doc.Metadata.Keys(w.fieldOrder) {
		if titled && key == entities.VerseOrderKey {
			continue
		}
		value := strings.TrimSpace(doc.Metadata[key])
		if value == "" {
			continue
		}
		lines = append(lines, "#"+key+"="+value)
	}

	if titled && len(order) > 0 {
		labels := order.Titles(doc.Slides)
		lines = append(lines, "#"+entities.VerseOrderKey+"="+strings.Join(labels, verseOrderSep))
	}

	for i := range doc.Slides {
		slide := &doc.Slides[i]
		lines = append(lines, separatorLine)
		if slide.Title != "" && (len(slide.Content) == 0 || !strings.HasPrefix(slide.Content[0], slide.Title)) {
			lines = append(lines, slide.Title)
		}
		lines = append(lines, slide.Content...)
	}

	return strings.Join(lines, "\n")
}

// Encode returns text as UTF-8 prefixed with a byte order mark
func Encode(text string) ([]byte, error) {
	encoded, err := unicode.UTF8BOM.NewEncoder().String(text)
	if err != nil {
		return nil, fmt.Errorf("encoding utf-8 with bom: %w", err)
	}
	return []byte(encoded), nil
}

// SNGRenderer exports a session as canonical SNG file bytes
type SNGRenderer struct {
	writer *SNGWriter
}

// NewSNGRenderer creates a new SNG export renderer
func NewSNGRenderer(writer *SNGWriter) *SNGRenderer {
	if writer == nil {
		writer = NewSNGWriter(nil)
	}
	return &SNGRenderer{writer: writer}
}

// Render implements Renderer
func (r *SNGRenderer) Render(ctx context.Context, session *entities.Session) ([]byte, error) {
	text := r.writer.Serialize(session.Document, session.Order, session.Titled)
	return Encode(text)
}

// Supports implements Renderer
func (r *SNGRenderer) Supports(format ExportFormat) bool {
	return format == FormatSNG
}

// GetMimeType implements Renderer
func (r *SNGRenderer) GetMimeType() string {
	return "text/plain; charset=utf-8"
}

// Extension implements Renderer
func (r *SNGRenderer) Extension() string {
	return ".sng"
}
