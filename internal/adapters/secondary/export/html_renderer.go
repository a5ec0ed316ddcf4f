package export

import (
	"context"
	"fmt"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// HTMLRenderer exports the standalone preview page
type HTMLRenderer struct {
	preview ports.PreviewRenderer
}

// NewHTMLRenderer creates a new HTML renderer
func NewHTMLRenderer(preview ports.PreviewRenderer) *HTMLRenderer {
	return &HTMLRenderer{preview: preview}
}

// Render implements Renderer
func (r *HTMLRenderer) Render(ctx context.Context, session *entities.Session) ([]byte, error) {
	page, err := r.preview.RenderPage(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("rendering preview page: %w", err)
	}
	return page, nil
}

// Supports implements Renderer
func (r *HTMLRenderer) Supports(format ExportFormat) bool {
	return format == FormatHTML
}

// GetMimeType implements Renderer
func (r *HTMLRenderer) GetMimeType() string {
	return "text/html; charset=utf-8"
}

// Extension implements Renderer
func (r *HTMLRenderer) Extension() string {
	return ".html"
}
