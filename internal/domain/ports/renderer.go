package ports

import (
	"context"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// RenderedSlide is a slide after HTML rendering
type RenderedSlide struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// PreviewRenderer renders a session as sanitized HTML
type PreviewRenderer interface {
	// RenderSlides renders the slides in playback order
	RenderSlides(ctx context.Context, session *entities.Session) ([]RenderedSlide, error)

	// RenderPage renders a complete standalone HTML page
	RenderPage(ctx context.Context, session *entities.Session) ([]byte, error)
}
