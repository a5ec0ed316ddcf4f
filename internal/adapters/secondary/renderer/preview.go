package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// PreviewRenderer renders song slides to sanitized HTML with Goldmark
type PreviewRenderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	page      *template.Template
	logger    *zap.Logger
}

var _ ports.PreviewRenderer = (*PreviewRenderer)(nil)

// NewPreviewRenderer creates a new preview renderer
func NewPreviewRenderer(logger *zap.Logger) (*PreviewRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Typographer,
			extension.Strikethrough,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	page, err := template.New("preview").Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 - content is sanitized before rendering
		},
	}).Parse(previewPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}

	return &PreviewRenderer{
		md:        md,
		sanitizer: createHTMLSanitizer(),
		page:      page,
		logger:    logger.Named("renderer"),
	}, nil
}

// createHTMLSanitizer creates a restrictive HTML sanitizer for slide content
func createHTMLSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("p", "br", "hr")
	p.AllowElements("strong", "b", "em", "i", "u", "s", "del", "mark")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("div", "span").AllowAttrs("class").OnElements("div", "span")

	return p
}

// RenderSlides renders the session's slides in playback order
func (r *PreviewRenderer) RenderSlides(ctx context.Context, session *entities.Session) ([]ports.RenderedSlide, error) {
	if session == nil || session.Document == nil {
		return nil, errors.New("session cannot be nil")
	}

	indices := playbackIndices(session)
	rendered := make([]ports.RenderedSlide, 0, len(indices))

	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slide := session.Document.Slides[idx]
		body, err := r.renderMarkdown(slide.Content)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", idx, err)
		}

		rendered = append(rendered, ports.RenderedSlide{
			Index: idx,
			Title: r.sanitizer.Sanitize(slide.TrimmedTitle()),
			HTML:  body,
		})
	}

	r.logger.Debug("rendered preview", zap.String("session", session.ID), zap.Int("slides", len(rendered)))
	return rendered, nil
}

// RenderPage renders a standalone HTML page of the session
func (r *PreviewRenderer) RenderPage(ctx context.Context, session *entities.Session) ([]byte, error) {
	slides, err := r.RenderSlides(ctx, session)
	if err != nil {
		return nil, err
	}

	data := struct {
		Title  string
		Author string
		Slides []ports.RenderedSlide
	}{
		Title:  session.Document.Title(),
		Author: strings.TrimSpace(session.Document.Metadata.Get("Author")),
		Slides: slides,
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing preview template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PreviewRenderer) renderMarkdown(lines []string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(strings.Join(lines, "\n")), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return r.sanitizer.Sanitize(buf.String()), nil
}

// playbackIndices returns storage indices in presentation order, skipping
// entries that no longer point at a slide
func playbackIndices(session *entities.Session) []int {
	count := session.Document.SlideCount()

	if session.Titled && len(session.Order) > 0 {
		indices := make([]int, 0, len(session.Order))
		for _, idx := range session.Order {
			if idx >= 0 && idx < count {
				indices = append(indices, idx)
			}
		}
		return indices
	}

	indices := make([]int, count)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

const previewPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{if .Title}}{{.Title}}{{else}}Song{{end}}</title>
    <style>
        body { font-family: sans-serif; margin: 0; background: #111; color: #eee; }
        header { padding: 1rem 2rem; border-bottom: 1px solid #333; }
        .slide { padding: 2rem; border-bottom: 1px solid #333; text-align: center; }
        .slide h2 { font-size: 0.9rem; text-transform: uppercase; color: #888; }
        .slide p { font-size: 1.6rem; line-height: 1.4; }
    </style>
</head>
<body>
    <header>
        <h1>{{.Title}}</h1>
        {{if .Author}}<p class="author">{{.Author}}</p>{{end}}
    </header>
    {{range .Slides}}
    <section class="slide" data-index="{{.Index}}">
        {{if .Title}}<h2>{{.Title}}</h2>{{end}}
        {{safeHTML .HTML}}
    </section>
    {{end}}
</body>
</html>
`
