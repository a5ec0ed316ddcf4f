package export

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// ExportFormat represents different export formats
type ExportFormat string

const (
	FormatSNG      ExportFormat = "sng"
	FormatMarkdown ExportFormat = "markdown"
	FormatYAML     ExportFormat = "yaml"
	FormatHTML     ExportFormat = "html"
)

// ExportErrorType categorizes different types of export errors
type ExportErrorType string

const (
	ErrorTypeValidation ExportErrorType = "validation"
	ErrorTypeRenderer   ExportErrorType = "renderer"
)

// ExportError provides detailed error information with categorization
type ExportError struct {
	Type    ExportErrorType `json:"type"`
	Message string          `json:"message"`
	Details string          `json:"details,omitempty"`
	Cause   error           `json:"-"`
}

func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s error: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// Renderer interface for different export formats
type Renderer interface {
	Render(ctx context.Context, session *entities.Session) ([]byte, error)
	Supports(format ExportFormat) bool
	GetMimeType() string
	Extension() string
}

// Service implements ports.ExportService
type Service struct {
	renderers map[ExportFormat]Renderer
	logger    *zap.Logger
}

var _ ports.ExportService = (*Service)(nil)

// NewService creates a new export service with the default renderers
func NewService(writer *SNGWriter, preview ports.PreviewRenderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &Service{
		renderers: make(map[ExportFormat]Renderer),
		logger:    logger.Named("export"),
	}

	service.RegisterRenderer(FormatSNG, NewSNGRenderer(writer))
	service.RegisterRenderer(FormatMarkdown, NewMarkdownRenderer())
	service.RegisterRenderer(FormatYAML, NewYAMLRenderer())
	if preview != nil {
		service.RegisterRenderer(FormatHTML, NewHTMLRenderer(preview))
	}

	return service
}

// RegisterRenderer registers a renderer for a specific format
func (s *Service) RegisterRenderer(format ExportFormat, renderer Renderer) {
	s.renderers[format] = renderer
}

// Export renders session in the requested format
func (s *Service) Export(ctx context.Context, session *entities.Session, format string) (*ports.ExportResult, error) {
	if session == nil || session.Document == nil {
		return nil, &ExportError{Type: ErrorTypeValidation, Message: "session is required"}
	}

	f := ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if f == "md" {
		f = FormatMarkdown
	}

	renderer, ok := s.renderers[f]
	if !ok {
		return nil, &ExportError{
			Type:    ErrorTypeValidation,
			Message: "unsupported export format",
			Details: format,
		}
	}

	start := time.Now()
	data, err := renderer.Render(ctx, session)
	if err != nil {
		return nil, &ExportError{
			Type:    ErrorTypeRenderer,
			Message: "rendering failed",
			Details: string(f),
			Cause:   err,
		}
	}

	s.logger.Debug("exported session",
		zap.String("session", session.ID),
		zap.String("format", string(f)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	return &ports.ExportResult{
		Format:      string(f),
		ContentType: renderer.GetMimeType(),
		Extension:   renderer.Extension(),
		Data:        data,
	}, nil
}

// GetSupportedFormats returns a list of supported export formats
func (s *Service) GetSupportedFormats() []string {
	formats := make([]string, 0, len(s.renderers))
	for format := range s.renderers {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	return formats
}

// ValidateFormat checks whether format is registered
func (s *Service) ValidateFormat(format string) error {
	if _, ok := s.renderers[ExportFormat(format)]; !ok {
		return fmt.Errorf("unsupported export format: %s (supported: %s)",
			format, strings.Join(s.GetSupportedFormats(), ", "))
	}
	return nil
}
