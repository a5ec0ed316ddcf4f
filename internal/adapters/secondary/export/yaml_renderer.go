package export

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// YAMLRenderer dumps a session as a YAML document
type YAMLRenderer struct{}

// NewYAMLRenderer creates a new YAML renderer
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

type yamlSong struct {
	Titled   bool              `yaml:"titled"`
	Metadata map[string]string `yaml:"metadata"`
	Order    []int             `yaml:"order,flow"`
	Labels   []string          `yaml:"labels,flow"`
	Slides   []entities.Slide  `yaml:"slides"`
}

// Render implements Renderer
func (r *YAMLRenderer) Render(ctx context.Context, session *entities.Session) ([]byte, error) {
	out := yamlSong{
		Titled:   session.Titled,
		Metadata: map[string]string(session.Document.Metadata),
		Order:    []int(session.Order),
		Labels:   session.Labels(),
		Slides:   session.Document.Slides,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling yaml: %w", err)
	}
	return data, nil
}

// Supports implements Renderer
func (r *YAMLRenderer) Supports(format ExportFormat) bool {
	return format == FormatYAML
}

// GetMimeType implements Renderer
func (r *YAMLRenderer) GetMimeType() string {
	return "application/yaml"
}

// Extension implements Renderer
func (r *YAMLRenderer) Extension() string {
	return ".yaml"
}
