package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

const (
	metadataPrefix  = "#"
	separatorPrefix = "---"
)

// SNGParser implements ports.SongParser for SNG song text
type SNGParser struct {
	logger *zap.Logger
}

var _ ports.SongParser = (*SNGParser)(nil)

// NewSNGParser creates a new SNG parser
func NewSNGParser(logger *zap.Logger) *SNGParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SNGParser{logger: logger.Named("parser")}
}

// Parse detects the format and builds the document. Lines that fit no rule
// become slide content; parsing never fails.
func (p *SNGParser) Parse(text string) *ports.ParseResult {
	lines := SplitLines(text)
	titled := IsTitledFormat(lines)

	doc := parseLines(lines, titled)

	p.logger.Debug("parsed song",
		zap.Bool("titled", titled),
		zap.Int("lines", len(lines)),
		zap.Int("slides", len(doc.Slides)),
		zap.Int("metadata", len(doc.Metadata)),
	)

	return &ports.ParseResult{Document: doc, Titled: titled}
}

// Parse is a convenience wrapper returning the document and format flag
func Parse(text string) (*entities.Document, bool) {
	lines := SplitLines(text)
	titled := IsTitledFormat(lines)
	return parseLines(lines, titled), titled
}

func parseLines(lines []string, titled bool) *entities.Document {
	doc := entities.NewDocument()
	var current *entities.Slide

	push := func() {
		if current != nil {
			doc.AddSlide(*current)
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, metadataPrefix) {
			key, value := splitMetadata(line)
			doc.Metadata.Set(key, value)
			continue
		}

		if strings.HasPrefix(line, separatorPrefix) {
			if !titled {
				push()
				current = &entities.Slide{Content: []string{}}
				continue
			}

			next := ""
			if i+1 < len(lines) {
				next = lines[i+1]
			}
			if IsTitle(next) {
				push()
				current = &entities.Slide{Title: trimSpace(next), Content: []string{}}
				i++
				continue
			}

			// not a separator; dropped when no slide is open yet
			if current != nil {
				current.Content = append(current.Content, separatorPrefix)
			}
			continue
		}

		if current == nil {
			current = &entities.Slide{Content: []string{}}
		}

		if !titled && len(current.Content) == 0 {
			if trimmed := trimSpace(line); trimmed != "" {
				current.Title = trimmed
			}
		}

		current.Content = append(current.Content, line)
	}

	push()
	return doc
}

// splitMetadata splits a #Key=Value line at the first '='
func splitMetadata(line string) (string, string) {
	body := strings.TrimPrefix(line, metadataPrefix)
	key, value, _ := strings.Cut(body, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}
