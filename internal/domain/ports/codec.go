package ports

import (
	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// ParseResult is a parsed song together with the format decision
type ParseResult struct {
	Document *entities.Document
	Titled   bool
}

// SongParser turns raw SNG text into a document. Parsing never fails:
// unexpected lines end up as slide content.
type SongParser interface {
	Parse(text string) *ParseResult
}

// SongSerializer turns a document and its playback order back into SNG text
type SongSerializer interface {
	Serialize(doc *entities.Document, order entities.PlaybackOrder, titled bool) string
}

// TextCodec converts between stored bytes and decoded text
type TextCodec interface {
	// Decode turns file bytes into text, honouring a BOM or legacy encoding
	Decode(data []byte) (string, error)

	// Encode turns text into the bytes written to disk or uploaded
	Encode(text string) ([]byte, error)
}
