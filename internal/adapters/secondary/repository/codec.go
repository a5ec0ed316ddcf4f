package repository

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SNGCodec reads UTF-8 (with or without BOM) and legacy Windows-1252 song
// files and always writes UTF-8 with a BOM.
type SNGCodec struct{}

var _ ports.TextCodec = SNGCodec{}

// Decode implements ports.TextCodec
func (SNGCodec) Decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return string(data[len(utf8BOM):]), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding windows-1252: %w", err)
	}
	return string(decoded), nil
}

// Encode implements ports.TextCodec
func (SNGCodec) Encode(text string) ([]byte, error) {
	encoded, err := unicode.UTF8BOM.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding utf-8 with bom: %w", err)
	}
	return encoded, nil
}
