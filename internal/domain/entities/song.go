package entities

import (
	"sort"
	"strings"
)

// VerseOrderKey is the reserved metadata key holding the playback sequence
const VerseOrderKey = "VerseOrder"

// DefaultSlideTitle is used for slides created without an explicit title
const DefaultSlideTitle = "New Slide"

// Metadata holds the #Key=Value header lines of a song
type Metadata map[string]string

// Get returns the value for key, or an empty string
func (m Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// Set stores a value, overwriting any previous one
func (m Metadata) Set(key, value string) {
	m[key] = value
}

// Keys returns metadata keys ordered by the preferred field order first and
// the remaining keys alphabetically.
func (m Metadata) Keys(preferred []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))

	for _, key := range preferred {
		if _, ok := m[key]; ok && !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(m))
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// Slide is a single slide of a song
type Slide struct {
	// Title is the slide label (e.g. "Vers 1", "Chorus"); may be empty
	Title string `json:"title" yaml:"title"`

	// Content holds the raw body lines, verbatim
	Content []string `json:"content" yaml:"content"`
}

// TrimmedTitle returns the title without surrounding whitespace
func (s *Slide) TrimmedTitle() string {
	return strings.TrimSpace(s.Title)
}

// FirstLine returns the first content line, or an empty string
func (s *Slide) FirstLine() string {
	if len(s.Content) == 0 {
		return ""
	}
	return s.Content[0]
}

// Text returns the slide body joined with newlines
func (s *Slide) Text() string {
	return strings.Join(s.Content, "\n")
}

// Document is a parsed SNG song: metadata plus slides in storage order
type Document struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Slides   []Slide  `json:"slides" yaml:"slides"`
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{
		Metadata: make(Metadata),
		Slides:   []Slide{},
	}
}

// SlideCount returns the number of slides
func (d *Document) SlideCount() int {
	return len(d.Slides)
}

// GetSlide returns the slide at index, or nil when out of range
func (d *Document) GetSlide(index int) *Slide {
	if index < 0 || index >= len(d.Slides) {
		return nil
	}
	return &d.Slides[index]
}

// AddSlide appends a slide and returns its storage index
func (d *Document) AddSlide(slide Slide) int {
	d.Slides = append(d.Slides, slide)
	return len(d.Slides) - 1
}

// Title returns the song title from metadata
func (d *Document) Title() string {
	return strings.TrimSpace(d.Metadata.Get("Title"))
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{
		Metadata: make(Metadata, len(d.Metadata)),
		Slides:   make([]Slide, len(d.Slides)),
	}
	for k, v := range d.Metadata {
		clone.Metadata[k] = v
	}
	for i, slide := range d.Slides {
		clone.Slides[i] = Slide{
			Title:   slide.Title,
			Content: append([]string(nil), slide.Content...),
		}
	}
	return clone
}
