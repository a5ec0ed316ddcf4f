package builders

import (
	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// DocumentBuilder helps build Document entities for testing
type DocumentBuilder struct {
	doc *entities.Document
}

// NewDocumentBuilder creates a new document builder with a title and author
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		doc: &entities.Document{
			Metadata: entities.Metadata{
				"Title":  "Test Song",
				"Author": "Test Author",
			},
			Slides: []entities.Slide{},
		},
	}
}

// WithTitle sets the Title metadata value
func (b *DocumentBuilder) WithTitle(title string) *DocumentBuilder {
	b.doc.Metadata["Title"] = title
	return b
}

// WithMetadata sets a metadata value
func (b *DocumentBuilder) WithMetadata(key, value string) *DocumentBuilder {
	b.doc.Metadata[key] = value
	return b
}

// WithoutMetadata clears all metadata
func (b *DocumentBuilder) WithoutMetadata() *DocumentBuilder {
	b.doc.Metadata = entities.Metadata{}
	return b
}

// WithVerseOrder sets the VerseOrder metadata value
func (b *DocumentBuilder) WithVerseOrder(order string) *DocumentBuilder {
	b.doc.Metadata[entities.VerseOrderKey] = order
	return b
}

// WithSlide appends a slide
func (b *DocumentBuilder) WithSlide(title string, lines ...string) *DocumentBuilder {
	b.doc.Slides = append(b.doc.Slides, NewSlideBuilder().WithTitle(title).WithLines(lines...).Build())
	return b
}

// Build creates the final Document entity
func (b *DocumentBuilder) Build() *entities.Document {
	metadata := make(entities.Metadata, len(b.doc.Metadata))
	for k, v := range b.doc.Metadata {
		metadata[k] = v
	}

	slides := make([]entities.Slide, len(b.doc.Slides))
	for i, s := range b.doc.Slides {
		slides[i] = entities.Slide{Title: s.Title, Content: append([]string{}, s.Content...)}
	}

	return &entities.Document{Metadata: metadata, Slides: slides}
}

// BuildSession wraps the document in a session
func (b *DocumentBuilder) BuildSession(titled bool) *entities.Session {
	return entities.NewSession(b.Build(), titled)
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide entities.Slide
}

// NewSlideBuilder creates a new slide builder with a verse title
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: entities.Slide{
			Title:   "Vers 1",
			Content: []string{"Test line"},
		},
	}
}

// WithTitle sets the slide title
func (b *SlideBuilder) WithTitle(title string) *SlideBuilder {
	b.slide.Title = title
	return b
}

// WithLines replaces the slide content
func (b *SlideBuilder) WithLines(lines ...string) *SlideBuilder {
	b.slide.Content = append([]string{}, lines...)
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	return entities.Slide{
		Title:   b.slide.Title,
		Content: append([]string{}, b.slide.Content...),
	}
}

// Common songs for testing

// TitledSong creates a titled song with a verse order
func TitledSong() *entities.Document {
	return NewDocumentBuilder().
		WithTitle("Amazing Grace").
		WithVerseOrder("Vers 1, Chorus, Vers 2, Chorus").
		WithSlide("Vers 1", "Amazing grace how sweet the sound", "That saved a wretch like me").
		WithSlide("Vers 2", "Twas grace that taught my heart to fear", "And grace my fears relieved").
		WithSlide("Chorus", "I once was lost but now am found", "Was blind but now I see").
		Build()
}

// UntitledSong creates a song whose slides take their title from the first line
func UntitledSong() *entities.Document {
	return NewDocumentBuilder().
		WithTitle("Simple").
		WithSlide("Hello", "Hello", "World").
		WithSlide("Foo", "Foo").
		Build()
}

// TitledSongText is TitledSong as SNG text
const TitledSongText = `#Title=Amazing Grace
#Author=Test Author
#VerseOrder=Vers 1, Chorus, Vers 2, Chorus
---
Vers 1
Amazing grace how sweet the sound
That saved a wretch like me
---
Vers 2
Twas grace that taught my heart to fear
And grace my fears relieved
---
Chorus
I once was lost but now am found
Was blind but now I see`
