package builders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

func TestDocumentBuilder(t *testing.T) {
	t.Run("builds document with defaults", func(t *testing.T) {
		doc := NewDocumentBuilder().Build()

		assert.Equal(t, "Test Song", doc.Title())
		assert.Equal(t, "Test Author", doc.Metadata.Get("Author"))
		assert.Empty(t, doc.Slides)
	})

	t.Run("builds document with custom values", func(t *testing.T) {
		doc := NewDocumentBuilder().
			WithTitle("Custom").
			WithMetadata("CCLI", "12345").
			WithVerseOrder("Chorus").
			WithSlide("Chorus", "la la").
			Build()

		assert.Equal(t, "Custom", doc.Title())
		assert.Equal(t, "12345", doc.Metadata.Get("CCLI"))
		assert.Equal(t, "Chorus", doc.Metadata.Get(entities.VerseOrderKey))
		require.Len(t, doc.Slides, 1)
		assert.Equal(t, []string{"la la"}, doc.Slides[0].Content)
	})

	t.Run("build returns independent copies", func(t *testing.T) {
		b := NewDocumentBuilder().WithSlide("Vers 1", "a")
		first := b.Build()
		first.Slides[0].Content[0] = "changed"
		first.Metadata["Title"] = "changed"

		second := b.Build()
		assert.Equal(t, "a", second.Slides[0].Content[0])
		assert.Equal(t, "Test Song", second.Title())
	})

	t.Run("without metadata", func(t *testing.T) {
		doc := NewDocumentBuilder().WithoutMetadata().Build()
		assert.Empty(t, doc.Metadata)
	})
}

func TestSongHelpers(t *testing.T) {
	t.Run("titled song derives order", func(t *testing.T) {
		session := entities.NewSession(TitledSong(), true)
		assert.Equal(t, entities.PlaybackOrder{0, 2, 1, 2}, session.Order)
	})

	t.Run("untitled song", func(t *testing.T) {
		doc := UntitledSong()
		require.Len(t, doc.Slides, 2)
		assert.Equal(t, "Hello", doc.Slides[0].Title)
	})

	t.Run("slide builder defaults", func(t *testing.T) {
		slide := NewSlideBuilder().Build()
		assert.Equal(t, "Vers 1", slide.Title)
		assert.Equal(t, []string{"Test line"}, slide.Content)
	})
}
