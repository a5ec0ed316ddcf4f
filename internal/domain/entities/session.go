package entities

import (
	"time"
)

// UntitledLabel is shown for order entries whose slide has no title
const UntitledLabel = "(untitled)"

// SessionSource describes where a session's text came from
type SessionSource struct {
	// Kind is one of "text", "file" or "remote"
	Kind string `json:"kind"`

	// Location is the file path or URL, empty for inline text
	Location string `json:"location,omitempty"`
}

// Session is one editing session: a document, its playback order and the
// format decision taken when the text was parsed. The caller owns it.
type Session struct {
	ID       string        `json:"id"`
	Document *Document     `json:"document"`
	Order    PlaybackOrder `json:"order"`
	Titled   bool          `json:"titled"`
	Source   SessionSource `json:"source"`
	Opened   time.Time     `json:"opened"`
	Modified time.Time     `json:"modified"`
}

// NewSession wraps a parsed document and derives its initial playback order.
// Untitled documents never carry an order.
func NewSession(doc *Document, titled bool) *Session {
	if doc == nil {
		doc = NewDocument()
	}
	if doc.Metadata == nil {
		doc.Metadata = make(Metadata)
	}

	order := PlaybackOrder{}
	if titled {
		order = DeriveOrder(doc.Metadata, doc.Slides)
	}

	now := time.Now()
	return &Session{
		Document: doc,
		Order:    order,
		Titled:   titled,
		Opened:   now,
		Modified: now,
	}
}

// SetMetadata sets a metadata value. In titled format a VerseOrder value
// replaces the playback order, which owns that line on output.
func (s *Session) SetMetadata(key, value string) {
	s.Document.Metadata.Set(key, value)
	if s.Titled && key == VerseOrderKey {
		s.Order = DeriveOrder(s.Document.Metadata, s.Document.Slides)
	}
	s.touch()
}

// SetTitle renames a slide; the order follows automatically because it
// references slides by index. Out of range indices are ignored.
func (s *Session) SetTitle(index int, title string) {
	slide := s.Document.GetSlide(index)
	if slide == nil {
		return
	}
	slide.Title = title
	s.touch()
}

// SetContent replaces a slide's body lines; out of range indices are ignored
func (s *Session) SetContent(index int, lines []string) {
	slide := s.Document.GetSlide(index)
	if slide == nil {
		return
	}
	slide.Content = append([]string(nil), lines...)
	s.touch()
}

// AddSlide appends a new slide to storage order and returns its index. An
// empty title and body produce the default placeholder slide.
func (s *Session) AddSlide(title string, content []string) int {
	if title == "" && len(content) == 0 {
		title = DefaultSlideTitle
	}
	if len(content) == 0 {
		content = []string{""}
	}
	idx := s.Document.AddSlide(Slide{Title: title, Content: append([]string(nil), content...)})
	s.touch()
	return idx
}

// AddToOrder references a slide in the playback order. Untitled songs keep
// an empty order, so it does nothing for them.
func (s *Session) AddToOrder(slideIndex int, position *int) {
	if !s.Titled {
		return
	}
	s.Order.Add(slideIndex, position)
	s.touch()
}

// MoveInOrder reorders an existing playback entry
func (s *Session) MoveInOrder(from int, to *int) {
	s.Order.Move(from, to)
	s.touch()
}

// RemoveFromOrder drops the playback entry at position
func (s *Session) RemoveFromOrder(position int) {
	s.Order.Remove(position)
	s.touch()
}

// Labels returns display labels for the playback order
func (s *Session) Labels() []string {
	labels := make([]string, 0, len(s.Order))
	for _, idx := range s.Order {
		slide := s.Document.GetSlide(idx)
		if slide == nil {
			continue
		}
		if slide.Title == "" {
			labels = append(labels, UntitledLabel)
			continue
		}
		labels = append(labels, slide.Title)
	}
	return labels
}

// PlaybackSlides returns the slides in presentation order. Without an order
// the storage order is used.
func (s *Session) PlaybackSlides() []Slide {
	if !s.Titled || len(s.Order) == 0 {
		return s.Document.Slides
	}

	slides := make([]Slide, 0, len(s.Order))
	for _, idx := range s.Order {
		if slide := s.Document.GetSlide(idx); slide != nil {
			slides = append(slides, *slide)
		}
	}
	return slides
}

func (s *Session) touch() {
	s.Modified = time.Now()
}

// Clone returns a deep copy that can be read without holding the store lock
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Document = s.Document.Clone()
	clone.Order = s.Order.Clone()
	return &clone
}
