package entities

import (
	"strings"
)

// PlaybackOrder is the sequence in which slides are presented. Entries are
// indices into Document.Slides; they reference slides but do not own them.
type PlaybackOrder []int

// DeriveOrder builds the playback order from the VerseOrder metadata value.
// Every label contributes the index of every slide carrying that title, so
// a label matching two slides yields both, in storage order.
func DeriveOrder(metadata Metadata, slides []Slide) PlaybackOrder {
	order := PlaybackOrder{}

	value, ok := metadata[VerseOrderKey]
	if !ok || value == "" {
		return order
	}

	for _, label := range splitLabels(value) {
		for i := range slides {
			if slides[i].TrimmedTitle() == label {
				order = append(order, i)
			}
		}
	}

	return order
}

// splitLabels splits a comma separated label list, dropping empty tokens
func splitLabels(value string) []string {
	parts := strings.Split(value, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}

// Len returns the number of entries
func (o PlaybackOrder) Len() int {
	return len(o)
}

// Contains reports whether slideIndex is referenced anywhere in the order
func (o PlaybackOrder) Contains(slideIndex int) bool {
	for _, idx := range o {
		if idx == slideIndex {
			return true
		}
	}
	return false
}

// Add inserts slideIndex at position, or appends when position is nil or
// out of range. Indices already present are ignored.
func (o *PlaybackOrder) Add(slideIndex int, position *int) {
	if o.Contains(slideIndex) {
		return
	}
	o.insert(slideIndex, position)
}

// Move takes the entry at from and reinserts it at to, or at the end when to
// is nil or invalid. An invalid from is ignored.
func (o *PlaybackOrder) Move(from int, to *int) {
	if from < 0 || from >= len(*o) {
		return
	}

	moved := (*o)[from]
	*o = append((*o)[:from], (*o)[from+1:]...)
	o.insert(moved, to)
}

// Remove deletes the entry at position; out of range positions are ignored
func (o *PlaybackOrder) Remove(position int) {
	if position < 0 || position >= len(*o) {
		return
	}
	*o = append((*o)[:position], (*o)[position+1:]...)
}

func (o *PlaybackOrder) insert(slideIndex int, position *int) {
	if position == nil || *position < 0 || *position >= len(*o) {
		*o = append(*o, slideIndex)
		return
	}

	at := *position
	*o = append(*o, 0)
	copy((*o)[at+1:], (*o)[at:])
	(*o)[at] = slideIndex
}

// Titles resolves each entry to its slide's trimmed title, skipping entries
// that point past the slide list or at untitled slides.
func (o PlaybackOrder) Titles(slides []Slide) []string {
	titles := make([]string, 0, len(o))
	for _, idx := range o {
		if idx < 0 || idx >= len(slides) {
			continue
		}
		if title := slides[idx].TrimmedTitle(); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// Clone returns an independent copy of the order
func (o PlaybackOrder) Clone() PlaybackOrder {
	clone := make(PlaybackOrder, len(o))
	copy(clone, o)
	return clone
}
