package search

import (
	"html"
	"unicode"

	"github.com/bambuco/boa/internal/bank"
)

// SuggestBox tracks the open suggestion panel: the ordered candidate list
// and the currently highlighted entry. Navigation is cyclic, wrapping at
// both ends.
type SuggestBox struct {
	items   []bank.Suggestion
	current int
	open    bool
}

// NewSuggestBox returns a closed, empty suggestion box.
func NewSuggestBox() *SuggestBox {
	return &SuggestBox{current: -1}
}

// Set replaces the candidate list and opens the panel when it is
// non-empty. The highlight resets to none.
func (b *SuggestBox) Set(items []bank.Suggestion) {
	b.items = items
	b.current = -1
	b.open = len(items) > 0
}

// Reset closes the panel and discards its candidates.
func (b *SuggestBox) Reset() {
	b.items = nil
	b.current = -1
	b.open = false
}

// Open reports whether the panel is visible.
func (b *SuggestBox) Open() bool { return b.open }

// Items returns the current candidate list.
func (b *SuggestBox) Items() []bank.Suggestion { return b.items }

// Next moves the highlight down one entry, wrapping to the top.
func (b *SuggestBox) Next() {
	if !b.open || len(b.items) == 0 {
		return
	}
	b.current++
	if b.current >= len(b.items) {
		b.current = 0
	}
}

// Prev moves the highlight up one entry, wrapping to the bottom.
func (b *SuggestBox) Prev() {
	if !b.open || len(b.items) == 0 {
		return
	}
	b.current--
	if b.current < 0 {
		b.current = len(b.items) - 1
	}
}

// Current returns the highlighted suggestion, if any.
func (b *SuggestBox) Current() (bank.Suggestion, bool) {
	if b.current < 0 || b.current >= len(b.items) {
		return bank.Suggestion{}, false
	}
	return b.items[b.current], true
}

// Accept closes the panel and returns the highlighted suggestion's query
// text. Accepting with no highlight returns false.
func (b *SuggestBox) Accept() (string, bool) {
	s, ok := b.Current()
	b.Reset()
	if !ok {
		return "", false
	}
	return s.Query, true
}

// Highlight marks the first case-insensitive occurrence of the query
// inside a suggestion with an emphasis tag. The surrounding text is
// HTML-escaped. Comparison is rune-wise, so letters whose lowercase form
// has a different byte length cannot shift the emphasis span or split a
// character.
func Highlight(s, query string) string {
	if query == "" {
		return html.EscapeString(s)
	}

	sr := []rune(s)
	qr := []rune(query)
	for i := range qr {
		qr[i] = unicode.ToLower(qr[i])
	}

	for i := 0; i+len(qr) <= len(sr); i++ {
		match := true
		for j, q := range qr {
			if unicode.ToLower(sr[i+j]) != q {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		return html.EscapeString(string(sr[:i])) +
			"<em>" + html.EscapeString(string(sr[i:i+len(qr)])) + "</em>" +
			html.EscapeString(string(sr[i+len(qr):]))
	}

	return html.EscapeString(s)
}
