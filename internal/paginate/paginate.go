// Package paginate splits document text into pages and answers
// position queries against the result. Pages tile the text: every byte
// belongs to exactly one page, pages never overlap, and re-running
// pagination with the same inputs reproduces the same boundaries.
package paginate

import (
	"context"

	"github.com/inkwise/folio/internal/layout"
)

// Page is one unit of display. Start and End are byte offsets into the
// document text, half-open, always on grapheme cluster boundaries.
type Page struct {
	Number     int    // 1-based
	Start      int    // inclusive
	End        int    // exclusive
	Text       string // document text slice for [Start, End)
	TotalPages int
}

// Range returns the page's byte extent.
func (p Page) Range() (start, end int) { return p.Start, p.End }

// Paginator turns text into pages using a layout measurer. It is
// stateless and safe for concurrent use.
type Paginator struct {
	m *layout.Measurer
}

// New returns a Paginator. A nil measurer selects the default cell
// model.
func New(m *layout.Measurer) *Paginator {
	if m == nil {
		m = layout.New()
	}
	return &Paginator{m: m}
}

// Measurer exposes the underlying measurer so display code wraps page
// text with exactly the breaks pagination used.
func (pg *Paginator) Measurer() *layout.Measurer { return pg.m }

// Paginate splits text into pages under p. Empty text yields a single
// empty page, never zero pages.
func (pg *Paginator) Paginate(text string, p layout.Params) []Page {
	pages, _ := pg.paginate(context.Background(), text, p)
	return pages
}

// PaginateContext is Paginate with cancellation. It checks the context
// between pages and returns its error, leaving no partial result.
func (pg *Paginator) PaginateContext(ctx context.Context, text string, p layout.Params) ([]Page, error) {
	return pg.paginate(ctx, text, p)
}

func (pg *Paginator) paginate(ctx context.Context, text string, p layout.Params) ([]Page, error) {
	if text == "" {
		return []Page{{Number: 1, Start: 0, End: 0, Text: "", TotalPages: 1}}, nil
	}

	var pages []Page
	for off := 0; off < len(text); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fit := pg.m.Measure(text[off:], p)
		if fit.Consumed <= 0 {
			// The measurer guarantees progress on non-empty text;
			// treat a violation as end of input rather than spin.
			break
		}
		end := off + fit.Consumed
		pages = append(pages, Page{
			Number: len(pages) + 1,
			Start:  off,
			End:    end,
			Text:   text[off:end],
		})
		off = end
	}

	for i := range pages {
		pages[i].TotalPages = len(pages)
	}
	return pages, nil
}
