package paginate

import (
	"fmt"
	"sort"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/layout"
)

// AnchorMap is the queryable result of one pagination run: an ordered
// set of page ranges tied to the document and parameters that produced
// them. Both directions of lookup are total, so navigation code never
// sees an out-of-range answer.
type AnchorMap struct {
	DocumentID string
	Params     layout.Params
	ParamsHash string

	pages   []Page
	textLen int
}

// BuildMap wraps pages produced by Paginate into an AnchorMap for the
// given document.
func BuildMap(docID string, pages []Page, p layout.Params) *AnchorMap {
	if len(pages) == 0 {
		pages = []Page{{Number: 1, TotalPages: 1}}
	}
	return &AnchorMap{
		DocumentID: docID,
		Params:     p,
		ParamsHash: p.Hash(),
		pages:      pages,
		textLen:    pages[len(pages)-1].End,
	}
}

// TotalPages returns the page count, at least 1.
func (m *AnchorMap) TotalPages() int { return len(m.pages) }

// Pages returns the underlying pages in order. The slice is shared and
// must not be modified.
func (m *AnchorMap) Pages() []Page { return m.pages }

// Page returns the 1-based page n, clamping out-of-range numbers to the
// nearest end.
func (m *AnchorMap) Page(n int) Page {
	if n < 1 {
		n = 1
	}
	if n > len(m.pages) {
		n = len(m.pages)
	}
	return m.pages[n-1]
}

// RangeForPage returns the byte range of page n with the same clamping
// as Page.
func (m *AnchorMap) RangeForPage(n int) book.Range {
	pg := m.Page(n)
	return book.Range{Start: pg.Start, End: pg.End}
}

// PageForOffset returns the page containing the byte offset. It is
// total over [0, text length]: negative offsets resolve to the first
// page and offsets at or past the end to the last, so a stale anchor
// always lands somewhere readable.
func (m *AnchorMap) PageForOffset(off int) int {
	if off < 0 {
		return 1
	}
	i := sort.Search(len(m.pages), func(i int) bool { return m.pages[i].End > off })
	if i == len(m.pages) {
		return len(m.pages)
	}
	return m.pages[i].Number
}

// PageSpan returns the half-open page interval [first, beyond) covering
// the byte range r, clamped to the document.
func (m *AnchorMap) PageSpan(r book.Range) (first, beyond int) {
	first = m.PageForOffset(r.Start)
	if r.Len() <= 0 {
		return first, first + 1
	}
	return first, m.PageForOffset(r.End-1) + 1
}

// MustMatch panics unless the map was built for the given document.
// Querying a map against the wrong document is a programming error that
// would silently corrupt positions, so it fails loudly instead.
func (m *AnchorMap) MustMatch(docID string) {
	if m.DocumentID != docID {
		panic(fmt.Sprintf("paginate: anchor map for document %s queried with document %s",
			m.DocumentID, docID))
	}
}
