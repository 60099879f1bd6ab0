// Package facing keeps an original document and its translated
// rendition aligned page-to-page. The two texts paginate independently,
// so the link between them goes through paragraphs: an original page is
// tied to the paragraph at its head, and that paragraph's position in
// the translated stream names the partner page. Lookups in both
// directions are monotonic, so paging forward on one panel never drags
// the other panel backward.
package facing

import (
	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/paginate"
)

// PageStatus qualifies a correspondence entry.
type PageStatus int

const (
	// PageSynced means the partner page shows real translation.
	PageSynced PageStatus = iota
	// PagePending means the head paragraph still awaits translation;
	// the partner page shows original text in its place.
	PagePending
	// PageFailed means the last translation attempt for the head
	// paragraph failed.
	PageFailed
)

func (s PageStatus) String() string {
	switch s {
	case PageSynced:
		return "synced"
	case PagePending:
		return "pending"
	case PageFailed:
		return "failed"
	}
	return "unknown"
}

// Entry links one original page to its translated partner.
type Entry struct {
	TranslatedPage int
	Status         PageStatus
}

// Correspondence ties each original paragraph to its span in the
// composed translated stream. The two paragraph slices have equal
// length and equal meaning index-by-index; Ready and Failed report the
// translation state per paragraph.
type Correspondence struct {
	Original   []book.Paragraph
	Translated []book.Paragraph
	Ready      []bool
	Failed     []bool
}

// Table is a complete page correspondence for one pagination of both
// panels. It is immutable; the synchronizer swaps in a fresh table
// whenever either side changes.
type Table struct {
	entries []Entry // index: original page - 1
	reverse []int   // index: translated page - 1, value: original page
}

// BuildTable derives the correspondence table for the given pagination
// of both panels. Entries are forced monotonic: a later original page
// never maps to an earlier translated page.
func BuildTable(orig, trans *paginate.AnchorMap, c Correspondence) *Table {
	entries := make([]Entry, orig.TotalPages())
	prev := 1
	for i := range entries {
		r := orig.RangeForPage(i + 1)
		pi := book.ParagraphIndex(c.Original, r.Start)

		tp := 1
		if pi < len(c.Translated) {
			tp = trans.PageForOffset(c.Translated[pi].Start)
		}
		if tp < prev {
			tp = prev
		}
		prev = tp

		st := PageSynced
		if pi < len(c.Ready) && !c.Ready[pi] {
			st = PagePending
			if pi < len(c.Failed) && c.Failed[pi] {
				st = PageFailed
			}
		}
		entries[i] = Entry{TranslatedPage: tp, Status: st}
	}

	reverse := make([]int, trans.TotalPages())
	oi := 0
	for m := 1; m <= len(reverse); m++ {
		for oi+1 < len(entries) && entries[oi+1].TranslatedPage <= m {
			oi++
		}
		reverse[m-1] = oi + 1
	}

	return &Table{entries: entries, reverse: reverse}
}

// OriginalPages returns the page count of the original panel.
func (t *Table) OriginalPages() int { return len(t.entries) }

// TranslatedPages returns the page count of the translated panel.
func (t *Table) TranslatedPages() int { return len(t.reverse) }

// Translated returns the entry for an original page, clamped into
// range.
func (t *Table) Translated(orig int) Entry {
	if len(t.entries) == 0 {
		return Entry{TranslatedPage: 1}
	}
	if orig < 1 {
		orig = 1
	}
	if orig > len(t.entries) {
		orig = len(t.entries)
	}
	return t.entries[orig-1]
}

// Original returns the original page whose span covers a translated
// page, clamped into range.
func (t *Table) Original(trans int) int {
	if len(t.reverse) == 0 {
		return 1
	}
	if trans < 1 {
		trans = 1
	}
	if trans > len(t.reverse) {
		trans = len(t.reverse)
	}
	return t.reverse[trans-1]
}
