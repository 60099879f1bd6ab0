package progress

import (
	"strings"
	"testing"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/paginate"
)

// fixedMap paginates a 500-character run so each page holds exactly
// cols*rows characters.
func fixedMap(t *testing.T, cols, rows int) *paginate.AnchorMap {
	t.Helper()
	text := strings.Repeat("a", 500)
	p := layout.Params{
		FontSize:       10,
		LineSpacing:    1,
		ViewportWidth:  float64(cols) * 5,
		ViewportHeight: float64(rows) * 10,
	}
	return paginate.BuildMap(book.ContentID(text), paginate.New(nil).Paginate(text, p), p)
}

func TestCaptureResolveRoundTrip(t *testing.T) {
	m := fixedMap(t, 10, 5) // 50 chars per page, 10 pages

	for _, page := range []int{1, 4, 10} {
		pos := Capture(page, m)
		if pos.DocumentID != m.DocumentID {
			t.Errorf("captured document %q, map has %q", pos.DocumentID, m.DocumentID)
		}
		if got := Resolve(pos, m); got != page {
			t.Errorf("Resolve(Capture(%d)) = %d", page, got)
		}
		if !Fresh(pos, m) {
			t.Errorf("position captured from the map is not fresh against it")
		}
	}
}

func TestResolveAcrossReflow(t *testing.T) {
	before := fixedMap(t, 10, 5) // 50 chars per page
	after := fixedMap(t, 5, 5)   // 25 chars per page

	// Page 7 starts at character 300. Under the tighter layout that
	// character opens page 13.
	pos := Capture(7, before)
	if pos.Anchor != 300 {
		t.Fatalf("anchor = %d, want 300", pos.Anchor)
	}

	got := Resolve(pos, after)
	if got != 13 {
		t.Errorf("Resolve after reflow = %d, want 13", got)
	}
	if start := after.RangeForPage(got).Start; start != 300 {
		t.Errorf("restored page starts at %d, want the anchored character 300", start)
	}
	if Fresh(pos, after) {
		t.Errorf("position is fresh against a different layout")
	}
}

func TestResolveClampsAnchor(t *testing.T) {
	m := fixedMap(t, 10, 5)

	past := Position{DocumentID: m.DocumentID, Anchor: 100000}
	if got := Resolve(past, m); got != m.TotalPages() {
		t.Errorf("anchor past the end resolved to %d, want last page %d", got, m.TotalPages())
	}

	negative := Position{DocumentID: m.DocumentID, Anchor: -44}
	if got := Resolve(negative, m); got != 1 {
		t.Errorf("negative anchor resolved to %d, want 1", got)
	}
}

func TestResolveForeignDocumentPanics(t *testing.T) {
	m := fixedMap(t, 10, 5)
	defer func() {
		if recover() == nil {
			t.Errorf("Resolve against a foreign document did not panic")
		}
	}()
	Resolve(Position{DocumentID: "feedfacefeedfacefeedfacefeedface", Anchor: 10}, m)
}
