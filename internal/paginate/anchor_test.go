package paginate

import (
	"strings"
	"testing"

	"github.com/inkwise/folio/internal/book"
)

func buildTestMap(t *testing.T, text string, cols, rows int) *AnchorMap {
	t.Helper()
	p := cellParams(cols, rows)
	pages := New(nil).Paginate(text, p)
	return BuildMap(book.ContentID(text), pages, p)
}

func TestPageForOffset(t *testing.T) {
	text := strings.Repeat("a", 500) // 10 pages of 50 under 10x5
	m := buildTestMap(t, text, 10, 5)
	if m.TotalPages() != 10 {
		t.Fatalf("TotalPages = %d, want 10", m.TotalPages())
	}

	tests := []struct {
		off  int
		want int
	}{
		{-10, 1},
		{0, 1},
		{49, 1},
		{50, 2},
		{51, 2},
		{449, 9},
		{450, 10},
		{499, 10},
		{500, 10}, // end of text
		{720, 10}, // past the end
	}
	for _, tt := range tests {
		if got := m.PageForOffset(tt.off); got != tt.want {
			t.Errorf("PageForOffset(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}
}

func TestRangeForPageClamps(t *testing.T) {
	m := buildTestMap(t, strings.Repeat("a", 500), 10, 5)

	if r := m.RangeForPage(1); r.Start != 0 || r.End != 50 {
		t.Errorf("page 1 range = %+v", r)
	}
	if r := m.RangeForPage(0); r.Start != 0 {
		t.Errorf("page 0 should clamp to the first page, got %+v", r)
	}
	if r := m.RangeForPage(99); r.End != 500 {
		t.Errorf("page 99 should clamp to the last page, got %+v", r)
	}
}

func TestPageOffsetRoundTrip(t *testing.T) {
	text := strings.Repeat("words of varying width wrap unevenly across pages. ", 30)
	m := buildTestMap(t, text, 12, 4)

	for n := 1; n <= m.TotalPages(); n++ {
		r := m.RangeForPage(n)
		if got := m.PageForOffset(r.Start); got != n {
			t.Errorf("PageForOffset(start of page %d) = %d", n, got)
		}
		if r.Len() > 0 {
			if got := m.PageForOffset(r.End - 1); got != n {
				t.Errorf("PageForOffset(last byte of page %d) = %d", n, got)
			}
		}
	}
}

func TestPageSpan(t *testing.T) {
	text := strings.Repeat("a", 500)
	m := buildTestMap(t, text, 10, 5)

	tests := []struct {
		name          string
		r             book.Range
		first, beyond int
	}{
		{"first page exactly", book.Range{Start: 0, End: 50}, 1, 2},
		{"straddles two", book.Range{Start: 40, End: 60}, 1, 3},
		{"whole text", book.Range{Start: 0, End: 500}, 1, 11},
		{"empty range", book.Range{Start: 100, End: 100}, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, beyond := m.PageSpan(tt.r)
			if first != tt.first || beyond != tt.beyond {
				t.Errorf("PageSpan(%+v) = [%d, %d), want [%d, %d)",
					tt.r, first, beyond, tt.first, tt.beyond)
			}
		})
	}
}

func TestMustMatch(t *testing.T) {
	m := buildTestMap(t, "some document text", 10, 5)

	m.MustMatch(m.DocumentID) // must not panic

	defer func() {
		if recover() == nil {
			t.Errorf("MustMatch with a foreign document did not panic")
		}
	}()
	m.MustMatch("0123456789abcdef0123456789abcdef")
}

func TestBuildMapEmptyPages(t *testing.T) {
	m := BuildMap("id", nil, cellParams(10, 5))
	if m.TotalPages() != 1 {
		t.Errorf("TotalPages = %d, want 1", m.TotalPages())
	}
	if got := m.PageForOffset(0); got != 1 {
		t.Errorf("PageForOffset(0) = %d, want 1", got)
	}
}
