// Package progress preserves reading position across sessions and
// repagination. A position is a character anchor, not a page number:
// the byte offset of the first character visible on the current page,
// plus the layout hash it was captured under. Page numbers are
// recomputed from the anchor against whatever pagination is current, so
// "the same place in the text" survives any font or viewport change.
package progress

import (
	"time"

	"github.com/inkwise/folio/internal/paginate"
)

// Position is a durable reading anchor for one document.
type Position struct {
	DocumentID string    `json:"document_id"`
	Anchor     int       `json:"anchor"`
	ParamsHash string    `json:"params_hash"`
	CapturedAt time.Time `json:"captured_at"`
}

// Capture records the anchor of a page under the map's layout.
func Capture(page int, m *paginate.AnchorMap) Position {
	return Position{
		DocumentID: m.DocumentID,
		Anchor:     m.RangeForPage(page).Start,
		ParamsHash: m.ParamsHash,
		CapturedAt: time.Now(),
	}
}

// Resolve maps a saved position onto a pagination of the same document.
// Anchors outside the text clamp to the nearest page, so a position
// saved against a longer revision of the file still lands on readable
// text. Resolving against a different document panics; that mismatch
// means the caller has wired maps and positions from different books
// together.
func Resolve(pos Position, m *paginate.AnchorMap) int {
	m.MustMatch(pos.DocumentID)
	return m.PageForOffset(pos.Anchor)
}

// Fresh reports whether the position was captured under the same layout
// the map was built with. A stale hash is not an error, only a hint
// that the restored page number will differ from the one last seen.
func Fresh(pos Position, m *paginate.AnchorMap) bool {
	return pos.ParamsHash == m.ParamsHash
}

// Bookmark is a named position. The chapter title is denormalized so
// bookmark lists render without loading the document.
type Bookmark struct {
	Position Position `json:"position"`
	Note     string   `json:"note,omitempty"`
	Chapter  string   `json:"chapter,omitempty"`
}
