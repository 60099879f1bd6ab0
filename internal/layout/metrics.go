package layout

import "github.com/mattn/go-runewidth"

// Metrics reports the horizontal advance of text for a typeface model.
// Implementations must be pure: the same cluster and size always yield
// the same advance.
type Metrics interface {
	// Advance returns the width in points of a single grapheme
	// cluster rendered at the given font size.
	Advance(cluster string, fontSize float64) float64
}

// CellMetrics models a monospaced face the way a terminal does: every
// cluster occupies a whole number of cells, wide CJK forms take two,
// and a cell is Aspect times the font size across. Combining marks and
// control characters advance zero cells.
type CellMetrics struct {
	// Aspect is the cell width as a fraction of the font size. Zero
	// means DefaultAspect.
	Aspect float64
}

// DefaultAspect matches common terminal cell proportions and is exact
// in binary floating point, which keeps advance sums free of rounding
// drift.
const DefaultAspect = 0.5

func (m CellMetrics) Advance(cluster string, fontSize float64) float64 {
	aspect := m.Aspect
	if aspect <= 0 {
		aspect = DefaultAspect
	}
	cells := runewidth.StringWidth(cluster)
	if cells <= 0 {
		return 0
	}
	return float64(cells) * fontSize * aspect
}
