// Package layout measures how much text fits inside a bounded area.
// Measurement is deterministic: identical text and parameters always
// produce identical line breaks, with no dependence on prior calls,
// wall clock, or platform. All sizes are in points.
package layout

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Alignment selects horizontal placement of each wrapped line inside
// the content area. It never changes where lines break.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	}
	return "unknown"
}

// MaxMargin is the widest margin ordinal.
const MaxMargin = 4

// marginPt maps the margin ordinal to points on each edge.
var marginPt = [MaxMargin + 1]float64{0, 12, 24, 36, 48}

// Params captures every input that affects pagination. Two Params with
// the same Hash paginate any text identically.
type Params struct {
	FontSize       float64   // body size in points
	LineSpacing    float64   // line height as a multiple of FontSize
	Margin         int       // ordinal 0 (none) through MaxMargin (widest)
	Align          Alignment // display only, excluded from fit decisions
	ViewportWidth  float64   // available width in points
	ViewportHeight float64   // available height in points
}

// Default returns the reader's starting parameters.
func Default() Params {
	return Params{
		FontSize:       16,
		LineSpacing:    1.2,
		Margin:         1,
		Align:          AlignLeft,
		ViewportWidth:  420,
		ViewportHeight: 620,
	}
}

// MarginPt returns the margin width in points, clamping out-of-range
// ordinals to the nearest table entry.
func (p Params) MarginPt() float64 {
	m := p.Margin
	if m < 0 {
		m = 0
	}
	if m > MaxMargin {
		m = MaxMargin
	}
	return marginPt[m]
}

// ContentWidth returns the horizontal space left for text after
// margins. It can be zero or negative when margins swallow the
// viewport; callers treat that as a degenerate area.
func (p Params) ContentWidth() float64 { return p.ViewportWidth - 2*p.MarginPt() }

// ContentHeight returns the vertical space left for text after margins.
func (p Params) ContentHeight() float64 { return p.ViewportHeight - 2*p.MarginPt() }

// LineHeight returns the vertical advance of one line. Spacing below
// single keeps at least the font size so lines never overlap.
func (p Params) LineHeight() float64 {
	h := p.FontSize * p.LineSpacing
	if h < p.FontSize {
		h = p.FontSize
	}
	return h
}

// LinesPerPage returns how many lines fit in the content area. Any
// positive content height holds at least one line so pagination always
// advances.
func (p Params) LinesPerPage() int {
	ch := p.ContentHeight()
	if ch <= 0 || p.LineHeight() <= 0 {
		return 0
	}
	n := int(math.Floor(ch / p.LineHeight()))
	if n < 1 {
		n = 1
	}
	return n
}

// Degenerate reports whether the content area cannot hold text at all.
// Pagination responds by placing all remaining text on one page.
func (p Params) Degenerate() bool {
	return p.ContentWidth() <= 0 || p.ContentHeight() <= 0 || p.FontSize <= 0
}

// Hash returns a short stable fingerprint of every field that affects
// where pages break. It keys anchor map caches and marks saved
// positions so a stale page number is never trusted after parameters
// change. Alignment is excluded: it moves lines sideways without moving
// any break, so flipping it keeps existing maps and positions valid.
func (p Params) Hash() string {
	buf := make([]byte, 0, 44)
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(p.FontSize))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(p.LineSpacing))
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.Margin))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(p.ViewportWidth))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(p.ViewportHeight))
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:8])
}
