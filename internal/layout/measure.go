package layout

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// FitResult reports how much of a text fits in one content area.
type FitResult struct {
	Consumed   int  // bytes that fit, always a cluster boundary
	Lines      int  // wrapped lines produced for the consumed text
	Overflowed bool // text remains past Consumed
}

// Line is one wrapped display line. Text is the raw slice of the input,
// trailing whitespace and line break included, so concatenating the
// Text of every line reproduces the input exactly. Width is the
// rendered advance with trailing whitespace ignored, which is what
// alignment needs.
type Line struct {
	Text  string
	Width float64
}

// Measurer breaks text into lines against a typeface model. It holds no
// mutable state, so one Measurer may serve any number of goroutines.
type Measurer struct {
	metrics Metrics
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithMetrics substitutes the typeface model used for advances.
func WithMetrics(m Metrics) Option {
	return func(ms *Measurer) {
		if m != nil {
			ms.metrics = m
		}
	}
}

// New returns a Measurer backed by CellMetrics unless an option says
// otherwise.
func New(opts ...Option) *Measurer {
	ms := &Measurer{metrics: CellMetrics{}}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// Measure fits a prefix of text into the content area described by p.
// The rules, in order: a line break character ends the line it is on; a
// word that would pass the right edge moves whole to the next line; a
// word wider than the full line is split at the last cluster that fits;
// whitespace between words is consumed at the edge rather than wrapped.
// Every call with non-empty text consumes at least one cluster, and a
// degenerate content area takes all remaining text as a single
// nominal line.
func (ms *Measurer) Measure(text string, p Params) FitResult {
	if text == "" {
		return FitResult{}
	}
	if p.Degenerate() {
		return FitResult{Consumed: len(text), Lines: 1}
	}

	limit := p.ContentWidth()
	maxLines := p.LinesPerPage()
	off, lines := 0, 0
	for lines < maxLines && off < len(text) {
		off += ms.lineBreak(text[off:], limit, p.FontSize)
		lines++
	}
	return FitResult{Consumed: off, Lines: lines, Overflowed: off < len(text)}
}

// WrapLines breaks the whole text into display lines using the same
// decisions as Measure, without the page height limit. Rendering a page
// through WrapLines therefore shows exactly the text Measure assigned
// to it.
func (ms *Measurer) WrapLines(text string, p Params) []Line {
	if text == "" {
		return nil
	}
	if p.Degenerate() {
		return []Line{{Text: text}}
	}

	limit := p.ContentWidth()
	var lines []Line
	for off := 0; off < len(text); {
		n := ms.lineBreak(text[off:], limit, p.FontSize)
		raw := text[off : off+n]
		lines = append(lines, Line{
			Text:  raw,
			Width: ms.advance(strings.TrimRight(raw, " \t\r\n"), p.FontSize),
		})
		off += n
	}
	return lines
}

// lineBreak returns the byte length of the next wrapped line of rest.
// It consumes at least one cluster whenever rest is non-empty.
func (ms *Measurer) lineBreak(rest string, limit, fontSize float64) int {
	consumed := 0
	used := 0.0
	for consumed < len(rest) {
		tok, kind := nextToken(rest[consumed:])
		switch kind {
		case tokBreak:
			// The break character belongs to the line it ends.
			return consumed + len(tok)
		case tokSpace:
			// Whitespace is eaten at the edge, never wrapped.
			consumed += len(tok)
			used += ms.advance(tok, fontSize)
		default:
			w := ms.advance(tok, fontSize)
			if used > 0 && used+w > limit {
				return consumed
			}
			if used == 0 && w > limit {
				return consumed + ms.splitWord(tok, limit, fontSize)
			}
			consumed += len(tok)
			used += w
		}
	}
	return consumed
}

// splitWord returns the byte length of the widest prefix of word that
// fits in limit, never less than one cluster and never inside a
// cluster.
func (ms *Measurer) splitWord(word string, limit, fontSize float64) int {
	n := 0
	used := 0.0
	g := uniseg.NewGraphemes(word)
	for g.Next() {
		c := g.Str()
		w := ms.metrics.Advance(c, fontSize)
		if n > 0 && used+w > limit {
			break
		}
		n += len(c)
		used += w
	}
	return n
}

// advance sums cluster advances over s.
func (ms *Measurer) advance(s string, fontSize float64) float64 {
	total := 0.0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		total += ms.metrics.Advance(g.Str(), fontSize)
	}
	return total
}

const (
	tokWord = iota
	tokSpace
	tokBreak
)

// nextToken splits off the leading token of s: a single line break
// cluster, a run of horizontal whitespace, or a run of word clusters.
// Clusters are never divided, so a CRLF pair travels as one break.
func nextToken(s string) (string, int) {
	n := 0
	kind := -1
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		c := g.Str()
		k := classify(c)
		if kind == -1 {
			if k == tokBreak {
				return c, tokBreak
			}
			kind = k
		} else if k != kind {
			break
		}
		n += len(c)
	}
	return s[:n], kind
}

func classify(cluster string) int {
	if strings.ContainsAny(cluster, "\n\r") {
		return tokBreak
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return tokWord
		}
	}
	return tokSpace
}
