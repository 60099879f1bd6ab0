package translate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/book"
)

// Static serves translations from a parallel text aligned
// paragraph-for-paragraph with the original document. It backs the
// dual-panel view when a pre-translated rendition ships alongside the
// book, and doubles as the test source.
type Static struct {
	target language.Tag
	bodies []string

	// Delay simulates request latency before each response.
	Delay time.Duration
}

// NewStatic segments the parallel text with the same paragraph rules as
// the original document.
func NewStatic(target language.Tag, text string) *Static {
	paras := book.SegmentParagraphs(text)
	bodies := make([]string, len(paras))
	for i, p := range paras {
		bodies[i] = p.Body(text)
	}
	return &Static{target: target, bodies: bodies}
}

// Paragraphs returns how many paragraphs the parallel text holds.
func (s *Static) Paragraphs() int { return len(s.bodies) }

func (s *Static) Translate(ctx context.Context, req Request) (Result, error) {
	if req.Target != s.target {
		return Result{}, fmt.Errorf("translate: static source holds %s, not %s", s.target, req.Target)
	}
	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(s.Delay):
		}
	}

	r := req.Range
	if r.Start < 0 || r.End > len(s.bodies) || r.Start > r.End {
		return Result{}, fmt.Errorf("translate: paragraphs [%d, %d) outside parallel text of %d",
			r.Start, r.End, len(s.bodies))
	}
	out := make([]string, r.Len())
	copy(out, s.bodies[r.Start:r.End])
	return Result{Paragraphs: out}, nil
}
