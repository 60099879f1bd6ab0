// Package translate is the boundary between the reader and machine
// translation. Translations are fetched per run of paragraphs, cached
// by document and target language, and looked up without ever blocking
// the caller: a missing translation is an answer, not a wait.
package translate

import (
	"context"
	"errors"

	"golang.org/x/text/language"
)

// Status describes what the cache knows about a paragraph translation.
type Status int

const (
	StatusMissing Status = iota // never requested
	StatusPending               // request in flight
	StatusReady                 // translation available
	StatusFailed                // last request failed, may be retried
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// ParagraphRange is a half-open [Start, End) interval of paragraph
// indices within one document.
type ParagraphRange struct {
	Start int
	End   int
}

// Len returns the number of paragraphs in the range.
func (r ParagraphRange) Len() int { return r.End - r.Start }

// Request asks a source to translate a run of paragraph bodies. The
// bodies arrive in document order without their blank-line separators.
type Request struct {
	DocumentID string
	Target     language.Tag
	Range      ParagraphRange
	Paragraphs []string
}

// Result carries translated bodies. A valid result has exactly one body
// per requested paragraph, in the same order; anything else is rejected
// by the fetcher because pagination alignment depends on the
// correspondence staying one-to-one.
type Result struct {
	Paragraphs []string
}

// ErrCountMismatch rejects a result whose paragraph count differs from
// the request.
var ErrCountMismatch = errors.New("translate: paragraph count mismatch")

// Source produces translations. Calls may block on the network and must
// honor the context.
type Source interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// Store is the translation cache consulted while rendering. Every
// method returns immediately; display code calls into it on each page
// turn.
type Store interface {
	// Paragraph returns one cached body and its status. The body is
	// empty unless the status is StatusReady.
	Paragraph(docID string, idx int, target language.Tag) (string, Status)

	// Get aggregates a range: bodies are returned only when every
	// paragraph is ready. Otherwise the strongest pending condition
	// wins: any failure makes the range failed, else any in-flight
	// paragraph makes it pending, else it is missing.
	Get(docID string, r ParagraphRange, target language.Tag) ([]string, Status)

	// Put stores ready bodies for a range. Callers pass exactly
	// r.Len() bodies.
	Put(docID string, r ParagraphRange, target language.Tag, paragraphs []string)

	// MarkPending flags a range as requested. It never downgrades a
	// paragraph that is already ready.
	MarkPending(docID string, r ParagraphRange, target language.Tag)

	// MarkFailed flags a range as failed. It never downgrades a
	// paragraph that is already ready.
	MarkFailed(docID string, r ParagraphRange, target language.Tag)
}
