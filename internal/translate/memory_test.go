package translate

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	doc := "doc-1"
	es := language.Spanish
	r := ParagraphRange{Start: 0, End: 2}

	if _, st := s.Paragraph(doc, 0, es); st != StatusMissing {
		t.Fatalf("fresh store status = %v, want missing", st)
	}

	s.MarkPending(doc, r, es)
	if _, st := s.Paragraph(doc, 1, es); st != StatusPending {
		t.Errorf("after MarkPending status = %v", st)
	}

	s.Put(doc, r, es, []string{"uno", "dos"})
	body, st := s.Paragraph(doc, 0, es)
	if st != StatusReady || body != "uno" {
		t.Errorf("after Put: %q, %v", body, st)
	}

	bodies, st := s.Get(doc, r, es)
	if st != StatusReady || len(bodies) != 2 || bodies[1] != "dos" {
		t.Errorf("Get = %v, %v", bodies, st)
	}

	// Ready entries survive later failure marks.
	s.MarkFailed(doc, r, es)
	if _, st := s.Paragraph(doc, 0, es); st != StatusReady {
		t.Errorf("MarkFailed downgraded a ready paragraph to %v", st)
	}
}

func TestMemoryStoreGetAggregation(t *testing.T) {
	es := language.Spanish
	doc := "doc-agg"

	t.Run("failure wins", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		s.Put(doc, ParagraphRange{0, 1}, es, []string{"uno"})
		s.MarkFailed(doc, ParagraphRange{1, 2}, es)
		s.MarkPending(doc, ParagraphRange{2, 3}, es)
		if _, st := s.Get(doc, ParagraphRange{0, 3}, es); st != StatusFailed {
			t.Errorf("status = %v, want failed", st)
		}
	})

	t.Run("pending beats missing", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		s.MarkPending(doc, ParagraphRange{0, 1}, es)
		if _, st := s.Get(doc, ParagraphRange{0, 3}, es); st != StatusPending {
			t.Errorf("status = %v, want pending", st)
		}
	})

	t.Run("partial is not ready", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		s.Put(doc, ParagraphRange{0, 2}, es, []string{"uno", "dos"})
		bodies, st := s.Get(doc, ParagraphRange{0, 3}, es)
		if st != StatusMissing || bodies != nil {
			t.Errorf("partial Get = %v, %v", bodies, st)
		}
	})

	t.Run("empty range is ready", func(t *testing.T) {
		s := NewMemoryStore(time.Minute)
		if _, st := s.Get(doc, ParagraphRange{4, 4}, es); st != StatusReady {
			t.Errorf("status = %v, want ready", st)
		}
	})
}

func TestMemoryStoreLanguageIsolation(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	s.Put("doc", ParagraphRange{0, 1}, language.Spanish, []string{"hola"})

	if _, st := s.Paragraph("doc", 0, language.French); st != StatusMissing {
		t.Errorf("French lookup found the Spanish entry: %v", st)
	}
	if _, st := s.Paragraph("other", 0, language.Spanish); st != StatusMissing {
		t.Errorf("other document found the entry: %v", st)
	}
}
