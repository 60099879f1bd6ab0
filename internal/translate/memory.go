package translate

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/text/language"
)

// Transient statuses expire on their own so a crashed fetch heals into
// a retriable miss.
const (
	pendingTTL = time.Minute
	failedTTL  = 30 * time.Second
)

// MemoryStore is an in-process Store on a TTL cache, one entry per
// paragraph.
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore returns a store whose ready translations expire after
// ttl. A non-positive ttl keeps them for the life of the process.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		return &MemoryStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
	}
	return &MemoryStore{c: gocache.New(ttl, 2*ttl)}
}

type entry struct {
	status Status
	body   string
}

func key(docID string, target language.Tag, idx int) string {
	return fmt.Sprintf("%s/%s/%d", docID, target, idx)
}

func (s *MemoryStore) lookup(docID string, target language.Tag, idx int) entry {
	v, ok := s.c.Get(key(docID, target, idx))
	if !ok {
		return entry{status: StatusMissing}
	}
	return v.(entry)
}

func (s *MemoryStore) Paragraph(docID string, idx int, target language.Tag) (string, Status) {
	e := s.lookup(docID, target, idx)
	return e.body, e.status
}

func (s *MemoryStore) Get(docID string, r ParagraphRange, target language.Tag) ([]string, Status) {
	if r.Len() <= 0 {
		return nil, StatusReady
	}
	bodies := make([]string, 0, r.Len())
	status := StatusReady
	for idx := r.Start; idx < r.End; idx++ {
		e := s.lookup(docID, target, idx)
		switch e.status {
		case StatusReady:
			bodies = append(bodies, e.body)
		case StatusFailed:
			return nil, StatusFailed
		case StatusPending:
			status = StatusPending
		default:
			if status == StatusReady {
				status = StatusMissing
			}
		}
	}
	if status != StatusReady {
		return nil, status
	}
	return bodies, StatusReady
}

func (s *MemoryStore) Put(docID string, r ParagraphRange, target language.Tag, paragraphs []string) {
	if len(paragraphs) != r.Len() {
		panic(fmt.Sprintf("translate: Put of %d bodies for a range of %d", len(paragraphs), r.Len()))
	}
	for i, body := range paragraphs {
		s.c.Set(key(docID, target, r.Start+i), entry{status: StatusReady, body: body}, gocache.DefaultExpiration)
	}
}

func (s *MemoryStore) MarkPending(docID string, r ParagraphRange, target language.Tag) {
	s.mark(docID, r, target, StatusPending, pendingTTL)
}

func (s *MemoryStore) MarkFailed(docID string, r ParagraphRange, target language.Tag) {
	s.mark(docID, r, target, StatusFailed, failedTTL)
}

func (s *MemoryStore) mark(docID string, r ParagraphRange, target language.Tag, st Status, ttl time.Duration) {
	for idx := r.Start; idx < r.End; idx++ {
		if e := s.lookup(docID, target, idx); e.status == StatusReady {
			continue
		}
		s.c.Set(key(docID, target, idx), entry{status: st}, ttl)
	}
}
