// Package session orchestrates one open document: pagination and
// debounced repagination, navigation, translation synchronization, and
// progress persistence. A session serializes setting changes so at most
// one repagination is ever in flight; a newer request cancels the older
// one, and the page shown to the reader always comes from the last
// fully built pagination.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/facing"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/paginate"
	"github.com/inkwise/folio/internal/progress"
	"github.com/inkwise/folio/internal/translate"
)

// State is the session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StatePaginated
	StateRepaginating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaginated:
		return "paginated"
	case StateRepaginating:
		return "repaginating"
	}
	return "unknown"
}

// EventKind discriminates session events.
type EventKind int

const (
	// EventPaginated fires after the initial pagination and after
	// every completed repagination.
	EventPaginated EventKind = iota
	// EventTranslation fires when a paragraph window changes
	// translation status.
	EventTranslation
)

// Event tells the UI something changed. Delivery is best effort: a
// reader that stops draining loses events, never pages.
type Event struct {
	Kind        EventKind
	TotalPages  int
	CurrentPage int

	// Translation events only.
	Range  translate.ParagraphRange
	Status translate.Status
}

// Stats counts repagination work, mostly for tests and status lines.
type Stats struct {
	Reflows   uint64 // completed repaginations
	Canceled  uint64 // repaginations superseded before finishing
	CacheHits uint64 // paginations served from the map cache
}

// DefaultDebounce coalesces slider-speed setting changes into one
// repagination.
const DefaultDebounce = 150 * time.Millisecond

// ErrNoStore marks operations that need a progress store when none is
// configured.
var ErrNoStore = errors.New("session: no progress store configured")

// Session is safe for concurrent use. All navigation is clamped; the
// only panics are cross-document map misuse, which no public entry
// point can trigger.
type Session struct {
	doc      *book.Document
	log      *zap.Logger
	pg       *paginate.Paginator
	maps     *paginate.Cache
	store    *progress.Store
	events   chan Event
	debounce time.Duration

	target    language.Tag
	src       translate.Source
	tstore    translate.Store
	fopts     []translate.FetcherOption
	fetcher   *translate.Fetcher
	syncer    *facing.Synchronizer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	state        State
	params       layout.Params
	transParams  layout.Params
	pending      layout.Params
	pendingTrans layout.Params
	pendingSet   bool
	timer        *time.Timer
	current      *paginate.AnchorMap
	page         int
	anchor       int
	generation   uint64
	reflowCancel context.CancelFunc
	stats        Stats
	closed       bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMeasurer substitutes the typeface model used for pagination.
func WithMeasurer(m *layout.Measurer) Option {
	return func(s *Session) { s.pg = paginate.New(m) }
}

// WithDebounce changes how long setting changes coalesce before
// repagination starts. Zero starts immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithProgressStore enables durable positions and bookmarks.
func WithProgressStore(ps *progress.Store) Option {
	return func(s *Session) { s.store = ps }
}

// WithMapCache sets the anchor map cache TTL.
func WithMapCache(ttl time.Duration) Option {
	return func(s *Session) { s.maps = paginate.NewCache(ttl) }
}

// WithTranslation enables the translated panel against a source and
// target language. Fetcher options tune windowing, workers, and rate.
func WithTranslation(src translate.Source, target language.Tag, opts ...translate.FetcherOption) Option {
	return func(s *Session) {
		s.src = src
		s.target = target
		s.fopts = opts
	}
}

// WithTranslationStore substitutes the translation cache, for sharing
// one across sessions or persisting it.
func WithTranslationStore(ts translate.Store) Option {
	return func(s *Session) { s.tstore = ts }
}

// New builds a session over an already-loaded document. The session is
// idle until Open runs the first pagination.
func New(doc *book.Document, p layout.Params, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		doc:         doc,
		log:         zap.NewNop(),
		pg:          paginate.New(nil),
		maps:        paginate.NewCache(30 * time.Minute),
		events:      make(chan Event, 16),
		debounce:    DefaultDebounce,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateIdle,
		params:      p,
		transParams: p,
		page:        1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.src != nil {
		if s.tstore == nil {
			s.tstore = translate.NewMemoryStore(0)
		}
		s.syncer = facing.NewSynchronizer(doc, s.target, s.tstore, s.pg, facing.WithLogger(s.log))
		fopts := append([]translate.FetcherOption{
			translate.WithLogger(s.log),
			translate.WithNotify(s.onTranslation),
		}, s.fopts...)
		s.fetcher = translate.NewFetcher(s.src, s.tstore, fopts...)
	}
	return s
}

// Open runs the initial pagination, restores any saved position, and
// starts translation prefetch. Calling it twice is a no-op.
func (s *Session) Open() {
	s.mu.Lock()
	if s.closed || s.state != StateIdle {
		s.mu.Unlock()
		return
	}

	m := s.buildMapLocked(s.params)
	s.current = m
	s.page = 1
	s.anchor = 0

	if s.store != nil {
		if pos, ok := s.store.Position(s.doc.ID); ok {
			s.page = progress.Resolve(pos, m)
			s.anchor = m.RangeForPage(s.page).Start
			if !progress.Fresh(pos, m) {
				s.log.Debug("position re-resolved after layout change",
					zap.Int("anchor", pos.Anchor),
					zap.Int("page", s.page))
			}
		}
	}

	s.state = StatePaginated
	ev := s.eventLocked(EventPaginated)
	tp := s.transParams
	s.mu.Unlock()

	s.log.Info("document opened",
		zap.String("document", s.doc.ID),
		zap.String("title", s.doc.Title),
		zap.Int("pages", m.TotalPages()))

	if s.syncer != nil {
		s.syncer.Update(m, tp)
	}
	if s.fetcher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.fetcher.Prefetch(s.ctx, s.doc, s.target); err != nil {
				s.log.Debug("translation prefetch stopped", zap.Error(err))
			}
		}()
	}
	s.emit(ev)
}

// buildMapLocked returns a pagination for p, from cache when possible.
func (s *Session) buildMapLocked(p layout.Params) *paginate.AnchorMap {
	if m, ok := s.maps.Get(s.doc.ID, p.Hash()); ok {
		s.stats.CacheHits++
		return m
	}
	m := paginate.BuildMap(s.doc.ID, s.pg.Paginate(s.doc.Text, p), p)
	s.maps.Put(m)
	return m
}

// Close cancels outstanding work, persists the position, and stops
// translation fetching. The events channel stays open but quiet.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.reflowCancel != nil {
		s.reflowCancel()
	}
	var pos progress.Position
	persist := s.store != nil && s.current != nil
	if persist {
		pos = progress.Capture(s.page, s.current)
	}
	s.state = StateIdle
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	if persist {
		if err := s.store.SetPosition(pos); err != nil {
			s.log.Warn("could not persist position", zap.Error(err))
		}
	}
	s.log.Info("session closed", zap.String("document", s.doc.ID))
}

// Events returns the notification channel. It is never closed; after
// Close no further events arrive.
func (s *Session) Events() <-chan Event { return s.events }

// Document returns the open document.
func (s *Session) Document() *book.Document { return s.doc }

// State returns the lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Params returns the original panel's current effective parameters.
func (s *Session) Params() layout.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Stats returns repagination counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Map returns the live pagination, or nil before Open.
func (s *Session) Map() *paginate.AnchorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// CurrentPage returns the 1-based page the reader is on.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// TotalPages returns the page count of the live pagination.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.TotalPages()
}

// Page returns the current page.
func (s *Session) Page() paginate.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return paginate.Page{}
	}
	return s.current.Page(s.page)
}

// PageText returns the text of page n, clamped into range.
func (s *Session) PageText(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Page(n).Text
}

// GoTo moves to page n, clamped into range, and persists the new
// anchor.
func (s *Session) GoTo(n int) {
	s.mu.Lock()
	if s.current == nil || s.closed {
		s.mu.Unlock()
		return
	}
	pg := s.current.Page(n)
	s.page = pg.Number
	s.anchor = pg.Start
	pos := progress.Capture(s.page, s.current)
	store := s.store
	s.mu.Unlock()

	s.persist(store, pos)
}

// Next turns one page forward.
func (s *Session) Next() { s.advance(1) }

// Prev turns one page back.
func (s *Session) Prev() { s.advance(-1) }

func (s *Session) advance(delta int) {
	s.mu.Lock()
	if s.current == nil || s.closed {
		s.mu.Unlock()
		return
	}
	pg := s.current.Page(s.page + delta)
	s.page = pg.Number
	s.anchor = pg.Start
	pos := progress.Capture(s.page, s.current)
	store := s.store
	s.mu.Unlock()

	s.persist(store, pos)
}

func (s *Session) persist(store *progress.Store, pos progress.Position) {
	if store == nil {
		return
	}
	if err := store.SetPosition(pos); err != nil {
		s.log.Warn("could not persist position", zap.Error(err))
	}
}

// Chapters returns the document's chapters.
func (s *Session) Chapters() []book.Chapter { return s.doc.Chapters }

// CurrentChapter returns the index of the chapter containing the
// reader's anchor.
func (s *Session) CurrentChapter() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ChapterForOffset(s.anchor)
}

// JumpToChapter moves to the first page of chapter i, clamped into
// range.
func (s *Session) JumpToChapter(i int) {
	chapters := s.doc.Chapters
	if len(chapters) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(chapters) {
		i = len(chapters) - 1
	}

	s.mu.Lock()
	if s.current == nil || s.closed {
		s.mu.Unlock()
		return
	}
	n := s.current.PageForOffset(chapters[i].Start)
	s.mu.Unlock()

	s.GoTo(n)
}

// Bookmarks lists saved bookmarks for this document.
func (s *Session) Bookmarks() []progress.Bookmark {
	if s.store == nil {
		return nil
	}
	return s.store.Bookmarks(s.doc.ID)
}

// AddBookmark saves the current position under a note.
func (s *Session) AddBookmark(note string) (progress.Bookmark, error) {
	if s.store == nil {
		return progress.Bookmark{}, ErrNoStore
	}
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return progress.Bookmark{}, errors.New("session: not open")
	}
	b := progress.Bookmark{
		Position: progress.Capture(s.page, s.current),
		Note:     note,
		Chapter:  s.doc.Chapters[s.doc.ChapterForOffset(s.anchor)].Title,
	}
	s.mu.Unlock()

	if err := s.store.AddBookmark(b); err != nil {
		return progress.Bookmark{}, err
	}
	return b, nil
}

// JumpToBookmark moves to a bookmark's anchor. Bookmarks from other
// documents are ignored with a warning; they are user data, not a
// programming error.
func (s *Session) JumpToBookmark(b progress.Bookmark) {
	if b.Position.DocumentID != s.doc.ID {
		s.log.Warn("bookmark belongs to another document",
			zap.String("document", b.Position.DocumentID))
		return
	}
	s.mu.Lock()
	if s.current == nil || s.closed {
		s.mu.Unlock()
		return
	}
	n := progress.Resolve(b.Position, s.current)
	s.mu.Unlock()

	s.GoTo(n)
}
