package session

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/facing"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/paginate"
	"github.com/inkwise/folio/internal/progress"
	"github.com/inkwise/folio/internal/translate"
)

// SetLayout schedules repagination of both panels under p after the
// debounce window. Further calls within the window replace the pending
// parameters and restart the clock, so a slider drag costs one
// repagination, not fifty.
func (s *Session) SetLayout(p layout.Params) { s.SetLayouts(p, p) }

// SetLayouts schedules repagination with distinct parameters per panel,
// for viewports of different sizes.
func (s *Session) SetLayouts(orig, trans layout.Params) {
	s.mu.Lock()
	if s.closed || s.current == nil {
		s.mu.Unlock()
		return
	}
	if orig == s.params && trans == s.transParams && !s.pendingSet {
		s.mu.Unlock()
		return
	}

	s.pending = orig
	s.pendingTrans = trans
	s.pendingSet = true
	s.state = StateRepaginating
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.debounce <= 0 {
		s.mu.Unlock()
		s.startReflow()
		return
	}
	s.timer = time.AfterFunc(s.debounce, s.startReflow)
	s.mu.Unlock()
}

// startReflow promotes the pending parameters to an actual run,
// cancelling any run still in flight. The reader keeps the old
// pagination until the new one is complete.
func (s *Session) startReflow() {
	s.mu.Lock()
	if s.closed || !s.pendingSet {
		s.mu.Unlock()
		return
	}
	p, tp := s.pending, s.pendingTrans
	s.pendingSet = false

	if s.reflowCancel != nil {
		s.reflowCancel()
		s.reflowCancel = nil
		s.stats.Canceled++
	}
	s.generation++
	gen := s.generation

	if m, ok := s.maps.Get(s.doc.ID, p.Hash()); ok {
		s.stats.CacheHits++
		s.mu.Unlock()
		s.finishReflow(gen, m, tp)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.reflowCancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.runReflow(ctx, gen, p, tp)
	}()
}

func (s *Session) runReflow(ctx context.Context, gen uint64, p, tp layout.Params) {
	pages, err := s.pg.PaginateContext(ctx, s.doc.Text, p)
	if err != nil {
		s.log.Debug("repagination canceled", zap.Uint64("generation", gen))
		return
	}
	s.finishReflow(gen, paginate.BuildMap(s.doc.ID, pages, p), tp)
}

// finishReflow installs a completed pagination unless a newer request
// superseded it. The reader's anchor character decides the new page.
func (s *Session) finishReflow(gen uint64, m *paginate.AnchorMap, tp layout.Params) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.maps.Put(m)
	s.current = m
	s.params = m.Params
	s.transParams = tp
	s.page = m.PageForOffset(s.anchor)
	s.anchor = m.RangeForPage(s.page).Start
	if s.reflowCancel != nil {
		s.reflowCancel()
		s.reflowCancel = nil
	}
	if s.pendingSet {
		// Another change is already waiting on the debounce clock.
		s.state = StateRepaginating
	} else {
		s.state = StatePaginated
	}
	s.stats.Reflows++
	pos := progress.Capture(s.page, s.current)
	store := s.store
	ev := s.eventLocked(EventPaginated)
	s.mu.Unlock()

	s.log.Debug("repaginated",
		zap.Uint64("generation", gen),
		zap.Int("pages", m.TotalPages()),
		zap.Int("page", ev.CurrentPage))

	s.persist(store, pos)
	if s.syncer != nil {
		s.syncer.Update(m, tp)
	}
	s.emit(ev)
}

func (s *Session) eventLocked(kind EventKind) Event {
	ev := Event{Kind: kind, CurrentPage: s.page}
	if s.current != nil {
		ev.TotalPages = s.current.TotalPages()
	}
	return ev
}

// emit delivers without blocking; a full channel drops the event.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Debug("event dropped", zap.Int("kind", int(ev.Kind)))
	}
}

// onTranslation runs on fetcher goroutines after each status change.
func (s *Session) onTranslation(r translate.ParagraphRange, st translate.Status) {
	if st != translate.StatusPending && s.syncer != nil {
		s.syncer.Refresh()
	}

	s.mu.Lock()
	closed := s.closed
	ev := s.eventLocked(EventTranslation)
	s.mu.Unlock()

	ev.Range = r
	ev.Status = st
	if !closed {
		s.emit(ev)
	}
}

// TranslationEnabled reports whether a translated panel exists.
func (s *Session) TranslationEnabled() bool { return s.syncer != nil }

// TranslationTarget returns the translated panel's language.
func (s *Session) TranslationTarget() language.Tag { return s.target }

// TranslationParams returns the translated panel's current effective
// parameters.
func (s *Session) TranslationParams() layout.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transParams
}

// FacingPage returns the translated page facing the current page, with
// its status.
func (s *Session) FacingPage() (paginate.Page, facing.PageStatus) {
	return s.FacingFor(s.CurrentPage())
}

// FacingFor returns the translated page facing original page n.
func (s *Session) FacingFor(n int) (paginate.Page, facing.PageStatus) {
	if s.syncer == nil {
		return paginate.Page{}, facing.PagePending
	}
	return s.syncer.PageFor(n)
}

// TranslationProgress counts resolved paragraphs against the total.
func (s *Session) TranslationProgress() (ready, total int) {
	if s.syncer == nil {
		return 0, 0
	}
	return s.syncer.Progress()
}

// RetryTranslation re-requests the paragraphs behind the current page,
// typically after a failure. The fetch runs in the background; a
// translation event reports the outcome.
func (s *Session) RetryTranslation() {
	if s.fetcher == nil {
		return
	}
	s.mu.Lock()
	if s.closed || s.current == nil {
		s.mu.Unlock()
		return
	}
	r := s.syncer.ParagraphSpan(s.page)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.fetcher.Fetch(s.ctx, s.doc, s.target, r); err != nil {
			s.log.Debug("retry stopped", zap.Error(err))
		}
	}()
}
