package translate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/inkwise/folio/internal/book"
)

const (
	defaultWindow  = 8
	defaultWorkers = 2
)

// Fetcher fills a Store by querying a Source in windows of consecutive
// paragraphs. Failures stay inside their window: one bad request marks
// its paragraphs failed and the rest of the document keeps fetching.
// Only cancellation stops a run early.
type Fetcher struct {
	source  Source
	store   Store
	log     *zap.Logger
	limiter *rate.Limiter
	window  int
	workers int
	notify  func(ParagraphRange, Status)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLogger attaches a logger for request outcomes.
func WithLogger(log *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// WithWindow sets how many paragraphs travel per request.
func WithWindow(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.window = n
		}
	}
}

// WithWorkers sets how many requests may be in flight at once.
func WithWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithRateLimit spaces requests at most one per interval with the given
// burst.
func WithRateLimit(interval time.Duration, burst int) FetcherOption {
	return func(f *Fetcher) {
		if interval > 0 && burst > 0 {
			f.limiter = rate.NewLimiter(rate.Every(interval), burst)
		}
	}
}

// WithNotify registers a callback invoked after every status change a
// fetch causes. The callback runs on fetch goroutines and must not
// block.
func WithNotify(fn func(ParagraphRange, Status)) FetcherOption {
	return func(f *Fetcher) { f.notify = fn }
}

// NewFetcher wires a source to a store.
func NewFetcher(source Source, store Store, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:  source,
		store:   store,
		log:     zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1),
		window:  defaultWindow,
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Prefetch requests every unresolved window of the document and returns
// once all have settled. The only error it returns is cancellation.
func (f *Fetcher) Prefetch(ctx context.Context, doc *book.Document, target language.Tag) error {
	paras := doc.Paragraphs()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	for start := 0; start < len(paras); start += f.window {
		r := ParagraphRange{Start: start, End: min(start+f.window, len(paras))}
		if _, st := f.store.Get(doc.ID, r, target); st == StatusReady || st == StatusPending {
			continue
		}
		g.Go(func() error {
			return f.fetch(ctx, doc, target, r)
		})
	}
	return g.Wait()
}

// Fetch requests a single clamped window on demand, typically to retry
// a failed range. Ranges already ready or in flight are left alone.
func (f *Fetcher) Fetch(ctx context.Context, doc *book.Document, target language.Tag, r ParagraphRange) error {
	n := len(doc.Paragraphs())
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > n {
		r.End = n
	}
	if r.Len() <= 0 {
		return nil
	}
	if _, st := f.store.Get(doc.ID, r, target); st == StatusReady || st == StatusPending {
		return nil
	}
	return f.fetch(ctx, doc, target, r)
}

func (f *Fetcher) fetch(ctx context.Context, doc *book.Document, target language.Tag, r ParagraphRange) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	f.store.MarkPending(doc.ID, r, target)
	f.emit(r, StatusPending)

	bodies := make([]string, 0, r.Len())
	for _, p := range doc.Paragraphs()[r.Start:r.End] {
		bodies = append(bodies, p.Body(doc.Text))
	}

	res, err := f.source.Translate(ctx, Request{
		DocumentID: doc.ID,
		Target:     target,
		Range:      r,
		Paragraphs: bodies,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.fail(doc.ID, target, r, err)
		return nil
	}
	if len(res.Paragraphs) != r.Len() {
		f.fail(doc.ID, target, r,
			fmt.Errorf("%w: want %d, got %d", ErrCountMismatch, r.Len(), len(res.Paragraphs)))
		return nil
	}

	f.store.Put(doc.ID, r, target, res.Paragraphs)
	f.emit(r, StatusReady)
	f.log.Debug("translated paragraphs",
		zap.Int("start", r.Start),
		zap.Int("end", r.End),
		zap.String("target", target.String()))
	return nil
}

func (f *Fetcher) fail(docID string, target language.Tag, r ParagraphRange, err error) {
	f.log.Warn("translation request failed",
		zap.Int("start", r.Start),
		zap.Int("end", r.End),
		zap.String("target", target.String()),
		zap.Error(err))
	f.store.MarkFailed(docID, r, target)
	f.emit(r, StatusFailed)
}

func (f *Fetcher) emit(r ParagraphRange, st Status) {
	if f.notify != nil {
		f.notify(r, st)
	}
}
