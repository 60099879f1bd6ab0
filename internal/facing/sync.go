package facing

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/paginate"
	"github.com/inkwise/folio/internal/translate"
)

// Synchronizer owns the translated panel. It composes the translated
// stream by substituting each resolved paragraph into the original
// text, paginates that stream, and keeps the page correspondence table
// current as translations arrive. Paragraphs not yet translated show
// their original text, so the translated panel is always complete and
// page numbers never jump when a translation resolves elsewhere.
type Synchronizer struct {
	doc    *book.Document
	target language.Tag
	store  translate.Store
	pg     *paginate.Paginator
	log    *zap.Logger

	mu          sync.RWMutex
	origMap     *paginate.AnchorMap
	transParams layout.Params
	stream      string
	streamParas []book.Paragraph
	ready       []bool
	failed      []bool
	transMap    *paginate.AnchorMap
	table       *Table
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithLogger attaches a logger for refresh activity.
func WithLogger(log *zap.Logger) SyncOption {
	return func(y *Synchronizer) {
		if log != nil {
			y.log = log
		}
	}
}

// NewSynchronizer wires the translated panel for one document and
// target language. It is idle until Update supplies the original
// pagination.
func NewSynchronizer(doc *book.Document, target language.Tag, store translate.Store, pg *paginate.Paginator, opts ...SyncOption) *Synchronizer {
	if pg == nil {
		pg = paginate.New(nil)
	}
	y := &Synchronizer{
		doc:    doc,
		target: target,
		store:  store,
		pg:     pg,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Target returns the translation language of the panel.
func (y *Synchronizer) Target() language.Tag { return y.target }

// Update installs a new original pagination and translated panel
// parameters, then rebuilds the stream, its pagination, and the table.
// The session calls it after every completed repagination.
func (y *Synchronizer) Update(orig *paginate.AnchorMap, transParams layout.Params) {
	orig.MustMatch(y.doc.ID)
	y.mu.Lock()
	defer y.mu.Unlock()
	y.origMap = orig
	y.transParams = transParams
	y.compose()
	y.repaginate()
}

// Refresh re-reads the translation store and reports whether anything
// visible changed. The stream is recomposed only when a paragraph
// flipped to ready; a pure status flip (pending to failed) rebuilds the
// table without moving any page boundary.
func (y *Synchronizer) Refresh() bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.origMap == nil {
		return false
	}

	prevStream := y.stream
	prevReady := y.ready
	prevFailed := y.failed
	y.compose()

	streamChanged := y.stream != prevStream
	flagsChanged := !slices.Equal(y.ready, prevReady) || !slices.Equal(y.failed, prevFailed)
	if !streamChanged && !flagsChanged {
		return false
	}

	if streamChanged {
		y.repaginate()
	} else {
		y.rebuildTable()
	}
	return true
}

// compose rebuilds the translated stream under mu. Separators come from
// the original text, so the stream's paragraph tiling mirrors the
// original index-for-index regardless of what the translations contain.
func (y *Synchronizer) compose() {
	paras := y.doc.Paragraphs()
	var b strings.Builder
	streamParas := make([]book.Paragraph, len(paras))
	ready := make([]bool, len(paras))
	failed := make([]bool, len(paras))

	for i, p := range paras {
		body, st := y.store.Paragraph(y.doc.ID, i, y.target)
		switch st {
		case translate.StatusReady:
			ready[i] = true
		case translate.StatusFailed:
			failed[i] = true
			body = p.Body(y.doc.Text)
		default:
			body = p.Body(y.doc.Text)
		}

		start := b.Len()
		b.WriteString(body)
		bodyEnd := b.Len()
		b.WriteString(p.Separator(y.doc.Text))
		streamParas[i] = book.Paragraph{
			Range:   book.Range{Start: start, End: b.Len()},
			BodyEnd: bodyEnd,
		}
	}

	y.stream = b.String()
	y.streamParas = streamParas
	y.ready = ready
	y.failed = failed
}

// repaginate rebuilds the translated pagination and the table under mu.
func (y *Synchronizer) repaginate() {
	pages := y.pg.Paginate(y.stream, y.transParams)
	y.transMap = paginate.BuildMap(y.doc.ID+"@"+y.target.String(), pages, y.transParams)
	y.rebuildTable()
	y.log.Debug("translated panel repaginated",
		zap.Int("pages", y.transMap.TotalPages()),
		zap.String("target", y.target.String()))
}

func (y *Synchronizer) rebuildTable() {
	y.table = BuildTable(y.origMap, y.transMap, Correspondence{
		Original:   y.doc.Paragraphs(),
		Translated: y.streamParas,
		Ready:      y.ready,
		Failed:     y.failed,
	})
}

// Table returns the current correspondence table, or nil before the
// first Update.
func (y *Synchronizer) Table() *Table {
	y.mu.RLock()
	defer y.mu.RUnlock()
	return y.table
}

// TranslatedMap returns the current pagination of the translated
// stream, or nil before the first Update.
func (y *Synchronizer) TranslatedMap() *paginate.AnchorMap {
	y.mu.RLock()
	defer y.mu.RUnlock()
	return y.transMap
}

// PageFor returns the translated page facing an original page, with its
// status. Before the first Update it returns a zero page and
// PagePending.
func (y *Synchronizer) PageFor(origPage int) (paginate.Page, PageStatus) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	if y.table == nil || y.transMap == nil {
		return paginate.Page{}, PagePending
	}
	e := y.table.Translated(origPage)
	return y.transMap.Page(e.TranslatedPage), e.Status
}

// OriginalFor returns the original page whose span covers a translated
// page.
func (y *Synchronizer) OriginalFor(transPage int) int {
	y.mu.RLock()
	defer y.mu.RUnlock()
	if y.table == nil {
		return 1
	}
	return y.table.Original(transPage)
}

// ParagraphSpan returns the paragraphs an original page touches, for
// targeted retries.
func (y *Synchronizer) ParagraphSpan(origPage int) translate.ParagraphRange {
	y.mu.RLock()
	defer y.mu.RUnlock()
	if y.origMap == nil {
		return translate.ParagraphRange{}
	}
	r := y.origMap.RangeForPage(origPage)
	lo, hi := y.doc.ParagraphsInRange(r)
	return translate.ParagraphRange{Start: lo, End: hi}
}

// Progress counts resolved paragraphs against the total.
func (y *Synchronizer) Progress() (ready, total int) {
	y.mu.RLock()
	defer y.mu.RUnlock()
	for _, ok := range y.ready {
		if ok {
			ready++
		}
	}
	return ready, len(y.doc.Paragraphs())
}
