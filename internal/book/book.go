// Package book defines the immutable document model shared by the
// layout, pagination, and synchronization packages. A Document is plain
// text addressed by byte offsets, pre-segmented into paragraphs and
// chapters. Offsets always land on grapheme cluster boundaries, so any
// Range can be sliced out of the text and concatenated back without
// corrupting characters.
package book

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
)

// Range is a half-open [Start, End) byte range into a document's text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether off falls inside the range.
func (r Range) Contains(off int) bool { return off >= r.Start && off < r.End }

// Paragraph is one tile of the document text. The full Range includes
// the blank-line separator that follows the paragraph body, so the
// paragraphs of a document tile its text exactly. BodyEnd marks where
// the body stops and the separator begins.
type Paragraph struct {
	Range
	BodyEnd int
}

// Body returns the paragraph text without its trailing separator.
func (p Paragraph) Body(text string) string { return text[p.Start:p.BodyEnd] }

// Separator returns the blank-line run that closes the paragraph. It is
// empty for the final paragraph of a document.
func (p Paragraph) Separator(text string) string { return text[p.BodyEnd:p.End] }

// Chapter is a titled region of the document. Chapter ranges do not
// need to tile the text; front matter and separators may fall between
// them.
type Chapter struct {
	Title string
	Range
}

// Document is an immutable text prepared for pagination. The ID is
// derived from the text content, so two loads of the same file agree on
// identity while any edit produces a new one.
type Document struct {
	ID       string
	Title    string
	Text     string
	Chapters []Chapter

	paras []Paragraph
}

// New builds a Document from already-extracted text. Chapters are
// sorted and clamped to the text; when none are given the whole text
// becomes a single chapter named after the title.
func New(title, text string, chapters []Chapter) *Document {
	d := &Document{
		ID:    ContentID(text),
		Title: title,
		Text:  text,
		paras: SegmentParagraphs(text),
	}

	for _, c := range chapters {
		if c.Start < 0 {
			c.Start = 0
		}
		if c.End > len(text) {
			c.End = len(text)
		}
		if c.End <= c.Start {
			continue
		}
		d.Chapters = append(d.Chapters, c)
	}
	sort.SliceStable(d.Chapters, func(i, j int) bool {
		return d.Chapters[i].Start < d.Chapters[j].Start
	})

	if len(d.Chapters) == 0 {
		name := title
		if name == "" {
			name = "Document"
		}
		d.Chapters = []Chapter{{Title: name, Range: Range{Start: 0, End: len(text)}}}
	}
	return d
}

// ContentID returns the identity hash for a text: the first half of its
// SHA-256 digest in hex. Documents with identical text share an ID.
func ContentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

// Len returns the byte length of the document text.
func (d *Document) Len() int { return len(d.Text) }

// Slice returns the text covered by r. The range must lie within the
// document.
func (d *Document) Slice(r Range) string { return d.Text[r.Start:r.End] }

// Paragraphs returns the paragraph tiling of the text. The slice is
// shared and must not be modified.
func (d *Document) Paragraphs() []Paragraph { return d.paras }

// ParagraphForOffset returns the index of the paragraph whose range
// contains off. It is total over [0, Len()]: negative offsets map to
// the first paragraph and offsets at or past the end map to the last.
func (d *Document) ParagraphForOffset(off int) int {
	return ParagraphIndex(d.paras, off)
}

// ParagraphsInRange returns the half-open index range [lo, hi) of
// paragraphs overlapping r. An empty r yields the single paragraph at
// its start.
func (d *Document) ParagraphsInRange(r Range) (lo, hi int) {
	lo = ParagraphIndex(d.paras, r.Start)
	if r.Len() <= 0 {
		return lo, lo + 1
	}
	return lo, ParagraphIndex(d.paras, r.End-1) + 1
}

// ChapterForOffset returns the index of the last chapter starting at or
// before off, or 0 when off precedes every chapter.
func (d *Document) ChapterForOffset(off int) int {
	for i := len(d.Chapters) - 1; i >= 0; i-- {
		if d.Chapters[i].Start <= off {
			return i
		}
	}
	return 0
}

// ParagraphIndex locates the paragraph containing off in any tiling,
// with the same totality as ParagraphForOffset.
func ParagraphIndex(paras []Paragraph, off int) int {
	if len(paras) == 0 {
		return 0
	}
	if off < 0 {
		return 0
	}
	// First paragraph whose end exceeds off; past-the-end offsets
	// resolve to the final paragraph.
	i := sort.Search(len(paras), func(i int) bool { return paras[i].End > off })
	if i == len(paras) {
		return len(paras) - 1
	}
	return i
}

// paraBreak matches a blank-line separator: a newline, optional
// horizontal space, and at least one more newline, greedily extended
// over any further blank lines. A carriage return before the first
// newline belongs to the separator so CRLF text keeps clean bodies.
var paraBreak = regexp.MustCompile(`\r?\n[ \t\r]*\n[ \t\r\n]*`)

// SegmentParagraphs tiles text into paragraphs. Each separator is
// attached to the paragraph it terminates, so ranges cover every byte
// of the input. Empty text yields a single empty paragraph.
func SegmentParagraphs(text string) []Paragraph {
	if text == "" {
		return []Paragraph{{Range: Range{Start: 0, End: 0}, BodyEnd: 0}}
	}

	var paras []Paragraph
	start := 0
	for _, sep := range paraBreak.FindAllStringIndex(text, -1) {
		paras = append(paras, Paragraph{
			Range:   Range{Start: start, End: sep[1]},
			BodyEnd: sep[0],
		})
		start = sep[1]
	}
	if start < len(text) {
		paras = append(paras, Paragraph{
			Range:   Range{Start: start, End: len(text)},
			BodyEnd: len(text),
		})
	}
	return paras
}
