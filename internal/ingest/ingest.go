// Package ingest loads book files into documents. Formats register
// themselves at init; unknown extensions fall back to plain text.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwise/folio/internal/book"
)

// Format defines a file format loader.
type Format interface {
	Name() string
	Extensions() []string
	Load(filename string) (*book.Document, error)
}

var registry []Format

// Register adds a format loader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Load reads a file using a registered format, or as plain text when no
// format claims the extension.
func Load(filename string) (*book.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Load(filename)
			}
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return book.New(docTitle(filename), string(data), nil), nil
}

// Supported returns registered format names with their extensions.
func Supported() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

func docTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// assembler accumulates paragraph blocks and chapter boundaries while a
// format walks its source. Blocks are joined by blank lines, so the
// assembled text segments back into the same paragraphs.
type assembler struct {
	text     strings.Builder
	chapters []book.Chapter

	pendingTitle string
	pendingStart int
	pendingOpen  bool
}

func newAssembler() *assembler {
	return &assembler{pendingStart: -1}
}

// startChapter closes the open chapter and begins a new one at the next
// block. A chapter that never receives a block is dropped.
func (a *assembler) startChapter(title string) {
	a.closeChapter()
	a.pendingTitle = title
	a.pendingStart = -1
	a.pendingOpen = true
}

// addBlock appends one paragraph of body text. Empty blocks are
// skipped.
func (a *assembler) addBlock(body string) {
	if body == "" {
		return
	}
	if a.text.Len() > 0 {
		a.text.WriteString("\n\n")
	}
	if a.pendingOpen && a.pendingStart < 0 {
		a.pendingStart = a.text.Len()
	}
	a.text.WriteString(body)
}

func (a *assembler) closeChapter() {
	if a.pendingOpen && a.pendingStart >= 0 {
		a.chapters = append(a.chapters, book.Chapter{
			Title: a.pendingTitle,
			Range: book.Range{Start: a.pendingStart, End: a.text.Len()},
		})
	}
	a.pendingOpen = false
}

// document closes the last chapter and builds the final document.
func (a *assembler) document(title string) *book.Document {
	a.closeChapter()
	return book.New(title, a.text.String(), a.chapters)
}
