package ingest

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"

	"github.com/inkwise/folio/internal/book"
)

// EPUBFormat loads EPUB containers.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Load walks the spine in reading order. Each spine item becomes a
// chapter titled from the NCX table of contents, or "Section n" when
// the NCX has no entry for it. Unreadable spine items are skipped; a
// partially damaged book still opens.
func (f *EPUBFormat) Load(filename string) (*book.Document, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles in epub")
	}
	root := rc.Rootfiles[0]
	titles := ncxTitles(filename, root)

	asm := newAssembler()
	for i, ref := range root.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		blocks := extractBlocks(string(data))
		if len(blocks) == 0 {
			continue
		}

		title := fmt.Sprintf("Section %d", i+1)
		if href := ref.Item.HREF; href != "" {
			if t, ok := titles[href]; ok && t != "" {
				title = t
			} else if t, ok := titles[path.Base(href)]; ok && t != "" {
				title = t
			}
		}
		asm.startChapter(title)
		for _, b := range blocks {
			asm.addBlock(b)
		}
	}

	return asm.document(docTitle(filename)), nil
}

// blockTags delimit paragraphs when entered or left.
var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true, "blockquote": true,
	"section": true, "article": true, "figure": true, "figcaption": true,
	"tr": true, "pre": true,
}

// skipTags contribute no readable text.
var skipTags = map[string]bool{
	"head": true, "script": true, "style": true,
}

// extractBlocks walks an XHTML chapter and returns its paragraphs in
// reading order. Inline markup is flattened, whitespace runs collapse
// to single spaces, and <br> becomes a line break inside its
// paragraph.
func extractBlocks(s string) []string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var blocks []string
	var cur strings.Builder
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			blocks = append(blocks, t)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if n.Data == "br" {
				cur.WriteString("\n")
				return
			}
			if blockTags[n.Data] {
				flush()
			}
		case html.TextNode:
			writeCollapsed(&cur, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			flush()
		}
	}
	walk(doc)
	flush()
	return blocks
}

// writeCollapsed appends text with whitespace runs collapsed, joining
// to the existing content with a single space.
func writeCollapsed(b *strings.Builder, s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return
	}
	if prev := b.String(); prev != "" && !strings.HasSuffix(prev, "\n") {
		b.WriteString(" ")
	}
	b.WriteString(strings.Join(fields, " "))
}
