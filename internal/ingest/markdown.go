package ingest

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/inkwise/folio/internal/book"
)

// MarkdownFormat loads Markdown files. Every heading opens a chapter;
// the heading text stays in the stream so the reader sees it.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Load(filename string) (*book.Document, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	asm := newAssembler()
	walkMarkdown(doc, src, asm)
	return asm.document(docTitle(filename)), nil
}

// walkMarkdown flattens block nodes into paragraphs, opening a chapter
// at every heading. List items and block quotes recurse; their inner
// blocks become paragraphs of their own.
func walkMarkdown(node ast.Node, src []byte, asm *assembler) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			title := string(n.Text(src))
			asm.startChapter(title)
			asm.addBlock(title)
		case *ast.Paragraph:
			asm.addBlock(inlineText(n, src))
		case *ast.TextBlock:
			asm.addBlock(inlineText(n, src))
		case *ast.List, *ast.ListItem, *ast.Blockquote:
			walkMarkdown(n, src, asm)
		case *ast.FencedCodeBlock:
			asm.addBlock(codeText(n, src))
		case *ast.CodeBlock:
			asm.addBlock(codeText(n, src))
		}
	}
}

// inlineText concatenates a block node's inline content, turning line
// breaks inside the block into spaces.
func inlineText(node ast.Node, src []byte) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(string(child.Text(src)))
	}
	return strings.TrimSpace(sb.String())
}

// codeText joins a code block's lines verbatim, minus the trailing
// newline.
func codeText(node ast.Node, src []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}
