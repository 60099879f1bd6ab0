package ingest

import (
	"os"
	"reflect"
	"testing"
)

func TestExtractBlocks(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Ignored</title></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<p>
				This is the second paragraph
				with a source newline.
			</p>
			<div>Some <span>nested</span> text.</div>
		</body>
	</html>
	`

	want := []string{
		"Chapter 1",
		"This is the first paragraph.",
		"This is the second paragraph with a source newline.",
		"Some nested text.",
	}
	got := extractBlocks(htmlContent)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractBlocks = %q, want %q", got, want)
	}
}

func TestExtractBlocksBreaks(t *testing.T) {
	got := extractBlocks(`<p>First line<br/>second line</p>`)
	want := []string{"First line\nsecond line"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractBlocks = %q, want %q", got, want)
	}
}

func TestExtractBlocksLists(t *testing.T) {
	got := extractBlocks(`<ul><li>alpha</li><li>beta gamma</li></ul>`)
	want := []string{"alpha", "beta gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractBlocks = %q, want %q", got, want)
	}
}

func TestExtractBlocksSkipsScripts(t *testing.T) {
	got := extractBlocks(`<body><script>var x = 1;</script><style>p{}</style><p>Real text.</p></body>`)
	want := []string{"Real text."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractBlocks = %q, want %q", got, want)
	}
}

func TestExtractBlocksEmpty(t *testing.T) {
	if got := extractBlocks(""); len(got) != 0 {
		t.Errorf("extractBlocks(\"\") = %q", got)
	}
	if got := extractBlocks("<p>   </p><div></div>"); len(got) != 0 {
		t.Errorf("whitespace-only markup produced %q", got)
	}
}

func TestEPUBFormat(t *testing.T) {
	f := &EPUBFormat{}
	if f.Name() != "EPUB" {
		t.Errorf("Name() = %q, want EPUB", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 1 || exts[0] != ".epub" {
		t.Errorf("Extensions() = %v, want [.epub]", exts)
	}
}

func TestEPUBLoad(t *testing.T) {
	epubPath := "../../testdata/sample.epub"
	if _, err := os.Stat(epubPath); os.IsNotExist(err) {
		t.Skip("sample.epub not found, skipping")
	}

	f := &EPUBFormat{}
	doc, err := f.Load(epubPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() == 0 {
		t.Error("empty document")
	}
	if len(doc.Chapters) == 0 {
		t.Error("no chapters")
	}
	t.Logf("loaded %d chapters, %d bytes", len(doc.Chapters), doc.Len())
}
