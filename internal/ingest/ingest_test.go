package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		content := "Hello world.\n\nThis is a test."
		path := filepath.Join(tmpDir, "test.txt")
		os.WriteFile(path, []byte(content), 0644)

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if doc.Text != content {
			t.Errorf("text = %q, want %q", doc.Text, content)
		}
		if doc.Title != "test" {
			t.Errorf("title = %q, want test", doc.Title)
		}
		if got := len(doc.Paragraphs()); got != 2 {
			t.Errorf("paragraphs = %d, want 2", got)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		content := "Some prose in a strange file."
		path := filepath.Join(tmpDir, "test.rst")
		os.WriteFile(path, []byte(content), 0644)

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if doc.Text != content {
			t.Errorf("text = %q, want %q", doc.Text, content)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		if _, err := Load(filepath.Join(tmpDir, "nonexistent.txt")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSupported(t *testing.T) {
	formats := Supported()
	if len(formats) == 0 {
		t.Fatal("no formats registered")
	}
	want := map[string]bool{
		"EPUB (.epub)":              false,
		"Markdown (.md, .markdown)": false,
	}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("%s not registered: %v", name, formats)
		}
	}
}

func TestAssembler(t *testing.T) {
	asm := newAssembler()
	asm.startChapter("One")
	asm.addBlock("First paragraph.")
	asm.addBlock("Second paragraph.")
	asm.startChapter("Empty") // no blocks, dropped
	asm.startChapter("Two")
	asm.addBlock("")          // skipped
	asm.addBlock("Third paragraph.")
	doc := asm.document("Title")

	wantText := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	if doc.Text != wantText {
		t.Errorf("text = %q, want %q", doc.Text, wantText)
	}
	if len(doc.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(doc.Chapters))
	}
	if doc.Chapters[0].Title != "One" || doc.Chapters[1].Title != "Two" {
		t.Errorf("chapter titles = %q, %q", doc.Chapters[0].Title, doc.Chapters[1].Title)
	}

	// Chapter ranges cover exactly their own paragraphs.
	if got := doc.Slice(doc.Chapters[0].Range); got != "First paragraph.\n\nSecond paragraph." {
		t.Errorf("chapter one covers %q", got)
	}
	if got := doc.Slice(doc.Chapters[1].Range); got != "Third paragraph." {
		t.Errorf("chapter two covers %q", got)
	}
}

func TestAssemblerNoChapters(t *testing.T) {
	asm := newAssembler()
	asm.addBlock("Only text.")
	doc := asm.document("Bare")

	if doc.Text != "Only text." {
		t.Errorf("text = %q", doc.Text)
	}
	// The document model supplies a whole-text chapter.
	if len(doc.Chapters) != 1 || doc.Chapters[0].Title != "Bare" {
		t.Errorf("chapters = %+v", doc.Chapters)
	}
}

func TestAssemblerEmpty(t *testing.T) {
	doc := newAssembler().document("Empty")
	if doc.Text != "" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.Len() != 0 {
		t.Errorf("len = %d", doc.Len())
	}
}

func TestDocTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/books/moby-dick.epub", "moby-dick"},
		{"notes.md", "notes"},
		{"plain", "plain"},
		{"/deep/path/reader.test.txt", "reader.test"},
	}
	for _, tt := range tests {
		if got := docTitle(tt.path); got != tt.want {
			t.Errorf("docTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

var _ Format = (*EPUBFormat)(nil)
var _ Format = (*MarkdownFormat)(nil)
