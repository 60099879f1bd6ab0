//go:build gui

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/facing"
	"github.com/inkwise/folio/internal/ingest"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/progress"
	"github.com/inkwise/folio/internal/session"
	"github.com/inkwise/folio/internal/translate"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Window chrome around the text panels, in pixels.
const (
	panelPadding = 16.0
	chromeHeight = 120.0
)

type model struct {
	s           *session.Session
	ms          *layout.Measurer
	fontSize    float64
	chapVisible bool
}

func newModel(s *session.Session) *model {
	return &model{
		s:        s,
		ms:       layout.New(),
		fontSize: 16,
	}
}

// renderPage rebuilds a page's display lines with the parameters that
// paginated it, so the label shows exactly the page's text.
func renderPage(ms *layout.Measurer, text string, p layout.Params) string {
	var sb strings.Builder
	for i, ln := range ms.WrapLines(text, p) {
		if i > 0 {
			sb.WriteString("\n")
			if p.LineSpacing >= 1.5 {
				sb.WriteString("\n")
			}
		}
		sb.WriteString(strings.TrimRight(ln.Text, " \t\r\n"))
	}
	return sb.String()
}

func facingHeading(target language.Tag, st facing.PageStatus) string {
	switch st {
	case facing.PagePending:
		return target.String() + " · translating..."
	case facing.PageFailed:
		return target.String() + " · failed (R to retry)"
	}
	return target.String()
}

func chapterPreview(doc *book.Document, ch book.Chapter) string {
	runes := []rune(doc.Slice(ch.Range))
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return string(runes)
}

func main() {
	transFile := flag.String("trans", "", "Parallel translation text file")
	lang := flag.String("lang", "es", "Translation language tag (used with -trans)")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	showChapters := flag.Bool("chapters", false, "Show chapter panel at startup")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Folio - Dual-Language Paginated Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  folio [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  folio book.epub                  Read a book\n")
		fmt.Fprintf(os.Stderr, "  folio -trans libro.txt book.txt  Read with a Spanish panel\n")
		fmt.Fprintf(os.Stderr, "  folio --chapters book.epub       Show chapter panel at startup\n")
		fmt.Fprintf(os.Stderr, "  cat notes.txt | folio            Read from stdin\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("folio %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	var doc *book.Document
	if flag.NArg() > 0 {
		filename := flag.Arg(0)
		d, err := ingest.Load(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to open '%s': %v\n", filename, err)
			os.Exit(1)
		}
		doc = d
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe text to stdin.")
			fmt.Fprintln(os.Stderr, "Try: folio -h")
			os.Exit(1)
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		if strings.TrimSpace(string(data)) == "" {
			fmt.Fprintln(os.Stderr, "Error: No text to read.")
			os.Exit(1)
		}
		doc = book.New("stdin", string(data), nil)
	}

	opts := []session.Option{}

	if store, err := progress.NewStore(); err == nil {
		if *freshStart {
			store.ClearPosition(doc.ID)
		}
		opts = append(opts, session.WithProgressStore(store))
	}

	if *transFile != "" {
		target, err := language.Parse(*lang)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid language '%s': %v\n", *lang, err)
			os.Exit(1)
		}
		data, err := os.ReadFile(*transFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to read translation '%s': %v\n", *transFile, err)
			os.Exit(1)
		}
		opts = append(opts, session.WithTranslation(translate.NewStatic(target, string(data)), target))
	}

	s := session.New(doc, layout.Params{
		FontSize:       16,
		LineSpacing:    1,
		ViewportWidth:  420,
		ViewportHeight: 460,
	}, opts...)
	s.Open()

	m := newModel(s)
	if *showChapters && len(s.Chapters()) > 1 {
		m.chapVisible = true
	}

	a := app.New()
	w := a.NewWindow("folio - " + doc.Title)

	statusLabel := widget.NewLabel("")
	statusLabel.Alignment = fyne.TextAlignCenter

	chapterHint := ""
	if len(s.Chapters()) > 1 {
		chapterHint = "  T: chapters"
	}
	retryHint := ""
	if s.TranslationEnabled() {
		retryHint = "  R: retry translation"
	}
	controlsLabel := widget.NewLabel("SPACE/→: next  ←: previous  ↑/↓: font  N/P: chapter  B: bookmark" + chapterHint + retryHint + "  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	origHeader := widget.NewLabelWithStyle("original", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	origLabel := widget.NewLabel("")
	origLabel.TextStyle = fyne.TextStyle{Monospace: true}
	origPanel := container.NewBorder(origHeader, nil, nil, nil, container.NewScroll(origLabel))

	var transHeader, transLabel *widget.Label
	var pages fyne.CanvasObject = origPanel
	if s.TranslationEnabled() {
		transHeader = widget.NewLabelWithStyle(s.TranslationTarget().String(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		transLabel = widget.NewLabel("")
		transLabel.TextStyle = fyne.TextStyle{Monospace: true}
		transPanel := container.NewBorder(transHeader, nil, nil, nil, container.NewScroll(transLabel))
		split := container.NewHSplit(origPanel, transPanel)
		split.Offset = 0.5
		pages = split
	}

	readingContent := container.NewBorder(
		statusLabel,
		controlsLabel,
		nil, nil,
		pages,
	)

	done := make(chan bool)
	var closeOnce sync.Once
	var updateDisplay func()

	// Chapter panel
	var chapterPanel *container.Split
	var mainContainer *fyne.Container

	chapters := s.Chapters()
	if len(chapters) > 1 {
		chapterList := widget.NewList(
			func() int { return len(chapters) },
			func() fyne.CanvasObject {
				return container.NewVBox(
					widget.NewLabel("Title"),
					widget.NewLabel("Preview"),
				)
			},
			func(id widget.ListItemID, obj fyne.CanvasObject) {
				vbox := obj.(*fyne.Container)
				titleLabel := vbox.Objects[0].(*widget.Label)
				previewLabel := vbox.Objects[1].(*widget.Label)

				titleLabel.SetText(chapters[id].Title)
				titleLabel.TextStyle.Bold = true
				previewLabel.SetText(chapterPreview(doc, chapters[id]))
			},
		)

		chapterList.OnSelected = func(id widget.ListItemID) {
			s.JumpToChapter(id)
			m.chapVisible = false
			chapterPanel.Leading.Hide()
			chapterPanel.Refresh()
			updateDisplay()
		}

		chapterContainer := container.NewBorder(
			widget.NewLabel("Chapters"),
			widget.NewLabel("Click to jump • T to close"),
			nil, nil,
			chapterList,
		)

		chapterPanel = container.NewHSplit(chapterContainer, readingContent)
		chapterPanel.Offset = 0.3

		if !m.chapVisible {
			chapterContainer.Hide()
		}

		mainContainer = container.NewMax(chapterPanel)
	} else {
		mainContainer = container.NewMax(readingContent)
	}

	updateDisplay = func() {
		page := s.Page()
		origLabel.SetText(renderPage(m.ms, page.Text, s.Params()))

		if s.TranslationEnabled() {
			fp, st := s.FacingPage()
			transHeader.SetText(facingHeading(s.TranslationTarget(), st))
			transLabel.SetText(renderPage(m.ms, fp.Text, s.TranslationParams()))
		}

		cur, total := s.CurrentPage(), s.TotalPages()
		line := fmt.Sprintf("%s | Page %d/%d | Font: %.0f", doc.Title, cur, total, m.fontSize)
		if s.State() == session.StateRepaginating {
			line += " | repaginating"
		}
		if s.TranslationEnabled() {
			ready, totalParas := s.TranslationProgress()
			line += fmt.Sprintf(" | Translated %d/%d", ready, totalParas)
		}
		statusLabel.SetText(line)
	}

	// applyLayout maps the window geometry and font size onto panel
	// parameters. The session debounces repagination, so dragging the
	// window or holding a font key costs one reflow.
	applyLayout := func() {
		size := w.Canvas().Size()
		width := float64(size.Width)
		height := float64(size.Height)
		if width <= 0 {
			width, height = 900, 600
		}
		panelWidth := width
		if s.TranslationEnabled() {
			panelWidth = width / 2
		}
		p := layout.Params{
			FontSize:       m.fontSize,
			LineSpacing:    1,
			ViewportWidth:  panelWidth - 2*panelPadding,
			ViewportHeight: height - chromeHeight,
		}
		s.SetLayouts(p, p)
	}

	// Session events arrive off the UI thread; repaint through fyne.Do.
	go func() {
		for {
			select {
			case <-done:
				return
			case <-s.Events():
				fyne.Do(updateDisplay)
			}
		}
	}()

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace, fyne.KeyRight:
			s.Next()
			updateDisplay()

		case fyne.KeyLeft:
			s.Prev()
			updateDisplay()

		case fyne.KeyUp:
			if m.fontSize < 40 {
				m.fontSize += 2
				applyLayout()
				updateDisplay()
			}

		case fyne.KeyDown:
			if m.fontSize > 10 {
				m.fontSize -= 2
				applyLayout()
				updateDisplay()
			}

		case fyne.KeyHome:
			s.GoTo(1)
			updateDisplay()

		case fyne.KeyEnd:
			s.GoTo(s.TotalPages())
			updateDisplay()

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			s.Close()
			closeOnce.Do(func() {
				close(done)
			})
			a.Quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 't', 'T':
			if chapterPanel != nil {
				m.chapVisible = !m.chapVisible
				if m.chapVisible {
					chapterPanel.Leading.Show()
				} else {
					chapterPanel.Leading.Hide()
				}
				chapterPanel.Refresh()
			}

		case 'n':
			s.JumpToChapter(s.CurrentChapter() + 1)
			updateDisplay()

		case 'p':
			s.JumpToChapter(s.CurrentChapter() - 1)
			updateDisplay()

		case 'b', 'B':
			s.AddBookmark(fmt.Sprintf("Page %d", s.CurrentPage()))

		case 'r', 'R':
			s.RetryTranslation()
			updateDisplay()

		case '+', '=':
			if m.fontSize < 40 {
				m.fontSize += 2
				applyLayout()
				updateDisplay()
			}
		case '-':
			if m.fontSize > 10 {
				m.fontSize -= 2
				applyLayout()
				updateDisplay()
			}
		}
	})

	w.Resize(fyne.NewSize(900, 600))
	w.SetContent(mainContainer)

	// Poll for window resizes and hand the new geometry to the
	// session; the debounce coalesces drag storms.
	var lastWidth, lastHeight float32
	lastWidth, lastHeight = 900, 600
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				time.Sleep(100 * time.Millisecond)
				size := w.Canvas().Size()
				if size.Width > 0 && (size.Width != lastWidth || size.Height != lastHeight) {
					lastWidth, lastHeight = size.Width, size.Height
					applyLayout()
					fyne.Do(updateDisplay)
				}
			}
		}
	}()

	w.SetOnClosed(func() {
		s.Close()
		closeOnce.Do(func() {
			close(done)
		})
	})

	// First paint after the window shows
	go func() {
		time.Sleep(100 * time.Millisecond)
		applyLayout()
		fyne.Do(updateDisplay)
	}()

	w.ShowAndRun()
}
