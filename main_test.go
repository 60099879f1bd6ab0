//go:build !gui

package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/inkwise/folio/internal/book"
	"github.com/inkwise/folio/internal/layout"
	"github.com/inkwise/folio/internal/session"
	"github.com/inkwise/folio/internal/translate"
)

func translatedSession(t *testing.T) *session.Session {
	t.Helper()
	src := translate.NewStatic(language.Spanish, "hola")
	s := session.New(book.New("T", "hi", nil), defaultParams(),
		session.WithTranslation(src, language.Spanish))
	t.Cleanup(s.Close)
	return s
}

func TestPanelParams(t *testing.T) {
	p := panelParams(76, 16, 1.0, 0, layout.AlignLeft)

	if p.FontSize != baseFontSize {
		t.Errorf("FontSize = %v, want %v", p.FontSize, baseFontSize)
	}
	if p.ViewportWidth != 76*cellPt {
		t.Errorf("ViewportWidth = %v, want %v", p.ViewportWidth, 76*cellPt)
	}
	if p.ViewportHeight != 16*baseFontSize {
		t.Errorf("ViewportHeight = %v, want %v", p.ViewportHeight, 16*baseFontSize)
	}
	if p.MarginPt() != 0 {
		t.Errorf("MarginPt() = %v, want 0", p.MarginPt())
	}

	// A 76-column panel holds exactly 76 cells per line.
	ms := layout.New()
	lines := ms.WrapLines(strings.Repeat("a", 80), p)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if got := len(lines[0].Text); got != 76 {
		t.Errorf("first line length = %d, want 76", got)
	}
}

func TestPanelCells(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		facing        bool
		wantCols      int
		wantRows      int
	}{
		{"standard", 80, 24, false, 76, 16},
		{"split", 80, 24, true, 35, 16},
		{"tiny", 10, 5, false, 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model{width: tt.width, height: tt.height}
			if tt.facing {
				m.s = translatedSession(t)
				m.showFacing = true
			}
			cols, rows := m.panelCells()
			if cols != tt.wantCols || rows != tt.wantRows {
				t.Errorf("panelCells() = (%d, %d), want (%d, %d)",
					cols, rows, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestKeysNavigate(t *testing.T) {
	s := session.New(book.New("Keys", strings.Repeat("a", 200), nil),
		panelParams(10, 5, 1, 0, layout.AlignLeft), session.WithDebounce(0))
	s.Open()
	t.Cleanup(s.Close)
	if got := s.TotalPages(); got != 4 {
		t.Fatalf("TotalPages() = %d, want 4", got)
	}

	m := newModel(s)
	m.width = 80
	m.height = 24

	press := func(msg tea.KeyMsg) {
		t.Helper()
		mm, _ := m.Update(msg)
		m = mm.(model)
	}

	press(tea.KeyMsg{Type: tea.KeyRight})
	if got := s.CurrentPage(); got != 2 {
		t.Errorf("CurrentPage after right = %d, want 2", got)
	}

	press(tea.KeyMsg{Type: tea.KeyLeft})
	if got := s.CurrentPage(); got != 1 {
		t.Errorf("CurrentPage after left = %d, want 1", got)
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if got := s.CurrentPage(); got != 4 {
		t.Errorf("CurrentPage after G = %d, want 4", got)
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if got := s.CurrentPage(); got != 1 {
		t.Errorf("CurrentPage after g = %d, want 1", got)
	}

	mm, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = mm.(model)
	if !m.quitting {
		t.Error("quitting = false after q")
	}
	if cmd == nil {
		t.Error("q returned no command")
	}
}

func TestReadingKnobsClamp(t *testing.T) {
	s := session.New(book.New("Knobs", strings.Repeat("a", 100), nil),
		panelParams(10, 5, 1, 0, layout.AlignLeft))
	s.Open()
	t.Cleanup(s.Close)

	m := newModel(s)
	m.width = 80
	m.height = 24

	press := func(r string, times int) {
		t.Helper()
		for i := 0; i < times; i++ {
			mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)})
			m = mm.(model)
		}
	}

	press("+", 5)
	if m.spacingIdx != len(spacings)-1 {
		t.Errorf("spacingIdx after +x5 = %d, want %d", m.spacingIdx, len(spacings)-1)
	}
	press("-", 5)
	if m.spacingIdx != 0 {
		t.Errorf("spacingIdx after -x5 = %d, want 0", m.spacingIdx)
	}

	press("]", 7)
	if m.margin != layout.MaxMargin {
		t.Errorf("margin after ]x7 = %d, want %d", m.margin, layout.MaxMargin)
	}
	press("[", 9)
	if m.margin != 0 {
		t.Errorf("margin after [x9 = %d, want 0", m.margin)
	}

	press("a", 1)
	if m.align != layout.AlignCenter {
		t.Errorf("align after a = %v, want %v", m.align, layout.AlignCenter)
	}
	press("a", 3)
	if m.align != layout.AlignLeft {
		t.Errorf("align after full cycle = %v, want %v", m.align, layout.AlignLeft)
	}
}

func TestViewShowsPage(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog."
	s := session.New(book.New("Fox", text, nil),
		panelParams(60, 8, 1, 0, layout.AlignLeft), session.WithDebounce(0))
	s.Open()
	t.Cleanup(s.Close)

	m := newModel(s)
	m.width = 80
	m.height = 24

	out := m.View()
	if !strings.Contains(out, "Fox") {
		t.Error("view does not show the document title")
	}
	if !strings.Contains(out, "Page 1/1") {
		t.Error("view does not show the page position")
	}
	if !strings.Contains(out, "The quick brown fox") {
		t.Error("view does not show the page text")
	}
}

func TestWaitForEvent(t *testing.T) {
	s := session.New(book.New("Ev", "hello world", nil),
		panelParams(20, 5, 1, 0, layout.AlignLeft), session.WithDebounce(0))
	t.Cleanup(s.Close)
	s.Open()

	msg := waitForEvent(s)()
	ev, ok := msg.(sessionMsg)
	if !ok {
		t.Fatalf("message type = %T, want sessionMsg", msg)
	}
	if ev.Kind != session.EventPaginated {
		t.Errorf("Kind = %v, want EventPaginated", ev.Kind)
	}
	if ev.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", ev.TotalPages)
	}
}
