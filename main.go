//go:build !gui

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	pbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
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

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	chapterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)
)

// One terminal cell is half an em wide under the cell typeface model.
const (
	baseFontSize = 16.0
	cellPt       = baseFontSize * layout.DefaultAspect
)

// spacings are the line spacing steps the spacing keys walk through.
var spacings = []float64{1.0, 1.5, 2.0}

type keyMap struct {
	NextPage    key.Binding
	PrevPage    key.Binding
	FirstPage   key.Binding
	LastPage    key.Binding
	NextChapter key.Binding
	PrevChapter key.Binding
	SpacingUp   key.Binding
	SpacingDown key.Binding
	MarginUp    key.Binding
	MarginDown  key.Binding
	Align       key.Binding
	Bookmark    key.Binding
	Retry       key.Binding
	TogglePanel key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage},
		{k.NextChapter, k.PrevChapter, k.Bookmark, k.TogglePanel},
		{k.SpacingUp, k.SpacingDown, k.MarginUp, k.MarginDown},
		{k.Align, k.Retry, k.Help, k.Quit},
	}
}

var defaultKeys = keyMap{
	NextPage: key.NewBinding(
		key.WithKeys("right", "l", " ", "pgdown"),
		key.WithHelp("→/space", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left", "h", "pgup"),
		key.WithHelp("←", "previous page"),
	),
	FirstPage: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first page"),
	),
	LastPage: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last page"),
	),
	NextChapter: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next chapter"),
	),
	PrevChapter: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "previous chapter"),
	),
	SpacingUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "wider spacing"),
	),
	SpacingDown: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "tighter spacing"),
	),
	MarginUp: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "wider margin"),
	),
	MarginDown: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "narrower margin"),
	),
	Align: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "cycle alignment"),
	),
	Bookmark: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "bookmark page"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry translation"),
	),
	TogglePanel: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "toggle translation"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

type model struct {
	s  *session.Session
	ms *layout.Measurer
	km keyMap

	help help.Model
	bar  pbar.Model

	width      int
	height     int
	spacingIdx int
	margin     int
	align      layout.Alignment
	showFacing bool
	status     string
	quitting   bool
}

// sessionMsg carries one session event into the update loop.
type sessionMsg session.Event

func waitForEvent(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(<-s.Events())
	}
}

func newModel(s *session.Session) model {
	return model{
		s:          s,
		ms:         layout.New(),
		km:         defaultKeys,
		help:       help.New(),
		bar:        pbar.New(pbar.WithDefaultGradient()),
		showFacing: s.TranslationEnabled(),
	}
}

func (m model) Init() tea.Cmd {
	return waitForEvent(m.s)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 4
		if m.bar.Width < 1 {
			m.bar.Width = 1
		}
		m.help.Width = msg.Width
		m.applyLayout()
		return m, nil

	case sessionMsg:
		if msg.Kind == session.EventTranslation && msg.Status == translate.StatusFailed {
			m.status = "translation failed, r retries"
		}
		return m, waitForEvent(m.s)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.km.NextPage):
			m.status = ""
			m.s.Next()

		case key.Matches(msg, m.km.PrevPage):
			m.status = ""
			m.s.Prev()

		case key.Matches(msg, m.km.FirstPage):
			m.s.GoTo(1)

		case key.Matches(msg, m.km.LastPage):
			m.s.GoTo(m.s.TotalPages())

		case key.Matches(msg, m.km.NextChapter):
			m.s.JumpToChapter(m.s.CurrentChapter() + 1)

		case key.Matches(msg, m.km.PrevChapter):
			m.s.JumpToChapter(m.s.CurrentChapter() - 1)

		case key.Matches(msg, m.km.SpacingUp):
			if m.spacingIdx < len(spacings)-1 {
				m.spacingIdx++
				m.applyLayout()
			}

		case key.Matches(msg, m.km.SpacingDown):
			if m.spacingIdx > 0 {
				m.spacingIdx--
				m.applyLayout()
			}

		case key.Matches(msg, m.km.MarginUp):
			if m.margin < layout.MaxMargin {
				m.margin++
				m.applyLayout()
			}

		case key.Matches(msg, m.km.MarginDown):
			if m.margin > 0 {
				m.margin--
				m.applyLayout()
			}

		case key.Matches(msg, m.km.Align):
			m.align = (m.align + 1) % 4
			m.applyLayout()

		case key.Matches(msg, m.km.Bookmark):
			if _, err := m.s.AddBookmark(fmt.Sprintf("Page %d", m.s.CurrentPage())); err != nil {
				m.status = "bookmark not saved"
			} else {
				m.status = "bookmarked"
			}

		case key.Matches(msg, m.km.Retry):
			m.s.RetryTranslation()
			m.status = "retrying translation"

		case key.Matches(msg, m.km.TogglePanel):
			if m.s.TranslationEnabled() {
				m.showFacing = !m.showFacing
				m.applyLayout()
			}

		case key.Matches(msg, m.km.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.km.Quit):
			m.quitting = true
			m.s.Close()
			return m, tea.Quit
		}
	}

	return m, nil
}

// panelParams expresses a panel's cell grid in typographic units.
func panelParams(cols, rows int, spacing float64, margin int, align layout.Alignment) layout.Params {
	return layout.Params{
		FontSize:       baseFontSize,
		LineSpacing:    spacing,
		Margin:         margin,
		Align:          align,
		ViewportWidth:  float64(cols) * cellPt,
		ViewportHeight: float64(rows) * baseFontSize,
	}
}

// applyLayout converts the terminal geometry and reading knobs into
// panel parameters. The session debounces the resulting repagination,
// so resize storms and held-down keys cost one reflow.
func (m *model) applyLayout() {
	if m.width == 0 {
		return
	}
	cols, rows := m.panelCells()
	p := panelParams(cols, rows, spacings[m.spacingIdx], m.margin, m.align)
	m.s.SetLayouts(p, p)
}

func (m model) facingVisible() bool {
	return m.showFacing && m.s.TranslationEnabled()
}

// panelCells returns one panel's text area in terminal cells. The
// title, status, progress, and help lines take four rows; borders and
// padding take the rest.
func (m model) panelCells() (cols, rows int) {
	w := m.width
	if m.facingVisible() {
		w = (w - 1) / 2
	}
	cols = w - 4
	rows = m.height - 8
	if cols < 8 {
		cols = 8
	}
	if rows < 3 {
		rows = 3
	}
	return cols, rows
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "opening..."
	}

	doc := m.s.Document()
	header := titleStyle.Render(doc.Title)
	if chapters := m.s.Chapters(); len(chapters) > 0 {
		if t := chapters[m.s.CurrentChapter()].Title; t != "" && t != doc.Title {
			header += chapterStyle.Render(" · " + t)
		}
	}
	header = lipgloss.NewStyle().MaxWidth(m.width).Render(header)

	cur, total := m.s.CurrentPage(), m.s.TotalPages()
	line := fmt.Sprintf("Page %d/%d", cur, total)
	if m.s.State() == session.StateRepaginating {
		line += " · repaginating"
	}
	if m.s.TranslationEnabled() {
		ready, totalParas := m.s.TranslationProgress()
		line += fmt.Sprintf(" · translated %d/%d", ready, totalParas)
	}
	status := statusStyle.Render(line)
	if m.status != "" {
		status += noteStyle.Render(" " + m.status)
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(cur) / float64(total)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderPanels(),
		status,
		m.bar.ViewAs(ratio),
		m.help.View(m.km),
	)
}

func (m model) renderPanels() string {
	cols, rows := m.panelCells()
	page := m.s.Page()
	left := m.renderPanel("original", page.Text, m.s.Params(), cols, rows)
	if !m.facingVisible() {
		return left
	}

	fp, st := m.s.FacingPage()
	heading := m.s.TranslationTarget().String()
	switch st {
	case facing.PagePending:
		heading += pendingStyle.Render(" · translating")
	case facing.PageFailed:
		heading += failedStyle.Render(" · failed")
	}
	right := m.renderPanel(heading, fp.Text, m.s.TranslationParams(), cols, rows)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// renderPanel lays out one page with the same decisions pagination
// made, so the panel shows exactly the page's text.
func (m model) renderPanel(heading, text string, p layout.Params, cols, rows int) string {
	marginCells := int(p.MarginPt() / cellPt)
	inner := cols - 2*marginCells
	if inner < 1 {
		inner = 1
	}

	lineStyle := lipgloss.NewStyle().Width(inner)
	switch m.align {
	case layout.AlignCenter:
		lineStyle = lineStyle.Align(lipgloss.Center)
	case layout.AlignRight:
		lineStyle = lineStyle.Align(lipgloss.Right)
	default:
		lineStyle = lineStyle.Align(lipgloss.Left)
	}

	pad := strings.Repeat(" ", marginCells)
	gap := p.LineSpacing >= 1.5

	var sb strings.Builder
	sb.WriteString(headingStyle.Render(heading))
	sb.WriteString("\n")
	for i, ln := range m.ms.WrapLines(text, p) {
		if i > 0 && gap {
			sb.WriteString("\n")
		}
		sb.WriteString(pad)
		sb.WriteString(lineStyle.Render(strings.TrimRight(ln.Text, " \t\r\n")))
		sb.WriteString("\n")
	}

	return panelStyle.Width(cols + 2).Height(rows + 2).Render(sb.String())
}

func main() {
	transFile := flag.String("trans", "", "Parallel translation text file")
	lang := flag.String("lang", "es", "Translation language tag (used with -trans)")
	fresh := flag.Bool("fresh", false, "Ignore saved reading position")
	logPath := flag.String("log", "", "Write debug logs to a file")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Folio - Dual-Language Paginated Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  folio [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  folio book.epub                      Read a book\n")
		fmt.Fprintf(os.Stderr, "  folio -trans libro.txt book.txt      Read with a Spanish panel\n")
		fmt.Fprintf(os.Stderr, "  folio -trans livre.txt -lang fr b.md Read with a French panel\n")
		fmt.Fprintf(os.Stderr, "  cat notes.txt | folio                Read from stdin\n")
		fmt.Fprintf(os.Stderr, "\nFormats:\n")
		for _, f := range ingest.Supported() {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		fmt.Fprintf(os.Stderr, "  plain text (anything else)\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("folio %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	logger := zap.NewNop()
	if *logPath != "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{*logPath}
		cfg.ErrorOutputPaths = []string{*logPath}
		if l, err := cfg.Build(); err == nil {
			logger = l
			defer logger.Sync()
		}
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

	opts := []session.Option{session.WithLogger(logger)}

	if store, err := progress.NewStore(); err == nil {
		if *fresh {
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

	s := session.New(doc, defaultParams(), opts...)
	s.Open()

	p := tea.NewProgram(newModel(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultParams covers the moment before the first window size message
// arrives.
func defaultParams() layout.Params {
	return panelParams(76, 16, 1, 0, layout.AlignLeft)
}
