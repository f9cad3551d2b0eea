// Package tui holds the terminal work picker used by the browse command.
package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/lepinkainen/readersrealm/internal/book"
)

const (
	listWidth  = 72
	listHeight = 18

	englishCode = "eng"
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// Outcome is how the user left the picker.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomePicked means a work was chosen; Pick.Hit is set.
	OutcomePicked
	// OutcomeDismissed means the picker was closed without choosing.
	OutcomeDismissed
	// OutcomeQuit means the user asked to stop the whole command.
	OutcomeQuit
)

// Pick is the picker's result.
type Pick struct {
	Outcome Outcome
	Hit     *book.SearchHit
}

type workItem struct {
	hit book.SearchHit
}

func (w workItem) FilterValue() string { return w.hit.Title }

type workDelegate struct{}

func (workDelegate) Height() int                         { return 3 }
func (workDelegate) Spacing() int                        { return 1 }
func (workDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (workDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	work, ok := item.(workItem)
	if !ok {
		return
	}

	width := m.Width() - 3
	rows := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fit(workHeading(work.hit), width)),
		authorStyle.Render(fit(work.hit.Author, width)),
		metaStyle.Render(formatMetadata(work.hit, width)),
	)

	row := rowStyle
	if idx == m.Index() {
		row = cursorStyle
	}
	_, _ = fmt.Fprint(w, row.Render(rows))
}

var (
	rowStyle    = lipgloss.NewStyle().PaddingLeft(2)
	cursorStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("214")).
			PaddingLeft(1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	authorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).MarginBottom(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).MarginTop(1)
)

type picker struct {
	query       string
	hits        []book.SearchHit
	englishOnly bool
	list        list.Model
	pick        Pick
}

func newPicker(query string, hits []book.SearchHit) *picker {
	l := list.New(nil, workDelegate{}, listWidth, listHeight)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = metaStyle.Copy().PaddingLeft(2)

	p := &picker{query: query, hits: hits, list: l}
	p.refresh()
	return p
}

// visible returns the hits shown under the current language toggle.
func (p *picker) visible() []book.SearchHit {
	if !p.englishOnly {
		return p.hits
	}
	var out []book.SearchHit
	for _, hit := range p.hits {
		if hit.HasLanguage(englishCode) {
			out = append(out, hit)
		}
	}
	return out
}

func (p *picker) refresh() {
	hits := p.visible()
	items := make([]list.Item, len(hits))
	for i, hit := range hits {
		items[i] = workItem{hit: hit}
	}
	p.list.SetItems(items)
	p.list.ResetSelected()
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			item, ok := p.list.SelectedItem().(workItem)
			if !ok {
				return p, nil
			}
			hit := item.hit
			p.pick = Pick{Outcome: OutcomePicked, Hit: &hit}
			return p, tea.Quit
		case "e":
			p.englishOnly = !p.englishOnly
			p.refresh()
			return p, nil
		case "esc", "s":
			p.pick = Pick{Outcome: OutcomeDismissed}
			return p, tea.Quit
		case "q", "ctrl+c":
			p.pick = Pick{Outcome: OutcomeQuit}
			return p, tea.Quit
		}
	case tea.WindowSizeMsg:
		p.list.SetSize(min(listWidth, max(msg.Width-2, 40)), min(listHeight, max(msg.Height-5, 4)))
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *picker) View() string {
	header := fmt.Sprintf("Works matching %q (%d of %d)", p.query, len(p.list.Items()), len(p.hits))
	if p.englishOnly {
		header += " [English only]"
	}
	help := "up/down move | enter open | e toggle English | esc back | q quit"
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		p.list.View(),
		helpStyle.Render(help),
	)
}

// PickWork shows hits in a list and returns the user's choice. With no hits
// the picker is dismissed without starting the UI.
func PickWork(query string, hits []book.SearchHit) (Pick, error) {
	if len(hits) == 0 {
		return Pick{Outcome: OutcomeDismissed}, nil
	}

	final, err := runProgram(newPicker(query, hits))
	if err != nil {
		return Pick{}, err
	}
	p, ok := final.(*picker)
	if !ok {
		return Pick{}, fmt.Errorf("unexpected picker model %T", final)
	}
	return p.pick, nil
}

func workHeading(hit book.SearchHit) string {
	year := "unknown"
	if hit.FirstPublishYear != nil {
		year = strconv.Itoa(*hit.FirstPublishYear)
	}
	return fmt.Sprintf("%s (%s)", hit.Title, year)
}

// formatMetadata builds the key, language and cover line of a hit.
func formatMetadata(hit book.SearchHit, width int) string {
	var parts []string
	if hit.Key != "" {
		parts = append(parts, hit.Key)
	}
	if n := len(hit.Languages); n > 0 {
		langs := hit.Languages
		if n > 3 {
			langs = append(append([]string{}, langs[:3]...), fmt.Sprintf("+%d", n-3))
		}
		parts = append(parts, strings.ToUpper(strings.Join(langs, ",")))
	}
	if hit.CoverID != nil {
		parts = append(parts, "cover")
	}
	if len(parts) == 0 {
		return "no catalog metadata"
	}
	return fit(strings.Join(parts, " | "), width)
}

// fit collapses whitespace and shortens s to width terminal cells.
func fit(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return truncate.StringWithTail(s, uint(width), "...")
}
