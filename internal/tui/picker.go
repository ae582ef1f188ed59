package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskgrid/internal/block"
)

// desktopItem is a list item for one desktop.
type desktopItem struct {
	index   int
	desktop block.Desktop
	current bool
}

func (i desktopItem) Title() string {
	title := i.desktop.Title
	if title == "" {
		title = "Untitled"
	}
	if i.current {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●") + " " + title
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("·") + " " + title
}

func (i desktopItem) Description() string {
	switch n := len(i.desktop.Blocks); n {
	case 0:
		return "empty"
	case 1:
		return "1 block"
	default:
		return fmt.Sprintf("%d blocks", n)
	}
}

func (i desktopItem) FilterValue() string { return i.desktop.Title }

// picker lists desktops; enter jumps to the highlighted one.
type picker struct {
	list   list.Model
	active bool
}

func newPicker() picker {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Desktops"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return picker{list: l}
}

func (p *picker) open(desktops []block.Desktop, current, width, height int) {
	items := make([]list.Item, len(desktops))
	for i, d := range desktops {
		items[i] = desktopItem{index: i, desktop: d, current: i == current}
	}
	p.list.SetItems(items)
	p.list.SetSize(width, height)
	if current >= 0 && current < len(items) {
		p.list.Select(current)
	}
	p.active = true
}

// Update returns the chosen desktop index, or -1 when nothing was chosen yet.
func (p picker) Update(msg tea.Msg) (picker, tea.Cmd, int) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "g":
			p.active = false
			return p, nil, -1
		case "enter":
			p.active = false
			if it, ok := p.list.SelectedItem().(desktopItem); ok {
				return p, nil, it.index
			}
			return p, nil, -1
		}
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd, -1
}

func (p picker) View() string {
	return p.list.View()
}
