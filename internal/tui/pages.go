package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	activeDot   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).SetString("●")
	inactiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).SetString("○")
	virtualDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).SetString("+")

	lockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	helpBarStyle = lipgloss.NewStyle().Padding(0, 1)
)

// statusInfo is what the top bar shows.
type statusInfo struct {
	title    string
	index    int
	count    int
	selected int
	locked   bool
	dirty    bool
	cursor   string
	message  string
}

func renderStatusBar(s statusInfo, width int) string {
	var parts []string
	if s.index < s.count {
		parts = append(parts, fmt.Sprintf("%s (%d/%d)", s.title, s.index+1, s.count))
	} else {
		parts = append(parts, "new desktop: press a to add a block")
	}
	if s.locked {
		parts = append(parts, lockStyle.Render("locked"))
	}
	if s.selected > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", s.selected))
	}
	if s.cursor != "" {
		parts = append(parts, s.cursor)
	}
	if s.dirty {
		parts = append(parts, dirtyStyle.Render("unsaved"))
	}
	if s.message != "" {
		parts = append(parts, s.message)
	}
	return statusStyle.Width(width).Render(strings.Join(parts, "  "))
}

// renderPageDots draws one dot per page; placeholder pages render as "+".
func renderPageDots(index, desktops, pages, width int) string {
	dots := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		switch {
		case i == index:
			dots = append(dots, activeDot.String())
		case i >= desktops:
			dots = append(dots, virtualDot.String())
		default:
			dots = append(dots, inactiveDot.String())
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(dots, " "))
}
