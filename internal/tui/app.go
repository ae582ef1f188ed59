package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/1broseidon/deskgrid/internal/board"
	"github.com/1broseidon/deskgrid/internal/desk"
	"github.com/1broseidon/deskgrid/internal/proxy"
)

// canvasTop is the screen row of canvas row 0, below the status bar.
const canvasTop = 1

type (
	// redrawMsg arrives when the engine changed outside of Update (timers).
	redrawMsg struct{}
	tickMsg   time.Time
)

var formStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")).
	Padding(1, 2)

// model is the root bubbletea model for the board.
type model struct {
	store  *board.Store
	engine *desk.Engine
	logger *log.Logger

	keys   keyMap
	help   help.Model
	add    addForm
	picker picker

	// redraw coalesces engine change notifications into one pending message.
	redraw  chan struct{}
	cancels []func()

	locked  map[string]bool
	now     time.Time
	message string

	width  int
	height int
}

func (m model) close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.engine.Close()
}

func waitForRedraw(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return redrawMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// canvasHeight returns the rows left for desktops between the bars.
func (m model) canvasHeight() int {
	h := m.height - canvasTop - 1 - lipgloss.Height(m.helpView())
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) helpView() string {
	return helpBarStyle.Render(m.help.View(m.keys))
}

func (m *model) resize() {
	m.help.Width = m.width
	m.engine.Resize(float64(m.width), float64(m.canvasHeight()))
	m.picker.list.SetSize(m.width, m.canvasHeight())
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(waitForRedraw(m.redraw), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case redrawMsg:
		return m, waitForRedraw(m.redraw)
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if !m.add.active {
			return m, nil
		}
	}

	// Sub-models capture all input; only ctrl+c escapes to quit
	if m.add.active {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		var done bool
		m.add, cmd, done = m.add.Update(msg)
		if done && m.add.Completed() {
			b, err := m.add.apply(m.store, m.engine.ActiveDesktop())
			if err != nil {
				m.logger.Warn("Board: add block failed", "error", err)
				m.message = "add failed: " + err.Error()
			} else {
				m.message = "added " + b.Type.String()
			}
		}
		return m, cmd
	}
	if m.picker.active {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		var chosen int
		m.picker, cmd, chosen = m.picker.Update(msg)
		if chosen >= 0 {
			m.engine.Navigator().GoTo(chosen)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := m.engine.Navigator()
	m.message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.Clear):
		if m.engine.Busy() {
			m.engine.PointerCancel()
		} else {
			m.engine.ClearSelection()
		}

	case key.Matches(msg, m.keys.Prev):
		nav.Prev()
	case key.Matches(msg, m.keys.Next):
		nav.Next()
	case key.Matches(msg, m.keys.First):
		nav.First()
	case key.Matches(msg, m.keys.Last):
		nav.Last()
	case key.Matches(msg, m.keys.Jump):
		if i := int(msg.String()[0] - '1'); i < nav.PageCount() {
			nav.GoTo(i)
		}

	case key.Matches(msg, m.keys.Add):
		if m.engine.Busy() {
			return m, nil
		}
		return m, m.add.start(m.width)

	case key.Matches(msg, m.keys.Delete):
		if n := m.engine.DeleteSelected(); n > 0 {
			m.message = fmt.Sprintf("deleted %d", n)
		}

	case key.Matches(msg, m.keys.Desktops):
		m.picker.open(m.store.ListDesktops(), nav.Index(), m.width, m.canvasHeight())

	case key.Matches(msg, m.keys.NewDesk):
		d := m.store.AddDesktop(fmt.Sprintf("Desktop %d", len(m.store.ListDesktops())+1))
		nav.GoTo(len(m.store.ListDesktops()) - 1)
		m.message = "created " + d.Title

	case key.Matches(msg, m.keys.Lock):
		if id := m.engine.ActiveDesktop(); id != "" {
			m.locked[id] = !m.locked[id]
			m.engine.SetLocked(id, m.locked[id])
		}

	case key.Matches(msg, m.keys.Save):
		if err := m.store.Save(); err != nil {
			m.logger.Error("Board: save failed", "error", err)
			m.message = "save failed: " + err.Error()
		} else {
			m.message = "saved"
		}
	}
	return m, nil
}

func (m model) status() statusInfo {
	nav := m.engine.Navigator()
	desktops := m.store.ListDesktops()
	s := statusInfo{
		index:    nav.Index(),
		count:    len(desktops),
		selected: len(m.engine.Selection()),
		dirty:    m.store.Dirty(),
		message:  m.message,
	}
	if s.index < len(desktops) {
		d := desktops[s.index]
		s.title = d.Title
		if s.title == "" {
			s.title = "Untitled"
		}
		s.locked = m.locked[d.ID]
	}
	if cur := m.engine.Cursor(); cur != proxy.CursorDefault {
		s.cursor = cur.String()
	}
	return s
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status(), m.width)
	ch := m.canvasHeight()

	var content string
	switch {
	case m.add.active:
		content = lipgloss.Place(m.width, ch, lipgloss.Center, lipgloss.Center, formStyle.Render(m.add.View()))
	case m.picker.active:
		content = lipgloss.NewStyle().Width(m.width).Height(ch).Render(m.picker.View())
	default:
		cv := newCanvas(m.width, ch, m.now)
		m.engine.Paint(cv)
		content = cv.Render()
	}

	nav := m.engine.Navigator()
	dots := renderPageDots(nav.Index(), nav.Count(), nav.PageCount(), m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		content,
		dots,
		m.helpView(),
	)
}
