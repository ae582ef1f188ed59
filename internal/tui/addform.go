package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/board"
)

// addValues is bound to the form fields; it lives on the heap so the value
// receivers of addForm keep pointing at the same fields.
type addValues struct {
	typ   string
	title string
	text  string
}

// addForm is the sub-model for the add-block dialog.
type addForm struct {
	form   *huh.Form
	values *addValues
	active bool
}

func (a *addForm) start(width int) tea.Cmd {
	a.values = &addValues{typ: block.TypeNote.String()}

	opts := make([]huh.Option[string], 0, len(block.Types()))
	for _, t := range block.Types() {
		if t == block.TypeDefault {
			continue
		}
		opts = append(opts, huh.NewOption(t.String(), t.String()))
	}

	w := width - 4
	if w < 40 {
		w = 40
	}

	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("type").
				Title("Block Type").
				Description("Widget hosted by the block").
				Options(opts...).
				Value(&a.values.typ),

			huh.NewInput().
				Key("title").
				Title("Title").
				Description("Shown in the top border; empty uses the type").
				Value(&a.values.title),

			huh.NewText().
				Key("text").
				Title("Text").
				Description("Note body, or comma separated items for feeds and bookmarks").
				Value(&a.values.text),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	a.active = true
	return a.form.Init()
}

// Update returns done=true once the form is submitted or aborted.
func (a addForm) Update(msg tea.Msg) (addForm, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.active = false
		a.form = nil
		return a, nil, true
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}
	switch a.form.State {
	case huh.StateCompleted, huh.StateAborted:
		a.active = false
		return a, nil, true
	}
	return a, cmd, false
}

// Completed reports whether the last run was submitted.
func (a addForm) Completed() bool {
	return a.form != nil && a.form.State == huh.StateCompleted
}

func (a addForm) View() string {
	if a.form == nil {
		return ""
	}
	return a.form.View()
}

// apply creates the block on desktopID. An empty desktopID means the user is
// on a placeholder page, which becomes a new desktop first.
func (a addForm) apply(store *board.Store, desktopID string) (block.Block, error) {
	v := a.values
	typ, _ := block.ParseType(v.typ)

	if desktopID == "" {
		d := store.AddDesktop(fmt.Sprintf("Desktop %d", len(store.ListDesktops())+1))
		desktopID = d.ID
	}

	b, err := store.AddBlock(desktopID, typ, strings.TrimSpace(v.title))
	if err != nil {
		return block.Block{}, err
	}

	text := strings.TrimSpace(v.text)
	if text == "" {
		return b, nil
	}
	props := map[string]string{typ.ContentKey(): text}
	if err := store.SetContent(b.ID, b.Title, props); err != nil {
		return block.Block{}, err
	}
	b.Props = props
	return b, nil
}
