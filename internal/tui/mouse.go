package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/deskgrid/internal/gesture"
)

// wheelStep is how far one wheel notch scrolls the carousel, in cells.
const wheelStep = 8

// pointerEvent maps a mouse message to a precise pointer at the centre of the
// cell, relative to the canvas top. Terminals often swallow ctrl+click, so alt
// selects as well.
func pointerEvent(msg tea.MouseMsg, top int) gesture.PointerEvent {
	var mods gesture.Modifiers
	if msg.Shift {
		mods |= gesture.ModShift
	}
	if msg.Ctrl {
		mods |= gesture.ModCtrl
	}
	if msg.Alt {
		mods |= gesture.ModAlt | gesture.ModMeta
	}
	return gesture.PointerEvent{
		ID:   1,
		Kind: gesture.PointerPrecise,
		X:    float64(msg.X) + 0.5,
		Y:    float64(msg.Y-top) + 0.5,
		Mods: mods,
	}
}

// handleMouse feeds the engine and reports whether anything was routed.
func (m *model) handleMouse(msg tea.MouseMsg) bool {
	switch msg.Button {
	case tea.MouseButtonWheelLeft:
		m.engine.Wheel(-wheelStep, 0)
		return true
	case tea.MouseButtonWheelRight:
		m.engine.Wheel(wheelStep, 0)
		return true
	case tea.MouseButtonWheelUp:
		if msg.Shift {
			m.engine.Wheel(-wheelStep, 0)
			return true
		}
		return false
	case tea.MouseButtonWheelDown:
		if msg.Shift {
			m.engine.Wheel(wheelStep, 0)
			return true
		}
		return false
	}

	ev := pointerEvent(msg, canvasTop)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}
		if msg.Y < canvasTop || msg.Y >= canvasTop+m.canvasHeight() {
			return false
		}
		m.engine.PointerDown(ev)
	case tea.MouseActionMotion:
		m.engine.PointerMove(ev)
	case tea.MouseActionRelease:
		m.engine.PointerUp(ev)
	default:
		return false
	}
	return true
}
