package dropdown

import tea "github.com/charmbracelet/bubbletea"

// Rect is a cell rectangle on screen.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// RootCloseWrapper calls OnRootClose when a pointer event of the configured
// kind lands outside the wrapped area, or when escape is pressed. It does
// nothing while Disabled.
type RootCloseWrapper struct {
	Disabled    bool
	Event       CloseEvent
	OnRootClose func()

	// a click needs both press and release outside
	pressedOutside bool
}

// HandleMouse inspects a mouse event. inside tells whether the event hit
// the wrapped area. It returns true when OnRootClose was called.
func (w *RootCloseWrapper) HandleMouse(msg tea.MouseMsg, inside bool) bool {
	if w.Disabled {
		w.pressedOutside = false
		return false
	}
	switch w.Event {
	case CloseOnMouseDown:
		if msg.Action != tea.MouseActionPress || !isPointerButton(msg.Button) || inside {
			return false
		}
		return w.fire()
	default:
		switch msg.Action {
		case tea.MouseActionPress:
			w.pressedOutside = msg.Button == tea.MouseButtonLeft && !inside
		case tea.MouseActionRelease:
			pressed := w.pressedOutside
			w.pressedOutside = false
			if pressed && !inside {
				return w.fire()
			}
		}
	}
	return false
}

// HandleKey closes on escape.
func (w *RootCloseWrapper) HandleKey(msg tea.KeyMsg) bool {
	if w.Disabled || msg.Type != tea.KeyEsc {
		return false
	}
	return w.fire()
}

func (w *RootCloseWrapper) fire() bool {
	if w.OnRootClose == nil {
		return false
	}
	w.OnRootClose()
	return true
}

func isPointerButton(b tea.MouseButton) bool {
	switch b {
	case tea.MouseButtonLeft, tea.MouseButtonMiddle, tea.MouseButtonRight:
		return true
	}
	return false
}
