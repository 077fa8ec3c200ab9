// Package dropdown provides a toggle-and-menu widget for bubbletea programs.
//
// A Dropdown is a container with two states. A toggle action opens it; a
// selection, an outside pointer event or an explicit close request closes
// it. The container injects open state, alignment and the selection
// callback into its menu child. Close handling stays in the container.
package dropdown

import "fmt"

// State is the open/closed state of a dropdown.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Reason says why a dropdown closed.
type Reason string

const (
	ReasonSelect    Reason = "select"
	ReasonRootClose Reason = "root_close"
	ReasonRequest   Reason = "request"
	ReasonToggle    Reason = "toggle"
	ReasonUnmount   Reason = "unmount"
)

// CloseEvent is the pointer event that closes an open dropdown when it lands
// outside of it.
type CloseEvent string

const (
	CloseOnClick     CloseEvent = "click"
	CloseOnMouseDown CloseEvent = "mousedown"
)

// ParseCloseEvent validates a configured close event. Empty means click.
func ParseCloseEvent(s string) (CloseEvent, error) {
	switch CloseEvent(s) {
	case "", CloseOnClick:
		return CloseOnClick, nil
	case CloseOnMouseDown:
		return CloseOnMouseDown, nil
	default:
		return "", fmt.Errorf("unknown close event %q (want click or mousedown)", s)
	}
}

// Machine is the open/closed state machine. The zero value is closed.
type Machine struct {
	state     State
	unmounted bool

	// OnOpen and OnClose observe transitions. OnClose runs once per
	// open->closed transition.
	OnOpen  func()
	OnClose func(Reason)
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// IsOpen reports whether the dropdown is open.
func (m *Machine) IsOpen() bool { return m.state == Open }

// Unmounted reports whether Unmount was called.
func (m *Machine) Unmounted() bool { return m.unmounted }

// Toggle opens a closed dropdown and closes an open one.
func (m *Machine) Toggle() {
	if m.unmounted {
		return
	}
	if m.state == Open {
		m.close(ReasonToggle)
		return
	}
	m.state = Open
	if m.OnOpen != nil {
		m.OnOpen()
	}
}

// Select closes the dropdown after a menu selection.
func (m *Machine) Select() { m.close(ReasonSelect) }

// RootClose closes the dropdown after an outside pointer event.
func (m *Machine) RootClose() { m.close(ReasonRootClose) }

// RequestClose closes the dropdown on an explicit request.
func (m *Machine) RequestClose() { m.close(ReasonRequest) }

// Unmount moves to the terminal closed state. Later events are ignored.
func (m *Machine) Unmount() {
	if m.unmounted {
		return
	}
	m.close(ReasonUnmount)
	m.unmounted = true
}

func (m *Machine) close(reason Reason) {
	if m.unmounted || m.state != Open {
		return
	}
	m.state = Closed
	if m.OnClose != nil {
		m.OnClose(reason)
	}
}
