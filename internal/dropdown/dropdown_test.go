package dropdown

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDropdown(t *testing.T, ev CloseEvent) (*Dropdown, *[]Reason, *[]string) {
	t.Helper()
	var reasons []Reason
	var selected []string
	menu := NewMenu(Header("Camera"), MenuItem("pan", "Move the camera"), MenuItem("rotate", "Rotate the camera"))
	d := New(func() string { return "mode" }, menu, Options{
		CloseEvent: ev,
		OnSelect:   func(k string) { selected = append(selected, k) },
		OnClose:    func(r Reason) { reasons = append(reasons, r) },
	})
	d.SetBounds(Rect{X: 10, Y: 10, W: 8, H: 1})
	return d, &reasons, &selected
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func TestMachineTransitions(t *testing.T) {
	var closes []Reason
	m := &Machine{OnClose: func(r Reason) { closes = append(closes, r) }}
	require.Equal(t, Closed, m.State())

	m.Select()
	m.RootClose()
	m.RequestClose()
	require.Empty(t, closes, "closing a closed machine is a no-op")

	m.Toggle()
	require.True(t, m.IsOpen())
	m.Select()
	require.Equal(t, []Reason{ReasonSelect}, closes)

	m.Toggle()
	m.Unmount()
	m.Toggle()
	require.Equal(t, Closed, m.State())
	require.Equal(t, []Reason{ReasonSelect, ReasonUnmount}, closes)
}

func TestParseCloseEvent(t *testing.T) {
	ev, err := ParseCloseEvent("")
	require.NoError(t, err)
	require.Equal(t, CloseOnClick, ev)
	ev, err = ParseCloseEvent("mousedown")
	require.NoError(t, err)
	require.Equal(t, CloseOnMouseDown, ev)
	_, err = ParseCloseEvent("hover")
	require.Error(t, err)
}

func TestOutsideClickClosesOnce(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnClick)
	d.Toggle()
	require.True(t, d.IsOpen())

	d.Update(press(0, 0))
	require.True(t, d.IsOpen(), "click closes on release")
	d.Update(release(0, 0))
	require.False(t, d.IsOpen())
	require.Equal(t, []Reason{ReasonRootClose}, *reasons)

	d.Update(press(0, 0))
	d.Update(release(0, 0))
	require.Len(t, *reasons, 1, "no close handler while closed")
}

func TestOutsideMouseDownClosesOnce(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnMouseDown)
	d.Toggle()
	d.Update(press(0, 0))
	require.False(t, d.IsOpen())
	d.Update(release(0, 0))
	d.Update(press(1, 1))
	require.Equal(t, []Reason{ReasonRootClose}, *reasons)
}

func TestInsidePressDoesNotRootClose(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnMouseDown)
	d.Toggle()
	mb := d.MenuBounds()
	require.NotZero(t, mb.W)
	d.Update(tea.MouseMsg{X: mb.X, Y: mb.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	assert.True(t, d.IsOpen())
	assert.Empty(t, *reasons)
}

func TestToggleByPointer(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnClick)
	assert.True(t, d.Update(press(11, 10)))
	assert.True(t, d.IsOpen())
	d.Update(release(11, 10))
	assert.True(t, d.IsOpen())
	d.Update(press(11, 10))
	assert.False(t, d.IsOpen())
	assert.Equal(t, []Reason{ReasonToggle}, *reasons)
}

func TestKeyboardSelection(t *testing.T) {
	d, reasons, selected := newTestDropdown(t, CloseOnClick)
	assert.False(t, d.Update(tea.KeyMsg{Type: tea.KeyDown}), "closed dropdown ignores keys")

	d.Toggle()
	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"rotate"}, *selected)
	assert.Equal(t, []Reason{ReasonSelect}, *reasons)
	assert.False(t, d.IsOpen())
}

func TestEscapeClosesAsRootClose(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnClick)
	d.Toggle()
	assert.True(t, d.Update(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, []Reason{ReasonRootClose}, *reasons)
}

func TestPointerSelectsMenuRow(t *testing.T) {
	d, _, selected := newTestDropdown(t, CloseOnClick)
	d.Toggle()
	mb := d.MenuBounds()
	assert.Equal(t, 11, mb.Y, "menu opens below the toggle")

	// border row, header row, then the first item
	d.Update(press(mb.X+2, mb.Y+2))
	assert.Equal(t, []string{"pan"}, *selected)

	d.Toggle()
	d.Update(press(mb.X+2, mb.Y+1))
	assert.Len(t, *selected, 1, "headers are not selectable")
	assert.True(t, d.IsOpen())
}

func TestDropupPullRightPlacement(t *testing.T) {
	menu := NewMenu(MenuItem("a", "Alpha"))
	d := New(func() string { return "x" }, menu, Options{Dropup: true, PullRight: true})
	d.SetBounds(Rect{X: 40, Y: 20, W: 6, H: 1})
	d.Toggle()
	w, h := menu.Size()
	mb := d.MenuBounds()
	assert.Equal(t, Rect{X: 46 - w, Y: 20 - h, W: w, H: h}, mb)
	assert.True(t, menu.Props().PullRight)
}

func TestUnmountIsTerminal(t *testing.T) {
	d, reasons, _ := newTestDropdown(t, CloseOnClick)
	d.Toggle()
	d.Unmount()
	assert.Equal(t, []Reason{ReasonUnmount}, *reasons)
	d.Toggle()
	assert.False(t, d.Update(press(11, 10)))
	assert.False(t, d.IsOpen())
}

func TestMenuViewHiddenWhenClosed(t *testing.T) {
	d, _, _ := newTestDropdown(t, CloseOnClick)
	assert.Empty(t, d.MenuView())
	assert.Contains(t, d.View(), "mode")
	d.Toggle()
	assert.Contains(t, d.MenuView(), "Rotate the camera")
}
