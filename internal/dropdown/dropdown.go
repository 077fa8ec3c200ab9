package dropdown

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	toggleStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	toggleOpenStyle = toggleStyle.Background(lipgloss.Color("62"))
)

// Options configure a Dropdown.
type Options struct {
	// Dropup opens the menu above the toggle.
	Dropup bool
	// PullRight aligns the menu's right edge with the toggle's.
	PullRight  bool
	CloseEvent CloseEvent
	OnSelect   func(eventKey string)
	OnClose    func(Reason)
	// MenuRef is passed to the menu slot.
	MenuRef Ref
	Warnf   func(format string, args ...any)
}

// Dropdown is a toggle button with a menu. The owner places it on screen
// and reports the toggle's rectangle through SetBounds so pointer events
// can be hit-tested.
type Dropdown struct {
	Label func() string

	opts    Options
	machine Machine
	wrapper Wrapper
	menu    *Menu
	toggle  *Element
	bounds  Rect
}

// New builds a closed dropdown around menu.
func New(label func() string, menu *Menu, opts Options) *Dropdown {
	if opts.CloseEvent == "" {
		opts.CloseEvent = CloseOnClick
	}
	d := &Dropdown{Label: label, opts: opts, menu: menu}
	d.toggle = &Element{Key: "toggle", Render: d.renderToggle}
	d.machine.OnClose = func(r Reason) {
		d.remount()
		if d.opts.OnClose != nil {
			d.opts.OnClose(r)
		}
	}
	d.machine.OnOpen = d.remount
	d.wrapper.Warnf = opts.Warnf
	d.remount()
	return d
}

// State returns the open/closed state.
func (d *Dropdown) State() State { return d.machine.State() }

// IsOpen reports whether the menu is showing.
func (d *Dropdown) IsOpen() bool { return d.machine.IsOpen() }

// Menu returns the menu child.
func (d *Dropdown) Menu() *Menu { return d.menu }

// Toggle opens or closes the menu.
func (d *Dropdown) Toggle() { d.machine.Toggle() }

// Close closes the menu on request.
func (d *Dropdown) Close() { d.machine.RequestClose() }

// Unmount closes the dropdown for good and releases the menu refs.
func (d *Dropdown) Unmount() {
	d.machine.Unmount()
	d.wrapper.Unmount()
}

// SetBounds records where the toggle was drawn.
func (d *Dropdown) SetBounds(r Rect) { d.bounds = r }

// Bounds returns the toggle rectangle.
func (d *Dropdown) Bounds() Rect { return d.bounds }

// MenuBounds returns where the open menu is drawn relative to the toggle.
func (d *Dropdown) MenuBounds() Rect {
	w, h := d.menu.Size()
	if w == 0 {
		return Rect{}
	}
	x := d.bounds.X
	if d.opts.PullRight {
		x = d.bounds.X + d.bounds.W - w
	}
	y := d.bounds.Y + d.bounds.H
	if d.opts.Dropup {
		y = d.bounds.Y - h
	}
	return Rect{X: max(x, 0), Y: max(y, 0), W: w, H: h}
}

// Update handles keys and mouse events. It returns true when the message
// was consumed.
func (d *Dropdown) Update(msg tea.Msg) bool {
	if d.machine.Unmounted() {
		return false
	}
	switch m := msg.(type) {
	case tea.KeyMsg:
		return d.handleKey(m)
	case tea.MouseMsg:
		return d.handleMouse(m)
	}
	return false
}

func (d *Dropdown) handleKey(m tea.KeyMsg) bool {
	if !d.IsOpen() {
		return false
	}
	if d.wrapper.Root().HandleKey(m) {
		return true
	}
	switch m.String() {
	case "down", "j", "tab":
		d.wrapper.FocusNext()
	case "up", "k", "shift+tab":
		d.wrapper.FocusPrevious()
	case "enter", " ":
		if menu := d.wrapper.Menu(); menu != nil {
			menu.SelectFocused()
		}
	default:
		return false
	}
	return true
}

func (d *Dropdown) handleMouse(m tea.MouseMsg) bool {
	onToggle := d.bounds.Contains(m.X, m.Y)
	mb := d.MenuBounds()
	onMenu := d.IsOpen() && mb.Contains(m.X, m.Y)

	// outside events close the menu but stay unconsumed so the owner can
	// route them to whatever was hit
	if d.IsOpen() && d.wrapper.Root().HandleMouse(m, onToggle || onMenu) {
		return false
	}
	if m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
		return onToggle || onMenu
	}
	switch {
	case onToggle:
		d.Toggle()
		return true
	case onMenu:
		// one row of border above the items
		d.menu.SelectRow(m.Y - mb.Y - 1)
		return true
	}
	return false
}

// View renders the toggle. The menu is rendered separately by MenuView so
// the owner can overlay it.
func (d *Dropdown) View() string {
	return d.toggle.View()
}

// MenuView renders the open menu, or "".
func (d *Dropdown) MenuView() string { return d.menu.View() }

func (d *Dropdown) renderToggle() string {
	label := ""
	if d.Label != nil {
		label = d.Label()
	}
	caret := " ▾"
	if d.opts.Dropup {
		caret = " ▴"
	}
	if d.IsOpen() {
		return toggleOpenStyle.Render(label + caret)
	}
	return toggleStyle.Render(label + caret)
}

func (d *Dropdown) onSelect(eventKey string) {
	if d.opts.OnSelect != nil {
		d.opts.OnSelect(eventKey)
	}
	d.machine.Select()
}

func (d *Dropdown) remount() {
	d.wrapper.Props = ContainerProps{
		Open:       d.machine.IsOpen(),
		PullRight:  d.opts.PullRight,
		OnSelect:   d.onSelect,
		OnClose:    d.machine.RootClose,
		CloseEvent: d.opts.CloseEvent,
	}
	d.wrapper.Mount([]Child{d.toggle, &MenuSlot{Menu: d.menu, Ref: d.opts.MenuRef}})
}
