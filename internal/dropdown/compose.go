package dropdown

import "log"

// Child is one child of a dropdown container. The concrete types are
// Element and MenuSlot; the menu is recognized by its variant, never by
// inspecting what it wraps.
type Child interface {
	isChild()
}

// Element is an opaque child that passes through composition untouched.
type Element struct {
	Key    string
	Render func() string
}

func (*Element) isChild() {}

// View renders the element, or "" when it has no renderer.
func (e *Element) View() string {
	if e == nil || e.Render == nil {
		return ""
	}
	return e.Render()
}

// MenuSlot is the menu child. After composition Props holds the injected
// state and Refs the ordered mount callbacks.
type MenuSlot struct {
	Menu  *Menu
	Ref   Ref
	Props MenuProps
	Refs  *RefList
}

func (*MenuSlot) isChild() {}

// Ref is how a menu child asks to capture its mounted menu. Only callback
// refs compose; a named ref is unsupported.
type Ref struct {
	Func func(*Menu)
	Name string
}

// RefFunc returns a callback ref.
func RefFunc(fn func(*Menu)) Ref { return Ref{Func: fn} }

// RefName returns a named ref. Dropdown containers do not support these.
func RefName(name string) Ref { return Ref{Name: name} }

// RefList is an ordered list of mount callbacks. Mount passes the menu to
// every callback in registration order; Unmount passes nil.
type RefList struct {
	fns []func(*Menu)
}

// Add appends a callback. Nil callbacks are ignored.
func (l *RefList) Add(fn func(*Menu)) {
	if fn != nil {
		l.fns = append(l.fns, fn)
	}
}

// Len returns the number of registered callbacks.
func (l *RefList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.fns)
}

// Mount invokes every callback with m.
func (l *RefList) Mount(m *Menu) {
	if l == nil {
		return
	}
	for _, fn := range l.fns {
		fn(m)
	}
}

// Unmount invokes every callback with nil.
func (l *RefList) Unmount() { l.Mount(nil) }

// ContainerProps configure a Wrapper. OnClose and CloseEvent belong to the
// container only and are never handed to the menu.
type ContainerProps struct {
	Open       bool
	PullRight  bool
	OnSelect   func(eventKey string)
	OnClose    func()
	CloseEvent CloseEvent
}

// Wrapper finds the menu among its children, injects MenuProps into it and
// keeps a reference to the mounted menu for keyboard focus.
type Wrapper struct {
	Props ContainerProps

	// Warnf reports developer misuse. Defaults to the standard logger.
	Warnf func(format string, args ...any)

	menu     *Menu
	root     RootCloseWrapper
	children []Child
}

// Compose returns children with the menu slot augmented. Other children,
// nil included, are returned as given.
func (w *Wrapper) Compose(children []Child) []Child {
	out := make([]Child, len(children))
	for i, c := range children {
		slot, ok := c.(*MenuSlot)
		if !ok || slot == nil {
			out[i] = c
			continue
		}
		out[i] = w.renderMenu(slot, MenuProps{
			Open:      w.Props.Open,
			PullRight: w.Props.PullRight,
			OnSelect:  w.Props.OnSelect,
		})
	}
	return out
}

func (w *Wrapper) renderMenu(slot *MenuSlot, props MenuProps) *MenuSlot {
	capture := func(m *Menu) { w.menu = m }
	refs := &RefList{}
	switch {
	case slot.Ref.Name != "":
		w.warnf("warn: named refs are not supported on dropdown menus (ref %q); use a callback ref", slot.Ref.Name)
	case slot.Ref.Func != nil:
		refs.Add(slot.Ref.Func)
	}
	refs.Add(capture)
	return &MenuSlot{
		Menu:  slot.Menu,
		Ref:   slot.Ref,
		Props: props,
		Refs:  refs,
	}
}

// Mount composes children, applies props to the menu and fires the ref
// callbacks. A previously mounted set is unmounted first.
func (w *Wrapper) Mount(children []Child) []Child {
	w.Unmount()
	w.children = w.Compose(children)
	w.root = RootCloseWrapper{
		Disabled:    !w.Props.Open,
		Event:       w.Props.CloseEvent,
		OnRootClose: w.Props.OnClose,
	}
	for _, c := range w.children {
		if slot, ok := c.(*MenuSlot); ok && slot != nil && slot.Menu != nil {
			slot.Menu.SetProps(slot.Props)
			slot.Refs.Mount(slot.Menu)
		}
	}
	return w.children
}

// Unmount fires ref callbacks with nil for the mounted children.
func (w *Wrapper) Unmount() {
	for _, c := range w.children {
		if slot, ok := c.(*MenuSlot); ok && slot != nil && slot.Menu != nil {
			slot.Refs.Unmount()
		}
	}
	w.children = nil
}

// Children returns the currently mounted children.
func (w *Wrapper) Children() []Child { return w.children }

// Menu returns the captured menu, if mounted.
func (w *Wrapper) Menu() *Menu { return w.menu }

// Root returns the root-close handler configured by the last Mount.
func (w *Wrapper) Root() *RootCloseWrapper { return &w.root }

// FocusNext moves menu focus down.
func (w *Wrapper) FocusNext() {
	if w.menu != nil {
		w.menu.FocusNext()
	}
}

// FocusPrevious moves menu focus up.
func (w *Wrapper) FocusPrevious() {
	if w.menu != nil {
		w.menu.FocusPrevious()
	}
}

func (w *Wrapper) warnf(format string, args ...any) {
	if w.Warnf != nil {
		w.Warnf(format, args...)
		return
	}
	log.Printf(format, args...)
}
