package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/cncdeck/internal/camera"
	"github.com/jask/cncdeck/internal/dropdown"
	"github.com/jask/cncdeck/internal/events"
	"github.com/jask/cncdeck/internal/machine"
	"github.com/jask/cncdeck/internal/workspace"
)

const noProfileLabel = "No machine profile selected"

var (
	buttonStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	buttonActiveStyle = buttonStyle.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

// ToolbarOptions configure the toolbar.
type ToolbarOptions struct {
	CloseEvent dropdown.CloseEvent
	// TruncateToggle and TruncateItem cap profile names on the toggle and
	// in the menu. Zero disables truncation.
	TruncateToggle int
	TruncateItem   int
	Show3D         bool
}

type toolButton struct {
	label  string
	press  func()
	active func() bool
	bounds dropdown.Rect
}

// Toolbar is the row under the main view: the machine profile selector
// and, while the 3D view is showing, the camera controls.
type Toolbar struct {
	Show3D bool

	store *workspace.Store
	bus   *events.Bus
	fetch func(context.Context) ([]machine.Profile, error)
	cam   *camera.State
	opts  ToolbarOptions

	selected   machine.Profile
	profiles   []machine.Profile
	mounted    bool
	unsubStore func()
	busToken   events.Token

	profileMenu *dropdown.Menu
	profileDD   *dropdown.Dropdown
	modeMenu    *dropdown.Menu
	modeDD      *dropdown.Dropdown
	buttons     []*toolButton
}

// NewToolbar wires a toolbar to the workspace store, the event bus and a
// machine list fetcher. It does nothing until Mount.
func NewToolbar(store *workspace.Store, bus *events.Bus, fetch func(context.Context) ([]machine.Profile, error), cam *camera.State, opts ToolbarOptions) *Toolbar {
	t := &Toolbar{
		Show3D:   opts.Show3D,
		store:    store,
		bus:      bus,
		fetch:    fetch,
		cam:      cam,
		opts:     opts,
		profiles: []machine.Profile{},
	}
	t.profileMenu = dropdown.NewMenu()
	t.profileMenu.MaxWidth = opts.TruncateItem
	t.profileMenu.MaxHeight = 12
	t.profileDD = dropdown.New(t.profileLabel, t.profileMenu, dropdown.Options{
		Dropup:     true,
		CloseEvent: opts.CloseEvent,
		OnSelect: func(id string) {
			if err := t.SelectProfile(context.Background(), id); err != nil {
				log.Printf("warn: save machine profile: %v", err)
			}
		},
		Warnf: log.Printf,
	})

	t.modeMenu = dropdown.NewMenu()
	t.modeDD = dropdown.New(t.modeLabel, t.modeMenu, dropdown.Options{
		Dropup:     true,
		PullRight:  true,
		CloseEvent: opts.CloseEvent,
		OnSelect:   t.selectMode,
		Warnf:      log.Printf,
	})

	t.buttons = []*toolButton{
		{label: "Top", press: cam.ToTopView, active: t.positionIs(camera.PositionTop)},
		{label: "Front", press: cam.ToFrontView, active: t.positionIs(camera.PositionFront)},
		{label: "Right", press: cam.ToRightSideView, active: t.positionIs(camera.PositionRight)},
		{label: "Left", press: cam.ToLeftSideView, active: t.positionIs(camera.PositionLeft)},
		{label: "3D", press: cam.To3DView, active: t.positionIs(camera.Position3D)},
		{label: "Fit", press: cam.ZoomFit},
		{label: "+", press: cam.ZoomIn},
		{label: "-", press: cam.ZoomOut},
	}
	t.rebuildMenus()
	return t
}

func (t *Toolbar) positionIs(p camera.Position) func() bool {
	return func() bool { return t.cam.Position == p }
}

// Mount restores the selection and camera from the store, subscribes to
// store changes and machine list events, and returns the initial fetch.
func (t *Toolbar) Mount() tea.Cmd {
	if t.mounted {
		return nil
	}
	t.mounted = true

	var p machine.Profile
	if ok, err := t.store.GetInto(workspace.PathMachineProfile, &p); ok && err == nil && p.ID != "" {
		t.selected = p
	}
	var mode camera.Mode
	if ok, _ := t.store.GetInto(workspace.PathCameraMode, &mode); ok {
		if m, err := camera.ParseMode(string(mode)); err == nil {
			t.cam.Mode = m
		}
	}
	var pos camera.Position
	if ok, _ := t.store.GetInto(workspace.PathCameraPosition, &pos); ok && pos != "" {
		t.cam.Position = pos
	}
	t.cam.OnChange = t.onCamera

	t.unsubStore = t.store.Subscribe(t.onStoreChange)
	t.busToken = t.bus.UpdateMachineProfiles.Subscribe(t.SetProfiles)
	t.rebuildMenus()

	fetch := t.fetch
	return func() tea.Msg {
		list, err := fetch(context.Background())
		if err != nil {
			debugf("fetch machines: %v", err)
			return nil
		}
		return machinesMsg(list)
	}
}

// Unmount drops the subscriptions and closes the dropdowns for good.
func (t *Toolbar) Unmount() {
	if !t.mounted {
		return
	}
	t.mounted = false
	if t.unsubStore != nil {
		t.unsubStore()
		t.unsubStore = nil
	}
	t.bus.UpdateMachineProfiles.Unsubscribe(t.busToken)
	t.cam.OnChange = nil
	t.profileDD.Unmount()
	t.modeDD.Unmount()
}

// Selected returns the selected machine profile.
func (t *Toolbar) Selected() machine.Profile { return t.selected }

// Profiles returns the known machine profiles.
func (t *Toolbar) Profiles() []machine.Profile { return t.profiles }

// SetProfiles replaces the machine list. nil becomes an empty list.
func (t *Toolbar) SetProfiles(list []machine.Profile) {
	t.profiles = machine.Ensure(list)
	t.rebuildMenus()
}

// SelectProfile stores the profile with id as the workspace machine
// profile. Unknown ids are ignored.
func (t *Toolbar) SelectProfile(ctx context.Context, id string) error {
	p, ok := machine.Find(t.profiles, id)
	if !ok {
		return nil
	}
	return t.store.Replace(ctx, workspace.PathMachineProfile, p)
}

func (t *Toolbar) onStoreChange(c workspace.Change) {
	if c.Path != workspace.PathMachineProfile {
		return
	}
	var p machine.Profile
	if ok, err := t.store.GetInto(workspace.PathMachineProfile, &p); !ok || err != nil {
		return
	}
	if p.ID == "" || machine.Equal(p, t.selected) {
		return
	}
	t.selected = p
	t.rebuildMenus()
}

func (t *Toolbar) onCamera(s camera.State) {
	ctx := context.Background()
	if err := t.store.Replace(ctx, workspace.PathCameraMode, s.Mode); err != nil {
		log.Printf("warn: save camera mode: %v", err)
	}
	if err := t.store.Replace(ctx, workspace.PathCameraPosition, s.Position); err != nil {
		log.Printf("warn: save camera position: %v", err)
	}
	t.rebuildMenus()
}

func (t *Toolbar) selectMode(key string) {
	switch camera.Mode(key) {
	case camera.ModePan:
		t.cam.ToPanMode()
	case camera.ModeRotate:
		t.cam.ToRotateMode()
	}
}

func (t *Toolbar) rebuildMenus() {
	items := []dropdown.Item{dropdown.Header("Machine Profiles")}
	for _, p := range t.profiles {
		it := dropdown.MenuItem(p.ID, p.Name)
		it.Title = p.Name
		it.Active = p.ID == t.selected.ID
		items = append(items, it)
	}
	t.profileMenu.Items = items

	pan := dropdown.MenuItem(string(camera.ModePan), "Pan")
	pan.Active = t.cam.Mode == camera.ModePan
	rotate := dropdown.MenuItem(string(camera.ModeRotate), "Rotate")
	rotate.Active = t.cam.Mode == camera.ModeRotate
	t.modeMenu.Items = []dropdown.Item{pan, rotate}
}

// Current resolves the stored selection against the fetched list. A stored
// profile the controller no longer reports counts as no selection.
func (t *Toolbar) Current() (machine.Profile, bool) {
	return machine.Find(t.profiles, t.selected.ID)
}

func (t *Toolbar) profileLabel() string {
	p, ok := t.Current()
	if !ok {
		return noProfileLabel
	}
	if t.opts.TruncateToggle > 0 {
		return ansi.Truncate(p.Name, t.opts.TruncateToggle, "…")
	}
	return p.Name
}

func (t *Toolbar) modeLabel() string {
	if t.cam.Mode == camera.ModeRotate {
		return "Rotate"
	}
	return "Pan"
}

func (t *Toolbar) showProfiles() bool { return len(t.profiles) > 0 }

func (t *Toolbar) dropdowns() []*dropdown.Dropdown {
	var out []*dropdown.Dropdown
	if t.showProfiles() {
		out = append(out, t.profileDD)
	}
	if t.Show3D {
		out = append(out, t.modeDD)
	}
	return out
}

// ToggleProfiles opens or closes the machine profile menu.
func (t *Toolbar) ToggleProfiles() {
	if t.showProfiles() {
		t.modeDD.Close()
		t.profileDD.Toggle()
	}
}

// ToggleCameraMode opens or closes the pan/rotate menu.
func (t *Toolbar) ToggleCameraMode() {
	if t.Show3D {
		t.profileDD.Close()
		t.modeDD.Toggle()
	}
}

// SetShow3D shows or hides the camera controls. Hiding them closes the
// camera-mode menu.
func (t *Toolbar) SetShow3D(on bool) {
	t.Show3D = on
	if !on {
		t.modeDD.Close()
	}
}

// MenuOpen reports whether any toolbar menu is showing.
func (t *Toolbar) MenuOpen() bool {
	return t.profileDD.IsOpen() || t.modeDD.IsOpen()
}

// Update routes a key or mouse message. It returns true when the toolbar
// consumed it.
func (t *Toolbar) Update(msg tea.Msg) bool {
	switch m := msg.(type) {
	case tea.KeyMsg:
		for _, dd := range t.dropdowns() {
			if dd.IsOpen() {
				return dd.Update(m)
			}
		}
		return false
	case tea.MouseMsg:
		consumed := false
		// every dropdown sees the event so outside clicks close the others
		for _, dd := range t.dropdowns() {
			if dd.Update(m) {
				consumed = true
			}
		}
		if consumed || !t.Show3D {
			return consumed
		}
		if m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
			return false
		}
		for _, b := range t.buttons {
			if b.bounds.Contains(m.X, m.Y) {
				b.press()
				return true
			}
		}
	}
	return false
}

// View renders the toolbar on screen row y and records hit areas.
func (t *Toolbar) View(y, width int) string {
	var b strings.Builder
	x := 0
	place := func(s string) dropdown.Rect {
		if x > 0 {
			b.WriteString(" ")
			x++
		}
		w := ansi.StringWidth(s)
		r := dropdown.Rect{X: x, Y: y, W: w, H: 1}
		b.WriteString(s)
		x += w
		return r
	}

	if t.showProfiles() {
		t.profileDD.SetBounds(place(t.profileDD.View()))
	} else {
		t.profileDD.SetBounds(dropdown.Rect{})
	}
	if t.Show3D {
		for i, btn := range t.buttons {
			if i == 5 {
				place("│")
			}
			style := buttonStyle
			if btn.active != nil && btn.active() {
				style = buttonActiveStyle
			}
			btn.bounds = place(style.Render(btn.label))
		}
		place("│")
		t.modeDD.SetBounds(place(t.modeDD.View()))
	}
	return padRightANSI(b.String(), width)
}

// Overlay draws open menus over base.
func (t *Toolbar) Overlay(base string, width, height int) string {
	for _, dd := range t.dropdowns() {
		if !dd.IsOpen() {
			continue
		}
		mb := dd.MenuBounds()
		base = overlayAt(base, dd.MenuView(), mb.X, mb.Y, width, height)
	}
	return base
}

// ViewportSummary describes the camera for the 3D pane.
func (t *Toolbar) ViewportSummary() string {
	return fmt.Sprintf("camera %s · %s · zoom %.2fx", t.cam.Position, t.cam.Mode, t.cam.Zoom)
}
