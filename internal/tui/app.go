package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cncdeck/internal/api"
	"github.com/jask/cncdeck/internal/camera"
	"github.com/jask/cncdeck/internal/dropdown"
	"github.com/jask/cncdeck/internal/events"
	"github.com/jask/cncdeck/internal/machine"
	"github.com/jask/cncdeck/internal/macro"
	"github.com/jask/cncdeck/internal/workspace"
)

// Controller is the part of the controller API the panel uses.
// *api.Client satisfies it.
type Controller interface {
	ListMacros(ctx context.Context) ([]macro.Macro, error)
	CreateMacro(ctx context.Context, in macro.Input) (macro.Macro, error)
	UpdateMacro(ctx context.Context, id string, in macro.Input) error
	DeleteMacro(ctx context.Context, id string) error
	RunMacro(ctx context.Context, id string) error
	FetchMachines(ctx context.Context) ([]machine.Profile, error)
}

// EventSource is implemented by controllers that push events.
type EventSource interface {
	Events(ctx context.Context) (*api.EventStream, error)
}

// Options tune the UI.
type Options struct {
	CloseEvent     dropdown.CloseEvent
	TruncateToggle int
	TruncateItem   int
	// StartView is "macros" or "3d".
	StartView string
	Debug     bool
	// Reconnect is the delay before the event socket is redialed.
	Reconnect time.Duration
}

// App ties together views.
type App struct {
	ctx     context.Context
	client  Controller
	store   *workspace.Store
	bus     *events.Bus
	keys    *KeyRegistry
	help    help.Model
	cam     *camera.State
	toolbar *Toolbar
	opts    Options

	state   appState
	macros  []macro.Macro
	cursor  int
	modal   modalState
	editor  *Editor
	confirm *ConfirmDelete
	status  string
	width   int
	height  int

	// sessions counts opened editors; save results carry the count of theirs.
	sessions int

	stream   *api.EventStream
	quitting bool
}

type appState string

const (
	viewMacros appState = "macros"
	viewViewer appState = "3d"
)

type modalState string

const (
	modalNone          modalState = ""
	modalEditMacro     modalState = "editMacro"
	modalConfirmDelete modalState = "confirmDelete"
)

// first list row on screen
const listTop = 2

func New(ctx context.Context, client Controller, store *workspace.Store, bus *events.Bus, opts Options) *App {
	SetDebug(opts.Debug)
	if opts.CloseEvent == "" {
		opts.CloseEvent = dropdown.CloseOnClick
	}
	if opts.Reconnect <= 0 {
		opts.Reconnect = 5 * time.Second
	}
	state := viewMacros
	if opts.StartView == string(viewViewer) {
		state = viewViewer
	}
	cam := camera.NewState()
	a := &App{
		ctx:    ctx,
		client: client,
		store:  store,
		bus:    bus,
		keys:   DefaultKeys(),
		help:   help.New(),
		cam:    cam,
		opts:   opts,
		state:  state,
	}
	a.toolbar = NewToolbar(store, bus, client.FetchMachines, cam, ToolbarOptions{
		CloseEvent:     opts.CloseEvent,
		TruncateToggle: opts.TruncateToggle,
		TruncateItem:   opts.TruncateItem,
		Show3D:         state == viewViewer,
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadMacros(), a.toolbar.Mount(), a.listenEvents())
}

func (a *App) loadMacros() tea.Cmd {
	return func() tea.Msg {
		list, err := a.client.ListMacros(a.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load macros: %w", err)}
		}
		return macrosMsg(list)
	}
}

// saveMacro updates or creates. Update failures are swallowed: the editor
// closes and the list is refreshed either way.
func (a *App) saveMacro(m editorSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		if m.ID == "" {
			created, err := a.client.CreateMacro(a.ctx, m.Input)
			if err != nil {
				return errMsg{fmt.Errorf("create macro: %w", err)}
			}
			return macroSavedMsg{Session: m.Session, ID: created.ID, Created: true}
		}
		if err := a.client.UpdateMacro(a.ctx, m.ID, m.Input); err != nil {
			debugf("update macro %s: %v", m.ID, err)
		}
		return macroSavedMsg{Session: m.Session, ID: m.ID}
	}
}

func (a *App) deleteMacro(m macro.Macro) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteMacro(a.ctx, m.ID); err != nil {
			debugf("delete macro %s: %v", m.ID, err)
		}
		return macroDeletedMsg{Name: m.Name}
	}
}

func (a *App) runMacro(m macro.Macro) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.RunMacro(a.ctx, m.ID); err != nil {
			return errMsg{fmt.Errorf("run %s: %w", m.Name, err)}
		}
		return statusMsg(fmt.Sprintf("sent %q to the controller", m.Name))
	}
}

func (a *App) listenEvents() tea.Cmd {
	src, ok := a.client.(EventSource)
	if !ok {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		stream, err := src.Events(ctx)
		if err != nil {
			return eventsClosedMsg{err}
		}
		return eventStreamMsg{stream}
	}
}

func waitEvent(s *api.EventStream) tea.Cmd {
	return func() tea.Msg {
		env, err := s.Next()
		if err != nil {
			return eventsClosedMsg{err}
		}
		return eventMsg{env}
	}
}

// handleEnvelope republishes controller events on the bus. It runs on the
// UI loop, so bus subscribers never race the view.
func (a *App) handleEnvelope(env api.Envelope) {
	switch env.Topic {
	case events.TopicUpdateMachineProfiles:
		list, err := env.MachineProfiles()
		if err != nil {
			log.Printf("warn: %v", err)
			return
		}
		a.bus.UpdateMachineProfiles.Publish(list)
	default:
		debugf("ignoring event %q", env.Topic)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		return a.handleKey(m)
	case tea.MouseMsg:
		a.handleMouse(m)
	case macrosMsg:
		a.macros = []macro.Macro(m)
		if a.cursor >= len(a.macros) {
			a.cursor = max(len(a.macros)-1, 0)
		}
	case machinesMsg:
		a.toolbar.SetProfiles(m)
	case eventStreamMsg:
		a.stream = m.stream
		return a, waitEvent(m.stream)
	case eventMsg:
		a.handleEnvelope(m.env)
		if a.stream == nil {
			return a, nil
		}
		return a, waitEvent(a.stream)
	case eventsClosedMsg:
		a.stream = nil
		if a.quitting || a.ctx.Err() != nil {
			return a, nil
		}
		debugf("event stream: %v", m.err)
		return a, tea.Tick(a.opts.Reconnect, func(time.Time) tea.Msg { return reconnectMsg{} })
	case reconnectMsg:
		if a.quitting {
			return a, nil
		}
		return a, a.listenEvents()
	case editorCloseMsg:
		a.closeEditor()
	case editorSubmitMsg:
		return a, a.saveMacro(m)
	case editorDeleteMsg:
		a.confirm = NewConfirmDelete(m.Macro, true, a.keys)
		a.modal = modalConfirmDelete
	case macroSavedMsg:
		// a result for an editor that was since dismissed leaves the open one alone
		if a.editor != nil && a.editor.session == m.Session {
			a.closeEditor()
		}
		if m.Created {
			a.status = "macro created"
		}
		return a, a.loadMacros()
	case macroDeletedMsg:
		a.status = fmt.Sprintf("deleted %q", m.Name)
		return a, a.loadMacros()
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) scope() string {
	if a.state == viewViewer {
		return scopeViewer
	}
	return scopeList
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Type == tea.KeyCtrlC {
		return a, a.quit()
	}
	switch a.modal {
	case modalConfirmDelete:
		return a, a.handleConfirmKey(m)
	case modalEditMacro:
		return a, a.editor.Update(m)
	}
	if a.toolbar.Update(m) {
		return a, nil
	}

	switch a.keys.Action(m, a.scope()) {
	case actQuit:
		return a, a.quit()
	case actUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actDown:
		if a.cursor < len(a.macros)-1 {
			a.cursor++
		}
	case actOpen:
		if cur, ok := a.current(); ok {
			a.openEditor(cur)
		}
	case actNew:
		a.openEditor(macro.Macro{})
	case actRun:
		if cur, ok := a.current(); ok {
			return a, a.runMacro(cur)
		}
	case actDelete:
		if cur, ok := a.current(); ok {
			a.confirm = NewConfirmDelete(cur, false, a.keys)
			a.modal = modalConfirmDelete
		}
	case actRefresh:
		return a, a.loadMacros()
	case actToggleView:
		if a.state == viewViewer {
			a.state = viewMacros
		} else {
			a.state = viewViewer
		}
		a.toolbar.SetShow3D(a.state == viewViewer)
	case actProfiles:
		a.toolbar.ToggleProfiles()
	case actCameraMode:
		a.toolbar.ToggleCameraMode()
	case actTopView:
		a.cam.ToTopView()
	case actFrontView:
		a.cam.ToFrontView()
	case actRightView:
		a.cam.ToRightSideView()
	case actLeftView:
		a.cam.ToLeftSideView()
	case act3DView:
		a.cam.To3DView()
	case actZoomFit:
		a.cam.ZoomFit()
	case actZoomIn:
		a.cam.ZoomIn()
	case actZoomOut:
		a.cam.ZoomOut()
	}
	return a, nil
}

// handleConfirmKey closes the confirmation, then the editor it came from,
// then deletes.
func (a *App) handleConfirmKey(m tea.KeyMsg) tea.Cmd {
	switch a.keys.Action(m, scopeConfirm) {
	case actConfirm:
		target, fromEditor := a.confirm.Macro, a.confirm.FromEditor
		a.closeConfirm()
		if fromEditor {
			a.closeEditor()
		}
		return a.deleteMacro(target)
	case actConfirmDeny:
		a.closeConfirm()
	}
	return nil
}

func (a *App) handleMouse(m tea.MouseMsg) {
	switch a.modal {
	case modalEditMacro:
		a.editor.Update(m)
		return
	case modalConfirmDelete:
		return
	}
	if a.toolbar.Update(m) {
		return
	}
	if a.state != viewMacros || m.Action != tea.MouseActionPress || m.Button != tea.MouseButtonLeft {
		return
	}
	if row := m.Y - listTop; row >= 0 && row < len(a.macros) && row < a.listRows() {
		a.cursor = row
	}
}

func (a *App) current() (macro.Macro, bool) {
	if a.cursor < 0 || a.cursor >= len(a.macros) {
		return macro.Macro{}, false
	}
	return a.macros[a.cursor], true
}

func (a *App) openEditor(m macro.Macro) {
	a.sessions++
	a.editor = NewEditor(m, a.keys, a.opts.CloseEvent)
	a.editor.session = a.sessions
	a.modal = modalEditMacro
}

func (a *App) closeEditor() {
	if a.editor != nil {
		a.editor.Close()
	}
	a.editor = nil
	if a.modal == modalEditMacro {
		a.modal = modalNone
	}
}

func (a *App) closeConfirm() {
	a.confirm = nil
	if a.editor != nil {
		a.modal = modalEditMacro
	} else {
		a.modal = modalNone
	}
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.closeEditor()
	a.toolbar.Unmount()
	if a.stream != nil {
		_ = a.stream.Close()
		a.stream = nil
	}
	return tea.Quit
}

// Editor returns the open editor, or nil.
func (a *App) Editor() *Editor { return a.editor }

// Toolbar returns the toolbar.
func (a *App) Toolbar() *Toolbar { return a.toolbar }

// Status returns the status line text.
func (a *App) Status() string { return a.status }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
)

func (a *App) size() (int, int) {
	w, h := a.width, a.height
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 30
	}
	return w, h
}

func (a *App) listRows() int {
	_, h := a.size()
	return max(h-listTop-3, 1)
}

func (a *App) View() string {
	w, h := a.size()
	title := "cncdeck · macros"
	if a.state == viewViewer {
		title = "cncdeck · 3D view"
	}
	lines := []string{headerStyle.Render(title), ""}
	if a.state == viewViewer {
		lines = append(lines, a.renderViewer()...)
	} else {
		lines = append(lines, a.renderMacros()...)
	}
	for len(lines) < h-3 {
		lines = append(lines, "")
	}
	lines = lines[:h-3]
	lines = append(lines,
		statusStyle.Render(a.status),
		a.toolbar.View(h-2, w),
		a.help.ShortHelpView(a.keys.BindingsForScope(a.scope())),
	)

	canvas := fitCanvas(strings.Join(lines, "\n"), w, h)
	canvas = a.toolbar.Overlay(canvas, w, h)
	if a.editor != nil {
		card, x, y := renderCard(a.editor.View(), w, h)
		a.editor.Place(x+cardInsetX, y+cardInsetY)
		canvas = overlayAt(canvas, card, x, y, w, h)
		canvas = a.editor.MenuOverlay(canvas, w, h)
	}
	if a.confirm != nil {
		card, x, y := renderCard(a.confirm.View(), w, h)
		canvas = overlayAt(canvas, card, x, y, w, h)
	}
	return canvas
}

func (a *App) renderMacros() []string {
	if len(a.macros) == 0 {
		return []string{dimStyle.Render("No macros. Press n to create one.")}
	}
	rows := a.listRows()
	out := make([]string, 0, min(len(a.macros), rows))
	for i, m := range a.macros {
		if i >= rows {
			break
		}
		count := dimStyle.Render(fmt.Sprintf("%d lines", len(m.Lines())))
		if i == a.cursor {
			out = append(out, cursorStyle.Render("› "+m.Name)+"  "+count)
		} else {
			out = append(out, "  "+m.Name+"  "+count)
		}
	}
	return out
}

func (a *App) renderViewer() []string {
	out := []string{a.toolbar.ViewportSummary()}
	p, ok := a.toolbar.Current()
	if !ok {
		return append(out, dimStyle.Render(noProfileLabel))
	}
	out = append(out, "machine "+p.Name)
	if l := p.Limits; l != nil {
		out = append(out,
			fmt.Sprintf("  X %.1f .. %.1f", l.XMin, l.XMax),
			fmt.Sprintf("  Y %.1f .. %.1f", l.YMin, l.YMax),
			fmt.Sprintf("  Z %.1f .. %.1f", l.ZMin, l.ZMax),
		)
	}
	return out
}

type macrosMsg []macro.Macro

type machinesMsg []machine.Profile

type macroSavedMsg struct {
	Session int
	ID      string
	Created bool
}

type macroDeletedMsg struct{ Name string }

type eventStreamMsg struct{ stream *api.EventStream }

type eventMsg struct{ env api.Envelope }

type eventsClosedMsg struct{ err error }

type reconnectMsg struct{}

type statusMsg string

type errMsg struct{ error }

var debugLog atomic.Bool

// SetDebug turns debug log lines on or off.
func SetDebug(on bool) { debugLog.Store(on) }

func debugf(format string, args ...any) {
	if debugLog.Load() {
		log.Printf("debug: "+format, args...)
	}
}
