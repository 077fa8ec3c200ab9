package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/cncdeck/internal/api"
	"github.com/jask/cncdeck/internal/dropdown"
	"github.com/jask/cncdeck/internal/events"
	"github.com/jask/cncdeck/internal/machine"
	"github.com/jask/cncdeck/internal/macro"
	"github.com/jask/cncdeck/internal/workspace"
)

type fakeController struct {
	mu        sync.Mutex
	macros    []macro.Macro
	machines  []machine.Profile
	updates   []macro.Input
	deleted   []string
	ran       []string
	updateErr error
	fetchErr  error
}

func (f *fakeController) ListMacros(context.Context) ([]macro.Macro, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]macro.Macro(nil), f.macros...), nil
}

func (f *fakeController) CreateMacro(_ context.Context, in macro.Input) (macro.Macro, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := macro.Macro{ID: "new", Name: in.Name, Content: in.Content}
	f.macros = append(f.macros, m)
	return m, nil
}

func (f *fakeController) UpdateMacro(_ context.Context, id string, in macro.Input) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	return f.updateErr
}

func (f *fakeController) DeleteMacro(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return errors.New("controller offline")
}

func (f *fakeController) RunMacro(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, id)
	return nil
}

func (f *fakeController) FetchMachines(context.Context) ([]machine.Profile, error) {
	return f.machines, f.fetchErr
}

var testProfiles = []machine.Profile{
	{ID: "m1", Name: "Shapeoko 3 XXL", Limits: &machine.Limits{XMax: 838, YMax: 838, ZMin: -95}},
	{ID: "m2", Name: "Prusa i3 MK3S"},
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

// collect runs cmd and flattens batches. Commands that would block on a
// timer are never produced by the fake controller.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func feed(a *App, msgs ...tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, m := range msgs {
		_, cmd := a.Update(m)
		out = append(out, collect(cmd)...)
	}
	return out
}

func newTestApp(t *testing.T, ctrl *fakeController, opts Options) (*App, *workspace.Store, *events.Bus) {
	t.Helper()
	store := workspace.NewMemory()
	bus := events.NewBus()
	a := New(context.Background(), ctrl, store, bus, opts)
	feed(a, tea.WindowSizeMsg{Width: 100, Height: 30})
	feed(a, collect(a.Init())...)
	return a, store, bus
}

func TestInitLoadsMacrosAndMachines(t *testing.T) {
	ctrl := &fakeController{macros: []macro.Macro{{ID: "a", Name: "Home", Content: "$H"}}, machines: testProfiles}
	a, store, bus := newTestApp(t, ctrl, Options{})

	require.Len(t, a.macros, 1)
	require.Equal(t, testProfiles, a.Toolbar().Profiles())
	require.Equal(t, 1, store.Subscribers())
	require.Equal(t, 1, bus.UpdateMachineProfiles.Subscribers())
	require.Contains(t, a.View(), noProfileLabel)
}

func TestEditSubmitSwallowsUpdateErrorAndRefreshes(t *testing.T) {
	ctrl := &fakeController{
		macros:    []macro.Macro{{ID: "a", Name: "Probe", Content: "G38.2 Z-10"}},
		updateErr: &api.StatusError{Method: "PUT", Path: "/api/macros/a", Code: 500},
	}
	a, _, _ := newTestApp(t, ctrl, Options{})

	feed(a, keyType(tea.KeyEnter))
	require.NotNil(t, a.Editor())
	feed(a, keyType(tea.KeyTab), keyType(tea.KeyEnter), keyRunes("G10 L20 Z0"))

	msgs := feed(a, keyType(tea.KeyCtrlS))
	require.Len(t, msgs, 1)
	msgs = feed(a, msgs...)
	require.Len(t, msgs, 1, "update failure still yields a saved message")
	feed(a, msgs...)

	require.Nil(t, a.Editor())
	require.Equal(t, []macro.Input{{Name: "Probe", Content: "G38.2 Z-10\nG10 L20 Z0"}}, ctrl.updates)
	require.NotContains(t, a.Status(), "error")
}

func TestSubmitBlockedByValidation(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{}, Options{})
	feed(a, keyRunes("n"))
	ed := a.Editor()
	require.NotNil(t, ed)
	require.Empty(t, ed.Errors(), "untouched fields show nothing")

	_, cmd := a.Update(keyType(tea.KeyCtrlS))
	require.Nil(t, cmd)
	errs := ed.Errors()
	require.ErrorIs(t, errs[fieldName], macro.ErrRequired)
	require.ErrorIs(t, errs[fieldContent], macro.ErrRequired)
	require.Contains(t, ed.View(), macro.ErrRequired.Error())
}

func TestBlurTouchesField(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{}, Options{})
	feed(a, keyRunes("n"), keyType(tea.KeyTab))
	errs := a.Editor().Errors()
	require.Contains(t, errs, fieldName)
	require.NotContains(t, errs, fieldContent)
}

func TestVariablesInsertAtCaret(t *testing.T) {
	ctrl := &fakeController{macros: []macro.Macro{{ID: "a", Name: "Tool", Content: "M6 T"}}}
	a, _, _ := newTestApp(t, ctrl, Options{})
	feed(a, keyType(tea.KeyEnter))
	ed := a.Editor()

	feed(a, keyType(tea.KeyCtrlV))
	require.True(t, ed.Variables().IsOpen())
	feed(a, keyRunes("tool"))
	feed(a, keyType(tea.KeyEnter))

	require.False(t, ed.Variables().IsOpen())
	require.Equal(t, "M6 T[tool]", ed.Content().Buffer)
	require.Equal(t, len([]rune("M6 T[tool]")), ed.Content().Caret())
}

func TestVariablesEscapeClosesWithoutInsert(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{macros: []macro.Macro{{ID: "a", Name: "x", Content: "G0"}}}, Options{})
	feed(a, keyType(tea.KeyEnter), keyType(tea.KeyCtrlV), keyType(tea.KeyEsc))
	ed := a.Editor()
	require.NotNil(t, ed, "escape closes the menu, not the editor")
	require.False(t, ed.Variables().IsOpen())
	require.Equal(t, "G0", ed.Content().Buffer)
}

func TestDeleteFromEditorClosesBothThenDeletes(t *testing.T) {
	ctrl := &fakeController{macros: []macro.Macro{{ID: "a", Name: "Park", Content: "G28"}}}
	a, _, _ := newTestApp(t, ctrl, Options{})
	feed(a, keyType(tea.KeyEnter))

	msgs := feed(a, keyType(tea.KeyCtrlD))
	feed(a, msgs...)
	require.Equal(t, modalConfirmDelete, a.modal)
	require.Contains(t, a.View(), "Park")

	msgs = feed(a, keyRunes("y"))
	require.Nil(t, a.Editor())
	require.Equal(t, modalNone, a.modal)
	require.Equal(t, []string{"a"}, ctrl.deleted)

	feed(a, msgs...)
	require.Equal(t, `deleted "Park"`, a.Status())
}

func TestDeclineDeleteReturnsToEditor(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{macros: []macro.Macro{{ID: "a", Name: "Park", Content: "G28"}}}, Options{})
	feed(a, keyType(tea.KeyEnter))
	feed(a, feed(a, keyType(tea.KeyCtrlD))...)
	feed(a, keyRunes("n"))
	require.Equal(t, modalEditMacro, a.modal)
	require.NotNil(t, a.Editor())
}

func TestRunMacro(t *testing.T) {
	ctrl := &fakeController{macros: []macro.Macro{{ID: "a", Name: "Home", Content: "$H"}}}
	a, _, _ := newTestApp(t, ctrl, Options{})
	feed(a, feed(a, keyRunes("r"))...)
	require.Equal(t, []string{"a"}, ctrl.ran)
	require.Contains(t, a.Status(), "Home")
}

func TestEnvelopeRepublishedToToolbar(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{}, Options{})
	require.Empty(t, a.Toolbar().Profiles())

	feed(a, eventMsg{env: api.Envelope{Topic: events.TopicUpdateMachineProfiles, Payload: []byte(`[{"id":"m9","name":"Laser"}]`)}})
	require.Equal(t, []machine.Profile{{ID: "m9", Name: "Laser"}}, a.Toolbar().Profiles())
}

func TestProfileDropdownClosesOnOutsideClick(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{machines: testProfiles}, Options{})
	a.View()

	feed(a, keyRunes("p"))
	dd := a.Toolbar().profileDD
	require.True(t, dd.IsOpen())

	_, cmd := a.Update(tea.MouseMsg{X: 90, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Nil(t, cmd)
	require.True(t, dd.IsOpen(), "click closes on release")
	a.Update(tea.MouseMsg{X: 90, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	require.False(t, dd.IsOpen())
}

func TestProfileDropdownMouseDownMode(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{machines: testProfiles}, Options{CloseEvent: dropdown.CloseOnMouseDown})
	a.View()
	feed(a, keyRunes("p"))
	a.Update(tea.MouseMsg{X: 90, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	require.False(t, a.Toolbar().profileDD.IsOpen())
}

func TestQuitUnmountsToolbar(t *testing.T) {
	a, store, bus := newTestApp(t, &fakeController{}, Options{})
	_, cmd := a.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	require.Zero(t, store.Subscribers())
	require.Zero(t, bus.UpdateMachineProfiles.Subscribers())
}

func TestStaleSaveResultKeepsNewerEditorOpen(t *testing.T) {
	ctrl := &fakeController{macros: []macro.Macro{
		{ID: "a", Name: "Home", Content: "$H"},
		{ID: "b", Name: "Park", Content: "G28"},
	}}
	a, _, _ := newTestApp(t, ctrl, Options{})

	feed(a, keyType(tea.KeyEnter))
	require.Equal(t, "a", a.Editor().Macro().ID)
	submit := feed(a, keyType(tea.KeyCtrlS))
	require.Len(t, submit, 1)
	saved := feed(a, submit...)
	require.Len(t, saved, 1)

	feed(a, feed(a, keyType(tea.KeyEsc))...)
	require.Nil(t, a.Editor())
	feed(a, keyRunes("j"), keyType(tea.KeyEnter))
	require.Equal(t, "b", a.Editor().Macro().ID)

	feed(a, saved...)
	require.NotNil(t, a.Editor(), "a late save result leaves the other editor open")
	require.Equal(t, "b", a.Editor().Macro().ID)
	require.Equal(t, modalEditMacro, a.modal)
}

func TestLeavingViewerClosesCameraModeMenu(t *testing.T) {
	a, _, _ := newTestApp(t, &fakeController{}, Options{})
	feed(a, keyRunes("v"), keyRunes("m"))
	require.True(t, a.Toolbar().modeDD.IsOpen())

	feed(a, keyRunes("v"))
	require.False(t, a.Toolbar().Show3D)
	require.False(t, a.Toolbar().MenuOpen())
}
