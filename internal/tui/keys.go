package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Key scopes.
const (
	scopeList    = "list"
	scopeViewer  = "viewer"
	scopeEditor  = "editor"
	scopeConfirm = "confirm"
)

// Actions.
const (
	actQuit        = "quit"
	actUp          = "up"
	actDown        = "down"
	actOpen        = "open"
	actNew         = "new"
	actRun         = "run"
	actDelete      = "delete"
	actRefresh     = "refresh"
	actToggleView  = "toggle_view"
	actProfiles    = "profiles"
	actCameraMode  = "camera_mode"
	actTopView     = "top_view"
	actFrontView   = "front_view"
	actRightView   = "right_view"
	actLeftView    = "left_view"
	act3DView      = "3d_view"
	actZoomFit     = "zoom_fit"
	actZoomIn      = "zoom_in"
	actZoomOut     = "zoom_out"
	actSave        = "save"
	actCancel      = "cancel"
	actNextField   = "next_field"
	actVariables   = "variables"
	actSelectAll   = "select_all"
	actConfirm     = "confirm"
	actConfirmDeny = "deny"
)

// KeyBinding ties a bubbles binding to an action in some scopes. No scopes
// means every scope.
type KeyBinding struct {
	Binding key.Binding
	Action  string
	Scopes  []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) Register(binding KeyBinding) {
	r.bindings = append(r.bindings, binding)
}

// BindingsForScope returns the enabled bindings of scope, for the help line.
func (r *KeyRegistry) BindingsForScope(scope string) []key.Binding {
	out := make([]key.Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) && b.Binding.Enabled() {
			out = append(out, b.Binding)
		}
	}
	return out
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		if key.Matches(msg, b.Binding) {
			return true
		}
	}
	return false
}

// Action returns the first action bound to msg in scope.
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) && key.Matches(msg, b.Binding) {
			return b.Action
		}
	}
	return ""
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

func bind(action string, keys []string, helpKey, desc string, scopes ...string) KeyBinding {
	return KeyBinding{
		Binding: key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc)),
		Action:  action,
		Scopes:  scopes,
	}
}

func hidden(action string, keys []string, scopes ...string) KeyBinding {
	return KeyBinding{Binding: key.NewBinding(key.WithKeys(keys...)), Action: action, Scopes: scopes}
}

// DefaultKeys is the stock key map.
func DefaultKeys() *KeyRegistry {
	return NewKeyRegistry([]KeyBinding{
		hidden(actUp, []string{"up", "k"}, scopeList),
		hidden(actDown, []string{"down", "j"}, scopeList),
		bind(actOpen, []string{"enter", "e"}, "enter", "edit", scopeList),
		bind(actNew, []string{"n"}, "n", "new", scopeList),
		bind(actRun, []string{"r"}, "r", "run", scopeList),
		bind(actDelete, []string{"d"}, "d", "delete", scopeList),
		bind(actRefresh, []string{"ctrl+r"}, "ctrl+r", "refresh", scopeList, scopeViewer),
		bind(actToggleView, []string{"v"}, "v", "3d view", scopeList, scopeViewer),
		bind(actProfiles, []string{"p"}, "p", "machine", scopeList, scopeViewer),

		bind(actTopView, []string{"1"}, "1-5", "camera", scopeViewer),
		hidden(actFrontView, []string{"2"}, scopeViewer),
		hidden(actRightView, []string{"3"}, scopeViewer),
		hidden(actLeftView, []string{"4"}, scopeViewer),
		hidden(act3DView, []string{"5"}, scopeViewer),
		bind(actZoomFit, []string{"0"}, "0/+/-", "zoom", scopeViewer),
		hidden(actZoomIn, []string{"+", "="}, scopeViewer),
		hidden(actZoomOut, []string{"-"}, scopeViewer),
		bind(actCameraMode, []string{"m"}, "m", "pan/rotate", scopeViewer),

		bind(actSave, []string{"ctrl+s"}, "ctrl+s", "save", scopeEditor),
		bind(actNextField, []string{"tab", "shift+tab"}, "tab", "field", scopeEditor),
		bind(actVariables, []string{"ctrl+v", "f2"}, "ctrl+v", "variables", scopeEditor),
		hidden(actSelectAll, []string{"ctrl+a"}, scopeEditor),
		bind(actDelete, []string{"ctrl+d"}, "ctrl+d", "delete", scopeEditor),
		bind(actCancel, []string{"esc"}, "esc", "cancel", scopeEditor),

		bind(actConfirm, []string{"y", "enter"}, "y", "delete", scopeConfirm),
		bind(actConfirmDeny, []string{"n", "esc"}, "n", "keep", scopeConfirm),

		bind(actQuit, []string{"q", "ctrl+c"}, "q", "quit", scopeList, scopeViewer),
		hidden(actQuit, []string{"ctrl+c"}, scopeEditor, scopeConfirm),
	})
}
