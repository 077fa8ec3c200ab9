package tui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/cncdeck/internal/caret"
	"github.com/jask/cncdeck/internal/dropdown"
	"github.com/jask/cncdeck/internal/macro"
)

const (
	fieldName    = "name"
	fieldContent = "content"

	contentRows = 8
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	selectionStyle = lipgloss.NewStyle().Reverse(true)
	contentStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	contentFocus   = contentStyle.BorderForeground(lipgloss.Color("62"))
)

// editor results, handled by the App
type (
	editorCloseMsg  struct{}
	editorSubmitMsg struct {
		Session int
		ID      string
		Input   macro.Input
	}
	editorDeleteMsg struct{ Macro macro.Macro }
)

// Editor is the macro edit modal: a name field, a multi-line command
// buffer and a variables menu that inserts at the caret.
type Editor struct {
	session int
	macro   macro.Macro
	name    textinput.Model
	content caret.State
	focus   string
	touched map[string]bool
	errs    macro.FieldErrors

	vars    *dropdown.Dropdown
	varMenu *dropdown.Menu
	query   string

	keys      *KeyRegistry
	help      help.Model
	toggleRow int
	width     int
}

// NewEditor opens m for editing. An empty ID means a new macro.
func NewEditor(m macro.Macro, keys *KeyRegistry, closeEvent dropdown.CloseEvent) *Editor {
	name := textinput.New()
	name.Placeholder = "Macro name"
	name.CharLimit = 128
	name.SetValue(m.Name)
	name.Focus()

	e := &Editor{
		macro:   m,
		name:    name,
		content: caret.NewState(m.Content),
		focus:   fieldName,
		touched: map[string]bool{},
		errs:    macro.FieldErrors{},
		keys:    keys,
		help:    help.New(),
		width:   56,
	}
	e.varMenu = dropdown.NewMenu(macro.MenuItems(macro.Variables)...)
	e.varMenu.MaxHeight = 10
	e.varMenu.MaxWidth = 40
	e.vars = dropdown.New(e.varsLabel, e.varMenu, dropdown.Options{
		CloseEvent: closeEvent,
		OnSelect:   e.insertVariable,
		OnClose:    func(dropdown.Reason) { e.resetQuery() },
		Warnf:      log.Printf,
	})
	return e
}

// Macro returns the macro being edited.
func (e *Editor) Macro() macro.Macro { return e.macro }

// Input returns the current form values.
func (e *Editor) Input() macro.Input {
	return macro.Input{Name: e.name.Value(), Content: e.content.Buffer}
}

// Content returns the command buffer.
func (e *Editor) Content() caret.State { return e.content }

// Errors returns the errors shown under touched fields.
func (e *Editor) Errors() macro.FieldErrors {
	out := macro.FieldErrors{}
	for field, err := range e.errs {
		if e.touched[field] {
			out[field] = err
		}
	}
	return out
}

// Variables returns the variables dropdown.
func (e *Editor) Variables() *dropdown.Dropdown { return e.vars }

// Close releases the variables dropdown.
func (e *Editor) Close() { e.vars.Unmount() }

func (e *Editor) validate() { e.errs = macro.Validate(e.Input()) }

func (e *Editor) blur(field string) {
	e.touched[field] = true
	e.validate()
}

func (e *Editor) setFocus(field string) {
	if e.focus == field {
		return
	}
	e.blur(e.focus)
	e.focus = field
	if field == fieldName {
		e.name.Focus()
	} else {
		e.name.Blur()
	}
}

func (e *Editor) submit() tea.Cmd {
	e.touched[fieldName] = true
	e.touched[fieldContent] = true
	e.validate()
	if len(e.errs) > 0 {
		return nil
	}
	msg := editorSubmitMsg{Session: e.session, ID: e.macro.ID, Input: e.Input()}
	return func() tea.Msg { return msg }
}

func (e *Editor) insertVariable(value string) {
	e.content.InsertText(value)
	if e.touched[fieldContent] {
		e.validate()
	}
}

func (e *Editor) resetQuery() {
	e.query = ""
	e.varMenu.SetItems(macro.MenuItems(macro.Variables))
}

func (e *Editor) varsLabel() string {
	if e.query != "" {
		return "Variables: " + e.query
	}
	return "Variables"
}

// Update handles a message while the editor is on top.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.MouseMsg:
		e.vars.Update(m)
		return nil
	case tea.KeyMsg:
		if e.vars.IsOpen() {
			e.handleVariablesKey(m)
			return nil
		}
		switch e.keys.Action(m, scopeEditor) {
		case actSave:
			return e.submit()
		case actCancel:
			return func() tea.Msg { return editorCloseMsg{} }
		case actDelete:
			if e.macro.ID == "" {
				return nil
			}
			target := e.macro
			return func() tea.Msg { return editorDeleteMsg{Macro: target} }
		case actNextField:
			if e.focus == fieldName {
				e.setFocus(fieldContent)
			} else {
				e.setFocus(fieldName)
			}
			return nil
		case actVariables:
			e.setFocus(fieldContent)
			e.vars.Toggle()
			return nil
		case actSelectAll:
			if e.focus == fieldContent {
				e.content.SelectAll()
			}
			return nil
		case actQuit:
			return tea.Quit
		}
		if e.focus == fieldName {
			var cmd tea.Cmd
			e.name, cmd = e.name.Update(m)
			if e.touched[fieldName] {
				e.validate()
			}
			return cmd
		}
		e.handleContentKey(m)
		if e.touched[fieldContent] {
			e.validate()
		}
	}
	return nil
}

func (e *Editor) handleVariablesKey(m tea.KeyMsg) {
	switch {
	case m.Type == tea.KeyRunes && !m.Alt:
		e.query += string(m.Runes)
		e.varMenu.SetItems(macro.FilterItems(macro.Variables, e.query))
		e.varMenu.FocusNext()
	case m.Type == tea.KeyBackspace && e.query != "":
		r := []rune(e.query)
		e.query = string(r[:len(r)-1])
		e.varMenu.SetItems(macro.FilterItems(macro.Variables, e.query))
		if e.query != "" {
			e.varMenu.FocusNext()
		}
	default:
		e.vars.Update(m)
	}
}

func (e *Editor) handleContentKey(m tea.KeyMsg) {
	c := &e.content
	switch m.Type {
	case tea.KeyRunes:
		c.InsertText(string(m.Runes))
	case tea.KeySpace:
		c.InsertText(" ")
	case tea.KeyEnter:
		c.Newline()
	case tea.KeyBackspace:
		c.Backspace()
	case tea.KeyDelete:
		c.Delete()
	case tea.KeyLeft:
		c.Left(false)
	case tea.KeyRight:
		c.Right(false)
	case tea.KeyUp:
		c.Up(false)
	case tea.KeyDown:
		c.Down(false)
	case tea.KeyShiftLeft:
		c.Left(true)
	case tea.KeyShiftRight:
		c.Right(true)
	case tea.KeyShiftUp:
		c.Up(true)
	case tea.KeyShiftDown:
		c.Down(true)
	case tea.KeyHome:
		c.Home(false)
	case tea.KeyEnd, tea.KeyCtrlE:
		c.EndOfLine(false)
	case tea.KeyShiftHome:
		c.Home(true)
	case tea.KeyShiftEnd:
		c.EndOfLine(true)
	}
}

// Place tells the editor where its content starts on screen so the
// variables toggle can be hit-tested.
func (e *Editor) Place(x, y int) {
	e.vars.SetBounds(dropdown.Rect{X: x, Y: y + e.toggleRow, W: ansi.StringWidth(e.vars.View()), H: 1})
}

// View renders the modal content.
func (e *Editor) View() string {
	title := "Edit Macro"
	if e.macro.ID == "" {
		title = "New Macro"
	}
	errs := e.Errors()
	lines := []string{titleStyle.Render(title), "", labelStyle.Render("Name"), e.name.View(), fieldError(errs[fieldName])}
	lines = append(lines, labelStyle.Render("Macro commands"))
	e.toggleRow = len(lines)
	lines = append(lines, e.vars.View())

	box := contentStyle
	if e.focus == fieldContent {
		box = contentFocus
	}
	lines = append(lines, box.Width(e.width).Render(e.renderContent()))
	lines = append(lines, fieldError(errs[fieldContent]), "")
	lines = append(lines, e.help.ShortHelpView(e.keys.BindingsForScope(scopeEditor)))
	return strings.Join(lines, "\n")
}

func fieldError(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render(err.Error())
}

func (e *Editor) renderContent() string {
	c := e.content
	focused := e.focus == fieldContent
	caretPos := c.Caret()
	lines := c.Lines()

	// keep the caret line visible
	caretLine, _ := c.LineCol(caretPos)
	first := 0
	if caretLine >= contentRows {
		first = caretLine - contentRows + 1
	}

	out := make([]string, 0, contentRows)
	for i := first; i < len(lines) && len(out) < contentRows; i++ {
		l := lines[i]
		var b strings.Builder
		runes := []rune(l.Text)
		for j, r := range runes {
			pos := l.Start + j
			switch {
			case c.HasSelection() && pos >= c.Start && pos < c.End:
				b.WriteString(selectionStyle.Render(string(r)))
			case focused && !c.HasSelection() && pos == caretPos:
				b.WriteString(selectionStyle.Render(string(r)))
			default:
				b.WriteRune(r)
			}
		}
		if focused && !c.HasSelection() && caretPos == l.Start+len(runes) {
			b.WriteString(selectionStyle.Render(" "))
		}
		out = append(out, b.String())
	}
	for len(out) < contentRows {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

// MenuOverlay draws the open variables menu over base.
func (e *Editor) MenuOverlay(base string, width, height int) string {
	if !e.vars.IsOpen() {
		return base
	}
	mb := e.vars.MenuBounds()
	return overlayAt(base, e.vars.MenuView(), mb.X, mb.Y, width, height)
}

// ConfirmDelete asks before a macro is deleted. When it was opened from
// the editor, confirming closes both.
type ConfirmDelete struct {
	Macro      macro.Macro
	FromEditor bool
	keys       *KeyRegistry
	help       help.Model
}

func NewConfirmDelete(m macro.Macro, fromEditor bool, keys *KeyRegistry) *ConfirmDelete {
	return &ConfirmDelete{Macro: m, FromEditor: fromEditor, keys: keys, help: help.New()}
}

func (c *ConfirmDelete) View() string {
	return strings.Join([]string{
		titleStyle.Render("Delete Macro"),
		"",
		"Are you sure you want to delete this macro?",
		lipgloss.NewStyle().Bold(true).Render(c.Macro.Name),
		"",
		c.help.ShortHelpView(c.keys.BindingsForScope(scopeConfirm)),
	}, "\n")
}
