package dropdown

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	menuStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("241"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// ItemKind distinguishes selectable items from decoration.
type ItemKind int

const (
	KindItem ItemKind = iota
	KindHeader
	KindDivider
)

// Item is one menu row.
type Item struct {
	Kind     ItemKind
	EventKey string
	Label    string
	Title    string // full text when Label is truncated
	Active   bool
	Disabled bool
	Indent   int
}

// MenuItem returns a selectable item.
func MenuItem(eventKey, label string) Item {
	return Item{Kind: KindItem, EventKey: eventKey, Label: label}
}

// Header returns a non-selectable heading row.
func Header(label string) Item { return Item{Kind: KindHeader, Label: label} }

// Divider returns a separator row.
func Divider() Item { return Item{Kind: KindDivider} }

func (it Item) selectable() bool { return it.Kind == KindItem && !it.Disabled }

// MenuProps is the state a container injects into its menu.
type MenuProps struct {
	Open      bool
	PullRight bool
	OnSelect  func(eventKey string)
}

// Menu is a list of items with keyboard focus.
type Menu struct {
	Items []Item

	// MaxHeight limits visible rows; zero shows everything.
	MaxHeight int
	// MaxWidth truncates labels with an ellipsis; zero disables truncation.
	MaxWidth int

	props  MenuProps
	focus  int
	offset int
}

// NewMenu builds a menu with nothing focused.
func NewMenu(items ...Item) *Menu {
	return &Menu{Items: items, focus: -1}
}

// SetItems replaces the items and resets focus.
func (m *Menu) SetItems(items []Item) {
	m.Items = items
	m.focus = -1
	m.offset = 0
}

// SetProps applies container-injected state.
func (m *Menu) SetProps(p MenuProps) {
	if !p.Open {
		m.focus = -1
		m.offset = 0
	}
	m.props = p
}

// Props returns the injected state.
func (m *Menu) Props() MenuProps { return m.props }

// Focused returns the focused item.
func (m *Menu) Focused() (Item, bool) {
	if m.focus < 0 || m.focus >= len(m.Items) {
		return Item{}, false
	}
	return m.Items[m.focus], true
}

// FocusIndex returns the focused row or -1.
func (m *Menu) FocusIndex() int { return m.focus }

// FocusNext moves focus to the next selectable item, wrapping around.
func (m *Menu) FocusNext() { m.step(1) }

// FocusPrevious moves focus to the previous selectable item, wrapping around.
func (m *Menu) FocusPrevious() { m.step(-1) }

func (m *Menu) step(dir int) {
	n := len(m.Items)
	if n == 0 {
		return
	}
	i := m.focus
	if i < 0 && dir < 0 {
		i = n
	}
	for range n {
		i = (i + dir + n) % n
		if m.Items[i].selectable() {
			m.focus = i
			m.scrollTo(i)
			return
		}
	}
}

func (m *Menu) scrollTo(i int) {
	if m.MaxHeight <= 0 {
		return
	}
	if i < m.offset {
		m.offset = i
	}
	if i >= m.offset+m.MaxHeight {
		m.offset = i - m.MaxHeight + 1
	}
}

// SelectFocused reports the focused item to OnSelect.
func (m *Menu) SelectFocused() bool {
	it, ok := m.Focused()
	if !ok {
		return false
	}
	return m.selectItem(it)
}

// SelectRow selects the item shown on visible row (zero-based, inside the
// border).
func (m *Menu) SelectRow(row int) bool {
	i := m.offset + row
	if row < 0 || i >= len(m.Items) || (m.MaxHeight > 0 && row >= m.MaxHeight) {
		return false
	}
	if !m.Items[i].selectable() {
		return false
	}
	m.focus = i
	return m.selectItem(m.Items[i])
}

func (m *Menu) selectItem(it Item) bool {
	if !it.selectable() {
		return false
	}
	if m.props.OnSelect != nil {
		m.props.OnSelect(it.EventKey)
	}
	return true
}

// View renders the menu box, or "" when closed.
func (m *Menu) View() string {
	if !m.props.Open {
		return ""
	}
	items := m.Items
	if m.MaxHeight > 0 && len(items) > m.MaxHeight {
		end := min(m.offset+m.MaxHeight, len(items))
		items = items[m.offset:end]
	}
	width := 0
	for _, it := range items {
		width = max(width, ansi.StringWidth(m.label(it))+2)
	}
	rows := make([]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, m.renderRow(it, m.offset+i == m.focus, width))
	}
	if len(rows) == 0 {
		rows = append(rows, disabledStyle.Render("(empty)"))
	}
	box := menuStyle.Render(strings.Join(rows, "\n"))
	if m.props.PullRight {
		return lipgloss.NewStyle().Align(lipgloss.Right).Render(box)
	}
	return box
}

// Size returns the rendered width and height of the open menu.
func (m *Menu) Size() (int, int) {
	v := m.View()
	if v == "" {
		return 0, 0
	}
	return lipgloss.Width(v), lipgloss.Height(v)
}

func (m *Menu) label(it Item) string {
	label := strings.Repeat("  ", it.Indent) + it.Label
	if m.MaxWidth > 0 {
		label = ansi.Truncate(label, m.MaxWidth, "…")
	}
	return label
}

func (m *Menu) renderRow(it Item, focused bool, width int) string {
	switch it.Kind {
	case KindHeader:
		return headerStyle.Render(m.label(it))
	case KindDivider:
		return disabledStyle.Render(strings.Repeat("─", max(width, 1)))
	}
	mark := "  "
	if it.Active {
		mark = activeStyle.Render("✓ ")
	}
	row := mark + m.label(it)
	row += strings.Repeat(" ", max(0, width-ansi.StringWidth(row)))
	switch {
	case it.Disabled:
		return disabledStyle.Render(row)
	case focused:
		return focusStyle.Render(row)
	}
	return row
}
