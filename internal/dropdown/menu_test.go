package dropdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestMenuFocusSkipsHeadersAndDisabled(t *testing.T) {
	dis := MenuItem("b", "B")
	dis.Disabled = true
	m := NewMenu(Header("H"), MenuItem("a", "A"), dis, Divider(), MenuItem("c", "C"))

	m.FocusNext()
	require.Equal(t, 1, m.FocusIndex())
	m.FocusNext()
	require.Equal(t, 4, m.FocusIndex())
	m.FocusNext()
	require.Equal(t, 1, m.FocusIndex(), "focus wraps")
	m.FocusPrevious()
	require.Equal(t, 4, m.FocusIndex())
}

func TestMenuFocusPreviousFromNothing(t *testing.T) {
	m := NewMenu(MenuItem("a", "A"), MenuItem("b", "B"))
	m.FocusPrevious()
	it, ok := m.Focused()
	require.True(t, ok)
	require.Equal(t, "b", it.EventKey)
}

func TestMenuEmptyFocus(t *testing.T) {
	m := NewMenu(Header("only"))
	m.FocusNext()
	_, ok := m.Focused()
	require.False(t, ok)
	require.False(t, m.SelectFocused())
}

func TestMenuScrollsWithMaxHeight(t *testing.T) {
	items := make([]Item, 0, 10)
	for _, k := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"} {
		items = append(items, MenuItem(k, "item "+k))
	}
	m := NewMenu(items...)
	m.MaxHeight = 3
	m.SetProps(MenuProps{Open: true})
	for range 5 {
		m.FocusNext()
	}
	view := ansi.Strip(m.View())
	require.Contains(t, view, "item 4")
	require.NotContains(t, view, "item 0")
	_, h := m.Size()
	require.Equal(t, 5, h)

	var got string
	m.SetProps(MenuProps{Open: true, OnSelect: func(k string) { got = k }})
	require.True(t, m.SelectRow(0))
	require.Equal(t, "2", got)
	require.False(t, m.SelectRow(3))
}

func TestMenuTruncatesLabelsAndMarksActive(t *testing.T) {
	it := MenuItem("id-1", "A very long machine profile name")
	it.Active = true
	m := NewMenu(Header("Machine Profiles"), it)
	m.MaxWidth = 10
	m.SetProps(MenuProps{Open: true})
	view := ansi.Strip(m.View())
	require.Contains(t, view, "✓")
	require.Contains(t, view, "…")
	require.False(t, strings.Contains(view, "profile name"))
}

func TestMenuClosingResetsFocus(t *testing.T) {
	m := NewMenu(MenuItem("a", "A"))
	m.SetProps(MenuProps{Open: true})
	m.FocusNext()
	m.SetProps(MenuProps{Open: false})
	require.Equal(t, -1, m.FocusIndex())
}
