package caret

import "strings"

// State is an editable buffer with a selection range. When Start == End the
// selection is a plain caret.
type State struct {
	Buffer string
	Start  int
	End    int

	// headAtStart records which edge moves when the selection is extended.
	headAtStart bool
}

// Line is one line of a buffer and the rune offset where it begins.
type Line struct {
	Text  string
	Start int
}

// NewState returns a state with the caret at the end of buffer.
func NewState(buffer string) State {
	n := len([]rune(buffer))
	return State{Buffer: buffer, Start: n, End: n}
}

// Len returns the buffer length in runes.
func (s State) Len() int { return len([]rune(s.Buffer)) }

// Normalize clamps the selection into the buffer.
func (s *State) Normalize() {
	s.Start, s.End = Clamp(s.Len(), s.Start, s.End)
}

// Caret returns the moving edge of the selection.
func (s State) Caret() int {
	if s.headAtStart {
		return s.Start
	}
	return s.End
}

// HasSelection reports whether a non-empty range is selected.
func (s State) HasSelection() bool { return s.End > s.Start }

// Selected returns the selected text.
func (s State) Selected() string {
	rs := []rune(s.Buffer)
	start, end := Clamp(len(rs), s.Start, s.End)
	return string(rs[start:end])
}

// InsertText replaces the selection with text.
func (s *State) InsertText(text string) {
	buf, pos := Insert(s.Buffer, s.Start, s.End, text)
	s.Buffer = buf
	s.collapse(pos)
}

// Newline inserts a line break at the caret.
func (s *State) Newline() { s.InsertText("\n") }

// SetBuffer replaces the whole buffer and moves the caret to its end.
func (s *State) SetBuffer(buffer string) {
	*s = NewState(buffer)
}

// Backspace removes the selection, or the rune before the caret.
func (s *State) Backspace() {
	s.Normalize()
	if s.HasSelection() {
		s.InsertText("")
		return
	}
	if s.Start == 0 {
		return
	}
	buf, pos := Insert(s.Buffer, s.Start-1, s.Start, "")
	s.Buffer = buf
	s.collapse(pos)
}

// Delete removes the selection, or the rune after the caret.
func (s *State) Delete() {
	s.Normalize()
	if s.HasSelection() {
		s.InsertText("")
		return
	}
	if s.Start >= s.Len() {
		return
	}
	buf, pos := Insert(s.Buffer, s.Start, s.Start+1, "")
	s.Buffer = buf
	s.collapse(pos)
}

// Left moves the caret one rune left. With extend the selection grows or
// shrinks instead of collapsing.
func (s *State) Left(extend bool) {
	s.Normalize()
	if !extend && s.HasSelection() {
		s.collapse(s.Start)
		return
	}
	s.moveTo(s.Caret()-1, extend)
}

// Right moves the caret one rune right.
func (s *State) Right(extend bool) {
	s.Normalize()
	if !extend && s.HasSelection() {
		s.collapse(s.End)
		return
	}
	s.moveTo(s.Caret()+1, extend)
}

// Home moves the caret to the start of its line.
func (s *State) Home(extend bool) {
	line, _ := s.LineCol(s.Caret())
	s.moveTo(s.Lines()[line].Start, extend)
}

// EndOfLine moves the caret to the end of its line.
func (s *State) EndOfLine(extend bool) {
	lines := s.Lines()
	line, _ := s.LineCol(s.Caret())
	l := lines[line]
	s.moveTo(l.Start+len([]rune(l.Text)), extend)
}

// Up moves the caret to the same column on the previous line, or to the
// buffer start from the first line.
func (s *State) Up(extend bool) {
	line, col := s.LineCol(s.Caret())
	if line == 0 {
		s.moveTo(0, extend)
		return
	}
	s.moveTo(s.offsetAt(line-1, col), extend)
}

// Down moves the caret to the same column on the next line, or to the buffer
// end from the last line.
func (s *State) Down(extend bool) {
	lines := s.Lines()
	line, col := s.LineCol(s.Caret())
	if line >= len(lines)-1 {
		s.moveTo(s.Len(), extend)
		return
	}
	s.moveTo(s.offsetAt(line+1, col), extend)
}

// SelectAll selects the whole buffer.
func (s *State) SelectAll() {
	s.Start, s.End = 0, s.Len()
	s.headAtStart = false
}

// Lines splits the buffer on '\n'. There is always at least one line.
func (s State) Lines() []Line {
	parts := strings.Split(s.Buffer, "\n")
	out := make([]Line, 0, len(parts))
	off := 0
	for _, p := range parts {
		out = append(out, Line{Text: p, Start: off})
		off += len([]rune(p)) + 1
	}
	return out
}

// LineCol converts a rune offset into a zero-based line and column.
func (s State) LineCol(pos int) (int, int) {
	pos, _ = Clamp(s.Len(), pos, pos)
	lines := s.Lines()
	for i := len(lines) - 1; i >= 0; i-- {
		if pos >= lines[i].Start {
			return i, pos - lines[i].Start
		}
	}
	return 0, pos
}

func (s State) offsetAt(line, col int) int {
	lines := s.Lines()
	l := lines[line]
	if n := len([]rune(l.Text)); col > n {
		col = n
	}
	return l.Start + col
}

func (s *State) collapse(pos int) {
	s.Start, s.End = Clamp(s.Len(), pos, pos)
	s.headAtStart = false
}

func (s *State) moveTo(pos int, extend bool) {
	pos, _ = Clamp(s.Len(), pos, pos)
	if !extend {
		s.collapse(pos)
		return
	}
	anchor := s.Start
	if s.headAtStart {
		anchor = s.End
	}
	if pos < anchor {
		s.Start, s.End = pos, anchor
		s.headAtStart = true
		return
	}
	s.Start, s.End = anchor, pos
	s.headAtStart = false
}
