// Package caret implements caret-aware editing of a text buffer.
//
// All positions are rune offsets into the buffer. Callers may pass any
// integers; they are clamped so that 0 <= start <= end <= len(buffer).
package caret

// Insert replaces buffer[start:end] with text and returns the new buffer and
// the caret position immediately after the inserted text.
func Insert(buffer string, start, end int, text string) (string, int) {
	rs := []rune(buffer)
	start, end = Clamp(len(rs), start, end)
	ins := []rune(text)

	out := make([]rune, 0, len(rs)-(end-start)+len(ins))
	out = append(out, rs[:start]...)
	out = append(out, ins...)
	out = append(out, rs[end:]...)
	return string(out), start + len(ins)
}

// Clamp normalizes a selection range against a buffer of n runes.
// A reversed range collapses to start.
func Clamp(n, start, end int) (int, int) {
	if n < 0 {
		n = 0
	}
	start = clampInt(start, 0, n)
	end = clampInt(end, start, n)
	return start, end
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
