// Package macro holds macro records, the insertable macro variables and the
// validation used by the macro editor.
package macro

import "strings"

// Macro is a named snippet of machine commands stored by the controller.
type Macro struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Input is the editable part of a macro.
type Input struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Input returns the editable fields of m.
func (m Macro) Input() Input { return Input{Name: m.Name, Content: m.Content} }

// Lines returns the non-empty command lines of the macro.
func (m Macro) Lines() []string {
	var out []string
	for _, l := range strings.Split(m.Content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
