package macro

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/cncdeck/internal/dropdown"
)

// Node roles.
const (
	RoleGroup    = "group"
	RoleMenuItem = "menuitem"
)

// VariableNode describes an insertable snippet or a group of them.
type VariableNode struct {
	Role     string         `json:"role"`
	Title    string         `json:"title,omitempty"`
	Value    string         `json:"value,omitempty"`
	Children []VariableNode `json:"children,omitempty"`
}

func group(title string, children ...VariableNode) VariableNode {
	return VariableNode{Role: RoleGroup, Title: title, Children: children}
}

func items(values ...string) []VariableNode {
	out := make([]VariableNode, 0, len(values))
	for _, v := range values {
		out = append(out, VariableNode{Role: RoleMenuItem, Value: v})
	}
	return out
}

// Variables is the static tree shown in the editor's variables menu.
var Variables = []VariableNode{
	group("Wait", items("%wait")...),
	group("Bounding Box", items("[xmin]", "[xmax]", "[ymin]", "[ymax]", "[zmin]", "[zmax]")...),
	group("Machine Position", items("[mposx]", "[mposy]", "[mposz]", "[mposa]", "[mposb]", "[mposc]")...),
	group("Work Position", items("[posx]", "[posy]", "[posz]", "[posa]", "[posb]", "[posc]")...),
	group("Modal Group", items(
		"[modal.motion]",
		"[modal.wcs]",
		"[modal.plane]",
		"[modal.units]",
		"[modal.distance]",
		"[modal.feedrate]",
		"[modal.program]",
		"[modal.spindle]",
		"[modal.coolant]",
	)...),
	group("Tool", items("[tool]")...),
	group("Expressions",
		group("Save Position", items(
			"%X0=posx, Y0=posy, Z0=posz",
			"G0 X[X0] Y[Y0]",
			"G0 Z[Z0]",
		)...),
		group("Save Modal State", items(
			"%WCS=modal.wcs",
			"%PLANE=modal.plane",
			"%UNITS=modal.units",
			"%DISTANCE=modal.distance",
			"%FEEDRATE=modal.feedrate",
			"%SPINDLE=modal.spindle",
			"%COOLANT=modal.coolant",
		)...),
		group("Restore Modal State", items("[WCS] [PLANE] [UNITS] [DISTANCE] [FEEDRATE] [SPINDLE] [COOLANT]")...),
	),
}

// MenuItems flattens the tree into dropdown rows. Groups become headers and
// leaves become items keyed by their value. Unknown roles are skipped.
func MenuItems(nodes []VariableNode) []dropdown.Item {
	var out []dropdown.Item
	appendMenuItems(&out, nodes, 0)
	return out
}

func appendMenuItems(out *[]dropdown.Item, nodes []VariableNode, depth int) {
	for _, n := range nodes {
		switch n.Role {
		case RoleGroup:
			h := dropdown.Header(n.Title)
			h.Indent = depth
			*out = append(*out, h)
			appendMenuItems(out, n.Children, depth+1)
		case RoleMenuItem:
			it := dropdown.MenuItem(n.Value, n.Value)
			it.Indent = depth
			*out = append(*out, it)
		}
	}
}

// Leaves returns every menuitem value in tree order.
func Leaves(nodes []VariableNode) []string {
	var out []string
	for _, n := range nodes {
		switch n.Role {
		case RoleGroup:
			out = append(out, Leaves(n.Children)...)
		case RoleMenuItem:
			out = append(out, n.Value)
		}
	}
	return out
}

// Filter ranks leaf values against query. Substring matches come first in
// tree order, then near misses by edit distance. An empty query returns
// every leaf.
func Filter(nodes []VariableNode, query string) []string {
	leaves := Leaves(nodes)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return leaves
	}

	type scored struct {
		value string
		dist  int
	}
	var exact []string
	var fuzzy []scored
	limit := max(1, len([]rune(q))/3)
	for _, v := range leaves {
		lv := strings.ToLower(v)
		if strings.Contains(lv, q) {
			exact = append(exact, v)
			continue
		}
		bare := strings.Trim(lv, "[]%")
		if d := levenshtein.ComputeDistance(q, bare); d <= limit {
			fuzzy = append(fuzzy, scored{value: v, dist: d})
		}
	}
	sort.SliceStable(fuzzy, func(i, j int) bool { return fuzzy[i].dist < fuzzy[j].dist })
	for _, f := range fuzzy {
		exact = append(exact, f.value)
	}
	return exact
}

// FilterItems returns menu rows for a query. With an empty query the grouped
// tree is shown; otherwise a flat ranked list.
func FilterItems(nodes []VariableNode, query string) []dropdown.Item {
	if strings.TrimSpace(query) == "" {
		return MenuItems(nodes)
	}
	values := Filter(nodes, query)
	out := make([]dropdown.Item, 0, len(values))
	for _, v := range values {
		out = append(out, dropdown.MenuItem(v, v))
	}
	return out
}
