// Package machine describes the machine profiles a controller offers.
package machine

// Limits is the travel envelope of a machine.
type Limits struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
	ZMin float64 `json:"zmin"`
	ZMax float64 `json:"zmax"`
}

// Profile is a selectable machine configuration. IDs are unique within a
// fetched list.
type Profile struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Limits *Limits `json:"limits,omitempty"`
}

// Find returns the profile with id.
func Find(profiles []Profile, id string) (Profile, bool) {
	if id == "" {
		return Profile{}, false
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Equal reports whether two profiles carry the same data.
func Equal(a, b Profile) bool {
	if a.ID != b.ID || a.Name != b.Name {
		return false
	}
	if a.Limits == nil || b.Limits == nil {
		return a.Limits == nil && b.Limits == nil
	}
	return *a.Limits == *b.Limits
}

// Ensure returns profiles, or an empty non-nil slice for nil.
func Ensure(profiles []Profile) []Profile {
	if profiles == nil {
		return []Profile{}
	}
	return profiles
}
