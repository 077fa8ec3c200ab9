package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Setting is one workspace setting. Value holds JSON.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Macro represents a macros row.
type Macro struct {
	ID        string
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Limits is the travel envelope of a machine in work units.
type Limits struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
	ZMin float64 `json:"zmin"`
	ZMax float64 `json:"zmax"`
}

// Machine represents a machines row.
type Machine struct {
	ID        string
	Name      string
	SortOrder int
	Limits    Limits
	CreatedAt time.Time
}
