// Package camera controls the visualizer viewpoint.
package camera

import "fmt"

// Mode is the pointer-drag behavior of the viewport.
type Mode string

const (
	ModePan    Mode = "pan"
	ModeRotate Mode = "rotate"
)

// Position is a named viewpoint.
type Position string

const (
	PositionTop   Position = "top"
	Position3D    Position = "3d"
	PositionFront Position = "front"
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePan, ModeRotate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown camera mode %q", s)
}

// Camera is the control surface used by the toolbar.
type Camera interface {
	ToTopView()
	ToFrontView()
	ToRightSideView()
	ToLeftSideView()
	To3DView()
	ZoomFit()
	ZoomIn()
	ZoomOut()
	ToPanMode()
	ToRotateMode()
}

const (
	zoomStep = 1.25
	minZoom  = 0.05
	maxZoom  = 50
)

// State is an in-process camera. It records the viewpoint, drag mode and
// zoom factor and reports every change to OnChange.
type State struct {
	Position Position
	Mode     Mode
	Zoom     float64

	OnChange func(State)
}

// NewState returns a camera in 3D view, pan mode, zoom 1.
func NewState() *State {
	return &State{Position: Position3D, Mode: ModePan, Zoom: 1}
}

func (s *State) ToTopView()       { s.setPosition(PositionTop) }
func (s *State) ToFrontView()     { s.setPosition(PositionFront) }
func (s *State) ToRightSideView() { s.setPosition(PositionRight) }
func (s *State) ToLeftSideView()  { s.setPosition(PositionLeft) }
func (s *State) To3DView()        { s.setPosition(Position3D) }
func (s *State) ToPanMode()       { s.setMode(ModePan) }
func (s *State) ToRotateMode()    { s.setMode(ModeRotate) }

// ZoomFit resets the zoom factor.
func (s *State) ZoomFit() { s.setZoom(1) }

// ZoomIn magnifies by one step.
func (s *State) ZoomIn() { s.setZoom(s.Zoom * zoomStep) }

// ZoomOut shrinks by one step.
func (s *State) ZoomOut() { s.setZoom(s.Zoom / zoomStep) }

func (s *State) setPosition(p Position) {
	s.Position = p
	s.changed()
}

func (s *State) setMode(m Mode) {
	s.Mode = m
	s.changed()
}

func (s *State) setZoom(z float64) {
	s.Zoom = min(max(z, minZoom), maxZoom)
	s.changed()
}

func (s *State) changed() {
	if s.OnChange != nil {
		s.OnChange(*s)
	}
}
