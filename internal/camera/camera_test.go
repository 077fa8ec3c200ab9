package camera

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateRecordsChanges(t *testing.T) {
	var seen []State
	c := NewState()
	c.OnChange = func(s State) { seen = append(seen, s) }

	var _ Camera = c
	c.ToTopView()
	c.ToRotateMode()
	c.ZoomIn()
	require.Len(t, seen, 3)
	require.Equal(t, PositionTop, c.Position)
	require.Equal(t, ModeRotate, c.Mode)
	require.InDelta(t, 1.25, c.Zoom, 1e-9)

	c.ZoomFit()
	require.InDelta(t, 1.0, c.Zoom, 1e-9)
}

func TestZoomIsBounded(t *testing.T) {
	c := NewState()
	for range 100 {
		c.ZoomOut()
	}
	require.InDelta(t, minZoom, c.Zoom, 1e-9)
	for range 100 {
		c.ZoomIn()
	}
	require.InDelta(t, float64(maxZoom), c.Zoom, 1e-9)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("rotate")
	require.NoError(t, err)
	require.Equal(t, ModeRotate, m)
	_, err = ParseMode("orbit")
	require.Error(t, err)
}
