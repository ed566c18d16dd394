package customization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-studio/models"
)

type countingLocker struct {
	locks    int
	releases int
}

func (l *countingLocker) Lock() func() {
	l.locks++
	released := false
	return func() {
		if !released {
			released = true
			l.releases++
		}
	}
}

func TestDragController_PositionIsSumOfDeltas(t *testing.T) {
	for _, tc := range []struct {
		name     string
		scale    float64
		rotation float64
	}{
		{"unscaled", 1, 0},
		{"scaled down", 0.25, 0},
		{"rotated", 0.8, 135},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState()
			require.NoError(t, s.SetDesign(models.SideFront, models.DesignPlacement{
				DesignID:  "d1",
				Transform: models.Transform{Position: models.Position{X: 3, Y: 7}, Scale: tc.scale, Rotation: tc.rotation},
			}))
			drag := NewDragController(s, &countingLocker{})

			require.NoError(t, drag.PointerDown(Selection{Side: models.SideFront, Target: models.TargetDesign}, models.Position{X: 100, Y: 100}))
			for _, p := range []models.Position{{X: 110, Y: 95}, {X: 90, Y: 120}, {X: 92.5, Y: 121}} {
				_, err := drag.PointerMove(p)
				require.NoError(t, err)
			}
			drag.PointerUp()

			got := s.Side(models.SideFront).Design.Transform.Position
			// P0 + (92.5-100, 121-100)
			assert.InDelta(t, 3-7.5, got.X, 1e-9)
			assert.InDelta(t, 7+21, got.Y, 1e-9)
		})
	}
}

func TestDragController_MovesOnlyActivePlacement(t *testing.T) {
	s := placedState(t)
	drag := NewDragController(s, nil)

	require.NoError(t, drag.PointerDown(Selection{Side: models.SideBack, Target: models.TargetText}, models.Position{}))
	pos, err := drag.PointerMove(models.Position{X: 4, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 4, Y: 4}, pos)

	assert.Equal(t, models.Position{}, s.Side(models.SideBack).Design.Transform.Position)
	assert.Equal(t, models.Position{}, s.Side(models.SideFront).Text.Transform.Position)
}

func TestDragController_LockReleasedOnce(t *testing.T) {
	for name, end := range map[string]func(d *DragController){
		"up":            func(d *DragController) { d.PointerUp() },
		"cancel":        func(d *DragController) { d.Cancel() },
		"up then close": func(d *DragController) { d.PointerUp(); d.Cancel() },
		"cancel twice":  func(d *DragController) { d.Cancel(); d.Cancel() },
	} {
		t.Run(name, func(t *testing.T) {
			locker := &countingLocker{}
			drag := NewDragController(placedState(t), locker)
			require.NoError(t, drag.PointerDown(Selection{Side: models.SideFront, Target: models.TargetDesign}, models.Position{}))
			assert.True(t, drag.Dragging())

			end(drag)

			assert.False(t, drag.Dragging())
			assert.Equal(t, 1, locker.locks)
			assert.Equal(t, 1, locker.releases)
		})
	}
}

func TestDragController_IdleAndMissingPlacement(t *testing.T) {
	s := NewState()
	drag := NewDragController(s, &countingLocker{})

	_, err := drag.PointerMove(models.Position{X: 1})
	assert.ErrorIs(t, err, ErrNotDragging)

	err = drag.PointerDown(Selection{Side: models.SideFront, Target: models.TargetDesign}, models.Position{})
	assert.ErrorIs(t, err, ErrNoPlacement)
	assert.False(t, drag.Dragging())
}

func TestDragController_PlacementRemovedMidDrag(t *testing.T) {
	s := placedState(t)
	locker := &countingLocker{}
	drag := NewDragController(s, locker)
	require.NoError(t, drag.PointerDown(Selection{Side: models.SideFront, Target: models.TargetDesign}, models.Position{}))

	s.ClearDesign(models.SideFront)
	_, err := drag.PointerMove(models.Position{X: 1})
	assert.ErrorIs(t, err, ErrNoPlacement)
	assert.False(t, drag.Dragging())
	assert.Equal(t, 1, locker.releases)
}

func TestScrollLock(t *testing.T) {
	var lock ScrollLock
	a := lock.Lock()
	b := lock.Lock()
	assert.True(t, lock.Locked())

	a()
	a()
	assert.True(t, lock.Locked(), "a second release of the same hold is ignored")
	b()
	assert.False(t, lock.Locked())
}
