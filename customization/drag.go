package customization

import (
	"errors"
	"fmt"

	"garment-studio/models"
)

// ErrNotDragging is returned by pointer moves outside a drag
var ErrNotDragging = errors.New("no drag in progress")

// Selection is the placement a drag acts on
type Selection struct {
	Side   models.Side   `json:"side"`
	Target models.Target `json:"target"`
}

// DragController turns a pointer stream into position updates on the selected placement.
//
// Idle -> Dragging on PointerDown, back to Idle on PointerUp or Cancel. Every move adds
// the pointer delta since the previous event to the placement position, independently of
// its scale and rotation. The scroll hold taken on PointerDown is released exactly once,
// by whichever of up, cancel or close happens first.
type DragController struct {
	state  *State
	locker ScrollLocker

	dragging bool
	sel      Selection
	start    models.Position
	last     models.Position
	release  func()
}

// NewDragController binds a controller to the state it moves placements in
func NewDragController(state *State, locker ScrollLocker) *DragController {
	return &DragController{state: state, locker: locker}
}

// PointerDown starts dragging the selected placement from pointer position p.
// A drag already in progress is cancelled first.
func (d *DragController) PointerDown(sel Selection, p models.Position) error {
	if !sel.Side.Valid() {
		return errInvalidSide(sel.Side)
	}
	if _, err := d.state.Transform(sel.Side, sel.Target); err != nil {
		return fmt.Errorf("pointer down: %w", err)
	}
	d.Cancel()

	d.dragging = true
	d.sel = sel
	d.start = p
	d.last = p
	if d.locker != nil {
		d.release = d.locker.Lock()
	}
	return nil
}

// PointerMove applies the delta between p and the previous pointer position and returns
// the placement's new position
func (d *DragController) PointerMove(p models.Position) (models.Position, error) {
	if !d.dragging {
		return models.Position{}, ErrNotDragging
	}
	current, err := d.state.Transform(d.sel.Side, d.sel.Target)
	if err != nil {
		// placement removed mid-drag
		d.Cancel()
		return models.Position{}, fmt.Errorf("pointer move: %w", err)
	}
	next := current.Position.Add(p.Sub(d.last))
	if err := d.state.UpdateTransform(d.sel.Side, d.sel.Target, models.TransformPatch{Position: &next}); err != nil {
		return models.Position{}, err
	}
	d.last = p
	return next, nil
}

// PointerUp ends the drag
func (d *DragController) PointerUp() {
	d.stop()
}

// Cancel ends the drag without a final pointer event. Safe to call when idle.
func (d *DragController) Cancel() {
	d.stop()
}

func (d *DragController) stop() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.dragging = false
	d.sel = Selection{}
}

// Dragging reports whether a drag is in progress
func (d *DragController) Dragging() bool {
	return d.dragging
}

// Active returns the selection being dragged
func (d *DragController) Active() (Selection, bool) {
	return d.sel, d.dragging
}
