package customization

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"garment-studio/models"
	"garment-studio/utils"
)

var (
	// ErrNoPlacement is returned when an operation targets a design or text that is not placed
	ErrNoPlacement = errors.New("no placement on side")
	// ErrInvalidTransform is returned for patches that cannot be applied
	ErrInvalidTransform = errors.New("invalid transform")
	// ErrInvalidSide is returned for sides other than front and back
	ErrInvalidSide = errors.New("invalid side")
)

// DefaultDesignLabel is the print size a newly placed design starts at
const DefaultDesignLabel = "A4"

// MaxTextScale bounds text scaling; text is not tied to the print size table
const MaxTextScale = 4.0

// State holds the placement state of both sides.
//
// Every write replaces the affected side with freshly allocated placements and leaves the
// other side's value (including its pointers) exactly as it was. Readers only ever get
// clones, so nothing outside State can alias its placements.
type State struct {
	front models.SideState
	back  models.SideState
}

// NewState returns an empty state for both sides
func NewState() *State {
	return &State{}
}

// Side returns a deep copy of the state of side
func (s *State) Side(side models.Side) models.SideState {
	return s.get(side).Clone()
}

// Snapshot returns deep copies of both sides
func (s *State) Snapshot() models.SideStates {
	return models.SideStates{Front: s.front.Clone(), Back: s.back.Clone()}
}

func (s *State) get(side models.Side) models.SideState {
	if side == models.SideBack {
		return s.back
	}
	return s.front
}

// put swaps in a new value for side; the other side is not touched
func (s *State) put(side models.Side, st models.SideState) {
	if side == models.SideBack {
		s.back = st
		return
	}
	s.front = st
}

// SetDesign places a design on side, replacing any previous one.
// A zero transform starts the design centered at DefaultDesignLabel size.
func (s *State) SetDesign(side models.Side, placement models.DesignPlacement) error {
	if !side.Valid() {
		return fmt.Errorf("set design: %w", errInvalidSide(side))
	}
	d := placement
	d.CaptureURL = ""
	d.CapturedAt = nil

	if d.Transform.Scale <= 0 {
		mid, err := utils.MidScaleForLabel(DefaultDesignLabel)
		if err != nil {
			return err
		}
		d.Transform.Scale = mid
	}
	d.Transform.Scale = utils.ClampScale(d.Transform.Scale)
	d.Transform.Rotation = normalizeRotation(d.Transform.Rotation)
	label, err := utils.LabelForScale(d.Transform.Scale)
	if err != nil {
		return fmt.Errorf("set design: %w", err)
	}
	d.PrintSizeLabel = label

	next := s.get(side).Clone()
	next.Design = &d
	s.put(side, next)
	return nil
}

// ClearDesign removes the design of side
func (s *State) ClearDesign(side models.Side) {
	if s.get(side).Design == nil {
		return
	}
	next := s.get(side).Clone()
	next.Design = nil
	s.put(side, next)
}

// SetDesignSVG records the vector source and override color carried with the design of side
func (s *State) SetDesignSVG(side models.Side, content, color string) error {
	if s.get(side).Design == nil {
		return fmt.Errorf("%w: %s design", ErrNoPlacement, side)
	}
	next := s.get(side).Clone()
	next.Design.SVGContent = content
	next.Design.SVGColor = color
	s.put(side, next)
	return nil
}

// SetText sets the text of side. Empty content clears it. An existing text keeps its transform.
func (s *State) SetText(side models.Side, in models.TextInput) error {
	if !side.Valid() {
		return fmt.Errorf("set text: %w", errInvalidSide(side))
	}
	if strings.TrimSpace(in.Content) == "" {
		s.ClearText(side)
		return nil
	}
	next := s.get(side).Clone()
	transform := models.DefaultTransform()
	if next.Text != nil {
		transform = next.Text.Transform
	}
	next.Text = &models.TextPlacement{
		Content:   in.Content,
		Font:      in.Font,
		Color:     in.Color,
		Styles:    in.Styles,
		Transform: transform,
	}
	s.put(side, next)
	return nil
}

// ClearText removes the text of side
func (s *State) ClearText(side models.Side) {
	if s.get(side).Text == nil {
		return
	}
	next := s.get(side).Clone()
	next.Text = nil
	s.put(side, next)
}

// Transform returns the current transform of a placement
func (s *State) Transform(side models.Side, target models.Target) (models.Transform, error) {
	st := s.get(side)
	switch target {
	case models.TargetDesign:
		if st.Design != nil {
			return st.Design.Transform, nil
		}
	case models.TargetText:
		if st.Text != nil {
			return st.Text.Transform, nil
		}
	default:
		return models.Transform{}, fmt.Errorf("%w: unknown target %q", ErrInvalidTransform, target)
	}
	return models.Transform{}, fmt.Errorf("%w: %s %s", ErrNoPlacement, side, target)
}

// UpdateTransform merges patch into the transform of a placement.
// For designs a scale change re-derives the print size label and a label change moves the
// scale to the middle of that label's range; when both are given the label wins.
func (s *State) UpdateTransform(side models.Side, target models.Target, patch models.TransformPatch) error {
	if !side.Valid() {
		return fmt.Errorf("update transform: %w", errInvalidSide(side))
	}
	if _, err := s.Transform(side, target); err != nil {
		return err
	}
	if patch.Scale != nil && (math.IsNaN(*patch.Scale) || *patch.Scale <= 0) {
		return fmt.Errorf("%w: scale must be positive", ErrInvalidTransform)
	}

	next := s.get(side).Clone()
	if target == models.TargetText {
		if patch.PrintSizeLabel != nil {
			return fmt.Errorf("%w: print size applies to designs only", ErrInvalidTransform)
		}
		t := &next.Text.Transform
		mergeCommon(t, patch)
		if patch.Scale != nil {
			t.Scale = math.Min(math.Max(*patch.Scale, utils.MinScale), MaxTextScale)
		}
		s.put(side, next)
		return nil
	}

	d := next.Design
	mergeCommon(&d.Transform, patch)
	if patch.Scale != nil {
		d.Transform.Scale = utils.ClampScale(*patch.Scale)
		label, err := utils.LabelForScale(d.Transform.Scale)
		if err != nil {
			return fmt.Errorf("update transform: %w", err)
		}
		d.PrintSizeLabel = label
	}
	if patch.PrintSizeLabel != nil {
		mid, err := utils.MidScaleForLabel(*patch.PrintSizeLabel)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransform, err)
		}
		d.Transform.Scale = mid
		d.PrintSizeLabel = utils.NormalizeLabel(*patch.PrintSizeLabel)
	}
	s.put(side, next)
	return nil
}

func mergeCommon(t *models.Transform, patch models.TransformPatch) {
	if patch.Position != nil {
		t.Position = *patch.Position
	}
	if patch.Rotation != nil {
		t.Rotation = normalizeRotation(*patch.Rotation)
	}
}

// normalizeRotation maps degrees into [0, 360)
func normalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	return r
}

func errInvalidSide(side models.Side) error {
	return fmt.Errorf("%w: %q", ErrInvalidSide, side)
}
