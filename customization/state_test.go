package customization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-studio/models"
)

func ptr[T any](v T) *T { return &v }

func placedState(t *testing.T) *State {
	t.Helper()
	s := NewState()
	for _, side := range models.Sides {
		require.NoError(t, s.SetDesign(side, models.DesignPlacement{DesignID: "d1", DesignURL: "https://cdn/d1.png"}))
		require.NoError(t, s.SetText(side, models.TextInput{Content: "Lucky", Font: "Roboto", Color: "#000"}))
	}
	return s
}

func TestState_SetDesignDefaults(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetDesign(models.SideFront, models.DesignPlacement{DesignID: "d1"}))

	front := s.Side(models.SideFront)
	require.NotNil(t, front.Design)
	assert.Equal(t, "A4", front.Design.PrintSizeLabel)
	assert.InDelta(t, 0.705, front.Design.Transform.Scale, 1e-9)
	assert.True(t, s.Side(models.SideBack).IsEmpty())
}

func TestState_SetDesignRejectsInvalidSide(t *testing.T) {
	err := NewState().SetDesign(models.Side("left"), models.DesignPlacement{})
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestState_OperationsNeverTouchOtherSide(t *testing.T) {
	ops := map[string]func(s *State) error{
		"set design": func(s *State) error {
			return s.SetDesign(models.SideFront, models.DesignPlacement{DesignID: "d2"})
		},
		"clear design": func(s *State) error { s.ClearDesign(models.SideFront); return nil },
		"set text": func(s *State) error {
			return s.SetText(models.SideFront, models.TextInput{Content: "Other"})
		},
		"clear text": func(s *State) error { s.ClearText(models.SideFront); return nil },
		"move design": func(s *State) error {
			return s.UpdateTransform(models.SideFront, models.TargetDesign, models.TransformPatch{Position: &models.Position{X: 5}})
		},
		"scale text": func(s *State) error {
			return s.UpdateTransform(models.SideFront, models.TargetText, models.TransformPatch{Scale: ptr(2.0)})
		},
		"svg": func(s *State) error { return s.SetDesignSVG(models.SideFront, "<svg/>", "#fff") },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			s := placedState(t)
			backDesign, backText := s.back.Design, s.back.Text
			before := s.back.Clone()

			require.NoError(t, op(s))

			assert.Same(t, backDesign, s.back.Design)
			assert.Same(t, backText, s.back.Text)
			assert.Equal(t, before, s.back)
		})
	}
}

func TestState_FrontAndBackNeverShareObjects(t *testing.T) {
	s := placedState(t)
	assert.NotSame(t, s.front.Design, s.back.Design)
	assert.NotSame(t, s.front.Text, s.back.Text)

	// clones handed out cannot reach the stored state
	front := s.Side(models.SideFront)
	front.Design.DesignID = "mutated"
	assert.Equal(t, "d1", s.front.Design.DesignID)
}

func TestState_UpdateTransformScaleDerivesLabel(t *testing.T) {
	s := placedState(t)

	require.NoError(t, s.UpdateTransform(models.SideFront, models.TargetDesign, models.TransformPatch{Scale: ptr(0.35)}))
	d := s.Side(models.SideFront).Design
	assert.Equal(t, "A6", d.PrintSizeLabel)
	assert.Equal(t, 0.35, d.Transform.Scale)

	require.NoError(t, s.UpdateTransform(models.SideFront, models.TargetDesign, models.TransformPatch{Scale: ptr(3.0)}))
	d = s.Side(models.SideFront).Design
	assert.Equal(t, 1.0, d.Transform.Scale, "design scale is clamped to the print area")
	assert.Equal(t, "A3", d.PrintSizeLabel)
}

func TestState_UpdateTransformLabelMovesScaleToMid(t *testing.T) {
	s := placedState(t)

	require.NoError(t, s.UpdateTransform(models.SideBack, models.TargetDesign, models.TransformPatch{PrintSizeLabel: ptr("a5")}))
	d := s.Side(models.SideBack).Design
	assert.Equal(t, "A5", d.PrintSizeLabel)
	assert.InDelta(t, 0.505, d.Transform.Scale, 1e-9)

	err := s.UpdateTransform(models.SideBack, models.TargetDesign, models.TransformPatch{PrintSizeLabel: ptr("B2")})
	assert.ErrorIs(t, err, ErrInvalidTransform)
}

func TestState_UpdateTransformMerges(t *testing.T) {
	s := placedState(t)
	require.NoError(t, s.UpdateTransform(models.SideFront, models.TargetText, models.TransformPatch{Position: &models.Position{X: 10, Y: -4}}))
	require.NoError(t, s.UpdateTransform(models.SideFront, models.TargetText, models.TransformPatch{Rotation: ptr(-90.0)}))

	tr := s.Side(models.SideFront).Text.Transform
	assert.Equal(t, models.Position{X: 10, Y: -4}, tr.Position)
	assert.Equal(t, 270.0, tr.Rotation)
	assert.Equal(t, 1.0, tr.Scale)
}

func TestState_UpdateTransformErrors(t *testing.T) {
	s := NewState()
	err := s.UpdateTransform(models.SideFront, models.TargetDesign, models.TransformPatch{Scale: ptr(0.5)})
	assert.ErrorIs(t, err, ErrNoPlacement)

	s = placedState(t)
	err = s.UpdateTransform(models.SideFront, models.TargetDesign, models.TransformPatch{Scale: ptr(0.0)})
	assert.ErrorIs(t, err, ErrInvalidTransform)

	err = s.UpdateTransform(models.SideFront, models.TargetText, models.TransformPatch{PrintSizeLabel: ptr("A4")})
	assert.ErrorIs(t, err, ErrInvalidTransform)

	err = s.UpdateTransform(models.SideFront, models.Target("logo"), models.TransformPatch{})
	assert.ErrorIs(t, err, ErrInvalidTransform)
}

func TestState_SetTextKeepsTransformAndEmptyClears(t *testing.T) {
	s := placedState(t)
	require.NoError(t, s.UpdateTransform(models.SideBack, models.TargetText, models.TransformPatch{Position: &models.Position{Y: 40}}))

	require.NoError(t, s.SetText(models.SideBack, models.TextInput{Content: "New", Styles: models.TextStyles{Bold: true}}))
	text := s.Side(models.SideBack).Text
	assert.Equal(t, "New", text.Content)
	assert.True(t, text.Styles.Bold)
	assert.Equal(t, 40.0, text.Transform.Position.Y)

	require.NoError(t, s.SetText(models.SideBack, models.TextInput{Content: "   "}))
	assert.Nil(t, s.Side(models.SideBack).Text)
}
