package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-studio/models"
)

func TestCompose_Geometry(t *testing.T) {
	c := NewComposer(500, 500, 4)
	mockup := testMockup()
	mockup.ColorVariants = map[string]map[models.Side]string{"black": {models.SideFront: "https://cdn.test/black-front.png"}}

	st := models.SideState{
		Design: &models.DesignPlacement{
			DesignID:  "d-1",
			DesignURL: "https://cdn.test/d-1.png",
			Transform: models.Transform{Position: models.Position{X: 20, Y: -30}, Scale: 0.8, Rotation: 45},
		},
		Text: &models.TextPlacement{
			Content:   "Lucky",
			Styles:    models.TextStyles{Bold: true},
			Transform: models.Transform{Position: models.Position{X: -10, Y: 100}, Scale: 1.5},
		},
	}
	scene, err := c.Compose(mockup, "black", models.SideFront, st)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/black-front.png", scene.Background)
	w, h := scene.OutputSize()
	assert.Equal(t, 2000, w)
	assert.Equal(t, 2000, h)

	require.NotNil(t, scene.Design)
	assert.Equal(t, 270.0, scene.Design.CenterX)
	assert.Equal(t, 220.0, scene.Design.CenterY)
	assert.Equal(t, 200.0, scene.Design.Width)
	assert.Equal(t, 45.0, scene.Design.Rotation)
	assert.Empty(t, scene.Design.SVGMarkup)

	require.NotNil(t, scene.Text)
	assert.Equal(t, 240.0, scene.Text.CenterX)
	assert.Equal(t, 350.0, scene.Text.CenterY)
	assert.Equal(t, 48.0, scene.Text.FontSize)
	assert.Equal(t, "#000000", scene.Text.Color)
	assert.Equal(t, "sans-serif", scene.Text.Font)
	assert.True(t, scene.Text.Bold)
}

func TestCompose_VectorRecolorAndFallback(t *testing.T) {
	c := NewComposer(500, 500, 1)
	st := models.SideState{Design: &models.DesignPlacement{
		DesignURL:  "https://cdn.test/d.svg",
		SVGContent: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="#000"/></svg>`,
		SVGColor:   "#ff0000",
		Transform:  models.DefaultTransform(),
	}}
	scene, err := c.Compose(testMockup(), "", models.SideBack, st)
	require.NoError(t, err)
	assert.Contains(t, scene.Design.SVGMarkup, "#ff0000")
	assert.Equal(t, "https://cdn.test/tee-back.png", scene.Background)

	st.Design.SVGContent = "<svg><broken"
	scene, err = c.Compose(testMockup(), "", models.SideBack, st)
	require.NoError(t, err)
	assert.Empty(t, scene.Design.SVGMarkup)
	assert.Equal(t, "https://cdn.test/d.svg", scene.Design.ImageURL)
}

func TestCompose_EmptyAndInvalid(t *testing.T) {
	c := NewComposer(500, 500, 4)
	scene, err := c.Compose(testMockup(), "", models.SideFront, models.SideState{Text: &models.TextPlacement{}})
	require.NoError(t, err)
	assert.Nil(t, scene.Design)
	assert.Nil(t, scene.Text)

	_, err = c.Compose(testMockup(), "", models.Side("left"), models.SideState{})
	assert.Error(t, err)
}
