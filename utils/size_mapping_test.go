package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizePresets_PartitionOneToHundred(t *testing.T) {
	presets := SizePresets()
	require.NotEmpty(t, presets)

	assert.Equal(t, 1, presets[0].MinPercent)
	assert.Equal(t, 100, presets[len(presets)-1].MaxPercent)
	for i := 1; i < len(presets); i++ {
		assert.Equal(t, presets[i-1].MaxPercent+1, presets[i].MinPercent,
			"gap or overlap between %s and %s", presets[i-1].Label, presets[i].Label)
		assert.LessOrEqual(t, presets[i].MinPercent, presets[i].MaxPercent)
	}

	// every percent is covered by exactly one preset
	for pct := 1; pct <= 100; pct++ {
		matches := 0
		for _, p := range presets {
			if pct >= p.MinPercent && pct <= p.MaxPercent {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "percent %d", pct)
	}
}

func TestLabelForScale(t *testing.T) {
	tests := []struct {
		scale float64
		want  string
	}{
		{0.01, "A7"},
		{0.2, "A7"},
		{0.204, "A7"},
		{0.21, "A6"},
		{0.5, "A5"},
		{0.7, "A4"},
		{0.8, "A4"},
		{0.805, "A3"},
		{1.0, "A3"},
	}
	for _, tt := range tests {
		got, err := LabelForScale(tt.scale)
		require.NoError(t, err, "scale %v", tt.scale)
		assert.Equal(t, tt.want, got, "scale %v", tt.scale)
	}
}

func TestLabelForScale_EveryScaleInDomainHasALabel(t *testing.T) {
	for i := 1; i <= 1000; i++ {
		scale := float64(i) / 1000
		if scale < MinScale {
			continue
		}
		label, err := LabelForScale(scale)
		require.NoError(t, err, "scale %v", scale)
		assert.NotEmpty(t, label)
	}
}

func TestLabelForScale_OutOfRange(t *testing.T) {
	for _, scale := range []float64{0, 0.004, 1.006, 2, -1} {
		_, err := LabelForScale(scale)
		assert.ErrorIs(t, err, ErrNoMatchingPreset, "scale %v", scale)
	}
}

func TestMidScaleForLabel_RoundTrip(t *testing.T) {
	for _, p := range SizePresets() {
		mid, err := MidScaleForLabel(p.Label)
		require.NoError(t, err)

		label, err := LabelForScale(mid)
		require.NoError(t, err)
		assert.Equal(t, p.Label, label)

		again, err := MidScaleForLabel(label)
		require.NoError(t, err)
		assert.Equal(t, mid, again)
	}
}

func TestMidScaleForLabel(t *testing.T) {
	mid, err := MidScaleForLabel("a4")
	require.NoError(t, err)
	assert.InDelta(t, 0.705, mid, 1e-9)

	_, err = MidScaleForLabel("B2")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestClampScale(t *testing.T) {
	assert.Equal(t, MinScale, ClampScale(0))
	assert.Equal(t, MinScale, ClampScale(-3))
	assert.Equal(t, MaxScale, ClampScale(4))
	assert.Equal(t, 0.42, ClampScale(0.42))

	_, err := LabelForScale(ClampScale(0))
	assert.NoError(t, err)
}
