package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoMatchingPreset is returned when a scale rounds to a percent outside [1,100]
var ErrNoMatchingPreset = errors.New("no matching size preset")

// ErrUnknownLabel is returned by MidScaleForLabel for labels not in the table
var ErrUnknownLabel = errors.New("unknown print size label")

// SizePreset maps a print size label to an inclusive percent range of the print area
type SizePreset struct {
	Label      string `json:"label"`
	MinPercent int    `json:"minPercent"`
	MaxPercent int    `json:"maxPercent"`
}

// sizePresets is ordered smallest to largest. Ranges are contiguous and cover [1,100].
var sizePresets = []SizePreset{
	{Label: "A7", MinPercent: 1, MaxPercent: 20},
	{Label: "A6", MinPercent: 21, MaxPercent: 40},
	{Label: "A5", MinPercent: 41, MaxPercent: 60},
	{Label: "A4", MinPercent: 61, MaxPercent: 80},
	{Label: "A3", MinPercent: 81, MaxPercent: 100},
}

const (
	MinScale = 0.01
	MaxScale = 1.0
)

// SizePresets returns a copy of the preset table
func SizePresets() []SizePreset {
	return append([]SizePreset(nil), sizePresets...)
}

// LabelForScale returns the label of the first preset containing round(scale*100)
func LabelForScale(scale float64) (string, error) {
	percent := int(math.Round(scale * 100))
	for _, p := range sizePresets {
		if percent >= p.MinPercent && percent <= p.MaxPercent {
			return p.Label, nil
		}
	}
	return "", fmt.Errorf("%w: scale %.4f (%d%%)", ErrNoMatchingPreset, scale, percent)
}

// MidScaleForLabel returns the scale at the middle of the preset's range.
// Used when a size button is clicked instead of dragging the slider.
func MidScaleForLabel(label string) (float64, error) {
	normalized := NormalizeLabel(label)
	for _, p := range sizePresets {
		if p.Label == normalized {
			return float64(p.MinPercent+p.MaxPercent) / 200, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// ClampScale keeps a scale inside the domain LabelForScale accepts
func ClampScale(scale float64) float64 {
	if math.IsNaN(scale) || scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

// NormalizeLabel upper-cases and trims a print size label ("a4 " -> "A4")
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
