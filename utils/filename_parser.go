package utils

import (
	"fmt"
	"regexp"
	"strings"

	"garment-studio/models"
)

var (
	designExtRegex  = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|svg)$`)
	designNameRegex = regexp.MustCompile(`^([A-Za-z]{2})-([A-Za-z0-9][A-Za-z0-9_ -]*)$`)
)

// ParseDesignFileName parses a design file name following the pattern:
// CATEGORYCODE-NAME.EXT
// Example: AN-happy_dog.svg -> {Name: "Happy Dog", Category: "animals"}
func ParseDesignFileName(filename string) (*models.Design, error) {
	trimmed := strings.TrimSpace(filename)
	if !designExtRegex.MatchString(trimmed) {
		return nil, fmt.Errorf("invalid file extension: expected png, jpg, jpeg or svg, got %s", filename)
	}
	nameWithoutExt := designExtRegex.ReplaceAllString(trimmed, "")

	matches := designNameRegex.FindStringSubmatch(nameWithoutExt)
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid filename format: expected CATEGORYCODE-NAME, got %s", nameWithoutExt)
	}

	name := HumanizeSlug(matches[2])
	if name == "" {
		return nil, fmt.Errorf("invalid filename format: empty design name in %s", filename)
	}

	return &models.Design{
		Name:     name,
		Category: MapCodeToCategory(matches[1]),
	}, nil
}
