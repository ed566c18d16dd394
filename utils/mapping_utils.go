package utils

import (
	"strings"
)

// categoryCodes maps the category code used in design file names to the category name
var categoryCodes = map[string]string{
	"AN": "animals",
	"FL": "flowers",
	"SP": "sports",
	"MU": "music",
	"HO": "holidays",
	"TY": "typography",
	"AB": "abstract",
	"KI": "kids",
}

// MapCodeToCategory maps a design category code to its readable name.
// Input is normalized to uppercase before mapping; unknown codes return the lowercase code.
func MapCodeToCategory(code string) string {
	codeUpper := strings.ToUpper(strings.TrimSpace(code))
	if name, exists := categoryCodes[codeUpper]; exists {
		return name
	}
	return strings.ToLower(codeUpper)
}

// MapCategoryToCode maps a category name back to its code.
// Input is normalized to lowercase before mapping; unknown names return the uppercase name.
func MapCategoryToCode(category string) string {
	categoryLower := strings.ToLower(strings.TrimSpace(category))
	for code, name := range categoryCodes {
		if name == categoryLower {
			return code
		}
	}
	return strings.ToUpper(categoryLower)
}

// HumanizeSlug turns "happy_dog" or "happy-dog" into "Happy Dog"
func HumanizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
