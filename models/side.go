package models

import (
	"fmt"
	"strings"
)

// Side identifies one of the two independently customizable faces of a garment
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Sides lists both faces in capture order
var Sides = []Side{SideFront, SideBack}

// Valid reports whether s is front or back
func (s Side) Valid() bool {
	return s == SideFront || s == SideBack
}

// ParseSide normalizes a side coming from a query string or JSON body
func ParseSide(raw string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(raw)))
	if !side.Valid() {
		return "", fmt.Errorf("invalid side %q: expected front or back", raw)
	}
	return side, nil
}

// Target identifies which placement of a side is being manipulated
type Target string

const (
	TargetDesign Target = "design"
	TargetText   Target = "text"
)

// Valid reports whether t is design or text
func (t Target) Valid() bool {
	return t == TargetDesign || t == TargetText
}
