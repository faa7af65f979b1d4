// Package keycap defines the keycap parameter model, the profile
// reference tables and the error taxonomy shared by the pipeline stages.
package keycap

import (
	"fmt"
	"strconv"
	"strings"
)

// Physical conventions. Keyboards place switches on a 19.05mm grid; the
// cap itself is narrower so neighboring caps clear each other.
const (
	UnitPitch     = 19.05 // switch center spacing per key unit, mm
	UnitFootprint = 18.0  // 1U cap footprint, mm (pitch minus gap)
	CapDepth      = 18.0  // front-to-back footprint, all widths, mm
	DefaultWall   = 0.91  // default wall thickness, mm
	MaxBevel      = 2.0   // bevel radius upper bound, mm
)

// Width is a keycap width in key units.
type Width float64

// Standard unit sizes.
const (
	Width1U    Width = 1.0
	Width1_25U Width = 1.25
	Width1_5U  Width = 1.5
	Width1_75U Width = 1.75
	Width2U    Width = 2.0
	Width2_25U Width = 2.25
	Width2_75U Width = 2.75
	Width6U    Width = 6.0
	Width6_25U Width = 6.25
	Width7U    Width = 7.0
)

// standardWidths is the set of accepted unit sizes.
var standardWidths = map[Width]bool{
	Width1U: true, Width1_25U: true, Width1_5U: true, Width1_75U: true,
	Width2U: true, Width2_25U: true, Width2_75U: true,
	Width6U: true, Width6_25U: true, Width7U: true,
}

// Footprint returns the physical cap width in mm. Multi-unit caps grow in
// full pitch steps so the cap spans its switches with the standard gap.
func (w Width) Footprint() float64 {
	return UnitFootprint + (float64(w)-1.0)*UnitPitch
}

func (w Width) String() string {
	return strconv.FormatFloat(float64(w), 'g', -1, 64) + "u"
}

// ParseWidth accepts "1.25", "1.25u" or "1.25U".
func ParseWidth(s string) (Width, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(s), "U"), "u")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &ConfigurationError{Field: "width", Detail: fmt.Sprintf("cannot parse %q", s)}
	}
	w := Width(f)
	if !standardWidths[w] {
		return 0, &ConfigurationError{Field: "width", Detail: fmt.Sprintf("%s is not a standard unit size", w)}
	}
	return w, nil
}

// Family is a keycap profile family.
type Family int

const (
	FamilyCherry Family = iota
	FamilyOEM
	FamilySA
)

func (f Family) String() string {
	switch f {
	case FamilyCherry:
		return "cherry"
	case FamilyOEM:
		return "oem"
	case FamilySA:
		return "sa"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily maps a family name to its enum value.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cherry":
		return FamilyCherry, nil
	case "oem":
		return FamilyOEM, nil
	case "sa":
		return FamilySA, nil
	}
	return 0, &ConfigurationError{Field: "profile", Detail: fmt.Sprintf("unknown profile family %q", s)}
}

// Row is a sculpt row within a profile family.
type Row int

const (
	RowR1 Row = 1
	RowR2 Row = 2
	RowR3 Row = 3
	RowR4 Row = 4
)

func (r Row) String() string {
	return fmt.Sprintf("R%d", int(r))
}

// StemKind selects the switch mount geometry.
type StemKind int

const (
	StemNone StemKind = iota
	StemCherryMX
)

func (s StemKind) String() string {
	switch s {
	case StemNone:
		return "none"
	case StemCherryMX:
		return "cherry-mx"
	default:
		return fmt.Sprintf("StemKind(%d)", int(s))
	}
}

// ParseStem maps a stem name to its enum value.
func ParseStem(s string) (StemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return StemNone, nil
	case "cherry-mx", "cherrymx", "mx":
		return StemCherryMX, nil
	}
	return 0, &ConfigurationError{Field: "stem", Detail: fmt.Sprintf("unknown stem type %q", s)}
}

// Parameters is the full input record for one keycap.
type Parameters struct {
	Width         Width
	Family        Family
	Row           Row
	BevelRadius   float64 // mm, 0..2
	Stem          StemKind
	WallThickness float64 // mm, 0 means DefaultWall
}

// Defaults returns the standard starting parameter set.
func Defaults() Parameters {
	return Parameters{
		Width:         Width1U,
		Family:        FamilyCherry,
		Row:           RowR3,
		BevelRadius:   1.5,
		Stem:          StemCherryMX,
		WallThickness: DefaultWall,
	}
}

// Wall returns the effective wall thickness.
func (p Parameters) Wall() float64 {
	if p.WallThickness == 0 {
		return DefaultWall
	}
	return p.WallThickness
}

// Validate rejects invalid parameters at the boundary, before any
// geometry runs. The table decides which (family, row) pairs exist.
func (p Parameters) Validate(t *Table) error {
	if !standardWidths[p.Width] {
		return &ConfigurationError{
			Field:  "width",
			Detail: fmt.Sprintf("%g is not a standard unit size", float64(p.Width)),
		}
	}
	if p.BevelRadius < 0 || p.BevelRadius > MaxBevel {
		return &ConfigurationError{
			Field:  "bevelRadius",
			Detail: fmt.Sprintf("%.3fmm outside [0, %.1f]mm", p.BevelRadius, MaxBevel),
		}
	}
	if p.Wall() <= 0 {
		return &ConfigurationError{
			Field:  "wallThickness",
			Detail: fmt.Sprintf("%.3fmm must be positive", p.WallThickness),
		}
	}
	if t == nil {
		t = DefaultTable()
	}
	if _, err := t.Lookup(p.Family, p.Row); err != nil {
		return err
	}
	return nil
}
