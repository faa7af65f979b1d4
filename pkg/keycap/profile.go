package keycap

import (
	"fmt"
	"sort"
)

// ControlSample is one station of a profile's vertical sweep.
type ControlSample struct {
	Height float64 // fraction of cap height, 0 at the base, 1 at the top
	Inset  float64 // mm each side is pulled in from the footprint (x, symmetric)
	Taper  float64 // mm the front face is pulled in (y, front only)
}

// ProfileDefinition is the immutable cross-section description for one
// (family, row) pair: the cap height plus ordered control samples. The
// curve builder interpolates between samples; consumers never mutate it.
type ProfileDefinition struct {
	Family    Family
	Row       Row
	CapHeight float64 // mm at the cap's back edge
	Samples   []ControlSample
}

// validate checks the definition is usable as curve-builder input.
func (d ProfileDefinition) validate() error {
	if d.CapHeight <= 0 {
		return &InvalidProfileError{Family: d.Family, Row: d.Row,
			Detail: fmt.Sprintf("cap height %.3f must be positive", d.CapHeight)}
	}
	if len(d.Samples) < 2 {
		return &InvalidProfileError{Family: d.Family, Row: d.Row,
			Detail: fmt.Sprintf("%d control samples, need at least 2", len(d.Samples))}
	}
	if !sort.SliceIsSorted(d.Samples, func(i, j int) bool {
		return d.Samples[i].Height < d.Samples[j].Height
	}) {
		return &InvalidProfileError{Family: d.Family, Row: d.Row,
			Detail: "control sample heights must be strictly ascending"}
	}
	for i := 1; i < len(d.Samples); i++ {
		if d.Samples[i].Height == d.Samples[i-1].Height {
			return &InvalidProfileError{Family: d.Family, Row: d.Row,
				Detail: "control sample heights must be strictly ascending"}
		}
	}
	return nil
}

// Table maps (family, row) to a profile definition.
type Table struct {
	defs map[Family]map[Row]ProfileDefinition
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{defs: make(map[Family]map[Row]ProfileDefinition)}
}

// Register adds or replaces a definition. Malformed definitions are
// rejected so a bad table entry fails at load, not mid-pipeline.
func (t *Table) Register(d ProfileDefinition) error {
	if err := d.validate(); err != nil {
		return err
	}
	rows := t.defs[d.Family]
	if rows == nil {
		rows = make(map[Row]ProfileDefinition)
		t.defs[d.Family] = rows
	}
	rows[d.Row] = d
	return nil
}

// Lookup returns the definition for (family, row). Undefined pairs are a
// configuration error, not a silent default.
func (t *Table) Lookup(family Family, row Row) (ProfileDefinition, error) {
	if rows, ok := t.defs[family]; ok {
		if d, ok := rows[row]; ok {
			return d, nil
		}
	}
	return ProfileDefinition{}, &ConfigurationError{
		Field:  "profile/row",
		Detail: fmt.Sprintf("no %s profile defined for row %s", family, row),
	}
}

// Clone returns an independent copy, used by script evaluation to layer
// user-defined rows over the defaults.
func (t *Table) Clone() *Table {
	c := NewTable()
	for fam, rows := range t.defs {
		cr := make(map[Row]ProfileDefinition, len(rows))
		for r, d := range rows {
			cr[r] = d
		}
		c.defs[fam] = cr
	}
	return c
}

// familySpec compacts the reference measurements for one family: per-row
// cap heights plus the top-face inset and front taper shared by the rows.
// The mid-station inset fraction shapes the side wall between base and
// top; lower values bow the wall outward (SA's spherical sides), 0.5 is a
// straight taper.
type familySpec struct {
	rowHeights map[Row]float64
	topInset   float64 // per side, mm
	frontTaper float64 // mm
	midFrac    float64
}

// Reference measurements for the supported families. These reproduce the
// published Cherry/OEM/SA dimensions; measured tables can be layered on
// top via LoadTables or the script surface.
var familySpecs = map[Family]familySpec{
	FamilyCherry: {
		rowHeights: map[Row]float64{RowR1: 11.5, RowR2: 9.5, RowR3: 8.5, RowR4: 9.5},
		topInset:   2.75,
		frontTaper: 3.4,
		midFrac:    0.46,
	},
	FamilyOEM: {
		rowHeights: map[Row]float64{RowR1: 12.5, RowR2: 11.0, RowR3: 9.5, RowR4: 10.5},
		topInset:   1.5,
		frontTaper: 3.0,
		midFrac:    0.48,
	},
	FamilySA: {
		rowHeights: map[Row]float64{RowR1: 14.89, RowR2: 13.49, RowR3: 12.925, RowR4: 13.49},
		topInset:   1.25,
		frontTaper: 2.5,
		midFrac:    0.38,
	},
}

var defaultTable *Table

func init() {
	defaultTable = NewTable()
	for fam, spec := range familySpecs {
		for row, h := range spec.rowHeights {
			def := ProfileDefinition{
				Family:    fam,
				Row:       row,
				CapHeight: h,
				Samples: []ControlSample{
					{Height: 0, Inset: 0, Taper: 0},
					{Height: 0.5, Inset: spec.topInset * spec.midFrac, Taper: spec.frontTaper * 0.5},
					{Height: 1, Inset: spec.topInset, Taper: spec.frontTaper},
				},
			}
			if err := defaultTable.Register(def); err != nil {
				panic(err)
			}
		}
	}
}

// DefaultTable returns the built-in reference table. Callers must not
// mutate it; use Clone to layer changes.
func DefaultTable() *Table {
	return defaultTable
}
