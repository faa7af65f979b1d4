package keycap

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Profile tables are reference data measured from physical caps, so they
// load from TOML files layered over the built-in defaults:
//
//	[[profile]]
//	family = "cherry"
//	row = 3
//	height = 8.5
//	samples = [
//	    { height = 0.0, inset = 0.0, taper = 0.0 },
//	    { height = 1.0, inset = 2.75, taper = 3.4 },
//	]

type tomlSample struct {
	Height float64 `toml:"height"`
	Inset  float64 `toml:"inset"`
	Taper  float64 `toml:"taper"`
}

type tomlProfile struct {
	Family  string       `toml:"family"`
	Row     int          `toml:"row"`
	Height  float64      `toml:"height"`
	Samples []tomlSample `toml:"samples"`
}

type tomlDoc struct {
	Profiles []tomlProfile `toml:"profile"`
}

// LoadTables parses TOML profile data and returns the default table with
// the parsed definitions layered on top.
func LoadTables(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profile tables: %w", err)
	}

	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile tables: %w", err)
	}

	t := DefaultTable().Clone()
	for i, p := range doc.Profiles {
		fam, err := ParseFamily(p.Family)
		if err != nil {
			return nil, fmt.Errorf("profile entry %d: %w", i, err)
		}
		def := ProfileDefinition{
			Family:    fam,
			Row:       Row(p.Row),
			CapHeight: p.Height,
		}
		for _, s := range p.Samples {
			def.Samples = append(def.Samples, ControlSample(s))
		}
		if err := t.Register(def); err != nil {
			return nil, fmt.Errorf("profile entry %d: %w", i, err)
		}
	}
	return t, nil
}
