// Package pipeline wires the keycap stages into a re-evaluable parametric
// graph. Each stage caches its output keyed by a dirty bit; a parameter
// change invalidates only the stages downstream of it, and a failing
// stage keeps its previous cached output so the caller always has the
// last good preview.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/chazu/capwright/pkg/bevel"
	"github.com/chazu/capwright/pkg/compose"
	"github.com/chazu/capwright/pkg/curve"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/keycap"
	"github.com/chazu/capwright/pkg/shell"
	"github.com/chazu/capwright/pkg/stem"
)

// ErrBaked is returned when a baked pipeline is asked to change. Baking
// freezes the result; further edits start a fresh pipeline.
var ErrBaked = errors.New("pipeline is baked; start a new pipeline to change parameters")

type stageMask uint8

const (
	stageCurve stageMask = 1 << iota
	stageShell
	stageBevel
	stageHollow
	stageStem
	stageComposite

	stageAll = stageCurve | stageShell | stageBevel | stageHollow | stageStem | stageComposite
)

// Pipeline owns the parameters and cached per-stage outputs for one cap.
// Not safe for concurrent use; the host serializes parameter changes per
// instance. Independent pipelines share nothing.
type Pipeline struct {
	Name string

	// OnUpdate, when set, receives every new preview mesh.
	OnUpdate func(*kernel.Mesh)
	// OnWarning, when set, receives advisory conditions such as a
	// clamped wall thickness.
	OnWarning func(keycap.Warning)

	k      kernel.Kernel
	table  *keycap.Table
	params keycap.Parameters
	dirty  stageMask

	// Cached stage outputs. Each survives until its stage next succeeds.
	crv      *curve.CrossSectionCurve
	outer    kernel.Solid
	beveled  kernel.Solid
	cavity   kernel.Solid
	usedWall float64
	stemPart kernel.Solid
	hasStem  bool
	mesh     *kernel.Mesh

	warnings  []keycap.Warning
	baked     bool
	bakedMesh *kernel.Mesh
}

// New validates the parameters at the boundary and returns a pipeline
// ready to evaluate. Invalid parameters never enter the pipeline.
func New(k kernel.Kernel, table *keycap.Table, params keycap.Parameters) (*Pipeline, error) {
	if table == nil {
		table = keycap.DefaultTable()
	}
	if err := params.Validate(table); err != nil {
		return nil, err
	}
	return &Pipeline{
		k:      k,
		table:  table,
		params: params,
		dirty:  stageAll,
	}, nil
}

// Parameters returns the current parameter record.
func (p *Pipeline) Parameters() keycap.Parameters {
	return p.params
}

// Warnings returns the advisories from the most recent evaluation.
func (p *Pipeline) Warnings() []keycap.Warning {
	return p.warnings
}

// Preview returns the last good mesh, or nil before the first successful
// evaluation.
func (p *Pipeline) Preview() *kernel.Mesh {
	if p.baked {
		return p.bakedMesh
	}
	return p.mesh
}

// setParams validates a candidate record and marks the given stages
// dirty. All setters funnel through here.
func (p *Pipeline) setParams(next keycap.Parameters, invalid stageMask) error {
	if p.baked {
		return ErrBaked
	}
	if err := next.Validate(p.table); err != nil {
		return err
	}
	p.params = next
	p.dirty |= invalid
	return nil
}

// SetWidth changes the cap width. Everything downstream of the curve is
// recomputed on the next evaluation.
func (p *Pipeline) SetWidth(w keycap.Width) error {
	next := p.params
	next.Width = w
	return p.setParams(next, stageAll)
}

// SetProfile changes the profile family and row together, since rows are
// only meaningful within a family.
func (p *Pipeline) SetProfile(f keycap.Family, r keycap.Row) error {
	next := p.params
	next.Family = f
	next.Row = r
	return p.setParams(next, stageAll)
}

// SetBevelRadius changes the edge rounding radius. Only the bevel and
// composite stages recompute; the pre-bevel shell stays cached, so
// repeated radius changes never accumulate error.
func (p *Pipeline) SetBevelRadius(r float64) error {
	next := p.params
	next.BevelRadius = r
	return p.setParams(next, stageBevel|stageComposite)
}

// SetStem changes the switch mount kind.
func (p *Pipeline) SetStem(s keycap.StemKind) error {
	next := p.params
	next.Stem = s
	return p.setParams(next, stageStem|stageComposite)
}

// SetWallThickness changes the hollow wall thickness. The stem stage is
// invalidated too because the post height tracks the cavity ceiling.
func (p *Pipeline) SetWallThickness(w float64) error {
	next := p.params
	next.WallThickness = w
	return p.setParams(next, stageHollow|stageStem|stageComposite)
}

// Evaluate runs the dirty stages in dependency order and returns the
// preview mesh. A stage either completes or fails atomically: on failure
// its previous cached output is retained, the error is returned as the
// diagnostic, and the last good preview remains available via Preview.
func (p *Pipeline) Evaluate() (*kernel.Mesh, error) {
	if p.baked {
		return p.bakedMesh, nil
	}
	p.warnings = p.warnings[:0]

	if p.dirty&stageCurve != 0 {
		def, err := p.table.Lookup(p.params.Family, p.params.Row)
		if err != nil {
			return p.mesh, err
		}
		crv, err := curve.Build(def, p.params.Width)
		if err != nil {
			return p.mesh, fmt.Errorf("curve: %w", err)
		}
		p.crv = crv
		p.dirty &^= stageCurve
	}

	if p.dirty&stageShell != 0 {
		outer, err := shell.Loft(p.k, p.crv)
		if err != nil {
			return p.mesh, fmt.Errorf("shell: %w", err)
		}
		p.outer = outer
		p.dirty &^= stageShell
	}

	if p.dirty&stageBevel != 0 {
		if p.params.BevelRadius > 0 {
			beveled, err := bevel.Apply(p.k, p.crv, p.params.BevelRadius)
			if err != nil {
				return p.mesh, fmt.Errorf("bevel: %w", err)
			}
			p.beveled = beveled
		} else {
			p.beveled = p.outer
		}
		p.dirty &^= stageBevel
	}

	if p.dirty&stageHollow != 0 {
		cavity, used, warn, err := shell.Hollow(p.k, p.crv, p.params.Wall())
		if err != nil {
			return p.mesh, fmt.Errorf("hollow: %w", err)
		}
		p.cavity = cavity
		p.usedWall = used
		if warn != nil {
			p.warn(*warn)
		}
		p.dirty &^= stageHollow
	}

	if p.dirty&stageStem != 0 {
		frame := stem.Frame{
			CeilingZ:  p.crv.Height - p.usedWall,
			CapHeight: p.crv.Height,
		}
		s, ok, err := stem.Build(p.k, p.params.Stem, frame)
		if err != nil {
			return p.mesh, fmt.Errorf("stem: %w", err)
		}
		p.stemPart = s
		p.hasStem = ok
		p.dirty &^= stageStem
	}

	if p.dirty&stageComposite != 0 {
		var stemPart kernel.Solid
		if p.hasStem {
			stemPart = p.stemPart
		}
		_, mesh, err := compose.Composite(p.k, p.beveled, p.cavity, stemPart)
		if err != nil {
			return p.mesh, err
		}
		mesh.Name = p.Name
		p.mesh = mesh
		p.dirty &^= stageComposite
	}

	if p.OnUpdate != nil {
		p.OnUpdate(p.mesh)
	}
	return p.mesh, nil
}

func (p *Pipeline) warn(w keycap.Warning) {
	p.warnings = append(p.warnings, w)
	if p.OnWarning != nil {
		p.OnWarning(w)
	}
}

// Bake forces a full evaluation, freezes the pipeline and returns the
// immutable result. Baking an already-baked pipeline is a no-op that
// returns the same mesh.
func (p *Pipeline) Bake() (*kernel.Mesh, error) {
	if p.baked {
		return p.bakedMesh, nil
	}
	mesh, err := p.Evaluate()
	if err != nil {
		return nil, err
	}
	p.bakedMesh = mesh.Clone()
	p.baked = true

	// Drop the intermediate solids; the parametric graph is gone.
	p.crv = nil
	p.outer = nil
	p.beveled = nil
	p.cavity = nil
	p.stemPart = nil
	p.mesh = nil

	return p.bakedMesh, nil
}

// Baked reports whether the pipeline has been frozen.
func (p *Pipeline) Baked() bool {
	return p.baked
}
