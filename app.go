package main

import (
	"fmt"
	"log"

	"github.com/chazu/capwright/pkg/engine"
	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/kernel/sdfx"
	"github.com/chazu/capwright/pkg/pipeline"
)

// colorPalette is a default palette used to assign distinct colors to caps.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the host binding. A host application (panel UI, viewport,
// exporter) talks to the modeling core exclusively through these methods;
// the core never calls into host frameworks.
type App struct {
	engine    *engine.Engine
	kernel    kernel.Kernel
	pipelines map[string]*pipeline.Pipeline
}

// MeshData is the JSON-serializable mesh format handed to a host renderer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the host.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a definition source.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []string        `json:"warnings"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return NewAppWithKernel(sdfx.New())
}

// NewAppWithKernel creates an App on a specific kernel, used by tests to
// run at a coarser tessellation resolution.
func NewAppWithKernel(k kernel.Kernel) *App {
	return &App{
		engine:    engine.NewEngine(),
		kernel:    k,
		pipelines: make(map[string]*pipeline.Pipeline),
	}
}

// Evaluate takes definition source and returns mesh data + diagnostics.
// Each named cap gets a live pipeline retained for incremental
// re-evaluation and baking.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []string{},
	}

	script, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// A fresh script replaces the previous set of live pipelines.
	a.pipelines = make(map[string]*pipeline.Pipeline)

	for i, spec := range script.Caps {
		p, err := pipeline.New(a.kernel, script.Table, spec.Params)
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("%s: %v", spec.Name, err),
			})
			continue
		}
		p.Name = spec.Name

		mesh, err := p.Evaluate()
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("%s: %v", spec.Name, err),
			})
			continue
		}
		result.Warnings = append(result.Warnings, warningStrings(p)...)

		a.pipelines[spec.Name] = p
		result.Meshes = append(result.Meshes, meshData(mesh, colorPalette[i%len(colorPalette)]))
	}

	return result
}

// SetBevelRadius changes one cap's bevel radius and re-evaluates only the
// stages downstream of it, returning the new preview mesh plus any
// advisories the re-evaluation raised.
func (a *App) SetBevelRadius(name string, radius float64) (MeshData, []string, error) {
	p, ok := a.pipelines[name]
	if !ok {
		return MeshData{}, nil, fmt.Errorf("no cap named %q", name)
	}
	if err := p.SetBevelRadius(radius); err != nil {
		return MeshData{}, nil, err
	}
	return reevaluate(p)
}

// SetWallThickness changes one cap's wall thickness and re-evaluates the
// hollow, stem and composite stages.
func (a *App) SetWallThickness(name string, wall float64) (MeshData, []string, error) {
	p, ok := a.pipelines[name]
	if !ok {
		return MeshData{}, nil, fmt.Errorf("no cap named %q", name)
	}
	if err := p.SetWallThickness(wall); err != nil {
		return MeshData{}, nil, err
	}
	return reevaluate(p)
}

func reevaluate(p *pipeline.Pipeline) (MeshData, []string, error) {
	mesh, err := p.Evaluate()
	if err != nil {
		return MeshData{}, warningStrings(p), err
	}
	return meshData(mesh, ""), warningStrings(p), nil
}

// warningStrings flattens the pipeline's advisories from its most recent
// evaluation for the host.
func warningStrings(p *pipeline.Pipeline) []string {
	var out []string
	for _, w := range p.Warnings() {
		out = append(out, w.String())
	}
	return out
}

// Bake freezes one cap's pipeline and returns the immutable mesh for
// export. Repeated calls return the same mesh.
func (a *App) Bake(name string) (*kernel.Mesh, error) {
	p, ok := a.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("no cap named %q", name)
	}
	return p.Bake()
}

func meshData(m *kernel.Mesh, color string) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		Name:     m.Name,
		Color:    color,
	}
}
