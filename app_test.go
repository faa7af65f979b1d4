package main

import (
	"testing"

	"github.com/chazu/capwright/pkg/kernel"
	"github.com/chazu/capwright/pkg/kernel/sdfx"
)

func testApp() *App {
	return NewAppWithKernel(sdfx.NewWithCells(48))
}

func TestAppEvaluate(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`
(keycap :name "esc" :width "1u" :profile :cherry :row 1 :bevel 0.4)
(keycap :name "space" :width "6.25u" :profile :cherry :row 3 :bevel 0.4)
`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(result.Meshes))
	}

	names := map[string]bool{}
	for _, m := range result.Meshes {
		names[m.Name] = true
		if len(m.Vertices) == 0 || len(m.Indices) == 0 {
			t.Fatalf("mesh %q is empty", m.Name)
		}
		if m.Color == "" {
			t.Fatalf("mesh %q has no color", m.Name)
		}
	}
	if !names["esc"] || !names["space"] {
		t.Fatalf("mesh names = %v", names)
	}
	if result.Meshes[0].Color == result.Meshes[1].Color {
		t.Fatal("caps share a palette color")
	}
}

func TestAppEvaluateError(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(keycap :row 9)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected errors")
	}
	if len(result.Meshes) != 0 {
		t.Fatalf("got %d meshes, want none", len(result.Meshes))
	}
}

func TestAppSetBevelRadius(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(keycap :name "esc" :bevel 0.4)`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}

	md, warns, err := app.SetBevelRadius("esc", 0.8)
	if err != nil {
		t.Fatalf("SetBevelRadius: %v", err)
	}
	if len(md.Vertices) == 0 {
		t.Fatal("updated mesh is empty")
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}

	if _, _, err := app.SetBevelRadius("esc", 5); err == nil {
		t.Fatal("expected error for out-of-range radius")
	}
	if _, _, err := app.SetBevelRadius("nope", 0.5); err == nil {
		t.Fatal("expected error for unknown cap")
	}
}

func TestAppSetWallThicknessWarns(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(keycap :name "esc" :bevel 0.4)`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	// An infeasible wall is clamped during the incremental re-evaluation
	// and the advisory must reach the host, not a stale result.
	md, warns, err := app.SetWallThickness("esc", 10)
	if err != nil {
		t.Fatalf("SetWallThickness: %v", err)
	}
	if len(md.Vertices) == 0 {
		t.Fatal("updated mesh is empty")
	}
	if len(warns) != 1 {
		t.Fatalf("warnings = %v, want exactly one clamp advisory", warns)
	}
}

func TestAppBake(t *testing.T) {
	app := testApp()
	result := app.Evaluate(`(keycap :name "esc" :bevel 0.4)`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}

	baked, err := app.Bake("esc")
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if c := kernel.CheckSolid(baked); !c.Watertight() {
		t.Fatalf("baked mesh not watertight: %+v", c)
	}

	again, err := app.Bake("esc")
	if err != nil {
		t.Fatalf("second Bake: %v", err)
	}
	if again != baked {
		t.Fatal("repeated bake returned a different mesh")
	}

	// Baked caps refuse parameter edits.
	if _, _, err := app.SetBevelRadius("esc", 1.0); err == nil {
		t.Fatal("expected error editing a baked cap")
	}

	if _, err := app.Bake("nope"); err == nil {
		t.Fatal("expected error for unknown cap")
	}
}
