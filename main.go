package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/capwright/pkg/kernel"
)

func main() {
	var (
		scriptPath = flag.String("script", "", "keycap definition script to evaluate")
		width      = flag.String("width", "1u", "cap width in units (e.g. 1u, 1.25u, 6.25u)")
		profile    = flag.String("profile", "cherry", "profile family: cherry, oem, sa")
		row        = flag.Int("row", 3, "profile row (1-4)")
		bevelR     = flag.Float64("bevel", 1.5, "bevel radius in mm (0-2)")
		stemType   = flag.String("stem", "cherry-mx", "stem type: cherry-mx, none")
		wall       = flag.Float64("wall", 0.91, "wall thickness in mm")
		outPath    = flag.String("o", "keycap.stl", "output STL file")
	)
	flag.Parse()

	app := NewApp()

	source := ""
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		source = string(data)
	} else {
		source = fmt.Sprintf(
			`(keycap :name "cap" :width %q :profile %q :row %d :bevel %g :stem %q :wall %g)`,
			*width, *profile, *row, *bevelR, *stemType, *wall)
	}

	result := app.Evaluate(source)
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				log.Printf("error: line %d: %s", e.Line, e.Message)
			} else {
				log.Printf("error: %s", e.Message)
			}
		}
		os.Exit(1)
	}
	if len(result.Meshes) == 0 {
		log.Fatal("no caps defined")
	}

	for _, md := range result.Meshes {
		mesh, err := app.Bake(md.Name)
		if err != nil {
			log.Fatalf("bake %s: %v", md.Name, err)
		}

		path := *outPath
		if len(result.Meshes) > 1 {
			path = fmt.Sprintf("%s_%s", md.Name, *outPath)
		}
		if err := writeSTL(mesh, path); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote %s: %d triangles, %d vertices",
			path, mesh.TriangleCount(), mesh.VertexCount())
	}
}

// writeSTL emits a binary STL file from a baked mesh. Export is the
// host's side of the handoff: the core's contract ends at a valid
// manifold mesh, and writing the verified triangles directly guarantees
// the file matches what was checked.
func writeSTL(m *kernel.Mesh, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var header [80]byte
	copy(header[:], "capwright")
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	for t := 0; t < m.TriangleCount(); t++ {
		var tri [12]float32 // normal + 3 vertices
		n := m.Indices[t*3]
		tri[0] = m.Normals[n*3+0]
		tri[1] = m.Normals[n*3+1]
		tri[2] = m.Normals[n*3+2]
		for j := 0; j < 3; j++ {
			idx := m.Indices[t*3+j]
			tri[3+j*3+0] = m.Vertices[idx*3+0]
			tri[3+j*3+1] = m.Vertices[idx*3+1]
			tri[3+j*3+2] = m.Vertices[idx*3+2]
		}
		if err := binary.Write(f, binary.LittleEndian, tri); err != nil {
			return err
		}
		if err := binary.Write(f, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return nil
}
