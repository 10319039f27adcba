package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softras/pkg/math3d"
)

// quadOBJ is a right-handed, counter-clockwise quad facing +Z.
const quadOBJ = `# quad
o quad
v -1 1 0
v -1 -1 0
v 1 -1 0
v 1 1 0
vt 0 1
vt 0 0
vt 1 0
vt 1 1
f 1/1 2/2 3/3 4/4
`

func TestDecodeOBJQuad(t *testing.T) {
	mesh, err := NewOBJLoader().Decode(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if mesh.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("triangle count = %d, want 2", mesh.TriangleCount())
	}

	// Fan (0,1,2),(0,2,3) with the winding reversed
	want := []uint32{0, 2, 1, 0, 3, 2}
	for i, idx := range want {
		if mesh.Indices[i] != idx {
			t.Fatalf("indices = %v, want %v", mesh.Indices, want)
		}
	}

	// V flipped so the top-left corner samples texel row 0
	if mesh.Vertices[0].UV != math3d.V2(0, 0) {
		t.Errorf("top-left uv = %v, want (0, 0)", mesh.Vertices[0].UV)
	}

	// After the handedness flip the quad faces the viewer at -Z
	for i, v := range mesh.Vertices {
		if !vecNear(v.Normal, math3d.V3(0, 0, -1)) {
			t.Errorf("vertex %d normal = %v, want (0, 0, -1)", i, v.Normal)
		}
		if !vecNear(v.Tangent, math3d.V3(1, 0, 0)) {
			t.Errorf("vertex %d tangent = %v, want (1, 0, 0)", i, v.Tangent)
		}
		if v.Color.R != 1 || v.Color.G != 1 || v.Color.B != 1 {
			t.Errorf("vertex %d color = %v, want white", i, v.Color)
		}
	}
}

func TestDecodeOBJNoFlip(t *testing.T) {
	loader := NewOBJLoader()
	loader.FlipAxisAndWinding = false

	src := "v 0 0 1\nv 1 0 1\nv 0 1 1\nf 1 2 3\n"
	mesh, err := loader.Decode(strings.NewReader(src), "tri")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mesh.Vertices[0].Position != math3d.V3(0, 0, 1) {
		t.Errorf("position = %v, want (0, 0, 1)", mesh.Vertices[0].Position)
	}
	if mesh.Indices[1] != 1 || mesh.Indices[2] != 2 {
		t.Errorf("indices = %v, want original order", mesh.Indices)
	}
}

func TestDecodeOBJSharedVertices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f -4//1 -2//1 -1//1
`
	mesh, err := NewOBJLoader().Decode(strings.NewReader(src), "shared")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4 (deduplicated)", mesh.VertexCount())
	}
	if !vecNear(mesh.Vertices[0].Normal, math3d.V3(0, 0, -1)) {
		t.Errorf("file normal not flipped: %v", mesh.Vertices[0].Normal)
	}
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"bad float", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"no faces", "v 0 0 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewOBJLoader().Decode(strings.NewReader(tc.src), tc.name); err == nil {
				t.Errorf("expected error for %q", tc.src)
			}
		})
	}
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if mesh.Name != "quad.obj" {
		t.Errorf("name = %q, want quad.obj", mesh.Name)
	}
	if lo, _ := mesh.Bounds(); lo != math3d.V3(-1, -1, 0) {
		t.Errorf("bounds min = %v", lo)
	}
}

func TestLoadOBJInvalidPath(t *testing.T) {
	if _, err := LoadOBJ("/nonexistent/path.obj"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}
