package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/softras/pkg/math3d"
)

// OBJLoader parses Wavefront OBJ geometry into an indexed triangle list.
// Materials (mtllib/usemtl) are ignored; textures are bound by the scene.
type OBJLoader struct {
	// FlipAxisAndWinding converts right-handed, counter-clockwise files to
	// the left-handed, clockwise convention used by the renderer. It negates
	// Z, reverses each face, and flips V so uv (0,0) is the top-left texel.
	FlipAxisAndWinding bool
	// SmoothNormals selects averaged normals when the file has none.
	SmoothNormals bool
}

// NewOBJLoader creates an OBJ loader with default options.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{
		FlipAxisAndWinding: true,
		SmoothNormals:      true,
	}
}

// LoadOBJ loads a Wavefront .obj file with default options.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().Load(path)
}

// Load opens and decodes an .obj file.
func (l *OBJLoader) Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := l.Decode(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("decode obj %s: %w", path, err)
	}
	return mesh, nil
}

// objKey identifies a unique position/uv/normal combination.
type objKey struct {
	v, vt, vn int
}

type objDecoder struct {
	loader    *OBJLoader
	positions []math3d.Vec3
	uvs       []math3d.Vec2
	normals   []math3d.Vec3
	lookup    map[objKey]uint32
	mesh      *Mesh
	line      int
	hasNormal bool
}

// Decode parses OBJ text from r.
func (l *OBJLoader) Decode(r io.Reader, name string) (*Mesh, error) {
	dec := &objDecoder{
		loader: l,
		lookup: make(map[objKey]uint32),
		mesh:   NewMesh(name, TriangleList),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	mesh := dec.mesh
	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	if !dec.hasNormal {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	mesh.CalculateTangents()
	return mesh, nil
}

func (d *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := d.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p := math3d.V3(v[0], v[1], v[2])
		if d.loader.FlipAxisAndWinding {
			p.Z = -p.Z
		}
		d.positions = append(d.positions, p)
	case "vt":
		v, err := d.parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		uv := math3d.V2(v[0], v[1])
		if d.loader.FlipAxisAndWinding {
			uv.Y = 1 - uv.Y
		}
		d.uvs = append(d.uvs, uv)
	case "vn":
		v, err := d.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		n := math3d.V3(v[0], v[1], v[2])
		if d.loader.FlipAxisAndWinding {
			n.Z = -n.Z
		}
		d.normals = append(d.normals, n.Normalize())
	case "f":
		return d.parseFace(fields[1:])
	}
	// o, g, s, mtllib, usemtl and unknown statements are ignored
	return nil
}

func (d *objDecoder) parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, d.errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, d.errorf("parse %q: %w", fields[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// parseFace fan-triangulates a polygon face.
func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return d.errorf("face with %d vertices", len(fields))
	}

	corners := make([]uint32, len(fields))
	for i, f := range fields {
		idx, err := d.vertexIndex(f)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	for k := 1; k+1 < len(corners); k++ {
		if d.loader.FlipAxisAndWinding {
			d.mesh.Indices = append(d.mesh.Indices, corners[0], corners[k+1], corners[k])
		} else {
			d.mesh.Indices = append(d.mesh.Indices, corners[0], corners[k], corners[k+1])
		}
	}
	return nil
}

// vertexIndex resolves a "v", "v/vt", "v//vn" or "v/vt/vn" reference to a
// deduplicated mesh vertex.
func (d *objDecoder) vertexIndex(ref string) (uint32, error) {
	parts := strings.Split(ref, "/")
	key := objKey{v: -1, vt: -1, vn: -1}

	var err error
	if key.v, err = d.resolve(parts[0], len(d.positions)); err != nil {
		return 0, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = d.resolve(parts[1], len(d.uvs)); err != nil {
			return 0, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = d.resolve(parts[2], len(d.normals)); err != nil {
			return 0, err
		}
		d.hasNormal = true
	}

	if idx, ok := d.lookup[key]; ok {
		return idx, nil
	}

	v := Vertex{
		Position: d.positions[key.v],
		Color:    colorful.Color{R: 1, G: 1, B: 1},
	}
	if key.vt >= 0 {
		v.UV = d.uvs[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = d.normals[key.vn]
	}

	idx := uint32(len(d.mesh.Vertices))
	d.mesh.Vertices = append(d.mesh.Vertices, v)
	d.lookup[key] = idx
	return idx, nil
}

// resolve converts a 1-based (or negative, relative) OBJ index into a
// 0-based slice index.
func (d *objDecoder) resolve(s string, count int) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, d.errorf("parse index %q: %w", s, err)
	}

	var idx int
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		idx = count + val
	default:
		return 0, d.errorf("index 0 is invalid")
	}
	if idx < 0 || idx >= count {
		return 0, d.errorf("index %d out of range (%d defined)", val, count)
	}
	return idx, nil
}

func (d *objDecoder) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %w", d.line, fmt.Errorf(format, args...))
}
