package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/taigrr/softras/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	SmoothNormals    bool
	// FlipHandedness converts glTF's right-handed, counter-clockwise data
	// to the renderer's left-handed, clockwise convention.
	FlipHandedness bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		FlipHandedness:   true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// primitiveData is one decoded triangle primitive before merging.
type primitiveData struct {
	vertices    []Vertex
	indices     []uint32
	topology    Topology
	hasNormals  bool
	hasTangents bool
}

// FromDocument converts every triangle primitive of every mesh in doc into
// a single Mesh. A document holding exactly one strip primitive keeps strip
// topology; anything else is merged into a triangle list.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	var prims []primitiveData
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			pd, ok, err := l.readPrimitive(doc, p)
			if err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
			if ok {
				prims = append(prims, pd)
			}
		}
	}
	if len(prims) == 0 {
		return nil, fmt.Errorf("no triangle primitives in %s", name)
	}

	topology := TriangleList
	if len(prims) == 1 {
		topology = prims[0].topology
	}
	mesh := NewMesh(name, topology)

	hasNormals, hasTangents := true, true
	for _, p := range prims {
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, p.vertices...)

		indices := p.indices
		if p.topology == TriangleStrip && topology == TriangleList {
			indices = stripToList(indices)
		}
		for _, idx := range indices {
			mesh.Indices = append(mesh.Indices, base+idx)
		}
		hasNormals = hasNormals && p.hasNormals
		hasTangents = hasTangents && p.hasTangents
	}

	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}
	if !hasTangents {
		mesh.CalculateTangents()
	}

	return mesh, nil
}

// readPrimitive extracts geometry from a GLTF primitive. Non-triangle
// primitives (points, lines) report ok == false.
func (l *GLTFLoader) readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (primitiveData, bool, error) {
	var pd primitiveData
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		pd.topology = TriangleList
	case gltf.PrimitiveTriangleStrip:
		pd.topology = TriangleStrip
	default:
		return pd, false, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return pd, false, nil
	}
	positions, err := readFloatAccessor(doc, posIdx)
	if err != nil {
		return pd, false, fmt.Errorf("read positions: %w", err)
	}

	attr := func(name string) ([][4]float32, error) {
		idx, ok := prim.Attributes[name]
		if !ok {
			return nil, nil
		}
		return readFloatAccessor(doc, idx)
	}

	normals, err := attr(gltf.NORMAL)
	if err != nil {
		return pd, false, fmt.Errorf("read normals: %w", err)
	}
	tangents, err := attr(gltf.TANGENT)
	if err != nil {
		return pd, false, fmt.Errorf("read tangents: %w", err)
	}
	uvs, err := attr(gltf.TEXCOORD_0)
	if err != nil {
		return pd, false, fmt.Errorf("read uvs: %w", err)
	}
	colors, err := attr(gltf.COLOR_0)
	if err != nil {
		return pd, false, fmt.Errorf("read colors: %w", err)
	}

	pd.hasNormals = len(normals) == len(positions)
	pd.hasTangents = len(tangents) == len(positions) && pd.hasNormals

	z := 1.0
	if l.FlipHandedness {
		z = -1
	}
	vec := func(f [4]float32) math3d.Vec3 {
		return math3d.V3(float64(f[0]), float64(f[1]), float64(f[2])*z)
	}

	pd.vertices = make([]Vertex, len(positions))
	for i := range positions {
		v := Vertex{
			Position: vec(positions[i]),
			Color:    colorful.Color{R: 1, G: 1, B: 1},
		}
		if pd.hasNormals {
			v.Normal = vec(normals[i]).Normalize()
		}
		if pd.hasTangents {
			v.Tangent = vec(tangents[i]).Normalize()
		}
		if i < len(uvs) {
			// glTF uv (0,0) is the top-left texel, same as the sampler
			v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
		}
		if i < len(colors) {
			v.Color = colorful.Color{R: float64(colors[i][0]), G: float64(colors[i][1]), B: float64(colors[i][2])}
		}
		pd.vertices[i] = v
	}

	if prim.Indices != nil {
		pd.indices, err = readIndices(doc, *prim.Indices)
		if err != nil {
			return pd, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, vertices are consumed in order
		pd.indices = make([]uint32, len(positions))
		for i := range pd.indices {
			pd.indices[i] = uint32(i)
		}
	}

	if l.FlipHandedness {
		pd.indices = reverseWinding(pd.indices, pd.topology)
	}
	return pd, true, nil
}

// reverseWinding flips the orientation of every triangle. Lists swap the
// last two indices of each triangle; strips gain a leading degenerate
// triangle, which shifts every real triangle onto the opposite parity.
func reverseWinding(indices []uint32, topology Topology) []uint32 {
	if len(indices) == 0 {
		return indices
	}
	if topology == TriangleStrip {
		return append([]uint32{indices[0]}, indices...)
	}
	out := make([]uint32, len(indices))
	copy(out, indices)
	for i := 0; i+2 < len(out); i += 3 {
		out[i+1], out[i+2] = out[i+2], out[i+1]
	}
	return out
}

// stripToList expands strip indices into an equivalent triangle list.
func stripToList(indices []uint32) []uint32 {
	strip := &Mesh{Indices: indices, Topology: TriangleStrip}
	out := make([]uint32, 0, strip.TriangleCount()*3)
	for _, t := range strip.Triangles() {
		if t.Sign < 0 {
			out = append(out, t.Index[1], t.Index[0], t.Index[2])
		} else {
			out = append(out, t.Index[0], t.Index[1], t.Index[2])
		}
	}
	return out
}

// componentCount returns the number of components of an accessor type.
func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	default:
		return 0
	}
}

// accessorBytes returns the backing bytes, start offset and element stride
// of an accessor.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	end := start + (accessor.Count-1)*stride + elemSize
	if accessor.Count > 0 && end > len(buffer.Data) {
		return nil, 0, 0, fmt.Errorf("accessor overruns buffer (%d > %d)", end, len(buffer.Data))
	}
	return buffer.Data, start, stride, nil
}

// readFloatAccessor reads a SCALAR..VEC4 accessor into padded float32
// quads. Normalized unsigned byte and short components map to [0,1].
func readFloatAccessor(doc *gltf.Document, accessorIdx int) ([][4]float32, error) {
	accessor := doc.Accessors[accessorIdx]
	n := componentCount(accessor.Type)
	if n == 0 {
		return nil, fmt.Errorf("unsupported accessor type %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentFloat:
		size = 4
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUbyte:
		size = 1
	default:
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, n*size)
	if err != nil {
		return nil, err
	}

	result := make([][4]float32, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		result[i][3] = 1
		for j := range n {
			b := data[offset+j*size:]
			switch accessor.ComponentType {
			case gltf.ComponentFloat:
				result[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(b))
			case gltf.ComponentUshort:
				result[i][j] = float32(binary.LittleEndian.Uint16(b)) / math.MaxUint16
			case gltf.ComponentUbyte:
				result[i][j] = float32(b[0]) / math.MaxUint8
			}
		}
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]uint32, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, accessor.Count)
	for i := range accessor.Count {
		b := data[start+i*stride:]
		switch size {
		case 1:
			result[i] = uint32(b[0])
		case 2:
			result[i] = uint32(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = binary.LittleEndian.Uint32(b)
		}
	}
	return result, nil
}

// LoadGLTFWithTextures loads a GLTF file and extracts its images.
// Returns the mesh and a map of image index to encoded image data.
func LoadGLTFWithTextures(path string) (*Mesh, map[int][]byte, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	textures := make(map[int][]byte)
	for i, img := range doc.Images {
		if img.BufferView != nil {
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				start := bv.ByteOffset
				end := start + bv.ByteLength
				textures[i] = buf.Data[start:end]
			}
		} else if img.URI != "" {
			// External texture file
			data, err := os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
			if err == nil {
				textures[i] = data
			}
		}
	}

	return mesh, textures, nil
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable image. The texture is nil if none is embedded.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, textures, err := LoadGLTFWithTextures(path)
	if err != nil {
		return nil, nil, err
	}

	// Lowest image index first so the choice is stable
	for _, i := range slices.Sorted(maps.Keys(textures)) {
		data := textures[i]
		if len(data) == 0 {
			continue
		}
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return mesh, img, nil
		}
	}

	return mesh, nil, nil
}
