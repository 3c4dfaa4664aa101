package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/raster/pkg/math3d"
)

var (
	// ErrNoMeshes is returned when a file holds no triangle geometry.
	ErrNoMeshes = errors.New("no triangle meshes")
	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// GLTFLoader loads glTF/GLB files into Mesh format.
type GLTFLoader struct {
	// SmoothNormals generates averaged normals when the file has none.
	SmoothNormals bool
	Logger        *zap.Logger
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SmoothNormals: true,
		Logger:        zap.NewNop(),
	}
}

// LoadModel loads a mesh and its first embedded texture, if any, choosing the
// loader by file extension.
func LoadModel(path string) (*Mesh, image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return NewGLTFLoader().Load(path)
	default:
		return nil, nil, fmt.Errorf("load %s: %w", path, ErrUnsupportedFormat)
	}
}

// Load reads a glTF or GLB file. All triangle primitives are merged into one
// mesh. The returned image is the first decodable embedded texture and may be
// nil.
func (l *GLTFLoader) Load(path string) (*Mesh, image.Image, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	hasNormals := true
	for _, m := range doc.Meshes {
		withNormals, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && withNormals
	}
	if mesh.TriangleCount() == 0 {
		return nil, nil, fmt.Errorf("load %s: %w", path, ErrNoMeshes)
	}
	if !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.Normals, mesh.NormalIndices = nil, nil
		}
	}
	mesh.CalculateBounds()
	if err := mesh.Validate(); err != nil {
		return nil, nil, err
	}

	tex := firstTexture(doc, filepath.Dir(path), log)
	log.Debug("loaded gltf",
		zap.String("path", path),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Bool("texture", tex != nil),
	)
	return mesh, tex, nil
}

// processMesh appends the triangle primitives of m. It reports whether every
// primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}
		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		}
		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return false, fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		basePos, baseNorm, baseUV := len(mesh.Positions), len(mesh.Normals), len(mesh.UVs)
		mesh.Positions = append(mesh.Positions, positions...)
		mesh.Normals = append(mesh.Normals, normals...)
		mesh.UVs = append(mesh.UVs, uvs...)
		hasNormals = hasNormals && len(normals) == len(positions)

		// glTF front faces are counter-clockwise; the rasterizer expects
		// clockwise, so the last two corners swap.
		for i := 0; i+2 < len(indices); i += 3 {
			tri := [3]int{indices[i], indices[i+2], indices[i+1]}
			for _, idx := range tri {
				mesh.PositionIndices = append(mesh.PositionIndices, basePos+idx)
				if len(normals) == len(positions) {
					mesh.NormalIndices = append(mesh.NormalIndices, baseNorm+idx)
				}
				if len(uvs) == len(positions) {
					mesh.UVIndices = append(mesh.UVIndices, baseUV+idx)
				}
			}
		}
	}
	if !hasNormals {
		mesh.NormalIndices = nil
	}
	if len(mesh.UVIndices) != len(mesh.PositionIndices) {
		mesh.UVIndices = nil
	}
	return hasNormals, nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrBadIndex)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		f := floats[i*3:]
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrBadIndex)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		// glTF UV origin is the top left, matching Texture.Sample.
		result[i] = math3d.V2(float64(floats[i*2]), float64(floats[i*2+1]))
	}
	return result, nil
}

// readIndices reads a scalar index accessor of any unsigned component type.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrBadIndex)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR, got %v", accessor.Type)
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
		return nil, fmt.Errorf("unsupported index component type: %v", accessor.ComponentType)
	}
	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// readFloats reads count*components little-endian float32 values.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, components int) ([]float32, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type: %v", accessor.ComponentType)
	}
	data, stride, err := accessorBytes(doc, accessor, components*4)
	if err != nil {
		return nil, err
	}
	result := make([]float32, accessor.Count*components)
	for i := range accessor.Count {
		for j := range components {
			bits := binary.LittleEndian.Uint32(data[i*stride+j*4:])
			result[i*components+j] = math32.Float32frombits(bits)
		}
	}
	return result, nil
}

// accessorBytes returns the buffer bytes starting at the accessor's first
// element and the element stride, after checking the accessor fits.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", *accessor.BufferView, ErrBadIndex)
	}
	view := doc.BufferViews[*accessor.BufferView]
	if view.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d: %w", view.Buffer, ErrBadIndex)
	}
	data := doc.Buffers[view.Buffer].Data
	if data == nil {
		return nil, 0, errors.New("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + accessor.ByteOffset
	if start > len(data) {
		return nil, 0, fmt.Errorf("accessor offset %d past buffer end %d", start, len(data))
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(data) {
			return nil, 0, fmt.Errorf("accessor needs %d bytes, buffer has %d", end, len(data))
		}
	}
	return data[start:], stride, nil
}

// firstTexture decodes the first image of the document, embedded or next to
// the file. Undecodable images are skipped.
func firstTexture(doc *gltf.Document, dir string, log *zap.Logger) image.Image {
	for i, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil && *img.BufferView < len(doc.BufferViews):
			bv := doc.BufferViews[*img.BufferView]
			if bv.Buffer < len(doc.Buffers) {
				buf := doc.Buffers[bv.Buffer].Data
				if end := bv.ByteOffset + bv.ByteLength; end <= len(buf) {
					data = buf[bv.ByteOffset:end]
				}
			}
		case img.URI != "":
			b, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				log.Warn("read texture", zap.Int("image", i), zap.Error(err))
				continue
			}
			data = b
		}
		if len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			log.Warn("decode texture", zap.Int("image", i), zap.Error(err))
			continue
		}
		return decoded
	}
	return nil
}
