package models

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestLoadModelInvalidPath(t *testing.T) {
	_, _, err := LoadModel("/nonexistent/path.glb")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadModelUnsupported(t *testing.T) {
	_, _, err := LoadModel("model.fbx")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestGLTFLoaderDefaults(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
	if loader.Logger == nil {
		t.Error("Logger should default to a no-op logger")
	}
}

func ptr(i int) *int { return &i }

// triangleDoc builds an in-memory document with one indexed triangle.
func triangleDoc() *gltf.Document {
	var data []byte
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(0), Count: 3, Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			{BufferView: ptr(1), Count: 3, Type: gltf.AccessorScalar, ComponentType: gltf.ComponentUshort},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    ptr(1),
			}},
		}},
	}
}

func TestProcessMeshReversesWinding(t *testing.T) {
	doc := triangleDoc()
	mesh := NewMesh("tri")

	hasNormals, err := NewGLTFLoader().processMesh(doc, doc.Meshes[0], mesh)
	if err != nil {
		t.Fatalf("processMesh: %v", err)
	}
	if hasNormals {
		t.Error("hasNormals = true for a primitive without NORMAL")
	}
	if mesh.TriangleCount() != 1 {
		t.Fatalf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
	want := []int{0, 2, 1}
	for i, idx := range mesh.PositionIndices {
		if idx != want[i] {
			t.Errorf("PositionIndices = %v, want %v", mesh.PositionIndices, want)
			break
		}
	}
	if mesh.Positions[1].X != 1 || mesh.Positions[2].Y != 1 {
		t.Errorf("positions = %v", mesh.Positions)
	}
}

func TestReadIndicesBounds(t *testing.T) {
	doc := triangleDoc()
	doc.Accessors[1].Count = 100
	if _, err := readIndices(doc, 1); err == nil {
		t.Error("expected error for accessor past buffer end")
	}
	if _, err := readIndices(doc, 7); !errors.Is(err, ErrBadIndex) {
		t.Errorf("err = %v, want ErrBadIndex", err)
	}
}

func TestLoadTexture(t *testing.T) {
	if _, err := LoadTexture("texture.tga"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}

	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTexture(path); err == nil {
		t.Error("expected decode error")
	}
}
