// Package scene extracts named collision meshes from glTF scene
// documents: it walks the node tree, composes world transforms, and
// triangulates each mesh-bearing node's primitives into one buffer.
package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	stdmath "math"

	"github.com/qmuntal/gltf"

	"github.com/voxhull/collider-uploader/pkg/math"
)

var (
	// ErrBufferData means the document references binary payloads that
	// were not loaded. Geometry cannot exist without buffer data, so
	// this aborts the whole load.
	ErrBufferData = errors.New("buffer data missing")
	// ErrAccessorLayout means an accessor's component type or element
	// type is not one this pipeline reads.
	ErrAccessorLayout = errors.New("unsupported accessor layout")
)

// PlaceholderName is assigned to bodies from nodes without a name.
const PlaceholderName = "unnamed"

// Document wraps a parsed glTF document with its buffers loaded.
// Both container forms are supported: a .gltf manifest with external
// buffer files, or a self-contained .glb binary.
type Document struct {
	doc  *gltf.Document
	path string
}

// Open parses the document at path and verifies that every buffer's
// payload was imported. Failure to read a referenced buffer file is
// ErrBufferData, not a parse failure: the manifest was fine, but the
// geometry it promises cannot be loaded.
func Open(path string) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && pathErr.Path != path {
			return nil, fmt.Errorf("importing buffer %s: %v: %w", pathErr.Path, err, ErrBufferData)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	for i, buf := range doc.Buffers {
		if buf.ByteLength > 0 && len(buf.Data) == 0 {
			return nil, fmt.Errorf("buffer %d (%d bytes): %w", i, buf.ByteLength, ErrBufferData)
		}
	}

	return &Document{doc: doc, path: path}, nil
}

// accessorBytes resolves an accessor to its backing byte slice and
// element stride.
func (d *Document) accessorBytes(acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor without buffer view: %w", ErrAccessorLayout)
	}
	view := d.doc.BufferViews[*acc.BufferView]
	buf := d.doc.Buffers[view.Buffer]

	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elemSize
	}

	start := int(view.ByteOffset + acc.ByteOffset)
	need := stride*(int(acc.Count)-1) + elemSize
	if acc.Count == 0 {
		need = 0
	}
	if start+need > len(buf.Data) {
		return nil, 0, fmt.Errorf("accessor overruns buffer %d: %w", view.Buffer, ErrBufferData)
	}
	return buf.Data[start:], stride, nil
}

// readPositions decodes a vec3 float accessor into world-less points.
func (d *Document) readPositions(accIdx int) ([]math.Vec3, error) {
	acc := d.doc.Accessors[accIdx]
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("POSITION accessor %d is not vec3 float: %w", accIdx, ErrAccessorLayout)
	}

	data, stride, err := d.accessorBytes(acc, 12)
	if err != nil {
		return nil, err
	}

	out := make([]math.Vec3, acc.Count)
	for i := range out {
		base := i * stride
		out[i] = math.Vec3{
			X: stdmath.Float32frombits(binary.LittleEndian.Uint32(data[base:])),
			Y: stdmath.Float32frombits(binary.LittleEndian.Uint32(data[base+4:])),
			Z: stdmath.Float32frombits(binary.LittleEndian.Uint32(data[base+8:])),
		}
	}
	return out, nil
}

// readIndices decodes a scalar index accessor. Unsigned 8, 16, and
// 32 bit components are widened to uint32.
func (d *Document) readIndices(accIdx int) ([]uint32, error) {
	acc := d.doc.Accessors[accIdx]
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor %d is not scalar: %w", accIdx, ErrAccessorLayout)
	}

	var elemSize int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		elemSize = 1
	case gltf.ComponentUshort:
		elemSize = 2
	case gltf.ComponentUint:
		elemSize = 4
	default:
		return nil, fmt.Errorf("index accessor %d component type %v: %w", accIdx, acc.ComponentType, ErrAccessorLayout)
	}

	data, stride, err := d.accessorBytes(acc, elemSize)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	for i := range out {
		base := i * stride
		switch elemSize {
		case 1:
			out[i] = uint32(data[base])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[base:]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data[base:])
		}
	}
	return out, nil
}

// localTransform returns a node's local transform. glTF nodes carry
// either an explicit column-major matrix or TRS components; a non-identity
// matrix wins, otherwise T*R*S is composed.
func localTransform(node *gltf.Node) math.Mat4 {
	var m math.Mat4
	identity := true
	zero := true
	for i, v := range node.Matrix {
		m[i] = v
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if v != want {
			identity = false
		}
		if v != 0 {
			zero = false
		}
	}
	if !identity && !zero {
		return m
	}

	return math.Compose(
		math.Vec3{
			X: node.Translation[0],
			Y: node.Translation[1],
			Z: node.Translation[2],
		},
		math.Quat{
			X: node.Rotation[0],
			Y: node.Rotation[1],
			Z: node.Rotation[2],
			W: node.Rotation[3],
		},
		math.Vec3{
			X: node.Scale[0],
			Y: node.Scale[1],
			Z: node.Scale[2],
		},
	)
}
