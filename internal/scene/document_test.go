package scene

import (
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/voxhull/collider-uploader/pkg/math"
)

func TestLocalTransformExplicitMatrix(t *testing.T) {
	node := &gltf.Node{
		Matrix: [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			5, 6, 7, 1,
		},
	}

	got := localTransform(node).TransformVec3(math.Vec3{})
	if got != (math.Vec3{X: 5, Y: 6, Z: 7}) {
		t.Errorf("explicit matrix translation: got %v, want (5, 6, 7)", got)
	}
}

func TestLocalTransformTRSFallback(t *testing.T) {
	// A zero-valued matrix means "no explicit matrix": the TRS
	// components are composed instead.
	node := &gltf.Node{
		Translation: [3]float32{1, 2, 3},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{2, 2, 2},
	}

	got := localTransform(node).TransformVec3(math.Vec3{X: 1})
	want := math.Vec3{X: 3, Y: 2, Z: 3} // scale then translate
	if got.Sub(want).Length() > 1e-6 {
		t.Errorf("TRS fallback: got %v, want %v", got, want)
	}
}

func TestLocalTransformIdentityMatrixUsesTRS(t *testing.T) {
	node := &gltf.Node{
		Matrix: [16]float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		},
		Translation: [3]float32{4, 0, 0},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}

	got := localTransform(node).TransformVec3(math.Vec3{})
	if got != (math.Vec3{X: 4}) {
		t.Errorf("identity matrix should defer to TRS: got %v, want (4, 0, 0)", got)
	}
}
