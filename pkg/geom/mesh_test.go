package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxhull/collider-uploader/pkg/math"
)

func TestMeshValidate(t *testing.T) {
	m := Mesh{
		Positions: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		Triangles: []Triangle{{0, 1, 2}},
	}
	assert.NoError(t, m.Validate())

	m.Triangles = append(m.Triangles, Triangle{0, 1, 3})
	assert.ErrorIs(t, m.Validate(), ErrIndexOutOfRange)
}

func TestMeshValidateEmpty(t *testing.T) {
	assert.NoError(t, Mesh{}.Validate())
}

func TestConvexHullSetBodies(t *testing.T) {
	set := ConvexHullSet{
		Name: "wall",
		Hulls: []Mesh{
			{Positions: []math.Vec3{{X: 1}}},
			{Positions: []math.Vec3{{X: 2}}},
		},
	}

	bodies := set.Bodies()
	assert.Len(t, bodies, 2)
	for _, b := range bodies {
		assert.Equal(t, "wall", b.Name)
		assert.Equal(t, BodyHull, b.Kind)
	}
}
