package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhull/collider-uploader/pkg/math"
)

// worldTriangles resolves a mesh's triangles to position triples so
// remapped component meshes can be compared against the source.
func worldTriangles(m Mesh) [][3]math.Vec3 {
	out := make([][3]math.Vec3, 0, len(m.Triangles))
	for _, tri := range m.Triangles {
		out = append(out, [3]math.Vec3{
			m.Positions[tri[0]],
			m.Positions[tri[1]],
			m.Positions[tri[2]],
		})
	}
	return out
}

func TestSplitComponentsEmpty(t *testing.T) {
	assert.Nil(t, SplitComponents(Mesh{}))
}

func TestSplitComponentsSingle(t *testing.T) {
	m := Mesh{
		Positions: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}},
		Triangles: []Triangle{{0, 1, 2}, {1, 2, 3}},
	}

	comps := SplitComponents(m)
	require.Len(t, comps, 1)
	assert.Equal(t, worldTriangles(m), worldTriangles(comps[0]))
}

func TestSplitComponentsDisjoint(t *testing.T) {
	// Two triangles with no shared vertices.
	m := Mesh{
		Positions: []math.Vec3{
			{X: 0}, {X: 1}, {Y: 1},
			{X: 10}, {X: 11}, {X: 10, Y: 1},
		},
		Triangles: []Triangle{{0, 1, 2}, {3, 4, 5}},
	}

	comps := SplitComponents(m)
	require.Len(t, comps, 2)
	assert.Len(t, comps[0].Triangles, 1)
	assert.Len(t, comps[1].Triangles, 1)
	assert.Len(t, comps[0].Positions, 3)
	assert.Len(t, comps[1].Positions, 3)
}

func TestSplitComponentsSharedVertexMerges(t *testing.T) {
	// Triangles joined only through vertex 2 still form one component.
	m := Mesh{
		Positions: []math.Vec3{{X: 0}, {X: 1}, {Y: 1}, {X: 2}, {X: 3}},
		Triangles: []Triangle{{0, 1, 2}, {2, 3, 4}},
	}

	comps := SplitComponents(m)
	require.Len(t, comps, 1)
	assert.Len(t, comps[0].Triangles, 2)
}

func TestSplitComponentsPartitionLaw(t *testing.T) {
	// Three islands; the union of component triangles must equal the
	// source triangle set exactly once, in source order per component.
	var m Mesh
	for i := 0; i < 3; i++ {
		base := uint32(len(m.Positions))
		off := float32(i * 10)
		m.Positions = append(m.Positions,
			math.Vec3{X: off}, math.Vec3{X: off + 1}, math.Vec3{X: off, Y: 1}, math.Vec3{X: off + 1, Y: 1},
		)
		m.Triangles = append(m.Triangles,
			Triangle{base, base + 1, base + 2},
			Triangle{base + 1, base + 3, base + 2},
		)
	}

	comps := SplitComponents(m)
	require.Len(t, comps, 3)

	var union [][3]math.Vec3
	for _, c := range comps {
		require.NoError(t, c.Validate())
		union = append(union, worldTriangles(c)...)
	}
	assert.Equal(t, worldTriangles(m), union)
}
