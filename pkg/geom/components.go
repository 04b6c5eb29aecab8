package geom

// SplitComponents partitions a mesh's triangles into maximal connected
// components. Two triangles are connected when they share a vertex index
// (which covers shared edges as well). Every source triangle lands in
// exactly one component; component order follows the first triangle of
// each component in source order, and triangles keep their source order
// within a component.
func SplitComponents(m Mesh) []Mesh {
	if len(m.Triangles) == 0 {
		return nil
	}

	uf := newUnionFind(len(m.Positions))
	for _, tri := range m.Triangles {
		uf.union(int(tri[0]), int(tri[1]))
		uf.union(int(tri[0]), int(tri[2]))
	}

	// Group triangles by the root of their first vertex.
	order := make([]int, 0)
	groups := make(map[int][]Triangle)
	for _, tri := range m.Triangles {
		root := uf.find(int(tri[0]))
		if _, seen := groups[root]; !seen {
			order = append(order, root)
		}
		groups[root] = append(groups[root], tri)
	}

	components := make([]Mesh, 0, len(order))
	for _, root := range order {
		components = append(components, extract(m, groups[root]))
	}
	return components
}

// extract builds a standalone mesh from a triangle subset, remapping
// indices to a compact position list.
func extract(m Mesh, tris []Triangle) Mesh {
	remap := make(map[uint32]uint32)
	var out Mesh
	for _, tri := range tris {
		var mapped Triangle
		for i, idx := range tri {
			newIdx, ok := remap[idx]
			if !ok {
				newIdx = uint32(len(out.Positions))
				remap[idx] = newIdx
				out.Positions = append(out.Positions, m.Positions[idx])
			}
			mapped[i] = newIdx
		}
		out.Triangles = append(out.Triangles, mapped)
	}
	return out
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
