package assemble

import (
	"github.com/katalvlaran/trusstopo/kernel"
	"github.com/katalvlaran/trusstopo/structure"
)

// Build assembles the global sparse stiffness matrix K (2N×2N for N
// nodes) and dense load vector F from s, using cache to memoize each
// spring's element stiffness matrix by canonical key. Returns K, F, and
// the id→position map used to derive the DOF ordering (position p gets
// DOFs 2p, 2p+1).
//
// Procedure (spec.md §4.2):
//  1. Sort node ids; position p[nid] = index in sorted order.
//  2. F[2p] += fx, F[2p+1] += fz for each node.
//  3. For each spring, compute Ke and scatter-add into K at rows/cols
//     {2pi, 2pi+1, 2pj, 2pj+1}.
//
// Returns kernel.ErrZeroLengthSpring if any spring's endpoints coincide.
func Build(s *structure.Structure, cache *kernel.Cache) (*CSR, []float64, map[int]int, error) {
	pos := s.IDToPos()
	n := len(pos)
	ndofs := 2 * n

	f := make([]float64, ndofs)
	for id, node := range s.Nodes {
		p := pos[id]
		f[2*p] += node.Fx
		f[2*p+1] += node.Fz
	}

	b := newBuilder(ndofs, 16*len(s.Springs))
	for _, sp := range s.Springs {
		ni := s.Nodes[sp.I]
		nj := s.Nodes[sp.J]
		ke, err := cache.Get(sp.I, sp.J, ni.X, ni.Z, nj.X, nj.Z, sp.K)
		if err != nil {
			return nil, nil, nil, err
		}

		pi, pj := pos[sp.I], pos[sp.J]
		dofs := [4]int{2 * pi, 2*pi + 1, 2 * pj, 2*pj + 1}
		for a := 0; a < 4; a++ {
			for c := 0; c < 4; c++ {
				if ke[a][c] != 0 {
					b.add(dofs[a], dofs[c], ke[a][c])
				}
			}
		}
	}

	return b.finalize(), f, pos, nil
}
