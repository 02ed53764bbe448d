// Package solve partitions a structure.Structure into free/fixed DOFs,
// assembles via package assemble, and solves K_ff·u_f = F_f with a
// gonum-backed direct factorization (Cholesky on the SPD fast path, LU
// as fallback), following spec.md's free-DOF-partition Dirichlet policy
// and retry-once regularization.
//
// Determinism: gonum's dense Cholesky/LU run single-threaded for inputs
// of this size, so repeated calls on identical input produce bit-identical
// output on one platform; this package starts no goroutines of its own
// (spec.md §6).
package solve

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/trusstopo/assemble"
	"github.com/katalvlaran/trusstopo/kernel"
	"github.com/katalvlaran/trusstopo/structure"
)

// Sentinel errors for the linear solve.
var (
	// ErrSingular indicates K_ff lacks rank even after one regularized retry.
	ErrSingular = errors.New("solve: singular stiffness matrix")

	// ErrNonFinite names the NaN/Inf-solution condition. Solve and
	// SolveWithCache do not return it: a non-finite candidate solution
	// counts as a failed factorization, so such a solve ends with
	// ErrSingular.
	ErrNonFinite = errors.New("solve: non-finite displacement")
)

// regularizationEps is the fallback epsilon when mean(|diag(K_ff)|) is
// zero or non-finite.
const regularizationEps = 1e-9

// singularCondThreshold is the condition-number cutoff above which a
// factorization is treated as numerically singular, following the
// standard 1/sqrt(machine epsilon) rule of thumb for float64.
const singularCondThreshold = 1e8

// Disp is a node's resolved (ux, uz) displacement.
type Disp struct {
	Ux, Uz float64
}

// Solve assembles s with a fresh element-stiffness cache and solves for
// nodal displacements. Callers that solve the same structure repeatedly
// across many small edits (the optimizer's main loop) should use
// SolveWithCache and reuse one *kernel.Cache instead, since most
// element stiffnesses are unchanged between consecutive iterations.
func Solve(s *structure.Structure) (u []float64, disp map[int]Disp, err error) {
	return SolveWithCache(s, kernel.NewCache())
}

// SolveWithCache is Solve with an explicit, reusable element-stiffness
// cache. u has length 2N in the canonical DOF order (node at sorted
// position p occupies DOFs 2p, 2p+1); disp is the per-node (ux, uz)
// lookup derived from u.
//
// Fixed DOFs are zero in u by construction (Dirichlet boundary
// condition); only the free-DOF block is factorized and solved.
func SolveWithCache(s *structure.Structure, cache *kernel.Cache) (u []float64, disp map[int]Disp, err error) {
	K, F, pos, err := assemble.Build(s, cache)
	if err != nil {
		return nil, nil, err
	}
	ndofs := K.N

	free := freeDOFs(s, pos, ndofs)

	u = make([]float64, ndofs)
	if len(free) == 0 {
		// No free DOF: the whole structure is fixed, so displacement is
		// trivially zero everywhere.
		return u, buildDisp(pos, u), nil
	}

	kff := K.Submatrix(free, free)
	ff := make([]float64, len(free))
	for i, dof := range free {
		ff[i] = F[dof]
	}

	uf, err := solveDense(kff, ff)
	if err != nil {
		return nil, nil, err
	}

	for i, dof := range free {
		u[dof] = uf[i]
	}

	return u, buildDisp(pos, u), nil
}

// freeDOFs computes the free DOF index list from node fixity flags: DOF
// 2p is fixed iff the node at position p has FixedX, 2p+1 iff FixedZ.
func freeDOFs(s *structure.Structure, pos map[int]int, ndofs int) []int {
	fixedSet := make(map[int]bool, ndofs)
	for id, p := range pos {
		n := s.Nodes[id]
		if n.FixedX {
			fixedSet[2*p] = true
		}
		if n.FixedZ {
			fixedSet[2*p+1] = true
		}
	}
	free := make([]int, 0, ndofs-len(fixedSet))
	for dof := 0; dof < ndofs; dof++ {
		if !fixedSet[dof] {
			free = append(free, dof)
		}
	}
	return free
}

// buildDisp derives the per-node (ux, uz) lookup from the full DOF vector.
func buildDisp(pos map[int]int, u []float64) map[int]Disp {
	disp := make(map[int]Disp, len(pos))
	for id, p := range pos {
		disp[id] = Disp{Ux: u[2*p], Uz: u[2*p+1]}
	}
	return disp
}

// solveDense factorizes and solves a (logically symmetric) dense block
// kff·x = f, trying Cholesky first, then LU, then a single regularized
// retry before giving up with ErrSingular. Any non-finite entry in a
// candidate solution is treated the same as a solver-reported failure.
func solveDense(kff [][]float64, f []float64) ([]float64, error) {
	n := len(f)
	if n == 0 {
		return nil, nil
	}

	if x, ok := tryCholesky(kff, f); ok {
		return x, nil
	}
	if x, ok := tryLU(kff, f); ok {
		return x, nil
	}

	reg := regularize(kff, diagMeanAbs(kff))
	if x, ok := tryLU(reg, f); ok {
		return x, nil
	}

	return nil, ErrSingular
}

// tryCholesky attempts the SPD fast path. Returns ok=false on
// non-positive-definite input or a non-finite result.
func tryCholesky(kff [][]float64, f []float64) ([]float64, bool) {
	n := len(f)
	sym := mat.NewSymDense(n, flatten(kff))

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	if cond := chol.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > singularCondThreshold {
		return nil, false
	}

	b := mat.NewVecDense(n, f)
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, b); err != nil {
		return nil, false
	}

	out := x.RawVector().Data
	if !allFinite(out) {
		return nil, false
	}
	return append([]float64(nil), out...), true
}

// tryLU attempts a general direct solve via LU decomposition, rejecting
// ill-conditioned (effectively singular) or non-finite results.
func tryLU(kff [][]float64, f []float64) ([]float64, bool) {
	n := len(f)
	a := mat.NewDense(n, n, flatten(kff))

	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > singularCondThreshold {
		return nil, false
	}

	b := mat.NewVecDense(n, f)
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, b); err != nil {
		return nil, false
	}

	out := x.RawVector().Data
	if !allFinite(out) {
		return nil, false
	}
	return append([]float64(nil), out...), true
}

// diagMeanAbs returns mean(|diag(m)|), falling back to 0 when the
// matrix is empty or every diagonal entry is zero.
func diagMeanAbs(m [][]float64) float64 {
	n := len(m)
	if n == 0 {
		return 0
	}
	diag := make([]float64, n)
	for i := range diag {
		diag[i] = math.Abs(m[i][i])
	}
	return floats.Sum(diag) / float64(n)
}

// regularize returns a copy of m with ε·I added to the diagonal, where
// ε = 1e-9·meanAbsDiag, falling back to 1e-9 if meanAbsDiag is zero or
// non-finite (spec.md §4.3).
func regularize(m [][]float64, meanAbsDiag float64) [][]float64 {
	eps := regularizationEps * meanAbsDiag
	if !(eps > 0) || math.IsInf(eps, 0) {
		eps = regularizationEps
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
		out[i][i] += eps
	}
	return out
}

// flatten row-majors a [][]float64 into gonum's expected flat backing slice.
func flatten(m [][]float64) []float64 {
	n := len(m)
	out := make([]float64, 0, n*n)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// allFinite reports whether every entry of v is finite.
func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
