// Package score turns a solved structure into a per-node removal
// ranking: raw strain-energy share, neighbor-smoothed score, and a
// degree/distance-weighted effective cost used to sort removal
// candidates. Grounded in the energy-to-node attribution shape of the
// teacher's vectorized statistics helpers, generalized from per-edge
// graph metrics to per-spring strain energy.
package score

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/trusstopo/kernel"
	"github.com/katalvlaran/trusstopo/reach"
	"github.com/katalvlaran/trusstopo/structure"
)

// DefaultAlpha is the neighbor-smoothing weight: S' = α·S + (1−α)·mean.
const DefaultAlpha = 0.6

// DefaultGamma and DefaultBeta are the effective-cost exponents:
// eff = S' / (degree+1)^γ / (distance+1)^β.
const (
	DefaultGamma = 1.6
	DefaultBeta  = 0.8
)

// SpringEnergies computes each spring's strain energy under the
// solved DOF vector u (positioned per pos), in s.Springs order.
func SpringEnergies(s *structure.Structure, cache *kernel.Cache, u []float64, pos map[int]int) ([]float64, error) {
	energies := make([]float64, len(s.Springs))
	for idx, sp := range s.Springs {
		ni, nj := s.Nodes[sp.I], s.Nodes[sp.J]
		ke, err := cache.Get(sp.I, sp.J, ni.X, ni.Z, nj.X, nj.Z, sp.K)
		if err != nil {
			return nil, err
		}
		pi, pj := pos[sp.I], pos[sp.J]
		ue := [4]float64{u[2*pi], u[2*pi+1], u[2*pj], u[2*pj+1]}
		energies[idx] = kernel.Energy(ke, ue)
	}
	return energies, nil
}

// Raw attributes half of each spring's energy to each of its two
// endpoints: S[n] = ½·Σ(E over springs adjacent to n).
func Raw(s *structure.Structure, energies []float64) map[int]float64 {
	raw := make(map[int]float64, len(s.Nodes))
	for id := range s.Nodes {
		raw[id] = 0
	}
	for idx, sp := range s.Springs {
		half := 0.5 * energies[idx]
		raw[sp.I] += half
		raw[sp.J] += half
	}
	return raw
}

// Smooth applies neighbor-mean smoothing: S'[n] = α·S[n] +
// (1−α)·mean(S[nb] for nb in neighbors(n)). A node with no neighbors
// keeps its raw score (the mean is undefined, and an isolated node
// is already a degree-0 pruning candidate elsewhere).
func Smooth(s *structure.Structure, raw map[int]float64, alpha float64) map[int]float64 {
	adj := s.Adjacency()
	smoothed := make(map[int]float64, len(raw))
	for id, sVal := range raw {
		neighbors := adj[id]
		if len(neighbors) == 0 {
			smoothed[id] = sVal
			continue
		}
		vals := make([]float64, 0, len(neighbors))
		for nb := range neighbors {
			vals = append(vals, raw[nb])
		}
		mean := floats.Sum(vals) / float64(len(vals))
		smoothed[id] = alpha*sVal + (1-alpha)*mean
	}
	return smoothed
}

// EffectiveCost computes eff[n] = S'[n] / (degree+1)^γ / (distance+1)^β,
// where distance is the BFS hop count from n to the nearest protected
// node. Lower eff ranks a node as a better removal candidate.
func EffectiveCost(s *structure.Structure, smoothed map[int]float64, protectedList []int, gamma, beta float64) map[int]float64 {
	adj := s.Adjacency()
	dist := reach.Distances(adj, protectedList)

	eff := make(map[int]float64, len(smoothed))
	for id, sVal := range smoothed {
		d := float64(len(adj[id]))
		di := float64(dist[id])
		eff[id] = sVal / math.Pow(d+1, gamma) / math.Pow(di+1, beta)
	}
	return eff
}
