// Package reach computes connectivity over a structure.Structure's
// spring adjacency: multi-source reachability, the support/load
// last-path mask, the protected-set connectivity check, and iterative
// dead-end pruning. The traversal shape is adapted from lvlath's
// DFS/BFS walkers, narrowed to the undirected/unweighted int-keyed
// adjacency this domain actually needs.
//
// Complexity:
//
//   - Reachability, ConnectivityOK, LastPathMask: O(V + E) per call.
//   - PruneDegree0, PruneDegreeLE1: O(rounds · (V + E)), rounds bounded
//     as documented on each function.
//
// Errors:
//
//   - ErrDisconnectedProtected — returned by ConnectivityOK's error-
//     returning sibling RequireConnected when the protected set splits
//     across components.
package reach

import (
	"errors"
	"sort"

	"github.com/katalvlaran/trusstopo/structure"
)

// ErrDisconnectedProtected indicates two or more protected nodes
// (supports and/or loaded nodes) no longer lie in the same connected
// component.
var ErrDisconnectedProtected = errors.New("reach: protected nodes disconnected")

// Reachability returns the set of node ids reachable from starts by
// following spring adjacency, starts included. A nil or empty starts
// yields an empty set.
func Reachability(adj map[int]map[int]struct{}, starts []int) map[int]struct{} {
	seen := make(map[int]struct{}, len(adj))
	stack := append([]int(nil), starts...)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		for nb := range adj[cur] {
			if _, ok := seen[nb]; !ok {
				stack = append(stack, nb)
			}
		}
	}
	return seen
}

// ConnectivityOK reports whether every protected node is mutually
// reachable via springs: a single DFS from one protected anchor must
// reach all the others. Fewer than two protected nodes present in s is
// trivially ok.
func ConnectivityOK(s *structure.Structure, protected map[int]struct{}) bool {
	present := presentProtected(s, protected)
	if len(present) <= 1 {
		return true
	}

	adj := s.Adjacency()
	reached := Reachability(adj, present[:1])
	for _, id := range present[1:] {
		if _, ok := reached[id]; !ok {
			return false
		}
	}
	return true
}

// RequireConnected is ConnectivityOK expressed as an error return, for
// call sites that want to propagate ErrDisconnectedProtected directly.
func RequireConnected(s *structure.Structure, protected map[int]struct{}) error {
	if !ConnectivityOK(s, protected) {
		return ErrDisconnectedProtected
	}
	return nil
}

// presentProtected returns the protected ids that still exist in s, in
// sorted order so ConnectivityOK's anchor choice is deterministic.
func presentProtected(s *structure.Structure, protected map[int]struct{}) []int {
	out := make([]int, 0, len(protected))
	for id := range protected {
		if _, ok := s.Nodes[id]; ok {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// LastPathMask returns R_S ∩ R_L, where R_S is the set reachable from
// supports and R_L the set reachable from loads: the nodes that
// participate in at least one support-to-load path. If the
// intersection is empty (e.g. connectivity already broken), the mask
// falls back to all non-protected nodes in s.
func LastPathMask(s *structure.Structure, supports, loads []int, protected map[int]struct{}) map[int]struct{} {
	adj := s.Adjacency()
	rs := Reachability(adj, supports)
	rl := Reachability(adj, loads)

	mask := make(map[int]struct{})
	for id := range rs {
		if _, ok := rl[id]; ok {
			mask[id] = struct{}{}
		}
	}
	if len(mask) > 0 {
		return mask
	}

	for id := range s.Nodes {
		if _, ok := protected[id]; !ok {
			mask[id] = struct{}{}
		}
	}
	return mask
}

// Distances computes BFS hop-distance from the multi-source set starts
// to every node reachable in adj. Unreached nodes are set to len(adj),
// a deliberately large-but-finite stand-in for "unreachable" so
// downstream distance-weighted formulas decay smoothly instead of
// dividing by infinity.
func Distances(adj map[int]map[int]struct{}, starts []int) map[int]int {
	unreached := len(adj)
	dist := make(map[int]int, len(adj))
	for id := range adj {
		dist[id] = unreached
	}

	queue := make([]int, 0, len(starts))
	for _, id := range starts {
		if _, ok := dist[id]; ok && dist[id] == unreached {
			dist[id] = 0
			queue = append(queue, id)
		}
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for nb := range adj[cur] {
			if dist[nb] == unreached && nb != cur {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}
	return dist
}

// maxPruneRounds0 bounds PruneDegree0's loop: a strictly-decreasing
// node count means it terminates in at most N rounds, but a generous
// fixed cap keeps pathological inputs from looping indefinitely.
const maxPruneRounds0 = 20

// maxPruneRoundsLE1 is the analogous bound for PruneDegreeLE1, higher
// because degree-1 removal can itself expose new degree-1 nodes down a
// long chain.
const maxPruneRoundsLE1 = 120

// PruneDegree0 repeatedly removes non-protected isolated nodes (degree
// 0) until none remain or maxPruneRounds0 rounds have run. Returns the
// number of nodes removed.
func PruneDegree0(s *structure.Structure, protected map[int]struct{}) int {
	return prune(s, protected, 0, maxPruneRounds0)
}

// PruneDegreeLE1 repeatedly removes non-protected dead-end nodes
// (degree ≤ 1) until none remain or maxPruneRoundsLE1 rounds have run.
// Returns the number of nodes removed. The optimize driver runs this
// sweep once, at termination; after each batch removal it runs
// PruneDegree0 instead.
func PruneDegreeLE1(s *structure.Structure, protected map[int]struct{}) int {
	return prune(s, protected, 1, maxPruneRoundsLE1)
}

// prune is the shared fixed-point loop behind PruneDegree0 and
// PruneDegreeLE1: remove every non-protected node whose degree is at
// most maxDegree, recompute adjacency, repeat.
func prune(s *structure.Structure, protected map[int]struct{}, maxDegree, maxRounds int) int {
	removed := 0
	for round := 0; round < maxRounds; round++ {
		adj := s.Adjacency()
		var toRemove []int
		for nid, neighbors := range adj {
			if _, isProtected := protected[nid]; isProtected {
				continue
			}
			if len(neighbors) <= maxDegree {
				toRemove = append(toRemove, nid)
			}
		}
		if len(toRemove) == 0 {
			break
		}
		sort.Ints(toRemove)
		for _, nid := range toRemove {
			s.RemoveNode(nid)
		}
		removed += len(toRemove)
	}
	return removed
}
