package structure

import "sort"

// Structure owns a node-id → Node map and an ordered list of Springs.
// Iteration order over Nodes is irrelevant for correctness but NodeIDs
// always returns a sorted slice, matching the convention that
// core.Graph.Vertices() returns a stable, sorted enumeration — downstream
// DOF ordering (assemble) depends on this.
type Structure struct {
	Nodes   map[int]Node
	Springs []Spring
}

// New constructs an empty Structure ready for Nodes/Springs to be
// populated directly, or via AddNode/AddSpring.
func New() *Structure {
	return &Structure{Nodes: make(map[int]Node)}
}

// AddNode inserts or replaces a node by id.
func (s *Structure) AddNode(n Node) {
	if s.Nodes == nil {
		s.Nodes = make(map[int]Node)
	}
	s.Nodes[n.ID] = n
}

// AddSpring appends a spring after validating both endpoints exist and
// are not coincident. Returns ErrUnknownNode or ErrZeroLengthSpring.
func (s *Structure) AddSpring(sp Spring) error {
	ni, ok := s.Nodes[sp.I]
	if !ok {
		return ErrUnknownNode
	}
	nj, ok := s.Nodes[sp.J]
	if !ok {
		return ErrUnknownNode
	}
	if ni.X == nj.X && ni.Z == nj.Z {
		return ErrZeroLengthSpring
	}
	s.Springs = append(s.Springs, sp)
	return nil
}

// NodeIDs returns all current node ids in ascending order. This is the
// canonical DOF ordering basis: position p in this slice corresponds to
// DOFs 2p, 2p+1.
func (s *Structure) NodeIDs() []int {
	ids := make([]int, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IDToPos returns the id → sorted-position map used to build the global
// DOF vector (node at position p occupies DOFs 2p, 2p+1).
func (s *Structure) IDToPos() map[int]int {
	ids := s.NodeIDs()
	pos := make(map[int]int, len(ids))
	for p, id := range ids {
		pos[id] = p
	}
	return pos
}

// TotalMass sums Mass over all current nodes.
func (s *Structure) TotalMass() float64 {
	var total float64
	for _, n := range s.Nodes {
		total += n.Mass
	}
	return total
}

// Adjacency derives nid → set-of-neighbor-nids from the current spring
// list. Nodes with no surviving spring still appear with an empty set,
// matching the original Python's Structure.adjacency().
func (s *Structure) Adjacency() map[int]map[int]struct{} {
	adj := make(map[int]map[int]struct{}, len(s.Nodes))
	for id := range s.Nodes {
		adj[id] = make(map[int]struct{})
	}
	for _, sp := range s.Springs {
		if _, ok := adj[sp.I]; !ok {
			continue
		}
		if _, ok := adj[sp.J]; !ok {
			continue
		}
		adj[sp.I][sp.J] = struct{}{}
		adj[sp.J][sp.I] = struct{}{}
	}
	return adj
}

// Degree returns the number of surviving springs touching nid (0 if the
// node is absent or isolated).
func (s *Structure) Degree(nid int) int {
	var d int
	for _, sp := range s.Springs {
		if sp.I == nid || sp.J == nid {
			d++
		}
	}
	return d
}

// RemoveNode deletes the node and every spring touching it. A no-op if
// the node is already absent.
func (s *Structure) RemoveNode(nid int) {
	if _, ok := s.Nodes[nid]; !ok {
		return
	}
	delete(s.Nodes, nid)
	kept := s.Springs[:0]
	for _, sp := range s.Springs {
		if sp.I != nid && sp.J != nid {
			kept = append(kept, sp)
		}
	}
	s.Springs = kept
}

// Clone returns a deep-enough copy for snapshot/rollback: a fresh node
// map and a fresh spring slice. Node and Spring are plain value types, so
// copying the map/slice headers' contents is sufficient — there is no
// shared mutable state or cycle to break (see package doc).
func (s *Structure) Clone() *Structure {
	nodes := make(map[int]Node, len(s.Nodes))
	for id, n := range s.Nodes {
		nodes[id] = n
	}
	springs := make([]Spring, len(s.Springs))
	copy(springs, s.Springs)
	return &Structure{Nodes: nodes, Springs: springs}
}
