// Package structure defines the in-memory truss model: Node, Spring, and
// the Structure that owns them.
//
// A Structure is a plain value-holding object, not a concurrently-shared
// one: exactly one optimize.Driver run owns a Structure at a time (the
// optimizer is a single-threaded cooperative loop per spec), so — unlike
// a long-lived shared graph — Structure carries no internal locking.
// Callers that do share a Structure across goroutines must synchronize
// externally.
//
// Node identity is a stable integer id, assigned once at construction and
// never reused or renumbered; removing a node only shrinks the id set.
//
// Errors:
//
//	ErrZeroLengthSpring - a spring's endpoints occupy the same position.
//	ErrUnknownNode      - a spring references a node id not present in the structure.
package structure

import "errors"

// Sentinel errors for structure construction and mutation.
var (
	// ErrZeroLengthSpring indicates a spring whose endpoints coincide.
	ErrZeroLengthSpring = errors.New("structure: zero-length spring")

	// ErrUnknownNode indicates a spring refers to a node id that is not
	// present in the structure.
	ErrUnknownNode = errors.New("structure: unknown node id")
)

// Node is a single point in the planar (x, z) frame, z increasing
// downward. FixedX/FixedZ are Dirichlet constraints on the corresponding
// displacement DOF; Fx/Fz are applied nodal forces; Mass contributes to
// the structure's total mass and defaults to 1 when constructed via NewNode.
type Node struct {
	ID     int
	X, Z   float64
	FixedX bool
	FixedZ bool
	Fx, Fz float64
	Mass   float64
}

// NewNode constructs a Node with the given id and position, Mass defaulted
// to 1, no fixity, and no applied force. Use the returned value's fields
// directly to set fixity/force/mass before inserting it into a Structure.
func NewNode(id int, x, z float64) Node {
	return Node{ID: id, X: x, Z: z, Mass: 1}
}

// Fixed reports whether the node has any Dirichlet constraint at all,
// i.e. whether it is a candidate support.
func (n Node) Fixed() bool {
	return n.FixedX || n.FixedZ
}

// Loaded reports whether the node carries a nonzero applied force.
func (n Node) Loaded() bool {
	return n.Fx != 0 || n.Fz != 0
}

// Spring is an axial element between node ids I and J with stiffness K.
// Semantically undirected: (I, J) and (J, I) denote the same element.
// Use CanonicalKey for a storage/lookup key independent of construction
// order.
type Spring struct {
	I, J int
	K    float64
}

// CanonicalKey returns (min(I,J), max(I,J)), the key every spring-keyed
// map or cache in this module uses, so that (i,j) and (j,i) never collide
// as distinct entries.
func (s Spring) CanonicalKey() (int, int) {
	if s.I <= s.J {
		return s.I, s.J
	}
	return s.J, s.I
}
