package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/trusstopo/structure"
)

func buildTriangle() *structure.Structure {
	s := structure.New()
	s.AddNode(structure.NewNode(1, 0, 0))
	s.AddNode(structure.NewNode(2, 1, 0))
	s.AddNode(structure.NewNode(3, 0.5, 1))
	_ = s.AddSpring(structure.Spring{I: 1, J: 2, K: 10})
	_ = s.AddSpring(structure.Spring{I: 2, J: 3, K: 10})
	_ = s.AddSpring(structure.Spring{I: 3, J: 1, K: 10})
	return s
}

func TestAddSpring_UnknownNode(t *testing.T) {
	s := structure.New()
	s.AddNode(structure.NewNode(1, 0, 0))
	err := s.AddSpring(structure.Spring{I: 1, J: 99, K: 1})
	assert.ErrorIs(t, err, structure.ErrUnknownNode)
}

func TestAddSpring_ZeroLength(t *testing.T) {
	s := structure.New()
	s.AddNode(structure.NewNode(1, 0, 0))
	s.AddNode(structure.NewNode(2, 0, 0))
	err := s.AddSpring(structure.Spring{I: 1, J: 2, K: 1})
	assert.ErrorIs(t, err, structure.ErrZeroLengthSpring)
}

func TestCanonicalKey_OrderIndependent(t *testing.T) {
	a := structure.Spring{I: 5, J: 2, K: 1}
	b := structure.Spring{I: 2, J: 5, K: 1}
	ai, aj := a.CanonicalKey()
	bi, bj := b.CanonicalKey()
	assert.Equal(t, ai, bi)
	assert.Equal(t, aj, bj)
}

func TestNodeIDs_Sorted(t *testing.T) {
	s := structure.New()
	s.AddNode(structure.NewNode(5, 0, 0))
	s.AddNode(structure.NewNode(1, 1, 0))
	s.AddNode(structure.NewNode(3, 2, 0))
	assert.Equal(t, []int{1, 3, 5}, s.NodeIDs())
}

func TestAdjacency_SymmetricAndIsolated(t *testing.T) {
	s := buildTriangle()
	s.AddNode(structure.NewNode(4, 5, 5)) // isolated
	adj := s.Adjacency()
	assert.Len(t, adj[1], 2)
	assert.Contains(t, adj[1], 2)
	assert.Contains(t, adj[1], 3)
	assert.Empty(t, adj[4])
}

func TestRemoveNode_DropsIncidentSprings(t *testing.T) {
	s := buildTriangle()
	s.RemoveNode(2)
	assert.NotContains(t, s.Nodes, 2)
	assert.Len(t, s.Springs, 1)
	assert.Equal(t, 0, s.Degree(2))
}

func TestRemoveNode_AbsentIsNoop(t *testing.T) {
	s := buildTriangle()
	before := len(s.Springs)
	s.RemoveNode(999)
	assert.Len(t, s.Springs, before)
}

func TestClone_IsIndependent(t *testing.T) {
	s := buildTriangle()
	clone := s.Clone()
	clone.RemoveNode(1)

	assert.Contains(t, s.Nodes, 1)
	assert.NotContains(t, clone.Nodes, 1)
	assert.Len(t, s.Springs, 3)
	assert.Len(t, clone.Springs, 1)
}

func TestTotalMass(t *testing.T) {
	s := buildTriangle()
	assert.Equal(t, 3.0, s.TotalMass())
}

func TestIDToPos_MatchesSortedOrder(t *testing.T) {
	s := buildTriangle()
	pos := s.IDToPos()
	assert.Equal(t, 0, pos[1])
	assert.Equal(t, 1, pos[2])
	assert.Equal(t, 2, pos[3])
}
