package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

func TestLevels_Empty(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Levels())
}

func TestLevels_Linear(t *testing.T) {
	s := NewStore()
	a := s.AddNode(schema.StepKindNavigation, schema.Position{})
	b := s.AddNode(schema.StepKindAction, schema.Position{})
	c := s.AddNode(schema.StepKindAssertion, schema.Position{})
	mustConnect(t, s, a, b)
	mustConnect(t, s, b, c)

	assert.Equal(t, [][]string{{a}, {b}, {c}}, s.Levels())
}

func TestLevels_Diamond(t *testing.T) {
	s := NewStore()
	a := s.AddNode(schema.StepKindNavigation, schema.Position{})
	b := s.AddNode(schema.StepKindAction, schema.Position{})
	c := s.AddNode(schema.StepKindAction, schema.Position{})
	d := s.AddNode(schema.StepKindAssertion, schema.Position{})
	mustConnect(t, s, a, b)
	mustConnect(t, s, a, c)
	mustConnect(t, s, b, d)
	mustConnect(t, s, c, d)

	levels := s.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, []string{a}, levels[0])
	assert.ElementsMatch(t, []string{b, c}, levels[1])
	assert.Equal(t, []string{d}, levels[2])
}

func TestLevels_DisconnectedNodesShareLevelZero(t *testing.T) {
	s := NewStore()
	a := s.AddNode(schema.StepKindAction, schema.Position{})
	b := s.AddNode(schema.StepKindAction, schema.Position{})

	levels := s.Levels()
	require.Len(t, levels, 1)
	assert.ElementsMatch(t, []string{a, b}, levels[0])
}

func TestLevels_CycleRemainderPlacedLast(t *testing.T) {
	s := NewStore()
	a := s.AddNode(schema.StepKindNavigation, schema.Position{})
	b := s.AddNode(schema.StepKindAction, schema.Position{})
	c := s.AddNode(schema.StepKindAction, schema.Position{})
	mustConnect(t, s, a, b)
	// b and c form a cycle reachable from a.
	mustConnect(t, s, b, c)
	mustConnect(t, s, c, b)

	levels := s.Levels()
	require.Len(t, levels, 2)
	assert.Equal(t, []string{a}, levels[0])
	assert.ElementsMatch(t, []string{b, c}, levels[1])
}

func mustConnect(t *testing.T, s *Store, from, to string) string {
	t.Helper()
	id, err := s.Connect(from, to)
	require.NoError(t, err)
	return id
}
