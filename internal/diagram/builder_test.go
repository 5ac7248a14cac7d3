package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

func buildFlow(t *testing.T) (*graph.Store, string, string, string) {
	t.Helper()
	s := graph.NewStore()
	open := s.AddNode(schema.StepKindNavigation, schema.Position{X: 0, Y: 0})
	click := s.AddNode(schema.StepKindAction, schema.Position{X: 300, Y: 0})
	check := s.AddNode(schema.StepKindAssertion, schema.Position{X: 600, Y: 0})
	require.NoError(t, s.UpdateNode(open, graph.NodeUpdate{Label: strptr("Open login")}))
	_, err := s.Connect(open, click)
	require.NoError(t, err)
	_, err = s.Connect(click, check)
	require.NoError(t, err)
	return s, open, click, check
}

func strptr(s string) *string { return &s }

func TestBuild_WrapsFlowInTerminals(t *testing.T) {
	s, open, click, check := buildFlow(t)

	model := Build(s, "Login flow")

	require.Len(t, model.Nodes, 5)
	assert.Equal(t, "__start__", model.Nodes[0].ID)
	assert.Equal(t, NodeKindStart, model.Nodes[0].Kind)
	assert.Equal(t, "__end__", model.Nodes[4].ID)

	assert.Equal(t, "Login flow", model.Title)

	// start -> entry, the two real connections, sink -> end.
	require.Len(t, model.Edges, 4)
	assert.Equal(t, Edge{From: "__start__", To: open}, model.Edges[0])
	assert.Equal(t, Edge{From: open, To: click}, model.Edges[1])
	assert.Equal(t, Edge{From: click, To: check}, model.Edges[2])
	assert.Equal(t, Edge{From: check, To: "__end__"}, model.Edges[3])

	assert.Equal(t, [][]string{
		{"__start__"}, {open}, {click}, {check}, {"__end__"},
	}, model.Levels)
}

func TestBuild_NodeKindsAndLabels(t *testing.T) {
	s, open, click, _ := buildFlow(t)

	model := Build(s, "")
	byID := make(map[string]*Node)
	for _, n := range model.Nodes {
		byID[n.ID] = n
	}

	assert.Equal(t, NodeKindNavigation, byID[open].Kind)
	assert.Equal(t, "Open login", byID[open].Label)
	// Unlabeled nodes fall back to their action verb.
	assert.Equal(t, NodeKindAction, byID[click].Kind)
	assert.Equal(t, "click", byID[click].Label)
}

func TestBuild_StatusOverlay(t *testing.T) {
	s, open, click, check := buildFlow(t)
	require.NoError(t, s.SetStatus(open, schema.StepStatusPassed))
	require.NoError(t, s.SetStatus(click, schema.StepStatusFailed))

	model := Build(s, "")
	byID := make(map[string]*Node)
	for _, n := range model.Nodes {
		byID[n.ID] = n
	}

	require.NotNil(t, byID[open].Status)
	assert.Equal(t, "passed", byID[open].Status.Status)
	require.NotNil(t, byID[click].Status)
	assert.Equal(t, "failed", byID[click].Status.Status)
	// Pending is the resting state, not an overlay.
	assert.Nil(t, byID[check].Status)
}

func TestBuild_ConditionBecomesEdgeLabel(t *testing.T) {
	s := graph.NewStore()
	a := s.AddNode(schema.StepKindAction, schema.Position{})
	b := s.AddNode(schema.StepKindAction, schema.Position{})
	connID, err := s.Connect(a, b)
	require.NoError(t, err)
	require.NoError(t, s.SetConnectionCondition(connID, `steps.login.status == "passed"`))

	model := Build(s, "")
	var found bool
	for _, e := range model.Edges {
		if e.From == a && e.To == b {
			found = true
			assert.Equal(t, `steps.login.status == "passed"`, e.Label)
		}
	}
	assert.True(t, found)
}

func TestBuild_EmptyGraph(t *testing.T) {
	model := Build(graph.NewStore(), "empty")

	require.Len(t, model.Nodes, 2)
	assert.Empty(t, model.Edges)
	assert.Equal(t, [][]string{{"__start__"}, {"__end__"}}, model.Levels)
}
