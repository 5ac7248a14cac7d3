package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrials/flowcanvas/internal/graph"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderImage_ProducesPNG(t *testing.T) {
	out, err := RenderImage(sampleModel())
	require.NoError(t, err)
	require.Greater(t, len(out), 8)
	assert.Equal(t, pngMagic, out[:4])
}

func TestRenderImage_FromStore(t *testing.T) {
	s := graph.NewStore()
	a := s.AddNode(schema.StepKindNavigation, schema.Position{X: 0, Y: 0})
	b := s.AddNode(schema.StepKindAssertion, schema.Position{X: 300, Y: 0})
	_, err := s.Connect(a, b)
	require.NoError(t, err)
	require.NoError(t, s.SetStatus(a, schema.StepStatusPassed))

	out, err := RenderImage(Build(s, "smoke"))
	require.NoError(t, err)
	assert.Equal(t, pngMagic, out[:4])
}

func TestRenderImage_EmptyModel(t *testing.T) {
	out, err := RenderImage(&DiagramModel{Title: "empty"})
	require.NoError(t, err)
	assert.Equal(t, pngMagic, out[:4])
}
