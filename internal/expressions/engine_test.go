package expressions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

// --- CEL ---

func TestCELEngine_Check(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)
	assert.Equal(t, "cel", eng.Name())

	assert.NoError(t, eng.Check(`steps.login.status == "passed"`))
	assert.NoError(t, eng.Check(`inputs.retries > 2 && vars.token != ""`))
	// Cached second pass.
	assert.NoError(t, eng.Check(`steps.login.status == "passed"`))
}

func TestCELEngine_CheckErrors(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	err = eng.Check(`steps.login.status ==`)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))

	// Unknown top-level variable is a compile error in the sandbox.
	err = eng.Check(`document.title == "x"`)
	require.Error(t, err)

	err = eng.Check("")
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))
}

// --- Expr ---

func TestExprEngine_Check(t *testing.T) {
	eng := NewExprEngine()
	assert.Equal(t, "expr", eng.Name())

	assert.NoError(t, eng.Check(`len(items) > 0 && title startsWith "Welcome"`))
	// Undefined variables are fine: the executor injects them at run time.
	assert.NoError(t, eng.Check(`anything ?? "default"`))

	err := eng.Check(`1 +`)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))

	err = eng.Check("")
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))
}

// --- GoJQ ---

func TestGoJQEngine_Check(t *testing.T) {
	eng := NewGoJQEngine()
	assert.Equal(t, "jq", eng.Name())

	assert.NoError(t, eng.Check(`.items[] | select(.active) | .name`))
	assert.NoError(t, eng.Check(`.response.body.token`))

	err := eng.Check(`.items[`)
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))

	err = eng.Check("")
	assert.Equal(t, schema.ErrCodeExpression, schema.ErrorCode(err))
}

// --- Interpolation scanning ---

func TestScanReferences(t *testing.T) {
	refs, err := ScanReferences(`value is ${{steps.login.output.text}} from ${{inputs.user}}`)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "steps", refs[0].Root())
	assert.Equal(t, "login", refs[0].StepID())
	assert.Equal(t, []string{"steps", "login", "output", "text"}, refs[0].Path)

	assert.Equal(t, "inputs", refs[1].Root())
	assert.Equal(t, "", refs[1].StepID())
}

func TestScanReferences_NoPlaceholders(t *testing.T) {
	refs, err := ScanReferences("plain #selector value")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestScanReferences_Malformed(t *testing.T) {
	cases := []string{
		"broken ${{steps.login",
		"nested ${{ outer ${{ inner }} }}",
		"empty ${{}} marker",
		"blank ${{   }} marker",
	}
	for _, input := range cases {
		_, err := ScanReferences(input)
		require.Error(t, err, input)
		assert.Equal(t, schema.ErrCodeInterpolation, schema.ErrorCode(err), input)
	}
}
