package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileExprEvaluatesAgainstEnv(t *testing.T) {
	e, err := compileExpr("value == 'A'")
	require.NoError(t, err)

	ok, err := e.Eval(map[string]any{"value": "A"})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	ok, err = e.Eval(map[string]any{"value": "B"})
	require.NoError(t, err)
	assert.Equal(t, false, ok)
}

func TestCompileExprAllowsUndefinedVariables(t *testing.T) {
	e, err := compileExpr("value == 'A'")
	require.NoError(t, err)

	ok, err := e.Eval(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, false, ok)
}

func TestCompileExprRejectsInvalidSyntax(t *testing.T) {
	_, err := compileExpr("value ==")
	assert.Error(t, err)
}
