package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verity/internal/errors"
	"verity/internal/parser"
)

func analyze(t *testing.T, source string) []errors.CompilerError {
	t.Helper()
	program, err := parser.ParseSource("test.vt", source)
	require.NoError(t, err, "source should parse")
	return NewAnalyzer().Analyze(program)
}

func TestCleanProgramHasNoErrors(t *testing.T) {
	errs := analyze(t, `
predicate bounded(i: int, n: int) = 0 <= i && i <= n;

fun count(n: int): (i: int)
    requires n >= 0
    ensures i == n
{
    i = 0;
    while (i < n)
        invariant bounded(i, n)
        decreases n - i
    {
        i = i + 1;
    }
}
`)
	assert.Empty(t, errs)
}

func TestUndeclaredVariable(t *testing.T) {
	errs := analyze(t, `
fun f(count: int)
{
    assert counter > 0;
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUndeclaredVariable, errs[0].Code)
	assert.Contains(t, errs[0].Message, "counter")
	require.Len(t, errs[0].Suggestions, 1)
	assert.Contains(t, errs[0].Suggestions[0].Message, "count")
}

func TestDuplicateDeclarations(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
{
    let x: int = 1;
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorDuplicateDeclaration, errs[0].Code)
}

func TestAnnotationMustBeBool(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
    requires x + 1
{
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorAnnotationNotBool, errs[0].Code)
}

func TestRankingMustBeInt(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
{
    while (x > 0)
        decreases x > 0
    {
        x = x - 1;
    }
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorRankingNotInt, errs[0].Code)
}

func TestCallArity(t *testing.T) {
	errs := analyze(t, `
fun g(x: int): (r: int)
{
    r = x;
}

fun f(): (y: int)
{
    y = g(1, 2);
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorCallArity, errs[0].Code)
}

func TestCallResultTypes(t *testing.T) {
	errs := analyze(t, `
fun g(x: int): (r: int)
{
    r = x;
}

fun f(ok: bool): (y: int)
{
    ok = g(1);
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorTypeMismatch, errs[0].Code)
}

func TestUndefinedCallee(t *testing.T) {
	errs := analyze(t, `
fun f(): (y: int)
{
    y = missing(1);
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUndefinedCallee, errs[0].Code)
}

func TestUnreachableAfterReturn(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
{
    return;
    assert x > 0;
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUnreachableCode, errs[0].Code)
}

func TestSubscriptRequiresArray(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
{
    x[0] = 1;
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorNotAnArray, errs[0].Code)
}

func TestLengthRequiresArray(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
    requires length(x) > 0
{
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorNotAnArray, errs[0].Code)
}

func TestPredicateBodyMustBeBool(t *testing.T) {
	errs := analyze(t, `
predicate broken(x: int) = x + 1;
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorAnnotationNotBool, errs[0].Code)
}

func TestFunctionCallInExpression(t *testing.T) {
	errs := analyze(t, `
fun g(): (r: int)
{
    r = 1;
}

fun f(): (y: int)
{
    y = 1 + g();
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUndefinedCallee, errs[0].Code)
	assert.Contains(t, errs[0].Message, "cannot be called inside an expression")
}

func TestConditionTypes(t *testing.T) {
	errs := analyze(t, `
fun f(x: int)
{
    if (x + 1) {
        x = 0;
    }
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorTypeMismatch, errs[0].Code)
}

func TestMixedOperandTypes(t *testing.T) {
	errs := analyze(t, `
fun f(x: int, ok: bool)
{
    assert x == ok;
}
`)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorTypeMismatch, errs[0].Code)
}
