package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/marrow-lang/marrow/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run compiles and executes source against a fresh VM, returning what it
// printed via `out`.
func run(t *testing.T, source string) (string, error) {
	t.Helper()
	m := vm.New()
	var out bytes.Buffer
	m.Stdout = &out
	_, _, err := m.Interpret(source, nil)
	return out.String(), err
}

// Scenario 1 (spec.md §8).
func TestScenarioArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `out 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

// Scenario 2.
func TestScenarioStringConcat(t *testing.T) {
	out, err := run(t, `var s = "ab"; out s + "cd";`)
	require.NoError(t, err)
	assert.Equal(t, "abcd\n", out)
}

// Scenario 3: a closure capturing a parameter by upvalue.
func TestScenarioClosureCapturesParameter(t *testing.T) {
	out, err := run(t, `fn make(x){ fn inner(){ return x; } return inner; } out make(42)();`)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

// Scenario 4: a class with an initializer and a method reading a field.
func TestScenarioClassInitAndMethod(t *testing.T) {
	out, err := run(t, `class A{ init(n){ this.n = n; } get(){ return this.n; } } out A(7).get();`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

// Scenario 5: single inheritance with a super call.
func TestScenarioSuperCall(t *testing.T) {
	out, err := run(t, `class P{ hi(){ out "p"; } } class C < P { hi(){ super.hi(); out "c"; } } C().hi();`)
	require.NoError(t, err)
	assert.Equal(t, "p\nc\n", out)
}

// Scenario 6: array literal, append, index, length.
func TestScenarioArrayAppendIndexLength(t *testing.T) {
	out, err := run(t, `var a = [10,20,30]; append(a, 40); out a[3]; out length(a);`)
	require.NoError(t, err)
	assert.Equal(t, "40\n4\n", out)
}

// Scenario 7: dict literal plus property-style assignment.
func TestScenarioDictPropertyAccess(t *testing.T) {
	out, err := run(t, `var d = {"x": 1}; d.y = 2; out d.x + d.y;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

// Scenario 8: a string-returning expression in an @int function is a
// compile error (strengthened static check; spec.md §8, §9).
func TestScenarioReturnTypeMismatchIsCompileError(t *testing.T) {
	_, err := run(t, `fn f() @int { return "x"; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Function must return a number.")
}

// Scenario 9: `this` outside any class is a compile error.
func TestScenarioThisOutsideClassIsCompileError(t *testing.T) {
	_, err := run(t, `fn f(){ return this; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

// Scenario 10: three-clause for loop.
func TestScenarioForLoop(t *testing.T) {
	out, err := run(t, `for (var i=0; i<3; i=i+1) out i;`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestUntilLoopInvertsCondition(t *testing.T) {
	out, err := run(t, `var i = 0; until (i >= 3) { out i; i = i + 1; }`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, `out missing;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'missing'.")
}

func TestRuntimeErrorCarriesBacktrace(t *testing.T) {
	_, err := run(t, "fn a() {\n  return 1 + nil;\n}\nfn b() {\n  return a();\n}\nb();\n")
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(rerr.Backtrace), 2)
	assert.True(t, strings.Contains(rerr.Backtrace[0], "in a"))
}

func TestArrayOutOfBoundsIsRuntimeError(t *testing.T) {
	_, err := run(t, `var a = [1,2,3]; out a[5];`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Array index out of bounds.")
}

func TestDivideByZeroProducesInf(t *testing.T) {
	out, err := run(t, `out 1 / 0;`)
	require.NoError(t, err)
	assert.Equal(t, "+Inf\n", out)
}

func TestStringInterningIdentity(t *testing.T) {
	out, err := run(t, `var a = "hi"; var b = "hi"; out a == b;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestBitwiseOperators(t *testing.T) {
	out, err := run(t, `out 6 & 3; out 6 | 1; out 1 << 4; out (~0) + 1;`)
	require.NoError(t, err)
	assert.Equal(t, "2\n7\n16\n0\n", out)
}

func TestShortCircuitAndOr(t *testing.T) {
	out, err := run(t, `fn boom(){ out "boom"; return true; } out false and boom(); out true or boom();`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\n", out)
}
