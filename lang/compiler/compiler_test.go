package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marrow-lang/marrow/lang/compiler"
	"github.com/marrow-lang/marrow/lang/value"
)

func compile(t *testing.T, source string) (*value.Function, error) {
	t.Helper()
	strings := value.NewStrings(&value.AllocList{})
	return compiler.Compile(source, strings, nil)
}

func TestArithmeticPrecedenceAndAssociativity(t *testing.T) {
	fn, err := compile(t, `var x = 1 + 2 * 3 - 4 / 2;`)
	require.NoError(t, err)
	// (1 + (2 * 3)) - (4 / 2): constant 0 is the name "x", constants 1..5
	// are the literals in source order.
	want := []byte{
		byte(value.OP_CONSTANT), 1,
		byte(value.OP_CONSTANT), 2,
		byte(value.OP_CONSTANT), 3,
		byte(value.OP_MULTIPLY),
		byte(value.OP_ADD),
		byte(value.OP_CONSTANT), 4,
		byte(value.OP_CONSTANT), 5,
		byte(value.OP_DIVIDE),
		byte(value.OP_SUBTRACT),
		byte(value.OP_DEFINE_GLOBAL), 0,
		byte(value.OP_NIL),
		byte(value.OP_RETURN),
	}
	require.Equal(t, want, fn.Chunk.Code)
}

func TestLocalVariableCannotReadOwnInitializer(t *testing.T) {
	_, err := compile(t, `fn f(){ var a = a; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestRedeclaringLocalInSameScopeIsError(t *testing.T) {
	_, err := compile(t, `fn f(){ var a = 1; var a = 2; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestShadowingInNestedScopeIsFine(t *testing.T) {
	_, err := compile(t, `fn f(){ var a = 1; { var a = 2; } }`)
	require.NoError(t, err)
}

func TestGlobalRedeclarationIsAllowed(t *testing.T) {
	_, err := compile(t, `var a = 1; var a = 2;`)
	require.NoError(t, err)
}

func TestClosureCapturesEnclosingLocalAsUpvalue(t *testing.T) {
	fn, err := compile(t, `fn outer(){ var x = 1; fn inner(){ return x; } return inner; }`)
	require.NoError(t, err)
	require.NotNil(t, fn)
	// x is outer's local slot 1 (slot 0 is reserved).
	inner := findFunction(t, findFunction(t, fn, "outer"), "inner")
	require.Equal(t, []value.UpvalueDesc{{Index: 1, IsLocal: true}}, inner.Upvalues)
}

// findFunction returns the function prototype named name among parent's
// constants.
func findFunction(t *testing.T, parent *value.Function, name string) *value.Function {
	t.Helper()
	for _, k := range parent.Chunk.Constants {
		if f, ok := k.(*value.Function); ok && f.Name != nil && f.Name.Go() == name {
			return f
		}
	}
	t.Fatalf("no function %q among the constants of %s", name, parent)
	return nil
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, err := compile(t, `1 + 2 = 3;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestReturnOutsideFunctionIsError(t *testing.T) {
	_, err := compile(t, `return 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestReturnValueFromInitializerIsError(t *testing.T) {
	_, err := compile(t, `class A{ init(){ return 1; } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestBareReturnFromInitializerIsFine(t *testing.T) {
	_, err := compile(t, `class A{ init(){ return; } }`)
	require.NoError(t, err)
}

func TestClassCannotInheritFromItself(t *testing.T) {
	_, err := compile(t, `class A < A {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestSuperOutsideClassIsError(t *testing.T) {
	_, err := compile(t, `fn f(){ return super.hi(); }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' outside of a class.")
}

func TestSuperWithoutSuperclassIsError(t *testing.T) {
	_, err := compile(t, `class A{ hi(){ return super.hi(); } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'super' in a class with no superclass.")
}

func TestThisOutsideClassIsError(t *testing.T) {
	_, err := compile(t, `fn f(){ return this; }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

func TestReturnTypeAnnotationsEachRejectWrongStaticShape(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"int rejects string", `fn f() @int { return "x"; }`, "Function must return a number."},
		{"float rejects bool", `fn f() @float { return true; }`, "Function must return a number."},
		{"str rejects number", `fn f() @str { return 1; }`, "Function must return a string."},
		{"bool rejects string", `fn f() @bool { return "x"; }`, "Function must return a boolean."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compile(t, tc.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestReturnTypeAnnotationAcceptsMatchingShape(t *testing.T) {
	_, err := compile(t, `fn f() @int { return 1; }`)
	require.NoError(t, err)
}

func TestImportWithoutHookIsCompileError(t *testing.T) {
	_, err := compile(t, `import whatever;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Imports are not supported in this context.")
}

func TestImportHookErrorSurfacesAsCompileError(t *testing.T) {
	strings := value.NewStrings(&value.AllocList{})
	hook := func(name string) error {
		return assertErr{name}
	}
	_, err := compiler.Compile(`import missing;`, strings, hook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestImportDoesNotConsumeTrailingSemicolon(t *testing.T) {
	// Resolving spec.md's import-statement open question: `import x;` does
	// not itself consume the `;` -- parsing continues at the `;`, which is
	// then compiled as an expression statement and rejected with "Expect
	// expression.". Exercised here only for hook-success, since a real
	// import needs lang/importer.
	strings := value.NewStrings(&value.AllocList{})
	hook := func(name string) error { return nil }
	_, err := compiler.Compile(`import ok; var x = 1;`, strings, hook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect expression.")
}

func TestArrayLiteralAndIndexCompile(t *testing.T) {
	_, err := compile(t, `var a = [1, 2, 3]; var b = a[0];`)
	require.NoError(t, err)
}

func TestDictLiteralCompiles(t *testing.T) {
	_, err := compile(t, `var d = {"a": 1, "b": 2};`)
	require.NoError(t, err)
}

func TestTooManyArgumentsIsError(t *testing.T) {
	var b []byte
	for i := 0; i < 256; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '1')
	}
	_, err := compile(t, `fn f(){} f(`+string(b)+`);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't have more than 255 arguments.")
}

type assertErr struct{ name string }

func (e assertErr) Error() string { return "module not found: " + e.name }
