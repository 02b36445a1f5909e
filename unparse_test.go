package tcpoosc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unparseToString(t *testing.T, ctx *ParseCtx, h NodeHandle) string {
	t.Helper()
	sink := NewBufferSink()
	u := NewUnparser(ctx.Arena, sink)
	require.NoError(t, u.Unparse(h))
	return sink.String()
}

func TestUnparseSimpleExpression(t *testing.T) {
	ctx, h := mustParse(t, "a*b+c", "expr")
	got := unparseToString(t, ctx, h)
	assert.Equal(t, "a * b + c", got, "expected operator format strings to include their literal spacing")
}

func TestUnparseArgListInsertsCommaSpace(t *testing.T) {
	ctx, h := mustParse(t, "f(a,b,c)", "postfix")
	got := unparseToString(t, ctx, h)
	assert.Equal(t, "f ( a, b, c )", got, "expected comma-separated args to print with a space")
}

func TestUnparseBlockPrintsStatementsOnSeparateLines(t *testing.T) {
	ctx, h := mustParse(t, "{ a ; b ; }", "compound_statement")
	got := unparseToString(t, ctx, h)
	assert.Contains(t, got, "a ;\n", "expected a newline-separated statement sequence")
	assert.GreaterOrEqual(t, strings.Count(got, "\n"), 2, "expected at least 2 newlines in a 2-statement indented block")
}

func TestUnparseDeclSpecsAdjacencySpacing(t *testing.T) {
	ctx, h := mustParse(t, "unsigned int", "decl_specs")
	got := unparseToString(t, ctx, h)
	assert.Equal(t, "unsigned int", got, "expected adjacency spacing to separate keywords")
}

func TestUnparseStringLiteralEscaping(t *testing.T) {
	ctx := newTestCtx(`"a\nb"`)
	h, err := ctx.Parse("string")
	require.NoError(t, err)
	got := unparseToString(t, ctx, h)
	assert.Equal(t, `"a\nb"`, got, "expected escaped newline to round-trip")
}

func TestUnparseEveryLoweredCallSite(t *testing.T) {
	src := `
task void f ( void ) { return ; }
task void g ( void ) { f ( ) ; }
`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	RunPass2(ctx, tt)
	got := unparseToString(t, ctx, root)
	assert.Contains(t, got, "os_call_task (", "expected the rewritten bare call to print as os_call_task ( ... )")
}
