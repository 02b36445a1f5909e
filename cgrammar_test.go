package tcpoosc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionDefinitionShape(t *testing.T) {
	src := `int add(int a, int b) { return a + b ; }`
	ctx, h := mustParse(t, src, "function_definition")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "function_def", n.TreeName)
	require.Len(t, n.Children, 4, "expected 4 children (decl_specs, declarator, local decls, body)")
	body := ctx.Arena.Get(n.Children[3])
	assert.Equal(t, "block", body.TreeName, "expected the 4th child to be the function's block")
}

func TestTaskStorageClassRecognized(t *testing.T) {
	src := `task void producer ( void ) { queue for q x ; }`
	ctx, h := mustParse(t, src, "function_definition")
	n := ctx.Arena.Get(h)
	declSpecs := n.Children[0]
	assert.True(t, declSpecsHasStorageClass(ctx.Arena, declSpecs, "task"),
		"expected the task storage class to be recognized in decl_specs")
}

func TestQueueForStatementShape(t *testing.T) {
	ctx, h := mustParse(t, "queue for q x ;", "queue_for_statement")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "queue_for", n.TreeName)
	assert.Len(t, n.Children, 2, "expected 2 children (queue ident, body statement)")
}

func TestPollStatementWithoutAtMost(t *testing.T) {
	ctx, h := mustParse(t, "poll x ;", "poll_statement")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "poll", n.TreeName)
	assert.Len(t, n.Children, 1, "expected 1 child (body statement) with no at-most clause")
}

func TestPollStatementWithAtMost(t *testing.T) {
	ctx, h := mustParse(t, "poll x ; at most ( 10 ) y ;", "poll_statement")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "poll", n.TreeName)
	require.Len(t, n.Children, 3, "expected 3 children (body, timeout expr, timeout statement)")
	timeout := ctx.Arena.Get(n.Children[1])
	assert.Equal(t, NodeInteger, timeout.Kind)
	assert.Equal(t, int64(10), timeout.Int, "expected timeout expr to be integer 10")
}

func TestEveryStartStatementShape(t *testing.T) {
	ctx, h := mustParse(t, "every ( 100 ) start producer ;", "every_statement")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "every_start", n.TreeName)
	require.Len(t, n.Children, 2, "expected 2 children (interval, task ident)")
	callee := ctx.Arena.Get(n.Children[1])
	assert.Equal(t, NodeIdent, callee.Kind)
	assert.Equal(t, "producer", callee.Ident.Name)
}

func TestArgListCommaSeparated(t *testing.T) {
	ctx, h := mustParse(t, "f ( a , b , c )", "postfix")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "call", n.TreeName)
	require.True(t, ctx.Arena.IsListTree(n.Children[1]), "expected a multi-argument call's arg_list to be a list tree")
	args := ctx.Arena.Get(n.Children[1])
	assert.Len(t, args.Children, 3, "expected 3 flat arguments")
}

func TestMultiStatementBlockShape(t *testing.T) {
	ctx, h := mustParse(t, "{ a ; b ; c ; }", "compound_statement")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "block", n.TreeName)
	require.Len(t, n.Children, 1, "expected exactly one child wrapping the statement list")
	list := ctx.Arena.Get(n.Children[0])
	assert.Equal(t, ListTreeName, list.TreeName)
	assert.Len(t, list.Children, 3, "expected 3 statements in the block")
}

func TestMultiSpecifierDeclSpecsShape(t *testing.T) {
	ctx, h := mustParse(t, "unsigned int", "decl_specs")
	n := ctx.Arena.Get(h)
	assert.Equal(t, "decl_specs", n.TreeName)
	require.Len(t, n.Children, 1, "expected exactly one wrapped list-tree child")
	list := ctx.Arena.Get(n.Children[0])
	assert.Len(t, list.Children, 2, "expected 2 specifiers (unsigned, int)")
}

func TestExpressionStatementFailsOnBareOperator(t *testing.T) {
	ctx := newTestCtx("a * ;")
	_, err := ctx.Parse("statement")
	assert.Error(t, err, "expected `a * ;` to fail as a statement")
}
