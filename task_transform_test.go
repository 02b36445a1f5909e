package tcpoosc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDiscoveryAndResultVar(t *testing.T) {
	src := `
task int f ( void ) { return 1 ; }
task void g ( void ) { int x ; }
`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)

	f, ok := tt.Lookup("f")
	require.True(t, ok, "expected task f to be discovered")
	assert.Equal(t, 1, f.ID, "expected f to be task id 1")
	assert.Equal(t, "f_result", f.ResultVar, "expected a non-void task to get a result variable")

	g, ok := tt.Lookup("g")
	require.True(t, ok, "expected task g to be discovered")
	assert.Equal(t, "", g.ResultVar, "expected a void task to have no result variable")
}

func TestLocalPromotionAndTaskCallLowering(t *testing.T) {
	src := `
task int f ( void ) { return 1 ; }
task void g ( void ) { int x = f ( ) ; }
`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)

	f, _ := tt.Lookup("f")
	g, _ := tt.Lookup("g")

	require.Len(t, tt.NewGlobals, 1, "expected exactly one promoted global")
	promoted := ctx.Arena.Get(tt.NewGlobals[0])
	assert.Equal(t, "declaration", promoted.TreeName, "expected promoted global to be a declaration")
	promotedName := ctx.Arena.Get(FindFirstIdent(ctx.Arena, promoted.Children[1])).Ident.Name
	assert.Equal(t, "g_var1_x", promotedName, "expected promoted global named g_var1_x")

	require.Len(t, g.Steps, 1, "expected exactly one step on g")
	assert.Equal(t, StepTaskCallContinuation, g.Steps[0].Kind)
	stepName := g.Steps[0].Name
	assert.Equal(t, "g_step1", stepName, "expected step named g_step1")

	RunPass2(ctx, tt)

	body := ctx.Arena.Get(g.FuncDef).Children[3]
	decls := FindNodes(ctx.Arena, body, "declaration")
	assert.Empty(t, decls, "expected the local declaration to be rewritten away")

	calls := FindNodes(ctx.Arena, body, "call")
	require.Len(t, calls, 1, "expected exactly one rewritten os_call_task site")
	call := ctx.Arena.Get(calls[0])
	assert.True(t, strings.HasPrefix(call.TreeFormat, "os_call_task ("), "expected os_call_task format, got %q", call.TreeFormat)
	require.Len(t, call.Children, 3, "expected 3 call arguments")
	assert.Equal(t, int64(f.ID), ctx.Arena.Get(call.Children[0]).Int, "expected first argument to be f's task id")
	assert.Equal(t, int64(g.ID), ctx.Arena.Get(call.Children[1]).Int, "expected second argument to be g's task id")
	assert.Equal(t, stepName, ctx.Arena.Get(call.Children[2]).Ident.Name, "expected third argument to be the step ident")
}

func TestBareCallContinuationRewriting(t *testing.T) {
	src := `
task void f ( void ) { return ; }
task void g ( void ) { f ( ) ; }
`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	g, _ := tt.Lookup("g")
	require.Len(t, g.Steps, 1, "expected one bare-call-continuation step")
	assert.Equal(t, StepBareCallContinuation, g.Steps[0].Kind)
	RunPass2(ctx, tt)

	body := ctx.Arena.Get(g.FuncDef).Children[3]
	calls := FindNodes(ctx.Arena, body, "call")
	require.Len(t, calls, 1, "expected one rewritten call")
	assert.Contains(t, ctx.Arena.Get(calls[0]).TreeFormat, "os_call_task")
}

func TestQueueForLowering(t *testing.T) {
	src := `task void g ( void ) { queue for q x ; }`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	g, _ := tt.Lookup("g")

	require.Len(t, g.Steps, 1, "expected one queue-for-entry step")
	assert.Equal(t, StepQueueForEntry, g.Steps[0].Kind)
	stepName := g.Steps[0].Name
	assert.Equal(t, "g_step1", stepName)

	RunPass2(ctx, tt)

	body := ctx.Arena.Get(g.FuncDef).Children[3]
	calls := FindNodes(ctx.Arena, body, "call")
	require.Len(t, calls, 1, "expected one rewritten os_queue_wait site")
	call := ctx.Arena.Get(calls[0])
	assert.True(t, strings.HasPrefix(call.TreeFormat, "os_queue_wait ("), "expected os_queue_wait format, got %q", call.TreeFormat)
	require.Len(t, call.Children, 3, "expected 3 call arguments")
	assert.Equal(t, "q", ctx.Arena.Get(call.Children[0]).Ident.Name, "expected first argument to be the queue ident")
	assert.Equal(t, int64(g.ID), ctx.Arena.Get(call.Children[1]).Int, "expected second argument to be g's task id")
	assert.Equal(t, stepName, ctx.Arena.Get(call.Children[2]).Ident.Name, "expected third argument to be the step ident")
}

func TestPollLoweringWithoutTimeout(t *testing.T) {
	src := `task void g ( void ) { poll x ; }`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	g, _ := tt.Lookup("g")

	require.Len(t, g.Steps, 1, "expected one poll-entry step")
	assert.Equal(t, StepPollEntry, g.Steps[0].Kind)
	stepName := g.Steps[0].Name

	RunPass2(ctx, tt)

	body := ctx.Arena.Get(g.FuncDef).Children[3]
	calls := FindNodes(ctx.Arena, body, "call")
	require.Len(t, calls, 1, "expected one rewritten os_poll_wait site")
	call := ctx.Arena.Get(calls[0])
	assert.True(t, strings.HasPrefix(call.TreeFormat, "os_poll_wait ("), "expected os_poll_wait format, got %q", call.TreeFormat)
	require.Len(t, call.Children, 2, "expected 2 call arguments")
	assert.Equal(t, int64(g.ID), ctx.Arena.Get(call.Children[0]).Int, "expected first argument to be g's task id")
	assert.Equal(t, stepName, ctx.Arena.Get(call.Children[1]).Ident.Name, "expected second argument to be the step ident")
}

func TestPollLoweringWithAtMostTimeout(t *testing.T) {
	src := `task void g ( void ) { poll x ; at most ( 10 ) y ; }`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	g, _ := tt.Lookup("g")

	require.Len(t, g.Steps, 2, "expected a poll-entry step and a poll-timeout step")
	assert.Equal(t, StepPollEntry, g.Steps[0].Kind)
	assert.Equal(t, StepPollTimeout, g.Steps[1].Kind)
	entryName, timeoutName := g.Steps[0].Name, g.Steps[1].Name
	assert.Equal(t, "g_step1", entryName)
	assert.Equal(t, "g_step2", timeoutName)

	RunPass2(ctx, tt)

	body := ctx.Arena.Get(g.FuncDef).Children[3]
	calls := FindNodes(ctx.Arena, body, "call")
	require.Len(t, calls, 1, "expected one rewritten os_poll_wait_timeout site")
	call := ctx.Arena.Get(calls[0])
	assert.True(t, strings.HasPrefix(call.TreeFormat, "os_poll_wait_timeout ("),
		"expected os_poll_wait_timeout format, got %q", call.TreeFormat)
	require.Len(t, call.Children, 4, "expected 4 call arguments")
	assert.Equal(t, int64(g.ID), ctx.Arena.Get(call.Children[0]).Int, "expected first argument to be g's task id")
	assert.Equal(t, entryName, ctx.Arena.Get(call.Children[1]).Ident.Name, "expected second argument to be the entry step ident")
	assert.Equal(t, int64(10), ctx.Arena.Get(call.Children[2]).Int, "expected third argument to be the timeout expression")
	assert.Equal(t, timeoutName, ctx.Arena.Get(call.Children[3]).Ident.Name, "expected fourth argument to be the timeout step ident")
}

func TestEveryStartLoweringSynthesizesInitFunction(t *testing.T) {
	src := `
task void f ( void ) { return ; }
every ( 1000 ) start f ;
`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	RunPass2(ctx, tt)

	initFn := RunEveryLowering(ctx, tt, root, "prog")
	require.False(t, ctx.Arena.IsNil(initFn), "expected a synthesized init function")
	n := ctx.Arena.Get(initFn)
	assert.Equal(t, "function_def", n.TreeName)
	nameHandle := FindFirstIdent(ctx.Arena, n.Children[1])
	assert.Equal(t, "prog_init", ctx.Arena.Get(nameHandle).Ident.Name, "expected the init function to be named prog_init")

	calls := FindNodes(ctx.Arena, n.Children[2], "call")
	require.Len(t, calls, 1, "expected one os_start_every call in the init function")
	assert.Contains(t, ctx.Arena.Get(calls[0]).TreeFormat, "os_start_every")
}

func TestUnknownStatementFormGatedByStrictConfig(t *testing.T) {
	ctx := newTestCtx("")
	tt := NewTaskTable()
	task := tt.Register("t", NilHandle, NilHandle)
	bogus := ctx.Arena.NewTree("bogus_stmt", ";", nil, Location{})
	rn := newRenameStack()
	rn.push()

	walkStatement(ctx, tt, task, bogus, rn, nil)
	assert.Empty(t, tt.Errors, "expected an unrecognized statement form to be skipped silently by default")

	ctx.Config.SetBool("transform.strict", true)
	walkStatement(ctx, tt, task, bogus, rn, nil)
	require.Len(t, tt.Errors, 1, "expected transform.strict to raise ErrUnknownStatement")
	assert.Equal(t, ErrUnknownStatement, tt.Errors[0].Kind)
}

func TestEveryStartLoweringReturnsNilWithoutAnyEveryStatement(t *testing.T) {
	src := `task void f ( void ) { return ; }`
	ctx, root := mustParse(t, src, "root")
	tt := RunPass1(ctx, root)
	RunPass2(ctx, tt)
	initFn := RunEveryLowering(ctx, tt, root, "prog")
	assert.True(t, ctx.Arena.IsNil(initFn), "expected no init function when there are no every-start statements")
}
