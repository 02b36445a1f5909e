package tcpoosc

import "strings"

// RunPass2 rewrites every registered suspension point's statement, in
// place, into the scheduler call that replaces it (§4.J "Pass 2: body
// rewriting"). Node handles are mutated rather than replaced so that
// parent Children slices never need to learn a new handle.
//
// The statement's original shape is the concrete case the rewriting
// rules were defined against: a local declaration whose initializer is
// a task call becomes an os_call_task site, and any other local
// declaration becomes either a plain assignment (if it had an
// initializer) or an empty statement (if it didn't, since the value
// now lives in a promoted global with no runtime initializer to run).
// The remaining boundary kinds follow the same pattern: the triggering
// statement is replaced by the scheduler call that registers the
// step, and the kind-specific arguments after the task/queue id are
// always the step name(s) the construct suspends to.
func RunPass2(ctx *ParseCtx, tt *TaskTable) {
	for _, task := range tt.Tasks {
		for _, step := range task.Steps {
			switch step.Kind {
			case StepBareCallContinuation:
				rewriteBareCall(ctx, tt, task, step)
			case StepQueueForEntry:
				rewriteQueueFor(ctx, task, step)
			case StepPollEntry:
				rewritePoll(ctx, task, step, findStepFor(task, step.Stmt, StepPollTimeout))
			case StepPollTimeout, StepTaskCallContinuation, StepIfJoin:
				// StepPollTimeout is folded into its StepPollEntry sibling
				// above. StepTaskCallContinuation is handled by the
				// declaration sweep below, since its statement is a
				// "declaration" node, not a bare call. StepIfJoin records
				// which if/if_else introduces a join for codegen's benefit;
				// the if/if_else statement itself is left alone, since its
				// two arms keep their own source text.
			}
		}

		body := ctx.Arena.Get(task.FuncDef).Children[3]
		for _, decl := range FindNodes(ctx.Arena, body, "declaration") {
			rewriteLocalDeclaration(ctx, tt, task, decl)
		}
	}
}

// RunEveryLowering finds every top-level "every (t) start f;" statement
// under root, rewrites each into an os_start_every call, and returns a
// synthetic "<programName>_init" function_def collecting them in
// source order, or NilHandle if there were none.
func RunEveryLowering(ctx *ParseCtx, tt *TaskTable, root NodeHandle, programName string) NodeHandle {
	var calls []NodeHandle
	for _, everyStmt := range FindNodes(ctx.Arena, root, "every_start") {
		n := ctx.Arena.Get(everyStmt)
		if len(n.Children) < 2 {
			continue
		}
		interval, calleeIdent := n.Children[0], n.Children[1]
		calleeName := ctx.Arena.Get(calleeIdent).Ident.Name
		calleeTask, ok := tt.Lookup(calleeName)
		if !ok {
			continue
		}
		rewriteAsOsCall(ctx.Arena, n, "os_start_every",
			[]NodeHandle{interval, ctx.Arena.NewInteger(int64(calleeTask.ID), n.Pos)})
		n.TreeFormat += " ;"
		calls = append(calls, everyStmt)
	}
	if len(calls) == 0 {
		return NilHandle
	}
	return buildInitFunction(ctx, programName, calls)
}

func buildInitFunction(ctx *ParseCtx, programName string, stmts []NodeHandle) NodeHandle {
	pos := ctx.Arena.Get(stmts[0]).Pos
	voidSpec := ctx.Arena.NewTree("type_specifier", "void", nil, pos)
	declSpecs := ctx.Arena.NewTree("decl_specs", "%*", []NodeHandle{voidSpec}, pos)
	name := ctx.Arena.NewIdent(ctx.Interner.Intern(programName+"_init"), pos)
	funcDecl := ctx.Arena.NewTree("func_decl", "%* ( )", []NodeHandle{name}, pos)
	declarator := ctx.Arena.NewTree("declarator", "%*", []NodeHandle{funcDecl}, pos)
	body := ctx.Arena.NewListTree(stmts, pos)
	block := ctx.Arena.NewTree("block", "{\n%>%*\n%<}", []NodeHandle{body}, pos)
	return ctx.Arena.NewTree("function_def", "%* %*\n%*", []NodeHandle{declSpecs, declarator, block}, pos)
}

func findStepFor(task *Task, stmt NodeHandle, kind StepKind) *Step {
	for _, s := range task.Steps {
		if s.Stmt == stmt && s.Kind == kind {
			return s
		}
	}
	return nil
}

// rewriteAsOsCall turns node into a call tree naming fn, with args as
// its argument list. The call name is baked into the format string as
// literal text, not a child, so args holds exactly the call's
// arguments.
func rewriteAsOsCall(a *NodeArena, node *Node, fn string, args []NodeHandle) {
	placeholders := make([]string, len(args))
	for i := range placeholders {
		placeholders[i] = "%*"
	}
	node.Kind = NodeTree
	node.TreeName = "call"
	node.TreeFormat = fn + " ( " + strings.Join(placeholders, ", ") + " )"
	node.Children = args
}

func rewriteBareCall(ctx *ParseCtx, tt *TaskTable, task *Task, step *Step) {
	n := ctx.Arena.Get(step.Stmt)
	if len(n.Children) == 0 {
		return
	}
	callNode := ctx.Arena.Get(n.Children[0])
	calleeTask := calleeTaskOf(ctx, tt, callNode)
	if calleeTask == nil {
		return
	}
	rewriteAsOsCall(ctx.Arena, n, "os_call_task", []NodeHandle{
		ctx.Arena.NewInteger(int64(calleeTask.ID), n.Pos),
		ctx.Arena.NewInteger(int64(task.ID), n.Pos),
		newIdentNode(ctx, step.Name, n.Pos),
	})
	n.TreeFormat += " ;"
}

func rewriteQueueFor(ctx *ParseCtx, task *Task, step *Step) {
	n := ctx.Arena.Get(step.Stmt)
	if len(n.Children) == 0 {
		return
	}
	queueIdent := n.Children[0]
	rewriteAsOsCall(ctx.Arena, n, "os_queue_wait", []NodeHandle{
		queueIdent,
		ctx.Arena.NewInteger(int64(task.ID), n.Pos),
		newIdentNode(ctx, step.Name, n.Pos),
	})
	n.TreeFormat += " ;"
}

func rewritePoll(ctx *ParseCtx, task *Task, entry, timeout *Step) {
	n := ctx.Arena.Get(entry.Stmt)
	var timeoutExpr NodeHandle = NilHandle
	if timeout != nil && len(n.Children) > 2 {
		timeoutExpr = n.Children[1]
	}
	fn := "os_poll_wait"
	args := []NodeHandle{
		ctx.Arena.NewInteger(int64(task.ID), n.Pos),
		newIdentNode(ctx, entry.Name, n.Pos),
	}
	if timeout != nil {
		fn = "os_poll_wait_timeout"
		args = append(args, timeoutExpr, newIdentNode(ctx, timeout.Name, n.Pos))
	}
	rewriteAsOsCall(ctx.Arena, n, fn, args)
	n.TreeFormat += " ;"
}

// rewriteLocalDeclaration rewrites a task body's local declaration
// into its Pass 2 form. Only the first declarator's initializer is
// honored; a declaration with more than one comma-joined declarator
// keeps the remaining declarators' initializers unexecuted, which
// matches the single-declarator shape every concrete example in §8
// uses for locals that become suspension points.
func rewriteLocalDeclaration(ctx *ParseCtx, tt *TaskTable, task *Task, stmt NodeHandle) {
	n := ctx.Arena.Get(stmt)
	target, init, hasInit := firstDeclaratorInit(ctx, stmt)
	if !hasInit {
		n.Kind = NodeTree
		n.TreeName = "empty_stmt"
		n.TreeFormat = ";"
		n.Children = nil
		return
	}
	if calleeTask := calleeTaskOf(ctx, tt, ctx.Arena.Get(init)); calleeTask != nil {
		step := findStepFor(task, stmt, StepTaskCallContinuation)
		stepName := ""
		if step != nil {
			stepName = step.Name
		}
		rewriteAsOsCall(ctx.Arena, n, "os_call_task", []NodeHandle{
			ctx.Arena.NewInteger(int64(calleeTask.ID), n.Pos),
			ctx.Arena.NewInteger(int64(task.ID), n.Pos),
			newIdentNode(ctx, stepName, n.Pos),
		})
		n.TreeFormat += " ;"
		return
	}
	n.Kind = NodeTree
	n.TreeName = "assign_eq"
	n.TreeFormat = "%* = %* ;"
	n.Children = []NodeHandle{target, init}
}

// firstDeclaratorInit reads a declaration statement's first
// declarator, returning its (already renamed) target identifier and
// initializer expression, if any.
func firstDeclaratorInit(ctx *ParseCtx, stmt NodeHandle) (target, init NodeHandle, hasInit bool) {
	n := ctx.Arena.Get(stmt)
	if len(n.Children) < 2 {
		return NilHandle, NilHandle, false
	}
	items := asItemList(ctx.Arena, n.Children[1])
	if len(items) == 0 {
		return NilHandle, NilHandle, false
	}
	item := ctx.Arena.Get(items[0])
	if item.Kind == NodeTree && item.TreeName == "init_declarator" && len(item.Children) > 1 {
		return FindFirstIdent(ctx.Arena, item.Children[0]), item.Children[1], true
	}
	return FindFirstIdent(ctx.Arena, items[0]), NilHandle, false
}

func calleeTaskOf(ctx *ParseCtx, tt *TaskTable, call *Node) *Task {
	if call.Kind != NodeTree || call.TreeName != "call" || len(call.Children) == 0 {
		return nil
	}
	callee := ctx.Arena.Get(call.Children[0])
	if callee.Kind != NodeIdent {
		return nil
	}
	t, ok := tt.Lookup(callee.Ident.Name)
	if !ok {
		return nil
	}
	return t
}

func newIdentNode(ctx *ParseCtx, name string, pos Location) NodeHandle {
	return ctx.Arena.NewIdent(ctx.Interner.Intern(name), pos)
}
