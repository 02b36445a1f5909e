package tcpoosc

// RunPass1 discovers every task-qualified function in root, registers
// it, and then walks each task's body performing local-variable
// promotion, in-place renaming, and suspension-point discovery (§4.J
// "Pass 1: discovery and local promotion").
func RunPass1(ctx *ParseCtx, root NodeHandle) *TaskTable {
	tt := NewTaskTable()

	for _, fd := range FindNodes(ctx.Arena, root, "function_def") {
		n := ctx.Arena.Get(fd)
		if len(n.Children) < 4 {
			continue
		}
		declSpecs, declarator := n.Children[0], n.Children[1]
		if !declSpecsHasStorageClass(ctx.Arena, declSpecs, "task") {
			continue
		}
		nameHandle := FindFirstIdent(ctx.Arena, declarator)
		if ctx.Arena.IsNil(nameHandle) {
			continue
		}
		name := ctx.Arena.Get(nameHandle).Ident.Name
		task := tt.Register(name, fd, declarator)
		if !declSpecsHasTypeSpecifier(ctx.Arena, declSpecs, "void") {
			task.ResultVar = name + "_result"
		}
	}

	for _, task := range tt.Tasks {
		body := ctx.Arena.Get(task.FuncDef).Children[3]
		rn := newRenameStack()
		rn.push()
		walkStatement(ctx, tt, task, body, rn, nil)
		rn.pop()
	}

	return tt
}

func declSpecsHasStorageClass(a *NodeArena, declSpecs NodeHandle, name string) bool {
	return declSpecHasTagged(a, declSpecs, "storage_class", name)
}

func declSpecsHasTypeSpecifier(a *NodeArena, declSpecs NodeHandle, name string) bool {
	return declSpecHasTagged(a, declSpecs, "type_specifier", name)
}

func declSpecHasTagged(a *NodeArena, declSpecs NodeHandle, treeName, format string) bool {
	n := a.Get(declSpecs)
	items := n.Children
	if len(items) == 1 && a.IsListTree(items[0]) {
		items = a.Get(items[0]).Children
	}
	for _, c := range items {
		cn := a.Get(c)
		if cn.Kind == NodeTree && cn.TreeName == treeName && cn.TreeFormat == format {
			return true
		}
	}
	return false
}

// asItemList reads a commaList result uniformly: a single item passes
// through unwrapped, several are a flat list tree.
func asItemList(a *NodeArena, h NodeHandle) []NodeHandle {
	if a.IsNil(h) {
		return nil
	}
	if a.IsListTree(h) {
		return a.Get(h).Children
	}
	return []NodeHandle{h}
}

// walkStatement is Pass 1's single recursive traversal of a task
// body. It renames identifiers in place against rn, promotes local
// declarations, and registers a Step for every suspension-point
// construct it finds (§4.J "Suspension points").
func walkStatement(ctx *ParseCtx, tt *TaskTable, task *Task, stmt NodeHandle, rn *renameStack, parent *traceNode) {
	if ctx.Arena.IsNil(stmt) {
		return
	}
	n := ctx.Arena.Get(stmt)
	if n.Kind != NodeTree {
		return
	}
	trace := &traceNode{Stmt: stmt, Parent: parent}

	switch n.TreeName {
	case "block":
		rn.push()
		for _, c := range n.Children {
			for _, s := range asItemList(ctx.Arena, c) {
				walkStatement(ctx, tt, task, s, rn, trace)
			}
		}
		rn.pop()

	case "declaration":
		renameIdentsIn(ctx, stmt, rn)
		isTaskCallInit := declInitializerIsTaskCall(ctx, tt, stmt)
		promoteLocalDeclaration(ctx, tt, task, stmt, rn)
		if isTaskCallInit {
			registerStep(tt, task, StepTaskCallContinuation, stmt, trace)
		}

	case "queue_for":
		renameIdentsIn(ctx, stmt, rn)
		registerStep(tt, task, StepQueueForEntry, stmt, trace)
		if len(n.Children) > 1 {
			walkStatement(ctx, tt, task, n.Children[1], rn, trace)
		}

	case "poll":
		renameIdentsIn(ctx, stmt, rn)
		registerStep(tt, task, StepPollEntry, stmt, trace)
		if len(n.Children) > 0 {
			walkStatement(ctx, tt, task, n.Children[0], rn, trace)
		}
		if len(n.Children) > 2 {
			registerStep(tt, task, StepPollTimeout, stmt, trace)
			walkStatement(ctx, tt, task, n.Children[2], rn, trace)
		}

	case "if":
		renameIdentsIn(ctx, stmt, rn)
		walkStatement(ctx, tt, task, n.Children[1], rn, trace)
		if subtreeHasBoundary(ctx, tt, n.Children[1]) {
			registerStep(tt, task, StepIfJoin, stmt, trace)
		}

	case "if_else":
		renameIdentsIn(ctx, stmt, rn)
		walkStatement(ctx, tt, task, n.Children[1], rn, trace)
		walkStatement(ctx, tt, task, n.Children[2], rn, trace)
		if subtreeHasBoundary(ctx, tt, n.Children[1]) || subtreeHasBoundary(ctx, tt, n.Children[2]) {
			registerStep(tt, task, StepIfJoin, stmt, trace)
		}

	case "expr_stmt":
		renameIdentsIn(ctx, stmt, rn)
		if len(n.Children) > 0 && isTaskCall(ctx, tt, n.Children[0]) {
			registerStep(tt, task, StepBareCallContinuation, stmt, trace)
		}

	default:
		if !knownStatementKinds[n.TreeName] {
			if ctx.Config.GetBool("transform.strict") {
				tt.Errors = append(tt.Errors, &CompileError{
					Kind:     ErrUnknownStatement,
					Message:  "unrecognized statement form `" + n.TreeName + "` in task " + task.OrigName,
					Position: Cursor{Line: n.Pos.Line, Column: n.Pos.Column, Offset: n.Pos.Offset},
				})
			}
			return
		}
		renameIdentsIn(ctx, stmt, rn)
		for _, c := range childStatementsOf(n) {
			walkStatement(ctx, tt, task, c, rn, trace)
		}
	}
}

// knownStatementKinds is every statement tree shape the C grammar's
// "statement" rule can produce that isn't handled by one of
// walkStatement's named cases (§4.J "Unknown statement form", gated
// by transform.strict).
var knownStatementKinds = map[string]bool{
	"return":     true,
	"break":      true,
	"continue":   true,
	"goto":       true,
	"while":      true,
	"do_while":   true,
	"for":        true,
	"switch":     true,
	"case":       true,
	"default":    true,
	"label":      true,
	"timer_decl": true,
	"empty_stmt": true,
}

// childStatementsOf names, for the statement kinds not handled
// specially by walkStatement, which child holds a nested statement to
// recurse into.
func childStatementsOf(n *Node) []NodeHandle {
	if len(n.Children) == 0 {
		return nil
	}
	switch n.TreeName {
	case "while", "switch", "label", "case", "default", "for":
		return []NodeHandle{n.Children[len(n.Children)-1]}
	case "do_while":
		return []NodeHandle{n.Children[0]}
	}
	return nil
}

// renameIdentsIn rewrites, in place, every identifier under h that
// resolves in rn to a promoted global name. It is safe to call more
// than once over overlapping subtrees: an already-renamed identifier
// simply fails to resolve again under its original name.
func renameIdentsIn(ctx *ParseCtx, h NodeHandle, rn *renameStack) {
	Walk(ctx.Arena, h, func(n NodeHandle) bool {
		node := ctx.Arena.Get(n)
		if node.Kind == NodeIdent {
			if g, ok := rn.resolve(node.Ident.Name); ok {
				node.Ident = ctx.Interner.Intern(g)
			}
		}
		return true
	})
}

// promoteLocalDeclaration mints a global name for every declarator in
// stmt, appends an uninitialized promoted global for each, and binds
// the rename context for the remainder of the enclosing scope. The
// original statement is left in place for Pass 2 to rewrite into an
// assignment (or an os_call_task site).
func promoteLocalDeclaration(ctx *ParseCtx, tt *TaskTable, task *Task, stmt NodeHandle, rn *renameStack) {
	n := ctx.Arena.Get(stmt)
	if len(n.Children) < 2 {
		return
	}
	declSpecs := n.Children[0]
	for _, item := range asItemList(ctx.Arena, n.Children[1]) {
		itemNode := ctx.Arena.Get(item)
		declarator := item
		if itemNode.Kind == NodeTree && itemNode.TreeName == "init_declarator" {
			declarator = itemNode.Children[0]
		}
		nameHandle := FindFirstIdent(ctx.Arena, declarator)
		if ctx.Arena.IsNil(nameHandle) {
			continue
		}
		origName := ctx.Arena.Get(nameHandle).Ident.Name
		globalName := task.nextLocalName(origName)

		declNode := ctx.Arena.Get(declarator)
		var stars NodeHandle
		if len(declNode.Children) > 0 {
			stars = declNode.Children[0]
		}
		newIdent := ctx.Arena.NewIdent(ctx.Interner.Intern(globalName), declNode.Pos)
		globalDeclarator := ctx.Arena.NewTree("declarator", "%*%*", []NodeHandle{stars, newIdent}, declNode.Pos)
		globalDecl := ctx.Arena.NewTree("declaration", "%* %* ;", []NodeHandle{declSpecs, globalDeclarator}, n.Pos)
		tt.AddGlobal(globalDecl)

		rn.bind(origName, globalName)
		ctx.Arena.Get(nameHandle).Ident = ctx.Interner.Intern(globalName)
	}
}

func declInitializerIsTaskCall(ctx *ParseCtx, tt *TaskTable, stmt NodeHandle) bool {
	n := ctx.Arena.Get(stmt)
	if len(n.Children) < 2 {
		return false
	}
	for _, item := range asItemList(ctx.Arena, n.Children[1]) {
		itemNode := ctx.Arena.Get(item)
		if itemNode.Kind == NodeTree && itemNode.TreeName == "init_declarator" && len(itemNode.Children) > 1 {
			if isTaskCall(ctx, tt, itemNode.Children[1]) {
				return true
			}
		}
	}
	return false
}

func isTaskCall(ctx *ParseCtx, tt *TaskTable, h NodeHandle) bool {
	n := ctx.Arena.Get(h)
	if n.Kind != NodeTree || n.TreeName != "call" || len(n.Children) == 0 {
		return false
	}
	callee := ctx.Arena.Get(n.Children[0])
	if callee.Kind != NodeIdent {
		return false
	}
	_, ok := tt.Lookup(callee.Ident.Name)
	return ok
}

// subtreeHasBoundary reports whether h contains a task call, a
// queue_for, or a poll anywhere within it — used to decide whether an
// if/else arm needs its own continuation step.
func subtreeHasBoundary(ctx *ParseCtx, tt *TaskTable, h NodeHandle) bool {
	found := false
	Walk(ctx.Arena, h, func(n NodeHandle) bool {
		if found {
			return false
		}
		node := ctx.Arena.Get(n)
		if node.Kind == NodeTree {
			if node.TreeName == "queue_for" || node.TreeName == "poll" {
				found = true
				return false
			}
			if node.TreeName == "call" && isTaskCall(ctx, tt, n) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func registerStep(tt *TaskTable, task *Task, kind StepKind, stmt NodeHandle, trace *traceNode) *Step {
	step := &Step{Name: task.nextStepName(), Kind: kind, Stmt: stmt, Trace: trace}
	task.Steps = append(task.Steps, step)
	return step
}
