package tcpoosc

// This file is component I: the C89-shaped expression/declaration/
// statement grammar plus the four TinyCoPoOS extensions, built on top
// of the engine (grammar.go/parser.go) and the token grammars
// (tokens.go). Keywords are recognized at the ident layer via a
// Condition hook against a static spelling, per §4.I; a name is
// flagged as a keyword in the interner the first time it is matched
// in a keyword position.
//
// Simplifications against full C89:
// abstract declarators support pointers only (no array/function
// abstract forms); typedef names are not tracked, so only the
// built-in type-specifier keywords are recognized; bit-field widths
// are not parsed; l_expr7 merges bitwise-XOR and bitwise-OR into one
// precedence level to fit the spec's nine l_expr levels.

// ---- shared helpers ----

func discardAdd(ctx *ParseCtx, seed resultList, child NodeHandle) resultList {
	return seed
}

// ws matches optional white_space and always discards its result: a
// run of whitespace or comments is never meaningful AST content.
func ws() *Element {
	e := Opt(Ref("white_space"))
	e.Hooks.Add = discardAdd
	return e
}

// sw interleaves ws() between each given element, including before
// the first and after the last, so callers can list only the
// meaningful tokens of a sequence.
func sw(elems ...*Element) []*Element {
	out := make([]*Element, 0, len(elems)*2+1)
	out = append(out, ws())
	for _, e := range elems {
		out = append(out, e, ws())
	}
	return out
}

func opMatch(s string) TerminalFn {
	return func(ctx *ParseCtx) (Cursor, bool) {
		cur := ctx.cur
		for i := 0; i < len(s); i++ {
			b, ok := ctx.Buffer.ByteAt(cur)
			if !ok || b != s[i] {
				return ctx.cur, false
			}
			cur, _ = ctx.Buffer.Advance(cur)
		}
		return cur, true
	}
}

// Punc matches and discards a fixed punctuation/operator spelling.
func Punc(s string) *Element {
	e := Term(opMatch(s))
	e.Hooks.Add = discardAdd
	e.Hooks.ExpectMsg = "'" + s + "'"
	return e
}

func keywordCondition(ctx *ParseCtx, result NodeHandle, arg string) bool {
	n := ctx.Arena.Get(result)
	if n.Kind != NodeIdent || n.Ident.Name != arg {
		return false
	}
	n.Ident.IsKeyword = true
	return true
}

// kw matches and discards a keyword spelling.
func kw(name string) *Element {
	e := Ref("ident")
	e.Hooks.Condition = keywordCondition
	e.CondArg = name
	e.Hooks.ExpectMsg = "'" + name + "'"
	e.Hooks.Add = discardAdd
	return e
}

// ---- standardized tree-construction callbacks (§4.I) ----

func addChild(ctx *ParseCtx, seed resultList, child NodeHandle) resultList {
	if ctx.Arena.IsNil(child) {
		return seed
	}
	return seed.push(child)
}

// takeChild transfers child as the whole accumulator, discarding
// whatever was previously accumulated.
func takeChild(ctx *ParseCtx, seed resultList, child NodeHandle) resultList {
	return emptyResultList().push(child)
}

// recAddChild seeds a left-recursive growth step's accumulator from
// the previous winning parse.
func recAddChild(ctx *ParseCtx, prevResult NodeHandle) resultList {
	return emptyResultList().push(prevResult)
}

type endCallbackFn func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error)

func makeTree(name, format string) endCallbackFn {
	return func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
		return ctx.Arena.NewTree(name, format, seed.toSlice(), pos), nil
	}
}

// makeTreeFromList builds a tree whose single %* consumes a
// newline-separated list tree of whatever Many(Group(...)) collected
// (a run of statements, or a run of external declarations). The
// accumulator already holds exactly one list-tagged item at this
// point; this only replaces its separator, since the generic
// Many/Sequence machinery always builds it with an empty one.
func makeTreeFromList(name, format string) endCallbackFn {
	return func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
		items := seed.toSlice()
		var body []NodeHandle
		if len(items) == 1 && ctx.Arena.IsListTree(items[0]) {
			body = ctx.Arena.Get(items[0]).Children
		} else {
			body = items
		}
		wrapped := ctx.Arena.NewListTreeSep(body, pos, "\n")
		return ctx.Arena.NewTree(name, format, []NodeHandle{wrapped}, pos), nil
	}
}

// passTree unwraps a single-child list and surfaces the child
// directly, used where a rule's only job is to strip delimiters
// (e.g. parenthesized expressions).
func passTree(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
	items := seed.toSlice()
	if len(items) == 1 {
		return items[0], nil
	}
	return ctx.Arena.NewListTree(items, pos), nil
}

// commaList defines name as "item (',' item)*". A single item passes
// through unwrapped; two or more are collected into one flat list
// tree regardless of how many growth rounds the left recursion takes
// to assemble them (each round's seed holds the previous round's
// result in position 0, which is already a list tree after the first
// comma — flattenCommaGrowth re-flattens it instead of nesting).
func commaList(g *Grammar, name, item string) {
	nt := g.Define(name)
	nt.AddRule(Seq(Ref(item)))
	tail := &Rule{
		Elements:      sw(Punc(","), Ref(item)),
		StartCallback: recAddChild,
		EndCallback:   flattenCommaGrowth,
	}
	nt.AddLeftRecursiveRule(tail)
}

func flattenCommaGrowth(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
	items := seed.toSlice()
	flat := make([]NodeHandle, 0, len(items)+1)
	if ctx.Arena.IsListTree(items[0]) {
		flat = append(flat, ctx.Arena.Get(items[0]).Children...)
	} else {
		flat = append(flat, items[0])
	}
	flat = append(flat, items[1:]...)
	return ctx.Arena.NewListTreeSep(flat, pos, ", "), nil
}

// flattenPollGroups gives "poll" a uniform, flat shape regardless of
// whether its optional "at most (expr) statement" clause matched: the
// clause's Group collapses to a single two-item list tree when
// present, which this unwraps into the poll node's own Children
// instead of leaving it nested one level deeper.
func flattenPollGroups(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
	items := seed.toSlice()
	children := []NodeHandle{items[0]}
	format := "poll %*"
	if len(items) > 1 && ctx.Arena.IsListTree(items[1]) {
		children = append(children, ctx.Arena.Get(items[1]).Children...)
		format = "poll %* at most ( %* ) %*"
	}
	return ctx.Arena.NewTree("poll", format, children, pos), nil
}

type opSpec struct {
	sym  string
	tree string
}

// defineBinOpLevel defines a left-associative binary-operator
// precedence level over next, one left-recursive rule per operator in
// ops (longer spellings must precede their prefixes, e.g. "<=" before
// "<").
func defineBinOpLevel(g *Grammar, name, next string, ops []opSpec) {
	nt := g.Define(name)
	nt.AddRule(Seq(Ref(next)))
	for _, op := range ops {
		o := op
		nt.AddLeftRecursiveRule(&Rule{
			Elements:      sw(Punc(o.sym), Ref(next)),
			StartCallback: recAddChild,
			EndCallback:   makeTree(o.tree, "%* "+o.sym+" %*"),
		})
	}
}

// DefineCGrammar registers the token grammars and the full
// C+TinyCoPoOS grammar into g, rooted at "root".
func DefineCGrammar(g *Grammar) {
	DefineTokenGrammars(g)

	definePrimaryThroughExpr(g)
	defineTypeAndDeclarator(g)
	defineDeclarationsAndStatements(g)
	defineTaskExtensions(g)
	defineTopLevel(g)
}

// ---- primary -> ... -> expr ----

func definePrimaryThroughExpr(g *Grammar) {
	primary := g.Define("primary")
	primary.AddRule(Seq(Ref("ident")))
	primary.AddRule(Seq(Ref("int")))
	primary.AddRule(Seq(Ref("char")))
	primary.AddRule(Seq(Ref("string")))
	primary.AddRule(&Rule{
		Elements:    sw(Punc("("), Ref("expr"), Punc(")")),
		EndCallback: passTree,
	})

	postfix := g.Define("postfix")
	postfix.AddRule(Seq(Ref("primary")))
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("["), Ref("expr"), Punc("]")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("index", "%* [ %* ]"),
	})
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("("), Opt(Ref("arg_list")), Punc(")")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("call", "%* ( %* )"),
	})
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("->"), Ref("ident")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("arrow", "%* -> %*"),
	})
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("."), Ref("ident")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("member", "%* . %*"),
	})
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("++")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("postinc", "%* ++"),
	})
	postfix.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("--")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("postdec", "%* --"),
	})
	commaList(g, "arg_list", "assignment")

	unary := g.Define("unary")
	unary.AddRule(&Rule{Elements: sw(Punc("++"), Ref("unary")), EndCallback: makeTree("preinc", "++ %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("--"), Ref("unary")), EndCallback: makeTree("predec", "-- %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("&"), Ref("cast")), EndCallback: makeTree("addr", "& %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("*"), Ref("cast")), EndCallback: makeTree("deref", "* %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("+"), Ref("cast")), EndCallback: makeTree("pos", "+ %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("-"), Ref("cast")), EndCallback: makeTree("neg", "- %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("~"), Ref("cast")), EndCallback: makeTree("bnot", "~ %*")})
	unary.AddRule(&Rule{Elements: sw(Punc("!"), Ref("cast")), EndCallback: makeTree("not", "! %*")})
	unary.AddRule(&Rule{
		Elements:    sw(kw("sizeof"), Punc("("), Ref("type_name"), Punc(")")),
		EndCallback: makeTree("sizeof_type", "sizeof ( %* )"),
	})
	unary.AddRule(&Rule{Elements: sw(kw("sizeof"), Ref("unary")), EndCallback: makeTree("sizeof_expr", "sizeof %*")})
	unary.AddRule(Seq(Ref("postfix")))

	cast := g.Define("cast")
	cast.AddRule(&Rule{
		Elements:    sw(Punc("("), Ref("type_name"), Punc(")"), Ref("cast")),
		EndCallback: makeTree("cast", "( %* ) %*"),
	})
	cast.AddRule(Seq(Ref("unary")))

	defineBinOpLevel(g, "l_expr1", "cast", []opSpec{{"*", "mul"}, {"/", "div"}, {"%", "mod"}})
	defineBinOpLevel(g, "l_expr2", "l_expr1", []opSpec{{"+", "add"}, {"-", "sub"}})
	defineBinOpLevel(g, "l_expr3", "l_expr2", []opSpec{{"<<", "shl"}, {">>", "shr"}})
	defineBinOpLevel(g, "l_expr4", "l_expr3", []opSpec{
		{"<=", "le"}, {">=", "ge"}, {"<", "lt"}, {">", "gt"},
	})
	defineBinOpLevel(g, "l_expr5", "l_expr4", []opSpec{{"==", "eq"}, {"!=", "ne"}})
	defineBinOpLevel(g, "l_expr6", "l_expr5", []opSpec{{"&", "band"}})
	defineBinOpLevel(g, "l_expr7", "l_expr6", []opSpec{{"^", "bxor"}, {"|", "bor"}})
	defineBinOpLevel(g, "l_expr8", "l_expr7", []opSpec{{"&&", "land"}})
	defineBinOpLevel(g, "l_expr9", "l_expr8", []opSpec{{"||", "lor"}})

	conditional := g.Define("conditional")
	conditional.AddRule(&Rule{
		Elements:    sw(Ref("l_expr9"), Punc("?"), Ref("expr"), Punc(":"), Ref("conditional")),
		EndCallback: makeTree("ternary", "%* ? %* : %*"),
	})
	conditional.AddRule(Seq(Ref("l_expr9")))

	assignOps := []string{"<<=", ">>=", "+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=", "="}
	assignment := g.Define("assignment")
	for _, op := range assignOps {
		o := op
		assignment.AddRule(&Rule{
			Elements:    sw(Ref("unary"), Punc(o), Ref("assignment")),
			EndCallback: makeTree("assign_"+assignOpName(o), "%* "+o+" %*"),
		})
	}
	assignment.AddRule(Seq(Ref("conditional")))

	commaList(g, "expr", "assignment")
}

func assignOpName(op string) string {
	switch op {
	case "=":
		return "eq"
	case "+=":
		return "add"
	case "-=":
		return "sub"
	case "*=":
		return "mul"
	case "/=":
		return "div"
	case "%=":
		return "mod"
	case "<<=":
		return "shl"
	case ">>=":
		return "shr"
	case "&=":
		return "and"
	case "^=":
		return "xor"
	case "|=":
		return "or"
	}
	return "op"
}

// ---- types and declarators ----

var storageClassKeywords = []string{"task", "typedef", "extern", "static", "auto", "register"}
var typeSpecifierKeywords = []string{
	"void", "char", "short", "int", "long", "float", "double", "signed", "unsigned",
}
var typeQualifierKeywords = []string{"const", "volatile"}

func defineTypeAndDeclarator(g *Grammar) {
	declSpecItem := g.Define("decl_spec_item")
	for _, kwName := range storageClassKeywords {
		n := kwName
		declSpecItem.AddRule(&Rule{
			Elements:    []*Element{kwIdentNode(n)},
			EndCallback: makeTree("storage_class", n),
		})
	}
	for _, kwName := range typeSpecifierKeywords {
		n := kwName
		declSpecItem.AddRule(&Rule{
			Elements:    []*Element{kwIdentNode(n)},
			EndCallback: makeTree("type_specifier", n),
		})
	}
	for _, kwName := range typeQualifierKeywords {
		n := kwName
		declSpecItem.AddRule(&Rule{
			Elements:    []*Element{kwIdentNode(n)},
			EndCallback: makeTree("type_qualifier", n),
		})
	}
	declSpecItem.AddRule(Seq(Ref("struct_or_union_spec")))
	declSpecItem.AddRule(Seq(Ref("enum_spec")))

	declSpecs := g.Define("decl_specs")
	declSpecs.AddRule(&Rule{
		Elements:    []*Element{Ref("decl_spec_item"), Many(Group(Seq(sw(Ref("decl_spec_item"))...)))},
		EndCallback: makeTreeFromListKeepFirst("decl_specs", "%*"),
	})

	structOrUnion := g.Define("struct_or_union_spec")
	structOrUnion.AddRule(&Rule{
		Elements: sw(Group(Seq(kw("struct")), Seq(kw("union"))), Opt(Ref("ident")),
			Punc("{"), Many(Group(Seq(sw(Ref("struct_declaration"))...))), Punc("}")),
		EndCallback: makeTree("struct_spec", "struct %* { %* }"),
	})
	structOrUnion.AddRule(&Rule{
		Elements:    sw(Group(Seq(kw("struct")), Seq(kw("union"))), Ref("ident")),
		EndCallback: makeTree("struct_ref", "struct %*"),
	})

	structDecl := g.Define("struct_declaration")
	structDecl.AddRule(&Rule{
		Elements:    sw(Ref("decl_specs"), Ref("declarator_list"), Punc(";")),
		EndCallback: makeTree("field_decl", "%* %* ;"),
	})

	commaList(g, "declarator_list", "declarator")

	enumSpec := g.Define("enum_spec")
	enumSpec.AddRule(&Rule{
		Elements:    sw(kw("enum"), Opt(Ref("ident")), Punc("{"), Ref("enumerator_list"), Punc("}")),
		EndCallback: makeTree("enum_spec", "enum %* { %* }"),
	})
	enumSpec.AddRule(&Rule{
		Elements:    sw(kw("enum"), Ref("ident")),
		EndCallback: makeTree("enum_ref", "enum %*"),
	})

	enumerator := g.Define("enumerator")
	enumerator.AddRule(&Rule{
		Elements:    sw(Ref("ident"), Punc("="), Ref("conditional")),
		EndCallback: makeTree("enumerator", "%* = %*"),
	})
	enumerator.AddRule(Seq(Ref("ident")))
	commaList(g, "enumerator_list", "enumerator")

	typeName := g.Define("type_name")
	typeName.AddRule(&Rule{
		Elements:    []*Element{Ref("decl_specs"), ws(), Many(Lit('*'))},
		EndCallback: makeTree("type_name", "%*"),
	})

	directDecl := g.Define("direct_declarator")
	directDecl.AddRule(Seq(Ref("ident")))
	directDecl.AddRule(&Rule{
		Elements:    sw(Punc("("), Ref("declarator"), Punc(")")),
		EndCallback: passTree,
	})
	directDecl.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("["), Opt(Ref("expr")), Punc("]")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("array_decl", "%* [ %* ]"),
	})
	directDecl.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("("), Opt(Ref("param_list")), Punc(")")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("func_decl", "%* ( %* )"),
	})
	directDecl.AddLeftRecursiveRule(&Rule{
		Elements:      sw(Punc("("), Opt(Ref("ident_list")), Punc(")")),
		StartCallback: recAddChild,
		EndCallback:   makeTree("func_decl_kr", "%* ( %* )"),
	})

	declarator := g.Define("declarator")
	declarator.AddRule(&Rule{
		Elements:    []*Element{Many(Lit('*')), ws(), Ref("direct_declarator")},
		EndCallback: makeTree("declarator", "%*%*"),
	})

	paramDecl := g.Define("param_decl")
	paramDecl.AddRule(&Rule{
		Elements:    sw(Ref("decl_specs"), Opt(Ref("declarator"))),
		EndCallback: makeTree("param", "%* %*"),
	})
	commaList(g, "param_list", "param_decl")
	commaList(g, "ident_list", "ident")
}

// kwIdentNode matches a keyword and, unlike kw(), keeps the matched
// ident node instead of discarding it — used where the decl-spec item
// needs its own EndCallback to see *something* in the seed even
// though the tree's format string ignores it and names the specifier
// directly.
func kwIdentNode(name string) *Element {
	e := Ref("ident")
	e.Hooks.Condition = keywordCondition
	e.CondArg = name
	e.Hooks.ExpectMsg = "'" + name + "'"
	return e
}

// makeTreeFromListKeepFirst behaves like makeTreeFromList but is used
// where the first element is a single decl_spec_item (not a list) and
// any further ones arrive already wrapped in a list tree pushed by the
// default AddSeq; both are flattened into one combined list tree so
// the outer "%*" still consumes exactly one child. The separator is
// left empty: adjacent specifiers (e.g. "unsigned int") rely on the
// alphanumeric-adjacency rule to stay separated.
func makeTreeFromListKeepFirst(name, format string) endCallbackFn {
	return func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error) {
		items := seed.toSlice()
		flat := make([]NodeHandle, 0, len(items))
		for _, h := range items {
			if ctx.Arena.IsListTree(h) {
				flat = append(flat, ctx.Arena.Get(h).Children...)
				continue
			}
			flat = append(flat, h)
		}
		wrapped := ctx.Arena.NewListTree(flat, pos)
		return ctx.Arena.NewTree(name, format, []NodeHandle{wrapped}, pos), nil
	}
}

// ---- declarations and statements ----

func defineDeclarationsAndStatements(g *Grammar) {
	initDecl := g.Define("init_declarator")
	initDecl.AddRule(&Rule{
		Elements:    sw(Ref("declarator"), Punc("="), Ref("assignment")),
		EndCallback: makeTree("init_declarator", "%* = %*"),
	})
	initDecl.AddRule(Seq(Ref("declarator")))
	commaList(g, "init_declarator_list", "init_declarator")

	decl := g.Define("declaration")
	decl.AddRule(&Rule{
		Elements:    sw(Ref("decl_specs"), Opt(Ref("init_declarator_list")), Punc(";")),
		EndCallback: makeTree("declaration", "%* %* ;"),
	})

	funcDef := g.Define("function_definition")
	funcDef.AddRule(&Rule{
		Elements: sw(Ref("decl_specs"), Ref("declarator"),
			Many(Group(Seq(sw(Ref("declaration"))...))), Ref("compound_statement")),
		EndCallback: makeTree("function_def", "%* %*\n%*\n%*"),
	})

	extDecl := g.Define("external_declaration")
	extDecl.AddRule(Seq(Ref("function_definition")))
	extDecl.AddRule(Seq(Ref("declaration")))
	extDecl.AddRule(Seq(Ref("every_statement")))

	stmt := g.Define("statement")
	stmt.AddRule(Seq(Ref("compound_statement")))
	stmt.AddRule(Seq(Ref("if_statement")))
	stmt.AddRule(Seq(Ref("switch_statement")))
	stmt.AddRule(Seq(Ref("while_statement")))
	stmt.AddRule(Seq(Ref("do_while_statement")))
	stmt.AddRule(Seq(Ref("for_statement")))
	stmt.AddRule(&Rule{Elements: sw(kw("goto"), Ref("ident"), Punc(";")), EndCallback: makeTree("goto", "goto %* ;")})
	stmt.AddRule(&Rule{Elements: sw(kw("continue"), Punc(";")), EndCallback: makeTree("continue", "continue ;")})
	stmt.AddRule(&Rule{Elements: sw(kw("break"), Punc(";")), EndCallback: makeTree("break", "break ;")})
	stmt.AddRule(&Rule{
		Elements:    sw(kw("return"), Opt(Ref("expr")), Punc(";")),
		EndCallback: makeTree("return", "return %* ;"),
	})
	stmt.AddRule(&Rule{
		Elements:    sw(kw("case"), Ref("conditional"), Punc(":"), Ref("statement")),
		EndCallback: makeTree("case", "case %* : %*"),
	})
	stmt.AddRule(&Rule{
		Elements:    sw(kw("default"), Punc(":"), Ref("statement")),
		EndCallback: makeTree("default", "default : %*"),
	})
	stmt.AddRule(&Rule{
		Elements:    sw(Ref("ident"), Punc(":"), Ref("statement")),
		EndCallback: makeTree("label", "%* : %*"),
	})
	stmt.AddRule(Seq(Ref("queue_for_statement")))
	stmt.AddRule(Seq(Ref("poll_statement")))
	stmt.AddRule(Seq(Ref("timer_statement")))
	stmt.AddRule(Seq(Ref("every_statement")))
	stmt.AddRule(&Rule{Elements: sw(Ref("declaration")), EndCallback: passTree})
	stmt.AddRule(&Rule{
		Elements:    sw(Ref("expr"), Punc(";")),
		EndCallback: makeTree("expr_stmt", "%* ;"),
	})
	stmt.AddRule(&Rule{Elements: sw(Punc(";")), EndCallback: makeTree("empty_stmt", ";")})

	compound := g.Define("compound_statement")
	compound.AddRule(&Rule{
		Elements:    sw(Punc("{"), Many(Group(Seq(sw(Ref("statement"))...))), Punc("}")),
		EndCallback: makeTreeFromList("block", "{\n%>%*\n%<}"),
	})

	ifStmt := g.Define("if_statement")
	ifStmt.AddRule(&Rule{
		Elements: sw(kw("if"), Punc("("), Ref("expr"), Punc(")"), Ref("statement"),
			kw("else"), Ref("statement")),
		EndCallback: makeTree("if_else", "if ( %* ) %* else %*"),
	})
	ifStmt.AddRule(&Rule{
		Elements:    sw(kw("if"), Punc("("), Ref("expr"), Punc(")"), Ref("statement")),
		EndCallback: makeTree("if", "if ( %* ) %*"),
	})

	switchStmt := g.Define("switch_statement")
	switchStmt.AddRule(&Rule{
		Elements:    sw(kw("switch"), Punc("("), Ref("expr"), Punc(")"), Ref("statement")),
		EndCallback: makeTree("switch", "switch ( %* ) %*"),
	})

	whileStmt := g.Define("while_statement")
	whileStmt.AddRule(&Rule{
		Elements:    sw(kw("while"), Punc("("), Ref("expr"), Punc(")"), Ref("statement")),
		EndCallback: makeTree("while", "while ( %* ) %*"),
	})

	doWhile := g.Define("do_while_statement")
	doWhile.AddRule(&Rule{
		Elements: sw(kw("do"), Ref("statement"), kw("while"), Punc("("), Ref("expr"), Punc(")"), Punc(";")),
		EndCallback: makeTree("do_while", "do %* while ( %* ) ;"),
	})

	forStmt := g.Define("for_statement")
	forStmt.AddRule(&Rule{
		Elements: sw(kw("for"), Punc("("), Opt(Ref("expr")), Punc(";"), Opt(Ref("expr")), Punc(";"),
			Opt(Ref("expr")), Punc(")"), Ref("statement")),
		EndCallback: makeTree("for", "for ( %* ; %* ; %* ) %*"),
	})
}

// ---- TinyCoPoOS extensions ----

func defineTaskExtensions(g *Grammar) {
	queueFor := g.Define("queue_for_statement")
	queueFor.AddRule(&Rule{
		Elements:    sw(kw("queue"), kw("for"), Ref("ident"), Ref("statement")),
		EndCallback: makeTree("queue_for", "queue for %* %*"),
	})

	poll := g.Define("poll_statement")
	poll.AddRule(&Rule{
		Elements: sw(kw("poll"), Ref("statement"),
			Opt(Group(Seq(sw(kw("at"), kw("most"), Punc("("), Ref("expr"), Punc(")"), Ref("statement"))...)))),
		EndCallback: flattenPollGroups,
	})

	timer := g.Define("timer_statement")
	timer.AddRule(&Rule{
		Elements:    sw(kw("timer"), Ref("ident"), Punc(";")),
		EndCallback: makeTree("timer_decl", "timer %* ;"),
	})

	every := g.Define("every_statement")
	every.AddRule(&Rule{
		Elements: sw(kw("every"), Punc("("), Ref("expr"), Punc(")"), kw("start"), Ref("ident"), Punc(";")),
		EndCallback: makeTree("every_start", "every ( %* ) start %* ;"),
	})
}

// ---- top level ----

func defineTopLevel(g *Grammar) {
	root := g.Define("root")
	root.AddRule(&Rule{
		Elements: []*Element{
			ws(),
			Many(Group(Seq(sw(Ref("external_declaration"))...))),
			ws(),
			End(),
		},
		EndCallback: makeTreeFromList("root", "%*\n"),
	})
}
