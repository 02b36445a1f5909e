package tcpoosc

// ElementKind discriminates the six kinds of grammar element (§3/§4.D).
type ElementKind int

const (
	ElemNonTerminal ElementKind = iota
	ElemChar
	ElemCharSet
	ElemEnd
	ElemGroup
	ElemTerminalFn
)

// TerminalFn is a user scanner: given the context it must return an
// advanced cursor, or ok=false if it refuses to match. The engine
// treats "didn't advance" the same as "refused."
type TerminalFn func(ctx *ParseCtx) (Cursor, bool)

// ConditionFn gates whether a successfully parsed element is kept; it
// may carry a static argument (e.g. the keyword text an identifier
// must equal), matching §4.D's "condition(+argument)".
type ConditionFn func(ctx *ParseCtx, result NodeHandle, arg string) bool

// Hooks bundles every per-element callback named in §4.D. A nil hook
// means "use the structural default" (documented per field below).
type Hooks struct {
	// AddChar folds a just-consumed byte into seed. Used by Char and
	// CharSet elements. Default: push the byte as a NodeChar.
	AddChar func(ctx *ParseCtx, seed resultList, b byte, pos Location) resultList

	// Add folds a successfully parsed child (non-terminal, group, or
	// terminal-function result) into seed. Default: push the child
	// handle unchanged.
	Add func(ctx *ParseCtx, seed resultList, child NodeHandle) resultList

	// AddSkip computes the seed used when an optional element is
	// skipped. Default: seed unchanged.
	AddSkip func(ctx *ParseCtx, seed resultList) resultList

	// BeginSeq produces the initial accumulator for a sequence
	// element, before any item has matched. Default: empty.
	BeginSeq func(ctx *ParseCtx) resultList

	// AddSeq folds the whole matched sequence (or zero items) into
	// the outer seed. Default: push a single list-tree node built
	// from the accumulated items.
	AddSeq func(ctx *ParseCtx, seed resultList, items resultList, pos Location) resultList

	// Condition gates a non-terminal element's result.
	Condition func(ctx *ParseCtx, result NodeHandle, arg string) bool

	// SetPos, if true, stamps the element's starting cursor onto the
	// handle produced for this element. No rule in cgrammar.go or
	// tokens.go sets it; the token rules stamp positions themselves.
	SetPos bool

	// ExpectMsg overrides the textual description used in
	// diagnostics for this element ("expect_msg" in §4.D).
	ExpectMsg string
}

// Element is one step of a Rule.
type Element struct {
	Kind ElementKind

	NonTerminal string     // ElemNonTerminal
	Ch          byte       // ElemChar
	CS          *CharSet   // ElemCharSet
	Group       []*Rule    // ElemGroup: alternatives, first match wins
	Fn          TerminalFn // ElemTerminalFn

	Optional     bool
	Sequence     bool
	BackTracking bool // only meaningful when Sequence is true
	Avoid        bool

	ChainRule *Element // separator used between sequence items, if any
	CondArg   string   // static argument passed to Hooks.Condition

	Hooks Hooks
}

// Rule is an ordered list of elements plus its callbacks.
type Rule struct {
	Elements []*Element

	// EndCallback computes the rule's final result from the fully
	// accumulated seed. Nil means: a single accumulated item is
	// returned as-is, more than one is wrapped in a list tree.
	EndCallback func(ctx *ParseCtx, seed resultList, pos Location) (NodeHandle, error)

	// StartCallback is only used on left-recursive rules: it folds
	// the previous winning result (the seed for this growth step)
	// before the rest of the rule's elements run. Nil means: seed to
	// a one-item list containing the previous result.
	StartCallback func(ctx *ParseCtx, prevResult NodeHandle) resultList
}

// NonTerminal is a named production with its normal and
// left-recursive rule lists (§3: "Indirect left recursion is not
// supported").
type NonTerminal struct {
	Name          string
	Normal        []*Rule
	LeftRecursive []*Rule
}

// Grammar is the whole in-memory grammar description (component D),
// built once at process start-up and shared read-only by every parse.
type Grammar struct {
	nonTerminals map[string]*NonTerminal
	order        []string
}

// NewGrammar returns an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{nonTerminals: map[string]*NonTerminal{}}
}

// Define registers (or returns the existing) non-terminal named name.
func (g *Grammar) Define(name string) *NonTerminal {
	if nt, ok := g.nonTerminals[name]; ok {
		return nt
	}
	nt := &NonTerminal{Name: name}
	g.nonTerminals[name] = nt
	g.order = append(g.order, name)
	return nt
}

// Lookup returns the non-terminal named name, or nil.
func (g *Grammar) Lookup(name string) *NonTerminal {
	return g.nonTerminals[name]
}

// AddRule appends a normal rule to nt.
func (nt *NonTerminal) AddRule(r *Rule) *NonTerminal {
	nt.Normal = append(nt.Normal, r)
	return nt
}

// AddLeftRecursiveRule appends a left-recursive growth rule to nt.
func (nt *NonTerminal) AddLeftRecursiveRule(r *Rule) *NonTerminal {
	nt.LeftRecursive = append(nt.LeftRecursive, r)
	return nt
}

// ---- Builder helpers: a small fluent API standing in for the
// source's macro-expansion into hand-linked grammar nodes (§9: "a
// programmatic builder API or a declarative data literal; both are
// equivalent"). ----

func Ref(name string) *Element { return &Element{Kind: ElemNonTerminal, NonTerminal: name} }

func Lit(b byte) *Element { return &Element{Kind: ElemChar, Ch: b} }

func Set(cs *CharSet) *Element { return &Element{Kind: ElemCharSet, CS: cs} }

func End() *Element { return &Element{Kind: ElemEnd} }

func Group(alts ...*Rule) *Element { return &Element{Kind: ElemGroup, Group: alts} }

func Term(fn TerminalFn) *Element { return &Element{Kind: ElemTerminalFn, Fn: fn} }

// Opt marks e optional.
func Opt(e *Element) *Element { e.Optional = true; return e }

// OptAvoid marks e optional-and-avoid (try skipping first).
func OptAvoid(e *Element) *Element { e.Optional = true; e.Avoid = true; return e }

// Many marks e as a (greedy, non-back-tracking) sequence.
func Many(e *Element) *Element { e.Sequence = true; return e }

// ManyBT marks e as a back-tracking sequence.
func ManyBT(e *Element) *Element { e.Sequence = true; e.BackTracking = true; return e }

// AvoidSeq marks a sequence element as avoid (shortest-match first).
func AvoidSeq(e *Element) *Element { e.Avoid = true; return e }

// Chain sets e's separator element.
func Chain(e *Element, sep *Element) *Element { e.ChainRule = sep; return e }

// Str returns one Lit element per byte of s, as a plain slice to be
// spliced into a rule's elements.
func Str(s string) []*Element {
	els := make([]*Element, len(s))
	for i := 0; i < len(s); i++ {
		els[i] = Lit(s[i])
	}
	return els
}

// Seq builds a Rule out of elements with no callbacks.
func Seq(elems ...*Element) *Rule { return &Rule{Elements: elems} }
