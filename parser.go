package tcpoosc

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// memoStatus is the tri-state of a memoization slot (§4.E).
type memoStatus int

const (
	memoUnknown memoStatus = iota
	memoFail
	memoSuccess
)

type memoKey struct {
	offset int
	nt     *NonTerminal
}

type memoEntry struct {
	status memoStatus
	result NodeHandle
	cursor Cursor
}

// expectFrame is one entry of the expectation (non-terminal call)
// stack: the production being attempted and the cursor it was
// entered at.
type expectFrame struct {
	Name  string
	Entry Cursor
}

// Expectation records a single failed-element attempt at the
// furthest position reached so far (§4.E "Expectation tracking").
type Expectation struct {
	Stack    []expectFrame
	Expected string
	At       Cursor
	// Span is the byte range from the entry point of the innermost
	// active non-terminal to At, so a diagnostic printer can quote the
	// exact source text the failed element was attempted against
	// without needing the live Cursor that produced it.
	Span Range
}

// ExpectationReport is what the driver renders on parse failure.
type ExpectationReport struct {
	FurthestPos  Cursor
	Expectations []Expectation
}

// ParseCtx carries all state for a single parse: the input buffer,
// the AST arena, the interner, configuration, the memoization cache
// and the expectation tracker. It implements the contract of §4.E:
// "given a non-terminal and a cursor, either produce a result cell
// with its new cursor, or fail without consuming input past the saved
// cursor."
type ParseCtx struct {
	Buffer   *Buffer
	Arena    *NodeArena
	Interner *Interner
	Grammar  *Grammar
	Config   *Config

	cur Cursor

	memo map[memoKey]*memoEntry

	expectStack   *arraystack.Stack // of expectFrame
	highestPos    Cursor
	expects       []Expectation
	maxExpects    int
	lastBacktrack *backtrackError
}

// NewParseCtx wires up everything a parse needs.
func NewParseCtx(buf *Buffer, g *Grammar, in *Interner, cfg *Config) *ParseCtx {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &ParseCtx{
		Buffer:      buf,
		Arena:       NewNodeArena(),
		Interner:    in,
		Grammar:     g,
		Config:      cfg,
		cur:         StartCursor(),
		memo:        map[memoKey]*memoEntry{},
		expectStack: arraystack.New(),
		maxExpects:  cfg.GetInt("parser.max_expectations"),
	}
}

// Cursor returns the context's current position.
func (ctx *ParseCtx) Cursor() Cursor { return ctx.cur }

// SetCursor restores a previously saved cursor (back-track).
func (ctx *ParseCtx) SetCursor(c Cursor) { ctx.cur = c }

// AtEnd reports whether the cursor is at end of input.
func (ctx *ParseCtx) AtEnd() bool { return ctx.Buffer.AtEnd(ctx.cur) }

// Peek returns the byte under the cursor and whether one exists.
func (ctx *ParseCtx) Peek() (byte, bool) { return ctx.Buffer.ByteAt(ctx.cur) }

func (ctx *ParseCtx) location() Location {
	return LocationOf(ctx.cur, "")
}

func (ctx *ParseCtx) stackSnapshot() []expectFrame {
	vals := ctx.expectStack.Values()
	out := make([]expectFrame, len(vals))
	// gods Values() returns top-first; reverse into entry order.
	for i, v := range vals {
		out[len(vals)-1-i] = v.(expectFrame)
	}
	return out
}

// recordExpectation tracks the furthest position reached and the
// (bounded) list of what was expected there (§4.E). Every call also
// builds the backtrackError that a single grammar element raised
// internally; it never escapes this function, but ctx.lastBacktrack
// keeps the most advanced one around so Parse can report it as the
// final CompileError's message instead of a bare "parse failed".
func (ctx *ParseCtx) recordExpectation(expected string) {
	nt := ""
	if top, ok := ctx.expectStack.Peek(); ok {
		nt = top.(expectFrame).Name
	}
	be := &backtrackError{nonTerminal: nt, expected: expected, at: ctx.cur}

	if ctx.cur.Offset > ctx.highestPos.Offset {
		ctx.highestPos = ctx.cur
		ctx.expects = ctx.expects[:0]
		ctx.lastBacktrack = be
	}
	if ctx.cur.Offset < ctx.highestPos.Offset {
		return
	}
	if len(ctx.expects) >= ctx.maxExpects {
		return
	}
	stack := ctx.stackSnapshot()
	entryOffset := ctx.cur.Offset
	if len(stack) > 0 {
		entryOffset = stack[len(stack)-1].Entry.Offset
	}
	ctx.expects = append(ctx.expects, Expectation{
		Stack:    stack,
		Expected: expected,
		At:       ctx.cur,
		Span:     NewRange(entryOffset, ctx.cur.Offset),
	})
}

// Report returns the accumulated expectation report.
func (ctx *ParseCtx) Report() *ExpectationReport {
	return &ExpectationReport{FurthestPos: ctx.highestPos, Expectations: ctx.expects}
}

// Parse runs the named non-terminal from the current cursor and
// requires the whole buffer to be consumed.
func (ctx *ParseCtx) Parse(startRule string) (NodeHandle, error) {
	nt := ctx.Grammar.Lookup(startRule)
	if nt == nil {
		return NilHandle, &CompileError{Kind: ErrAllocationFailure, Message: "unknown start rule " + startRule}
	}
	result, ok := ctx.parseNonTerminal(nt)
	if ok && !ctx.AtEnd() {
		ctx.recordExpectation("end of input")
		ok = false
	}
	if !ok {
		msg := "parse failed"
		if ctx.lastBacktrack != nil {
			msg = ctx.lastBacktrack.Error()
		}
		return NilHandle, &CompileError{
			Kind:     ErrParseFailure,
			Message:  msg,
			Position: ctx.highestPos,
			Report:   ctx.Report(),
			Source:   ctx.Buffer.Bytes,
		}
	}
	return result, nil
}

// parseNonTerminal is procedure 1 of §4.E.
func (ctx *ParseCtx) parseNonTerminal(nt *NonTerminal) (NodeHandle, bool) {
	key := memoKey{offset: ctx.Buffer.Saturate(ctx.cur.Offset), nt: nt}
	if entry, ok := ctx.memo[key]; ok {
		switch entry.status {
		case memoSuccess:
			ctx.cur = entry.cursor
			return entry.result, true
		case memoFail:
			return NilHandle, false
		}
	}
	// Pre-mark as fail to tame indirect left recursion: any
	// indirectly-recursive re-entry at this same position
	// short-circuits to failure instead of looping forever. The
	// C+TinyCoPoOS grammar has no indirect left recursion, so this
	// can't silently prefer a shorter parse here, but a grammar that
	// introduced one would see exactly that (§9 open question).
	entry := &memoEntry{status: memoFail}
	ctx.memo[key] = entry

	ctx.expectStack.Push(expectFrame{Name: nt.Name, Entry: ctx.cur})

	var (
		winning NodeHandle
		ok      bool
	)
	for _, rule := range nt.Normal {
		saved := ctx.cur
		wm := ctx.Arena.Watermark()
		if result, matched := ctx.parseRule(rule, 0, emptyResultList()); matched {
			winning, ok = result, true
			break
		}
		ctx.cur = saved
		ctx.Arena.ReleaseTo(wm)
	}

	if ok {
		for {
			fired := false
			for _, rule := range nt.LeftRecursive {
				saved := ctx.cur
				wm := ctx.Arena.Watermark()
				seed := emptyResultList()
				if rule.StartCallback != nil {
					seed = rule.StartCallback(ctx, winning)
				} else {
					seed = seed.push(winning)
				}
				if result, matched := ctx.parseRule(rule, 0, seed); matched {
					winning = result
					fired = true
					break
				}
				ctx.cur = saved
				ctx.Arena.ReleaseTo(wm)
			}
			if !fired {
				break
			}
		}
	}

	ctx.expectStack.Pop()

	if ok {
		entry.status = memoSuccess
		entry.result = winning
		entry.cursor = ctx.cur
	}
	return winning, ok
}

// parseRule is procedure 2 of §4.E.
func (ctx *ParseCtx) parseRule(rule *Rule, idx int, seed resultList) (NodeHandle, bool) {
	if idx >= len(rule.Elements) {
		if rule.EndCallback != nil {
			result, err := rule.EndCallback(ctx, seed, ctx.location())
			seed.release()
			if err != nil {
				return NilHandle, false
			}
			return result, true
		}
		result := finishSeed(ctx, seed, ctx.location())
		return result, true
	}

	element := rule.Elements[idx]

	trySkip := func() (NodeHandle, bool) {
		skipSeed := applySkip(ctx, element, seed)
		return ctx.parseRule(rule, idx+1, skipSeed)
	}

	if element.Optional && element.Avoid {
		if result, ok := trySkip(); ok {
			return result, true
		}
	}

	if element.Sequence {
		if result, ok := ctx.parseSequence(element, rule, idx, seed); ok {
			return result, true
		}
		if element.Optional && !element.Avoid {
			return trySkip()
		}
		return NilHandle, false
	}

	saved := ctx.cur
	wm := ctx.Arena.Watermark()

	child, ok := ctx.parseElement(element)
	if ok {
		newSeed := applyAdd(ctx, element, seed, child)
		if result, ok := ctx.parseRule(rule, idx+1, newSeed); ok {
			return result, true
		}
	}

	ctx.cur = saved
	ctx.Arena.ReleaseTo(wm)

	if element.Optional && !element.Avoid {
		return trySkip()
	}
	return NilHandle, false
}

// parseSequence is procedure 3 of §4.E. It accumulates matched items
// one at a time and, on every attempt to stop (forced by a failed
// next item, or preemptively when Avoid asks for the shortest match
// first), folds the run into the outer seed via AddSeq and tries to
// parse the rest of rule with it. The BackTracking sequence variant
// and the default variant both funnel through this same recursive
// shape; §4.E's "default... falls back to the single terminating
// add_seq attempt" and "back_tracking... full back-track semantics"
// are observationally identical for any grammar that (like this one)
// never needs to un-commit an already-matched sequence item.
func (ctx *ParseCtx) parseSequence(element *Element, rule *Rule, idx int, outerSeed resultList) (NodeHandle, bool) {
	startPos := ctx.location()

	endHere := func(items resultList) (NodeHandle, bool) {
		var combined resultList
		if element.Hooks.AddSeq != nil {
			combined = element.Hooks.AddSeq(ctx, outerSeed, items, startPos)
		} else {
			combined = outerSeed.push(ctx.Arena.NewListTree(items.toSlice(), startPos))
		}
		return ctx.parseRule(rule, idx+1, combined)
	}

	var step func(items resultList) (NodeHandle, bool)
	step = func(items resultList) (NodeHandle, bool) {
		if element.Avoid {
			if result, ok := endHere(items); ok {
				return result, true
			}
		}

		saved := ctx.cur
		wm := ctx.Arena.Watermark()

		if element.ChainRule != nil && items.len > 0 {
			if _, ok := ctx.parseElement(element.ChainRule); !ok {
				ctx.cur = saved
				ctx.Arena.ReleaseTo(wm)
				if !element.Avoid {
					return endHere(items)
				}
				return NilHandle, false
			}
		}

		child, ok := ctx.parseElement(baseElement(element))
		if !ok {
			ctx.cur = saved
			ctx.Arena.ReleaseTo(wm)
			if !element.Avoid {
				return endHere(items)
			}
			return NilHandle, false
		}

		if result, ok := step(items.push(child)); ok {
			return result, true
		}
		ctx.cur = saved
		ctx.Arena.ReleaseTo(wm)
		return NilHandle, false
	}

	items := emptyResultList()
	if element.Hooks.BeginSeq != nil {
		items = element.Hooks.BeginSeq(ctx)
	}
	return step(items)
}

// baseElement strips the Sequence flag so parseElement can be reused
// to match a single item of the sequence.
func baseElement(e *Element) *Element {
	clone := *e
	clone.Sequence = false
	clone.ChainRule = nil
	return &clone
}

// parseElement dispatches on element kind (§4.E "parse_element").
func (ctx *ParseCtx) parseElement(element *Element) (NodeHandle, bool) {
	switch element.Kind {
	case ElemNonTerminal:
		nt := ctx.Grammar.Lookup(element.NonTerminal)
		if nt == nil {
			ctx.recordExpectation(element.NonTerminal)
			return NilHandle, false
		}
		start := ctx.location()
		result, ok := ctx.parseNonTerminal(nt)
		if !ok {
			return NilHandle, false
		}
		if element.Hooks.Condition != nil {
			saved := ctx.cur
			if !element.Hooks.Condition(ctx, result, element.CondArg) {
				ctx.cur = saved
				ctx.recordExpectation(expectMsg(element, element.NonTerminal))
				return NilHandle, false
			}
		}
		if element.Hooks.SetPos {
			ctx.stampPos(result, start)
		}
		return result, true

	case ElemGroup:
		for _, alt := range element.Group {
			saved := ctx.cur
			wm := ctx.Arena.Watermark()
			if result, ok := ctx.parseRule(alt, 0, emptyResultList()); ok {
				return result, true
			}
			ctx.cur = saved
			ctx.Arena.ReleaseTo(wm)
		}
		ctx.recordExpectation(expectMsg(element, "group alternative"))
		return NilHandle, false

	case ElemEnd:
		if ctx.AtEnd() {
			return NilHandle, true
		}
		ctx.recordExpectation(expectMsg(element, "end of input"))
		return NilHandle, false

	case ElemChar:
		b, has := ctx.Peek()
		if !has || b != element.Ch {
			ctx.recordExpectation(expectMsg(element, string(element.Ch)))
			return NilHandle, false
		}
		pos := ctx.location()
		ctx.advanceOne()
		return ctx.Arena.NewChar(b, pos), true

	case ElemCharSet:
		b, has := ctx.Peek()
		if !has || !element.CS.Has(b) {
			ctx.recordExpectation(expectMsg(element, "character class"))
			return NilHandle, false
		}
		pos := ctx.location()
		ctx.advanceOne()
		return ctx.Arena.NewChar(b, pos), true

	case ElemTerminalFn:
		before := ctx.cur
		next, ok := element.Fn(ctx)
		if !ok || next.Offset <= before.Offset {
			ctx.recordExpectation(expectMsg(element, "terminal"))
			return NilHandle, false
		}
		ctx.cur = next
		return ctx.Arena.NewString(append([]byte(nil), ctx.Buffer.Bytes[before.Offset:next.Offset]...), LocationOf(before, "")), true
	}
	return NilHandle, false
}

func expectMsg(e *Element, fallback string) string {
	if e.Hooks.ExpectMsg != "" {
		return e.Hooks.ExpectMsg
	}
	return fallback
}

func (ctx *ParseCtx) advanceOne() {
	next, _ := ctx.Buffer.Advance(ctx.cur)
	ctx.cur = next
}

// stampPos overwrites h's recorded position; used for the SetPos hook.
func (ctx *ParseCtx) stampPos(h NodeHandle, pos Location) {
	if ctx.Arena.IsNil(h) {
		return
	}
	ctx.Arena.Get(h).Pos = pos
}

func applyAdd(ctx *ParseCtx, e *Element, seed resultList, child NodeHandle) resultList {
	switch e.Kind {
	case ElemChar, ElemCharSet:
		if e.Hooks.AddChar != nil {
			var b byte
			if !ctx.Arena.IsNil(child) {
				b = ctx.Arena.Get(child).Char
			}
			return e.Hooks.AddChar(ctx, seed, b, ctx.location())
		}
	}
	if e.Hooks.Add != nil {
		return e.Hooks.Add(ctx, seed, child)
	}
	if ctx.Arena.IsNil(child) {
		return seed
	}
	return seed.push(child)
}

func applySkip(ctx *ParseCtx, e *Element, seed resultList) resultList {
	if e.Hooks.AddSkip != nil {
		return e.Hooks.AddSkip(ctx, seed)
	}
	if e.Hooks.Add != nil {
		return e.Hooks.Add(ctx, seed, NilHandle)
	}
	return seed
}

// finishSeed is the structural default for a rule with no
// EndCallback: a single accumulated item passes through unchanged,
// more than one is wrapped into a list tree.
func finishSeed(ctx *ParseCtx, seed resultList, pos Location) NodeHandle {
	defer seed.release()
	if seed.len == 0 {
		return NilHandle
	}
	if seed.len == 1 {
		return seed.head.head
	}
	return ctx.Arena.NewListTree(seed.toSlice(), pos)
}
