package tcpoosc

import (
	"fmt"

	"github.com/pterm/pterm"
)

// PrintParseFailure renders a CompileError of kind ErrParseFailure:
// the furthest offset the parser reached, every distinct element it
// was still expecting there, and the non-terminal call stack of the
// first of those expectations (§7 "rendered by the driver as a
// readable list").
func PrintParseFailure(err *CompileError) {
	pterm.Error.Printfln("parse failed at %s", Location{Line: err.Position.Line, Column: err.Position.Column})
	if err.Source != nil {
		li := NewLineIndex(err.Source)
		if line := li.Line(err.Position.Line); line != nil {
			pterm.Debug.Printfln("%d | %s", err.Position.Line, line)
		}
	}
	if err.Report == nil {
		return
	}
	seen := map[string]bool{}
	var lines []string
	for _, exp := range err.Report.Expectations {
		label := exp.Expected
		if dup := seen[label]; dup {
			continue
		}
		seen[label] = true
		lines = append(lines, fmt.Sprintf("expected %s", label))
	}
	for _, line := range lines {
		pterm.Warning.Println(line)
	}
	for _, exp := range err.Report.Expectations {
		pterm.Debug.Println(formatCallStack(exp.Stack))
		break
	}
}

func formatCallStack(stack []expectFrame) string {
	s := ""
	for i, f := range stack {
		if i > 0 {
			s += " > "
		}
		s += f.Name
	}
	return s
}

// PrintAST renders the AST rooted at h as an indented tree via pterm,
// used by the CLI's -ast dump flag.
func PrintAST(arena *NodeArena, h NodeHandle) {
	root := astTreeNode(arena, h)
	pterm.DefaultTree.WithRoot(root).Render()
}

func astTreeNode(arena *NodeArena, h NodeHandle) pterm.TreeNode {
	if arena.IsNil(h) {
		return pterm.TreeNode{Text: "<nil>"}
	}
	n := arena.Get(h)
	switch n.Kind {
	case NodeIdent:
		return pterm.TreeNode{Text: "ident " + n.Ident.Name}
	case NodeInteger:
		return pterm.TreeNode{Text: fmt.Sprintf("int %d", n.Int)}
	case NodeChar:
		return pterm.TreeNode{Text: fmt.Sprintf("char %q", n.Char)}
	case NodeString:
		return pterm.TreeNode{Text: fmt.Sprintf("string %q", n.Str)}
	case NodeTree:
		label := n.TreeName
		if n.TreeName == ListTreeName {
			label = "list"
		}
		node := pterm.TreeNode{Text: label}
		for _, c := range n.Children {
			if arena.IsNil(c) {
				continue
			}
			node.Children = append(node.Children, astTreeNode(arena, c))
		}
		return node
	}
	return pterm.TreeNode{Text: "?"}
}
