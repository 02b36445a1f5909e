package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	tcpoosc "github.com/tcpoos/tcpoosc"
)

type args struct {
	astOnly     *bool
	interactive *bool
	outputPath  *string
}

func readArgs() *args {
	a := &args{
		astOnly:     flag.Bool("ast", false, "Print the parsed AST instead of compiling"),
		interactive: flag.Bool("interactive", false, "Drop into an interactive compile shell"),
		outputPath:  flag.String("output-path", "/dev/stdout", "Path to write the compiled program"),
	}
	flag.Parse()
	return a
}

func main() {
	a := readArgs()

	if *a.interactive {
		runInteractive()
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tcpoosc [-ast] [-output-path path] <source-file>")
		os.Exit(2)
	}

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		pterm.Error.Printfln("can't open input file: %s", err.Error())
		os.Exit(2)
	}

	out, compileErr := compile(src, flag.Arg(0), *a.astOnly)
	if compileErr != nil {
		if ce, ok := compileErr.(*tcpoosc.CompileError); ok && ce.Kind == tcpoosc.ErrParseFailure {
			tcpoosc.PrintParseFailure(ce)
			os.Exit(1)
		}
		pterm.Error.Println(compileErr.Error())
		os.Exit(2)
	}

	if err := os.WriteFile(*a.outputPath, []byte(out), 0644); err != nil {
		pterm.Error.Printfln("can't write output: %s", err.Error())
		os.Exit(2)
	}
}

// compile runs a source file through the parser, the task
// transformation, and the unparser, returning the compiled program
// text. If astOnly is set, it renders the parsed AST via pterm and
// returns an empty string instead of compiling it.
func compile(src []byte, path string, astOnly bool) (string, error) {
	cfg := tcpoosc.NewConfig()
	interner := tcpoosc.NewInterner()
	g := tcpoosc.NewGrammar()
	tcpoosc.DefineCGrammar(g)

	buf := tcpoosc.NewBuffer(src, cfg.GetInt("parser.tab_size"))
	ctx := tcpoosc.NewParseCtx(buf, g, interner, cfg)

	root, err := ctx.Parse("root")
	if err != nil {
		return "", err
	}

	if astOnly {
		tcpoosc.PrintAST(ctx.Arena, root)
		return "", nil
	}

	tt := tcpoosc.RunPass1(ctx, root)
	tcpoosc.RunPass2(ctx, tt)

	programName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	initFn := tcpoosc.RunEveryLowering(ctx, tt, root, programName)

	// Promoted globals (tt.NewGlobals) must precede the task code that
	// references them: Pass 1's renameIdentsIn rewrites every later use
	// of a promoted local to its new global name within the task body,
	// so root's unparse can only come after its globals are declared.
	sink := tcpoosc.NewBufferSink()
	u := tcpoosc.NewUnparser(ctx.Arena, sink)
	for _, g := range tt.NewGlobals {
		if err := u.Unparse(g); err != nil {
			return "", err
		}
		if err := sink.WriteByte('\n'); err != nil {
			return "", err
		}
	}
	if err := u.Unparse(root); err != nil {
		return "", err
	}
	if !ctx.Arena.IsNil(initFn) {
		if err := sink.WriteByte('\n'); err != nil {
			return "", err
		}
		if err := u.Unparse(initFn); err != nil {
			return "", err
		}
	}
	return sink.String(), nil
}

func runInteractive() {
	rl, err := readline.New("tcpoosc> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	defer rl.Close()

	pterm.Info.Println("TinyCoPoOS interactive compile shell. Enter a statement or declaration; ctrl-D to quit.")
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out, err := compile([]byte(line), "<stdin>", false)
		if err != nil {
			if ce, ok := err.(*tcpoosc.CompileError); ok && ce.Kind == tcpoosc.ErrParseFailure {
				tcpoosc.PrintParseFailure(ce)
			} else {
				pterm.Error.Println(err.Error())
			}
			continue
		}
		fmt.Print(out)
	}
	pterm.Info.Println("goodbye")
}
