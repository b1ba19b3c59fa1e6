package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitrassic/nitrassic/diag"
	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/lexer"
	"github.com/nitrassic/nitrassic/parser"
	"github.com/nitrassic/nitrassic/stdlib"
	"github.com/nitrassic/nitrassic/value"
)

var (
	evalExpr string
	dumpAST  bool
	trace    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Nitrassic script file or expression",
	Long: `Execute a script from a file or inline expression.

Examples:
  # Run a script file
  nitrassic run script.njs

  # Evaluate an inline expression
  nitrassic run -e "console.log('Hello, World!');"

  # Run with AST dump (for debugging)
  nitrassic run --dump-ast script.njs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace execution (for debugging)")
}

func runScript(cmd *cobra.Command, args []string) error {
	source, err := scriptSourceFromArgs(evalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	if dumpAST {
		text, err := source.Read()
		if err != nil {
			return err
		}
		l := lexer.New(text)
		p := parser.New(l)
		prog := p.ParseProgram()
		if len(p.Errors()) == 0 {
			fmt.Println("AST:")
			fmt.Println(prog.String())
			fmt.Println()
		}
	}

	e := engine.New()
	stdlib.Install(e)

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] compiling %s\n", source.Path())
	}

	result, err := e.Run(source)
	if err != nil {
		if ce, ok := err.(*engine.CompileError); ok {
			fmt.Fprint(os.Stderr, diag.FormatErrors(ce.Errors, true))
			return fmt.Errorf("compilation failed with %d error(s)", len(ce.Errors))
		}
		return err
	}

	if verbose && !result.IsUndefined() {
		fmt.Println(value.ToString(result))
	}

	return nil
}

func scriptSourceFromArgs(eval string, args []string) (engine.ScriptSource, error) {
	if eval != "" {
		return &engine.StringScriptSource{Text: eval, SourcePath: "<eval>"}, nil
	}
	if len(args) == 1 {
		return &engine.FileScriptSource{FilePath: args[0]}, nil
	}
	return nil, fmt.Errorf("either provide a file path or use -e flag for inline code")
}
