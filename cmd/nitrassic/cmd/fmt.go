package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitrassic/nitrassic/lexer"
	"github.com/nitrassic/nitrassic/parser"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Pretty-print a script's parsed tree",
	Long: `Parse a script and print its AST back out in a normalized form.

Unlike the teacher's AST-driven source formatter (which reprints valid
Pascal source), Nitrassic's fmt prints the parsed tree's own String()
representation - useful for inspecting how a script parsed without
round-tripping it back to ECMAScript-flavored source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: fmtScript,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "format inline code instead of reading from file")
}

func fmtScript(_ *cobra.Command, args []string) error {
	source, err := scriptSourceFromArgs(evalExpr, args)
	if err != nil {
		return err
	}
	input, err := source.Read()
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println(e)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Println(prog.String())
	return nil
}
