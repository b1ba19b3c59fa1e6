package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitrassic/nitrassic/diag"
	"github.com/nitrassic/nitrassic/emit"
	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/stdlib"
)

var disassemble bool

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script and optionally show its disassembly",
	Long: `Compile a script through the full front end (lex/parse/resolve/infer/emit)
without executing it.

Nitrassic has no standalone bytecode file format to write: the abstract
instruction stream a compile produces is only ever consumed in-process by
the VM, so this command exists to surface compile errors and, with
--disassemble, print the instruction stream for debugging.`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolVarP(&disassemble, "disassemble", "d", false, "print the disassembled instruction stream")
}

func compileScript(_ *cobra.Command, args []string) error {
	e := engine.New()
	stdlib.Install(e)

	cs, err := e.Compile(&engine.FileScriptSource{FilePath: args[0]})
	if err != nil {
		if ce, ok := err.(*engine.CompileError); ok {
			fmt.Print(diag.FormatErrors(ce.Errors, true))
			return fmt.Errorf("compilation failed with %d error(s)", len(ce.Errors))
		}
		return err
	}

	fmt.Printf("compiled %s OK\n", cs.Path)
	if disassemble {
		disassembleChunk(cs.Proto.Body, 0)
	}
	return nil
}

func disassembleChunk(c *emit.Chunk, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s== %s ==\n", indent, c.Name)
	for i, instr := range c.Code {
		line := fmt.Sprintf("%s%04d  %-20s A=%d B=%d", indent, i, instr.Op, instr.A, instr.B)
		if instr.Str != "" {
			line += fmt.Sprintf(" %q", instr.Str)
		}
		fmt.Println(line)
	}
	for _, k := range c.Constants {
		if fp, ok := k.(*emit.FunctionProto); ok {
			disassembleChunk(fp.Body, depth+1)
		}
	}
}
