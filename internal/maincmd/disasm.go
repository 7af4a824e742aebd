package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"

	"github.com/marrow-lang/marrow/lang/compiler"
	"github.com/marrow-lang/marrow/lang/value"
)

// disasmYAML is the --format=yaml shape for one compiled file's chunk text.
type disasmYAML struct {
	File string `yaml:"file"`
	Text string `yaml:"disassembly"`
}

// Disasm compiles each file in args and prints its disassembled bytecode,
// recursing into nested function chunks (lang/value/disasm.go), as plain
// text by default or one YAML document per file with --format=yaml.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	strings := value.NewStrings(&value.AllocList{})
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return &exitError{code: exitCompileError}
		}

		fn, err := compiler.Compile(string(src), strings, nil)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return &exitError{code: exitCompileError}
		}

		text := value.Disassemble(&fn.Chunk, path)
		if c.Format == formatYAML {
			b, err := yaml.Marshal(disasmYAML{File: path, Text: text})
			if err != nil {
				fmt.Fprintf(stdio.Stderr, "%s: marshaling disassembly as yaml: %s\n", path, err)
				return &exitError{code: exitCompileError}
			}
			stdio.Stdout.Write(b)
			continue
		}
		fmt.Fprint(stdio.Stdout, text)
	}
	return nil
}
