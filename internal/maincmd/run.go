package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/marrow-lang/marrow/lang/importer"
	"github.com/marrow-lang/marrow/lang/vm"
)

// Run compiles and executes each file in args in turn, against a fresh VM
// per file, with MARROW_MAX_STACK/MARROW_MAX_FRAMES overrides from the
// environment (spec.md §7 exit codes: 65 compile error, 70 runtime error).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &exitError{code: exitCompileError}
	}

	for _, path := range args {
		if err := runFile(stdio, cfg, path); err != nil {
			return err
		}
	}
	return nil
}

func runFile(stdio mainer.Stdio, cfg runtimeConfig, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return &exitError{code: exitCompileError}
	}

	maxStack, maxFrames := vm.DefaultMaxStack, vm.DefaultMaxFrames
	if cfg.MaxStack > 0 {
		maxStack = cfg.MaxStack
	}
	if cfg.MaxFrames > 0 {
		maxFrames = cfg.MaxFrames
	}
	m := vm.NewWithLimits(maxStack, maxFrames)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr

	drv := importer.New(m, filepath.Dir(path))
	_, result, err := m.Interpret(string(src), drv.Hook)
	switch result {
	case vm.InterpretCompileError:
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return &exitError{code: exitCompileError}
	case vm.InterpretRuntimeError:
		// vm.Interpret already printed the backtrace to m.Stderr.
		return &exitError{code: exitRuntimeError}
	}
	return nil
}
