// Package maincmd is the command-line driver for the marrow tool, modeled on
// the teacher repo's internal/maincmd: a single Cmd struct whose exported
// methods become subcommands via reflection, parsed by github.com/mna/mainer
// (SPEC_FULL.md §1).
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "marrow"

// formatYAML selects the --format=yaml structured-dump mode for tokenize
// and disasm, in place of their default human-readable text (SPEC_FULL.md
// §2, giving gopkg.in/yaml.v3 a real call site).
const formatYAML = "yaml"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Marrow scripting language.

The <command> can be one of:
       run                       Compile and execute one or more .mbr files.
       tokenize                  Print the token stream for one or more
                                 .mbr files.
       disasm                    Compile one or more .mbr files and print
                                 their disassembled bytecode.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <tokenize> and <disasm> commands are:
       --format=yaml             Emit a YAML document instead of plain text.

Environment overrides:
       MARROW_MAX_STACK          Override the VM's value stack capacity.
       MARROW_MAX_FRAMES         Override the VM's call-frame capacity.
`, binName)
)

// runtimeConfig is populated from the environment (caarlos0/env), mirroring
// SPEC_FULL.md §1's choice to keep configuration as plain fields rather than
// a config-file format the spec never asked for.
type runtimeConfig struct {
	MaxStack  int `env:"MARROW_MAX_STACK" envDefault:"65536"`
	MaxFrames int `env:"MARROW_MAX_FRAMES" envDefault:"1024"`
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	Format  string `flag:"format"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)         { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		if ce, ok := err.(*exitError); ok {
			return mainer.ExitCode(ce.code)
		}
		return mainer.Failure
	}
	return mainer.Success
}

func loadRuntimeConfig() (runtimeConfig, error) {
	var cfg runtimeConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment configuration: %w", err)
	}
	return cfg, nil
}

// exitError carries the compile-error (65) / runtime-error (70) exit codes
// spec.md §7 specifies. The subcommands also return 65 when a source file
// cannot be read or the environment configuration fails to parse. Argument
// errors exit with mainer.InvalidArgs, and any error that is not an
// exitError with the generic mainer.Failure (1).
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

const (
	exitCompileError = 65
	exitRuntimeError = 70
)

// buildCmds reflects over v's exported methods, selecting those shaped like
// a subcommand handler (ctx, stdio, args) error, exactly as the teacher
// repo's internal/maincmd does.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
