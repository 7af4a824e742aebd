// Package importer drives `import name;` (spec.md §4.2): resolving a module
// name to a .mbr file, compiling and running it against the same VM and
// string-intern table as the importing script, and exposing its top-level
// bindings as a dict under the module's name. Grounded on the teacher
// repo's module-loading shape (internal/maincmd wiring a single shared
// scan/compile/run pipeline across files) adapted to spec.md's simpler,
// single-process import model.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marrow-lang/marrow/lang/compiler"
	"github.com/marrow-lang/marrow/lang/value"
	"github.com/marrow-lang/marrow/lang/vm"
)

// Driver resolves and loads modules for one VM, tracking which module names
// have already been loaded so a diamond of imports only runs each module
// once.
type Driver struct {
	VM      *vm.VM
	BaseDir string // directory the entry script was loaded from

	loaded map[string]bool
}

// New returns a Driver that resolves modules relative to baseDir.
func New(m *vm.VM, baseDir string) *Driver {
	return &Driver{VM: m, BaseDir: baseDir, loaded: make(map[string]bool)}
}

// Hook is the compiler.ImportFunc wired into every Compile call the driver
// makes, so nested imports resolve the same way as the entry script's.
func (d *Driver) Hook(name string) error {
	if d.loaded[name] {
		return nil
	}
	d.loaded[name] = true

	path, src, err := d.resolve(name)
	if err != nil {
		return err
	}
	// Module source has every CR and LF turned into a space before scanning.
	src = strings.NewReplacer("\r", " ", "\n", " ").Replace(src)

	before := make(map[string]bool, 32)
	for _, k := range d.VM.GlobalKeys() {
		before[k] = true
	}

	fn, err := compiler.Compile(src, d.VM.Strings(), d.Hook)
	if err != nil {
		return fmt.Errorf("importing %q (%s): %w", name, path, err)
	}
	if err := d.run(fn); err != nil {
		return fmt.Errorf("importing %q (%s): %w", name, path, err)
	}

	mod := value.NewDict(8)
	for _, k := range d.VM.GlobalKeys() {
		if before[k] {
			continue
		}
		v, _ := d.VM.Global(k)
		mod.Set(k, v)
	}
	d.VM.DefineGlobal(name, mod)
	return nil
}

// resolve looks for name under ./stl/<name>.mbr first, then ./<name>.mbr,
// both relative to BaseDir (spec.md §4.2's two-directory search order).
func (d *Driver) resolve(name string) (path string, source string, err error) {
	candidates := []string{
		filepath.Join(d.BaseDir, "stl", name+".mbr"),
		filepath.Join(d.BaseDir, name+".mbr"),
	}
	for _, c := range candidates {
		src, err := os.ReadFile(c)
		if err == nil {
			return c, string(src), nil
		}
	}
	return "", "", fmt.Errorf("module %q not found (looked in %v)", name, candidates)
}

// run executes fn as a zero-argument top-level script against d.VM's
// existing stack and globals, the same protocol vm.VM.Interpret uses for the
// entry script -- safe to call here because import statements only resolve
// during compilation, before the importing script's own Closure begins
// executing (spec.md §4.2).
func (d *Driver) run(fn *value.Function) error {
	_, _, err := d.VM.RunFunction(fn)
	return err
}
