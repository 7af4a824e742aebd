package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/marrow-lang/marrow/internal/filetest"
	"github.com/marrow-lang/marrow/lang/importer"
	"github.com/marrow-lang/marrow/lang/vm"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected VM golden output with actual output.")

// TestFixtures runs every .mbr script under testdata/in end to end (compile,
// execute, collect stdout) and diffs it against testdata/out's golden file,
// the same shape as the teacher repo's scanner/parser/resolver golden tests
// (internal/filetest).
func TestFixtures(t *testing.T) {
	srcDir, outDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".mbr") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			m := vm.New()
			var out bytes.Buffer
			m.Stdout = &out
			drv := importer.New(m, srcDir)
			if _, _, err := m.Interpret(string(src), drv.Hook); err != nil {
				t.Fatalf("unexpected error running %s: %s", fi.Name(), err)
			}

			filetest.DiffOutput(t, fi, out.String(), outDir, testUpdateVMTests)
		})
	}
}
