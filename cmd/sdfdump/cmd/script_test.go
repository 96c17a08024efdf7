package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"scenedesc.dev/sdf/pkgzip"
)

// TestScript runs the golden command scripts under testdata/script,
// mirroring cmd/cue's own testscript.Run-based TestScript.
func TestScript(t *testing.T) {
	p := testscript.Params{
		Dir:                 filepath.Join("testdata", "script"),
		RequireExplicitExec: true,
		RequireUniqueNames:  true,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			// make-usdz packages the given files into a new zip package at
			// args[0], each subsequent arg being "src=packagePath".
			"make-usdz": func(ts *testscript.TestScript, neg bool, args []string) {
				if neg || len(args) < 2 {
					ts.Fatalf("usage: make-usdz out.usdz src=packagePath...")
				}
				w, err := pkgzip.CreateNew(ts.MkAbs(args[0]))
				ts.Check(err)
				for _, spec := range args[1:] {
					src, pkgPath, ok := splitMakeUsdzArg(spec)
					if !ok {
						ts.Fatalf("bad spec %q, want src=packagePath", spec)
					}
					if _, err := w.AddFile(ts.MkAbs(src), pkgPath); err != nil {
						ts.Check(err)
					}
				}
				ts.Check(w.Save())
			},
		},
	}
	testscript.Run(t, p)
}

func splitMakeUsdzArg(spec string) (src, pkgPath string, ok bool) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '=' {
			return spec[:i], spec[i+1:], true
		}
	}
	return "", "", false
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"sdfdump": Main,
	}))
}
