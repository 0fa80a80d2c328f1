// Verify that ncdump can read the files we write
package cdf

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func ncDump(t *testing.T, fname string) string {
	t.Helper()
	path, err := exec.LookPath("ncdump")
	if err != nil {
		t.Skip("ncdump not installed")
	}
	out, err := exec.Command(path, "-h", fname).CombinedOutput()
	if err != nil {
		t.Fatalf("ncdump failed: %v\n%s", err, out)
	}
	return string(out)
}

func TestNCDump(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "dump.nc")
	ds, err := Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	buildSample(t, ds)
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	out := ncDump(t, fname)
	for _, want := range []string{
		"time_step = UNLIMITED ; // (2 currently)",
		"num_nodes = 3 ;",
		"double time_whole(time_step) ;",
		"float vals(time_step, num_nodes) ;",
		`ids:name = "ID" ;`,
		`:title = "sample" ;`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ncdump output missing %q:\n%s", want, out)
		}
	}
}
