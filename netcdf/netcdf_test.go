package netcdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/cdf"
)

func TestOpen(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "small.nc")
	ds, err := cdf.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateDimension("n", 2); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("v", api.Int, []string{"n"}, int32(3)); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	c, err := Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Read("v")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int32{3, 3}) {
		t.Error("wrong values", got)
	}
	// the file is not written back
	before, _ := os.ReadFile(fname)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(fname)
	if !bytes.Equal(before, after) {
		t.Error("file changed")
	}
}

func TestKinds(t *testing.T) {
	_, err := New(bytes.NewReader([]byte{0x89, 'H', 'D', 'F'}))
	if !errors.Is(err, ErrUnsupported) {
		t.Error("expected ErrUnsupported, got", err)
	}
	_, err = New(bytes.NewReader([]byte("junk")))
	if !errors.Is(err, ErrUnknown) {
		t.Error("expected ErrUnknown, got", err)
	}
	_, err = New(bytes.NewReader(nil))
	if !errors.Is(err, ErrUnknown) {
		t.Error("expected ErrUnknown for an empty file, got", err)
	}
	_, err = Open(filepath.Join(t.TempDir(), "missing.nc"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected ErrNotExist, got", err)
	}
}
