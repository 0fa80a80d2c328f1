package cdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// buildSample makes a dataset with fixed, record and char variables and a
// few attributes of each supported type.
func buildSample(t *testing.T, ds *Dataset) {
	t.Helper()
	mustDo := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustDo(ds.CreateDimension("time_step", api.Unlimited))
	mustDo(ds.CreateDimension("num_nodes", 3))
	mustDo(ds.CreateDimension("len_name", 5))
	mustDo(ds.SetAttribute("", "title", "sample"))
	mustDo(ds.SetAttribute("", "version", float32(6.3)))
	mustDo(ds.SetAttribute("", "file_size", int32(1)))
	mustDo(ds.SetAttribute("", "weights", []float64{0.5, 1.5}))
	mustDo(ds.CreateVariable("coordx", api.Double, []string{"num_nodes"}, nil))
	mustDo(ds.CreateVariable("ids", api.Int, []string{"num_nodes"}, int32(-1)))
	mustDo(ds.SetAttribute("ids", "name", "ID"))
	mustDo(ds.CreateVariable("names", api.Char, []string{"num_nodes", "len_name"}, nil))
	mustDo(ds.CreateVariable("time_whole", api.Double, []string{"time_step"}, nil))
	mustDo(ds.CreateVariable("vals", api.Float, []string{"time_step", "num_nodes"}, nil))
	mustDo(ds.WriteSlice("coordx", []int64{0}, []int64{3}, []float64{1, 2, 3}))
	mustDo(ds.WriteSlice("names", []int64{0, 0}, []int64{1, 5}, []byte("abc\x00\x00")))
	mustDo(ds.WriteSlice("time_whole", []int64{0}, []int64{2}, []float64{0, 0.25}))
	mustDo(ds.WriteSlice("vals", []int64{1, 0}, []int64{1, 3}, []float32{4, 5, 6}))
}

func checkSample(t *testing.T, ds *Dataset) {
	t.Helper()
	if ds.NumRecords() != 2 {
		t.Error("wrong record count", ds.NumRecords())
	}
	want := map[string]any{
		"coordx":     []float64{1, 2, 3},
		"ids":        []int32{-1, -1, -1},
		"names":      []byte("abc\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"),
		"time_whole": []float64{0, 0.25},
		"vals":       []float32{0, 0, 0, 4, 5, 6},
	}
	for name, w := range want {
		got, err := ds.Read(name)
		if err != nil {
			t.Error(name, err)
			continue
		}
		if !reflect.DeepEqual(got, w) {
			t.Errorf("%s: got %v, want %v", name, got, w)
		}
	}
	attrs, err := ds.Attributes("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(attrs.Keys(), []string{"title", "version", "file_size", "weights"}) {
		t.Error("wrong global attribute order", attrs.Keys())
	}
	if v, _ := attrs.Get("title"); v != "sample" {
		t.Error("title", v)
	}
	if v, _ := attrs.Get("version"); v != float32(6.3) {
		t.Error("version", v)
	}
	if v, _ := attrs.Get("file_size"); v != int32(1) {
		t.Error("file_size", v)
	}
	if v, _ := attrs.Get("weights"); !reflect.DeepEqual(v, []float64{0.5, 1.5}) {
		t.Error("weights", v)
	}
	vattrs, _ := ds.Attributes("ids")
	if v, _ := vattrs.Get("name"); v != "ID" {
		t.Error("ids name", v)
	}
	if !reflect.DeepEqual(ds.ListVariables(), []string{"coordx", "ids", "names", "time_whole", "vals"}) {
		t.Error("wrong variable order", ds.ListVariables())
	}
}

func TestRoundTrip(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "sample.nc")
	ds, err := Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	buildSample(t, ds)
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	back, err := Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Close()
	checkSample(t, back)
}

func TestReopenAndExtend(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "extend.nc")
	ds, err := Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	buildSample(t, ds)
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	ds, err = Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.WriteSlice("time_whole", []int64{2}, []int64{1}, []float64{0.5}); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	ds, err = Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()
	got, _ := ds.Read("vals")
	if !reflect.DeepEqual(got, []float32{0, 0, 0, 4, 5, 6, 0, 0, 0}) {
		t.Error("vals", got)
	}
	got, _ = ds.Read("time_whole")
	if !reflect.DeepEqual(got, []float64{0, 0.25, 0.5}) {
		t.Error("time_whole", got)
	}
}

type memFile struct {
	data []byte
	pos  int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		m.pos = offset
	case 1:
		m.pos += offset
	case 2:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func TestHeaderLayout(t *testing.T) {
	ds := NewInMemory()
	if err := ds.CreateDimension("time_step", api.Unlimited); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("time_whole", api.Double, []string{"time_step"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetNumRecords(1); err != nil {
		t.Fatal(err)
	}
	f := &memFile{}
	if err := ds.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if string(f.data[:4]) != "CDF\x02" {
		t.Errorf("bad magic %q", f.data[:4])
	}
	// numrecs
	if !bytes.Equal(f.data[4:8], []byte{0, 0, 0, 1}) {
		t.Errorf("bad numrecs % x", f.data[4:8])
	}
	// one record of one double, unpadded, at the end of the file
	back, err := New(bytes.NewReader(f.data))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := back.Read("time_whole")
	if !reflect.DeepEqual(got, []float64{0}) {
		t.Error("time_whole", got)
	}
}

func TestInt64Version(t *testing.T) {
	ds := NewInMemory()
	if err := ds.CreateDimension("n", 2); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("big", api.Int64, []string{"n"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.WriteSlice("big", []int64{0}, []int64{2}, []int64{1 << 40, -3}); err != nil {
		t.Fatal(err)
	}
	f := &memFile{}
	if err := ds.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if f.data[3] != 5 {
		t.Error("expected version 5, got", f.data[3])
	}
	back, err := New(bytes.NewReader(f.data))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := back.Read("big")
	if !reflect.DeepEqual(got, []int64{1 << 40, -3}) {
		t.Error("big", got)
	}
}

func TestNotCDF(t *testing.T) {
	_, err := New(bytes.NewReader([]byte("HDF\x01\x00\x00\x00\x00")))
	if !errors.Is(err, ErrNotCDF) {
		t.Error("expected ErrNotCDF, got", err)
	}
	_, err = New(bytes.NewReader([]byte("CDF\x04\x00\x00\x00\x00")))
	if !errors.Is(err, ErrUnknownVersion) {
		t.Error("expected ErrUnknownVersion, got", err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.nc"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected not exist, got", err)
	}
}

func TestCreateNew(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "new.nc")
	ds, err := CreateNew(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateNew(fname); !errors.Is(err, os.ErrExist) {
		t.Error("expected exists error, got", err)
	}
	reopened, err := Open(fname)
	if err != nil {
		t.Fatal("existing file damaged:", err)
	}
	reopened.Close()
}
