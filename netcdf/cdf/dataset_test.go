package cdf

import (
	"errors"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds := NewInMemory()
	for _, d := range []struct {
		name string
		size int64
	}{{"time_step", api.Unlimited}, {"num_nodes", 3}, {"len_name", 4}} {
		if err := ds.CreateDimension(d.name, d.size); err != nil {
			t.Fatal(err)
		}
	}
	return ds
}

func TestCreateDimensionErrors(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateDimension("num_nodes", 3); !errors.Is(err, api.ErrExists) {
		t.Error("expected ErrExists, got", err)
	}
	if err := ds.CreateDimension("other_step", api.Unlimited); !errors.Is(err, ErrTooManyUnlimited) {
		t.Error("expected ErrTooManyUnlimited, got", err)
	}
	if err := ds.CreateDimension("neg", -1); !errors.Is(err, ErrDimensionSize) {
		t.Error("expected ErrDimensionSize, got", err)
	}
	if err := ds.CreateDimension("bad/name", 1); err == nil {
		t.Error("expected invalid name error")
	}
}

func TestCreateVariableErrors(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("v", api.Double, []string{"num_nodes", "time_step"}, nil); !errors.Is(err, ErrUnlimitedMustBeFirst) {
		t.Error("expected ErrUnlimitedMustBeFirst, got", err)
	}
	if err := ds.CreateVariable("v", api.Double, []string{"missing"}, nil); !errors.Is(err, api.ErrNotFound) {
		t.Error("expected ErrNotFound, got", err)
	}
	if err := ds.CreateVariable("v", api.Double, []string{"num_nodes"}, "zero"); !errors.Is(err, api.ErrTypeMismatch) {
		t.Error("expected ErrTypeMismatch, got", err)
	}
	if err := ds.CreateVariable("v", api.Double, []string{"num_nodes"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("v", api.Int, []string{"num_nodes"}, nil); !errors.Is(err, api.ErrExists) {
		t.Error("expected ErrExists, got", err)
	}
}

func TestFillAndWrite(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("ids", api.Int, []string{"num_nodes"}, int32(-1)); err != nil {
		t.Fatal(err)
	}
	got, err := ds.Read("ids")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int32{-1, -1, -1}) {
		t.Error("fill not applied", got)
	}
	if err := ds.WriteSlice("ids", []int64{1}, []int64{1}, []int32{7}); err != nil {
		t.Fatal(err)
	}
	got, _ = ds.Read("ids")
	if !reflect.DeepEqual(got, []int32{-1, 7, -1}) {
		t.Error("slice write wrong", got)
	}
	if err := ds.WriteSlice("ids", []int64{2}, []int64{2}, []int32{1, 2}); !errors.Is(err, api.ErrShape) {
		t.Error("expected ErrShape, got", err)
	}
	if err := ds.WriteSlice("ids", []int64{0}, []int64{1}, []float64{1}); !errors.Is(err, api.ErrTypeMismatch) {
		t.Error("expected ErrTypeMismatch, got", err)
	}
	if err := ds.WriteSlice("ids", []int64{0}, []int64{2}, []int32{1}); !errors.Is(err, api.ErrShape) {
		t.Error("expected ErrShape for short data, got", err)
	}
}

func TestTwoDimensionalSlab(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("names", api.Char, []string{"num_nodes", "len_name"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.WriteSlice("names", []int64{1, 0}, []int64{1, 4}, []byte("ab\x00\x00")); err != nil {
		t.Fatal(err)
	}
	row, err := ds.ReadSlice("names", []int64{1, 0}, []int64{1, 4})
	if err != nil {
		t.Fatal(err)
	}
	if string(row.([]byte)) != "ab\x00\x00" {
		t.Errorf("got %q", row)
	}
	all, _ := ds.Read("names")
	want := make([]byte, 12)
	copy(want[4:], "ab")
	if !reflect.DeepEqual(all, want) {
		t.Errorf("got %q, want %q", all, want)
	}
	// a column
	col, err := ds.ReadSlice("names", []int64{0, 1}, []int64{3, 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(col.([]byte)) != "\x00b\x00" {
		t.Errorf("column got %q", col)
	}
}

func TestRecordGrowth(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("time_whole", api.Double, []string{"time_step"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("vals", api.Double, []string{"time_step", "num_nodes"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetNumRecords(1); err != nil {
		t.Fatal(err)
	}
	if err := ds.WriteSlice("vals", []int64{0, 0}, []int64{1, 3}, []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	// writing record 3 grows every record variable
	if err := ds.WriteSlice("time_whole", []int64{2}, []int64{1}, []float64{0.5}); err != nil {
		t.Fatal(err)
	}
	if ds.NumRecords() != 3 {
		t.Fatal("wrong record count", ds.NumRecords())
	}
	got, _ := ds.Read("vals")
	if !reflect.DeepEqual(got, []float64{1, 2, 3, 0, 0, 0, 0, 0, 0}) {
		t.Error("record variable not extended", got)
	}
	got, _ = ds.Read("time_whole")
	if !reflect.DeepEqual(got, []float64{0, 0, 0.5}) {
		t.Error("time_whole wrong", got)
	}
	d, _ := ds.Dimension("time_step")
	if !d.Unlimited || d.Len != 3 {
		t.Error("wrong record dimension", d)
	}
	vi, _ := ds.Variable("vals")
	if !reflect.DeepEqual(vi.Shape, []int64{3, 3}) {
		t.Error("wrong shape", vi.Shape)
	}
	if _, err := ds.ReadSlice("vals", []int64{3, 0}, []int64{1, 3}); !errors.Is(err, api.ErrShape) {
		t.Error("reading past the last record should fail, got", err)
	}
}

func TestAttributes(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("eb_prop1", api.Int, []string{"num_nodes"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetAttribute("eb_prop1", "name", "ID"); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetAttribute("", "version", float32(6.3)); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetAttribute("", "bad", []string{"a"}); !errors.Is(err, ErrUnknownType) {
		t.Error("expected ErrUnknownType, got", err)
	}
	if err := ds.SetAttribute("missing", "name", "ID"); !errors.Is(err, api.ErrNotFound) {
		t.Error("expected ErrNotFound, got", err)
	}
	attrs, err := ds.Attributes("eb_prop1")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := attrs.Get("name"); v != "ID" {
		t.Error("wrong attribute", v)
	}
}

func TestClosed(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateDimension("x", 1); !errors.Is(err, api.ErrClosed) {
		t.Error("expected ErrClosed, got", err)
	}
	if _, err := ds.Read("x"); !errors.Is(err, api.ErrClosed) {
		t.Error("expected ErrClosed, got", err)
	}
	if err := ds.Close(); !errors.Is(err, api.ErrClosed) {
		t.Error("expected ErrClosed on second close, got", err)
	}
}

func TestRollback(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.CreateVariable("keep", api.Int, []string{"num_nodes"}, int32(-1)); err != nil {
		t.Fatal(err)
	}
	if err := ds.WriteSlice("keep", []int64{0}, []int64{3}, []int32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	sp := ds.Savepoint()
	if err := ds.CreateDimension("num_el_in_blk1", 6); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("connect1", api.Int, []string{"num_el_in_blk1"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateVariable("vals", api.Double, []string{"time_step", "num_nodes"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := ds.Rollback(sp); err != nil {
		t.Fatal(err)
	}

	if got := ds.ListDimensions(); !reflect.DeepEqual(got, []string{"time_step", "num_nodes", "len_name"}) {
		t.Error("wrong dimensions after rollback", got)
	}
	if got := ds.ListVariables(); !reflect.DeepEqual(got, []string{"keep"}) {
		t.Error("wrong variables after rollback", got)
	}
	if _, has := ds.Variable("connect1"); has {
		t.Error("connect1 survived rollback")
	}
	data, err := ds.Read("keep")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(data, []int32{1, 2, 3}) {
		t.Error("kept variable changed", data)
	}

	// the names are free again, with any size
	if err := ds.CreateDimension("num_el_in_blk1", 3); err != nil {
		t.Error(err)
	}
	if err := ds.CreateVariable("connect1", api.Int, []string{"num_el_in_blk1"}, nil); err != nil {
		t.Error(err)
	}
}

func TestRollbackRecordDimension(t *testing.T) {
	ds := NewInMemory()
	sp := ds.Savepoint()
	if err := ds.CreateDimension("time_step", api.Unlimited); err != nil {
		t.Fatal(err)
	}
	if err := ds.Rollback(sp); err != nil {
		t.Fatal(err)
	}
	if err := ds.CreateDimension("steps", api.Unlimited); err != nil {
		t.Error("record dimension still taken:", err)
	}
}

func TestRollbackErrors(t *testing.T) {
	ds := newTestDataset(t)
	ahead := api.Savepoint{Dimensions: 4}
	if err := ds.Rollback(ahead); !errors.Is(err, ErrSavepoint) {
		t.Error("expected ErrSavepoint, got", err)
	}
	if err := ds.Rollback(api.Savepoint{Dimensions: -1}); !errors.Is(err, ErrSavepoint) {
		t.Error("expected ErrSavepoint, got", err)
	}
	sp := ds.Savepoint()
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ds.Rollback(sp); !errors.Is(err, api.ErrClosed) {
		t.Error("expected ErrClosed, got", err)
	}
}
