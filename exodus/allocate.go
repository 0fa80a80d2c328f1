package exodus

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// ensureDimension creates a fixed dimension unless it already exists. An
// existing dimension of another size is a usage error; dimensions never
// change size.
func (f *File) ensureDimension(name string, size int64) error {
	if d, has := f.c.Dimension(name); has {
		if d.Unlimited || d.Len != size {
			return usageErrorf("dimension %q has length %d, need %d", name, d.Len, size)
		}
		return nil
	}
	if err := f.c.CreateDimension(name, size); err != nil {
		return storageError("create dimension "+name, err)
	}
	logger.WithFields(logrus.Fields{"dimension": name, "size": size}).Info("allocated dimension")
	return nil
}

// ensureVariable creates the variable described by spec unless a variable
// of the same name, type and dimensions exists.
func (f *File) ensureVariable(spec varSpec) error {
	if vi, has := f.c.Variable(spec.name); has {
		if vi.Type != spec.dtype || !slices.Equal(vi.Dimensions, spec.dims) {
			return usageErrorf("variable %q is %v%v, need %v%v",
				spec.name, vi.Type, vi.Dimensions, spec.dtype, spec.dims)
		}
		return nil
	}
	if err := f.c.CreateVariable(spec.name, spec.dtype, spec.dims, spec.fill); err != nil {
		return storageError("create variable "+spec.name, err)
	}
	for _, a := range spec.attrs {
		if err := f.c.SetAttribute(spec.name, a.key, a.value); err != nil {
			return storageError("set attribute "+a.key, err)
		}
	}
	logger.WithFields(logrus.Fields{"variable": spec.name, "dims": spec.dims}).Info("allocated variable")
	return nil
}

// allocating runs alloc and removes every dimension and variable it
// created if it fails, so a failed definition can be retried.
func (f *File) allocating(alloc func() error) error {
	sp := f.c.Savepoint()
	err := alloc()
	if err == nil {
		return nil
	}
	if rerr := f.c.Rollback(sp); rerr != nil {
		logger.Error(rerr)
		return fmt.Errorf("%w (rollback failed: %w)", err, storageError("rollback", rerr))
	}
	logger.WithFields(logrus.Fields{
		"dimensions": sp.Dimensions,
		"variables":  sp.Variables,
	}).Warn("rolled back failed allocation")
	return err
}

// has reports whether the variable exists.
func (f *File) has(name string) bool {
	_, has := f.c.Variable(name)
	return has
}

// dimLen returns the length of a dimension, 0 when it was never created.
func (f *File) dimLen(name string) int {
	d, has := f.c.Dimension(name)
	if !has {
		return 0
	}
	return int(d.Len)
}

// writeAt writes one value at index of a one-dimensional variable.
func (f *File) writeAt(name string, index int, value any) error {
	_, n, _ := sliceLen(value)
	err := f.c.WriteSlice(name, []int64{int64(index)}, []int64{int64(n)}, value)
	return storageError("write "+name, err)
}

// writeAll writes the whole of a fixed variable.
func (f *File) writeAll(name string, data any) error {
	vi, has := f.c.Variable(name)
	if !has {
		return usageErrorf("variable %q does not exist", name)
	}
	err := f.c.WriteSlice(name, make([]int64, len(vi.Shape)), vi.Shape, data)
	return storageError("write "+name, err)
}

// writeRow writes row of a two-dimensional variable.
func (f *File) writeRow(name string, row int, data any) error {
	_, n, _ := sliceLen(data)
	err := f.c.WriteSlice(name, []int64{int64(row), 0}, []int64{1, int64(n)}, data)
	return storageError("write "+name, err)
}

// readRow reads row of a two-dimensional variable.
func (f *File) readRow(name string, row int) (any, error) {
	vi, has := f.c.Variable(name)
	if !has || len(vi.Shape) != 2 {
		return nil, usageErrorf("variable %q is not a table", name)
	}
	data, err := f.c.ReadSlice(name, []int64{int64(row), 0}, []int64{1, vi.Shape[1]})
	return data, storageError("read "+name, err)
}

func (f *File) readInt32s(name string) ([]int32, error) {
	data, err := f.c.Read(name)
	if err != nil {
		return nil, storageError("read "+name, err)
	}
	vals, ok := data.([]int32)
	if !ok {
		return nil, fmt.Errorf("variable %q holds %T: %w", name, data, ErrStorage)
	}
	return vals, nil
}

func (f *File) readFloat64s(name string) ([]float64, error) {
	data, err := f.c.Read(name)
	if err != nil {
		return nil, storageError("read "+name, err)
	}
	vals, ok := data.([]float64)
	if !ok {
		return nil, fmt.Errorf("variable %q holds %T: %w", name, data, ErrStorage)
	}
	return vals, nil
}

// readNames decodes every row of a name table. A missing table has no
// names.
func (f *File) readNames(name string) ([]string, error) {
	if !f.has(name) {
		return []string{}, nil
	}
	data, err := f.c.Read(name)
	if err != nil {
		return nil, storageError("read "+name, err)
	}
	table, ok := data.([]byte)
	if !ok {
		return nil, fmt.Errorf("variable %q holds %T: %w", name, data, ErrStorage)
	}
	return decodeRows(table, lenName), nil
}

// writeName encodes name into row of a name table.
func (f *File) writeName(table string, row int, name string) error {
	if len(name) > f.settings.maxNameLength {
		return usageErrorf("name %q longer than %d", name, f.settings.maxNameLength)
	}
	enc, err := EncodeName(name, lenName)
	if err != nil {
		return err
	}
	return f.writeRow(table, row, enc)
}

func sliceLen(data any) (api.DataType, int, bool) {
	switch d := data.(type) {
	case []byte:
		return api.Char, len(d), true
	case []int32:
		return api.Int, len(d), true
	case []int64:
		return api.Int64, len(d), true
	case []float32:
		return api.Float, len(d), true
	case []float64:
		return api.Double, len(d), true
	}
	return 0, 0, false
}
