package cdf

import (
	"fmt"
	"io"
	"os"

	"github.com/batchatco/go-native-exodus/internal"
	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/util"
)

type dimension struct {
	name      string
	dimLength int64 // 0 for the record dimension
}

type variable struct {
	name     string
	vType    api.DataType
	dimNames []string
	attrs    *util.OrderedMap
	fill     any // scalar of vType's Go type
	data     any // flat slice of vType's Go type, nil until first write
}

// Dataset is an in-memory CDF file. Every change is kept in memory and
// written out in full by Sync and Close.
type Dataset struct {
	file        *os.File
	dimensions  []dimension
	vars        []*variable
	varIndex    map[string]*variable
	globalAttrs *util.OrderedMap
	recordDim   string
	numRecs     int64
	version     int8
	closed      bool
}

var _ api.Container = (*Dataset)(nil)

func newDataset() *Dataset {
	attrs, _ := util.NewOrderedMap(nil, nil)
	return &Dataset{
		varIndex:    make(map[string]*variable),
		globalAttrs: attrs,
		version:     2,
	}
}

// Create creates (or truncates) fname and returns an empty dataset that
// will be written to it.
func Create(fname string) (*Dataset, error) {
	file, err := os.Create(fname)
	if err != nil {
		return nil, err
	}
	ds := newDataset()
	ds.file = file
	return ds, nil
}

// CreateNew is like Create, but fails with an error matching fs.ErrExist
// if fname already exists.
func CreateNew(fname string) (*Dataset, error) {
	file, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return nil, err
	}
	ds := newDataset()
	ds.file = file
	return ds, nil
}

// NewInMemory returns a dataset with no backing file. Sync is a no-op.
func NewInMemory() *Dataset {
	return newDataset()
}

// WriteTo writes the dataset as a CDF file to w.
func (ds *Dataset) WriteTo(w io.WriteSeeker) error {
	return newWriter(w, ds).writeAll()
}

func (ds *Dataset) checkOpen() error {
	if ds.closed {
		return api.ErrClosed
	}
	return nil
}

func (ds *Dataset) dimIndex(name string) int {
	for i := range ds.dimensions {
		if ds.dimensions[i].name == name {
			return i
		}
	}
	return -1
}

func (ds *Dataset) isRecordVar(v *variable) bool {
	return ds.recordDim != "" && len(v.dimNames) > 0 && v.dimNames[0] == ds.recordDim
}

func (ds *Dataset) shape(v *variable) []int64 {
	shape := make([]int64, len(v.dimNames))
	for i, name := range v.dimNames {
		if name == ds.recordDim {
			shape[i] = ds.numRecs
			continue
		}
		shape[i] = ds.dimensions[ds.dimIndex(name)].dimLength
	}
	return shape
}

// recordLen is the number of values in one record of v, or in all of v if
// it is not a record variable.
func (ds *Dataset) recordLen(v *variable) int64 {
	n := int64(1)
	for i, s := range ds.shape(v) {
		if i == 0 && ds.isRecordVar(v) {
			continue
		}
		n *= s
	}
	return n
}

func product(s []int64) int64 {
	n := int64(1)
	for _, v := range s {
		n *= v
	}
	return n
}

func (ds *Dataset) CreateDimension(name string, size int64) error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	if err := internal.CheckName(name); err != nil {
		return err
	}
	if ds.dimIndex(name) >= 0 {
		return fmt.Errorf("dimension %q: %w", name, api.ErrExists)
	}
	if size < 0 {
		return fmt.Errorf("dimension %q size %d: %w", name, size, ErrDimensionSize)
	}
	if size == api.Unlimited {
		if ds.recordDim != "" {
			return fmt.Errorf("dimension %q: %w (%q)", name, ErrTooManyUnlimited, ds.recordDim)
		}
		ds.recordDim = name
	}
	ds.dimensions = append(ds.dimensions, dimension{name, size})
	return nil
}

func (ds *Dataset) CreateVariable(name string, dtype api.DataType, dims []string, fill any) error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	if err := internal.CheckName(name); err != nil {
		return err
	}
	if _, has := ds.varIndex[name]; has {
		return fmt.Errorf("variable %q: %w", name, api.ErrExists)
	}
	if dtype.Size() == 0 {
		return fmt.Errorf("variable %q: %w", name, ErrUnknownType)
	}
	for i, d := range dims {
		if ds.dimIndex(d) < 0 {
			return fmt.Errorf("variable %q dimension %q: %w", name, d, api.ErrNotFound)
		}
		if d == ds.recordDim && i != 0 {
			return fmt.Errorf("variable %q: %w", name, ErrUnlimitedMustBeFirst)
		}
	}
	fv, err := coerceFill(dtype, fill)
	if err != nil {
		return fmt.Errorf("variable %q: %w", name, err)
	}
	attrs, _ := util.NewOrderedMap(nil, nil)
	v := &variable{
		name:     name,
		vType:    dtype,
		dimNames: append([]string{}, dims...),
		attrs:    attrs,
		fill:     fv,
	}
	if dtype == api.Int64 {
		ds.version = 5
	}
	ds.vars = append(ds.vars, v)
	ds.varIndex[name] = v
	return nil
}

func (ds *Dataset) Savepoint() api.Savepoint {
	return api.Savepoint{Dimensions: len(ds.dimensions), Variables: len(ds.vars)}
}

// Rollback drops the dimensions and variables created after sp. A dataset
// that became CDF-5 stays CDF-5.
func (ds *Dataset) Rollback(sp api.Savepoint) error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	if sp.Dimensions < 0 || sp.Variables < 0 ||
		sp.Dimensions > len(ds.dimensions) || sp.Variables > len(ds.vars) {
		return fmt.Errorf("%+v with %d dimensions and %d variables: %w",
			sp, len(ds.dimensions), len(ds.vars), ErrSavepoint)
	}
	for _, v := range ds.vars[sp.Variables:] {
		delete(ds.varIndex, v.name)
	}
	ds.vars = ds.vars[:sp.Variables:sp.Variables]
	for _, d := range ds.dimensions[sp.Dimensions:] {
		if d.name == ds.recordDim {
			ds.recordDim = ""
			ds.numRecs = 0
		}
	}
	ds.dimensions = ds.dimensions[:sp.Dimensions:sp.Dimensions]
	return nil
}

// coerceFill converts fill to the Go type of dtype. A nil fill is zero.
func coerceFill(dtype api.DataType, fill any) (any, error) {
	switch dtype {
	case api.Char:
		switch f := fill.(type) {
		case nil:
			return byte(0), nil
		case byte:
			return f, nil
		}
	case api.Int:
		switch f := fill.(type) {
		case nil:
			return int32(0), nil
		case int32:
			return f, nil
		case int:
			return int32(f), nil
		}
	case api.Int64:
		switch f := fill.(type) {
		case nil:
			return int64(0), nil
		case int64:
			return f, nil
		case int:
			return int64(f), nil
		}
	case api.Float:
		switch f := fill.(type) {
		case nil:
			return float32(0), nil
		case float32:
			return f, nil
		case float64:
			return float32(f), nil
		}
	case api.Double:
		switch f := fill.(type) {
		case nil:
			return float64(0), nil
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		case int:
			return float64(f), nil
		}
	}
	return nil, fmt.Errorf("fill %T for %v: %w", fill, dtype, api.ErrTypeMismatch)
}

func (ds *Dataset) lookup(name string) (*variable, error) {
	if err := ds.checkOpen(); err != nil {
		return nil, err
	}
	v, has := ds.varIndex[name]
	if !has {
		return nil, fmt.Errorf("variable %q: %w", name, api.ErrNotFound)
	}
	return v, nil
}

// checkSlab validates begin/count against v. The record dimension may
// extend past the current record count when grow is set.
func (ds *Dataset) checkSlab(v *variable, begin, count []int64, grow bool) error {
	shape := ds.shape(v)
	if len(begin) != len(shape) || len(count) != len(shape) {
		return fmt.Errorf("variable %q has %d dimensions, slab has %d/%d: %w",
			v.name, len(shape), len(begin), len(count), api.ErrShape)
	}
	for i := range shape {
		if begin[i] < 0 || count[i] < 0 {
			return fmt.Errorf("variable %q negative slab: %w", v.name, api.ErrShape)
		}
		if i == 0 && grow && ds.isRecordVar(v) {
			continue
		}
		if begin[i]+count[i] > shape[i] {
			return fmt.Errorf("variable %q dimension %q: slab [%d,%d) exceeds %d: %w",
				v.name, v.dimNames[i], begin[i], begin[i]+count[i], shape[i], api.ErrShape)
		}
	}
	return nil
}

func (ds *Dataset) WriteSlice(name string, begin, count []int64, data any) error {
	v, err := ds.lookup(name)
	if err != nil {
		return err
	}
	if err := ds.checkSlab(v, begin, count, true); err != nil {
		return err
	}
	dtype, n, ok := typeOf(data)
	if !ok || dtype != v.vType {
		return fmt.Errorf("variable %q is %v, got %T: %w", name, v.vType, data, api.ErrTypeMismatch)
	}
	if n != product(count) {
		return fmt.Errorf("variable %q: %d values for a slab of %d: %w", name, n, product(count), api.ErrShape)
	}
	if ds.isRecordVar(v) && len(begin) > 0 && begin[0]+count[0] > ds.numRecs {
		if err := ds.SetNumRecords(begin[0] + count[0]); err != nil {
			return err
		}
	}
	shape := ds.shape(v)
	total := product(shape)
	switch d := data.(type) {
	case []byte:
		writeSlab(v, d, total, shape, begin, count)
	case []int32:
		writeSlab(v, d, total, shape, begin, count)
	case []int64:
		writeSlab(v, d, total, shape, begin, count)
	case []float32:
		writeSlab(v, d, total, shape, begin, count)
	case []float64:
		writeSlab(v, d, total, shape, begin, count)
	}
	return nil
}

func writeSlab[T comparable](v *variable, buf []T, total int64, shape, begin, count []int64) {
	if v.data == nil {
		v.data = filled(v.fill.(T), total)
	}
	transfer(v.data.([]T), shape, begin, count, buf, true)
}

func readSlab[T comparable](v *variable, total int64, shape, begin, count []int64) []T {
	buf := make([]T, product(count))
	if v.data == nil {
		fill := v.fill.(T)
		for i := range buf {
			buf[i] = fill
		}
		return buf
	}
	transfer(v.data.([]T), shape, begin, count, buf, false)
	return buf
}

func (ds *Dataset) Read(name string) (any, error) {
	v, err := ds.lookup(name)
	if err != nil {
		return nil, err
	}
	shape := ds.shape(v)
	return ds.ReadSlice(name, make([]int64, len(shape)), shape)
}

func (ds *Dataset) ReadSlice(name string, begin, count []int64) (any, error) {
	v, err := ds.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := ds.checkSlab(v, begin, count, false); err != nil {
		return nil, err
	}
	shape := ds.shape(v)
	total := product(shape)
	switch v.vType {
	case api.Char:
		return readSlab[byte](v, total, shape, begin, count), nil
	case api.Int:
		return readSlab[int32](v, total, shape, begin, count), nil
	case api.Int64:
		return readSlab[int64](v, total, shape, begin, count), nil
	case api.Float:
		return readSlab[float32](v, total, shape, begin, count), nil
	case api.Double:
		return readSlab[float64](v, total, shape, begin, count), nil
	}
	return nil, ErrInternal
}

func (ds *Dataset) SetNumRecords(n int64) error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	if ds.recordDim == "" {
		return fmt.Errorf("no record dimension: %w", api.ErrNotFound)
	}
	if n <= ds.numRecs {
		return nil
	}
	extra := n - ds.numRecs
	for _, v := range ds.vars {
		if !ds.isRecordVar(v) || v.data == nil {
			continue
		}
		count := extra * ds.recordLen(v)
		switch v.vType {
		case api.Char:
			extend[byte](v, count)
		case api.Int:
			extend[int32](v, count)
		case api.Int64:
			extend[int64](v, count)
		case api.Float:
			extend[float32](v, count)
		case api.Double:
			extend[float64](v, count)
		}
	}
	logger.Infof("records %d -> %d", ds.numRecs, n)
	ds.numRecs = n
	return nil
}

func extend[T comparable](v *variable, count int64) {
	v.data = append(v.data.([]T), filled(v.fill.(T), count)...)
}

func (ds *Dataset) NumRecords() int64 {
	return ds.numRecs
}

func (ds *Dataset) attrsOf(target string) (*util.OrderedMap, error) {
	if err := ds.checkOpen(); err != nil {
		return nil, err
	}
	if target == "" {
		return ds.globalAttrs, nil
	}
	v, has := ds.varIndex[target]
	if !has {
		return nil, fmt.Errorf("variable %q: %w", target, api.ErrNotFound)
	}
	return v.attrs, nil
}

func (ds *Dataset) SetAttribute(target, key string, value any) error {
	attrs, err := ds.attrsOf(target)
	if err != nil {
		return err
	}
	if err := internal.CheckName(key); err != nil {
		return err
	}
	switch value.(type) {
	case string, int32, []int32, float32, []float32, float64, []float64:
	case int64, []int64:
		ds.version = 5
	default:
		return fmt.Errorf("attribute %q: %T: %w", key, value, ErrUnknownType)
	}
	attrs.Add(key, value)
	return nil
}

func (ds *Dataset) Attributes(target string) (api.AttributeMap, error) {
	attrs, err := ds.attrsOf(target)
	if err != nil {
		return nil, err
	}
	return attrs.Clone(), nil
}

func (ds *Dataset) ListDimensions() []string {
	var ret []string
	for _, d := range ds.dimensions {
		ret = append(ret, d.name)
	}
	return ret
}

func (ds *Dataset) ListVariables() []string {
	var ret []string
	for _, v := range ds.vars {
		ret = append(ret, v.name)
	}
	return ret
}

func (ds *Dataset) Dimension(name string) (api.Dimension, bool) {
	i := ds.dimIndex(name)
	if i < 0 {
		return api.Dimension{}, false
	}
	d := ds.dimensions[i]
	if d.name == ds.recordDim {
		return api.Dimension{Name: d.name, Len: ds.numRecs, Unlimited: true}, true
	}
	return api.Dimension{Name: d.name, Len: d.dimLength}, true
}

func (ds *Dataset) Variable(name string) (api.VarInfo, bool) {
	v, has := ds.varIndex[name]
	if !has {
		return api.VarInfo{}, false
	}
	return api.VarInfo{
		Name:       v.name,
		Type:       v.vType,
		Dimensions: append([]string{}, v.dimNames...),
		Shape:      ds.shape(v),
		Attributes: v.attrs.Clone(),
	}, true
}

// Sync rewrites the backing file from scratch.
func (ds *Dataset) Sync() error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	if ds.file == nil {
		return nil
	}
	if err := ds.file.Truncate(0); err != nil {
		return err
	}
	if _, err := ds.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return ds.WriteTo(ds.file)
}

func (ds *Dataset) Close() error {
	if err := ds.checkOpen(); err != nil {
		return err
	}
	err := ds.Sync()
	if ds.file != nil {
		err2 := ds.file.Close()
		if err == nil {
			err = err2
		} else if err2 != nil {
			// return the first error, log the second
			logger.Error(err2)
		}
		ds.file = nil
	}
	ds.closed = true
	return err
}

// typeOf returns the DataType and length of a flat data slice.
func typeOf(data any) (api.DataType, int64, bool) {
	switch d := data.(type) {
	case []byte:
		return api.Char, int64(len(d)), true
	case []int32:
		return api.Int, int64(len(d)), true
	case []int64:
		return api.Int64, int64(len(d)), true
	case []float32:
		return api.Float, int64(len(d)), true
	case []float64:
		return api.Double, int64(len(d)), true
	}
	return 0, 0, false
}

func filled[T comparable](fill T, n int64) []T {
	s := make([]T, n)
	var zero T
	if fill != zero {
		for i := range s {
			s[i] = fill
		}
	}
	return s
}

// transfer copies the hyper-slab (begin, count) between store, laid out
// row-major with the given shape, and the dense buffer buf.
func transfer[T any](store []T, shape, begin, count []int64, buf []T, toStore bool) {
	n := len(shape)
	if n == 0 {
		if toStore {
			store[0] = buf[0]
		} else {
			buf[0] = store[0]
		}
		return
	}
	if product(count) == 0 {
		return
	}
	stride := make([]int64, n)
	stride[n-1] = 1
	for i := n - 2; i >= 0; i-- {
		stride[i] = stride[i+1] * shape[i+1]
	}
	run := count[n-1]
	idx := make([]int64, n)
	pos := int64(0)
	for {
		off := int64(0)
		for i := 0; i < n; i++ {
			off += (begin[i] + idx[i]) * stride[i]
		}
		if toStore {
			copy(store[off:off+run], buf[pos:pos+run])
		} else {
			copy(buf[pos:pos+run], store[off:off+run])
		}
		pos += run
		i := n - 2
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < count[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}
