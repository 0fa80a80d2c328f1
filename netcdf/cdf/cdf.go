// Package cdf implements the container as an in-memory dataset stored in
// the NetCDF classic format: v1 (classic), v2 (64-bit offset) and v5
// (64-bit data) files, including the record dimension.
package cdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/batchatco/go-native-exodus/internal"
	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/util"
	"github.com/batchatco/go-thrower"
)

const (
	fieldDimension = 0x0000000a
	fieldVariable  = 0x0000000b
	fieldAttribute = 0x0000000c
)

const (
	typeNone = iota // Never stored in a file: only a sentinal value
	typeByte        // same as go int8
	typeChar        // same as go string when in an array
	typeShort
	typeInt
	typeFloat
	typeDouble

	// v5
	typeUByte // same as go uint8
	typeUShort
	typeUInt
	typeInt64
	typeUInt64
)

const maxDimensions = 1024

var (
	ErrNotCDF                = errors.New("not a CDF file")
	ErrUnknownVersion        = errors.New("unknown CDF version")
	ErrUnknownType           = errors.New("unknown type")
	ErrCorruptedFile         = errors.New("corrupted file")
	ErrNoStreamingDimensions = errors.New("streaming dimensions not supported")
	ErrInternal              = errors.New("internal error")
	ErrDuplicateVariable     = errors.New("duplicate variable")
	ErrTooManyDimensions     = errors.New("too many dimensions")
	ErrUnlimitedMustBeFirst  = errors.New("unlimited dimension must be first")
	ErrTooManyUnlimited      = errors.New("only one unlimited dimension allowed")
	ErrDimensionSize         = errors.New("invalid dimension size")
	ErrSavepoint             = errors.New("savepoint is ahead of the dataset")
)

var (
	logger = internal.NewLogger()
)

// SetLogLevel sets the logging level to the given level, and returns
// the old level. This is for internal debugging use. The log messages
// are not expected to make much sense to anyone but the developers.
// The lowest level is 0 (no error logs at all) and the highest level is
// 3 (errors, warnings and debug messages).
func SetLogLevel(level int) int {
	old := logger.LogLevel()
	switch level {
	case 0:
		logger.SetLogLevel(internal.LevelFatal)
	case 1:
		logger.SetLogLevel(internal.LevelError)
	case 2:
		logger.SetLogLevel(internal.LevelWarn)
	default:
		logger.SetLogLevel(internal.LevelInfo)
	}
	return int(old)
}

func fail(message string, err error) {
	logger.Error(message)
	thrower.Throw(err)
}

func assert(condition bool, message string, err error) {
	if condition {
		return
	}
	fail(message, err)
}

// Rounds up to next int boundary
func roundInt32(i int64) int64 {
	return (i + 3) & ^int64(0x3)
}

type cdfReader struct {
	bf      io.Reader
	version uint8
}

func (cr *cdfReader) read32() uint32 {
	var data uint32
	util.MustReadBE(cr.bf, &data)
	return data
}

func (cr *cdfReader) readNumber() int64 {
	if cr.version < 5 {
		// Weird casts are to do sign extension
		return int64(int32(cr.read32()))
	}
	var data int64
	util.MustReadBE(cr.bf, &data)
	return data
}

func (cr *cdfReader) readName() string {
	nameLen := cr.readNumber()
	assert(nameLen >= 0 && nameLen <= internal.MaxNameLength,
		fmt.Sprint("bad name length ", nameLen), ErrCorruptedFile)
	b := make([]byte, roundInt32(nameLen))
	util.MustReadBE(cr.bf, b)
	for i := int64(0); i < nameLen; i++ {
		if b[i] == 0 {
			logger.Warnf("Null found in name %q %d %d version %d", string(b[:nameLen]), nameLen, i, cr.version)
			nameLen = i
			break
		}
	}
	return string(b[:nameLen])
}

func (cr *cdfReader) checkVersion(requiredVersion int) {
	assert(cr.version >= uint8(requiredVersion),
		"invalid type for this file version",
		ErrCorruptedFile)
}

func (cr *cdfReader) getAttr() (string, any) {
	name := cr.readName()
	vType := cr.read32()
	nvars := cr.readNumber()
	assert(nvars >= 0, "negative attribute length", ErrCorruptedFile)
	var values any
	nread := int64(0)
	switch vType {
	case typeChar:
		// char array becomes string in go-speak
		b := make([]byte, nvars)
		util.MustReadBE(cr.bf, b)
		values = string(b)
		nread = nvars

	case typeByte, typeShort, typeUByte, typeUShort, typeUInt, typeUInt64:
		fail(fmt.Sprint("unsupported attribute type: ", vType), ErrUnknownType)

	case typeInt:
		i32v := make([]int32, nvars)
		util.MustReadBE(cr.bf, i32v)
		values = i32v

	case typeFloat:
		fv := make([]float32, nvars)
		util.MustReadBE(cr.bf, fv)
		values = fv

	case typeDouble:
		dv := make([]float64, nvars)
		util.MustReadBE(cr.bf, dv)
		values = dv

	case typeInt64:
		cr.checkVersion(5)
		i64v := make([]int64, nvars)
		util.MustReadBE(cr.bf, i64v)
		values = i64v

	default:
		fail(fmt.Sprint("corrupted file, unknown type: ", vType),
			ErrCorruptedFile)
	}
	// padding
	if nread&0x3 != 0 {
		util.MustSkip(cr.bf, roundInt32(nread)-nread)
	}
	// If just one value in an attribute value slice, return it as a scalar
	switch v := values.(type) {
	case []int32:
		if len(v) == 1 {
			values = v[0]
		}
	case []float32:
		if len(v) == 1 {
			values = v[0]
		}
	case []float64:
		if len(v) == 1 {
			values = v[0]
		}
	case []int64:
		if len(v) == 1 {
			values = v[0]
		}
	}
	return name, values
}

func (cr *cdfReader) getNElems(expectedField uint32) int64 {
	fieldType := cr.read32()
	nElems := cr.readNumber() // FYI: 64-bit in V5
	switch fieldType {
	case 0: // type absent
		assert(nElems == 0,
			fmt.Sprint("corrupted file, elems with absent field, expected: ",
				expectedField, nElems),
			ErrCorruptedFile)

	case expectedField:
		break
	default:
		fail(fmt.Sprint("corrupted file, unexpected field: ", fieldType),
			ErrCorruptedFile)
	}
	return nElems
}

func (cr *cdfReader) getAttrList() *util.OrderedMap {
	nElems := cr.getNElems(fieldAttribute)
	om, err := util.NewOrderedMap(nil, nil)
	thrower.ThrowIfError(err)
	for i := int64(0); i < nElems; i++ {
		name, val := cr.getAttr()
		om.Add(name, val)
	}
	return om
}

func apiType(vType uint32) api.DataType {
	switch vType {
	case typeChar:
		return api.Char
	case typeInt:
		return api.Int
	case typeFloat:
		return api.Float
	case typeDouble:
		return api.Double
	case typeInt64:
		return api.Int64
	}
	fail(fmt.Sprint("unsupported type: ", vType), ErrUnknownType)
	panic("never gets here")
}

type varHeader struct {
	v     *variable
	begin int64
}

func (cr *cdfReader) getVar(ds *Dataset) varHeader {
	name := cr.readName()
	nDims := cr.readNumber()
	assert(nDims >= 0 && nDims <= maxDimensions,
		"too many dimensions",
		ErrTooManyDimensions)
	dimNames := make([]string, nDims)
	for i := range dimNames {
		dimid := cr.readNumber()
		assert(dimid >= 0 && dimid < int64(len(ds.dimensions)),
			fmt.Sprint(name, " dimid: ", dimid, " not found"),
			ErrCorruptedFile)
		dimNames[i] = ds.dimensions[dimid].name
		if i > 0 {
			assert(dimNames[i] != ds.recordDim, "unlimited dimension must be first",
				ErrCorruptedFile)
		}
	}
	attrs := cr.getAttrList()
	vType := apiType(cr.read32())
	_ = cr.readNumber() // vsize, recomputed from the dimensions
	var begin int64
	if cr.version == 1 {
		begin = int64(cr.read32())
	} else {
		var b int64
		util.MustReadBE(cr.bf, &b)
		begin = b
	}
	fill, err := coerceFill(vType, nil)
	thrower.ThrowIfError(err)
	return varHeader{
		v: &variable{
			name:     name,
			vType:    vType,
			dimNames: dimNames,
			attrs:    attrs,
			fill:     fill,
		},
		begin: begin,
	}
}

func readHeader(file io.ReadSeeker) (ds *Dataset, headers []varHeader, err error) {
	defer thrower.RecoverError(&err)
	cr := &cdfReader{bf: bufio.NewReader(file)}

	// magic
	b := make([]byte, 4)
	util.MustReadBE(cr.bf, b)
	if string(b[:3]) != "CDF" {
		logger.Infof("not cdf: %q", string(b[:3]))
		thrower.Throw(ErrNotCDF)
	}
	version := b[3]
	switch version {
	case 1, 2, 5: // classic, 64-bit offset, 64-bit types
		break

	default:
		fail(fmt.Sprint("unknown version: ", version),
			ErrUnknownVersion)
	}
	cr.version = version
	ds = newDataset()
	ds.version = int8(version)

	// numrecs
	numRecs := cr.readNumber()
	assert(numRecs >= 0,
		"streaming not supported",
		ErrNoStreamingDimensions)
	ds.numRecs = numRecs

	// dimlist
	nDims := cr.getNElems(fieldDimension)
	assert(nDims <= maxDimensions,
		"too many dimensions",
		ErrTooManyDimensions)
	for i := int64(0); i < nDims; i++ {
		name := cr.readName()
		dimLength := cr.readNumber()
		if dimLength == 0 {
			assert(ds.recordDim == "", "two unlimited dimensions", ErrCorruptedFile)
			ds.recordDim = name
		}
		ds.dimensions = append(ds.dimensions, dimension{name, dimLength})
	}

	// gatt_list
	ds.globalAttrs = cr.getAttrList()

	// var list
	nVars := cr.getNElems(fieldVariable)
	for i := int64(0); i < nVars; i++ {
		h := cr.getVar(ds)
		if _, has := ds.varIndex[h.v.name]; has {
			thrower.Throw(ErrDuplicateVariable)
		}
		ds.vars = append(ds.vars, h.v)
		ds.varIndex[h.v.name] = h.v
		headers = append(headers, h)
	}
	return ds, headers, nil
}

func readValues(r io.Reader, vType api.DataType, n int64) any {
	var data any
	switch vType {
	case api.Char:
		data = make([]byte, n)
	case api.Int:
		data = make([]int32, n)
	case api.Float:
		data = make([]float32, n)
	case api.Double:
		data = make([]float64, n)
	case api.Int64:
		data = make([]int64, n)
	default:
		thrower.Throw(ErrInternal)
	}
	util.MustReadBE(r, data)
	return data
}

func appendValues(dst, src any) any {
	if dst == nil {
		return src
	}
	switch d := dst.(type) {
	case []byte:
		return append(d, src.([]byte)...)
	case []int32:
		return append(d, src.([]int32)...)
	case []float32:
		return append(d, src.([]float32)...)
	case []float64:
		return append(d, src.([]float64)...)
	case []int64:
		return append(d, src.([]int64)...)
	}
	thrower.Throw(ErrInternal)
	panic("never gets here")
}

func seekTo(f io.Seeker, offset int64) {
	_, err := f.Seek(offset, io.SeekStart)
	thrower.ThrowIfError(err)
}

// readData loads every variable's values.
func readData(file io.ReadSeeker, ds *Dataset, headers []varHeader) (err error) {
	defer thrower.RecoverError(&err)
	recSize := int64(0)
	nRecordVars := 0
	for _, h := range headers {
		if ds.isRecordVar(h.v) {
			recSize += roundInt32(ds.recordLen(h.v) * h.v.vType.Size())
			nRecordVars++
		}
	}
	if nRecordVars == 1 {
		// no padding between records with a lone record variable
		for _, h := range headers {
			if ds.isRecordVar(h.v) {
				recSize = ds.recordLen(h.v) * h.v.vType.Size()
			}
		}
	}
	for _, h := range headers {
		n := ds.recordLen(h.v)
		if !ds.isRecordVar(h.v) {
			seekTo(file, h.begin)
			h.v.data = readValues(bufio.NewReader(file), h.v.vType, n)
			continue
		}
		var data any
		for r := int64(0); r < ds.numRecs; r++ {
			seekTo(file, h.begin+r*recSize)
			data = appendValues(data, readValues(bufio.NewReader(file), h.v.vType, n))
		}
		if data == nil {
			data = readValues(bufio.NewReader(file), h.v.vType, 0)
		}
		h.v.data = data
	}
	return nil
}

// Open loads an existing CDF file. Later calls to Sync or Close write the
// dataset back to the same file.
func Open(fname string) (*Dataset, error) {
	file, err := os.OpenFile(fname, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	ds, err := New(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	ds.file = file
	return ds, nil
}

// New loads a dataset from an opened file. The dataset does not take
// ownership of the file.
func New(file io.ReadSeeker) (*Dataset, error) {
	ds, headers, err := readHeader(file)
	if err != nil {
		return nil, err
	}
	if err := readData(file, ds, headers); err != nil {
		return nil, err
	}
	return ds, nil
}
