package cdf

import (
	"bufio"
	"io"
	"math"

	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/util"
	"github.com/batchatco/go-thrower"
)

type countedWriter struct {
	w     *bufio.Writer
	count int64
}

func (c *countedWriter) Count() int64 {
	return c.count
}

func (c *countedWriter) Flush() error {
	return c.w.Flush()
}

func (c *countedWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)
	return n, err
}

type savedVar struct {
	v         *variable
	record    bool
	recLen    int64 // values per record, or all values for non-record vars
	vsize     int64
	offset    int64 // file offset of the begin field
	dataBegin int64
}

// cdfWriter serializes a Dataset. The header is written with placeholder
// begin offsets that are patched once the data has been laid out.
type cdfWriter struct {
	file    io.WriteSeeker
	bf      *countedWriter
	ds      *Dataset
	vars    []savedVar
	version int8
}

func newWriter(file io.WriteSeeker, ds *Dataset) *cdfWriter {
	return &cdfWriter{
		file:    file,
		bf:      &countedWriter{bufio.NewWriter(file), 0},
		ds:      ds,
		version: ds.version,
	}
}

func ncType(t api.DataType) int32 {
	switch t {
	case api.Char:
		return typeChar
	case api.Int:
		return typeInt
	case api.Float:
		return typeFloat
	case api.Double:
		return typeDouble
	case api.Int64:
		return typeInt64
	}
	thrower.Throw(ErrUnknownType)
	panic("never gets here")
}

func roundInt64(i int64) int64 {
	return (i + 3) & ^0x3
}

func (cw *cdfWriter) pad() {
	offset := cw.bf.Count()
	extra := roundInt64(offset) - offset
	if extra > 0 {
		zero := [3]byte{}
		util.MustWriteRaw(cw.bf, zero[:extra])
	}
}

func (cw *cdfWriter) writeNumber(n int64) {
	if cw.version < 5 {
		util.MustWriteBE(cw.bf, int32(n))
	} else {
		util.MustWriteBE(cw.bf, n)
	}
}

func (cw *cdfWriter) writeName(name string) {
	// namelength
	cw.writeNumber(int64(len(name)))
	// name
	util.MustWriteRaw(cw.bf, []byte(name))
	cw.pad()
}

func (cw *cdfWriter) writeAttributes(attrs api.AttributeMap) {
	if attrs == nil || len(attrs.Keys()) == 0 {
		util.MustWriteBE(cw.bf, int32(0)) //  attributes: absent
		cw.writeNumber(0)                 // attributes: absent
		return
	}
	util.MustWriteBE(cw.bf, int32(fieldAttribute))
	cw.writeNumber(int64(len(attrs.Keys())))
	for _, k := range attrs.Keys() {
		v, _ := attrs.Get(k)
		cw.writeName(k)
		switch vals := v.(type) {
		case string:
			util.MustWriteBE(cw.bf, int32(typeChar))
			cw.writeNumber(int64(len(vals)))
			util.MustWriteRaw(cw.bf, []byte(vals))
			cw.pad()

		case int32:
			cw.writeAttrValues(typeInt, 1, vals)
		case []int32:
			cw.writeAttrValues(typeInt, len(vals), vals)
		case float32:
			cw.writeAttrValues(typeFloat, 1, vals)
		case []float32:
			cw.writeAttrValues(typeFloat, len(vals), vals)
		case float64:
			cw.writeAttrValues(typeDouble, 1, vals)
		case []float64:
			cw.writeAttrValues(typeDouble, len(vals), vals)
		case int64:
			cw.writeAttrValues(typeInt64, 1, vals)
		case []int64:
			cw.writeAttrValues(typeInt64, len(vals), vals)

		default:
			logger.Warnf("Unknown type %T, %#v=%#v", v, k, v)
			thrower.Throw(ErrUnknownType)
		}
	}
}

// writeAttrValues writes 4 and 8 byte values, which never need padding.
func (cw *cdfWriter) writeAttrValues(ty int32, n int, vals any) {
	util.MustWriteBE(cw.bf, ty)
	cw.writeNumber(int64(n))
	util.MustWriteBE(cw.bf, vals)
}

func (cw *cdfWriter) writeVar(saved *savedVar) {
	v := saved.v
	cw.writeName(v.name)
	cw.writeNumber(int64(len(v.dimNames)))
	for _, name := range v.dimNames {
		cw.writeNumber(int64(cw.ds.dimIndex(name)))
	}
	cw.writeAttributes(v.attrs)
	util.MustWriteBE(cw.bf, ncType(v.vType))

	vsize := roundInt64(saved.recLen * v.vType.Size())
	if vsize > math.MaxUint32-3 && cw.version < 5 {
		// too big for the field; readers recompute it
		vsize = math.MaxUint32
	}
	saved.vsize = vsize
	cw.writeNumber(vsize)
	saved.offset = cw.bf.Count()
	if cw.version == 1 {
		util.MustWriteBE(cw.bf, int32(0)) // patch later
	} else {
		util.MustWriteBE(cw.bf, int64(0)) // patch later
	}
}

// writeValues writes n values of v starting at value index start.
func (cw *cdfWriter) writeValues(v *variable, start, n int64) {
	if v.data == nil {
		err := util.WriteFill(cw.bf, v.fill, n)
		thrower.ThrowIfError(err)
		return
	}
	switch d := v.data.(type) {
	case []byte:
		util.MustWriteRaw(cw.bf, d[start:start+n])
	case []int32:
		util.MustWriteBE(cw.bf, d[start:start+n])
	case []int64:
		util.MustWriteBE(cw.bf, d[start:start+n])
	case []float32:
		util.MustWriteBE(cw.bf, d[start:start+n])
	case []float64:
		util.MustWriteBE(cw.bf, d[start:start+n])
	default:
		thrower.Throw(ErrInternal)
	}
}

func (cw *cdfWriter) writeData() {
	// non-record variables first
	for i := range cw.vars {
		saved := &cw.vars[i]
		if saved.record {
			continue
		}
		saved.dataBegin = cw.bf.Count()
		cw.writeValues(saved.v, 0, saved.recLen)
		cw.pad()
	}
	// then the records, each holding one slab of every record variable
	nRecordVars := 0
	for i := range cw.vars {
		if cw.vars[i].record {
			nRecordVars++
		}
	}
	for r := int64(0); r < cw.ds.numRecs; r++ {
		for i := range cw.vars {
			saved := &cw.vars[i]
			if !saved.record {
				continue
			}
			if r == 0 {
				saved.dataBegin = cw.bf.Count()
			}
			cw.writeValues(saved.v, r*saved.recLen, saved.recLen)
			// a lone record variable is not padded
			if nRecordVars > 1 {
				cw.pad()
			}
		}
	}
	if nRecordVars == 1 {
		cw.pad()
	}
	if cw.ds.numRecs == 0 {
		for i := range cw.vars {
			if cw.vars[i].record {
				cw.vars[i].dataBegin = cw.bf.Count()
			}
		}
	}
}

func (cw *cdfWriter) patchOffsets() {
	err := cw.bf.Flush()
	thrower.ThrowIfError(err)
	end, err := cw.file.Seek(0, io.SeekCurrent)
	thrower.ThrowIfError(err)
	for _, saved := range cw.vars {
		_, err = cw.file.Seek(saved.offset, io.SeekStart)
		thrower.ThrowIfError(err)
		if cw.version == 1 {
			util.MustWriteBE(cw.file, int32(saved.dataBegin))
		} else {
			util.MustWriteBE(cw.file, saved.dataBegin)
		}
	}
	// reset to the end
	_, err = cw.file.Seek(end, io.SeekStart)
	thrower.ThrowIfError(err)
}

func (cw *cdfWriter) writeAll() (err error) {
	defer thrower.RecoverError(&err)
	ds := cw.ds
	util.MustWriteRaw(cw.bf, []byte("CDF"))
	util.MustWriteRaw(cw.bf, []byte{byte(cw.version)})
	cw.writeNumber(ds.numRecs)
	if len(ds.dimensions) > 0 {
		util.MustWriteBE(cw.bf, int32(fieldDimension))
		cw.writeNumber(int64(len(ds.dimensions)))
		for _, d := range ds.dimensions {
			cw.writeName(d.name)
			cw.writeNumber(d.dimLength)
		}
	} else {
		util.MustWriteBE(cw.bf, int32(0)) // dimensions: absent
		cw.writeNumber(0)                 // dimensions: absent
	}
	cw.writeAttributes(ds.globalAttrs)
	cw.vars = make([]savedVar, len(ds.vars))
	for i, v := range ds.vars {
		cw.vars[i] = savedVar{v: v, record: ds.isRecordVar(v), recLen: ds.recordLen(v)}
	}
	if len(cw.vars) > 0 {
		util.MustWriteBE(cw.bf, int32(fieldVariable))
		cw.writeNumber(int64(len(cw.vars)))
		for i := range cw.vars {
			cw.writeVar(&cw.vars[i])
		}
		cw.writeData()
	} else {
		util.MustWriteBE(cw.bf, int32(0)) // variables: absent
		cw.writeNumber(0)                 // variables: absent
	}
	cw.patchOffsets()
	return nil
}
