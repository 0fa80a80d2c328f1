// Package api is the container interface the Exodus schema engine is written
// against: named dimensions, named multi-dimensional variables and
// attributes, as in NetCDF.
package api

import (
	"errors"
	"fmt"
)

// Unlimited is the size passed to CreateDimension for the record dimension.
const Unlimited int64 = 0

var (
	ErrClosed       = errors.New("container is closed")
	ErrExists       = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrShape        = errors.New("shape mismatch")
	ErrTypeMismatch = errors.New("type mismatch")
)

// DataType is an external (on disk) variable type.
type DataType int

const (
	Char   DataType = iota + 1 // single byte characters, Go []byte
	Int                        // 32-bit signed, Go []int32
	Float                      // 32-bit IEEE, Go []float32
	Double                     // 64-bit IEEE, Go []float64
	Int64                      // 64-bit signed, Go []int64, needs CDF-5
)

// Size returns the size in bytes of a single value.
func (t DataType) Size() int64 {
	switch t {
	case Char:
		return 1
	case Int, Float:
		return 4
	case Double, Int64:
		return 8
	}
	return 0
}

// String returns the CDL name of the type.
func (t DataType) String() string {
	switch t {
	case Char:
		return "char"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case Int64:
		return "int64"
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

type AttributeMap interface {
	// Ordered list of keys
	Keys() []string
	// Indexed lookup
	Get(key string) (val any, has bool)
}

// Dimension describes a dimension. Len is the current record count for the
// unlimited dimension.
type Dimension struct {
	Name      string
	Len       int64
	Unlimited bool
}

// VarInfo describes a variable.
type VarInfo struct {
	Name       string
	Type       DataType
	Dimensions []string
	Shape      []int64
	Attributes AttributeMap
}

// Len returns the number of values in the variable.
func (vi VarInfo) Len() int64 {
	n := int64(1)
	for _, s := range vi.Shape {
		n *= s
	}
	return n
}

// Savepoint marks the structure of a container: how many dimensions and
// variables it held.
type Savepoint struct {
	Dimensions int
	Variables  int
}

// Container is a mutable self-describing array store owned by one writer.
//
// Data is passed as flat row-major typed slices matching the variable's
// DataType: []byte for Char, []int32 for Int and so on.
type Container interface {
	// CreateDimension creates a fixed dimension, or the record dimension
	// when size is Unlimited.
	CreateDimension(name string, size int64) error

	// CreateVariable creates a variable over existing dimensions, with the
	// record dimension (if any) first. Every value reads as fill until
	// written.
	CreateVariable(name string, dtype DataType, dims []string, fill any) error

	// WriteSlice writes the hyper-slab starting at begin with the given
	// count along each dimension. Writing past the last record grows the
	// record dimension for all record variables.
	WriteSlice(name string, begin, count []int64, data any) error

	// Read returns all values of the variable.
	Read(name string) (any, error)

	// ReadSlice returns the values of a hyper-slab.
	ReadSlice(name string, begin, count []int64) (any, error)

	// SetAttribute sets an attribute on a variable, or a global attribute
	// when target is "".
	SetAttribute(target, key string, value any) error

	// Attributes returns the attributes of a variable or the global ones.
	Attributes(target string) (AttributeMap, error)

	ListDimensions() []string
	ListVariables() []string
	Dimension(name string) (Dimension, bool)
	Variable(name string) (VarInfo, bool)

	// NumRecords is the length of the record dimension.
	NumRecords() int64

	// SetNumRecords grows the record dimension, filling new records.
	SetNumRecords(n int64) error

	// Savepoint marks the current structure for Rollback.
	Savepoint() Savepoint

	// Rollback removes every dimension and variable created after sp.
	// Values written to the variables that remain are kept.
	Rollback(sp Savepoint) error

	// Sync writes the current state to storage.
	Sync() error

	// Close syncs and releases the container. Further calls fail with
	// ErrClosed.
	Close() error
}
