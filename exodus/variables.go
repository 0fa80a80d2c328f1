package exodus

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// VarKind is the family of a result variable.
type VarKind int

const (
	Global  VarKind = iota // one value per step
	Element                // one value per element of a block per step
	Node                   // one value per node per step
)

func (k VarKind) tag() string {
	switch k {
	case Global:
		return "glo"
	case Element:
		return "elem"
	case Node:
		return "nod"
	}
	panic(fmt.Sprint("invalid variable kind ", int(k)))
}

func (k VarKind) String() string {
	switch k {
	case Global:
		return "global"
	case Element:
		return "element"
	case Node:
		return "node"
	}
	return fmt.Sprintf("VarKind(%d)", int(k))
}

func (k VarKind) valid() bool {
	return k >= Global && k <= Node
}

// count returns the declared number of variables of kind.
func (f *File) count(kind VarKind) (int, error) {
	if !kind.valid() {
		return 0, usageErrorf("invalid variable kind %d", int(kind))
	}
	n, set := f.varCount[kind]
	if !set {
		return 0, usageErrorf("number of %v variables not set", kind)
	}
	return n, nil
}

func (f *File) checkVarIndex(kind VarKind, index int) error {
	n, err := f.count(kind)
	if err != nil {
		return err
	}
	if index < 1 || index > n {
		return rangeErrorf("%v variable %d not in 1..%d", kind, index, n)
	}
	return nil
}

// SetVariableCount declares n variables of kind, once per kind. Global and
// node values get their storage now; element values get it per block on
// first write.
func (f *File) SetVariableCount(kind VarKind, n int) error {
	if err := f.check(); err != nil {
		return err
	}
	if !kind.valid() {
		return usageErrorf("invalid variable kind %d", int(kind))
	}
	if _, set := f.varCount[kind]; set {
		logger.WithFields(logrus.Fields{"kind": kind.String()}).Warn("rejected variable count redefinition")
		return usageErrorf("number of %v variables already set", kind)
	}
	if n < 0 {
		return usageErrorf("negative number of %v variables (%d)", kind, n)
	}
	if n > 0 && kind == Node && f.params.NumNodes == 0 {
		return usageErrorf("node variables in a mesh without nodes")
	}
	if n > 0 {
		if err := f.allocating(func() error { return f.allocateVariables(kind, n) }); err != nil {
			return err
		}
	}
	f.varCount[kind] = n
	return nil
}

// allocateVariables creates the count dimension, the name table and the
// step storage of kind.
func (f *File) allocateVariables(kind VarKind, n int) error {
	countDim := dimNumVar(kind)
	if err := f.ensureDimension(countDim, int64(n)); err != nil {
		return err
	}
	specs := []varSpec{nameTable(varNameVar(kind), countDim)}
	switch kind {
	case Global:
		specs = append(specs, stepVector(varValsGloVar, countDim))
	case Node:
		for i := 1; i <= n; i++ {
			specs = append(specs, stepVector(varValsNodVar(i), dimNumNodes))
		}
	}
	for _, spec := range specs {
		if err := f.ensureVariable(spec); err != nil {
			return err
		}
	}
	return nil
}

// VariableCount returns the declared number of variables of kind.
func (f *File) VariableCount(kind VarKind) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.count(kind)
}

// NameVariable names variable index of kind. Naming an index again
// replaces the name.
func (f *File) NameVariable(kind VarKind, name string, index int) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := f.checkVarIndex(kind, index); err != nil {
		return err
	}
	return f.writeName(varNameVar(kind), index-1, name)
}

// VariableNames returns the names of the variables of kind in index
// order, blank for unnamed ones.
func (f *File) VariableNames(kind VarKind) ([]string, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if _, err := f.count(kind); err != nil {
		return nil, err
	}
	return f.readNames(varNameVar(kind))
}

// VariableIndex returns the index of the variable called name.
func (f *File) VariableIndex(kind VarKind, name string) (int, error) {
	names, err := f.VariableNames(kind)
	if err != nil {
		return 0, err
	}
	if name != "" {
		for i, n := range names {
			if n == name {
				return i + 1, nil
			}
		}
	}
	return 0, usageErrorf("no %v variable named %q", kind, name)
}

// storage returns the per-step variable holding variable index of kind,
// its column and the number of values it takes per step.
func (f *File) storage(kind VarKind, block, index int) (name string, column, width int, err error) {
	if err := f.checkVarIndex(kind, index); err != nil {
		return "", 0, 0, err
	}
	switch kind {
	case Global:
		return varValsGloVar, index - 1, 1, nil
	case Node:
		return varValsNodVar(index), 0, f.params.NumNodes, nil
	}
	b, err := f.definedBlock(block)
	if err != nil {
		return "", 0, 0, err
	}
	return varValsElemVar(index, block), 0, b.NumElems, nil
}

// PutVariableValues writes the values of variable index of kind at step.
// Global variables take one value, node variables one per node and
// element variables one per element of block. block is ignored for
// global and node variables.
func (f *File) PutVariableValues(kind VarKind, block, index, step int, values []float64) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := checkStep(step); err != nil {
		return err
	}
	name, column, width, err := f.storage(kind, block, index)
	if err != nil {
		return err
	}
	if len(values) != width {
		return usageErrorf("%v variable %d takes %d values, got %d", kind, index, width, len(values))
	}
	if kind == Element {
		// storage exists once both the block and the variable are known
		if err := f.ensureVariable(stepVector(name, dimNumElInBlk(block))); err != nil {
			return err
		}
	}
	return f.writeStep(name, step, column, Float64s(values))
}

// PutGlobalVariableValue writes one global variable at step.
func (f *File) PutGlobalVariableValue(name string, step int, value float64) error {
	index, err := f.VariableIndex(Global, name)
	if err != nil {
		return err
	}
	return f.PutVariableValues(Global, 0, index, step, []float64{value})
}

// PutGlobalVariableValues writes every global variable at step.
func (f *File) PutGlobalVariableValues(step int, values []float64) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := checkStep(step); err != nil {
		return err
	}
	n, err := f.count(Global)
	if err != nil {
		return err
	}
	if len(values) != n {
		return usageErrorf("%d global values for %d variables", len(values), n)
	}
	if n == 0 {
		return nil
	}
	return f.writeStep(varValsGloVar, step, 0, Float64s(values))
}

// PutNodeVariableValues writes a node variable at step, one value per
// node.
func (f *File) PutNodeVariableValues(name string, step int, values []float64) error {
	index, err := f.VariableIndex(Node, name)
	if err != nil {
		return err
	}
	return f.PutVariableValues(Node, 0, index, step, values)
}

// PutElementVariableValues writes an element variable of a block at step,
// one value per element of the block.
func (f *File) PutElementVariableValues(block int, name string, step int, values []float64) error {
	index, err := f.VariableIndex(Element, name)
	if err != nil {
		return err
	}
	return f.PutVariableValues(Element, block, index, step, values)
}

// VariableValues returns the values of variable index of kind at step.
func (f *File) VariableValues(kind VarKind, block, index, step int) ([]float64, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	name, column, width, err := f.storage(kind, block, index)
	if err != nil {
		return nil, err
	}
	row, err := f.checkWrittenStep(step)
	if err != nil {
		return nil, err
	}
	if !f.has(name) {
		// element values never written
		return make([]float64, width), nil
	}
	values, err := f.readStep(name, row)
	if err != nil {
		return nil, err
	}
	return values[column : column+width], nil
}

// GlobalVariableValues returns every global variable at step.
func (f *File) GlobalVariableValues(step int) ([]float64, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	n, err := f.count(Global)
	if err != nil {
		return nil, err
	}
	row, err := f.checkWrittenStep(step)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []float64{}, nil
	}
	return f.readStep(varValsGloVar, row)
}

// NodeVariableValues returns a node variable at step.
func (f *File) NodeVariableValues(name string, step int) ([]float64, error) {
	index, err := f.VariableIndex(Node, name)
	if err != nil {
		return nil, err
	}
	return f.VariableValues(Node, 0, index, step)
}

// ElementVariableValues returns an element variable of a block at step.
func (f *File) ElementVariableValues(block int, name string, step int) ([]float64, error) {
	index, err := f.VariableIndex(Element, name)
	if err != nil {
		return nil, err
	}
	return f.VariableValues(Element, block, index, step)
}
