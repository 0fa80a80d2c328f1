package exodus

import (
	"math"

	"github.com/sirupsen/logrus"
)

// setLayout names the storage of one family of sets.
type setLayout struct {
	kind     string
	countDim string
	status   string
	prop     string
	names    string
	// entryDim sizes the entry lists of a set
	entryDim  func(int) string
	entryVars []func(int) string
	// dfDim sizes the distribution factors; nil when they share entryDim
	dfDim func(int) string
	dfVar func(int) string
}

var sideSetLayout = setLayout{
	kind:      "side set",
	countDim:  dimNumSideSets,
	status:    varSsStatus,
	prop:      varSsProp1,
	names:     varSsNames,
	entryDim:  dimNumSideSS,
	entryVars: []func(int) string{varElemSS, varSideSS},
	dfDim:     dimNumDfSS,
	dfVar:     varDistFactSS,
}

var nodeSetLayout = setLayout{
	kind:      "node set",
	countDim:  dimNumNodeSets,
	status:    varNsStatus,
	prop:      varNsProp1,
	names:     varNsNames,
	entryDim:  dimNumNodNS,
	entryVars: []func(int) string{varNodeNS},
	dfVar:     varDistFactNS,
}

// SetInfo describes a defined side or node set.
type SetInfo struct {
	Ordinal        int
	ID             int32
	NumEntries     int
	NumDistFactors int
}

// setTable is the bookkeeping of one family of sets.
type setTable struct {
	layout setLayout
	max    int
	ids    idMap
	sets   map[int]SetInfo
}

func newSetTable(layout setLayout, max int) *setTable {
	return &setTable{layout: layout, max: max, ids: newIDMap(), sets: make(map[int]SetInfo)}
}

func (t *setTable) baseVars() []varSpec {
	if t.max == 0 {
		return nil
	}
	return []varSpec{
		statusTable(t.layout.status, t.layout.countDim),
		propTable(t.layout.prop, t.layout.countDim),
	}
}

func (t *setTable) nameVars() []varSpec {
	if t.max == 0 {
		return nil
	}
	return []varSpec{nameTable(t.layout.names, t.layout.countDim)}
}

func checkID(kind string, id int) error {
	if id < 1 || id > math.MaxInt32 {
		return rangeErrorf("%s ID %d not in 1..%d", kind, id, math.MaxInt32)
	}
	return nil
}

// resolve returns the set with the given ID.
func (t *setTable) resolve(id int) (SetInfo, error) {
	if err := checkID(t.layout.kind, id); err != nil {
		return SetInfo{}, err
	}
	ordinal, has := t.ids.ordinal(int32(id))
	if !has {
		return SetInfo{}, usageErrorf("no %s with ID %d", t.layout.kind, id)
	}
	return t.sets[ordinal], nil
}

func (f *File) defineSet(t *setTable, ordinal, id, numEntries, numDF int) error {
	if err := f.check(); err != nil {
		return err
	}
	kind := t.layout.kind
	if ordinal < 1 || ordinal > t.max {
		return rangeErrorf("%s %d not in 1..%d", kind, ordinal, t.max)
	}
	if err := checkID(kind, id); err != nil {
		return err
	}
	if _, has := t.sets[ordinal]; has {
		logger.WithFields(logrus.Fields{"set": ordinal, "kind": kind}).Warn("rejected set redefinition")
		return usageErrorf("%s %d is already defined", kind, ordinal)
	}
	if _, has := t.ids.ordinal(int32(id)); has {
		return usageErrorf("%s ID %d is already used", kind, id)
	}
	if numEntries < 1 {
		return usageErrorf("%s %d needs at least one entry, got %d", kind, id, numEntries)
	}
	if numDF < 0 || (t.layout.dfDim == nil && numDF != 0 && numDF != numEntries) {
		return usageErrorf("%s %d cannot have %d distribution factors", kind, id, numDF)
	}

	row := ordinal - 1
	if err := f.putEntry(t.layout.prop, t.layout.status, row, int32(id), 1); err != nil {
		return err
	}
	t.ids.add(int32(id), ordinal)
	s := SetInfo{Ordinal: ordinal, ID: int32(id), NumEntries: numEntries, NumDistFactors: numDF}
	if err := f.allocating(func() error { return f.allocateSet(t, s) }); err != nil {
		t.ids.remove(int32(id))
		if rerr := f.putEntry(t.layout.prop, t.layout.status, row, -1, 0); rerr != nil {
			logger.Error(rerr)
		}
		return err
	}
	t.sets[ordinal] = s
	logger.WithFields(logrus.Fields{"set": ordinal, "id": id, "kind": kind}).Info("defined set")
	return nil
}

func (f *File) allocateSet(t *setTable, s SetInfo) error {
	entryDim := t.layout.entryDim(s.Ordinal)
	if err := f.ensureDimension(entryDim, int64(s.NumEntries)); err != nil {
		return err
	}
	for _, name := range t.layout.entryVars {
		if err := f.ensureVariable(intVector(name(s.Ordinal), entryDim)); err != nil {
			return err
		}
	}
	if s.NumDistFactors == 0 {
		return nil
	}
	dfDim := entryDim
	if t.layout.dfDim != nil {
		dfDim = t.layout.dfDim(s.Ordinal)
		if err := f.ensureDimension(dfDim, int64(s.NumDistFactors)); err != nil {
			return err
		}
	}
	return f.ensureVariable(doubleVector(t.layout.dfVar(s.Ordinal), dfDim))
}

func (f *File) addSet(t *setTable, id, numEntries, numDF int) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	ordinal, ok := t.ids.nextFree(t.max)
	if !ok {
		return 0, usageErrorf("all %d %ss are defined", t.max, t.layout.kind)
	}
	if err := f.defineSet(t, ordinal, id, numEntries, numDF); err != nil {
		return 0, err
	}
	return ordinal, nil
}

// putSetEntries overwrites the entry lists of a set in place.
func (f *File) putSetEntries(t *setTable, id int, lists ...[]int32) error {
	if err := f.check(); err != nil {
		return err
	}
	s, err := t.resolve(id)
	if err != nil {
		return err
	}
	for _, list := range lists {
		if len(list) != s.NumEntries {
			return usageErrorf("%s %d has %d entries, got %d", t.layout.kind, id, s.NumEntries, len(list))
		}
	}
	for i, list := range lists {
		if err := f.writeAll(t.layout.entryVars[i](s.Ordinal), append([]int32{}, list...)); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) setEntries(t *setTable, id int) ([][]int32, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	s, err := t.resolve(id)
	if err != nil {
		return nil, err
	}
	lists := make([][]int32, len(t.layout.entryVars))
	for i, name := range t.layout.entryVars {
		if lists[i], err = f.readInt32s(name(s.Ordinal)); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

func (f *File) putSetDistFact(t *setTable, id int, df []float64) error {
	if err := f.check(); err != nil {
		return err
	}
	s, err := t.resolve(id)
	if err != nil {
		return err
	}
	if s.NumDistFactors == 0 {
		return usageErrorf("%s %d has no distribution factors", t.layout.kind, id)
	}
	if len(df) != s.NumDistFactors {
		return usageErrorf("%s %d has %d distribution factors, got %d",
			t.layout.kind, id, s.NumDistFactors, len(df))
	}
	return f.writeAll(t.layout.dfVar(s.Ordinal), Float64s(df))
}

func (f *File) setDistFact(t *setTable, id int) ([]float64, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	s, err := t.resolve(id)
	if err != nil {
		return nil, err
	}
	if s.NumDistFactors == 0 {
		return []float64{}, nil
	}
	return f.readFloat64s(t.layout.dfVar(s.Ordinal))
}

func (f *File) nameSet(t *setTable, id int, name string) error {
	if err := f.check(); err != nil {
		return err
	}
	s, err := t.resolve(id)
	if err != nil {
		return err
	}
	return f.writeName(t.layout.names, s.Ordinal-1, name)
}

func (f *File) setNames(t *setTable) ([]string, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.readNames(t.layout.names)
}

func (f *File) setInfo(t *setTable, id int) (SetInfo, error) {
	if err := f.check(); err != nil {
		return SetInfo{}, err
	}
	return t.resolve(id)
}

// DefineSideSet defines side set ordinal with the given ID, number of
// sides and number of distribution factors.
func (f *File) DefineSideSet(ordinal, id, numSides, numDistFactors int) error {
	return f.defineSet(f.sideSets, ordinal, id, numSides, numDistFactors)
}

// AddSideSet defines the side set with the given ID in the first free slot
// and returns its ordinal.
func (f *File) AddSideSet(id, numSides, numDistFactors int) (int, error) {
	return f.addSet(f.sideSets, id, numSides, numDistFactors)
}

// PutSideSet writes the element and local side of every side of a set.
func (f *File) PutSideSet(id int, elems, sides []int32) error {
	return f.putSetEntries(f.sideSets, id, elems, sides)
}

// SideSet returns the elements and local sides of a set.
func (f *File) SideSet(id int) (elems, sides []int32, err error) {
	lists, err := f.setEntries(f.sideSets, id)
	if err != nil {
		return nil, nil, err
	}
	return lists[0], lists[1], nil
}

// PutSideSetDistFact writes the distribution factors of a side set.
func (f *File) PutSideSetDistFact(id int, df []float64) error {
	return f.putSetDistFact(f.sideSets, id, df)
}

// SideSetDistFact returns the distribution factors of a side set.
func (f *File) SideSetDistFact(id int) ([]float64, error) {
	return f.setDistFact(f.sideSets, id)
}

// NameSideSet names the side set with the given ID.
func (f *File) NameSideSet(id int, name string) error {
	return f.nameSet(f.sideSets, id, name)
}

// SideSetNames returns the side set names in ordinal order.
func (f *File) SideSetNames() ([]string, error) {
	return f.setNames(f.sideSets)
}

// SideSetInfo describes the side set with the given ID.
func (f *File) SideSetInfo(id int) (SetInfo, error) {
	return f.setInfo(f.sideSets, id)
}

// SideSetIDs returns the IDs of the defined side sets in ordinal order.
func (f *File) SideSetIDs() []int32 {
	return f.sideSets.ids.ids()
}

// DefineNodeSet defines node set ordinal. A node set has no distribution
// factors or one per node.
func (f *File) DefineNodeSet(ordinal, id, numNodes, numDistFactors int) error {
	return f.defineSet(f.nodeSets, ordinal, id, numNodes, numDistFactors)
}

// AddNodeSet defines the node set with the given ID in the first free slot
// and returns its ordinal.
func (f *File) AddNodeSet(id, numNodes, numDistFactors int) (int, error) {
	return f.addSet(f.nodeSets, id, numNodes, numDistFactors)
}

// PutNodeSet writes the nodes of a node set.
func (f *File) PutNodeSet(id int, nodes []int32) error {
	return f.putSetEntries(f.nodeSets, id, nodes)
}

// NodeSet returns the nodes of a node set.
func (f *File) NodeSet(id int) ([]int32, error) {
	lists, err := f.setEntries(f.nodeSets, id)
	if err != nil {
		return nil, err
	}
	return lists[0], nil
}

// PutNodeSetDistFact writes the distribution factors of a node set.
func (f *File) PutNodeSetDistFact(id int, df []float64) error {
	return f.putSetDistFact(f.nodeSets, id, df)
}

// NodeSetDistFact returns the distribution factors of a node set.
func (f *File) NodeSetDistFact(id int) ([]float64, error) {
	return f.setDistFact(f.nodeSets, id)
}

// NameNodeSet names the node set with the given ID.
func (f *File) NameNodeSet(id int, name string) error {
	return f.nameSet(f.nodeSets, id, name)
}

// NodeSetNames returns the node set names in ordinal order.
func (f *File) NodeSetNames() ([]string, error) {
	return f.setNames(f.nodeSets)
}

// NodeSetInfo describes the node set with the given ID.
func (f *File) NodeSetInfo(id int) (SetInfo, error) {
	return f.setInfo(f.nodeSets, id)
}

// NodeSetIDs returns the IDs of the defined node sets in ordinal order.
func (f *File) NodeSetIDs() []int32 {
	return f.nodeSets.ids.ids()
}
