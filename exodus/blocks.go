package exodus

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// BlockInfo describes a defined element block. A block's ID is its
// ordinal.
type BlockInfo struct {
	Ordinal      int
	ID           int32
	ElemType     string
	NumElems     int
	NodesPerElem int
	AttrsPerElem int
}

func (f *File) checkBlockOrdinal(ordinal int) error {
	if ordinal < 1 || ordinal > f.params.NumBlocks {
		return rangeErrorf("block %d not in 1..%d", ordinal, f.params.NumBlocks)
	}
	return nil
}

// definedBlock returns the block, which must have been defined.
func (f *File) definedBlock(ordinal int) (BlockInfo, error) {
	if err := f.checkBlockOrdinal(ordinal); err != nil {
		return BlockInfo{}, err
	}
	b, has := f.blocks[ordinal]
	if !has {
		return BlockInfo{}, usageErrorf("block %d is not defined", ordinal)
	}
	return b, nil
}

// DefineBlock defines element block ordinal: its ID and status first, then
// its dimensions, then its connectivity table. Defining a block twice is a
// usage error.
func (f *File) DefineBlock(ordinal int, elemType string, numElems, nodesPerElem, attrsPerElem int) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := f.checkBlockOrdinal(ordinal); err != nil {
		return err
	}
	if _, has := f.blocks[ordinal]; has || f.has(varConnect(ordinal)) {
		logger.WithFields(logrus.Fields{"block": ordinal}).Warn("rejected block redefinition")
		return usageErrorf("block %d is already defined", ordinal)
	}
	switch {
	case elemType == "":
		return usageErrorf("block %d has no element type", ordinal)
	case numElems < 1 || nodesPerElem < 1:
		return usageErrorf("block %d needs at least one element and node, got %d and %d",
			ordinal, numElems, nodesPerElem)
	case numElems > f.params.NumElems:
		return usageErrorf("block %d has %d elements, the mesh has %d",
			ordinal, numElems, f.params.NumElems)
	case attrsPerElem < 0:
		return usageErrorf("block %d has %d attributes", ordinal, attrsPerElem)
	}

	row := ordinal - 1
	if err := f.putEntry(varEbProp1, varEbStatus, row, int32(ordinal), 1); err != nil {
		return err
	}
	b := BlockInfo{
		Ordinal:      ordinal,
		ID:           int32(ordinal),
		ElemType:     elemType,
		NumElems:     numElems,
		NodesPerElem: nodesPerElem,
		AttrsPerElem: attrsPerElem,
	}
	if err := f.allocating(func() error { return f.allocateBlock(b) }); err != nil {
		if rerr := f.putEntry(varEbProp1, varEbStatus, row, -1, 0); rerr != nil {
			logger.Error(rerr)
		}
		return err
	}
	f.blocks[ordinal] = b
	logger.WithFields(logrus.Fields{"block": ordinal, "elem_type": elemType}).Info("defined block")
	return nil
}

func (f *File) allocateBlock(b BlockInfo) error {
	elDim, nodDim := dimNumElInBlk(b.Ordinal), dimNumNodPerEl(b.Ordinal)
	if err := f.ensureDimension(elDim, int64(b.NumElems)); err != nil {
		return err
	}
	if err := f.ensureDimension(nodDim, int64(b.NodesPerElem)); err != nil {
		return err
	}
	err := f.ensureVariable(varSpec{
		name:  varConnect(b.Ordinal),
		dtype: api.Int,
		dims:  []string{elDim, nodDim},
		attrs: []attribute{{attrElemType, b.ElemType}},
	})
	if err != nil || b.AttrsPerElem == 0 {
		return err
	}
	attDim := dimNumAttInBlk(b.Ordinal)
	if err := f.ensureDimension(attDim, int64(b.AttrsPerElem)); err != nil {
		return err
	}
	return f.ensureVariable(varSpec{
		name:  varAttrib(b.Ordinal),
		dtype: api.Double,
		dims:  []string{elDim, attDim},
	})
}

// putEntry writes an ID and status into row of a property/status pair.
func (f *File) putEntry(prop, status string, row int, id, stat int32) error {
	if err := f.writeAt(prop, row, []int32{id}); err != nil {
		return err
	}
	return f.writeAt(status, row, []int32{stat})
}

// WriteConnectivity writes the node indices of a block, row major: the
// nodes of the first element, then the second and so on.
func (f *File) WriteConnectivity(ordinal int, conn []int32) error {
	if err := f.check(); err != nil {
		return err
	}
	b, err := f.definedBlock(ordinal)
	if err != nil {
		return err
	}
	if want := b.NumElems * b.NodesPerElem; len(conn) != want {
		return usageErrorf("block %d connectivity has %d entries, needs %d", ordinal, len(conn), want)
	}
	return f.writeAll(varConnect(ordinal), append([]int32{}, conn...))
}

// Connectivity returns the node indices of a block, row major.
func (f *File) Connectivity(ordinal int) ([]int32, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if _, err := f.definedBlock(ordinal); err != nil {
		return nil, err
	}
	return f.readInt32s(varConnect(ordinal))
}

// PutBlockAttributes writes the element attributes of a block, row major.
func (f *File) PutBlockAttributes(ordinal int, attrs []float64) error {
	if err := f.check(); err != nil {
		return err
	}
	b, err := f.definedBlock(ordinal)
	if err != nil {
		return err
	}
	if b.AttrsPerElem == 0 {
		return usageErrorf("block %d has no attributes", ordinal)
	}
	if want := b.NumElems * b.AttrsPerElem; len(attrs) != want {
		return usageErrorf("block %d attributes have %d values, need %d", ordinal, len(attrs), want)
	}
	return f.writeAll(varAttrib(ordinal), Float64s(attrs))
}

// BlockAttributes returns the element attributes of a block, row major.
func (f *File) BlockAttributes(ordinal int) ([]float64, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	b, err := f.definedBlock(ordinal)
	if err != nil {
		return nil, err
	}
	if b.AttrsPerElem == 0 {
		return []float64{}, nil
	}
	return f.readFloat64s(varAttrib(ordinal))
}

// NameBlock names a defined block.
func (f *File) NameBlock(ordinal int, name string) error {
	if err := f.check(); err != nil {
		return err
	}
	if _, err := f.definedBlock(ordinal); err != nil {
		return err
	}
	return f.writeName(varEbNames, ordinal-1, name)
}

// BlockNames returns the names of all blocks in ordinal order, blank for
// unnamed ones.
func (f *File) BlockNames() ([]string, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.readNames(varEbNames)
}

// Block returns the description of a defined block.
func (f *File) Block(ordinal int) (BlockInfo, error) {
	if err := f.check(); err != nil {
		return BlockInfo{}, err
	}
	return f.definedBlock(ordinal)
}

// Blocks returns the defined blocks in ordinal order.
func (f *File) Blocks() []BlockInfo {
	blocks := make([]BlockInfo, 0, len(f.blocks))
	for _, b := range f.blocks {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Ordinal < blocks[j].Ordinal })
	return blocks
}
