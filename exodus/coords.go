package exodus

// PutCoords writes the nodal coordinates. Only the first NumDims axes are
// used; the others may be nil. Each used axis must hold NumNodes values.
func (f *File) PutCoords(x, y, z []float64) error {
	if err := f.check(); err != nil {
		return err
	}
	axes := [][]float64{x, y, z}[:f.params.NumDims]
	for i, axis := range axes {
		if len(axis) != f.params.NumNodes {
			return usageErrorf("%s has %d values for %d nodes", coordVars[i], len(axis), f.params.NumNodes)
		}
	}
	if f.params.NumNodes == 0 {
		return nil
	}
	for i, axis := range axes {
		if err := f.writeAll(coordVars[i], Float64s(axis)); err != nil {
			return err
		}
	}
	return nil
}

// Coords returns the nodal coordinates. Axes beyond NumDims are nil.
func (f *File) Coords() (x, y, z []float64, err error) {
	if err := f.check(); err != nil {
		return nil, nil, nil, err
	}
	axes := make([][]float64, 3)
	for i := 0; i < f.params.NumDims; i++ {
		if f.params.NumNodes == 0 {
			axes[i] = []float64{}
			continue
		}
		axes[i], err = f.readFloat64s(coordVars[i])
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return axes[0], axes[1], axes[2], nil
}

// PutCoordNames names the coordinate axes, one name per dimension.
func (f *File) PutCoordNames(names []string) error {
	if err := f.check(); err != nil {
		return err
	}
	if len(names) != f.params.NumDims {
		return usageErrorf("%d coordinate names for %d dimensions", len(names), f.params.NumDims)
	}
	table, err := encodeRows(names, lenName, f.settings.maxNameLength)
	if err != nil {
		return err
	}
	return f.writeAll(varCoorNames, table)
}

// CoordNames returns the coordinate axis names.
func (f *File) CoordNames() ([]string, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.readNames(varCoorNames)
}
