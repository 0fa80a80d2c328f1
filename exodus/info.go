package exodus

import "github.com/batchatco/go-native-exodus/netcdf/api"

// PutInfoRecords stores free-form lines of text, at most 80 characters
// each. It may be called once; an empty list stores nothing.
func (f *File) PutInfoRecords(lines []string) error {
	if err := f.check(); err != nil {
		return err
	}
	if f.info {
		return usageErrorf("info records already written")
	}
	if len(lines) == 0 {
		return nil
	}
	table, err := encodeRows(lines, lenLine, maxLineLength)
	if err != nil {
		return err
	}
	err = f.allocating(func() error {
		if err := f.ensureDimension(dimNumInfo, int64(len(lines))); err != nil {
			return err
		}
		spec := varSpec{name: varInfoRecords, dtype: api.Char, dims: []string{dimNumInfo, dimLenLine}}
		if err := f.ensureVariable(spec); err != nil {
			return err
		}
		return f.writeAll(varInfoRecords, table)
	})
	if err != nil {
		return err
	}
	f.info = true
	return nil
}

// InfoRecords returns the stored lines of text.
func (f *File) InfoRecords() ([]string, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if !f.has(varInfoRecords) {
		return []string{}, nil
	}
	data, err := f.c.Read(varInfoRecords)
	if err != nil {
		return nil, storageError("read "+varInfoRecords, err)
	}
	return decodeRows(data.([]byte), lenLine), nil
}
