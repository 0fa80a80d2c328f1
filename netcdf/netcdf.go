// Package netcdf opens existing files for inspection.
package netcdf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/cdf"
)

const (
	CDF = 'C'
	HDF = 0x89
)

var (
	ErrUnknown     = errors.New("not a CDF or HDF5 file")
	ErrUnsupported = errors.New("HDF5 (netCDF-4) files are not supported")
)

// Open loads a classic NetCDF file by name. The file is closed before Open
// returns; writing to the result does not change the file.
func Open(fname string) (api.Container, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return New(file)
}

// New is like Open, but takes an opened file instead of a filename. The
// caller keeps ownership of the file.
func New(file io.ReadSeeker) (api.Container, error) {
	kind, err := getKind(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	switch kind {
	case CDF:
		ds, err := cdf.New(file)
		if err != nil {
			return nil, err
		}
		return ds, nil
	case HDF:
		return nil, ErrUnsupported
	}
	return nil, ErrUnknown
}

func getKind(file io.ReadSeeker) (byte, error) {
	var b [1]byte
	n, err := file.Read(b[:])
	if n == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	_, err = file.Seek(0, io.SeekStart)
	return b[0], err
}
