package exodus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/batchatco/go-native-exodus/internal"
	"github.com/batchatco/go-native-exodus/netcdf/api"
	"github.com/batchatco/go-native-exodus/netcdf/cdf"
)

var logger = internal.NewLogger()

// SetLogLevel sets the logging level and returns the old one. Level 0 only
// logs fatal errors, 3 also logs every dimension and variable allocated.
func SetLogLevel(level int) int {
	old := logger.LogLevel()
	if level < int(internal.LevelMin) {
		level = int(internal.LevelMin)
	}
	if level > int(internal.LevelMax) {
		level = int(internal.LevelMax)
	}
	logger.SetLogLevel(internal.LogLevel(level))
	return int(old)
}

// Params are the mesh cardinalities fixed when the file is created.
type Params struct {
	Title       string
	NumDims     int
	NumNodes    int
	NumElems    int
	NumBlocks   int
	NumNodeSets int
	NumSideSets int
}

func (p Params) validate() error {
	if p.NumDims < 1 || p.NumDims > 3 {
		return fmt.Errorf("number of dimensions %d not in 1..3: %w", p.NumDims, ErrConfig)
	}
	for _, c := range []struct {
		name  string
		count int
	}{
		{"nodes", p.NumNodes},
		{"elements", p.NumElems},
		{"blocks", p.NumBlocks},
		{"node sets", p.NumNodeSets},
		{"side sets", p.NumSideSets},
	} {
		if c.count < 0 {
			return fmt.Errorf("negative number of %s (%d): %w", c.name, c.count, ErrConfig)
		}
	}
	if len(p.Title) > maxLineLength {
		return fmt.Errorf("title is %d characters, at most %d allowed: %w",
			len(p.Title), maxLineLength, ErrConfig)
	}
	return nil
}

// File is an Exodus file open for writing. All bookkeeping for the mesh
// lives here, so any number of files may be open at once.
type File struct {
	c        api.Container
	path     string
	params   Params
	settings settings

	blocks   map[int]BlockInfo
	varCount map[VarKind]int
	sideSets *setTable
	nodeSets *setTable
	info     bool
	closed   bool
}

// Create creates an Exodus file at path, truncating any existing file
// unless WithClobber(false) is given. The layout for p is written to disk
// before Create returns.
func Create(path string, p Params, opts ...Option) (*File, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	create := cdf.Create
	if !s.clobber {
		create = cdf.CreateNew
	}
	ds, err := create(path)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrConfig, err)
	}
	if err != nil {
		return nil, storageError("create "+path, err)
	}
	f, err := newFile(ds, p, s)
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		ds.Close()
		os.Remove(path)
		return nil, err
	}
	f.path = path
	return f, nil
}

// New lays out an Exodus mesh in an empty container.
func New(c api.Container, p Params, opts ...Option) (*File, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(c.ListDimensions()) > 0 || len(c.ListVariables()) > 0 {
		return nil, fmt.Errorf("container is not empty: %w", ErrUsage)
	}
	return newFile(c, p, s)
}

func newFile(c api.Container, p Params, s settings) (*File, error) {
	f := &File{
		c:        c,
		params:   p,
		settings: s,
		blocks:   make(map[int]BlockInfo),
		varCount: make(map[VarKind]int),
		sideSets: newSetTable(sideSetLayout, p.NumSideSets),
		nodeSets: newSetTable(nodeSetLayout, p.NumNodeSets),
	}
	if err := f.layout(); err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"title": p.Title,
		"nodes": p.NumNodes,
		"elems": p.NumElems,
	}).Info("initialized mesh")
	return f, nil
}

// layout creates the base dimensions, variables and attributes.
func (f *File) layout() error {
	p := f.params
	globals := []attribute{
		{"api_version", formatVersion},
		{"version", formatVersion},
		{"floating_point_word_size", wordSize},
		{"file_size", int32(1)},
		{"maximum_name_length", int32(f.settings.maxNameLength)},
		{"int64_status", int32(0)},
		{"title", p.Title},
	}
	for _, a := range globals {
		if err := f.c.SetAttribute("", a.key, a.value); err != nil {
			return storageError("set attribute "+a.key, err)
		}
	}

	dims := []struct {
		name string
		size int
	}{
		{dimNumDim, p.NumDims},
		{dimNumNodes, p.NumNodes},
		{dimNumElem, p.NumElems},
		{dimNumElBlk, p.NumBlocks},
		{dimNumNodeSets, p.NumNodeSets},
		{dimNumSideSets, p.NumSideSets},
		{dimLenName, lenName},
		{dimLenString, lenString},
		{dimLenLine, lenLine},
		{dimFour, four},
	}
	for _, d := range dims {
		// a zero length would read back as a second record dimension
		if d.size == 0 {
			continue
		}
		if err := f.ensureDimension(d.name, int64(d.size)); err != nil {
			return err
		}
	}
	if err := f.c.CreateDimension(dimTimeStep, api.Unlimited); err != nil {
		return storageError("create dimension "+dimTimeStep, err)
	}

	specs := []varSpec{{name: varTimeWhole, dtype: api.Double, dims: []string{dimTimeStep}}}
	if p.NumBlocks > 0 {
		specs = append(specs,
			statusTable(varEbStatus, dimNumElBlk),
			propTable(varEbProp1, dimNumElBlk))
	}
	specs = append(specs, f.nodeSets.baseVars()...)
	specs = append(specs, f.sideSets.baseVars()...)
	if p.NumNodes > 0 {
		for _, name := range coordVars[:p.NumDims] {
			specs = append(specs, doubleVector(name, dimNumNodes))
		}
	}
	if p.NumBlocks > 0 {
		specs = append(specs, nameTable(varEbNames, dimNumElBlk))
	}
	specs = append(specs, f.nodeSets.nameVars()...)
	specs = append(specs, f.sideSets.nameVars()...)
	specs = append(specs, nameTable(varCoorNames, dimNumDim))
	for _, spec := range specs {
		if err := f.ensureVariable(spec); err != nil {
			return err
		}
	}

	// slot 1 of the time series always exists
	err := f.c.WriteSlice(varTimeWhole, []int64{0}, []int64{1}, []float64{0})
	return storageError("write "+varTimeWhole, err)
}

func (f *File) check() error {
	if f.closed {
		return ErrState
	}
	return nil
}

// Params returns the cardinalities the file was created with.
func (f *File) Params() Params {
	return f.params
}

// Path returns the file name, empty for a File made with New.
func (f *File) Path() string {
	return f.path
}

// Sync writes the current state of the mesh to storage.
func (f *File) Sync() error {
	if err := f.check(); err != nil {
		return err
	}
	return storageError("sync", f.c.Sync())
}

// Close writes the mesh and releases the file. Every later call fails with
// ErrState.
func (f *File) Close() error {
	if err := f.check(); err != nil {
		return err
	}
	f.closed = true
	err := f.c.Close()
	if err != nil && !errors.Is(err, api.ErrClosed) {
		return storageError("close", err)
	}
	return nil
}
