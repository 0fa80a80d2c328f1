package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/batchatco/go-native-exodus/exodus"
)

// Mesh is the description a file is built from.
type Mesh struct {
	Title      string    `toml:"title" yaml:"title"`
	NumDims    int       `toml:"num_dims" yaml:"num_dims"`
	Coords     Coords    `toml:"coords" yaml:"coords"`
	CoordNames []string  `toml:"coord_names" yaml:"coord_names"`
	Info       []string  `toml:"info" yaml:"info"`
	Blocks     []Block   `toml:"blocks" yaml:"blocks"`
	NodeSets   []NodeSet `toml:"node_sets" yaml:"node_sets"`
	SideSets   []SideSet `toml:"side_sets" yaml:"side_sets"`
	Variables  Variables `toml:"variables" yaml:"variables"`
	Steps      []Step    `toml:"steps" yaml:"steps"`
}

type Coords struct {
	X []float64 `toml:"x" yaml:"x"`
	Y []float64 `toml:"y" yaml:"y"`
	Z []float64 `toml:"z" yaml:"z"`
}

type Block struct {
	Name         string    `toml:"name" yaml:"name"`
	ElemType     string    `toml:"elem_type" yaml:"elem_type"`
	NodesPerElem int       `toml:"nodes_per_elem" yaml:"nodes_per_elem"`
	Connectivity []int64   `toml:"connectivity" yaml:"connectivity"`
	AttrsPerElem int       `toml:"attrs_per_elem" yaml:"attrs_per_elem"`
	Attributes   []float64 `toml:"attributes" yaml:"attributes"`
}

type NodeSet struct {
	ID          int       `toml:"id" yaml:"id"`
	Name        string    `toml:"name" yaml:"name"`
	Nodes       []int64   `toml:"nodes" yaml:"nodes"`
	DistFactors []float64 `toml:"dist_factors" yaml:"dist_factors"`
}

type SideSet struct {
	ID          int       `toml:"id" yaml:"id"`
	Name        string    `toml:"name" yaml:"name"`
	Elems       []int64   `toml:"elems" yaml:"elems"`
	Sides       []int64   `toml:"sides" yaml:"sides"`
	DistFactors []float64 `toml:"dist_factors" yaml:"dist_factors"`
}

// Variables lists result variable names by kind.
type Variables struct {
	Global  []string `toml:"global" yaml:"global"`
	Element []string `toml:"element" yaml:"element"`
	Node    []string `toml:"node" yaml:"node"`
}

type Step struct {
	Time    float64              `toml:"time" yaml:"time"`
	Global  map[string]float64   `toml:"global" yaml:"global"`
	Node    map[string][]float64 `toml:"node" yaml:"node"`
	Element []ElementValues      `toml:"element" yaml:"element"`
}

type ElementValues struct {
	Block    int       `toml:"block" yaml:"block"`
	Variable string    `toml:"variable" yaml:"variable"`
	Values   []float64 `toml:"values" yaml:"values"`
}

// LoadMesh reads a mesh description, TOML or YAML by file extension.
func LoadMesh(path string) (*Mesh, error) {
	var m Mesh
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &m)
		if err != nil {
			return nil, fmt.Errorf("exodusgen: reading %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("exodusgen: %s: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("exodusgen: reading %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("exodusgen: %s: unknown mesh format %q", path, filepath.Ext(path))
	}
	return &m, nil
}

// Params derives the mesh cardinalities from the description.
func (m *Mesh) Params() (exodus.Params, error) {
	dims := m.NumDims
	if dims == 0 {
		dims = 1
		if len(m.Coords.Z) > 0 {
			dims = 3
		} else if len(m.Coords.Y) > 0 {
			dims = 2
		}
	}
	p := exodus.Params{
		Title:       m.Title,
		NumDims:     dims,
		NumNodes:    len(m.Coords.X),
		NumBlocks:   len(m.Blocks),
		NumNodeSets: len(m.NodeSets),
		NumSideSets: len(m.SideSets),
	}
	for i, b := range m.Blocks {
		n, err := b.numElems()
		if err != nil {
			return p, fmt.Errorf("exodusgen: block %d: %w", i+1, err)
		}
		p.NumElems += n
	}
	return p, nil
}

func (b Block) numElems() (int, error) {
	if b.NodesPerElem < 1 {
		return 0, fmt.Errorf("nodes_per_elem is %d", b.NodesPerElem)
	}
	if len(b.Connectivity)%b.NodesPerElem != 0 {
		return 0, fmt.Errorf("%d connectivity entries for %d nodes per element",
			len(b.Connectivity), b.NodesPerElem)
	}
	return len(b.Connectivity) / b.NodesPerElem, nil
}

// Build writes the described mesh to path. On failure nothing is left at
// path.
func (m *Mesh) Build(path string, opts ...exodus.Option) (err error) {
	p, err := m.Params()
	if err != nil {
		return err
	}
	f, err := exodus.Create(path, p, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return m.Write(f)
}

// Write describes the mesh through the calls of f, in dependency order.
func (m *Mesh) Write(f *exodus.File) error {
	if err := f.PutInfoRecords(m.Info); err != nil {
		return err
	}
	if err := f.PutCoords(m.Coords.X, m.Coords.Y, m.Coords.Z); err != nil {
		return err
	}
	if len(m.CoordNames) > 0 {
		if err := f.PutCoordNames(m.CoordNames); err != nil {
			return err
		}
	}
	if err := m.writeBlocks(f); err != nil {
		return err
	}
	if err := m.writeSets(f); err != nil {
		return err
	}
	if err := m.declareVariables(f); err != nil {
		return err
	}
	for i, s := range m.Steps {
		if err := writeStep(f, i+1, s); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (m *Mesh) writeBlocks(f *exodus.File) error {
	for i, b := range m.Blocks {
		ordinal := i + 1
		n, _ := b.numElems()
		if err := f.DefineBlock(ordinal, b.ElemType, n, b.NodesPerElem, b.AttrsPerElem); err != nil {
			return err
		}
		conn, err := exodus.Int32s(b.Connectivity)
		if err != nil {
			return fmt.Errorf("block %d: %w", ordinal, err)
		}
		if err := f.WriteConnectivity(ordinal, conn); err != nil {
			return err
		}
		if b.AttrsPerElem > 0 {
			if err := f.PutBlockAttributes(ordinal, b.Attributes); err != nil {
				return err
			}
		}
		if b.Name != "" {
			if err := f.NameBlock(ordinal, b.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Mesh) writeSets(f *exodus.File) error {
	for _, s := range m.NodeSets {
		if _, err := f.AddNodeSet(s.ID, len(s.Nodes), len(s.DistFactors)); err != nil {
			return err
		}
		nodes, err := exodus.Int32s(s.Nodes)
		if err != nil {
			return fmt.Errorf("node set %d: %w", s.ID, err)
		}
		if err := f.PutNodeSet(s.ID, nodes); err != nil {
			return err
		}
		if len(s.DistFactors) > 0 {
			if err := f.PutNodeSetDistFact(s.ID, s.DistFactors); err != nil {
				return err
			}
		}
		if s.Name != "" {
			if err := f.NameNodeSet(s.ID, s.Name); err != nil {
				return err
			}
		}
	}
	for _, s := range m.SideSets {
		if _, err := f.AddSideSet(s.ID, len(s.Elems), len(s.DistFactors)); err != nil {
			return err
		}
		elems, err := exodus.Int32s(s.Elems)
		if err != nil {
			return fmt.Errorf("side set %d: %w", s.ID, err)
		}
		sides, err := exodus.Int32s(s.Sides)
		if err != nil {
			return fmt.Errorf("side set %d: %w", s.ID, err)
		}
		if err := f.PutSideSet(s.ID, elems, sides); err != nil {
			return err
		}
		if len(s.DistFactors) > 0 {
			if err := f.PutSideSetDistFact(s.ID, s.DistFactors); err != nil {
				return err
			}
		}
		if s.Name != "" {
			if err := f.NameSideSet(s.ID, s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Mesh) declareVariables(f *exodus.File) error {
	for _, kv := range []struct {
		kind  exodus.VarKind
		names []string
	}{
		{exodus.Global, m.Variables.Global},
		{exodus.Element, m.Variables.Element},
		{exodus.Node, m.Variables.Node},
	} {
		if err := f.SetVariableCount(kv.kind, len(kv.names)); err != nil {
			return err
		}
		for i, name := range kv.names {
			if err := f.NameVariable(kv.kind, name, i+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeStep(f *exodus.File, step int, s Step) error {
	if err := f.PutTime(step, s.Time); err != nil {
		return err
	}
	for name, v := range s.Global {
		if err := f.PutGlobalVariableValue(name, step, v); err != nil {
			return err
		}
	}
	for name, vs := range s.Node {
		if err := f.PutNodeVariableValues(name, step, vs); err != nil {
			return err
		}
	}
	for _, ev := range s.Element {
		if err := f.PutElementVariableValues(ev.Block, ev.Variable, step, ev.Values); err != nil {
			return err
		}
	}
	return nil
}
