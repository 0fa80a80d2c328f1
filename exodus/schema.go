package exodus

import (
	"fmt"

	"github.com/batchatco/go-native-exodus/netcdf/api"
)

// Fixed dimensions of the layout.
const (
	lenName   = 33
	lenString = 33
	lenLine   = 81
	four      = 4

	// lines in a title or info record
	maxLineLength = lenLine - 1

	formatVersion = float32(6.3)
	wordSize      = int32(8)
)

// Dimension names.
const (
	dimNumDim      = "num_dim"
	dimNumNodes    = "num_nodes"
	dimNumElem     = "num_elem"
	dimNumElBlk    = "num_el_blk"
	dimNumNodeSets = "num_node_sets"
	dimNumSideSets = "num_side_sets"
	dimLenName     = "len_name"
	dimLenString   = "len_string"
	dimLenLine     = "len_line"
	dimFour        = "four"
	dimTimeStep    = "time_step"
	dimNumInfo     = "num_info"
)

// Variable names that do not depend on an ordinal.
const (
	varTimeWhole   = "time_whole"
	varCoorNames   = "coor_names"
	varEbNames     = "eb_names"
	varEbStatus    = "eb_status"
	varEbProp1     = "eb_prop1"
	varSsNames     = "ss_names"
	varSsStatus    = "ss_status"
	varSsProp1     = "ss_prop1"
	varNsNames     = "ns_names"
	varNsStatus    = "ns_status"
	varNsProp1     = "ns_prop1"
	varValsGloVar  = "vals_glo_var"
	varInfoRecords = "info_records"

	attrElemType = "elem_type"
	attrName     = "name"
	propID       = "ID"
)

var coordVars = [3]string{"coordx", "coordy", "coordz"}

// Block dimension and variable names. Ordinals are 1-based.
func dimNumElInBlk(b int) string  { return fmt.Sprint("num_el_in_blk", b) }
func dimNumNodPerEl(b int) string { return fmt.Sprint("num_nod_per_el", b) }
func dimNumAttInBlk(b int) string { return fmt.Sprint("num_att_in_blk", b) }
func varConnect(b int) string     { return fmt.Sprint("connect", b) }
func varAttrib(b int) string      { return fmt.Sprint("attrib", b) }

// Side set names.
func dimNumSideSS(s int) string { return fmt.Sprint("num_side_ss", s) }
func dimNumDfSS(s int) string   { return fmt.Sprint("num_df_ss", s) }
func varElemSS(s int) string    { return fmt.Sprint("elem_ss", s) }
func varSideSS(s int) string    { return fmt.Sprint("side_ss", s) }
func varDistFactSS(s int) string {
	return fmt.Sprint("dist_fact_ss", s)
}

// Node set names.
func dimNumNodNS(s int) string { return fmt.Sprint("num_nod_ns", s) }
func varNodeNS(s int) string   { return fmt.Sprint("node_ns", s) }
func varDistFactNS(s int) string {
	return fmt.Sprint("dist_fact_ns", s)
}

// Result variable names, keyed by kind.
func dimNumVar(k VarKind) string  { return fmt.Sprintf("num_%s_var", k.tag()) }
func varNameVar(k VarKind) string { return fmt.Sprintf("name_%s_var", k.tag()) }
func varValsNodVar(i int) string  { return fmt.Sprint("vals_nod_var", i) }

func varValsElemVar(i, b int) string {
	return fmt.Sprintf("vals_elem_var%deb%d", i, b)
}

// varSpec is everything needed to create one variable.
type varSpec struct {
	name  string
	dtype api.DataType
	dims  []string
	fill  any
	attrs []attribute
}

type attribute struct {
	key   string
	value any
}

func nameTable(name, countDim string) varSpec {
	return varSpec{name: name, dtype: api.Char, dims: []string{countDim, dimLenName}}
}

// propTable is an ID property array, unset entries hold -1.
func propTable(name, countDim string) varSpec {
	return varSpec{
		name:  name,
		dtype: api.Int,
		dims:  []string{countDim},
		fill:  int32(-1),
		attrs: []attribute{{attrName, propID}},
	}
}

func statusTable(name, countDim string) varSpec {
	return varSpec{name: name, dtype: api.Int, dims: []string{countDim}, fill: int32(0)}
}

func intVector(name, dim string) varSpec {
	return varSpec{name: name, dtype: api.Int, dims: []string{dim}}
}

func doubleVector(name, dim string) varSpec {
	return varSpec{name: name, dtype: api.Double, dims: []string{dim}}
}

// stepVector is a per-step variable with one row of the given dimension.
func stepVector(name, dim string) varSpec {
	return varSpec{name: name, dtype: api.Double, dims: []string{dimTimeStep, dim}}
}
