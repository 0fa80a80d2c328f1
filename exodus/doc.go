// Package exodus writes Exodus II finite-element mesh files.
//
// A File is built up by a sequence of calls made in dependency order:
// create the file with its mesh cardinalities, write coordinates, define
// element blocks and their connectivity, declare and name result
// variables, write the variables' values step by step and describe side
// and node sets. Every call creates the dimensions and variables it needs
// the first time they are needed, using the names, shapes and types of the
// reference Exodus layout, and leaves existing ones untouched.
//
// Entities (blocks, sets, variables and time steps) are addressed by
// 1-based ordinals. Side and node sets are also addressed by their ID.
//
// A File is owned by one writer. It is not safe for concurrent use.
package exodus
