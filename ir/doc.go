// Package ir defines the control-flow graph intermediate representation
// consumed and produced by the scriptc middle-end.
//
// A Graph owns an array of BasicBlocks indexed by ordinal, an edge list that
// is the single source of truth for predecessor and successor queries, and a
// designated entry block. Blocks hold an ordered slice of three-address
// Instructions whose operands are Constants, Builtins or NameValues.
//
// # Names and versions
//
// A NameValue is a base name plus a version. Version -1 marks an unversioned
// name as produced by the frontend. After SSA construction every definition
// carries a version >= 1 unique for its base name, and version 0 denotes the
// value a name holds on entry to the unit (a global or parameter).
//
// # Text form
//
// Format renders a graph one instruction per line, and Parse reads the same
// format back:
//
//	entry BB0
//	BB0:
//	  if x: br BB1; else: br BB2
//	BB1:
//	  y = 1
//	  br BB3
//	BB2:
//	  y = 2
//	  br BB3
//	BB3:
//	  call @print(y)
package ir
