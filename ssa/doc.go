// Package ssa converts a graph to and from static single assignment form.
//
// Construction runs in three phases:
//  1. InsertPhis places phis with a backward-propagating worklist fixpoint:
//     a name read in a block before any local assignment gets a phi there,
//     and every predecessor that does not assign the name gets one too.
//  2. Renaming gives every definition a fresh version and rewrites each read
//     to the version current at that point of its block.
//  3. Phi entries are resolved to the version live at the end of each
//     predecessor, then SimplifyPhis turns single-source phis into copies.
//
// Destruct reverses the form by placing one copy per phi entry at the end of
// the corresponding predecessor.
package ssa
