// Package pipeline runs the middle-end over one or many graphs.
//
// A run has fixed stages:
//
//	input -> construct -> [ssa passes] -> destruct -> [passes]
//
// Each pass list repeats until no pass changes the graph. With Verify set
// the graph is checked after every stage; with Snapshots set the printed
// graph is recorded after every stage that changed it.
package pipeline
