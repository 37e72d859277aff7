// Package opt holds the graph optimization passes.
//
// Every pass implements Pass and runs to its own fixpoint:
//
//   - Fold evaluates constant unary and binary operations and propagates
//     constants and copies through single-definition names.
//   - DeadCode turns branches on constant conditions into jumps and removes
//     assignments whose value is never read.
//   - DeadBlock deletes unreachable and redirect blocks, fuses straight-line
//     chains and compacts block ordinals.
//
// Calls are never removed or reordered by any pass.
package opt
