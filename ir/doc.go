// Package ir defines an SSA intermediate representation for shader
// programs.
//
// The IR is designed to be:
//   - Explicit: every value is defined by exactly one instruction
//   - Stable: instructions are addressed by handles that survive insertion
//     and removal of other instructions
//   - Cheap to rewrite: each value keeps a use-list, so redirecting all uses
//     is a single walk over that list
//
// # Structure
//
// The IR is organized around a Module type that contains:
//   - Variables: descriptor-bound resources (set, binding, array size)
//   - Functions: bodies made of basic blocks
//
// A Function owns an arena of Instructions. A Value is the handle of its
// defining instruction, so looking up a definition never searches.
// Blocks hold the program order of instruction handles and the successor
// edges used by the block-index and dominance analyses.
//
// # Rewriting
//
// Passes insert instructions through a Builder positioned with a Cursor,
// redirect uses with Function.ReplaceAllUses and then delete the old
// definition with Function.Remove. Remove refuses to delete a value that
// is still in use.
//
// # Analyses
//
// Block index, instruction index and dominance are computed on demand by
// Function.Require and cached until a pass calls Function.Invalidate.
package ir
