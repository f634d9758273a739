// Package vm executes parsed tape machine programs.
//
// This package contains:
//   - The run Context: circular byte tape, data pointer, cycle budget, I/O
//   - A tree-walking interpreter over the compiler package's syntax nodes
//   - CBOR tape images for saving and resuming tape state
//   - A functional-options facade (New, Run) tying it together
package vm
