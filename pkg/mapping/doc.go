// Package mapping compiles device-local pixel addresses into the flat
// output index space used by fcserver configurations.
//
// A Compiler consumes a stream of (device serial, device-local index)
// registrations and maintains, per device, a minimal ordered list of
// run-length entries: contiguous ranges where output index and device
// index advance together. Registration order matters; the compiler
// performs no reordering, so pixels must be registered in the desired
// output order.
//
// The package also derives per-LED descriptors (strip position,
// wiring label) from the fixed board geometry. Descriptor functions
// are pure and consult no compiler state.
package mapping
