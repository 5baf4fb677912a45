// Package fcconfig builds and persists fcserver configuration files.
//
// An fcserver config names the OPC listen address, global color
// correction, and one section per controller board whose "map" rows
// are the compact [channel, firstOutputIndex, firstDeviceIndex,
// length] ranges produced by the mapping package. The JSON layout is
// fixed by fcserver itself; generated files round-trip through it
// unchanged.
package fcconfig
