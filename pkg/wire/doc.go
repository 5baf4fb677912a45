// Package wire defines the JSON message types exchanged with an
// fcserver instance over its WebSocket interface.
//
// # Message Model
//
// Every request is a JSON object carrying a "type" field naming the
// operation and a client-assigned "sequence" field used to correlate
// the reply:
//
//	{"type": "device_pixels", "sequence": 7, "device": {...}, "pixels": [...]}
//
// Replies echo the sequence number of the request they answer:
//
//	{"sequence": 7}
//
// The server may answer out of order; correlation is purely by
// sequence number (see the client package).
//
// # Request Types
//
//   - list_connected_devices: enumerate attached controller boards
//   - device_options: per-device processing options (dithering,
//     interpolation, status LED override)
//   - device_color_correction: per-device gamma and whitepoint
//   - device_pixels: raw RGB framebuffer upload
//
// Pixel data is carried as a JSON array of byte values, not as a
// base64 string; the Pixels type handles this encoding.
package wire
