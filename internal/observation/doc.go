// Package observation decodes the per-frame buffers emitted by the
// simulation engine's video producer into typed observation frames.
//
// Responsibilities: buffer layout arithmetic, decoding (slicing, row-order
// correction, empty-buffer fallback), space descriptors for downstream
// validation, and the equality-gated merge of handler configurations.
// Key types: Config, Layout, Decoder, Observation, Space.
//
// WIRE FORMAT (little-endian by default):
//
//	[color: w*h*3 uint8][depth: w*h float32][modelview: 16 float32][projection: 16 float32]
//
// The depth segment is present only when depth was requested, and the two
// matrices only follow a depth segment. Scanlines arrive bottom-to-top;
// decoded frames always have row 0 at the top of the image. A pure-depth
// producer emits only the depth segment, starting at offset 0.
//
// All functions are safe for concurrent use. Decoded frames never alias the
// input buffer.
package observation
