// Package cache stores synthesized narration clips. A bounded in-memory LRU
// (L1) sits in front of a zstd-compressed disk cache (L2) keyed by model,
// voice and text, so re-narrating an unchanged paragraph does not call the
// remote speech service again. BlobStore holds the encoded WAV clips that
// paragraphs reference through blob: handles for the lifetime of a process.
package cache
