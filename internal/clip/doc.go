// Package clip retrieves narrated paragraph clips by handle, decodes them
// into sample buffers and merges them into a single WAV file.
package clip
