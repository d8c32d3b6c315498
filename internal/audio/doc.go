// Package audio holds the sample-accurate audio pipeline: decoding raw
// 16-bit PCM into normalized float buffers, concatenating buffers, and
// encoding them into canonical PCM WAV files.
package audio
