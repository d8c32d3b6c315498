// Package gemini is a minimal client for the Gemini generateContent REST
// endpoint, covering the document-extraction and speech-generation calls.
package gemini
