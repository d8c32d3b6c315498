// Package book defines the Book aggregate: an ordered, append-only list of
// paragraphs plus title, author and narrator voice. All operations are pure
// and return updated copies.
package book
