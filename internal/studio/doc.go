// Package studio drives narration of the open book: the per-paragraph
// synthesis state machine, the current-project context and the full-book
// download.
package studio
