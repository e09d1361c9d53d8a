package indexer

import "strings"

// Preprocess normalizes article text before chunking: leading and trailing
// whitespace is dropped and interior whitespace runs collapse to one space,
// so chunk windows never straddle formatting artifacts.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
