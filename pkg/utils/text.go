package utils

// Truncate shortens s to at most max runes, appending "..." when anything was
// cut. Non-positive max leaves s untouched.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
