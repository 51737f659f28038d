package util

import "fmt"

// Truncate bounds s to max bytes, appending a marker with the number of
// bytes dropped. Used to keep tool output (notably subprocess capture) from
// growing without bound in the conversation.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + fmt.Sprintf("\n... (truncated, %d bytes omitted)", len(s)-max)
}
