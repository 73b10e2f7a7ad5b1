// Package security gates commands that can destroy data or stop the server.
package security

import "strings"

// dangerousKeywords is matched case-insensitively anywhere in a command,
// including inside string literals and field names.
var dangerousKeywords = []string{"drop", "delete", "remove", "shutdown", "kill"}

// IsDangerous reports whether command contains any destructive keyword.
func IsDangerous(command string) bool {
	lower := strings.ToLower(command)
	for _, kw := range dangerousKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchedKeywords returns the keywords found in command, in keyword order.
func MatchedKeywords(command string) []string {
	lower := strings.ToLower(command)
	var matched []string
	for _, kw := range dangerousKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Keywords returns a copy of the keyword set.
func Keywords() []string {
	out := make([]string, len(dangerousKeywords))
	copy(out, dangerousKeywords)
	return out
}
