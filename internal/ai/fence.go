package ai

import "strings"

// StripCodeFence removes a decorative fenced code block (``` or ```json)
// wrapped around structured output. GenerateStructured returns untrusted
// text; callers run it through here before parsing.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
