// Package extraction pulls the JSON candidate out of a raw provider reply.
package extraction

import "strings"

const fence = "```"

// JSONCandidate strips surrounding whitespace and a fenced code block
// wrapper (bare or language-tagged) from raw. It never repairs the payload
// and always returns a string, valid JSON or not.
func JSONCandidate(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, fence) {
		s = stripLanguageTag(s[len(fence):])
	}
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}

	return strings.TrimSpace(s)
}

// stripLanguageTag removes an info string such as "json" that follows the
// opening fence. A tag is only recognized when it is followed by whitespace,
// or when it is literally "json".
func stripLanguageTag(s string) string {
	end := 0
	for end < len(s) && isTagByte(s[end]) {
		end++
	}
	if end == 0 {
		return s
	}
	if end == len(s) {
		return ""
	}
	if isSpace(s[end]) || strings.EqualFold(s[:end], "json") {
		return s[end:]
	}
	return s
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '+'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
