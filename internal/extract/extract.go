// Package extract pulls single named fields out of semi-structured text
// payloads without deserializing the whole document.
//
// Upstream response bodies are large and their shape drifts; we only ever
// need one or two fields from each. Scanning for `"field":<value>` keeps us
// independent of everything else in the payload. Callers must treat a miss
// as a routine outcome, not a fault.
package extract

import (
	"strconv"
	"strings"
)

// String scans payload at or after the cursor from for the first occurrence
// of `"field"` followed by a colon and a quoted value. It returns the decoded
// value, the cursor just past the closing quote (for resumable scans), and
// whether a value was found.
func String(payload, field string, from int) (value string, next int, ok bool) {
	colon, found := findKey(payload, field, from)
	if !found {
		return "", from, false
	}

	rel := strings.IndexByte(payload[colon+1:], '"')
	if rel < 0 {
		return "", from, false
	}
	open := colon + 1 + rel

	end := stringEnd(payload, open+1)
	if end < 0 {
		return "", from, false
	}

	return unescape(payload[open+1 : end]), end + 1, true
}

// Number scans payload at or after from for the first occurrence of `"field"`
// followed by a colon and a bare numeric literal (digits, at most one decimal
// point). The returned cursor points just past the last consumed digit.
func Number(payload, field string, from int) (value float64, next int, ok bool) {
	colon, found := findKey(payload, field, from)
	if !found {
		return 0, from, false
	}

	i := colon + 1
	for i < len(payload) && isSpace(payload[i]) {
		i++
	}

	start := i
	digits := 0
	sawDot := false
	for i < len(payload) {
		c := payload[i]
		if c >= '0' && c <= '9' {
			digits++
			i++
			continue
		}
		if c == '.' && !sawDot {
			sawDot = true
			i++
			continue
		}
		break
	}
	if digits == 0 {
		return 0, from, false
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(payload[start:i], "."), 64)
	if err != nil {
		return 0, from, false
	}
	return v, i, true
}

// findKey locates `"field"` at or after from and returns the index of the
// colon following it.
func findKey(payload, field string, from int) (colon int, ok bool) {
	if from < 0 {
		from = 0
	}
	if from > len(payload) {
		return 0, false
	}
	marker := `"` + field + `"`
	idx := strings.Index(payload[from:], marker)
	if idx < 0 {
		return 0, false
	}
	after := from + idx + len(marker)
	rel := strings.IndexByte(payload[after:], ':')
	if rel < 0 {
		return 0, false
	}
	return after + rel, true
}

// stringEnd returns the index of the closing quote of a string value whose
// contents begin at start, honoring backslash escapes, or -1.
func stringEnd(payload string, start int) int {
	escaped := false
	for i := start; i < len(payload); i++ {
		c := payload[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			return i
		}
	}
	return -1
}

// unescape decodes the escape sequences that show up in the payloads we
// consume. Newlines and tabs become spaces so extracted titles stay
// one-line. Unrecognized escapes keep the escaped character.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 't':
			out = append(out, ' ')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
