package planner

import "strings"

// SimpleRegex extracts the longest literal, anchored prefix from a regular
// expression pattern, for use as an index-scannable range start. It
// requires a leading '^' and aborts at the first metacharacter outside a
// \Q...\E literal block. The "i" and "m" flags disable extraction entirely
// (case-folding breaks byte-order prefix matching; multiline unpins the
// anchor from the start of the string).
//
// purePrefix is true iff the prefix accounts for the entire pattern, i.e.
// nothing follows it except an optional ".*" or end-of-string anchor "$".
func SimpleRegex(pattern, flags string) (prefix string, purePrefix bool) {
	if strings.ContainsRune(flags, 'i') || strings.ContainsRune(flags, 'm') {
		return "", false
	}
	if len(pattern) == 0 || pattern[0] != '^' {
		return "", false
	}
	rest := pattern[1:]

	var buf []byte
	i := 0
	for i < len(rest) {
		c := rest[i]
		if c == '\\' && i+1 < len(rest) && rest[i+1] == 'Q' {
			i += 2
			for i < len(rest) {
				if rest[i] == '\\' && i+1 < len(rest) && rest[i+1] == 'E' {
					i += 2
					break
				}
				buf = append(buf, rest[i])
				i++
			}
			continue
		}
		if isRegexMeta(c) {
			break
		}
		buf = append(buf, c)
		i++
	}

	remainder := rest[i:]
	purePrefix = remainder == "" || remainder == "$" || remainder == ".*" || remainder == ".*$"
	return string(buf), purePrefix
}

func isRegexMeta(c byte) bool {
	switch c {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\':
		return true
	default:
		return false
	}
}

// SimpleRegexEnd computes the exclusive upper bound of the half-open range
// that a literal prefix covers: increment the last byte that isn't 0xFF
// and drop everything after it. If every byte is 0xFF, there is no finite
// upper bound and the empty string is returned (the caller substitutes the
// type-max sentinel).
func SimpleRegexEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
