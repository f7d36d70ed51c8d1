package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Auto asks Decode to pick the delimiter from the text itself.
// Encode treats it as DefaultDelimiter.
const Auto rune = -1

// detectSampleLines bounds how much of the input DetectDelimiter inspects.
const detectSampleLines = 10

var detectCandidates = []rune{'\t', ',', ';', '|'}

// ParseDelimiter maps a configured name to a delimiter rune.
// Accepted: tab, comma, semicolon, pipe, auto, or any single character that
// is not a quote or a line break.
func ParseDelimiter(name string) (rune, error) {
	switch strings.ToLower(name) {
	case "", "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	case "auto":
		return Auto, nil
	}
	if utf8.RuneCountInString(name) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: want tab, comma, semicolon, pipe, auto or a single character", name)
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || r == '"' || isLineBreak(r) {
		return 0, fmt.Errorf("invalid delimiter %q", name)
	}
	return r, nil
}

// DelimiterName is the inverse of ParseDelimiter for the named delimiters.
func DelimiterName(d rune) string {
	switch d {
	case '\t', 0:
		return "tab"
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	case Auto:
		return "auto"
	default:
		return string(d)
	}
}

// DetectDelimiter guesses the delimiter of text. A candidate qualifies when
// it occurs on every sampled line; among those the one whose per-line count
// varies least wins, then the one producing more fields. Tab is returned
// when nothing qualifies.
func DetectDelimiter(text string) rune {
	lines := strings.FieldsFunc(text, isLineBreak)
	if len(lines) > detectSampleLines {
		lines = lines[:detectSampleLines]
	}
	if len(lines) == 0 {
		return DefaultDelimiter
	}

	best := DefaultDelimiter
	bestSpread, bestAvg := -1, 0.0
	for _, cand := range detectCandidates {
		lo, hi, total := -1, 0, 0
		ok := true
		for _, line := range lines {
			n := strings.Count(line, string(cand))
			if n == 0 {
				ok = false
				break
			}
			if lo < 0 || n < lo {
				lo = n
			}
			hi = max(hi, n)
			total += n
		}
		if !ok {
			continue
		}
		spread := hi - lo
		avg := float64(total) / float64(len(lines))
		if bestSpread < 0 || spread < bestSpread || (spread == bestSpread && avg > bestAvg) {
			best, bestSpread, bestAvg = cand, spread, avg
		}
	}
	return best
}
