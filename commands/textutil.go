package commands

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// listRange is a 1-based inclusive range from a cut style list, an End of
// zero means to the end of the line.
type listRange struct {
	Start int
	End   int
}

func (r listRange) contains(i int) bool {
	return i >= r.Start && (r.End == 0 || i <= r.End)
}

var errInvalidRange = errors.New("invalid byte, character or field list")

// parseRanges parses lists like "1,3", "2-4", "-3" and "5-".
func parseRanges(spec string) ([]listRange, error) {
	if spec == "" {
		return nil, errInvalidRange
	}

	var out []listRange
	for _, part := range strings.Split(spec, ",") {
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			n, err := strconv.Atoi(part)
			if err != nil || n <= 0 {
				return nil, errInvalidRange
			}
			out = append(out, listRange{n, n})
			continue
		}

		r := listRange{Start: 1}
		if lo != "" {
			n, err := strconv.Atoi(lo)
			if err != nil || n <= 0 {
				return nil, errInvalidRange
			}
			r.Start = n
		}
		if hi != "" {
			n, err := strconv.Atoi(hi)
			if err != nil || n < r.Start {
				return nil, errInvalidRange
			}
			r.End = n
		}
		if lo == "" && hi == "" {
			return nil, errInvalidRange
		}
		out = append(out, r)
	}
	return out, nil
}

func inRanges(ranges []listRange, i int) bool {
	for _, r := range ranges {
		if r.contains(i) {
			return true
		}
	}
	return false
}

// selectItems keeps the 1-based positions named by ranges, in input order.
func selectItems(items []string, ranges []listRange) []string {
	var out []string
	for i, item := range items {
		if inRanges(ranges, i+1) {
			out = append(out, item)
		}
	}
	return out
}

// skipFieldsAndChars drops leading blank separated fields and then
// characters, for uniq style comparisons.
func skipFieldsAndChars(line string, fields, chars int) string {
	for ; fields > 0; fields-- {
		line = strings.TrimLeft(line, " \t")
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			return ""
		}
		line = line[i:]
	}
	runes := []rune(line)
	if chars >= len(runes) {
		return ""
	}
	return string(runes[chars:])
}

var charClasses = map[string]func(rune) bool{
	"alnum":  func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) },
	"alpha":  unicode.IsLetter,
	"blank":  func(r rune) bool { return r == ' ' || r == '\t' },
	"cntrl":  unicode.IsControl,
	"digit":  unicode.IsDigit,
	"graph":  func(r rune) bool { return unicode.IsGraphic(r) && r != ' ' },
	"lower":  unicode.IsLower,
	"print":  unicode.IsPrint,
	"punct":  unicode.IsPunct,
	"space":  unicode.IsSpace,
	"upper":  unicode.IsUpper,
	"xdigit": func(r rune) bool { return strings.ContainsRune("0123456789abcdefABCDEF", r) },
}

// expandCharSet expands a tr set: ranges like a-z, classes like [:digit:]
// and backslash escapes. Classes cover ASCII.
func expandCharSet(spec string) ([]rune, error) {
	var out []rune
	runes := []rune(spec)
	next := func(i int) (rune, int) {
		if runes[i] != '\\' || i+1 >= len(runes) {
			return runes[i], i + 1
		}
		switch runes[i+1] {
		case 'n':
			return '\n', i + 2
		case 't':
			return '\t', i + 2
		case 'r':
			return '\r', i + 2
		case '0':
			return 0, i + 2
		default:
			return runes[i+1], i + 2
		}
	}

	for i := 0; i < len(runes); {
		if end := classEnd(runes, i); end > 0 {
			name := string(runes[i+2 : i+end])
			pred, ok := charClasses[name]
			if !ok {
				return nil, errors.New("invalid character class '" + name + "'")
			}
			for r := rune(0); r < 128; r++ {
				if pred(r) {
					out = append(out, r)
				}
			}
			i += end + 2
			continue
		}

		start, after := next(i)
		if after+1 < len(runes) && runes[after] == '-' {
			end, afterEnd := next(after + 1)
			if end < start {
				return nil, errors.New("range-endpoints of '" + string(start) + "-" + string(end) + "' are in reverse collating sequence order")
			}
			for r := start; r <= end; r++ {
				out = append(out, r)
			}
			i = afterEnd
			continue
		}
		out = append(out, start)
		i = after
	}
	return out, nil
}

// classEnd returns the offset of ":]" when runes[i:] starts a [:name:]
// class, or -1.
func classEnd(runes []rune, i int) int {
	if i+1 >= len(runes) || runes[i] != '[' || runes[i+1] != ':' {
		return -1
	}
	for j := i + 2; j+1 < len(runes); j++ {
		if runes[j] == ':' && runes[j+1] == ']' {
			return j - i
		}
	}
	return -1
}
