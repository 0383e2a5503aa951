package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/josephlewis42/mathshell/core/vos"
)

// decodeEscape decodes the backslash escape at the start of s. It returns
// the decoded text, the number of bytes consumed and whether output should
// stop (\c).
func decodeEscape(s string, octalNeedsZero bool) (string, int, bool) {
	if len(s) < 2 {
		return s, len(s), false
	}
	switch c := s[1]; c {
	case 'a':
		return "\a", 2, false
	case 'b':
		return "\b", 2, false
	case 'c':
		return "", 2, true
	case 'e':
		return "\033", 2, false
	case 'f':
		return "\f", 2, false
	case 'n':
		return "\n", 2, false
	case 'r':
		return "\r", 2, false
	case 't':
		return "\t", 2, false
	case 'v':
		return "\v", 2, false
	case '\\':
		return "\\", 2, false
	case 'x':
		end := 2
		for end < len(s) && end < 4 && isHexDigit(s[end]) {
			end++
		}
		if end == 2 {
			return s[:2], 2, false
		}
		v, _ := strconv.ParseUint(s[2:end], 16, 8)
		return string([]byte{byte(v)}), end, false
	default:
		if c < '0' || c > '7' || (octalNeedsZero && c != '0') {
			return s[:2], 2, false
		}
		start := 1
		if octalNeedsZero {
			start = 2
		}
		end := start
		for end < len(s) && end < start+3 && s[end] >= '0' && s[end] <= '7' {
			end++
		}
		v, _ := strconv.ParseUint("0"+s[start:end], 8, 16)
		return string([]byte{byte(v)}), end, false
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// printfArg converts a numeric argument. Quoted characters ('a) give their
// code point, invalid numbers are reported and count as zero.
func printfArg(arg string, report func(string)) (int64, float64) {
	if arg == "" {
		return 0, 0
	}
	if arg[0] == '\'' || arg[0] == '"' {
		r, _ := utf8.DecodeRuneInString(arg[1:])
		return int64(r), float64(r)
	}
	if i, err := strconv.ParseInt(arg, 0, 64); err == nil {
		return i, float64(i)
	}
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return int64(f), f
	}
	report(arg)
	return 0, 0
}

type printfState struct {
	args    []string
	next    int
	invalid []string
}

func (p *printfState) arg() string {
	if p.next >= len(p.args) {
		return ""
	}
	p.next++
	return p.args[p.next-1]
}

func (p *printfState) report(arg string) {
	p.invalid = append(p.invalid, arg)
}

// format renders the format string once, consuming arguments. It returns
// true if \c stopped output.
func (p *printfState) format(w *strings.Builder, format string) bool {
	for i := 0; i < len(format); {
		c := format[i]
		switch {
		case c == '\\':
			text, n, stop := decodeEscape(format[i:], false)
			if stop {
				return true
			}
			w.WriteString(text)
			i += n
			continue
		case c != '%':
			w.WriteByte(c)
			i++
			continue
		}

		// Directive: %[flags][width][.precision]verb
		start := i
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ #0", format[j]) >= 0 {
			j++
		}
		spec := format[i:j]
		if j < len(format) && format[j] == '*' {
			width, _ := printfArg(p.arg(), p.report)
			spec += strconv.FormatInt(width, 10)
			j++
		}
		for j < len(format) && format[j] >= '0' && format[j] <= '9' {
			spec += format[j : j+1]
			j++
		}
		if j < len(format) && format[j] == '.' {
			spec += "."
			j++
			if j < len(format) && format[j] == '*' {
				prec, _ := printfArg(p.arg(), p.report)
				spec += strconv.FormatInt(prec, 10)
				j++
			}
			for j < len(format) && format[j] >= '0' && format[j] <= '9' {
				spec += format[j : j+1]
				j++
			}
		}
		if j >= len(format) {
			w.WriteString(format[i:])
			return false
		}

		verb := format[j]
		i = j + 1
		switch verb {
		case '%':
			w.WriteByte('%')
		case 's':
			fmt.Fprintf(w, spec+"s", p.arg())
		case 'b':
			var out strings.Builder
			arg := p.arg()
			for k := 0; k < len(arg); {
				if arg[k] != '\\' {
					out.WriteByte(arg[k])
					k++
					continue
				}
				text, n, stop := decodeEscape(arg[k:], true)
				if stop {
					fmt.Fprintf(w, spec+"s", out.String())
					return true
				}
				out.WriteString(text)
				k += n
			}
			fmt.Fprintf(w, spec+"s", out.String())
		case 'q':
			fmt.Fprintf(w, spec+"s", shellQuote(p.arg()))
		case 'c':
			arg := p.arg()
			if arg != "" {
				r, _ := utf8.DecodeRuneInString(arg)
				fmt.Fprintf(w, spec+"c", r)
			}
		case 'd', 'i':
			n, _ := printfArg(p.arg(), p.report)
			fmt.Fprintf(w, spec+"d", n)
		case 'u':
			n, _ := printfArg(p.arg(), p.report)
			fmt.Fprintf(w, spec+"d", uint64(n))
		case 'o', 'x', 'X':
			n, _ := printfArg(p.arg(), p.report)
			fmt.Fprintf(w, spec+string(verb), uint64(n))
		case 'f', 'F', 'e', 'E', 'g', 'G':
			_, f := printfArg(p.arg(), p.report)
			lower := strings.ToLower(string(verb))
			text := fmt.Sprintf(spec+lower, f)
			if lower != string(verb) {
				text = strings.ToUpper(text)
			}
			w.WriteString(text)
		default:
			w.WriteString(format[start:i])
		}
	}
	return false
}

// shellQuote quotes s so the shell reads it back as a single word.
func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-./=:,@%+") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Printf implements the POSIX printf command. The format is reused until
// every argument has been consumed.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/printf.html
func Printf(virtOS vos.VOS) int {
	args := virtOS.Args()[1:]
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(virtOS.Stderr(), "printf: usage: printf format [arguments]")
		return 2
	}

	p := &printfState{args: args[1:]}
	var out strings.Builder
	for {
		before := p.next
		if p.format(&out, args[0]) || p.next >= len(p.args) || p.next == before {
			break
		}
	}
	fmt.Fprint(virtOS.Stdout(), out.String())

	for _, arg := range p.invalid {
		fmt.Fprintf(virtOS.Stderr(), "printf: %s: invalid number\n", arg)
	}
	if len(p.invalid) > 0 {
		return 1
	}
	return 0
}

var _ vos.ProcessFunc = Printf

func init() {
	mustAddUsrBinCmd("printf", Printf)
}
