package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7]{0,3}`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F]{1,2}`)
	unescapeReplace = strings.NewReplacer(
		`\\`, `\`,    // backslash literal
		`\n`, "\n",   // newline
		`\r`, "\r",   // carriage return
		`\t`, "\t",   // horizontal tab
		`\b`, "\b",   // backspace
		`\a`, "\a",   // alert
		`\e`, "\033", // escape
		`\f`, "\f",   // form feed
		`\v`, "\v",   // vertical tab
	)
)

// unescape interprets backslash escapes, numeric escapes are decoded before
// the named ones.
func unescape(s string) string {
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		if arg == `\0` {
			return "\x00"
		}
		out, err := strconv.ParseUint(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string([]byte{byte(out)})
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseUint(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string([]byte{byte(out)})
	})
	return unescapeReplace.Replace(s)
}

// Echo implements the echo command. Options are only recognized before the
// first operand, like bash.
func Echo(virtOS vos.VOS) int {
	args := virtOS.Args()[1:]

	newline := true
	escaped := false

parseOpts:
	for len(args) > 0 {
		opt := args[0]
		if len(opt) < 2 || opt[0] != '-' || strings.Trim(opt[1:], "neE") != "" {
			break
		}
		for _, c := range opt[1:] {
			switch c {
			case 'n':
				newline = false
			case 'e':
				escaped = true
			case 'E':
				escaped = false
			default:
				break parseOpts
			}
		}
		args = args[1:]
	}

	text := strings.Join(args, " ")
	if escaped {
		// \c stops all further output.
		if idx := strings.Index(text, `\c`); idx >= 0 {
			text = text[:idx]
			newline = false
		}
		text = unescape(text)
	}

	w := virtOS.Stdout()
	fmt.Fprint(w, text)
	if newline {
		fmt.Fprintln(w)
	}
	return 0
}

var _ vos.ProcessFunc = Echo

func init() {
	mustAddBinCmd("echo", Echo)
}
