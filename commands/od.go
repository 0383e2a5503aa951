package commands

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

const odBytesPerLine = 16

// odNamedChars are the -t a names for control characters.
var odNamedChars = [...]string{
	"nul", "soh", "stx", "etx", "eot", "enq", "ack", "bel",
	"bs", "ht", "nl", "vt", "ff", "cr", "so", "si",
	"dle", "dc1", "dc2", "dc3", "dc4", "nak", "syn", "etb",
	"can", "em", "sub", "esc", "fs", "gs", "rs", "us",
}

// odFormat renders one row of bytes in a single output type.
type odFormat struct {
	size   int
	render func(chunk []byte) string
}

func parseOdType(t string) (*odFormat, error) {
	if t == "" {
		return nil, fmt.Errorf("invalid type string ''")
	}

	kind := t[0]
	size := 1
	if rest := t[1:]; rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || (n != 1 && n != 2 && n != 4) {
			return nil, fmt.Errorf("invalid type string '%s'", t)
		}
		size = n
	} else if kind == 'o' || kind == 'x' || kind == 'd' || kind == 'u' {
		size = 2
	}

	word := func(b []byte) uint64 {
		padded := make([]byte, 8)
		copy(padded, b)
		return binary.LittleEndian.Uint64(padded)
	}

	numeric := func(verb string, width int, signed bool) *odFormat {
		return &odFormat{size: size, render: func(chunk []byte) string {
			var out strings.Builder
			for i := 0; i < len(chunk); i += size {
				end := i + size
				if end > len(chunk) {
					end = len(chunk)
				}
				v := word(chunk[i:end])
				if signed {
					shift := 64 - 8*size
					fmt.Fprintf(&out, " %*d", width, int64(v<<shift)>>shift)
				} else {
					fmt.Fprintf(&out, " %0*"+verb, width, v)
				}
			}
			return out.String()
		}}
	}

	switch kind {
	case 'o':
		return numeric("o", []int{1: 3, 2: 6, 4: 11}[size], false), nil
	case 'x':
		return numeric("x", 2*size, false), nil
	case 'u':
		return &odFormat{size: size, render: func(chunk []byte) string {
			var out strings.Builder
			width := []int{1: 3, 2: 5, 4: 10}[size]
			for i := 0; i < len(chunk); i += size {
				end := i + size
				if end > len(chunk) {
					end = len(chunk)
				}
				fmt.Fprintf(&out, " %*d", width, word(chunk[i:end]))
			}
			return out.String()
		}}, nil
	case 'd':
		return numeric("d", []int{1: 4, 2: 6, 4: 11}[size], true), nil
	case 'c':
		return &odFormat{size: 1, render: func(chunk []byte) string {
			var out strings.Builder
			for _, b := range chunk {
				fmt.Fprintf(&out, " %3s", odChar(b))
			}
			return out.String()
		}}, nil
	case 'a':
		return &odFormat{size: 1, render: func(chunk []byte) string {
			var out strings.Builder
			for _, b := range chunk {
				b &= 0x7f
				name := string(rune(b))
				switch {
				case b < 32:
					name = odNamedChars[b]
				case b == ' ':
					name = "sp"
				case b == 0x7f:
					name = "del"
				}
				fmt.Fprintf(&out, " %3s", name)
			}
			return out.String()
		}}, nil
	}
	return nil, fmt.Errorf("invalid character '%c' in type string '%s'", kind, t)
}

func odChar(b byte) string {
	switch b {
	case 0:
		return `\0`
	case '\a':
		return `\a`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\v':
		return `\v`
	}
	if b < 32 || b >= 0x7f {
		return fmt.Sprintf("%03o", b)
	}
	return string(rune(b))
}

// Od dumps input in octal and other formats.
func Od(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "od [OPTION]... [FILE]...",
		Short: "Write an unambiguous representation, octal bytes by default, of FILE to standard output.",
	}
	flags := cmd.Flags()
	radix := flags.EnumLong("address-radix", 'A', []string{"o", "d", "x", "n"}, "o", "output format for file offsets")
	var types stringList
	flags.FlagLong(&types, "format", 't', "select output format or formats")
	limit := flags.IntLong("read-bytes", 'N', -1, "limit dump to BYTES input bytes")
	skip := flags.IntLong("skip-bytes", 'j', 0, "skip BYTES input bytes first")
	octalBytes := flags.Bool('b', "same as -t o1, select octal bytes")
	chars := flags.Bool('c', "same as -t c, select printable characters or backslash escapes")
	hexWords := flags.Bool('x', "same as -t x2, select hexadecimal 2-byte units")

	return cmd.Run(virtOS, func() int {
		if *octalBytes {
			types = append(types, "o1")
		}
		if *chars {
			types = append(types, "c")
		}
		if *hexWords {
			types = append(types, "x2")
		}
		if len(types) == 0 {
			types = stringList{"o2"}
		}
		var formats []*odFormat
		for _, t := range types {
			f, err := parseOdType(t)
			if err != nil {
				cmd.LogProgramError(virtOS, err)
				return 1
			}
			formats = append(formats, f)
		}

		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		data := []byte(text)
		if *skip > len(data) {
			*skip = len(data)
		}
		data = data[*skip:]
		if *limit >= 0 && *limit < len(data) {
			data = data[:*limit]
		}

		address := func(n int) string {
			switch *radix {
			case "d":
				return fmt.Sprintf("%07d", n)
			case "x":
				return fmt.Sprintf("%06x", n)
			case "n":
				return ""
			}
			return fmt.Sprintf("%07o", n)
		}

		w := virtOS.Stdout()
		for offset := 0; offset < len(data); offset += odBytesPerLine {
			end := offset + odBytesPerLine
			if end > len(data) {
				end = len(data)
			}
			for i, f := range formats {
				prefix := address(*skip + offset)
				if i > 0 {
					prefix = strings.Repeat(" ", len(prefix))
				}
				fmt.Fprintln(w, prefix+f.render(data[offset:end]))
			}
		}
		if *radix != "n" {
			fmt.Fprintln(w, address(*skip+len(data)))
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Od

func init() {
	mustAddUsrBinCmd("od", Od)
}
