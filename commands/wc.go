package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/josephlewis42/mathshell/core/vos"
)

type wcCount struct {
	bytes   int
	lines   int
	chars   int
	words   int
	longest int
	name    string

	inWord  bool
	lineLen int
}

func (w *wcCount) Write(data []byte) (int, error) {
	for _, c := range data {
		w.bytes++

		// Bytes following the leading byte of a UTF-8 sequence have the
		// high bits 0b10.
		if !utf8.RuneStart(c) {
			continue
		}
		w.chars++

		switch {
		case c == '\n':
			w.lines++
			w.lineLen = 0
		case c == '\t':
			w.lineLen += 8 - w.lineLen%8
		default:
			w.lineLen++
		}
		if w.lineLen > w.longest {
			w.longest = w.lineLen
		}

		if unicode.IsSpace(rune(c)) {
			w.inWord = false
		} else if !w.inWord {
			w.words++
			w.inWord = true
		}
	}

	return len(data), nil
}

func NewWcCount(name string, fd io.Reader) (*wcCount, error) {
	var out wcCount
	out.name = name

	if _, err := io.Copy(&out, fd); err != nil {
		return nil, err
	}

	return &out, nil
}

func (w *wcCount) Increment(other *wcCount) {
	w.bytes += other.bytes
	w.chars += other.chars
	w.lines += other.lines
	w.words += other.words
	if other.longest > w.longest {
		w.longest = other.longest
	}
}

// Wc implements the POSIX command by the same name.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "wc [OPTION]... [FILE]...",
		Short: "Print newline, word, and byte counts for each FILE, and a total line if more than one FILE is specified.",
	}

	opts := cmd.Flags()
	writeLines := opts.BoolLong("lines", 'l', "print the newline counts")
	writeWords := opts.BoolLong("words", 'w', "print the word counts")
	writeBytes := opts.BoolLong("bytes", 'c', "print the byte counts")
	writeChars := opts.BoolLong("chars", 'm', "print the character counts")
	writeLongest := opts.BoolLong("max-line-length", 'L', "print the maximum display width")

	return cmd.Run(virtOS, func() int {
		args := opts.Args()

		nonePicked := !(*writeLines || *writeWords || *writeBytes || *writeChars || *writeLongest)

		var cols []func(*wcCount) int
		if *writeLines || nonePicked {
			cols = append(cols, func(w *wcCount) int { return w.lines })
		}
		if *writeWords || nonePicked {
			cols = append(cols, func(w *wcCount) int { return w.words })
		}
		if *writeChars {
			cols = append(cols, func(w *wcCount) int { return w.chars })
		}
		if *writeBytes || nonePicked {
			cols = append(cols, func(w *wcCount) int { return w.bytes })
		}
		if *writeLongest {
			cols = append(cols, func(w *wcCount) int { return w.longest })
		}

		var counts []*wcCount
		total := &wcCount{name: "total"}
		exitCode := cmd.RunEachFileOrStdin(virtOS, args, func(name string, fd io.Reader) error {
			if name == "-" && len(args) == 0 {
				name = ""
			}
			count, err := NewWcCount(name, fd)
			if err != nil {
				return err
			}
			total.Increment(count)
			counts = append(counts, count)
			return nil
		})
		if len(counts) > 1 {
			counts = append(counts, total)
		}

		// Columns line up to the widest value, stdin gets the traditional
		// minimum width when several columns print.
		width := 1
		for _, col := range cols {
			if n := len(strconv.Itoa(col(total))); n > width {
				width = n
			}
		}
		if len(args) == 0 && len(cols) > 1 && width < 7 {
			width = 7
		}

		w := virtOS.Stdout()
		for _, count := range counts {
			var fields []string
			for _, col := range cols {
				fields = append(fields, fmt.Sprintf("%*d", width, col(count)))
			}
			if count.name != "" {
				fields = append(fields, count.name)
			}
			fmt.Fprintln(w, strings.Join(fields, " "))
		}

		return exitCode
	})
}

var _ vos.ProcessFunc = Wc

func init() {
	mustAddUsrBinCmd("wc", Wc)
}
