package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// seqDecimals returns the number of digits after the decimal point.
func seqDecimals(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Seq implements the seq command.
func Seq(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "seq [OPTION]... [FIRST [INCREMENT]] LAST",
		Short: "Print numbers from FIRST to LAST, in steps of INCREMENT.",
	}
	// Negative numbers look like flags, operands start at the first number.
	var args []string
	takesValue := false
	for i, arg := range virtOS.Args() {
		if i > 0 && !takesValue {
			if _, err := strconv.ParseFloat(arg, 64); err == nil {
				args = append(args, "--")
				args = append(args, virtOS.Args()[i:]...)
				break
			}
		}
		args = append(args, arg)
		takesValue = arg == "-s" || arg == "-f" || arg == "--separator" || arg == "--format"
	}
	cmd.SetArgs(args)

	flags := cmd.Flags()
	separator := flags.StringLong("separator", 's', "\n", "use STRING to separate numbers")
	equalWidth := flags.BoolLong("equal-width", 'w', "equalize width by padding with leading zeroes")
	format := flags.StringLong("format", 'f', "", "use printf style floating-point FORMAT")

	return cmd.Run(virtOS, func() int {
		operands := flags.Args()
		if len(operands) == 0 || len(operands) > 3 {
			if len(operands) == 0 {
				fmt.Fprintln(virtOS.Stderr(), "seq: missing operand")
			} else {
				fmt.Fprintf(virtOS.Stderr(), "seq: extra operand '%s'\n", operands[3])
			}
			return 1
		}

		values := make([]float64, len(operands))
		decimals := 0
		for i, op := range operands {
			v, err := strconv.ParseFloat(op, 64)
			if err != nil || math.IsNaN(v) {
				fmt.Fprintf(virtOS.Stderr(), "seq: invalid floating point argument: '%s'\n", op)
				return 1
			}
			values[i] = v
			if d := seqDecimals(op); d > decimals && i < len(operands)-1 {
				decimals = d
			}
		}

		first, step, last := 1.0, 1.0, values[len(values)-1]
		switch len(values) {
		case 2:
			first = values[0]
		case 3:
			first, step = values[0], values[1]
		}
		if step == 0 {
			fmt.Fprintf(virtOS.Stderr(), "seq: invalid Zero increment value: '%s'\n", operands[1])
			return 1
		}

		render := func(v float64) string {
			if *format != "" {
				return fmt.Sprintf(*format, v)
			}
			return strconv.FormatFloat(v, 'f', decimals, 64)
		}

		var out []string
		// Steps are computed from the count to avoid accumulating error.
		for i := 0; ; i++ {
			v := first + float64(i)*step
			if (step > 0 && v > last+1e-9) || (step < 0 && v < last-1e-9) {
				break
			}
			out = append(out, render(v))
		}

		if *equalWidth && *format == "" {
			width := 0
			for _, s := range out {
				if len(s) > width {
					width = len(s)
				}
			}
			for i, s := range out {
				if neg := strings.HasPrefix(s, "-"); neg {
					out[i] = "-" + strings.Repeat("0", width-len(s)) + s[1:]
				} else {
					out[i] = strings.Repeat("0", width-len(s)) + s
				}
			}
		}

		if len(out) > 0 {
			fmt.Fprintln(virtOS.Stdout(), strings.Join(out, *separator))
		}
		return 0
	})
}

var _ vos.ProcessFunc = Seq

func init() {
	mustAddUsrBinCmd("seq", Seq)
}
