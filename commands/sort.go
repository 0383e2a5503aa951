package commands

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)`)

// numericPrefix parses the number a line starts with, lines without one
// sort as zero.
func numericPrefix(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(leadingNumber.FindString(s)), 64)
	return f
}

var humanNumber = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+))([KMGTPE]?)`)

func humanPrefix(s string) float64 {
	m := humanNumber.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, _ := strconv.ParseFloat(m[1], 64)
	if m[2] != "" {
		f *= float64(uint64(1) << (10 * (strings.Index("KMGTPE", m[2]) + 1)))
	}
	return f
}

func monthValue(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	return months[s]
}

type sortKey struct {
	startField, startChar int
	endField, endChar     int
}

// parseSortKey parses -k F[.C][,F[.C]], trailing ordering letters are
// ignored.
func parseSortKey(spec string) (sortKey, error) {
	var key sortKey
	parsePos := func(s string) (int, int, error) {
		s = strings.TrimRight(s, "bdfgiMhnRrV")
		field, char, hasChar := strings.Cut(s, ".")
		f, err := strconv.Atoi(field)
		if err != nil || f <= 0 {
			return 0, 0, fmt.Errorf("invalid number at field start: invalid count at start of '%s'", spec)
		}
		c := 0
		if hasChar {
			if c, err = strconv.Atoi(char); err != nil {
				return 0, 0, fmt.Errorf("invalid number after '.': invalid count at start of '%s'", spec)
			}
		}
		return f, c, nil
	}

	start, end, hasEnd := strings.Cut(spec, ",")
	var err error
	if key.startField, key.startChar, err = parsePos(start); err != nil {
		return key, err
	}
	if hasEnd {
		if key.endField, key.endChar, err = parsePos(end); err != nil {
			return key, err
		}
	}
	return key, nil
}

func (k sortKey) extract(line, sep string) string {
	var fields []string
	if sep == "" {
		fields = strings.Fields(line)
	} else {
		fields = strings.Split(line, sep)
	}
	if k.startField > len(fields) {
		return ""
	}

	end := len(fields)
	if k.endField > 0 && k.endField < end {
		end = k.endField
	}
	if end < k.startField {
		return ""
	}
	selected := fields[k.startField-1 : end]

	joiner := sep
	if joiner == "" {
		joiner = " "
	}
	if k.startChar > 1 {
		first := []rune(selected[0])
		if k.startChar-1 < len(first) {
			selected[0] = string(first[k.startChar-1:])
		} else {
			selected[0] = ""
		}
	}
	return strings.Join(selected, joiner)
}

type sortOptions struct {
	reverse     bool
	numeric     bool
	human       bool
	month       bool
	foldCase    bool
	ignoreBlank bool
	stable      bool
	separator   string
	keys        []sortKey
}

func (o *sortOptions) key(line string) []string {
	if len(o.keys) == 0 {
		return []string{line}
	}
	var out []string
	for _, k := range o.keys {
		out = append(out, k.extract(line, o.separator))
	}
	return out
}

func (o *sortOptions) compareKey(a, b string) int {
	if o.ignoreBlank {
		a, b = strings.TrimLeft(a, " \t"), strings.TrimLeft(b, " \t")
	}
	switch {
	case o.numeric:
		return compareFloat(numericPrefix(a), numericPrefix(b))
	case o.human:
		return compareFloat(humanPrefix(a), humanPrefix(b))
	case o.month:
		return monthValue(a) - monthValue(b)
	case o.foldCase:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	default:
		return strings.Compare(a, b)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (o *sortOptions) compareKeys(a, b string) int {
	ka, kb := o.key(a), o.key(b)
	for i := range ka {
		if c := o.compareKey(ka[i], kb[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compare orders two lines by their keys, the whole line breaks ties unless
// the sort is stable.
func (o *sortOptions) compare(a, b string) int {
	if c := o.compareKeys(a, b); c != 0 || o.stable {
		return c
	}
	return strings.Compare(a, b)
}

// Sort implements the sort command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/sort.html
func Sort(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sort [OPTION]... [FILE]...",
		Short: "Write sorted concatenation of all FILE(s) to standard output.",
	}
	flags := cmd.Flags()
	reverse := flags.BoolLong("reverse", 'r', "reverse the result of comparisons")
	numeric := flags.BoolLong("numeric-sort", 'n', "compare according to string numerical value")
	human := flags.BoolLong("human-numeric-sort", 'h', "compare human readable numbers (e.g., 2K 1G)")
	month := flags.BoolLong("month-sort", 'M', "compare (unknown) < 'JAN' < ... < 'DEC'")
	unique := flags.BoolLong("unique", 'u', "output only the first of an equal run")
	foldCase := flags.BoolLong("ignore-case", 'f', "fold lower case to upper case characters")
	ignoreBlank := flags.BoolLong("ignore-leading-blanks", 'b', "ignore leading blanks")
	random := flags.BoolLong("random-sort", 'R', "shuffle, but group identical keys")
	stable := flags.BoolLong("stable", 's', "stabilize sort by disabling last-resort comparison")
	check := flags.BoolLong("check", 'c', "check for sorted input; do not sort")
	separator := flags.StringLong("field-separator", 't', "", "use SEP instead of non-blank to blank transition")
	output := flags.StringLong("output", 'o', "", "write result to FILE instead of standard output")
	var keys stringList
	flags.FlagLong(&keys, "key", 'k', "sort via a key; KEYDEF gives location and type")
	cmd.ShowHelp = flags.BoolLong("help", 0, "show this help and exit")

	return cmd.Run(virtOS, func() int {
		opts := &sortOptions{
			reverse:     *reverse,
			numeric:     *numeric,
			human:       *human,
			month:       *month,
			foldCase:    *foldCase,
			ignoreBlank: *ignoreBlank,
			stable:      *stable,
			separator:   *separator,
		}
		if len([]rune(opts.separator)) > 1 {
			fmt.Fprintln(virtOS.Stderr(), "sort: multi-character tab '"+opts.separator+"'")
			return 2
		}
		for _, spec := range keys {
			key, err := parseSortKey(spec)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "sort: %s\n", err)
				return 2
			}
			opts.keys = append(opts.keys, key)
		}

		text, exitCode := cmd.readInputs(virtOS, flags.Args())
		if exitCode != 0 {
			return 2
		}
		lines := splitLines(text)

		less := func(i, j int) bool {
			c := opts.compare(lines[i], lines[j])
			if opts.reverse {
				return c > 0
			}
			return c < 0
		}

		if *check {
			for i := 1; i < len(lines); i++ {
				if less(i, i-1) {
					fmt.Fprintf(virtOS.Stderr(), "sort: -:%d: disorder: %s\n", i+1, lines[i])
					return 1
				}
			}
			return 0
		}

		if *random {
			rand.Shuffle(len(lines), func(i, j int) {
				lines[i], lines[j] = lines[j], lines[i]
			})
		} else {
			sort.SliceStable(lines, less)
		}

		if *unique {
			var deduped []string
			for i, line := range lines {
				if i > 0 && opts.compareKeys(lines[i-1], line) == 0 {
					continue
				}
				deduped = append(deduped, line)
			}
			lines = deduped
		}

		if *output != "" {
			if err := virtOS.FS().Write(virtOS.Resolve(*output), joinLines(lines)); err != nil {
				cmd.LogProgramError(virtOS, fileError(*output, err))
				return 2
			}
			return 0
		}
		fmt.Fprint(virtOS.Stdout(), joinLines(lines))
		return 0
	})
}

var _ vos.ProcessFunc = Sort

func init() {
	mustAddUsrBinCmd("sort", Sort)
}
