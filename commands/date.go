package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/mathshell/core/vos"
)

const dateDefaultFormat = "%a %b %e %H:%M:%S %Z %Y"

// Strftime formats t using C strftime conversions.
func Strftime(format string, t time.Time) string {
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			out.WriteByte(c)
			continue
		}

		i++
		switch format[i] {
		case 'Y':
			out.WriteString(strconv.Itoa(t.Year()))
		case 'y':
			fmt.Fprintf(&out, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&out, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&out, "%02d", t.Day())
		case 'e':
			fmt.Fprintf(&out, "%2d", t.Day())
		case 'H':
			fmt.Fprintf(&out, "%02d", t.Hour())
		case 'I':
			fmt.Fprintf(&out, "%02d", (t.Hour()+11)%12+1)
		case 'M':
			fmt.Fprintf(&out, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&out, "%02d", t.Second())
		case 'N':
			fmt.Fprintf(&out, "%09d", t.Nanosecond())
		case 's':
			out.WriteString(strconv.FormatInt(t.Unix(), 10))
		case 'a':
			out.WriteString(t.Format("Mon"))
		case 'A':
			out.WriteString(t.Format("Monday"))
		case 'b', 'h':
			out.WriteString(t.Format("Jan"))
		case 'B':
			out.WriteString(t.Format("January"))
		case 'Z':
			out.WriteString(t.Format("MST"))
		case 'z':
			out.WriteString(t.Format("-0700"))
		case 'j':
			fmt.Fprintf(&out, "%03d", t.YearDay())
		case 'p':
			out.WriteString(t.Format("PM"))
		case 'P':
			out.WriteString(strings.ToLower(t.Format("PM")))
		case 'w':
			out.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'u':
			day := int(t.Weekday())
			if day == 0 {
				day = 7
			}
			out.WriteString(strconv.Itoa(day))
		case 'F':
			out.WriteString(t.Format("2006-01-02"))
		case 'T':
			out.WriteString(t.Format("15:04:05"))
		case 'D':
			out.WriteString(t.Format("01/02/06"))
		case 'R':
			out.WriteString(t.Format("15:04"))
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
	return out.String()
}

// parseDateString understands the date strings accepted by date -d.
func parseDateString(value string, now time.Time) (time.Time, error) {
	switch value = strings.TrimSpace(value); {
	case value == "" || value == "now":
		return now, nil
	case value == "today":
		return now, nil
	case value == "yesterday":
		return now.AddDate(0, 0, -1), nil
	case value == "tomorrow":
		return now.AddDate(0, 0, 1), nil
	case strings.HasPrefix(value, "@"):
		secs, err := strconv.ParseInt(value[1:], 10, 64)
		if err != nil {
			break
		}
		return time.Unix(secs, 0).In(now.Location()), nil
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		time.UnixDate,
	} {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s'", value)
}

// Date implements the POSIX date command, it can't set the time.
func Date(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "date [OPTION]... [+FORMAT]",
		Short: "Display the current time in the given FORMAT.",
	}
	dateString := cmd.Flags().StringLong("date", 'd', "", "display time described by STRING, not 'now'")
	utc := cmd.Flags().BoolLong("utc", 'u', "print Coordinated Universal Time (UTC)")

	return cmd.Run(virtOS, func() int {
		format := dateDefaultFormat
		for _, arg := range cmd.Flags().Args() {
			if !strings.HasPrefix(arg, "+") {
				fmt.Fprintf(virtOS.Stderr(), "date: invalid date '%s'\n", arg)
				return 1
			}
			format = arg[1:]
		}

		now := virtOS.Now()
		if *utc {
			now = now.UTC()
		}
		t, err := parseDateString(*dateString, now)
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "date: %v\n", err)
			return 1
		}

		fmt.Fprintln(virtOS.Stdout(), Strftime(format, t))
		return 0
	})
}

var _ vos.ProcessFunc = Date

func init() {
	mustAddBinCmd("date", Date)
}
