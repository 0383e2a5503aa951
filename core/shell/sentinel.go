package shell

import (
	"strconv"
	"strings"
)

// Sentinels are outputs that ask the host to act outside the shell.
const (
	// SentinelClear asks the host to clear the screen.
	SentinelClear = "__CLEAR__"
	// SentinelExit asks the host to end the session, it's followed by the
	// decimal exit code.
	SentinelExit = "__EXIT__"
	// SentinelWipeFS asks the host to erase the filesystem and its
	// persisted copy.
	SentinelWipeFS = "__WIPEFS__"
)

// SentinelKind identifies a sentinel.
type SentinelKind int

const (
	SentinelNone SentinelKind = iota
	SentinelKindClear
	SentinelKindExit
	SentinelKindWipeFS
)

func (k SentinelKind) String() string {
	switch k {
	case SentinelKindClear:
		return "clear"
	case SentinelKindExit:
		return "exit"
	case SentinelKindWipeFS:
		return "wipe-fs"
	default:
		return "none"
	}
}

var sentinels = []struct {
	prefix string
	kind   SentinelKind
}{
	{SentinelClear, SentinelKindClear},
	{SentinelExit, SentinelKindExit},
	{SentinelWipeFS, SentinelKindWipeFS},
}

// HasSentinelPrefix returns true if output starts with a sentinel.
func HasSentinelPrefix(output string) bool {
	for _, s := range sentinels {
		if strings.HasPrefix(output, s.prefix) {
			return true
		}
	}
	return false
}

// ParseSentinel reads the sentinel output begins with. It returns the kind
// and, for SentinelKindExit, the exit code. A sentinel anywhere but the start
// is ordinary text.
func ParseSentinel(output string) (kind SentinelKind, code int) {
	for _, s := range sentinels {
		if strings.HasPrefix(output, s.prefix) {
			kind = s.kind
			break
		}
	}

	if kind == SentinelKindExit {
		rest := output[len(SentinelExit):]
		end := 0
		if end < len(rest) && rest[end] == '-' {
			end++
		}
		for end < len(rest) && '0' <= rest[end] && rest[end] <= '9' {
			end++
		}
		code, _ = strconv.Atoi(rest[:end])
	}
	return kind, code
}

// ExitSentinel formats the exit sentinel for a code.
func ExitSentinel(code int) string {
	return SentinelExit + strconv.Itoa(code)
}
