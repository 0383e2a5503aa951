package shell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAliasLoop is returned when alias expansion doesn't terminate.
var ErrAliasLoop = errors.New("alias loop detected")

// AliasLoopError describes the aliases that formed a loop.
type AliasLoopError struct {
	Name  string
	Chain []string
}

func (e *AliasLoopError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", e.Name, ErrAliasLoop, strings.Join(e.Chain, " -> "))
}

// Unwrap allows errors.Is(err, ErrAliasLoop).
func (e *AliasLoopError) Unwrap() error {
	return ErrAliasLoop
}
