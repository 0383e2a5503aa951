package vos

import (
	"io"
)

// emptyStdin is the input of a command with nothing piped into it.
type emptyStdin struct{}

var _ io.Reader = emptyStdin{}

func (emptyStdin) Read([]byte) (int, error) {
	return 0, io.EOF
}

// ReadAllStdin returns the whole input of the command.
func ReadAllStdin(virtOS VOS) string {
	if !virtOS.HasStdin() {
		return ""
	}
	b, _ := io.ReadAll(virtOS.Stdin())
	return string(b)
}
