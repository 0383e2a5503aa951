package commands

import (
	"testing"
)

func TestId(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":    {Args: []string{"id"}},
		"user":      {Args: []string{"id", "-u"}},
		"user-name": {Args: []string{"id", "-un"}},
	}

	cases.Run(t, Id)
}
