package commands

import (
	"testing"
)

func TestUptime(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"uptime"}},
		"pretty": {Args: []string{"uptime", "-p"}},
		"since":  {Args: []string{"uptime", "-s"}},
	}

	cases.Run(t, Uptime)
}
