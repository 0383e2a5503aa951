package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoami(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"whoami"}},
	}

	cases.Run(t, Whoami)
}

func TestWhoami_followsEnvironment(t *testing.T) {
	cmd := newTestCommand(Whoami, "whoami")
	cmd.Env = []string{"USER=root"}

	require.NoError(t, cmd.Run())
	assert.Equal(t, "root\n", cmd.Output)
}
