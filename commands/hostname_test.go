package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostname(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg": {Args: []string{"hostname"}},
	}

	cases.Run(t, Hostname)
}

func TestHostname_set(t *testing.T) {
	cmd := newTestCommand(Hostname, "hostname", "box")
	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)

	content, err := cmd.Engine().FS().Read("/etc/hostname")
	require.NoError(t, err)
	assert.Equal(t, "box\n", content)

	res := cmd.Engine().Invoke("uname", []string{"-n"}, nil)
	assert.Equal(t, "box\n", res.Output)
}
