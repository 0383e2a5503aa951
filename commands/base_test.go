package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/josephlewis42/mathshell/core/vos/vostest"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleBytesToHuman() {

	// < 1k is presented directly
	fmt.Println(BytesToHuman(512))

	// Multiples > 10 are shown without decimal.
	fmt.Println(BytesToHuman(23 * 1 << 30))

	// Multiples < 10 are shown with decimal.
	fmt.Println(BytesToHuman(5*1024 + 100))

	// Output: 512
	// 23G
	// 5.1K
}

func TestAllCommands(t *testing.T) {
	for _, cmdEntry := range ListBuiltinCommands() {
		t.Run(strings.Join(cmdEntry.Names, ","), func(t *testing.T) {
			if cmdEntry.Proc == nil {
				t.Fatal("nil command", cmdEntry.Names)
			}
		})
	}
}

func TestBuiltinProcessResolver(t *testing.T) {
	cases := []struct {
		name     string
		wantPath string
		found    bool
	}{
		{"ls", "/bin/ls", true},
		{"grep", "/usr/bin/grep", true},
		{"/usr/bin/sort", "/usr/bin/sort", true},
		{"/bin/../usr/bin/wc", "/usr/bin/wc", true},
		{"[", "/bin/[", true},
		{"./ls", "", false},
		{"no-such-command", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotPath, proc := BuiltinProcessResolver(tc.name)
			assert.Equal(t, tc.found, proc != nil)
			if tc.found {
				assert.Equal(t, tc.wantPath, gotPath)
			}
		})
	}
}

func TestListBuiltinCommands_groupsAliases(t *testing.T) {
	var pagers, noops []string
	for _, entry := range ListBuiltinCommands() {
		if len(entry.Names) > 1 && entry.Names[0] == "/bin/cat" {
			pagers = entry.Names
		}
		for _, name := range entry.Names {
			if name == "/bin/true" {
				noops = entry.Names
			}
		}
	}

	assert.Equal(t, []string{"/bin/cat", "/bin/less", "/bin/more"}, pagers)
	assert.Equal(t, []string{"/bin/true"}, noops)
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
	// Stdin is the command's input, empty means none.
	Stdin string
	// Files are created relative to the home directory before running.
	Files map[string]string
}

func (gts goldenTestSuite) Run(t *testing.T, cmd vos.ProcessFunc) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		tc := tc
		t.Run(tn, func(t *testing.T) {
			cmd := vostest.Command(cmd, tc.Args[0], tc.Args[1:]...)
			cmd.Resolver = BuiltinProcessResolver
			cmd.Dir = vostest.Home
			if tc.Stdin != "" {
				cmd.WithStdin(tc.Stdin)
			}
			if tc.Files != nil {
				cmd.Setup = vostest.WriteFiles(tc.Files)
			}
			out, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, out)
		})
	}
}

// commandTest is a single invocation checked against its exact output.
type commandTest struct {
	name     string
	args     []string
	stdin    *string
	files    map[string]string
	want     string
	wantCode int

	// wantSentinel is what the command should raise.
	wantSentinel string
}

func stdin(s string) *string {
	return &s
}

// runCommandTests runs each case in a fresh system with every builtin
// available, starting in the home directory.
func runCommandTests(t *testing.T, proc vos.ProcessFunc, cases []commandTest) {
	t.Helper()

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cmd := vostest.Command(proc, tc.args[0], tc.args[1:]...)
			cmd.Resolver = BuiltinProcessResolver
			cmd.Dir = vostest.Home
			cmd.Stdin = tc.stdin
			if tc.files != nil {
				cmd.Setup = vostest.WriteFiles(tc.files)
			}

			require.NoError(t, cmd.Run())
			assert.Equal(t, tc.want, cmd.Output)
			assert.Equal(t, tc.wantCode, cmd.ExitStatus, "exit code")
			assert.Equal(t, tc.wantSentinel, cmd.Sentinel, "sentinel")
		})
	}
}

// newTestCommand prepares proc to run in the home directory with every
// builtin available.
func newTestCommand(proc vos.ProcessFunc, name string, args ...string) *vostest.Cmd {
	cmd := vostest.Command(proc, name, args...)
	cmd.Resolver = BuiltinProcessResolver
	cmd.Dir = vostest.Home
	return cmd
}

// writeTestFiles creates files relative to the working directory.
func writeTestFiles(files map[string]string) func(vos.VOS) error {
	return vostest.WriteFiles(files)
}
