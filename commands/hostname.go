package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

const hostnameFile = "/etc/hostname"

// currentHostname reads /etc/hostname, falling back to the configured name.
func currentHostname(virtOS vos.VOS) string {
	if content, err := virtOS.FS().Read(hostnameFile); err == nil {
		if host := strings.TrimSpace(content); host != "" {
			return host
		}
	}
	return virtOS.Hostname()
}

// Hostname implements the Linux command by the same name.
func Hostname(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "hostname [hostname]",
		Short: "Get or set the system's hostname.",

		// Never bail, even if flags are bad.
		NeverBail: true,
	}

	return cmd.Run(virtOS, func() int {
		if args := cmd.Flags().Args(); len(args) > 0 {
			if err := virtOS.FS().Write(hostnameFile, args[0]+"\n"); err != nil {
				fmt.Fprintf(virtOS.Stderr(), "hostname: %s\n", describe(err))
				return 1
			}
			return 0
		}

		fmt.Fprintln(virtOS.Stdout(), currentHostname(virtOS))
		return 0
	})
}

var _ vos.ProcessFunc = Hostname

func init() {
	mustAddBinCmd("hostname", Hostname)
}
