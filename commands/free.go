package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

const (
	memTotalKB = 1048576
	memUsedKB  = 65536
	memFreeKB  = 983040
)

// Free implements a fake free command.
func Free(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "free [OPTION]...",
		Short: "Display amount of free and used memory in the system.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	humanSize := cmd.Flags().BoolLong("human", 'h', "print human readable sizes")
	mebi := cmd.Flags().BoolLong("mebi", 'm', "show output in mebibytes")
	gibi := cmd.Flags().BoolLong("gibi", 'g', "show output in gibibytes")
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()

		if *humanSize {
			fmt.Fprintln(w, "               total        used        free      shared  buff/cache   available")
			fmt.Fprintln(w, "Mem:           1.0Gi        64Mi       900Mi       0.0Ki        50Mi       950Mi")
			fmt.Fprintln(w, "Swap:            0.0Ki       0.0Ki       0.0Ki")
			return 0
		}

		divisor := 1
		switch {
		case *gibi:
			divisor = 1024 * 1024
		case *mebi:
			divisor = 1024
		}

		fmt.Fprintln(w, "               total        used        free      shared  buff/cache   available")
		fmt.Fprintf(w, "Mem:        %12d %12d %12d            0            0 %12d\n",
			memTotalKB/divisor, memUsedKB/divisor, memFreeKB/divisor, memFreeKB/divisor)
		fmt.Fprintln(w, "Swap:                  0            0            0")
		return 0
	})
}

var _ vos.ProcessFunc = Free

func init() {
	mustAddUsrBinCmd("free", Free)
}
