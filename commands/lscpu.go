package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/mathshell/core/vos"
)

// cpuCount matches nproc.
const cpuCount = 4

// Lscpu describes the virtual machine's processors, consistent with uname
// and nproc.
func Lscpu(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "lscpu [OPTION...]",
		Short: "Display information about the CPU architecture.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		uname := virtOS.Uname()
		w := tabwriter.NewWriter(virtOS.Stdout(), 0, 8, 1, ' ', 0)
		defer w.Flush()

		for _, row := range [][2]string{
			{"Architecture:", uname.Machine},
			{"  CPU op-mode(s):", "32-bit"},
			{"  Byte Order:", "Little Endian"},
			{"CPU(s):", fmt.Sprint(cpuCount)},
			{"  On-line CPU(s) list:", fmt.Sprintf("0-%d", cpuCount-1)},
			{"Vendor ID:", uname.Sysname},
			{"  Model name:", uname.OperatingSystem + " virtual CPU"},
			{"    Thread(s) per core:", "1"},
			{"    Core(s) per socket:", fmt.Sprint(cpuCount)},
			{"    Socket(s):", "1"},
			{"NUMA:", ""},
			{"  NUMA node(s):", "1"},
			{"  NUMA node0 CPU(s):", fmt.Sprintf("0-%d", cpuCount-1)},
		} {
			fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
		}
		return 0
	})
}

var _ vos.ProcessFunc = Lscpu

func init() {
	mustAddUsrBinCmd("lscpu", Lscpu)
}
