package commands

import (
	"fmt"

	"github.com/josephlewis42/mathshell/core/vos"
)

// Df reports the fixed size of the virtual filesystem.
func Df(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "df [OPTION]... [FILE]...",
		Short: "Show information about the file system.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	humanSize := cmd.Flags().BoolLong("human-readable", 'h', "print sizes in powers of 1024")
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show help and exit")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		if *humanSize {
			fmt.Fprintln(w, "Filesystem      Size  Used Avail Use% Mounted on")
			fmt.Fprintln(w, "mashfs          1.0G  256K  1.0G   1% /")
		} else {
			fmt.Fprintln(w, "Filesystem     1K-blocks  Used Available Use% Mounted on")
			fmt.Fprintln(w, "mashfs           1048576   256   1048320   1% /")
		}
		return 0
	})
}

var _ vos.ProcessFunc = Df

func init() {
	mustAddBinCmd("df", Df)
}
