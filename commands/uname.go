package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// Uname implements the POSIX command by the same name.
func Uname(virtOS vos.VOS) int {
	opts := getopt.New()
	showAll := opts.BoolLong("all", 'a', "print all information")
	showKernelName := opts.BoolLong("kernel-name", 's', "print the kernel name")
	showNodename := opts.BoolLong("nodename", 'n', "print the network node name")
	showRelease := opts.BoolLong("kernel-release", 'r', "print the kernel release")
	showVersion := opts.BoolLong("kernel-version", 'v', "print the kernel version")
	showMachine := opts.BoolLong("machine", 'm', "print the machine name")
	showProcessor := opts.BoolLong("processor", 'p', "print the processor type")
	showOS := opts.BoolLong("operating-system", 'o', "print the operating system")
	showHelp := opts.BoolLong("help", 'h', "show help")

	w := virtOS.Stdout()
	if err := opts.Getopt(virtOS.Args(), nil); err != nil || *showHelp {
		if err != nil {
			virtOS.LogInvalidInvocation(err)
			fmt.Fprintf(w, "uname: %s\n", err)
		}
		fmt.Fprintln(w, "usage: uname [OPTIONS...]")
		fmt.Fprintln(w, "Display system information.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		opts.PrintOptions(w)
		if err != nil {
			return 2
		}
		return 0
	}

	uname := virtOS.Uname()
	uname.Nodename = currentHostname(virtOS)

	var fields []string
	for _, entry := range []struct {
		flag     *bool
		property string
	}{
		{showKernelName, uname.Sysname},
		{showNodename, uname.Nodename},
		{showRelease, uname.Release},
		{showVersion, uname.Version},
		{showMachine, uname.Machine},
		{showProcessor, uname.Processor},
		{showOS, uname.OperatingSystem},
	} {
		if *entry.flag || *showAll {
			fields = append(fields, entry.property)
		}
	}
	if len(fields) == 0 {
		fields = append(fields, uname.Sysname)
	}
	fmt.Fprintln(w, strings.Join(fields, " "))
	return 0
}

var _ vos.ProcessFunc = Uname

func init() {
	mustAddBinCmd("uname", Uname)
}
