package commands

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

const statTimeLayout = "2006-01-02 15:04:05"

// inodeNumber derives a stable fake inode from the path.
func inodeNumber(p string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(p))
	return h.Sum32() % 100000
}

func statBlocks(n *vfs.Node) int {
	if n.Size == 0 {
		return 8
	}
	return (n.Size + 511) / 512
}

func statFileType(n *vfs.Node) string {
	switch {
	case n.IsDir():
		return "directory"
	case n.Symlink != "":
		return "symbolic link"
	case n.Size == 0:
		return "regular empty file"
	default:
		return "regular file"
	}
}

// formatStat expands the %-sequences of a stat -c format.
func formatStat(virtOS vos.VOS, format, name, abs string, n *vfs.Node) string {
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			out.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'n':
			out.WriteString(name)
		case 'N':
			out.WriteString("'" + name + "'")
		case 's':
			out.WriteString(strconv.Itoa(n.Size))
		case 'y':
			out.WriteString(n.Mtime.Format(statTimeLayout))
		case 'Y':
			out.WriteString(strconv.FormatInt(n.Mtime.Unix(), 10))
		case 'f', 'F':
			out.WriteString(statFileType(n))
		case 'i':
			out.WriteString(strconv.FormatUint(uint64(inodeNumber(abs)), 10))
		case 'b':
			out.WriteString(strconv.Itoa(statBlocks(n)))
		case 'a':
			out.WriteString(strconv.FormatUint(uint64(n.Perm().Perm()), 8))
		case 'A':
			out.WriteString(modeString(n))
		case 'U':
			out.WriteString(ownerName(virtOS, n.Owner))
		case 'G':
			out.WriteString(ownerName(virtOS, n.Group))
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteByte(format[i])
		}
	}
	return out.String()
}

// Stat implements a subset of the coreutils stat command.
func Stat(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "stat [OPTION]... FILE...",
		Short: "Display file status.",
	}
	format := cmd.Flags().StringLong("format", 'c', "", "use the specified FORMAT instead of the default")

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		if len(files) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "stat: missing operand")
			return 1
		}

		w := virtOS.Stdout()
		exitCode := 0
		for _, name := range files {
			abs := virtOS.Resolve(name)
			n, err := virtOS.FS().Stat(abs)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "stat: cannot stat '%s': %s\n", name, vfs.Describe(err))
				exitCode = 1
				continue
			}

			if *format != "" {
				fmt.Fprintln(w, formatStat(virtOS, *format, name, abs, n))
				continue
			}

			fmt.Fprintf(w, "  File: %s\n", abs)
			fmt.Fprintf(w, "  Size: %d\tBlocks: %d\t%s\n", n.Size, statBlocks(n), statFileType(n))
			fmt.Fprintf(w, "Device: mashfs\tInode: %d\tLinks: 1\n", inodeNumber(abs))
			fmt.Fprintf(w, "Access: (%04o/%s)\tUid: ( 1000/%8s)\tGid: ( 1000/%8s)\n",
				n.Perm().Perm(), modeString(n), ownerName(virtOS, n.Owner), ownerName(virtOS, n.Group))
			fmt.Fprintf(w, "Modify: %s\n", n.Mtime.Format(statTimeLayout))
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Stat

func init() {
	mustAddBinCmd("stat", Stat)
}
