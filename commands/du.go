package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// duBlocks converts a byte count into 1K blocks, every entry takes at least
// one 4K block.
func duBlocks(size int) int {
	kb := (size + 1023) / 1024
	if kb < 4 {
		return 4
	}
	return kb
}

// Du implements a subset of the coreutils du command.
func Du(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "du [OPTION]... [FILE]...",
		Short: "Summarize disk usage of the set of FILEs, recursively for directories.",
	}
	human := cmd.Flags().BoolLong("human-readable", 'h', "print sizes in human readable format")
	summarize := cmd.Flags().BoolLong("summarize", 's', "display only a total for each argument")
	all := cmd.Flags().BoolLong("all", 'a', "write counts for all files, not just directories")
	cmd.ShowHelp = cmd.Flags().BoolLong("help", 0, "show this help and exit")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		format := func(size int) string {
			blocks := duBlocks(size)
			if *human {
				return BytesToHuman(int64(blocks) * 1024)
			}
			return strconv.Itoa(blocks)
		}

		targets := cmd.Flags().Args()
		if len(targets) == 0 {
			targets = []string{"."}
		}

		exitCode := 0
		for _, target := range targets {
			root := virtOS.Resolve(target)
			node, err := virtOS.FS().Stat(root)
			if err != nil {
				fmt.Fprintf(virtOS.Stderr(), "du: cannot access '%s': %s\n", target, vfs.Describe(err))
				exitCode = 1
				continue
			}
			if !node.IsDir() {
				fmt.Fprintf(w, "%s\t%s\n", format(node.Size), target)
				continue
			}

			display := func(p string) string {
				rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
				return strings.TrimSuffix(target, "/") + "/" + rel
			}

			// Sizes of every directory in the tree, including nested files.
			dirSizes := make(map[string]int)
			type duEntry struct {
				path string
				node *vfs.Node
			}
			var entries []duEntry
			virtOS.FS().Walk(root, func(p string, n *vfs.Node) error {
				entries = append(entries, duEntry{p, n})
				if n.IsDir() {
					return nil
				}
				for dir := vfs.Dir(p); vfs.IsWithin(dir, root); dir = vfs.Dir(dir) {
					dirSizes[dir] += n.Size
					if dir == root {
						break
					}
				}
				return nil
			})

			if !*summarize {
				for _, e := range entries {
					switch {
					case e.path == root:
					case e.node.IsDir():
						fmt.Fprintf(w, "%s\t%s\n", format(dirSizes[e.path]), display(e.path))
					case *all:
						fmt.Fprintf(w, "%s\t%s\n", format(e.node.Size), display(e.path))
					}
				}
			}
			fmt.Fprintf(w, "%s\t%s\n", format(dirSizes[root]), target)
		}
		return exitCode
	})
}

var _ vos.ProcessFunc = Du

func init() {
	mustAddBinCmd("du", Du)
}
