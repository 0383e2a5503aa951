package commands

import (
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"sort"
	"strings"
	"text/tabwriter"

	fcolor "github.com/fatih/color"
	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// lsEntry is a single name to display along with the node it refers to.
type lsEntry struct {
	name string
	path string
	node *vfs.Node
}

type lsOptions struct {
	listAll   bool
	long      bool
	classify  bool
	recursive bool
	bySize    bool
	byTime    bool
	reverse   bool
	onePer    bool
	width     int
	sizeFmt   func(int64) string
	color     *ColorPrinter
	virtOS    vos.VOS
}

// Ls implements the UNIX ls command.
func Ls(virtOS vos.VOS) int {
	opts := getopt.New()
	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")
	classify := opts.BoolLong("classify", 'F', "append indicator (one of */@) to entries")
	recursive := opts.BoolLong("recursive", 'R', "list subdirectories recursively")
	humanSize := opts.BoolLong("human-readable", 'h', "print human readable sizes")
	bySize := opts.Bool('S', "sort by file size, largest first")
	byTime := opts.Bool('t', "sort by modification time, newest first")
	reverse := opts.BoolLong("reverse", 'r', "reverse order while sorting")
	onePer := opts.Bool('1', "list one file per line")
	lineWidth := opts.IntLong("width", 'w', virtOS.GetPTY().Width, "set the column width, 0 is infinite")
	helpOpt := opts.BoolLong("help", '?', "show help and exit")

	var color ColorPrinter
	color.Init(opts, virtOS)

	if err := opts.Getopt(virtOS.Args(), nil); err != nil || *helpOpt {
		w := virtOS.Stdout()
		if err != nil {
			virtOS.LogInvalidInvocation(err)
			fmt.Fprintf(w, "ls: %v\n", err)
		}
		fmt.Fprintln(w, "Usage: ls [OPTION]... [FILE]...")
		fmt.Fprintln(w, "List information about the FILEs (the current directory by default).")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		opts.PrintOptions(w)
		if err != nil {
			return 2
		}
		return 0
	}

	lo := &lsOptions{
		listAll:   *listAll,
		long:      *longListing,
		classify:  *classify,
		recursive: *recursive,
		bySize:    *bySize,
		byTime:    *byTime,
		reverse:   *reverse,
		onePer:    *onePer,
		width:     *lineWidth,
		sizeFmt:   func(bytes int64) string { return fmt.Sprintf("%d", bytes) },
		color:     &color,
		virtOS:    virtOS,
	}
	if *humanSize {
		lo.sizeFmt = BytesToHuman
	}
	if lo.width == 0 {
		lo.width = math.MaxInt32
	}

	// Initialize arguments
	targets := opts.Args()
	if len(targets) == 0 {
		targets = append(targets, ".")
	}
	sort.Strings(targets)

	fsys := virtOS.FS()
	w := virtOS.Stdout()
	exitCode := 0

	// Files are listed together before any directory.
	var files []lsEntry
	var dirs []lsEntry
	for _, target := range targets {
		p := virtOS.Resolve(target)
		node, err := fsys.Stat(p)
		if err != nil {
			fmt.Fprintf(w, "ls: cannot access '%s': %s\n", target, vfs.Describe(err))
			exitCode = 1
			continue
		}
		entry := lsEntry{name: target, path: p, node: node}
		if node.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	if len(files) > 0 {
		lo.sortEntries(files)
		lo.printEntries(w, files)
	}

	showDirectoryNames := len(targets) > 1 || lo.recursive
	for i, dir := range dirs {
		if i > 0 || len(files) > 0 {
			fmt.Fprintln(w)
		}
		lo.listDirectory(w, dir.name, dir.path, showDirectoryNames)
	}

	return exitCode
}

func (lo *lsOptions) listDirectory(w io.Writer, name, dir string, showName bool) {
	fsys := lo.virtOS.FS()

	if showName {
		fmt.Fprintf(w, "%s:\n", name)
	}

	var entries []lsEntry
	if lo.listAll {
		for _, special := range []string{".", ".."} {
			p := vfs.Join(dir, special)
			if node, err := fsys.Stat(p); err == nil {
				entries = append(entries, lsEntry{name: special, path: p, node: node})
			}
		}
	}

	children, _ := fsys.Ls(dir)
	for _, child := range children {
		if !lo.listAll && strings.HasPrefix(child, ".") {
			continue
		}
		p := vfs.Join(dir, child)
		node, err := fsys.Stat(p)
		if err != nil {
			continue
		}
		entries = append(entries, lsEntry{name: child, path: p, node: node})
	}

	lo.sortEntries(entries)

	if lo.long {
		var totalSize int64
		for _, e := range entries {
			totalSize += int64(e.node.Size)
		}
		fmt.Fprintf(w, "total %s\n", lo.sizeFmt(totalSize))
	}
	lo.printEntries(w, entries)

	if !lo.recursive {
		return
	}
	for _, e := range entries {
		if e.name == "." || e.name == ".." || !e.node.IsDir() {
			continue
		}
		fmt.Fprintln(w)
		lo.listDirectory(w, path.Join(name, e.name), e.path, true)
	}
}

func (lo *lsOptions) sortEntries(entries []lsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case lo.bySize && a.node.Size != b.node.Size:
			return a.node.Size > b.node.Size
		case lo.byTime && !a.node.Mtime.Equal(b.node.Mtime):
			return a.node.Mtime.After(b.node.Mtime)
		default:
			return a.name < b.name
		}
	})

	if lo.reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
}

func (lo *lsOptions) displayName(e lsEntry) string {
	name := lo.color.Sprintf(Dircolor(e.node, e.name), "%s", e.name)
	if lo.classify {
		name += classifySuffix(e.node)
	}
	return name
}

func (lo *lsOptions) printEntries(w io.Writer, entries []lsEntry) {
	switch {
	case lo.long:
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		for _, e := range entries {
			// Number of hard links is approximated as 2 (self + parent) for a
			// directory.
			hardLinks := 1
			if e.node.IsDir() {
				hardLinks = 2
			}

			// Include time if current year.
			modTime := e.node.Mtime.Format("Jan _2  2006")
			if e.node.Mtime.Year() >= lo.virtOS.Now().Year() {
				modTime = e.node.Mtime.Format("Jan _2 15:04")
			}

			name := lo.displayName(e)
			if e.node.Symlink != "" {
				name += " -> " + e.node.Symlink
			}

			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
				modeString(e.node),
				hardLinks,
				ownerName(lo.virtOS, e.node.Owner),
				ownerName(lo.virtOS, e.node.Group),
				lo.sizeFmt(int64(e.node.Size)),
				modTime,
				name)
		}
		tw.Flush()

	case lo.onePer:
		for _, e := range entries {
			fmt.Fprintln(w, lo.displayName(e))
		}

	default:
		const colPadding = 2
		if len(entries) == 0 {
			return
		}

		colWidths := columnize(entries, lo.width, lo.classify)
		cols := len(colWidths)
		rows := len(entries) / cols
		if len(entries)%cols > 0 {
			rows++
		}

		for row := 0; row < rows; row++ {
			var line strings.Builder
			for col, width := range colWidths {
				index := (col * rows) + row
				if index >= len(entries) {
					break
				}
				// Add padding if there was a column before this.
				if col > 0 {
					line.WriteString(strings.Repeat(" ", colPadding))
				}
				entry := entries[index]
				line.WriteString(lo.displayName(entry))
				// Add padding for alignment.
				if pad := width - displayLength(entry, lo.classify); pad > 0 {
					line.WriteString(strings.Repeat(" ", pad))
				}
			}
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
		}
	}
}

func modeString(n *vfs.Node) string {
	if n.Symlink != "" {
		return "lrwxrwxrwx"
	}
	return n.Perm().String()
}

func classifySuffix(n *vfs.Node) string {
	switch {
	case n.IsDir():
		return "/"
	case n.Symlink != "":
		return "@"
	case n.Perm()&0111 != 0:
		return "*"
	default:
		return ""
	}
}

// ownerName returns the name a file is owned by, files without an explicit
// owner belong to the session user.
func ownerName(virtOS vos.VOS, name string) string {
	if name == "" {
		return virtOS.Username()
	}
	return name
}

type LsColorTest struct {
	color *fcolor.Color
	test  func(n *vfs.Node, name string) bool
}

// Color listing comes from: https://askubuntu.com/a/884513
var dircolors = []LsColorTest{
	// Directories are bold blue.
	{color: ColorBoldBlue, test: func(n *vfs.Node, _ string) bool {
		return n.IsDir()
	}},
	// Symlinks are bold cyan.
	{color: ColorBoldCyan, test: func(n *vfs.Node, _ string) bool {
		return n.Symlink != ""
	}},
	// Executables are bold green.
	{color: ColorBoldGreen, test: func(n *vfs.Node, _ string) bool {
		return n.Perm()&fs.FileMode(0111) > 0
	}},
	// Archives are bold red.
	{color: ColorBoldRed, test: func(_ *vfs.Node, name string) bool {
		return map[string]bool{
			".tar": true,
			".tgz": true,
			".zip": true,
			".gz":  true,
			".bz2": true,
			".bz":  true,
			".tbz": true,
			".deb": true,
			".rpm": true,
			".jar": true,
			".war": true,
			".rar": true,
		}[path.Ext(name)]
	}},
}

// Dircolor picks the color ls displays a node in.
func Dircolor(n *vfs.Node, name string) *fcolor.Color {
	for _, dc := range dircolors {
		if dc.test(n, name) {
			return dc.color
		}
	}

	// Anything else defaults to white.
	return fcolor.New(fcolor.FgHiWhite)
}

func displayLength(e lsEntry, classify bool) int {
	if classify {
		return len(e.name) + len(classifySuffix(e.node))
	}
	return len(e.name)
}

func columnize(entries []lsEntry, screenWidth int, classify bool) []int {
	numFiles := len(entries)
	if numFiles == 0 {
		return []int{0}
	}

	const colPadding = 2

	// Size of the display of the file name, actual length may vary if there are
	// escape sequences to format it.
	displayLengths := make([]int, len(entries))
	for i, e := range entries {
		displayLengths[i] = displayLength(e, classify)
	}

	// Start with maximum number of columns and work down until all the data fits.
	// 3 is the minimum column width, 1 char filename + 2 padding.
	columns := screenWidth / (1 + colPadding)
	if columns > numFiles {
		columns = numFiles
	}
	if columns < 1 {
		columns = 1
	}
	var maximums []int // Holds maximum size of a name in the column.
	for ; columns >= 1; columns-- {
		rows := numFiles / columns
		if numFiles%columns > 0 {
			rows++
		}
		// Skip layouts that would leave trailing columns empty.
		if (columns-1)*rows >= numFiles {
			continue
		}

		maximums = make([]int, columns)
		total := (columns - 1) * colPadding
		for i, nameLen := range displayLengths {
			col := i / rows
			if nameLen > maximums[col] {
				total += nameLen - maximums[col]
				maximums[col] = nameLen
			}
		}

		if total <= screenWidth {
			return maximums
		}
	}

	return maximums
}

var _ vos.ProcessFunc = Ls

func init() {
	mustAddBinCmd("ls", Ls)
}
