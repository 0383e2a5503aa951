package commands

import (
	"fmt"
	"io/fs"
	"math/rand"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// pathBase is basename(1) without suffix removal: trailing slashes are
// ignored and "/" stays "/".
func pathBase(name string) string {
	trimmed := strings.TrimRight(name, "/")
	switch {
	case trimmed == "" && name != "":
		return "/"
	case trimmed == "":
		return ""
	}
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}

// pathDir is dirname(1).
func pathDir(name string) string {
	trimmed := strings.TrimRight(name, "/")
	if trimmed == "" {
		if name == "" {
			return "."
		}
		return "/"
	}
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "."
	}
	dir := strings.TrimRight(trimmed[:i], "/")
	if dir == "" {
		return "/"
	}
	return dir
}

// Basename strips directory and suffix from file names.
func Basename(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "basename NAME [SUFFIX]",
		Short: "Print NAME with any leading directory components removed.",
	}
	flags := cmd.Flags()
	multiple := flags.BoolLong("multiple", 'a', "support multiple arguments and treat each as a NAME")
	suffix := flags.StringLong("suffix", 's', "", "remove a trailing SUFFIX, implies -a")
	zero := flags.BoolLong("zero", 'z', "end each output line with NUL, not newline")

	return cmd.Run(virtOS, func() int {
		names := flags.Args()
		switch {
		case len(names) == 0:
			fmt.Fprintln(virtOS.Stderr(), "basename: missing operand")
			return 1
		case *suffix == "" && !*multiple && len(names) == 2:
			*suffix = names[1]
			names = names[:1]
		case *suffix == "" && !*multiple && len(names) > 2:
			fmt.Fprintf(virtOS.Stderr(), "basename: extra operand '%s'\n", names[2])
			return 1
		}

		end := "\n"
		if *zero {
			end = "\x00"
		}
		for _, name := range names {
			base := pathBase(name)
			if *suffix != "" && base != *suffix {
				base = strings.TrimSuffix(base, *suffix)
			}
			fmt.Fprint(virtOS.Stdout(), base+end)
		}
		return 0
	})
}

// Dirname strips the last component from file names.
func Dirname(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "dirname NAME...",
		Short: "Output each NAME with its last non-slash component and trailing slashes removed.",
	}
	zero := cmd.Flags().BoolLong("zero", 'z', "end each output line with NUL, not newline")

	return cmd.Run(virtOS, func() int {
		names := cmd.Flags().Args()
		if len(names) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "dirname: missing operand")
			return 1
		}

		end := "\n"
		if *zero {
			end = "\x00"
		}
		for _, name := range names {
			fmt.Fprint(virtOS.Stdout(), pathDir(name)+end)
		}
		return 0
	})
}

// canonicalize resolves name against the working directory, following
// simulated links. mustExist controls which components must exist: "all",
// "parent" or "none".
func canonicalize(virtOS vos.VOS, name, mustExist string) (string, error) {
	fsys := virtOS.FS()
	p := virtOS.Resolve(name)
	for hops := 0; hops < 40; hops++ {
		node, err := fsys.Stat(p)
		if err != nil || node.Symlink == "" {
			break
		}
		p = fsys.Resolve(node.Symlink, vfs.Dir(p))
	}

	switch mustExist {
	case "all":
		if !fsys.Exists(p) {
			return "", fileError(name, fs.ErrNotExist)
		}
	case "parent":
		if !fsys.IsDir(vfs.Dir(p)) {
			return "", fileError(name, fs.ErrNotExist)
		}
	}
	return p, nil
}

// Readlink prints the target of a link, or a canonical path with -f.
func Readlink(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "readlink [OPTION]... FILE...",
		Short: "Print value of a symbolic link or canonical file name.",
	}
	flags := cmd.Flags()
	canonical := flags.BoolLong("canonicalize", 'f', "canonicalize, all but the last component must exist")
	existing := flags.BoolLong("canonicalize-existing", 'e', "canonicalize, all components must exist")
	missing := flags.BoolLong("canonicalize-missing", 'm', "canonicalize without requirements on components existence")
	noNewline := flags.BoolLong("no-newline", 'n', "do not output the trailing delimiter")
	quiet := flags.BoolLong("quiet", 'q', "suppress most error messages")
	flags.BoolLong("silent", 's', "suppress most error messages")
	verbose := flags.BoolLong("verbose", 'v', "report error messages")

	return cmd.Run(virtOS, func() int {
		names := flags.Args()
		if len(names) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "readlink: missing operand")
			return 1
		}

		mode := ""
		switch {
		case *existing:
			mode = "all"
		case *canonical:
			mode = "parent"
		case *missing:
			mode = "none"
		}

		exitCode := 0
		for i, name := range names {
			var out string
			var err error
			if mode != "" {
				out, err = canonicalize(virtOS, name, mode)
			} else {
				var node *vfs.Node
				node, err = virtOS.FS().Stat(virtOS.Resolve(name))
				switch {
				case err != nil:
					err = fileError(name, err)
				case node.Symlink == "":
					err = &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
				}
				if node != nil {
					out = node.Symlink
				}
			}
			if err != nil {
				if *verbose && !*quiet {
					cmd.LogProgramError(virtOS, err)
				}
				exitCode = 1
				continue
			}

			end := "\n"
			if *noNewline && len(names) == 1 && i == 0 {
				end = ""
			}
			fmt.Fprint(virtOS.Stdout(), out+end)
		}
		return exitCode
	})
}

// Realpath prints resolved absolute file names.
func Realpath(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "realpath [OPTION]... FILE...",
		Short: "Print the resolved absolute file name.",
	}
	flags := cmd.Flags()
	existing := flags.BoolLong("canonicalize-existing", 'e', "all components of the path must exist")
	missing := flags.BoolLong("canonicalize-missing", 'm', "no path components need exist or be a directory")
	quiet := flags.BoolLong("quiet", 'q', "suppress most error messages")
	relativeTo := flags.StringLong("relative-to", 0, "", "print the resolved path relative to DIR")

	return cmd.Run(virtOS, func() int {
		names := flags.Args()
		if len(names) == 0 {
			fmt.Fprintln(virtOS.Stderr(), "realpath: missing operand")
			return 1
		}

		// The file itself must exist unless -m is given.
		mode := "all"
		if *missing && !*existing {
			mode = "none"
		}

		exitCode := 0
		for _, name := range names {
			p, err := canonicalize(virtOS, name, mode)
			if err != nil {
				if !*quiet {
					cmd.LogProgramError(virtOS, err)
				}
				exitCode = 1
				continue
			}
			if *relativeTo != "" {
				p = relativePath(virtOS.Resolve(*relativeTo), p)
			}
			fmt.Fprintln(virtOS.Stdout(), p)
		}
		return exitCode
	})
}

// relativePath expresses target relative to base, both must be clean and
// absolute.
func relativePath(base, target string) string {
	split := func(p string) []string {
		if p == "/" {
			return nil
		}
		return strings.Split(strings.TrimPrefix(p, "/"), "/")
	}
	b, t := split(base), split(target)
	common := 0
	for common < len(b) && common < len(t) && b[common] == t[common] {
		common++
	}

	var parts []string
	for range b[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, t[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}

const mktempChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Mktemp creates a uniquely named file or directory.
func Mktemp(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "mktemp [OPTION]... [TEMPLATE]",
		Short: "Create a temporary file or directory, safely, and print its name.",
	}
	flags := cmd.Flags()
	dir := flags.BoolLong("directory", 'd', "create a directory, not a file")
	dryRun := flags.BoolLong("dry-run", 'u', "do not create anything, merely print a name")
	quiet := flags.BoolLong("quiet", 'q', "suppress diagnostics about file/dir-creation failure")
	tmpdir := flags.StringLong("tmpdir", 'p', "", "interpret TEMPLATE relative to DIR")
	useTmp := flags.Bool('t', "interpret TEMPLATE relative to $TMPDIR or /tmp")

	return cmd.Run(virtOS, func() int {
		args := flags.Args()
		if len(args) > 1 {
			fmt.Fprintf(virtOS.Stderr(), "mktemp: too many templates\n")
			return 1
		}

		template := "tmp.XXXXXXXXXX"
		inTmp := true
		if len(args) == 1 {
			template = args[0]
			inTmp = *useTmp || *tmpdir != ""
		}
		if inTmp {
			base := *tmpdir
			if base == "" {
				base = virtOS.Getenv("TMPDIR")
			}
			if base == "" {
				base = "/tmp"
			}
			template = vfs.Join(base, template)
		}

		xs := len(template) - len(strings.TrimRight(template, "X"))
		if xs < 3 {
			fmt.Fprintf(virtOS.Stderr(), "mktemp: too few X's in template '%s'\n", template)
			return 1
		}

		fsys := virtOS.FS()
		rng := rand.New(rand.NewSource(virtOS.Now().UnixNano()))
		prefix := template[:len(template)-xs]
		for attempt := 0; attempt < 100; attempt++ {
			suffix := make([]byte, xs)
			for i := range suffix {
				suffix[i] = mktempChars[rng.Intn(len(mktempChars))]
			}
			name := prefix + string(suffix)
			p := virtOS.Resolve(name)
			if fsys.Exists(p) {
				continue
			}

			var err error
			switch {
			case *dryRun:
			case *dir:
				err = fsys.Mkdir(p)
			default:
				err = fsys.Write(p, "")
			}
			if err != nil {
				if !*quiet {
					kind := "file"
					if *dir {
						kind = "directory"
					}
					fmt.Fprintf(virtOS.Stderr(), "mktemp: failed to create %s via template '%s': %s\n",
						kind, template, describe(fileError(name, err)))
				}
				return 1
			}
			fmt.Fprintln(virtOS.Stdout(), name)
			return 0
		}

		fmt.Fprintf(virtOS.Stderr(), "mktemp: failed to create file via template '%s'\n", template)
		return 1
	})
}

var _ vos.ProcessFunc = Basename
var _ vos.ProcessFunc = Dirname
var _ vos.ProcessFunc = Readlink
var _ vos.ProcessFunc = Realpath
var _ vos.ProcessFunc = Mktemp

func init() {
	mustAddUsrBinCmd("basename", Basename)
	mustAddUsrBinCmd("dirname", Dirname)
	mustAddUsrBinCmd("readlink", Readlink)
	mustAddUsrBinCmd("realpath", Realpath)
	mustAddUsrBinCmd("mktemp", Mktemp)
}
