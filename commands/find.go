package commands

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vfs"
	"github.com/josephlewis42/mathshell/core/vos"
)

// findContext holds everything an expression can see about a visited node.
type findContext struct {
	virtOS  vos.VOS
	path    string // absolute path
	display string // path as printed
	node    *vfs.Node
}

// findExpr is a compiled find expression, it reports whether the node
// matched.
type findExpr func(ctx *findContext) bool

type findParser struct {
	args      []string
	pos       int
	hasAction bool
	depthLast bool
	maxDepth  int
	minDepth  int
	virtOS    vos.VOS
}

func (p *findParser) peek() string {
	if p.pos < len(p.args) {
		return p.args[p.pos]
	}
	return ""
}

func (p *findParser) next() string {
	arg := p.peek()
	p.pos++
	return arg
}

func (p *findParser) operand(name string) (string, error) {
	if p.pos >= len(p.args) {
		return "", fmt.Errorf("missing argument to `%s'", name)
	}
	return p.next(), nil
}

// parseOr handles: expr [-o expr]...
func (p *findParser) parseOr() (findExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "-o" || p.peek() == "-or" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(ctx *findContext) bool { return l(ctx) || right(ctx) }
	}
	return left, nil
}

// parseAnd handles: expr [[-a] expr]...
func (p *findParser) parseAnd() (findExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.pos < len(p.args) {
		switch p.peek() {
		case "-o", "-or", ")":
			return left, nil
		case "-a", "-and":
			p.next()
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(ctx *findContext) bool { return l(ctx) && right(ctx) }
	}
	return left, nil
}

func (p *findParser) parseNot() (findExpr, error) {
	if p.peek() == "!" || p.peek() == "-not" {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return func(ctx *findContext) bool { return !inner(ctx) }, nil
	}
	return p.parsePrimary()
}

func (p *findParser) parsePrimary() (findExpr, error) {
	arg := p.next()
	switch arg {
	case "(":
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, errors.New("invalid expression; expected ')'")
		}
		return inner, nil

	case "-true":
		return func(*findContext) bool { return true }, nil

	case "-false":
		return func(*findContext) bool { return false }, nil

	case "-name", "-iname":
		pattern, err := p.operand(arg)
		if err != nil {
			return nil, err
		}
		fold := arg == "-iname"
		if fold {
			pattern = strings.ToLower(pattern)
		}
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		return func(ctx *findContext) bool {
			name := vfs.Base(ctx.path)
			if fold {
				name = strings.ToLower(name)
			}
			ok, _ := path.Match(pattern, name)
			return ok
		}, nil

	case "-type":
		kind, err := p.operand(arg)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "f":
			return func(ctx *findContext) bool { return ctx.node.IsFile() && ctx.node.Symlink == "" }, nil
		case "d":
			return func(ctx *findContext) bool { return ctx.node.IsDir() }, nil
		case "l":
			return func(ctx *findContext) bool { return ctx.node.Symlink != "" }, nil
		default:
			return nil, fmt.Errorf("unknown argument to -type: %s", kind)
		}

	case "-size":
		spec, err := p.operand(arg)
		if err != nil {
			return nil, err
		}
		return parseFindSize(spec)

	case "-newer":
		ref, err := p.operand(arg)
		if err != nil {
			return nil, err
		}
		refNode, err := p.virtOS.FS().Stat(p.virtOS.Resolve(ref))
		if err != nil {
			return nil, fmt.Errorf("'%s': %s", ref, vfs.Describe(err))
		}
		return func(ctx *findContext) bool { return ctx.node.Mtime.After(refNode.Mtime) }, nil

	case "-empty":
		return func(ctx *findContext) bool {
			if ctx.node.IsDir() {
				children, _ := ctx.virtOS.FS().Ls(ctx.path)
				return len(children) == 0
			}
			return ctx.node.Size == 0
		}, nil

	case "-maxdepth", "-mindepth":
		value, err := p.operand(arg)
		if err != nil {
			return nil, err
		}
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 0 {
			return nil, fmt.Errorf("expected a positive decimal integer argument to %s, but got `%s'", arg, value)
		}
		if arg == "-maxdepth" {
			p.maxDepth = depth
		} else {
			p.minDepth = depth
		}
		return func(*findContext) bool { return true }, nil

	case "-print", "-print0":
		p.hasAction = true
		terminator := "\n"
		if arg == "-print0" {
			terminator = "\x00"
		}
		return func(ctx *findContext) bool {
			fmt.Fprint(ctx.virtOS.Stdout(), ctx.display+terminator)
			return true
		}, nil

	case "-delete":
		p.hasAction = true
		p.depthLast = true
		return func(ctx *findContext) bool {
			if err := ctx.virtOS.FS().Rm(ctx.path, false); err != nil && ctx.node.IsDir() {
				err = ctx.virtOS.FS().Rmdir(ctx.path)
				if err != nil {
					fmt.Fprintf(ctx.virtOS.Stderr(), "find: cannot delete '%s': %s\n", ctx.display, vfs.Describe(err))
					return false
				}
			}
			return true
		}, nil

	case "-exec":
		p.hasAction = true
		var command []string
		for {
			if p.pos >= len(p.args) {
				return nil, errors.New("missing argument to `-exec'")
			}
			word := p.next()
			if word == ";" || word == "+" {
				break
			}
			command = append(command, word)
		}
		if len(command) == 0 {
			return nil, errors.New("missing argument to `-exec'")
		}
		return func(ctx *findContext) bool {
			argv := make([]string, len(command))
			for i, word := range command {
				argv[i] = strings.ReplaceAll(word, "{}", ctx.display)
			}
			res := ctx.virtOS.Invoke(argv[0], argv[1:], nil)
			fmt.Fprint(ctx.virtOS.Stdout(), res.Output)
			return res.ExitCode == 0
		}, nil

	case "":
		return nil, errors.New("expected an expression")

	default:
		return nil, fmt.Errorf("unknown predicate `%s'", arg)
	}
}

// parseFindSize parses [+-]N[ckMG], a bare number counts 512 byte blocks.
func parseFindSize(spec string) (findExpr, error) {
	cmp := 0
	switch {
	case strings.HasPrefix(spec, "+"):
		cmp = 1
		spec = spec[1:]
	case strings.HasPrefix(spec, "-"):
		cmp = -1
		spec = spec[1:]
	}

	unit := 512
	if len(spec) > 0 {
		switch spec[len(spec)-1] {
		case 'c':
			unit = 1
		case 'k':
			unit = 1 << 10
		case 'M':
			unit = 1 << 20
		case 'G':
			unit = 1 << 30
		}
		if unit != 512 || spec[len(spec)-1] == 'b' {
			spec = spec[:len(spec)-1]
		}
	}

	n, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid -size value")
	}
	target := n * unit

	return func(ctx *findContext) bool {
		if ctx.node.IsDir() {
			return false
		}
		switch cmp {
		case 1:
			return ctx.node.Size > target
		case -1:
			return ctx.node.Size < target
		default:
			return ctx.node.Size == target
		}
	}, nil
}

// Find searches directory trees for nodes matching an expression.
func Find(virtOS vos.VOS) int {
	args := virtOS.Args()[1:]

	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
		fmt.Fprintln(virtOS.Stdout(), "usage: find [PATH...] [EXPRESSION]")
		fmt.Fprintln(virtOS.Stdout(), "Search for files in a directory hierarchy.")
		fmt.Fprintln(virtOS.Stdout())
		fmt.Fprintln(virtOS.Stdout(), "Tests: -name GLOB -iname GLOB -type f|d|l -size [+-]N[ckMG] -newer FILE -empty")
		fmt.Fprintln(virtOS.Stdout(), "Options: -maxdepth N -mindepth N")
		fmt.Fprintln(virtOS.Stdout(), "Actions: -print -print0 -delete -exec CMD {} ;")
		fmt.Fprintln(virtOS.Stdout(), "Operators: ! -not -a -and -o -or ( )")
		return 0
	}

	var roots []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") && args[0] != "!" && args[0] != "(" {
		roots = append(roots, args[0])
		args = args[1:]
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}

	parser := &findParser{args: args, maxDepth: -1, virtOS: virtOS}
	expr := func(*findContext) bool { return true }
	if len(args) > 0 {
		var err error
		expr, err = parser.parseOr()
		if err == nil && parser.pos < len(args) {
			err = fmt.Errorf("unexpected argument `%s'", parser.peek())
		}
		if err != nil {
			virtOS.LogInvalidInvocation(err)
			fmt.Fprintf(virtOS.Stderr(), "find: %s\n", err)
			return 1
		}
	}
	if !parser.hasAction {
		matches := expr
		expr = func(ctx *findContext) bool {
			if matches(ctx) {
				fmt.Fprintln(ctx.virtOS.Stdout(), ctx.display)
			}
			return true
		}
	}

	exitCode := 0
	for _, root := range roots {
		base := virtOS.Resolve(root)
		baseDepth := pathDepth(base)
		prefix := strings.TrimSuffix(root, "/")

		var visits []*findContext
		err := virtOS.FS().Walk(base, func(p string, n *vfs.Node) error {
			depth := pathDepth(p) - baseDepth
			if parser.maxDepth >= 0 && depth > parser.maxDepth {
				return nil
			}
			if depth < parser.minDepth {
				return nil
			}
			display := root
			switch {
			case p == base:
			case base == vfs.Root:
				display = prefix + p
			default:
				display = prefix + strings.TrimPrefix(p, base)
			}
			visits = append(visits, &findContext{
				virtOS:  virtOS,
				path:    p,
				display: display,
				node:    n,
			})
			return nil
		})
		if err != nil {
			fmt.Fprintf(virtOS.Stderr(), "find: '%s': %s\n", root, vfs.Describe(err))
			exitCode = 1
			continue
		}

		// Deleting visits children before their parents.
		if parser.depthLast {
			for i, j := 0, len(visits)-1; i < j; i, j = i+1, j-1 {
				visits[i], visits[j] = visits[j], visits[i]
			}
		}
		for _, ctx := range visits {
			expr(ctx)
		}
	}
	return exitCode
}

func pathDepth(p string) int {
	if p == vfs.Root {
		return 0
	}
	return strings.Count(p, "/")
}

var _ vos.ProcessFunc = Find

func init() {
	mustAddBinCmd("find", Find)
}
