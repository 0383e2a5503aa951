package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/mathshell/core/vos"
)

// testEvaluator evaluates test(1) expressions with the usual precedence:
// -o binds loosest, then -a, then !.
type testEvaluator struct {
	virtOS vos.VOS
	args   []string
	pos    int
}

func (e *testEvaluator) peek() (string, bool) {
	if e.pos < len(e.args) {
		return e.args[e.pos], true
	}
	return "", false
}

func (e *testEvaluator) remaining() int {
	return len(e.args) - e.pos
}

func (e *testEvaluator) parseOr() (bool, error) {
	left, err := e.parseAnd()
	if err != nil {
		return false, err
	}
	for {
		if tok, ok := e.peek(); !ok || tok != "-o" {
			return left, nil
		}
		e.pos++
		right, err := e.parseAnd()
		if err != nil {
			return false, err
		}
		left = left || right
	}
}

func (e *testEvaluator) parseAnd() (bool, error) {
	left, err := e.parseNot()
	if err != nil {
		return false, err
	}
	for {
		if tok, ok := e.peek(); !ok || tok != "-a" {
			return left, nil
		}
		e.pos++
		right, err := e.parseNot()
		if err != nil {
			return false, err
		}
		left = left && right
	}
}

func (e *testEvaluator) parseNot() (bool, error) {
	// A lone "!" is a non-empty string, not a negation.
	if tok, _ := e.peek(); tok == "!" && e.remaining() > 1 {
		e.pos++
		v, err := e.parseNot()
		return !v, err
	}
	return e.parsePrimary()
}

func (e *testEvaluator) parsePrimary() (bool, error) {
	tok, ok := e.peek()
	if !ok {
		return false, errors.New("argument expected")
	}

	if tok == "(" && e.remaining() > 1 {
		e.pos++
		v, err := e.parseOr()
		if err != nil {
			return false, err
		}
		if closing, _ := e.peek(); closing != ")" {
			return false, errors.New("')' expected")
		}
		e.pos++
		return v, nil
	}

	// Binary operators take precedence when there are enough arguments.
	if e.remaining() >= 3 && isTestBinaryOp(e.args[e.pos+1]) {
		left, op, right := e.args[e.pos], e.args[e.pos+1], e.args[e.pos+2]
		e.pos += 3
		return e.binary(left, op, right)
	}

	if isTestUnaryOp(tok) && e.remaining() >= 2 {
		operand := e.args[e.pos+1]
		e.pos += 2
		return e.unary(tok, operand), nil
	}

	e.pos++
	return tok != "", nil
}

func isTestUnaryOp(op string) bool {
	switch op {
	case "-e", "-f", "-d", "-s", "-r", "-w", "-x", "-L", "-h", "-z", "-n":
		return true
	}
	return false
}

func isTestBinaryOp(op string) bool {
	switch op {
	case "=", "==", "!=", "<", ">", "-eq", "-ne", "-lt", "-le", "-gt", "-ge", "-nt", "-ot":
		return true
	}
	return false
}

func (e *testEvaluator) unary(op, operand string) bool {
	switch op {
	case "-z":
		return operand == ""
	case "-n":
		return operand != ""
	}

	node, err := e.virtOS.FS().Stat(e.virtOS.Resolve(operand))
	if err != nil {
		return false
	}
	switch op {
	case "-f":
		return node.IsFile()
	case "-d":
		return node.IsDir()
	case "-s":
		return node.Size > 0
	case "-L", "-h":
		return node.Symlink != ""
	case "-x":
		return node.IsDir() || node.Perm()&0111 != 0
	default: // -e -r -w
		return true
	}
}

func (e *testEvaluator) binary(left, op, right string) (bool, error) {
	switch op {
	case "=", "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	case "<":
		return left < right, nil
	case ">":
		return left > right, nil
	case "-nt", "-ot":
		l, lerr := e.virtOS.FS().Stat(e.virtOS.Resolve(left))
		r, rerr := e.virtOS.FS().Stat(e.virtOS.Resolve(right))
		switch {
		case lerr != nil && rerr != nil:
			return false, nil
		case op == "-nt":
			return rerr != nil || (lerr == nil && l.Mtime.After(r.Mtime)), nil
		default:
			return lerr != nil || (rerr == nil && l.Mtime.Before(r.Mtime)), nil
		}
	}

	a, err := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
	if err != nil {
		return false, fmt.Errorf("%s: integer expression expected", left)
	}
	b, err := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
	if err != nil {
		return false, fmt.Errorf("%s: integer expression expected", right)
	}
	switch op {
	case "-eq":
		return a == b, nil
	case "-ne":
		return a != b, nil
	case "-lt":
		return a < b, nil
	case "-le":
		return a <= b, nil
	case "-gt":
		return a > b, nil
	default:
		return a >= b, nil
	}
}

// EvalTest evaluates a test expression, the error is set for malformed
// expressions.
func EvalTest(virtOS vos.VOS, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	e := &testEvaluator{virtOS: virtOS, args: args}
	v, err := e.parseOr()
	if err == nil && e.pos < len(args) {
		err = fmt.Errorf("%s: unexpected operator", args[e.pos])
	}
	return v, err
}

// Test implements test and [, the exit code is 0 for true, 1 for false and 2
// for errors.
func Test(virtOS vos.VOS) int {
	args := virtOS.Args()
	name := commandName(virtOS)
	args = args[1:]

	if name == "[" {
		if len(args) == 0 || args[len(args)-1] != "]" {
			fmt.Fprintln(virtOS.Stderr(), "[: missing `]'")
			return 2
		}
		args = args[:len(args)-1]
	}

	ok, err := EvalTest(virtOS, args)
	if err != nil {
		fmt.Fprintf(virtOS.Stderr(), "%s: %s\n", name, err)
		return 2
	}
	if ok {
		return 0
	}
	return 1
}

var _ vos.ProcessFunc = Test

func init() {
	mustAddBinCmd("test", Test)
	mustAddBinCmd("[", Test)
}
