package commands

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/josephlewis42/mathshell/core/vos"
)

var (
	errExprSyntax   = errors.New("syntax error")
	errExprDivision = errors.New("division by zero")
	errExprInteger  = errors.New("non-integer argument")
)

// exprEvaluator evaluates expr(1) expressions, from loosest to tightest
// binding: |, &, comparisons, + -, * / %, :, then keywords and parentheses.
type exprEvaluator struct {
	args []string
	pos  int
}

func (e *exprEvaluator) accept(ops ...string) (string, bool) {
	if e.pos >= len(e.args) {
		return "", false
	}
	for _, op := range ops {
		if e.args[e.pos] == op {
			e.pos++
			return op, true
		}
	}
	return "", false
}

// exprNull reports whether v is the empty string or zero.
func exprNull(v string) bool {
	if v == "" {
		return true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	return err == nil && n == 0
}

func exprInts(a, b string) (int64, int64, error) {
	x, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return 0, 0, errExprInteger
	}
	y, err := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if err != nil {
		return 0, 0, errExprInteger
	}
	return x, y, nil
}

func exprBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (e *exprEvaluator) parseOr() (string, error) {
	left, err := e.parseAnd()
	for err == nil {
		if _, ok := e.accept("|"); !ok {
			break
		}
		var right string
		if right, err = e.parseAnd(); err != nil {
			break
		}
		if exprNull(left) {
			left = right
			if exprNull(right) {
				left = "0"
			}
		}
	}
	return left, err
}

func (e *exprEvaluator) parseAnd() (string, error) {
	left, err := e.parseCompare()
	for err == nil {
		if _, ok := e.accept("&"); !ok {
			break
		}
		var right string
		if right, err = e.parseCompare(); err != nil {
			break
		}
		if exprNull(left) || exprNull(right) {
			left = "0"
		}
	}
	return left, err
}

func (e *exprEvaluator) parseCompare() (string, error) {
	left, err := e.parseSum()
	for err == nil {
		op, ok := e.accept("=", "==", "!=", "<", "<=", ">", ">=")
		if !ok {
			break
		}
		var right string
		if right, err = e.parseSum(); err != nil {
			break
		}

		cmp := strings.Compare(left, right)
		if x, y, err := exprInts(left, right); err == nil {
			switch {
			case x < y:
				cmp = -1
			case x > y:
				cmp = 1
			default:
				cmp = 0
			}
		}

		switch op {
		case "=", "==":
			left = exprBool(cmp == 0)
		case "!=":
			left = exprBool(cmp != 0)
		case "<":
			left = exprBool(cmp < 0)
		case "<=":
			left = exprBool(cmp <= 0)
		case ">":
			left = exprBool(cmp > 0)
		case ">=":
			left = exprBool(cmp >= 0)
		}
	}
	return left, err
}

func (e *exprEvaluator) parseSum() (string, error) {
	left, err := e.parseProduct()
	for err == nil {
		op, ok := e.accept("+", "-")
		if !ok {
			break
		}
		var right string
		if right, err = e.parseProduct(); err != nil {
			break
		}
		var x, y int64
		if x, y, err = exprInts(left, right); err != nil {
			break
		}
		if op == "+" {
			left = strconv.FormatInt(x+y, 10)
		} else {
			left = strconv.FormatInt(x-y, 10)
		}
	}
	return left, err
}

func (e *exprEvaluator) parseProduct() (string, error) {
	left, err := e.parseMatch()
	for err == nil {
		op, ok := e.accept("*", "/", "%")
		if !ok {
			break
		}
		var right string
		if right, err = e.parseMatch(); err != nil {
			break
		}
		var x, y int64
		if x, y, err = exprInts(left, right); err != nil {
			break
		}
		switch {
		case op == "*":
			left = strconv.FormatInt(x*y, 10)
		case y == 0:
			err = errExprDivision
		case op == "/":
			left = strconv.FormatInt(x/y, 10)
		default:
			left = strconv.FormatInt(x%y, 10)
		}
	}
	return left, err
}

func (e *exprEvaluator) parseMatch() (string, error) {
	left, err := e.parsePrimary()
	for err == nil {
		if _, ok := e.accept(":"); !ok {
			break
		}
		var pattern string
		if pattern, err = e.parsePrimary(); err != nil {
			break
		}
		left, err = exprRegexMatch(left, pattern)
	}
	return left, err
}

// exprRegexMatch anchors a basic regular expression at the start of s. The
// result is the first group if there is one, otherwise the match length.
func exprRegexMatch(s, pattern string) (string, error) {
	re, err := regexp.Compile("^(?:" + basicToExtended(pattern) + ")")
	if err != nil {
		return "", fmt.Errorf("invalid regular expression: %v", err)
	}
	m := re.FindStringSubmatchIndex(s)
	if re.NumSubexp() > 0 {
		if m == nil || m[2] < 0 {
			return "", nil
		}
		return s[m[2]:m[3]], nil
	}
	if m == nil {
		return "0", nil
	}
	return strconv.Itoa(utf8.RuneCountInString(s[:m[1]])), nil
}

func (e *exprEvaluator) operand() (string, error) {
	if e.pos >= len(e.args) {
		return "", errExprSyntax
	}
	e.pos++
	return e.args[e.pos-1], nil
}

func (e *exprEvaluator) parsePrimary() (string, error) {
	if e.pos >= len(e.args) {
		return "", errExprSyntax
	}

	// Keywords are only recognized with enough operands after them.
	tok := e.args[e.pos]
	arity := map[string]int{"length": 1, "+": 1, "index": 2, "match": 2, "substr": 3}[tok]
	if arity > 0 && len(e.args)-e.pos > arity {
		e.pos++
		var ops []string
		for i := 0; i < arity; i++ {
			var v string
			var err error
			if tok == "+" {
				v, err = e.operand()
			} else {
				v, err = e.parsePrimary()
			}
			if err != nil {
				return "", err
			}
			ops = append(ops, v)
		}

		switch tok {
		case "+":
			return ops[0], nil
		case "length":
			return strconv.Itoa(utf8.RuneCountInString(ops[0])), nil
		case "match":
			return exprRegexMatch(ops[0], ops[1])
		case "index":
			for i, r := range []rune(ops[0]) {
				if strings.ContainsRune(ops[1], r) {
					return strconv.Itoa(i + 1), nil
				}
			}
			return "0", nil
		case "substr":
			runes := []rune(ops[0])
			pos, err1 := strconv.Atoi(ops[1])
			length, err2 := strconv.Atoi(ops[2])
			if err1 != nil || err2 != nil || pos < 1 || pos > len(runes) || length < 1 {
				return "", nil
			}
			end := pos - 1 + length
			if end > len(runes) {
				end = len(runes)
			}
			return string(runes[pos-1 : end]), nil
		}
	}

	if tok == "(" {
		e.pos++
		v, err := e.parseOr()
		if err != nil {
			return "", err
		}
		if _, ok := e.accept(")"); !ok {
			return "", errExprSyntax
		}
		return v, nil
	}
	if tok == ")" {
		return "", errExprSyntax
	}
	e.pos++
	return tok, nil
}

// Expr evaluates an expression and prints the result. The exit code is 1
// when the result is null or zero and 2 for invalid expressions.
func Expr(virtOS vos.VOS) int {
	args := virtOS.Args()[1:]
	if len(args) == 1 && args[0] == "--help" {
		fmt.Fprintln(virtOS.Stdout(), "Usage: expr EXPRESSION\nPrint the value of EXPRESSION to standard output.")
		return 0
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprintln(virtOS.Stderr(), "expr: missing operand")
		return 2
	}

	e := &exprEvaluator{args: args}
	v, err := e.parseOr()
	if err == nil && e.pos < len(args) {
		err = fmt.Errorf("syntax error: unexpected argument '%s'", args[e.pos])
	}
	if err != nil {
		fmt.Fprintf(virtOS.Stderr(), "expr: %v\n", err)
		return 2
	}

	fmt.Fprintln(virtOS.Stdout(), v)
	if exprNull(v) {
		return 1
	}
	return 0
}

var _ vos.ProcessFunc = Expr

func init() {
	mustAddUsrBinCmd("expr", Expr)
}
