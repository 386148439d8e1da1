package condition

import (
	"errors"
	"fmt"
	"strings"
)

// Context is the fixed variable set an expression can reference.
type Context struct {
	Month      int
	Budget     float64
	Doom       float64
	TagCount   int
	ActiveTags []string
}

type kind int

const (
	kindNumber kind = iota + 1
	kindString
	kindBool
	kindList
)

type value struct {
	kind kind
	num  float64
	str  string
	b    bool
	list []string
}

var errType = errors.New("type mismatch")

// Evaluate parses expr and evaluates it against ctx.
//
// An empty expression is true. A malformed expression, an unknown
// identifier, an operator applied to the wrong types or a non-boolean
// result all yield false.
func Evaluate(expr string, ctx Context) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	n, err := Parse(expr)
	if err != nil {
		return false
	}
	ok, err := Eval(n, ctx)
	if err != nil {
		return false
	}
	return ok
}

// Check reports whether expr parses. Useful for validating catalog data
// ahead of time.
func Check(expr string) error {
	_, err := Parse(expr)
	return err
}

// Eval evaluates a parsed expression. A nil node is true. Errors are
// returned for type problems so callers can tell them apart from a
// legitimately false condition.
func Eval(n Node, ctx Context) (bool, error) {
	if n == nil {
		return true, nil
	}
	v, err := eval(n, ctx)
	if err != nil {
		return false, err
	}
	if v.kind != kindBool {
		return false, fmt.Errorf("%w: expression is not boolean", errType)
	}
	return v.b, nil
}

func eval(n Node, ctx Context) (value, error) {
	switch n := n.(type) {
	case NumberLit:
		return value{kind: kindNumber, num: n.Value}, nil
	case StringLit:
		return value{kind: kindString, str: n.Value}, nil
	case BoolLit:
		return value{kind: kindBool, b: n.Value}, nil
	case Ident:
		return resolve(n.Name, ctx)
	case Negate:
		v, err := eval(n.Operand, ctx)
		if err != nil {
			return value{}, err
		}
		if v.kind != kindNumber {
			return value{}, fmt.Errorf("%w: unary minus on non-number", errType)
		}
		return value{kind: kindNumber, num: -v.num}, nil
	case Logical:
		return evalLogical(n, ctx)
	case Compare:
		return evalCompare(n, ctx)
	case Membership:
		return evalContains(n.Haystack, n.Needle, ctx)
	case Includes:
		return evalContains(n.Collection, n.Value, ctx)
	}
	return value{}, fmt.Errorf("unknown node %T", n)
}

func resolve(name string, ctx Context) (value, error) {
	switch name {
	case "month":
		return value{kind: kindNumber, num: float64(ctx.Month)}, nil
	case "budget":
		return value{kind: kindNumber, num: ctx.Budget}, nil
	case "doom":
		return value{kind: kindNumber, num: ctx.Doom}, nil
	case "tagCount":
		return value{kind: kindNumber, num: float64(ctx.TagCount)}, nil
	case "activeTags":
		return value{kind: kindList, list: ctx.ActiveTags}, nil
	}
	return value{}, fmt.Errorf("unknown identifier %q", name)
}

func evalLogical(n Logical, ctx Context) (value, error) {
	left, err := eval(n.Left, ctx)
	if err != nil {
		return value{}, err
	}
	if left.kind != kindBool {
		return value{}, fmt.Errorf("%w: %s on non-boolean", errType, n.Op)
	}
	if n.Op == "&&" && !left.b {
		return left, nil
	}
	if n.Op == "||" && left.b {
		return left, nil
	}
	right, err := eval(n.Right, ctx)
	if err != nil {
		return value{}, err
	}
	if right.kind != kindBool {
		return value{}, fmt.Errorf("%w: %s on non-boolean", errType, n.Op)
	}
	return right, nil
}

func evalCompare(n Compare, ctx Context) (value, error) {
	left, err := eval(n.Left, ctx)
	if err != nil {
		return value{}, err
	}
	right, err := eval(n.Right, ctx)
	if err != nil {
		return value{}, err
	}
	if left.kind != right.kind {
		return value{}, fmt.Errorf("%w: cannot compare %v with %v", errType, left.kind, right.kind)
	}

	if left.kind == kindNumber {
		var r bool
		switch n.Op {
		case ">":
			r = left.num > right.num
		case "<":
			r = left.num < right.num
		case ">=":
			r = left.num >= right.num
		case "<=":
			r = left.num <= right.num
		case "==":
			r = left.num == right.num
		case "!=":
			r = left.num != right.num
		}
		return value{kind: kindBool, b: r}, nil
	}

	var eq bool
	switch left.kind {
	case kindString:
		eq = left.str == right.str
	case kindBool:
		eq = left.b == right.b
	default:
		return value{}, fmt.Errorf("%w: lists are not comparable", errType)
	}
	switch n.Op {
	case "==":
		return value{kind: kindBool, b: eq}, nil
	case "!=":
		return value{kind: kindBool, b: !eq}, nil
	}
	return value{}, fmt.Errorf("%w: %s needs numbers", errType, n.Op)
}

// evalContains implements both `x in coll` and includes(coll, x): list
// membership for lists, substring search for strings.
func evalContains(collNode, needleNode Node, ctx Context) (value, error) {
	coll, err := eval(collNode, ctx)
	if err != nil {
		return value{}, err
	}
	needle, err := eval(needleNode, ctx)
	if err != nil {
		return value{}, err
	}
	if needle.kind != kindString {
		return value{}, fmt.Errorf("%w: membership needle must be a string", errType)
	}
	switch coll.kind {
	case kindList:
		for _, item := range coll.list {
			if item == needle.str {
				return value{kind: kindBool, b: true}, nil
			}
		}
		return value{kind: kindBool, b: false}, nil
	case kindString:
		return value{kind: kindBool, b: strings.Contains(coll.str, needle.str)}, nil
	}
	return value{}, fmt.Errorf("%w: membership needs a list or string", errType)
}
