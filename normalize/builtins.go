package normalize

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

var arity = map[ast.Builtin]int{
	ast.NaturalBuild:     1,
	ast.NaturalFold:      4,
	ast.NaturalIsZero:    1,
	ast.NaturalEven:      1,
	ast.NaturalOdd:       1,
	ast.NaturalToInteger: 1,
	ast.NaturalShow:      1,
	ast.NaturalSubtract:  2,
	ast.IntegerShow:      1,
	ast.IntegerToDouble:  1,
	ast.DoubleShow:       1,
	ast.TextShow:         1,
	ast.ListBuild:        2,
	ast.ListFold:         5,
	ast.ListLength:       2,
	ast.ListHead:         2,
	ast.ListLast:         2,
	ast.ListIndexed:      2,
	ast.ListReverse:      2,
	ast.OptionalFold:     5,
	ast.OptionalBuild:    2,
}

// applyBuiltin reduces a saturated builtin application whose arguments are
// normal. It reports false when no rule applies.
func applyBuiltin(b ast.Builtin, args []ast.Expr) (ast.Expr, bool) {
	if n, ok := arity[b]; !ok || n != len(args) {
		return nil, false
	}
	switch b {
	case ast.NaturalIsZero, ast.NaturalEven, ast.NaturalOdd, ast.NaturalToInteger, ast.NaturalShow:
		n, ok := args[0].(ast.NaturalLit)
		if !ok {
			return nil, false
		}
		switch b {
		case ast.NaturalIsZero:
			return ast.BoolLit(n == 0), true
		case ast.NaturalEven:
			return ast.BoolLit(n%2 == 0), true
		case ast.NaturalOdd:
			return ast.BoolLit(n%2 == 1), true
		case ast.NaturalToInteger:
			return ast.IntegerLit(n), true
		default:
			return ast.PlainText(strconv.FormatUint(uint64(n), 10)), true
		}
	case ast.NaturalSubtract:
		m, mok := args[0].(ast.NaturalLit)
		n, nok := args[1].(ast.NaturalLit)
		switch {
		case mok && nok:
			if m >= n {
				return ast.NaturalLit(0), true
			}
			return n - m, true
		case mok && m == 0:
			return args[1], true
		case nok && n == 0:
			return ast.NaturalLit(0), true
		case names.AlphaEqual(args[0], args[1]):
			return ast.NaturalLit(0), true
		}
	case ast.IntegerShow:
		if n, ok := args[0].(ast.IntegerLit); ok {
			return ast.PlainText(n.String()), true
		}
	case ast.IntegerToDouble:
		if n, ok := args[0].(ast.IntegerLit); ok {
			return ast.DoubleLit(n), true
		}
	case ast.DoubleShow:
		if d, ok := args[0].(ast.DoubleLit); ok {
			return ast.PlainText(ast.FormatDouble(float64(d))), true
		}
	case ast.TextShow:
		if t, ok := args[0].(ast.TextLit); ok && len(t.Chunks) == 0 {
			return ast.PlainText(ast.QuoteText(t.Suffix)), true
		}
	case ast.NaturalFold:
		n, ok := args[0].(ast.NaturalLit)
		if !ok {
			return nil, false
		}
		succ, acc := args[2], args[3]
		for i := ast.NaturalLit(0); i < n; i++ {
			next := apply(succ, acc)
			if ast.Equal(next, acc) {
				break
			}
			acc = next
		}
		return acc, true
	case ast.NaturalBuild:
		if head, inner := ast.Spine(args[0]); head == ast.Builtin(ast.NaturalFold) && len(inner) == 1 {
			return inner[0], true
		}
		n := ast.Var{Name: "n"}
		succ := ast.Lambda{Label: "n", Type: ast.Natural, Body: ast.BinOp{Op: ast.NaturalPlus, L: n, R: ast.NaturalLit(1)}}
		return apply(apply(apply(args[0], ast.Natural), succ), ast.NaturalLit(0)), true
	case ast.ListBuild:
		a, g := args[0], args[1]
		if head, inner := ast.Spine(g); head == ast.Builtin(ast.ListFold) && len(inner) == 2 {
			return inner[1], true
		}
		listA := ast.App{Fn: ast.List, Arg: a}
		cons := ast.Lambda{
			Label: "a",
			Type:  a,
			Body: ast.Lambda{
				Label: "as",
				Type:  ast.App{Fn: ast.List, Arg: names.Shift(1, ast.Var{Name: "a"}, a)},
				Body: ast.BinOp{
					Op: ast.ListAppend,
					L:  ast.ListLit{Elems: []ast.Expr{ast.Var{Name: "a"}}},
					R:  ast.Var{Name: "as"},
				},
			},
		}
		return apply(apply(apply(g, listA), cons), ast.ListLit{Type: a}), true
	case ast.ListFold:
		l, ok := args[1].(ast.ListLit)
		if !ok {
			return nil, false
		}
		cons, acc := args[3], args[4]
		for i := len(l.Elems) - 1; i >= 0; i-- {
			acc = apply(apply(cons, l.Elems[i]), acc)
		}
		return acc, true
	case ast.ListLength, ast.ListHead, ast.ListLast, ast.ListIndexed, ast.ListReverse:
		a := args[0]
		l, ok := args[1].(ast.ListLit)
		if !ok {
			return nil, false
		}
		return listBuiltin(b, a, l.Elems), true
	case ast.OptionalFold:
		some, none := args[3], args[4]
		switch o := args[1].(type) {
		case ast.Some:
			return apply(some, o.Value), true
		case ast.App:
			if o.Fn == ast.Builtin(ast.None) {
				return none, true
			}
		}
	case ast.OptionalBuild:
		a, g := args[0], args[1]
		if head, inner := ast.Spine(g); head == ast.Builtin(ast.OptionalFold) && len(inner) == 2 {
			return inner[1], true
		}
		optA := ast.App{Fn: ast.Optional, Arg: a}
		some := ast.Lambda{Label: "a", Type: a, Body: ast.Some{Value: ast.Var{Name: "a"}}}
		return apply(apply(apply(g, optA), some), ast.App{Fn: ast.None, Arg: a}), true
	}
	return nil, false
}

func listBuiltin(b ast.Builtin, a ast.Expr, elems []ast.Expr) ast.Expr {
	switch b {
	case ast.ListLength:
		return ast.NaturalLit(len(elems))
	case ast.ListHead, ast.ListLast:
		if len(elems) == 0 {
			return ast.App{Fn: ast.None, Arg: a}
		}
		if b == ast.ListHead {
			return ast.Some{Value: elems[0]}
		}
		return ast.Some{Value: elems[len(elems)-1]}
	case ast.ListIndexed:
		if len(elems) == 0 {
			return ast.ListLit{Type: ast.RecordType{Fields: []ast.Entry{
				{Label: "index", Expr: ast.Natural},
				{Label: "value", Expr: a},
			}}}
		}
		return ast.ListLit{Elems: lo.Map(elems, func(x ast.Expr, i int) ast.Expr {
			return ast.RecordLit{Fields: []ast.Entry{
				{Label: "index", Expr: ast.NaturalLit(i)},
				{Label: "value", Expr: x},
			}}
		})}
	case ast.ListReverse:
		if len(elems) == 0 {
			return ast.ListLit{Type: a}
		}
		return ast.ListLit{Elems: lo.Reverse(append([]ast.Expr(nil), elems...))}
	}
	panic("unreachable")
}
