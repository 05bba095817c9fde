package types

import (
	"fmt"

	"github.com/smasher164/dhall/ast"
)

func pi(label string, a, b ast.Expr) ast.Expr { return ast.Pi{Label: label, Type: a, Body: b} }

func arrow(a, b ast.Expr) ast.Expr { return ast.Arrow(a, b) }

func ref(name string) ast.Var { return ast.Var{Name: name} }

func app(f ast.Expr, args ...ast.Expr) ast.Expr { return ast.Apply(f, args...) }

// church is ∀(t : Type) → ∀(step : s) → ∀(base : t) → t, the shape shared
// by the fold and build builtins.
func church(t, step string, s ast.Expr, base string) ast.Expr {
	return pi(t, ast.Type, pi(step, s, pi(base, ref(t), ref(t))))
}

var builtinTypes map[ast.Builtin]ast.Expr

func init() {
	natural := church("natural", "succ", arrow(ref("natural"), ref("natural")), "zero")
	list := church("list", "cons", arrow(ref("a"), arrow(ref("list"), ref("list"))), "nil")
	optional := church("optional", "some", arrow(ref("a"), ref("optional")), "none")
	forallA := func(body ast.Expr) ast.Expr { return pi("a", ast.Type, body) }
	listA := app(ast.List, ref("a"))
	optA := app(ast.Optional, ref("a"))
	typeToType := arrow(ast.Type, ast.Type)

	builtinTypes = map[ast.Builtin]ast.Expr{
		ast.Bool:             ast.Type,
		ast.Natural:          ast.Type,
		ast.Integer:          ast.Type,
		ast.Double:           ast.Type,
		ast.Text:             ast.Type,
		ast.List:             typeToType,
		ast.Optional:         typeToType,
		ast.None:             pi("A", ast.Type, app(ast.Optional, ref("A"))),
		ast.NaturalBuild:     arrow(natural, ast.Natural),
		ast.NaturalFold:      arrow(ast.Natural, natural),
		ast.NaturalIsZero:    arrow(ast.Natural, ast.Bool),
		ast.NaturalEven:      arrow(ast.Natural, ast.Bool),
		ast.NaturalOdd:       arrow(ast.Natural, ast.Bool),
		ast.NaturalToInteger: arrow(ast.Natural, ast.Integer),
		ast.NaturalShow:      arrow(ast.Natural, ast.Text),
		ast.NaturalSubtract:  arrow(ast.Natural, arrow(ast.Natural, ast.Natural)),
		ast.IntegerShow:      arrow(ast.Integer, ast.Text),
		ast.IntegerToDouble:  arrow(ast.Integer, ast.Double),
		ast.DoubleShow:       arrow(ast.Double, ast.Text),
		ast.TextShow:         arrow(ast.Text, ast.Text),
		ast.ListBuild:        forallA(arrow(list, listA)),
		ast.ListFold:         forallA(arrow(listA, list)),
		ast.ListLength:       forallA(arrow(listA, ast.Natural)),
		ast.ListHead:         forallA(arrow(listA, optA)),
		ast.ListLast:         forallA(arrow(listA, optA)),
		ast.ListIndexed: forallA(arrow(listA, app(ast.List, ast.RecordType{Fields: []ast.Entry{
			{Label: "index", Expr: ast.Natural},
			{Label: "value", Expr: ref("a")},
		}}))),
		ast.ListReverse:   forallA(arrow(listA, listA)),
		ast.OptionalFold:  forallA(arrow(optA, optional)),
		ast.OptionalBuild: forallA(arrow(optional, optA)),
	}
}

// builtinType returns the type scheme of b.
func builtinType(b ast.Builtin) ast.Expr {
	t, ok := builtinTypes[b]
	if !ok {
		panic(fmt.Sprintf("no type for builtin %s", b))
	}
	return t
}
