package normalize

import (
	"fmt"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

// WHNF reduces e until its outermost constructor is fixed. Sub-expressions
// below that constructor are left as they are, except for forms whose head
// depends on their operands (builtins, operators, projections, text), which
// are fully normalized.
func WHNF(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case ast.App:
		if f, ok := WHNF(e.Fn).(ast.Lambda); ok {
			return WHNF(names.SubstShift(ast.Var{Name: f.Label}, e.Arg, f.Body))
		}
		return Normalize(e)
	case ast.Let:
		return WHNF(names.SubstShift(ast.Var{Name: e.Label}, e.Value, e.Body))
	case ast.Annot:
		return WHNF(e.Expr)
	case ast.If:
		if b, ok := WHNF(e.Cond).(ast.BoolLit); ok {
			if b {
				return WHNF(e.Then)
			}
			return WHNF(e.Else)
		}
		return Normalize(e)
	case ast.Select:
		if r, ok := WHNF(e.Record).(ast.RecordLit); ok {
			if v, ok := ast.Lookup(r.Fields, e.Label); ok {
				return WHNF(v)
			}
		}
		return Normalize(e)
	case ast.Merge:
		h, hok := WHNF(e.Handlers).(ast.RecordLit)
		u, uok := WHNF(e.Union).(ast.UnionLit)
		if hok && uok {
			if f, ok := ast.Lookup(h.Fields, u.Label); ok {
				if u.Value == nil {
					return WHNF(f)
				}
				return WHNF(ast.App{Fn: f, Arg: u.Value})
			}
		}
		return Normalize(e)
	case ast.BinOp, ast.Project, ast.TextLit:
		return Normalize(e)
	case ast.Import:
		panic(fmt.Sprintf("unresolved import %s", e.Location))
	}
	return e
}
