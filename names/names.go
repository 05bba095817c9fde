// Package names implements the operations on bound variables: shifting,
// capture-avoiding substitution and alpha-normalization.
package names

import (
	"fmt"

	"github.com/smasher164/dhall/ast"
)

// under adjusts v for a descent under a binder named label.
func under(label string, v ast.Var) ast.Var {
	if label == v.Name {
		v.Index++
	}
	return v
}

// Shift adds d to the index of every occurrence of v.Name in e that is free
// and whose index is at least v.Index.
func Shift(d int, v ast.Var, e ast.Expr) ast.Expr {
	if x, ok := e.(ast.Var); ok {
		if x.Name == v.Name && x.Index >= v.Index {
			x.Index += d
			if x.Index < 0 {
				panic(fmt.Sprintf("shift of %s by %d escapes its binder", x.Name, d))
			}
		}
		return x
	}
	return ast.MapSubexprs(e,
		func(sub ast.Expr) ast.Expr { return Shift(d, v, sub) },
		func(label string, sub ast.Expr) ast.Expr { return Shift(d, under(label, v), sub) })
}

// Subst replaces the free occurrences of v in e with s, shifting s as it
// passes under binders so that none of its free variables are captured.
func Subst(v ast.Var, s, e ast.Expr) ast.Expr {
	if x, ok := e.(ast.Var); ok {
		if x == v {
			return s
		}
		return x
	}
	return ast.MapSubexprs(e,
		func(sub ast.Expr) ast.Expr { return Subst(v, s, sub) },
		func(label string, sub ast.Expr) ast.Expr {
			return Subst(under(label, v), Shift(1, ast.Var{Name: label}, s), sub)
		})
}

// SubstShift eliminates the binder v.Name from e by substituting s for
// v. It is β-reduction's body rewrite: e is the body of a binder named
// v.Name and s is the argument, as seen from outside the binder.
func SubstShift(v ast.Var, s, e ast.Expr) ast.Expr {
	return Shift(-1, v, Subst(v, Shift(1, v, s), e))
}

// IsFree reports whether v occurs free in e.
func IsFree(v ast.Var, e ast.Expr) bool {
	if x, ok := e.(ast.Var); ok {
		return x == v
	}
	free := false
	ast.MapSubexprs(e,
		func(sub ast.Expr) ast.Expr {
			free = free || IsFree(v, sub)
			return sub
		},
		func(label string, sub ast.Expr) ast.Expr {
			free = free || IsFree(under(label, v), sub)
			return sub
		})
	return free
}
