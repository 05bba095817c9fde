package names

import "github.com/smasher164/dhall/ast"

// AlphaNormalize renames every bound variable of e to "_", fixing up
// indices so that the result means the same thing.
func AlphaNormalize(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case ast.Var:
		return e
	case ast.Lambda:
		return ast.Lambda{Label: "_", Type: AlphaNormalize(e.Type), Body: rename(e.Label, e.Body)}
	case ast.Pi:
		return ast.Pi{Label: "_", Type: AlphaNormalize(e.Type), Body: rename(e.Label, e.Body)}
	case ast.Let:
		var annot ast.Expr
		if e.Annot != nil {
			annot = AlphaNormalize(e.Annot)
		}
		return ast.Let{Label: "_", Annot: annot, Value: AlphaNormalize(e.Value), Body: rename(e.Label, e.Body)}
	}
	return ast.MapSubexprs(e, AlphaNormalize, func(_ string, sub ast.Expr) ast.Expr {
		panic("unreachable")
	})
}

// rename rewrites body, which lives under a binder named label, as if the
// binder had been named "_".
func rename(label string, body ast.Expr) ast.Expr {
	if label == "_" {
		return AlphaNormalize(body)
	}
	x := ast.Var{Name: label}
	u := ast.Var{Name: "_"}
	return AlphaNormalize(Shift(-1, x, Subst(x, u, Shift(1, u, body))))
}

// AlphaEqual reports whether a and b differ only in the names of their
// bound variables.
func AlphaEqual(a, b ast.Expr) bool {
	return ast.Equal(AlphaNormalize(a), AlphaNormalize(b))
}
