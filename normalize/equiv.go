package normalize

import (
	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

// Equivalent reports whether a and b have the same normal form up to the
// names of bound variables.
func Equivalent(a, b ast.Expr) bool {
	return names.AlphaEqual(Normalize(a), Normalize(b))
}
