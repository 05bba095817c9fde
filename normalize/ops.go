package normalize

import (
	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

// binOp reduces l op r, both already normal.
func binOp(op ast.Op, l, r ast.Expr) ast.Expr {
	lb, lIsBool := l.(ast.BoolLit)
	rb, rIsBool := r.(ast.BoolLit)
	ln, lIsNat := l.(ast.NaturalLit)
	rn, rIsNat := r.(ast.NaturalLit)
	switch op {
	case ast.BoolAnd:
		switch {
		case lIsBool && !bool(lb), rIsBool && bool(rb):
			return l
		case lIsBool, rIsBool:
			return r
		case names.AlphaEqual(l, r):
			return l
		}
	case ast.BoolOr:
		switch {
		case lIsBool && bool(lb), rIsBool && !bool(rb):
			return l
		case lIsBool, rIsBool:
			return r
		case names.AlphaEqual(l, r):
			return l
		}
	case ast.BoolEQ:
		switch {
		case lIsBool && rIsBool:
			return ast.BoolLit(lb == rb)
		case lIsBool && bool(lb):
			return r
		case rIsBool && bool(rb):
			return l
		case names.AlphaEqual(l, r):
			return ast.BoolLit(true)
		}
	case ast.BoolNE:
		switch {
		case lIsBool && rIsBool:
			return ast.BoolLit(lb != rb)
		case lIsBool && !bool(lb):
			return r
		case rIsBool && !bool(rb):
			return l
		case names.AlphaEqual(l, r):
			return ast.BoolLit(false)
		}
	case ast.NaturalPlus:
		switch {
		case lIsNat && rIsNat:
			return ln + rn
		case lIsNat && ln == 0:
			return r
		case rIsNat && rn == 0:
			return l
		}
	case ast.NaturalTimes:
		switch {
		case lIsNat && rIsNat:
			return ln * rn
		case lIsNat && ln == 0, rIsNat && rn == 1:
			return l
		case rIsNat && rn == 0, lIsNat && ln == 1:
			return r
		}
	case ast.TextAppend:
		return normalizeText(ast.TextLit{Chunks: []ast.Chunk{{Expr: l}, {Expr: r}}})
	case ast.ListAppend:
		ll, lok := l.(ast.ListLit)
		rl, rok := r.(ast.ListLit)
		switch {
		case lok && len(ll.Elems) == 0:
			return r
		case rok && len(rl.Elems) == 0:
			return l
		case lok && rok:
			elems := make([]ast.Expr, 0, len(ll.Elems)+len(rl.Elems))
			elems = append(elems, ll.Elems...)
			return ast.ListLit{Elems: append(elems, rl.Elems...)}
		}
	case ast.RecordCombine:
		lr, lok := l.(ast.RecordLit)
		rr, rok := r.(ast.RecordLit)
		switch {
		case lok && len(lr.Fields) == 0:
			return r
		case rok && len(rr.Fields) == 0:
			return l
		case lok && rok:
			return ast.RecordLit{Fields: combine(ast.RecordCombine, lr.Fields, rr.Fields)}
		}
	case ast.RecordPrefer:
		lr, lok := l.(ast.RecordLit)
		rr, rok := r.(ast.RecordLit)
		switch {
		case lok && len(lr.Fields) == 0:
			return r
		case rok && len(rr.Fields) == 0:
			return l
		case lok && rok:
			return ast.RecordLit{Fields: ast.SortEntries(append(append([]ast.Entry(nil), lr.Fields...), rr.Fields...))}
		case names.AlphaEqual(l, r):
			return l
		}
	case ast.RecordTypeCombine:
		lr, lok := l.(ast.RecordType)
		rr, rok := r.(ast.RecordType)
		switch {
		case lok && len(lr.Fields) == 0:
			return r
		case rok && len(rr.Fields) == 0:
			return l
		case lok && rok:
			return ast.RecordType{Fields: combine(ast.RecordTypeCombine, lr.Fields, rr.Fields)}
		}
	}
	return ast.BinOp{Op: op, L: l, R: r}
}

// combine merges two sorted field lists, combining shared fields with op.
func combine(op ast.Op, l, r []ast.Entry) []ast.Entry {
	fields := append([]ast.Entry(nil), l...)
	for _, en := range r {
		if lv, ok := ast.Lookup(fields, en.Label); ok {
			en.Expr = binOp(op, lv, en.Expr)
			fields = ast.Without(fields, en.Label)
		}
		fields = append(fields, en)
	}
	return ast.SortEntries(fields)
}
