// Package normalize reduces expressions to their β-normal form.
//
// Normalize is total on well-typed input. On ill-typed input it returns some
// expression but never fails, except when it meets an unresolved import.
package normalize

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

// Normalize returns the normal form of e.
func Normalize(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case ast.Var, ast.Const, ast.Builtin, ast.BoolLit, ast.NaturalLit, ast.IntegerLit, ast.DoubleLit:
		return e
	case ast.Lambda:
		return ast.Lambda{Label: e.Label, Type: Normalize(e.Type), Body: Normalize(e.Body)}
	case ast.Pi:
		return ast.Pi{Label: e.Label, Type: Normalize(e.Type), Body: Normalize(e.Body)}
	case ast.App:
		return apply(Normalize(e.Fn), Normalize(e.Arg))
	case ast.Let:
		return Normalize(names.SubstShift(ast.Var{Name: e.Label}, e.Value, e.Body))
	case ast.Annot:
		return Normalize(e.Expr)
	case ast.TextLit:
		return normalizeText(e)
	case ast.ListLit:
		elems := lo.Map(e.Elems, func(x ast.Expr, _ int) ast.Expr { return Normalize(x) })
		if len(elems) > 0 {
			return ast.ListLit{Elems: elems}
		}
		return ast.ListLit{Type: Normalize(e.Type)}
	case ast.Some:
		return ast.Some{Value: Normalize(e.Value)}
	case ast.RecordType:
		return ast.RecordType{Fields: normalizeEntries(e.Fields)}
	case ast.RecordLit:
		return ast.RecordLit{Fields: normalizeEntries(e.Fields)}
	case ast.UnionType:
		return ast.UnionType{Alternatives: normalizeEntries(e.Alternatives)}
	case ast.UnionLit:
		var v ast.Expr
		if e.Value != nil {
			v = Normalize(e.Value)
		}
		return ast.UnionLit{Label: e.Label, Value: v, Alternatives: normalizeEntries(e.Alternatives)}
	case ast.Select:
		return selectField(Normalize(e.Record), e.Label)
	case ast.Project:
		return project(Normalize(e.Record), e.Labels)
	case ast.BinOp:
		return binOp(e.Op, Normalize(e.L), Normalize(e.R))
	case ast.Merge:
		var t ast.Expr
		if e.Type != nil {
			t = Normalize(e.Type)
		}
		return merge(Normalize(e.Handlers), Normalize(e.Union), t)
	case ast.If:
		return ifThenElse(Normalize(e.Cond), e.Then, e.Else)
	case ast.Assert:
		return ast.Assert{Type: Normalize(e.Type)}
	case ast.Import:
		panic(fmt.Sprintf("unresolved import %s", e.Location))
	}
	panic(fmt.Sprintf("unimplemented: %T", e))
}

func normalizeEntries(entries []ast.Entry) []ast.Entry {
	return ast.SortEntries(ast.MapEntries(entries, Normalize))
}

// apply reduces fn arg, both already normal.
func apply(fn, arg ast.Expr) ast.Expr {
	switch f := fn.(type) {
	case ast.Lambda:
		return Normalize(names.SubstShift(ast.Var{Name: f.Label}, arg, f.Body))
	case ast.Select:
		if u, ok := f.Record.(ast.UnionType); ok {
			if t, ok := ast.Lookup(u.Alternatives, f.Label); ok && t != nil {
				return ast.UnionLit{Label: f.Label, Value: arg, Alternatives: ast.Without(u.Alternatives, f.Label)}
			}
		}
	}
	e := ast.App{Fn: fn, Arg: arg}
	head, args := ast.Spine(e)
	if b, ok := head.(ast.Builtin); ok {
		if r, ok := applyBuiltin(b, args); ok {
			return r
		}
	}
	return e
}

func normalizeText(t ast.TextLit) ast.Expr {
	var chunks []ast.Chunk
	var buf strings.Builder
	for _, c := range t.Chunks {
		buf.WriteString(c.Prefix)
		switch x := Normalize(c.Expr).(type) {
		case ast.TextLit:
			for _, inner := range x.Chunks {
				buf.WriteString(inner.Prefix)
				chunks = append(chunks, ast.Chunk{Prefix: buf.String(), Expr: inner.Expr})
				buf.Reset()
			}
			buf.WriteString(x.Suffix)
		default:
			chunks = append(chunks, ast.Chunk{Prefix: buf.String(), Expr: x})
			buf.Reset()
		}
	}
	buf.WriteString(t.Suffix)
	if len(chunks) == 1 && chunks[0].Prefix == "" && buf.Len() == 0 {
		return chunks[0].Expr
	}
	return ast.TextLit{Chunks: chunks, Suffix: buf.String()}
}

func ifThenElse(cond, then, els ast.Expr) ast.Expr {
	if b, ok := cond.(ast.BoolLit); ok {
		if b {
			return Normalize(then)
		}
		return Normalize(els)
	}
	t, f := Normalize(then), Normalize(els)
	if t == ast.BoolLit(true) && f == ast.BoolLit(false) {
		return cond
	}
	if names.AlphaEqual(t, f) {
		return t
	}
	return ast.If{Cond: cond, Then: t, Else: f}
}

func selectField(r ast.Expr, label string) ast.Expr {
	switch r := r.(type) {
	case ast.RecordLit:
		if v, ok := ast.Lookup(r.Fields, label); ok {
			return v
		}
	case ast.Project:
		return selectField(r.Record, label)
	case ast.BinOp:
		switch {
		case r.Op == ast.RecordPrefer:
			if rr, ok := r.R.(ast.RecordLit); ok {
				if v, ok := ast.Lookup(rr.Fields, label); ok {
					return v
				}
				return selectField(r.L, label)
			}
			if lr, ok := r.L.(ast.RecordLit); ok {
				if _, ok := ast.Lookup(lr.Fields, label); !ok {
					return selectField(r.R, label)
				}
			}
		case r.Op == ast.RecordCombine:
			if rr, ok := r.R.(ast.RecordLit); ok {
				if _, ok := ast.Lookup(rr.Fields, label); !ok {
					return selectField(r.L, label)
				}
			}
			if lr, ok := r.L.(ast.RecordLit); ok {
				if _, ok := ast.Lookup(lr.Fields, label); !ok {
					return selectField(r.R, label)
				}
			}
		}
	case ast.UnionType:
		if t, ok := ast.Lookup(r.Alternatives, label); ok && t == nil {
			return ast.UnionLit{Label: label, Alternatives: ast.Without(r.Alternatives, label)}
		}
	}
	return ast.Select{Record: r, Label: label}
}

func project(r ast.Expr, labels []string) ast.Expr {
	labels = lo.Uniq(labels)
	slices.Sort(labels)
	if len(labels) == 0 {
		return ast.RecordLit{}
	}
	switch r := r.(type) {
	case ast.RecordLit:
		fields := lo.Filter(r.Fields, func(en ast.Entry, _ int) bool { return slices.Contains(labels, en.Label) })
		return ast.RecordLit{Fields: fields}
	case ast.Project:
		return project(r.Record, labels)
	}
	return ast.Project{Record: r, Labels: labels}
}

func merge(handlers, union, t ast.Expr) ast.Expr {
	h, hok := handlers.(ast.RecordLit)
	u, uok := union.(ast.UnionLit)
	if hok && uok {
		if f, ok := ast.Lookup(h.Fields, u.Label); ok {
			if u.Value == nil {
				return f
			}
			return apply(f, u.Value)
		}
	}
	return ast.Merge{Handlers: handlers, Union: union, Type: t}
}
