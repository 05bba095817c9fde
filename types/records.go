package types

import (
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
	"github.com/smasher164/dhall/normalize"
)

func (c *Checker) inferRecordType(env *Env, e ast.RecordType) (ast.Expr, error) {
	if label, dup := ast.FindDuplicate(e.Fields); dup {
		return c.fail(&TypeError{Kind: ErrDuplicateField, Env: env, Expr: e, Label: label})
	}
	k := ast.Type
	for _, f := range e.Fields {
		t, err := c.Infer(env, f.Expr)
		if err != nil {
			return nil, err
		}
		kf, ok := t.(ast.Const)
		if !ok {
			return c.fail(&TypeError{Kind: ErrInvalidFieldType, Env: env, Expr: e, Label: f.Label, Subject: f.Expr, Type: t})
		}
		if kf > k {
			k = kf
		}
	}
	return k, nil
}

func (c *Checker) inferRecordLit(env *Env, e ast.RecordLit) (ast.Expr, error) {
	if label, dup := ast.FindDuplicate(e.Fields); dup {
		return c.fail(&TypeError{Kind: ErrDuplicateField, Env: env, Expr: e, Label: label})
	}
	fields := make([]ast.Entry, len(e.Fields))
	for i, f := range e.Fields {
		t, err := c.Infer(env, f.Expr)
		if err != nil {
			return nil, err
		}
		if k, ok := c.universe(env, t); !ok || k != ast.Type {
			return c.fail(&TypeError{Kind: ErrInvalidField, Env: env, Expr: e, Label: f.Label, Subject: f.Expr, Type: t})
		}
		fields[i] = ast.Entry{Label: f.Label, Expr: t}
	}
	return ast.RecordType{Fields: ast.SortEntries(fields)}, nil
}

func (c *Checker) inferUnionType(env *Env, e ast.UnionType) (ast.Expr, error) {
	if label, dup := ast.FindDuplicate(e.Alternatives); dup {
		return c.fail(&TypeError{Kind: ErrDuplicateAlternative, Env: env, Expr: e, Label: label})
	}
	for _, alt := range e.Alternatives {
		if alt.Expr == nil {
			continue
		}
		t, err := c.Infer(env, alt.Expr)
		if err != nil {
			return nil, err
		}
		if t != ast.Type {
			return c.fail(&TypeError{Kind: ErrInvalidAlternative, Env: env, Expr: e, Label: alt.Label, Subject: alt.Expr, Type: t})
		}
	}
	return ast.Type, nil
}

func (c *Checker) inferUnionLit(env *Env, e ast.UnionLit) (ast.Expr, error) {
	selected := ast.Entry{Label: e.Label}
	if e.Value != nil {
		t, err := c.Infer(env, e.Value)
		if err != nil {
			return nil, err
		}
		selected.Expr = t
	}
	u := ast.UnionType{Alternatives: append(slices.Clone(e.Alternatives), selected)}
	if _, err := c.Infer(env, u); err != nil {
		return nil, err
	}
	return normalize.Normalize(u), nil
}

func (c *Checker) inferSelect(env *Env, e ast.Select) (ast.Expr, error) {
	tr, err := c.Infer(env, e.Record)
	if err != nil {
		return nil, err
	}
	switch t := tr.(type) {
	case ast.RecordType:
		ft, ok := ast.Lookup(t.Fields, e.Label)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMissingField, Env: env, Expr: e, Label: e.Label, Subject: e.Record, Type: tr})
		}
		return ft, nil
	case ast.Const:
		if _, ok := normalize.WHNF(e.Record).(ast.UnionType); !ok {
			break
		}
		u := normalize.Normalize(e.Record).(ast.UnionType)
		alt, ok := ast.Lookup(u.Alternatives, e.Label)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMissingAlternative, Env: env, Expr: e, Label: e.Label, Subject: e.Record, Type: tr})
		}
		if alt == nil {
			return u, nil
		}
		return ast.Pi{Label: e.Label, Type: alt, Body: names.Shift(1, ast.Var{Name: e.Label}, u)}, nil
	}
	return c.fail(&TypeError{Kind: ErrNotARecord, Env: env, Expr: e, Label: e.Label, Subject: e.Record, Type: tr})
}

func (c *Checker) inferProject(env *Env, e ast.Project) (ast.Expr, error) {
	tr, err := c.Infer(env, e.Record)
	if err != nil {
		return nil, err
	}
	rt, ok := tr.(ast.RecordType)
	if !ok {
		return c.fail(&TypeError{Kind: ErrNotARecord, Env: env, Expr: e, Subject: e.Record, Type: tr})
	}
	if dups := lo.FindDuplicates(e.Labels); len(dups) > 0 {
		return c.fail(&TypeError{Kind: ErrDuplicateField, Env: env, Expr: e, Label: dups[0]})
	}
	fields := make([]ast.Entry, len(e.Labels))
	for i, l := range e.Labels {
		ft, ok := ast.Lookup(rt.Fields, l)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMissingField, Env: env, Expr: e, Label: l, Subject: e.Record, Type: tr})
		}
		fields[i] = ast.Entry{Label: l, Expr: ft}
	}
	return ast.RecordType{Fields: ast.SortEntries(fields)}, nil
}

func (c *Checker) inferMerge(env *Env, e ast.Merge) (ast.Expr, error) {
	th, err := c.Infer(env, e.Handlers)
	if err != nil {
		return nil, err
	}
	handlers, ok := th.(ast.RecordType)
	if !ok {
		return c.fail(&TypeError{Kind: ErrMergeNotRecord, Env: env, Expr: e, Subject: e.Handlers, Type: th})
	}
	tu, err := c.Infer(env, e.Union)
	if err != nil {
		return nil, err
	}
	union, ok := tu.(ast.UnionType)
	if !ok {
		return c.fail(&TypeError{Kind: ErrMergeNotUnion, Env: env, Expr: e, Subject: e.Union, Type: tu})
	}
	var result ast.Expr
	if e.Type != nil {
		if _, err := c.Infer(env, e.Type); err != nil {
			return nil, err
		}
		result = normalize.Normalize(e.Type)
	}
	for _, h := range handlers.Fields {
		if _, ok := ast.Lookup(union.Alternatives, h.Label); !ok {
			return c.fail(&TypeError{Kind: ErrUnusedHandler, Env: env, Expr: e, Label: h.Label, Subject: e.Handlers, Type: th})
		}
	}
	for _, alt := range union.Alternatives {
		ht, ok := ast.Lookup(handlers.Fields, alt.Label)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMissingHandler, Env: env, Expr: e, Label: alt.Label, Subject: e.Handlers, Type: th})
		}
		out := ht
		if alt.Expr != nil {
			fn, ok := ht.(ast.Pi)
			if !ok {
				return c.fail(&TypeError{Kind: ErrMergeHandlerNotFunction, Env: env, Expr: e, Label: alt.Label, Type: ht})
			}
			if !equivalent(fn.Type, alt.Expr) {
				return c.fail(&TypeError{Kind: ErrMergeHandlerMismatch, Env: env, Expr: e, Label: alt.Label, Type: fn.Type, Expected: alt.Expr})
			}
			x := ast.Var{Name: fn.Label}
			if names.IsFree(x, fn.Body) {
				return c.fail(&TypeError{Kind: ErrMergeDependentHandler, Env: env, Expr: e, Label: alt.Label, Type: ht})
			}
			out = names.Shift(-1, x, fn.Body)
		}
		if result == nil {
			result = out
			continue
		}
		if !equivalent(result, out) {
			return c.fail(&TypeError{Kind: ErrMergeResultMismatch, Env: env, Expr: e, Label: alt.Label, Type: out, Expected: result})
		}
	}
	if result == nil {
		return c.fail(&TypeError{Kind: ErrMergeEmptyNeedsAnnotation, Env: env, Expr: e})
	}
	return result, nil
}
