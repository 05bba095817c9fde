package types

import (
	"fmt"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/normalize"
)

var operandTypes = map[ast.Op]ast.Builtin{
	ast.BoolAnd:      ast.Bool,
	ast.BoolOr:       ast.Bool,
	ast.BoolEQ:       ast.Bool,
	ast.BoolNE:       ast.Bool,
	ast.NaturalPlus:  ast.Natural,
	ast.NaturalTimes: ast.Natural,
	ast.TextAppend:   ast.Text,
}

func (c *Checker) inferBinOp(env *Env, e ast.BinOp) (ast.Expr, error) {
	if want, ok := operandTypes[e.Op]; ok {
		for _, x := range []ast.Expr{e.L, e.R} {
			t, err := c.Infer(env, x)
			if err != nil {
				return nil, err
			}
			if !equivalent(t, want) {
				return c.fail(&TypeError{Kind: ErrInvalidOperand, Env: env, Expr: e, Subject: x, Type: t, Expected: want})
			}
		}
		return want, nil
	}
	tl, err := c.Infer(env, e.L)
	if err != nil {
		return nil, err
	}
	tr, err := c.Infer(env, e.R)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.ListAppend:
		if app, ok := tl.(ast.App); !ok || app.Fn != ast.List {
			return c.fail(&TypeError{Kind: ErrInvalidOperand, Env: env, Expr: e, Subject: e.L, Type: tl})
		}
		if !equivalent(tl, tr) {
			return c.fail(&TypeError{Kind: ErrInvalidOperand, Env: env, Expr: e, Subject: e.R, Type: tr, Expected: tl})
		}
		return tl, nil
	case ast.RecordCombine, ast.RecordPrefer:
		lt, ok := tl.(ast.RecordType)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.L, Type: tl})
		}
		rt, ok := tr.(ast.RecordType)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.R, Type: tr})
		}
		if e.Op == ast.RecordPrefer {
			fields := append(append([]ast.Entry(nil), lt.Fields...), rt.Fields...)
			return ast.RecordType{Fields: ast.SortEntries(fields)}, nil
		}
		return c.combineTypes(env, e, lt, rt)
	case ast.RecordTypeCombine:
		kl, ok := tl.(ast.Const)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.L, Type: tl})
		}
		kr, ok := tr.(ast.Const)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.R, Type: tr})
		}
		lt, ok := normalize.Normalize(e.L).(ast.RecordType)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.L, Type: tl})
		}
		rt, ok := normalize.Normalize(e.R).(ast.RecordType)
		if !ok {
			return c.fail(&TypeError{Kind: ErrMustCombineRecord, Env: env, Expr: e, Subject: e.R, Type: tr})
		}
		if _, err := c.combineTypes(env, e, lt, rt); err != nil {
			return nil, err
		}
		if kr > kl {
			return kr, nil
		}
		return kl, nil
	case ast.Equivalence:
		if k, ok := c.universe(env, tl); !ok || k != ast.Type {
			return c.fail(&TypeError{Kind: ErrIncomparableExpression, Env: env, Expr: e, Subject: e.L, Type: tl})
		}
		if k, ok := c.universe(env, tr); !ok || k != ast.Type {
			return c.fail(&TypeError{Kind: ErrIncomparableExpression, Env: env, Expr: e, Subject: e.R, Type: tr})
		}
		if !equivalent(tl, tr) {
			return c.fail(&TypeError{Kind: ErrEquivalenceTypeMismatch, Env: env, Expr: e, Subject: e.L, Type: tl, Other: e.R, OtherType: tr})
		}
		return ast.Type, nil
	}
	panic(fmt.Sprintf("unknown operator %d", int(e.Op)))
}

// combineTypes merges two record types for ∧ and ⩓. Fields present on both
// sides must themselves be record types and are merged recursively.
func (c *Checker) combineTypes(env *Env, e ast.BinOp, l, r ast.RecordType) (ast.Expr, error) {
	fields := append([]ast.Entry(nil), l.Fields...)
	for _, f := range r.Fields {
		lv, ok := ast.Lookup(fields, f.Label)
		if !ok {
			fields = append(fields, f)
			continue
		}
		lr, lok := lv.(ast.RecordType)
		rr, rok := f.Expr.(ast.RecordType)
		if !lok || !rok {
			return c.fail(&TypeError{Kind: ErrFieldCollision, Env: env, Expr: e, Label: f.Label, Type: lv, Other: f.Expr})
		}
		merged, err := c.combineTypes(env, e, lr, rr)
		if err != nil {
			return nil, err
		}
		fields = append(ast.Without(fields, f.Label), ast.Entry{Label: f.Label, Expr: merged})
	}
	return ast.RecordType{Fields: ast.SortEntries(fields)}, nil
}
