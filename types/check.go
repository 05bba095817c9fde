// Package types infers the types of expressions.
package types

import (
	"github.com/rs/zerolog"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
	"github.com/smasher164/dhall/normalize"
)

// functionRules maps the universes of a function's input and output types
// to the universe of the function type. Pairs missing from the table are
// dependent types the language does not allow.
var functionRules = map[[2]ast.Const]ast.Const{
	{ast.Type, ast.Type}: ast.Type,
	{ast.Kind, ast.Type}: ast.Type,
	{ast.Sort, ast.Type}: ast.Type,
	{ast.Kind, ast.Kind}: ast.Kind,
	{ast.Sort, ast.Kind}: ast.Kind,
	{ast.Sort, ast.Sort}: ast.Sort,
}

// Checker infers types. It holds no state besides its logger and may be
// used from several goroutines at once.
type Checker struct {
	log zerolog.Logger
}

func NewChecker(log zerolog.Logger) *Checker {
	return &Checker{log: log}
}

// TypeOf infers the type of a closed expression.
func TypeOf(e ast.Expr) (ast.Expr, error) {
	return NewChecker(zerolog.Nop()).TypeOf(e)
}

// TypeOf infers the type of a closed expression.
func (c *Checker) TypeOf(e ast.Expr) (ast.Expr, error) {
	return c.Infer(nil, e)
}

// Infer returns the normal form of the type of e in env. The error, if any,
// is a *TypeError.
func (c *Checker) Infer(env *Env, e ast.Expr) (ast.Expr, error) {
	t, err := c.infer(env, e)
	if err != nil {
		return nil, err
	}
	c.log.Trace().Int("depth", env.Len()).Stringer("expr", e).Stringer("type", t).Msg("inferred")
	return t, nil
}

// fail logs err and returns it as the result of a failed inference.
func (c *Checker) fail(err *TypeError) (ast.Expr, error) {
	if ev := c.log.Debug(); ev.Enabled() {
		ev.Str("kind", err.Kind.String()).Int("depth", err.Env.Len()).Msg(err.Error())
	}
	return nil, err
}

func equivalent(a, b ast.Expr) bool {
	return normalize.Equivalent(a, b)
}

// universe returns the type of t when t is itself a type.
func (c *Checker) universe(env *Env, t ast.Expr) (ast.Const, bool) {
	k, err := c.Infer(env, t)
	if err != nil {
		return 0, false
	}
	kc, ok := k.(ast.Const)
	return kc, ok
}

func (c *Checker) infer(env *Env, e ast.Expr) (ast.Expr, error) {
	switch e := e.(type) {
	case ast.Const:
		switch e {
		case ast.Type:
			return ast.Kind, nil
		case ast.Kind:
			return ast.Sort, nil
		}
		return c.fail(&TypeError{Kind: ErrUntyped, Env: env, Expr: e})
	case ast.Var:
		t, ok := env.Lookup(e)
		if !ok {
			return c.fail(&TypeError{Kind: ErrUnboundVariable, Env: env, Expr: e, Label: e.Name, Index: e.Index})
		}
		return t, nil
	case ast.Builtin:
		return builtinType(e), nil
	case ast.BoolLit:
		return ast.Bool, nil
	case ast.NaturalLit:
		return ast.Natural, nil
	case ast.IntegerLit:
		return ast.Integer, nil
	case ast.DoubleLit:
		return ast.Double, nil
	case ast.Lambda:
		return c.inferLambda(env, e)
	case ast.Pi:
		return c.inferPi(env, e)
	case ast.App:
		return c.inferApp(env, e)
	case ast.Let:
		return c.inferLet(env, e)
	case ast.Annot:
		if e.Type != ast.Sort {
			if _, err := c.Infer(env, e.Type); err != nil {
				return nil, err
			}
		}
		t, err := c.Infer(env, e.Expr)
		if err != nil {
			return nil, err
		}
		if !equivalent(e.Type, t) {
			return c.fail(&TypeError{Kind: ErrAnnotMismatch, Env: env, Expr: e, Subject: e.Expr, Type: t, Expected: normalize.Normalize(e.Type)})
		}
		return t, nil
	case ast.If:
		return c.inferIf(env, e)
	case ast.TextLit:
		for _, chunk := range e.Chunks {
			t, err := c.Infer(env, chunk.Expr)
			if err != nil {
				return nil, err
			}
			if !equivalent(t, ast.Text) {
				return c.fail(&TypeError{Kind: ErrInvalidTextInterpolation, Env: env, Expr: e, Subject: chunk.Expr, Type: t, Expected: ast.Text})
			}
		}
		return ast.Text, nil
	case ast.ListLit:
		return c.inferList(env, e)
	case ast.Some:
		t, err := c.Infer(env, e.Value)
		if err != nil {
			return nil, err
		}
		if k, ok := c.universe(env, t); !ok || k != ast.Type {
			return c.fail(&TypeError{Kind: ErrInvalidOptionalType, Env: env, Expr: e, Subject: e.Value, Type: t})
		}
		return ast.App{Fn: ast.Optional, Arg: t}, nil
	case ast.RecordType:
		return c.inferRecordType(env, e)
	case ast.RecordLit:
		return c.inferRecordLit(env, e)
	case ast.UnionType:
		return c.inferUnionType(env, e)
	case ast.UnionLit:
		return c.inferUnionLit(env, e)
	case ast.Select:
		return c.inferSelect(env, e)
	case ast.Project:
		return c.inferProject(env, e)
	case ast.BinOp:
		return c.inferBinOp(env, e)
	case ast.Merge:
		return c.inferMerge(env, e)
	case ast.Assert:
		return c.inferAssert(env, e)
	case ast.Import:
		return c.fail(&TypeError{Kind: ErrUnresolvedImport, Env: env, Expr: e, Label: e.Location})
	}
	panic("unreachable")
}

func (c *Checker) inferLambda(env *Env, e ast.Lambda) (ast.Expr, error) {
	tA, err := c.Infer(env, e.Type)
	if err != nil {
		return nil, err
	}
	kA, ok := tA.(ast.Const)
	if !ok {
		return c.fail(&TypeError{Kind: ErrInvalidInputType, Env: env, Expr: e, Label: e.Label, Subject: e.Type, Type: tA})
	}
	a := normalize.Normalize(e.Type)
	inner := env.Push(e.Label, a)
	tB, err := c.Infer(inner, e.Body)
	if err != nil {
		return nil, err
	}
	kB, ok := c.universe(inner, tB)
	if !ok {
		return c.fail(&TypeError{Kind: ErrInvalidOutputType, Env: inner, Expr: e, Label: e.Label, Subject: e.Body, Type: tB})
	}
	if _, ok := functionRules[[2]ast.Const{kA, kB}]; !ok {
		return c.fail(&TypeError{
			Kind: ErrForbiddenDependentType, Env: env, Expr: e, Label: e.Label,
			Subject: a, Type: kA, Other: e.Body, OtherType: tB,
		})
	}
	return ast.Pi{Label: e.Label, Type: a, Body: tB}, nil
}

func (c *Checker) inferPi(env *Env, e ast.Pi) (ast.Expr, error) {
	tA, err := c.Infer(env, e.Type)
	if err != nil {
		return nil, err
	}
	kA, ok := tA.(ast.Const)
	if !ok {
		return c.fail(&TypeError{Kind: ErrInvalidInputType, Env: env, Expr: e, Label: e.Label, Subject: e.Type, Type: tA})
	}
	inner := env.Push(e.Label, normalize.Normalize(e.Type))
	tB, err := c.Infer(inner, e.Body)
	if err != nil {
		return nil, err
	}
	kB, ok := tB.(ast.Const)
	if !ok {
		return c.fail(&TypeError{Kind: ErrInvalidOutputType, Env: inner, Expr: e, Label: e.Label, Subject: e.Body, Type: tB})
	}
	k, ok := functionRules[[2]ast.Const{kA, kB}]
	if !ok {
		return c.fail(&TypeError{
			Kind: ErrForbiddenDependentType, Env: env, Expr: e, Label: e.Label,
			Subject: normalize.Normalize(e.Type), Type: kA, Other: e.Body, OtherType: kB,
		})
	}
	return k, nil
}

func (c *Checker) inferApp(env *Env, e ast.App) (ast.Expr, error) {
	tf, err := c.Infer(env, e.Fn)
	if err != nil {
		return nil, err
	}
	fnType, ok := tf.(ast.Pi)
	if !ok {
		return c.fail(&TypeError{Kind: ErrNotAFunction, Env: env, Expr: e, Subject: e.Fn, Type: tf})
	}
	ta, err := c.Infer(env, e.Arg)
	if err != nil {
		return nil, err
	}
	if !equivalent(fnType.Type, ta) {
		mismatch := &TypeError{Kind: ErrTypeMismatch, Env: env, Expr: e, Label: fnType.Label, Subject: e.Arg, Type: ta, Expected: fnType.Type}
		if head, _ := ast.Spine(e.Fn); isBuiltin(head) {
			return c.fail(&TypeError{
				Kind: ErrBuiltinMismatch, Env: env, Expr: e, Label: head.String(),
				Subject: e.Arg, Type: ta, Expected: fnType.Type, Cause: mismatch,
			})
		}
		return c.fail(mismatch)
	}
	return normalize.Normalize(names.SubstShift(ast.Var{Name: fnType.Label}, e.Arg, fnType.Body)), nil
}

func isBuiltin(e ast.Expr) bool {
	_, ok := e.(ast.Builtin)
	return ok
}

func (c *Checker) inferLet(env *Env, e ast.Let) (ast.Expr, error) {
	tv, err := c.Infer(env, e.Value)
	if err != nil {
		return nil, err
	}
	if e.Annot != nil {
		if _, err := c.Infer(env, e.Annot); err != nil {
			return nil, err
		}
		if !equivalent(e.Annot, tv) {
			return c.fail(&TypeError{Kind: ErrAnnotMismatch, Env: env, Expr: e, Label: e.Label, Subject: e.Value, Type: tv, Expected: normalize.Normalize(e.Annot)})
		}
	}
	v := normalize.Normalize(e.Value)
	return c.Infer(env, names.SubstShift(ast.Var{Name: e.Label}, v, e.Body))
}

func (c *Checker) inferIf(env *Env, e ast.If) (ast.Expr, error) {
	tc, err := c.Infer(env, e.Cond)
	if err != nil {
		return nil, err
	}
	if !equivalent(tc, ast.Bool) {
		return c.fail(&TypeError{Kind: ErrInvalidPredicate, Env: env, Expr: e, Subject: e.Cond, Type: tc, Expected: ast.Bool})
	}
	branch := func(label string, b ast.Expr) (ast.Expr, error) {
		t, err := c.Infer(env, b)
		if err != nil {
			return nil, err
		}
		if k, ok := c.universe(env, t); !ok || k != ast.Type {
			return c.fail(&TypeError{Kind: ErrIfBranchMustBeTerm, Env: env, Expr: e, Label: label, Subject: b, Type: t})
		}
		return t, nil
	}
	tt, err := branch("then", e.Then)
	if err != nil {
		return nil, err
	}
	te, err := branch("else", e.Else)
	if err != nil {
		return nil, err
	}
	if !equivalent(tt, te) {
		return c.fail(&TypeError{Kind: ErrIfBranchMismatch, Env: env, Expr: e, Subject: e.Then, Type: tt, Other: e.Else, OtherType: te})
	}
	return tt, nil
}

func (c *Checker) inferList(env *Env, e ast.ListLit) (ast.Expr, error) {
	var t ast.Expr
	if e.Type != nil {
		k, err := c.Infer(env, e.Type)
		if err != nil {
			return nil, err
		}
		if k != ast.Type {
			return c.fail(&TypeError{Kind: ErrInvalidListType, Env: env, Expr: e, Subject: e.Type, Type: k})
		}
		t = normalize.Normalize(e.Type)
	}
	for i, x := range e.Elems {
		tx, err := c.Infer(env, x)
		if err != nil {
			return nil, err
		}
		if t == nil {
			if k, ok := c.universe(env, tx); !ok || k != ast.Type {
				return c.fail(&TypeError{Kind: ErrInvalidListType, Env: env, Expr: e, Index: i, Subject: x, Type: tx})
			}
			t = tx
			continue
		}
		if !equivalent(t, tx) {
			return c.fail(&TypeError{Kind: ErrInvalidListElement, Env: env, Expr: e, Index: i, Subject: x, Type: tx, Expected: t})
		}
	}
	if t == nil {
		return c.fail(&TypeError{Kind: ErrMissingListType, Env: env, Expr: e})
	}
	return ast.App{Fn: ast.List, Arg: t}, nil
}

func (c *Checker) inferAssert(env *Env, e ast.Assert) (ast.Expr, error) {
	k, err := c.Infer(env, e.Type)
	if err != nil {
		return nil, err
	}
	t := normalize.Normalize(e.Type)
	eq, ok := t.(ast.BinOp)
	if k != ast.Type || !ok || eq.Op != ast.Equivalence {
		return c.fail(&TypeError{Kind: ErrNotAnEquivalence, Env: env, Expr: e, Subject: e.Type, Type: k})
	}
	if !names.AlphaEqual(eq.L, eq.R) {
		return c.fail(&TypeError{Kind: ErrAssertionFailed, Env: env, Expr: e, Subject: eq.L, Other: eq.R})
	}
	return t, nil
}
