package types_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	. "github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/normalize"
	"github.com/smasher164/dhall/types"
)

func v(name string) Var { return Var{Name: name} }

func check(t *testing.T, expected, got Expr) {
	t.Helper()
	if !Equal(expected, got) {
		t.Logf("want %v\n got %v", expected, got)
		pretty.Ldiff(t, expected, got)
		t.Fail()
	}
}

func record(kvs ...any) []Entry {
	es := make([]Entry, 0, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		var e Expr
		if kvs[i+1] != nil {
			e = kvs[i+1].(Expr)
		}
		es = append(es, Entry{Label: kvs[i].(string), Expr: e})
	}
	return es
}

var (
	identityNat = Lambda{"x", Natural, v("x")}
	leftRight   = UnionType{Alternatives: record("Left", Natural, "Right", Bool)}
	// merge { Left = Natural/even, Right = λ(x : Bool) → x }
	//   (< Left = 2 | Right : Bool > : < Left : Natural | Right : Bool >)
	mergeLeftRight = Merge{
		RecordLit{Fields: record("Left", NaturalEven, "Right", Lambda{"x", Bool, v("x")})},
		Annot{UnionLit{Label: "Left", Value: NaturalLit(2), Alternatives: record("Right", Bool)}, leftRight},
		nil,
	}
	opt = UnionType{Alternatives: record("A", nil, "B", Natural)}
)

type typed struct {
	name     string
	e        Expr
	expected Expr
}

var wellTyped = []typed{
	{"type", Type, Kind},
	{"kind", Kind, Sort},
	{"plus", BinOp{NaturalPlus, NaturalLit(1), NaturalLit(1)}, Natural},
	{"lambda", identityNat, Pi{"x", Natural, Natural}},
	{"arrow", Arrow(Bool, Bool), Type},
	{"type constructor", Arrow(Type, Type), Kind},
	{"polymorphic", Lambda{"a", Type, Lambda{"x", v("a"), v("x")}}, Pi{"a", Type, Pi{"x", v("a"), v("a")}}},
	{"shadowed binder", Lambda{"a", Type, Lambda{"a", Type, Lambda{"x", Var{Name: "a", Index: 1}, v("x")}}},
		Pi{"a", Type, Pi{"a", Type, Pi{"x", Var{Name: "a", Index: 1}, Var{Name: "a", Index: 1}}}}},
	{"same-name binder", Lambda{"a", Type, Lambda{"a", v("a"), v("a")}},
		Pi{"a", Type, Pi{"a", v("a"), Var{Name: "a", Index: 1}}}},
	{"same-name forall", Pi{"a", Type, Pi{"a", v("a"), Var{Name: "a", Index: 1}}}, Type},
	{"same-name instantiate", Apply(Lambda{"a", Type, Lambda{"a", v("a"), v("a")}}, Bool, BoolLit(true)), Bool},
	{"instantiate", Apply(Lambda{"a", Type, Lambda{"x", v("a"), v("x")}}, Natural, NaturalLit(1)), Natural},
	{"list", ListLit{Elems: []Expr{NaturalLit(1), NaturalLit(2)}}, App{List, Natural}},
	{"empty list", ListLit{Type: Bool}, App{List, Bool}},
	{"some", Some{NaturalLit(1)}, App{Optional, Natural}},
	{"none", None, Pi{"A", Type, App{Optional, v("A")}}},
	{"none applied", App{None, Natural}, App{Optional, Natural}},
	{"record", RecordLit{Fields: record("b", BoolLit(true), "a", NaturalLit(1))}, RecordType{Fields: record("a", Natural, "b", Bool)}},
	{"record type", RecordType{Fields: record("a", Bool)}, Type},
	{"record kind", RecordType{Fields: record("a", Type)}, Kind},
	{"union", opt, Type},
	{"empty constructor", Select{opt, "A"}, opt},
	{"constructor", Select{opt, "B"}, Pi{"B", Natural, opt}},
	{"constructor applied", App{Select{opt, "B"}, NaturalLit(1)}, opt},
	{"union literal", UnionLit{Label: "A", Value: NaturalLit(1), Alternatives: record("B", Bool)},
		UnionType{Alternatives: record("A", Natural, "B", Bool)}},
	{"select", Select{RecordLit{Fields: record("a", NaturalLit(1))}, "a"}, Natural},
	{"project", Project{RecordLit{Fields: record("a", NaturalLit(1), "b", BoolLit(true))}, []string{"a"}}, RecordType{Fields: record("a", Natural)}},
	{"prefer", BinOp{RecordPrefer, RecordLit{Fields: record("a", NaturalLit(1))}, RecordLit{Fields: record("a", BoolLit(true))}},
		RecordType{Fields: record("a", Bool)}},
	{"combine", BinOp{RecordCombine,
		RecordLit{Fields: record("a", RecordLit{Fields: record("b", NaturalLit(1))})},
		RecordLit{Fields: record("a", RecordLit{Fields: record("c", BoolLit(true))})}},
		RecordType{Fields: record("a", RecordType{Fields: record("b", Natural, "c", Bool)})}},
	{"combine types", BinOp{RecordTypeCombine, RecordType{Fields: record("a", Bool)}, RecordType{Fields: record("b", Natural)}}, Type},
	{"list append", BinOp{ListAppend, ListLit{Elems: []Expr{NaturalLit(1)}}, ListLit{Elems: []Expr{NaturalLit(2)}}}, App{List, Natural}},
	{"text append", BinOp{TextAppend, PlainText("a"), PlainText("b")}, Text},
	{"interpolation", TextLit{Chunks: []Chunk{{"a", PlainText("b")}}}, Text},
	{"if", If{BoolLit(true), NaturalLit(1), NaturalLit(2)}, Natural},
	{"let", Let{"x", nil, NaturalLit(1), BinOp{NaturalPlus, v("x"), v("x")}}, Natural},
	{"let type", Let{"t", nil, Natural, Lambda{"x", v("t"), v("x")}}, Pi{"x", Natural, Natural}},
	{"let annotated", Let{"x", Natural, NaturalLit(1), v("x")}, Natural},
	{"annotation", Annot{NaturalLit(1), Natural}, Natural},
	{"equivalence", BinOp{Equivalence, NaturalLit(1), NaturalLit(1)}, Type},
	{"assert", Assert{BinOp{Equivalence, BinOp{NaturalPlus, NaturalLit(1), NaturalLit(1)}, NaturalLit(2)}},
		BinOp{Equivalence, NaturalLit(2), NaturalLit(2)}},
	{"merge", mergeLeftRight, Bool},
	{"merge annotated", Merge{RecordLit{Fields: record("A", NaturalLit(0), "B", identityNat)}, Select{opt, "A"}, Natural}, Natural},
	{"builtin", App{ListHead, Natural}, Arrow(App{List, Natural}, App{Optional, Natural})},
	{"length", Apply(ListLength, Natural, ListLit{Elems: []Expr{NaturalLit(1)}}), Natural},
	{"fold", Apply(NaturalFold, NaturalLit(2), Natural), Pi{"succ", Arrow(Natural, Natural), Pi{"zero", Natural, Natural}}},
}

func TestTypeOf(t *testing.T) {
	for _, c := range wellTyped {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got, err := types.TypeOf(c.e)
			if err != nil {
				t.Fatal(err)
			}
			check(t, c.expected, got)
		})
	}
}

// Normalizing a well-typed expression preserves its type.
func TestTypePreservation(t *testing.T) {
	for _, c := range wellTyped {
		c := c
		t.Run(c.name, func(t *testing.T) {
			got, err := types.TypeOf(normalize.Normalize(c.e))
			if err != nil {
				t.Fatal(err)
			}
			if !normalize.Equivalent(c.expected, got) {
				t.Errorf("normal form has type %v, want %v", got, c.expected)
			}
		})
	}
}

func typeError(t *testing.T, err error) *types.TypeError {
	t.Helper()
	var te *types.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected a *TypeError, got %v", err)
	}
	return te
}

func TestErrors(t *testing.T) {
	run := func(name string, env *types.Env, e Expr, kind types.ErrorKind) {
		t.Run(name, func(t *testing.T) {
			got, err := types.NewChecker(zerolog.Nop()).Infer(env, e)
			if err == nil {
				t.Fatalf("inferred %v", got)
			}
			if te := typeError(t, err); te.Kind != kind {
				t.Errorf("got %v, want %v", te.Kind, kind)
			}
		})
	}
	b := BoolLit(true)
	one := NaturalLit(1)
	run("unbound", nil, v("x"), types.ErrUnboundVariable)
	run("unbound index", nil, Lambda{"x", Natural, Var{Name: "x", Index: 1}}, types.ErrUnboundVariable)
	run("import", nil, Import{"./a.dhall"}, types.ErrUnresolvedImport)
	run("sort", nil, Sort, types.ErrUntyped)
	run("annotation", nil, Annot{one, Bool}, types.ErrAnnotMismatch)
	run("let annotation", nil, Let{"x", Bool, one, v("x")}, types.ErrAnnotMismatch)
	run("input type", nil, Lambda{"x", one, v("x")}, types.ErrInvalidInputType)
	run("output type", nil, Pi{"x", Natural, one}, types.ErrInvalidOutputType)
	run("not a function", nil, App{one, one}, types.ErrNotAFunction)
	run("argument", nil, App{identityNat, b}, types.ErrTypeMismatch)
	run("builtin argument", nil, App{NaturalEven, b}, types.ErrBuiltinMismatch)
	run("dependent lambda", nil, Lambda{"a", Bool, Type}, types.ErrForbiddenDependentType)
	run("dependent pi", nil, Pi{"a", Bool, Type}, types.ErrForbiddenDependentType)
	run("alternative", nil, UnionType{Alternatives: record("A", Type)}, types.ErrInvalidAlternative)
	run("field type", nil, RecordType{Fields: record("a", one)}, types.ErrInvalidFieldType)
	run("field", nil, RecordLit{Fields: record("a", Bool)}, types.ErrInvalidField)
	run("duplicate field", nil, RecordType{Fields: record("a", Bool, "a", Natural)}, types.ErrDuplicateField)
	run("duplicate literal field", nil, RecordLit{Fields: record("a", one, "a", one)}, types.ErrDuplicateField)
	run("duplicate projection", nil, Project{RecordLit{Fields: record("a", one)}, []string{"a", "a"}}, types.ErrDuplicateField)
	run("duplicate alternative", nil, UnionType{Alternatives: record("A", nil, "A", nil)}, types.ErrDuplicateAlternative)
	run("missing field", nil, Select{RecordLit{Fields: record("a", one)}, "b"}, types.ErrMissingField)
	run("missing projection", nil, Project{RecordLit{Fields: record("a", one)}, []string{"b"}}, types.ErrMissingField)
	run("missing alternative", nil, Select{opt, "C"}, types.ErrMissingAlternative)
	run("not a record", nil, Select{one, "a"}, types.ErrNotARecord)
	run("not a union type", nil, Select{Bool, "a"}, types.ErrNotARecord)
	run("operand", nil, BinOp{NaturalPlus, one, b}, types.ErrInvalidOperand)
	run("bool operand", nil, BinOp{BoolAnd, one, b}, types.ErrInvalidOperand)
	run("list operand", nil, BinOp{ListAppend, one, one}, types.ErrInvalidOperand)
	run("list element types", nil, BinOp{ListAppend, ListLit{Elems: []Expr{one}}, ListLit{Elems: []Expr{b}}}, types.ErrInvalidOperand)
	run("combine", nil, BinOp{RecordCombine, one, RecordLit{}}, types.ErrMustCombineRecord)
	run("combine types", nil, BinOp{RecordTypeCombine, RecordType{}, one}, types.ErrMustCombineRecord)
	run("collision", nil, BinOp{RecordCombine, RecordLit{Fields: record("a", one)}, RecordLit{Fields: record("a", one)}}, types.ErrFieldCollision)
	run("type collision", nil, BinOp{RecordTypeCombine, RecordType{Fields: record("a", Bool)}, RecordType{Fields: record("a", Bool)}}, types.ErrFieldCollision)
	run("merge handlers", nil, Merge{one, Select{opt, "A"}, nil}, types.ErrMergeNotRecord)
	run("merge union", nil, Merge{RecordLit{}, one, nil}, types.ErrMergeNotUnion)
	run("handler not function", nil, Merge{RecordLit{Fields: record("A", one, "B", one)}, Select{opt, "A"}, nil}, types.ErrMergeHandlerNotFunction)
	run("handler input", nil, Merge{RecordLit{Fields: record("A", one, "B", Lambda{"x", Bool, one})}, Select{opt, "A"}, nil}, types.ErrMergeHandlerMismatch)
	run("missing handler", nil, Merge{RecordLit{Fields: record("A", one)}, Select{opt, "A"}, nil}, types.ErrMissingHandler)
	run("unused handler", nil, Merge{RecordLit{Fields: record("A", one, "B", identityNat, "C", one)}, Select{opt, "A"}, nil}, types.ErrUnusedHandler)
	run("handler outputs", nil, Merge{RecordLit{Fields: record("A", b, "B", identityNat)}, Select{opt, "A"}, nil}, types.ErrMergeResultMismatch)
	run("handler annotation", nil, Merge{RecordLit{Fields: record("A", one, "B", identityNat)}, Select{opt, "A"}, Bool}, types.ErrMergeResultMismatch)
	run("empty merge", (*types.Env)(nil).Push("u", UnionType{}), Merge{RecordLit{}, v("u"), nil}, types.ErrMergeEmptyNeedsAnnotation)
	dependent := (*types.Env)(nil).
		Push("P", Arrow(Natural, Type)).
		Push("h", RecordType{Fields: record("A", Pi{"n", Natural, App{v("P"), v("n")}})})
	run("dependent handler", dependent, Merge{v("h"), UnionLit{Label: "A", Value: one}, nil}, types.ErrMergeDependentHandler)
	run("predicate", nil, If{one, one, one}, types.ErrInvalidPredicate)
	run("branch term", nil, If{b, Bool, Natural}, types.ErrIfBranchMustBeTerm)
	run("branches", nil, If{b, one, b}, types.ErrIfBranchMismatch)
	run("list type", nil, ListLit{Type: one}, types.ErrInvalidListType)
	run("list of types", nil, ListLit{Elems: []Expr{Bool}}, types.ErrInvalidListType)
	run("list element", nil, ListLit{Elems: []Expr{one, b}}, types.ErrInvalidListElement)
	run("annotated list element", nil, ListLit{Type: Bool, Elems: []Expr{one}}, types.ErrInvalidListElement)
	run("empty list", nil, ListLit{}, types.ErrMissingListType)
	run("optional", nil, Some{Bool}, types.ErrInvalidOptionalType)
	run("interpolation", nil, TextLit{Chunks: []Chunk{{"a", one}}}, types.ErrInvalidTextInterpolation)
	run("incomparable", nil, BinOp{Equivalence, Bool, Bool}, types.ErrIncomparableExpression)
	run("equivalence types", nil, BinOp{Equivalence, one, b}, types.ErrEquivalenceTypeMismatch)
	run("not an equivalence", nil, Assert{Bool}, types.ErrNotAnEquivalence)
	run("assertion", nil, Assert{BinOp{Equivalence, one, NaturalLit(2)}}, types.ErrAssertionFailed)
}

func TestInvalidAlternative(t *testing.T) {
	_, err := types.TypeOf(UnionType{Alternatives: record("Left", Bool, "Right", Type)})
	te := typeError(t, err)
	if te.Kind != types.ErrInvalidAlternative || te.Label != "Right" {
		t.Fatalf("got %v", te)
	}
	check(t, Type, te.Subject)
	check(t, Kind, te.Type)
}

func TestForbiddenDependentType(t *testing.T) {
	_, err := types.TypeOf(Lambda{"a", Bool, Type})
	te := typeError(t, err)
	if te.Kind != types.ErrForbiddenDependentType {
		t.Fatalf("got %v", te)
	}
	check(t, Bool, te.Subject)
	check(t, Type, te.Type)
	check(t, Type, te.Other)
	check(t, Kind, te.OtherType)
}

func TestBuiltinMismatchCause(t *testing.T) {
	_, err := types.TypeOf(Apply(ListLength, Natural, BoolLit(true)))
	te := typeError(t, err)
	if te.Kind != types.ErrBuiltinMismatch || te.Label != "List/length" {
		t.Fatalf("got %v", te)
	}
	cause := typeError(t, te.Cause)
	if cause.Kind != types.ErrTypeMismatch {
		t.Errorf("cause is %v", cause.Kind)
	}
	check(t, App{List, Natural}, te.Expected)
}

func TestErrorMessage(t *testing.T) {
	_, err := types.TypeOf(Select{RecordLit{Fields: record("a", NaturalLit(1))}, "b"})
	expected := "missing field b: { a = 1 } : { a : Natural }"
	if err == nil || err.Error() != expected {
		t.Errorf("got %v, want %q", err, expected)
	}
}

func TestDebugLog(t *testing.T) {
	var buf bytes.Buffer
	c := types.NewChecker(zerolog.New(&buf).Level(zerolog.DebugLevel))
	if _, err := c.TypeOf(App{identityNat, v("y")}); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(buf.String(), `"kind":"unbound variable"`) {
		t.Errorf("log does not name the error kind: %s", buf.String())
	}
	buf.Reset()
	if _, err := c.TypeOf(identityNat); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("trace output at debug level: %s", buf.String())
	}
}

func TestConcurrentTypeOf(t *testing.T) {
	c := types.NewChecker(zerolog.Nop())
	var g errgroup.Group
	results := make([]Expr, 32)
	for i := range results {
		i := i
		g.Go(func() error {
			ty, err := c.TypeOf(wellTyped[i%len(wellTyped)].e)
			results[i] = ty
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for i, got := range results {
		check(t, wellTyped[i%len(wellTyped)].expected, got)
	}
}
