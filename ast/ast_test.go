package ast_test

import (
	"math"
	"strings"
	"testing"

	"github.com/kr/pretty"

	. "github.com/smasher164/dhall/ast"
)

func x(name string) Var { return Var{Name: name} }

func TestEqual(t *testing.T) {
	run := func(name string, a, b Expr, expected bool) {
		t.Run(name, func(t *testing.T) {
			if got := Equal(a, b); got != expected {
				t.Errorf("Equal(%v, %v) = %v, want %v", a, b, got, expected)
			}
		})
	}
	run("vars", x("x"), x("x"), true)
	run("indices", x("x"), Var{Name: "x", Index: 1}, false)
	run("labels matter", Lambda{"x", Bool, x("x")}, Lambda{"y", Bool, Var{Name: "y"}}, false)
	run("record order", RecordLit{Fields: []Entry{{"a", NaturalLit(1)}, {"b", BoolLit(true)}}},
		RecordLit{Fields: []Entry{{"b", BoolLit(true)}, {"a", NaturalLit(1)}}}, true)
	run("record value", RecordLit{Fields: []Entry{{"a", NaturalLit(1)}}},
		RecordLit{Fields: []Entry{{"a", NaturalLit(2)}}}, false)
	run("union payloads", UnionType{Alternatives: []Entry{{"A", nil}, {"B", Natural}}},
		UnionType{Alternatives: []Entry{{"B", Natural}, {"A", nil}}}, true)
	run("payload against none", UnionType{Alternatives: []Entry{{"A", nil}}},
		UnionType{Alternatives: []Entry{{"A", Natural}}}, false)
	run("nan", DoubleLit(math.NaN()), DoubleLit(math.NaN()), true)
	run("signed zero", DoubleLit(0), DoubleLit(math.Copysign(0, -1)), false)
	run("kinds", NaturalLit(1), IntegerLit(1), false)
	run("empty list type", ListLit{Type: Bool}, ListLit{Type: Natural}, false)
	run("text", TextLit{Chunks: []Chunk{{"a", x("x")}}, Suffix: "b"},
		TextLit{Chunks: []Chunk{{"a", x("x")}}, Suffix: "b"}, true)
	run("projection order", Project{x("r"), []string{"a", "b"}}, Project{x("r"), []string{"b", "a"}}, true)
	run("let annotation", Let{"x", nil, NaturalLit(1), x("x")}, Let{"x", Natural, NaturalLit(1), x("x")}, false)
}

func TestSpine(t *testing.T) {
	e := Apply(ListFold, Natural, x("xs"))
	head, args := Spine(e)
	if head != ListFold {
		t.Errorf("head = %v", head)
	}
	expected := []Expr{Natural, x("xs")}
	if len(args) != 2 || !Equal(args[0], expected[0]) || !Equal(args[1], expected[1]) {
		pretty.Ldiff(t, expected, args)
		t.Fail()
	}
	if h, args := Spine(Bool); h != Bool || len(args) != 0 {
		t.Errorf("Spine(Bool) = %v %v", h, args)
	}
}

func TestMapSubexprs(t *testing.T) {
	// collect the labels every child is found under
	var seen []string
	e := Let{"x", Natural, NaturalLit(1), Lambda{"y", Bool, x("y")}}
	MapSubexprs(e,
		func(sub Expr) Expr { seen = append(seen, "-"); return sub },
		func(label string, sub Expr) Expr { seen = append(seen, label); return sub })
	expected := []string{"-", "-", "x"}
	if strings.Join(seen, ",") != strings.Join(expected, ",") {
		pretty.Ldiff(t, expected, seen)
		t.Fail()
	}

	got := MapSubexprs(UnionType{Alternatives: []Entry{{"A", nil}, {"B", Bool}}},
		func(Expr) Expr { return Natural }, nil)
	want := UnionType{Alternatives: []Entry{{"A", nil}, {"B", Natural}}}
	if !Equal(got, want) {
		pretty.Ldiff(t, want, got)
		t.Fail()
	}
}

func TestSortEntries(t *testing.T) {
	got := SortEntries([]Entry{{"b", Bool}, {"a", Natural}, {"b", Text}})
	expected := []Entry{{"a", Natural}, {"b", Text}}
	if len(got) != len(expected) {
		pretty.Ldiff(t, expected, got)
		t.FailNow()
	}
	for i := range got {
		if got[i].Label != expected[i].Label || !Equal(got[i].Expr, expected[i].Expr) {
			pretty.Ldiff(t, expected, got)
			t.FailNow()
		}
	}
	if l, ok := FindDuplicate([]Entry{{"a", nil}, {"b", nil}, {"a", nil}}); !ok || l != "a" {
		t.Errorf("FindDuplicate = %q, %v", l, ok)
	}
	if _, ok := FindDuplicate([]Entry{{"a", nil}, {"b", nil}}); ok {
		t.Error("FindDuplicate found a duplicate in distinct labels")
	}
}

func TestString(t *testing.T) {
	run := func(e Expr, expected string) {
		t.Run(expected, func(t *testing.T) {
			if got := e.String(); got != expected {
				t.Errorf("got %q, want %q\n%s", got, expected, Dump(e))
			}
		})
	}
	run(Lambda{"x", Natural, BinOp{NaturalPlus, x("x"), NaturalLit(1)}}, "λ(x : Natural) → x + 1")
	run(App{Lambda{"x", Natural, x("x")}, NaturalLit(5)}, "(λ(x : Natural) → x) 5")
	run(Arrow(Arrow(Bool, Bool), Bool), "(Bool → Bool) → Bool")
	run(Pi{"a", Type, Arrow(x("a"), x("a"))}, "∀(a : Type) → a → a")
	run(Var{Name: "x", Index: 2}, "x@2")
	run(x("if"), "`if`")
	run(x("two words"), "`two words`")
	run(x("Natural"), "`Natural`")
	run(Apply(ListLength, Natural, ListLit{Elems: []Expr{NaturalLit(1), NaturalLit(2)}}), "List/length Natural [1, 2]")
	run(ListLit{Type: Bool}, "[] : List Bool")
	run(RecordLit{}, "{=}")
	run(RecordType{}, "{}")
	run(RecordLit{Fields: []Entry{{"a", NaturalLit(1)}}}, "{ a = 1 }")
	run(UnionType{Alternatives: []Entry{{"Left", Bool}, {"Right", nil}}}, "< Left : Bool | Right >")
	run(UnionLit{Label: "Left", Value: BoolLit(true), Alternatives: []Entry{{"Right", Bool}}}, "< Left = True | Right : Bool >")
	run(UnionLit{Label: "A", Alternatives: []Entry{{"B", Natural}}}, "< A | B : Natural >.A")
	run(IntegerLit(3), "+3")
	run(IntegerLit(-3), "-3")
	run(DoubleLit(1), "1.0")
	run(TextLit{Chunks: []Chunk{{"a", x("b")}}, Suffix: "\"$"}, `"a${b}\"\u0024"`)
	run(Merge{x("h"), x("u"), Bool}, "merge h u : Bool")
	run(Project{x("r"), []string{"a", "b"}}, "r.{ a, b }")
	run(Assert{BinOp{Equivalence, NaturalLit(1), NaturalLit(1)}}, "assert : 1 ≡ 1")
}

func TestFormatDouble(t *testing.T) {
	run := func(d float64, expected string) {
		t.Run(expected, func(t *testing.T) {
			if got := FormatDouble(d); got != expected {
				t.Errorf("FormatDouble(%v) = %q, want %q", d, got, expected)
			}
		})
	}
	run(1, "1.0")
	run(-2.5, "-2.5")
	run(0.1, "0.1")
	run(1e100, "1.0e100")
	run(1.5e-3, "1.5e-3")
	run(1234567, "1234567.0")
	run(1e7, "1.0e7")
	run(0, "0.0")
	run(math.Copysign(0, -1), "-0.0")
	run(math.Inf(1), "Infinity")
	run(math.Inf(-1), "-Infinity")
	run(math.NaN(), "NaN")
}

func TestLookupOp(t *testing.T) {
	for _, s := range []string{"&&", "||", "==", "!=", "+", "*", "++", "#", "∧", "⫽", "⩓", "≡"} {
		op, ok := LookupOp(s)
		if !ok || op.String() != s {
			t.Errorf("LookupOp(%q) = %v, %v", s, op, ok)
		}
	}
	if op, ok := LookupOp("==="); !ok || op != Equivalence {
		t.Errorf("LookupOp(===) = %v, %v", op, ok)
	}
	for b := Bool; b <= OptionalBuild; b++ {
		if got, ok := LookupBuiltin(b.String()); !ok || got != b {
			t.Errorf("LookupBuiltin(%q) = %v, %v", b.String(), got, ok)
		}
	}
}
