package ast

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MapSubexprs rebuilds e with f applied to every immediate sub-expression.
// Sub-expressions that live under a binder are passed to under together
// with the binder's label instead. Leaves are returned unchanged.
func MapSubexprs(e Expr, f func(Expr) Expr, under func(label string, e Expr) Expr) Expr {
	opt := func(e Expr) Expr {
		if e == nil {
			return nil
		}
		return f(e)
	}
	switch e := e.(type) {
	case Var, Const, Builtin, BoolLit, NaturalLit, IntegerLit, DoubleLit, Import:
		return e
	case Lambda:
		return Lambda{Label: e.Label, Type: f(e.Type), Body: under(e.Label, e.Body)}
	case Pi:
		return Pi{Label: e.Label, Type: f(e.Type), Body: under(e.Label, e.Body)}
	case Let:
		return Let{Label: e.Label, Annot: opt(e.Annot), Value: f(e.Value), Body: under(e.Label, e.Body)}
	case App:
		return App{Fn: f(e.Fn), Arg: f(e.Arg)}
	case Annot:
		return Annot{Expr: f(e.Expr), Type: f(e.Type)}
	case TextLit:
		chunks := lo.Map(e.Chunks, func(c Chunk, _ int) Chunk {
			return Chunk{Prefix: c.Prefix, Expr: f(c.Expr)}
		})
		return TextLit{Chunks: chunks, Suffix: e.Suffix}
	case ListLit:
		return ListLit{Type: opt(e.Type), Elems: lo.Map(e.Elems, func(x Expr, _ int) Expr { return f(x) })}
	case Some:
		return Some{Value: f(e.Value)}
	case RecordType:
		return RecordType{Fields: MapEntries(e.Fields, f)}
	case RecordLit:
		return RecordLit{Fields: MapEntries(e.Fields, f)}
	case UnionType:
		return UnionType{Alternatives: MapEntries(e.Alternatives, f)}
	case UnionLit:
		return UnionLit{Label: e.Label, Value: opt(e.Value), Alternatives: MapEntries(e.Alternatives, f)}
	case Select:
		return Select{Record: f(e.Record), Label: e.Label}
	case Project:
		return Project{Record: f(e.Record), Labels: e.Labels}
	case BinOp:
		return BinOp{Op: e.Op, L: f(e.L), R: f(e.R)}
	case Merge:
		return Merge{Handlers: f(e.Handlers), Union: f(e.Union), Type: opt(e.Type)}
	case If:
		return If{Cond: f(e.Cond), Then: f(e.Then), Else: f(e.Else)}
	case Assert:
		return Assert{Type: f(e.Type)}
	}
	panic(fmt.Sprintf("unimplemented: %T", e))
}

// MapEntries applies f to every non-nil entry expression.
func MapEntries(entries []Entry, f func(Expr) Expr) []Entry {
	if entries == nil {
		return nil
	}
	return lo.Map(entries, func(en Entry, _ int) Entry {
		if en.Expr != nil {
			en.Expr = f(en.Expr)
		}
		return en
	})
}

// Lookup finds the entry labelled label.
func Lookup(entries []Entry, label string) (Expr, bool) {
	i := slices.IndexFunc(entries, func(en Entry) bool { return en.Label == label })
	if i < 0 {
		return nil, false
	}
	return entries[i].Expr, true
}

// Without returns a copy of entries with label removed.
func Without(entries []Entry, label string) []Entry {
	return lo.Filter(entries, func(en Entry, _ int) bool { return en.Label != label })
}

// FindDuplicate reports the first label that occurs twice.
func FindDuplicate(entries []Entry) (string, bool) {
	seen := make(map[string]bool, len(entries))
	for _, en := range entries {
		if seen[en.Label] {
			return en.Label, true
		}
		seen[en.Label] = true
	}
	return "", false
}

// SortEntries returns the entries ordered by label. When a label repeats,
// the last entry wins.
func SortEntries(entries []Entry) []Entry {
	byLabel := make(map[string]Expr, len(entries))
	for _, en := range entries {
		byLabel[en.Label] = en.Expr
	}
	labels := maps.Keys(byLabel)
	slices.Sort(labels)
	sorted := make([]Entry, len(labels))
	for i, l := range labels {
		sorted[i] = Entry{Label: l, Expr: byLabel[l]}
	}
	return sorted
}

// Equal reports whether a and b are the same tree, labels included.
// Records and unions compare without regard to entry order.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Var, Const, Builtin, BoolLit, NaturalLit, IntegerLit, Import:
		return a == b
	case DoubleLit:
		b, ok := b.(DoubleLit)
		return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(b))
	case Lambda:
		b, ok := b.(Lambda)
		return ok && a.Label == b.Label && Equal(a.Type, b.Type) && Equal(a.Body, b.Body)
	case Pi:
		b, ok := b.(Pi)
		return ok && a.Label == b.Label && Equal(a.Type, b.Type) && Equal(a.Body, b.Body)
	case Let:
		b, ok := b.(Let)
		return ok && a.Label == b.Label && Equal(a.Annot, b.Annot) && Equal(a.Value, b.Value) && Equal(a.Body, b.Body)
	case App:
		b, ok := b.(App)
		return ok && Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	case Annot:
		b, ok := b.(Annot)
		return ok && Equal(a.Expr, b.Expr) && Equal(a.Type, b.Type)
	case TextLit:
		b, ok := b.(TextLit)
		return ok && a.Suffix == b.Suffix && slices.EqualFunc(a.Chunks, b.Chunks, func(x, y Chunk) bool {
			return x.Prefix == y.Prefix && Equal(x.Expr, y.Expr)
		})
	case ListLit:
		b, ok := b.(ListLit)
		return ok && Equal(a.Type, b.Type) && slices.EqualFunc(a.Elems, b.Elems, Equal)
	case Some:
		b, ok := b.(Some)
		return ok && Equal(a.Value, b.Value)
	case RecordType:
		b, ok := b.(RecordType)
		return ok && equalEntries(a.Fields, b.Fields)
	case RecordLit:
		b, ok := b.(RecordLit)
		return ok && equalEntries(a.Fields, b.Fields)
	case UnionType:
		b, ok := b.(UnionType)
		return ok && equalEntries(a.Alternatives, b.Alternatives)
	case UnionLit:
		b, ok := b.(UnionLit)
		return ok && a.Label == b.Label && Equal(a.Value, b.Value) && equalEntries(a.Alternatives, b.Alternatives)
	case Select:
		b, ok := b.(Select)
		return ok && a.Label == b.Label && Equal(a.Record, b.Record)
	case Project:
		b, ok := b.(Project)
		if !ok || !Equal(a.Record, b.Record) {
			return false
		}
		al, bl := slices.Clone(a.Labels), slices.Clone(b.Labels)
		slices.Sort(al)
		slices.Sort(bl)
		return slices.Equal(al, bl)
	case BinOp:
		b, ok := b.(BinOp)
		return ok && a.Op == b.Op && Equal(a.L, b.L) && Equal(a.R, b.R)
	case Merge:
		b, ok := b.(Merge)
		return ok && Equal(a.Handlers, b.Handlers) && Equal(a.Union, b.Union) && Equal(a.Type, b.Type)
	case If:
		b, ok := b.(If)
		return ok && Equal(a.Cond, b.Cond) && Equal(a.Then, b.Then) && Equal(a.Else, b.Else)
	case Assert:
		b, ok := b.(Assert)
		return ok && Equal(a.Type, b.Type)
	}
	panic(fmt.Sprintf("unimplemented: %T", a))
}

func equalEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		y, ok := Lookup(b, x.Label)
		if !ok || !Equal(x.Expr, y) {
			return false
		}
	}
	return true
}
