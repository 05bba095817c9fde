package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/smasher164/xid"
)

var reserved = map[string]bool{
	"if": true, "then": true, "else": true, "let": true, "in": true, "as": true,
	"using": true, "merge": true, "missing": true, "Infinity": true, "NaN": true,
	"Some": true, "toMap": true, "assert": true, "forall": true, "with": true,
	"True": true, "False": true, "Type": true, "Kind": true, "Sort": true,
}

// Label renders a binder or field name, quoting it with backticks unless it
// is a plain identifier.
func Label(s string) string {
	if isSimpleLabel(s) {
		return s
	}
	return "`" + s + "`"
}

func isSimpleLabel(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	if _, ok := builtinByName[s]; ok {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !xid.Start(r) {
				return false
			}
			continue
		}
		if r != '-' && r != '/' && !xid.Continue(r) {
			return false
		}
	}
	return true
}

// FormatDouble renders d the way Double/show does: fixed notation between
// 0.1 and 10^7, scientific notation otherwise, always with a fractional part.
func FormatDouble(d float64) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case math.IsInf(d, 1):
		return "Infinity"
	case math.IsInf(d, -1):
		return "-Infinity"
	case d == 0:
		if math.Signbit(d) {
			return "-0.0"
		}
		return "0.0"
	}
	if a := math.Abs(d); a >= 0.1 && a < 1e7 {
		s := strconv.FormatFloat(d, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(d, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	n, err := strconv.Atoi(exp)
	if err != nil {
		panic(fmt.Sprintf("malformed exponent in %q", s))
	}
	return mant + "e" + strconv.Itoa(n)
}

// QuoteText renders s as a text literal.
func QuoteText(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	escapeText(&sb, s)
	sb.WriteByte('"')
	return sb.String()
}

func escapeText(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '$':
			sb.WriteString(`\u0024`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04X`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
}

// atom parenthesizes e unless it already reads as a single unit.
func atom(e Expr) string {
	switch e.(type) {
	case Var, Const, Builtin, BoolLit, NaturalLit, IntegerLit, DoubleLit,
		TextLit, RecordType, RecordLit, UnionType, Select, Project, Import:
		return e.String()
	case ListLit:
		if e.(ListLit).Type == nil {
			return e.String()
		}
	}
	return "(" + e.String() + ")"
}

func (v Var) String() string {
	if v.Index == 0 {
		return Label(v.Name)
	}
	return fmt.Sprintf("%s@%d", Label(v.Name), v.Index)
}

func (e Lambda) String() string {
	return fmt.Sprintf("λ(%s : %s) → %s", Label(e.Label), e.Type, e.Body)
}

func (e Pi) String() string {
	if e.Label == "_" {
		s := e.Type.String()
		if _, ok := e.Type.(Pi); ok {
			s = "(" + s + ")"
		}
		return s + " → " + e.Body.String()
	}
	return fmt.Sprintf("∀(%s : %s) → %s", Label(e.Label), e.Type, e.Body)
}

func (e App) String() string {
	head, args := Spine(e)
	parts := []string{atom(head)}
	for _, a := range args {
		parts = append(parts, atom(a))
	}
	return strings.Join(parts, " ")
}

func (e Let) String() string {
	if e.Annot == nil {
		return fmt.Sprintf("let %s = %s in %s", Label(e.Label), e.Value, e.Body)
	}
	return fmt.Sprintf("let %s : %s = %s in %s", Label(e.Label), e.Annot, e.Value, e.Body)
}

func (e Annot) String() string {
	return atom(e.Expr) + " : " + e.Type.String()
}

func (b BoolLit) String() string {
	if b {
		return "True"
	}
	return "False"
}

func (n NaturalLit) String() string { return strconv.FormatUint(uint64(n), 10) }

func (n IntegerLit) String() string {
	if n < 0 {
		return strconv.FormatInt(int64(n), 10)
	}
	return "+" + strconv.FormatInt(int64(n), 10)
}

func (d DoubleLit) String() string { return FormatDouble(float64(d)) }

func (t TextLit) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range t.Chunks {
		escapeText(&sb, c.Prefix)
		sb.WriteString("${")
		sb.WriteString(c.Expr.String())
		sb.WriteString("}")
	}
	escapeText(&sb, t.Suffix)
	sb.WriteByte('"')
	return sb.String()
}

func (l ListLit) String() string {
	elems := make([]string, len(l.Elems))
	for i, x := range l.Elems {
		elems[i] = x.String()
	}
	s := "[" + strings.Join(elems, ", ") + "]"
	if l.Type != nil {
		s += " : List " + atom(l.Type)
	}
	return s
}

func (s Some) String() string { return "Some " + atom(s.Value) }

func entries(open, sep, join, close, empty string, es []Entry) string {
	if len(es) == 0 {
		return empty
	}
	parts := make([]string, len(es))
	for i, en := range es {
		if en.Expr == nil {
			parts[i] = Label(en.Label)
		} else {
			parts[i] = Label(en.Label) + sep + en.Expr.String()
		}
	}
	return open + strings.Join(parts, join) + close
}

func (r RecordType) String() string { return entries("{ ", " : ", ", ", " }", "{}", r.Fields) }

func (r RecordLit) String() string { return entries("{ ", " = ", ", ", " }", "{=}", r.Fields) }

func alternatives(es []Entry) string { return entries("< ", " : ", " | ", " >", "<>", es) }

func (u UnionType) String() string { return alternatives(u.Alternatives) }

func (u UnionLit) String() string {
	if u.Value == nil {
		alts := append([]Entry{{Label: u.Label}}, u.Alternatives...)
		return alternatives(alts) + "." + Label(u.Label)
	}
	rest := alternatives(u.Alternatives)
	if len(u.Alternatives) == 0 {
		return fmt.Sprintf("< %s = %s >", Label(u.Label), u.Value)
	}
	return fmt.Sprintf("< %s = %s | %s", Label(u.Label), u.Value, rest[2:])
}

func (s Select) String() string { return atom(s.Record) + "." + Label(s.Label) }

func (p Project) String() string {
	labels := make([]string, len(p.Labels))
	for i, l := range p.Labels {
		labels[i] = Label(l)
	}
	return atom(p.Record) + ".{ " + strings.Join(labels, ", ") + " }"
}

func (b BinOp) String() string {
	return atom(b.L) + " " + b.Op.String() + " " + atom(b.R)
}

func (m Merge) String() string {
	s := "merge " + atom(m.Handlers) + " " + atom(m.Union)
	if m.Type != nil {
		s += " : " + m.Type.String()
	}
	return s
}

func (e If) String() string {
	return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
}

func (a Assert) String() string { return "assert : " + a.Type.String() }

func (i Import) String() string { return i.Location }

// Dump renders the Go structure of e for debugging.
func Dump(e Expr) string {
	return litter.Options{HidePrivateFields: true, Compact: false}.Sdump(e)
}
