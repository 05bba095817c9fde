// Package codec reads and writes expression trees as YAML or JSON
// documents.
//
// Every node is a mapping with a single key naming its kind:
//
//	app:
//	  fn: {lambda: {label: x, type: Natural, body: {op: +, l: x, r: {natural: 1}}}}
//	  args: [{natural: 5}]
//
// A plain scalar is shorthand for a universe (Type), a builtin
// (List/fold) or a variable (x, x@1).
package codec

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smasher164/dhall/ast"
)

// DecodeError locates a malformed node.
type DecodeError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Path, e.Msg)
}

// Decode reads one expression from r.
func Decode(r io.Reader) (ast.Expr, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return decodeDocument(&doc)
}

// Unmarshal decodes one expression from data.
func Unmarshal(data []byte) (ast.Expr, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return decodeDocument(&doc)
}

// ReadFile decodes the expression stored in fsys under name.
func ReadFile(fsys fs.FS, name string) (ast.Expr, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	e, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return e, nil
}

func decodeDocument(doc *yaml.Node) (ast.Expr, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("decode: empty document")
	}
	d := decoder{}
	return d.expr("$", doc.Content[0])
}

type decoder struct{}

func fail(path string, n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Path: path, Line: n.Line, Column: n.Column, Msg: fmt.Sprintf(format, args...)}
}

func (d decoder) expr(path string, n *yaml.Node) (ast.Expr, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(path, n)
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return nil, fail(path, n, "node must have exactly one key, has %d", len(n.Content)/2)
		}
		key, val := n.Content[0].Value, n.Content[1]
		return d.node(path+"."+key, key, val)
	}
	return nil, fail(path, n, "expected an expression")
}

func (d decoder) scalar(path string, n *yaml.Node) (ast.Expr, error) {
	switch n.Tag {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fail(path, n, "%v", err)
		}
		return ast.BoolLit(b), nil
	case "!!str":
	default:
		return nil, fail(path, n, "literal %q needs an explicit kind", n.Value)
	}
	if c, ok := ast.LookupConst(n.Value); ok {
		return c, nil
	}
	if b, ok := ast.LookupBuiltin(n.Value); ok {
		return b, nil
	}
	return parseVar(path, n)
}

func parseVar(path string, n *yaml.Node) (ast.Var, error) {
	name, idx, found := strings.Cut(n.Value, "@")
	if name == "" {
		return ast.Var{}, fail(path, n, "empty variable name")
	}
	if !found {
		return ast.Var{Name: name}, nil
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return ast.Var{}, fail(path, n, "bad variable index %q", idx)
	}
	return ast.Var{Name: name, Index: i}, nil
}

// fields indexes the keys of a mapping node.
func (d decoder) fields(path string, n *yaml.Node, required ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(path, n, "expected a mapping")
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	for _, k := range required {
		if _, ok := m[k]; !ok {
			return nil, fail(path, n, "missing key %q", k)
		}
	}
	return m, nil
}

func (d decoder) optional(path string, m map[string]*yaml.Node, key string) (ast.Expr, error) {
	n, ok := m[key]
	if !ok || n.Tag == "!!null" {
		return nil, nil
	}
	return d.expr(path+"."+key, n)
}

func (d decoder) list(path string, n *yaml.Node) ([]ast.Expr, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fail(path, n, "expected a sequence")
	}
	out := make([]ast.Expr, len(n.Content))
	for i, c := range n.Content {
		e, err := d.expr(fmt.Sprintf("%s[%d]", path, i), c)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// entries decodes a mapping of labels to expressions, keeping order and
// duplicates. A null value is an entry without expression.
func (d decoder) entries(path string, n *yaml.Node) ([]ast.Entry, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fail(path, n, "expected a mapping of labels")
	}
	out := make([]ast.Entry, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		label, val := n.Content[i].Value, n.Content[i+1]
		en := ast.Entry{Label: label}
		if val.Tag != "!!null" {
			e, err := d.expr(path+"."+label, val)
			if err != nil {
				return nil, err
			}
			en.Expr = e
		}
		out = append(out, en)
	}
	return out, nil
}

func (d decoder) binder(path string, n *yaml.Node) (string, ast.Expr, ast.Expr, error) {
	m, err := d.fields(path, n, "label", "type", "body")
	if err != nil {
		return "", nil, nil, err
	}
	t, err := d.expr(path+".type", m["type"])
	if err != nil {
		return "", nil, nil, err
	}
	body, err := d.expr(path+".body", m["body"])
	if err != nil {
		return "", nil, nil, err
	}
	return m["label"].Value, t, body, nil
}

func (d decoder) node(path, kind string, n *yaml.Node) (ast.Expr, error) {
	switch kind {
	case "var":
		return parseVar(path, n)
	case "const":
		c, ok := ast.LookupConst(n.Value)
		if !ok {
			return nil, fail(path, n, "unknown universe %q", n.Value)
		}
		return c, nil
	case "builtin":
		b, ok := ast.LookupBuiltin(n.Value)
		if !ok {
			return nil, fail(path, n, "unknown builtin %q", n.Value)
		}
		return b, nil
	case "bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fail(path, n, "%v", err)
		}
		return ast.BoolLit(b), nil
	case "natural":
		u, err := strconv.ParseUint(n.Value, 10, 64)
		if err != nil {
			return nil, fail(path, n, "bad natural %q", n.Value)
		}
		return ast.NaturalLit(u), nil
	case "integer":
		i, err := strconv.ParseInt(strings.TrimPrefix(n.Value, "+"), 10, 64)
		if err != nil {
			return nil, fail(path, n, "bad integer %q", n.Value)
		}
		return ast.IntegerLit(i), nil
	case "double":
		return parseDouble(path, n)
	case "text":
		return d.text(path, n)
	case "lambda", "forall":
		label, t, body, err := d.binder(path, n)
		if err != nil {
			return nil, err
		}
		if kind == "lambda" {
			return ast.Lambda{Label: label, Type: t, Body: body}, nil
		}
		return ast.Pi{Label: label, Type: t, Body: body}, nil
	case "app":
		m, err := d.fields(path, n, "fn", "args")
		if err != nil {
			return nil, err
		}
		fn, err := d.expr(path+".fn", m["fn"])
		if err != nil {
			return nil, err
		}
		args, err := d.list(path+".args", m["args"])
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fail(path, n, "application without arguments")
		}
		return ast.Apply(fn, args...), nil
	case "let":
		m, err := d.fields(path, n, "label", "value", "body")
		if err != nil {
			return nil, err
		}
		annot, err := d.optional(path, m, "annot")
		if err != nil {
			return nil, err
		}
		val, err := d.expr(path+".value", m["value"])
		if err != nil {
			return nil, err
		}
		body, err := d.expr(path+".body", m["body"])
		if err != nil {
			return nil, err
		}
		return ast.Let{Label: m["label"].Value, Annot: annot, Value: val, Body: body}, nil
	case "annot":
		m, err := d.fields(path, n, "expr", "type")
		if err != nil {
			return nil, err
		}
		x, err := d.expr(path+".expr", m["expr"])
		if err != nil {
			return nil, err
		}
		t, err := d.expr(path+".type", m["type"])
		if err != nil {
			return nil, err
		}
		return ast.Annot{Expr: x, Type: t}, nil
	case "list":
		m, err := d.fields(path, n)
		if err != nil {
			return nil, err
		}
		t, err := d.optional(path, m, "type")
		if err != nil {
			return nil, err
		}
		l := ast.ListLit{Type: t}
		if elems, ok := m["elems"]; ok {
			if l.Elems, err = d.list(path+".elems", elems); err != nil {
				return nil, err
			}
		}
		return l, nil
	case "some":
		x, err := d.expr(path, n)
		if err != nil {
			return nil, err
		}
		return ast.Some{Value: x}, nil
	case "record", "recordType", "union":
		es, err := d.entries(path, n)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "record":
			return ast.RecordLit{Fields: es}, nil
		case "recordType":
			return ast.RecordType{Fields: es}, nil
		}
		return ast.UnionType{Alternatives: es}, nil
	case "unionLit":
		m, err := d.fields(path, n, "label")
		if err != nil {
			return nil, err
		}
		val, err := d.optional(path, m, "value")
		if err != nil {
			return nil, err
		}
		u := ast.UnionLit{Label: m["label"].Value, Value: val}
		if alts, ok := m["alternatives"]; ok {
			if u.Alternatives, err = d.entries(path+".alternatives", alts); err != nil {
				return nil, err
			}
		}
		return u, nil
	case "field":
		m, err := d.fields(path, n, "record", "label")
		if err != nil {
			return nil, err
		}
		r, err := d.expr(path+".record", m["record"])
		if err != nil {
			return nil, err
		}
		return ast.Select{Record: r, Label: m["label"].Value}, nil
	case "project":
		m, err := d.fields(path, n, "record", "labels")
		if err != nil {
			return nil, err
		}
		r, err := d.expr(path+".record", m["record"])
		if err != nil {
			return nil, err
		}
		var labels []string
		if err := m["labels"].Decode(&labels); err != nil {
			return nil, fail(path+".labels", m["labels"], "%v", err)
		}
		return ast.Project{Record: r, Labels: labels}, nil
	case "op":
		m, err := d.fields(path, n, "op", "l", "r")
		if err != nil {
			return nil, err
		}
		op, ok := ast.LookupOp(m["op"].Value)
		if !ok {
			return nil, fail(path+".op", m["op"], "unknown operator %q", m["op"].Value)
		}
		l, err := d.expr(path+".l", m["l"])
		if err != nil {
			return nil, err
		}
		r, err := d.expr(path+".r", m["r"])
		if err != nil {
			return nil, err
		}
		return ast.BinOp{Op: op, L: l, R: r}, nil
	case "merge":
		m, err := d.fields(path, n, "handlers", "union")
		if err != nil {
			return nil, err
		}
		h, err := d.expr(path+".handlers", m["handlers"])
		if err != nil {
			return nil, err
		}
		u, err := d.expr(path+".union", m["union"])
		if err != nil {
			return nil, err
		}
		t, err := d.optional(path, m, "type")
		if err != nil {
			return nil, err
		}
		return ast.Merge{Handlers: h, Union: u, Type: t}, nil
	case "if":
		m, err := d.fields(path, n, "cond", "then", "else")
		if err != nil {
			return nil, err
		}
		var parts [3]ast.Expr
		for i, k := range []string{"cond", "then", "else"} {
			if parts[i], err = d.expr(path+"."+k, m[k]); err != nil {
				return nil, err
			}
		}
		return ast.If{Cond: parts[0], Then: parts[1], Else: parts[2]}, nil
	case "assert":
		t, err := d.expr(path, n)
		if err != nil {
			return nil, err
		}
		return ast.Assert{Type: t}, nil
	case "import":
		return ast.Import{Location: n.Value}, nil
	}
	return nil, fail(path, n, "unknown node kind %q", kind)
}

func parseDouble(path string, n *yaml.Node) (ast.Expr, error) {
	switch n.Value {
	case "NaN", ".nan", ".NaN":
		return ast.DoubleLit(math.NaN()), nil
	case "Infinity", ".inf", "+.inf":
		return ast.DoubleLit(math.Inf(1)), nil
	case "-Infinity", "-.inf":
		return ast.DoubleLit(math.Inf(-1)), nil
	}
	f, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return nil, fail(path, n, "bad double %q", n.Value)
	}
	return ast.DoubleLit(f), nil
}

func (d decoder) text(path string, n *yaml.Node) (ast.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		return ast.PlainText(n.Value), nil
	}
	m, err := d.fields(path, n)
	if err != nil {
		return nil, err
	}
	var t ast.TextLit
	if s, ok := m["suffix"]; ok {
		t.Suffix = s.Value
	}
	c, ok := m["chunks"]
	if !ok {
		return t, nil
	}
	if c.Kind != yaml.SequenceNode {
		return nil, fail(path+".chunks", c, "expected a sequence")
	}
	for i, cn := range c.Content {
		cpath := fmt.Sprintf("%s.chunks[%d]", path, i)
		cm, err := d.fields(cpath, cn, "expr")
		if err != nil {
			return nil, err
		}
		x, err := d.expr(cpath+".expr", cm["expr"])
		if err != nil {
			return nil, err
		}
		chunk := ast.Chunk{Expr: x}
		if p, ok := cm["prefix"]; ok {
			chunk.Prefix = p.Value
		}
		t.Chunks = append(t.Chunks, chunk)
	}
	return t, nil
}
