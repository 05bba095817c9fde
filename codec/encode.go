package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/fsx"
)

// Encode writes e to w as YAML. Mappings are written with sorted keys, so
// the output decodes back to e whenever e is in normal form.
func Encode(w io.Writer, e ast.Expr) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value(e)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteFile encodes e into the file name of fsys, replacing its contents.
func WriteFile(fsys fs.FS, name string, e ast.Expr) (err error) {
	f, err := fsx.Create(fsys, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := Encode(f, e); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Marshal returns the YAML encoding of e.
func Marshal(e ast.Expr) ([]byte, error) {
	return yaml.Marshal(value(e))
}

// MarshalJSON returns the JSON encoding of e.
func MarshalJSON(e ast.Expr) ([]byte, error) {
	return json.MarshalIndent(value(e), "", "  ")
}

type obj = map[string]any

func values(es []ast.Expr) []any {
	return lo.Map(es, func(e ast.Expr, _ int) any { return value(e) })
}

func entryValues(es []ast.Entry) obj {
	m := make(obj, len(es))
	for _, en := range es {
		if en.Expr == nil {
			m[en.Label] = nil
		} else {
			m[en.Label] = value(en.Expr)
		}
	}
	return m
}

// shadowed reports whether a variable named name would read back as a
// universe or builtin when written as a plain scalar.
func shadowed(name string) bool {
	if _, ok := ast.LookupConst(name); ok {
		return true
	}
	_, ok := ast.LookupBuiltin(name)
	return ok
}

// value converts e to plain maps, slices and scalars.
func value(e ast.Expr) any {
	switch e := e.(type) {
	case ast.Var:
		s := e.Name
		if e.Index != 0 {
			s = fmt.Sprintf("%s@%d", e.Name, e.Index)
		}
		if shadowed(e.Name) {
			return obj{"var": s}
		}
		return s
	case ast.Const:
		return e.String()
	case ast.Builtin:
		return e.String()
	case ast.BoolLit:
		return bool(e)
	case ast.NaturalLit:
		return obj{"natural": uint64(e)}
	case ast.IntegerLit:
		return obj{"integer": int64(e)}
	case ast.DoubleLit:
		return obj{"double": ast.FormatDouble(float64(e))}
	case ast.TextLit:
		if len(e.Chunks) == 0 {
			return obj{"text": e.Suffix}
		}
		chunks := lo.Map(e.Chunks, func(c ast.Chunk, _ int) any {
			return obj{"prefix": c.Prefix, "expr": value(c.Expr)}
		})
		return obj{"text": obj{"chunks": chunks, "suffix": e.Suffix}}
	case ast.Lambda:
		return obj{"lambda": obj{"label": e.Label, "type": value(e.Type), "body": value(e.Body)}}
	case ast.Pi:
		return obj{"forall": obj{"label": e.Label, "type": value(e.Type), "body": value(e.Body)}}
	case ast.App:
		head, args := ast.Spine(e)
		return obj{"app": obj{"fn": value(head), "args": values(args)}}
	case ast.Let:
		m := obj{"label": e.Label, "value": value(e.Value), "body": value(e.Body)}
		if e.Annot != nil {
			m["annot"] = value(e.Annot)
		}
		return obj{"let": m}
	case ast.Annot:
		return obj{"annot": obj{"expr": value(e.Expr), "type": value(e.Type)}}
	case ast.ListLit:
		m := obj{}
		if e.Type != nil {
			m["type"] = value(e.Type)
		}
		if len(e.Elems) > 0 {
			m["elems"] = values(e.Elems)
		}
		return obj{"list": m}
	case ast.Some:
		return obj{"some": value(e.Value)}
	case ast.RecordLit:
		return obj{"record": entryValues(e.Fields)}
	case ast.RecordType:
		return obj{"recordType": entryValues(e.Fields)}
	case ast.UnionType:
		return obj{"union": entryValues(e.Alternatives)}
	case ast.UnionLit:
		m := obj{"label": e.Label, "alternatives": entryValues(e.Alternatives)}
		if e.Value != nil {
			m["value"] = value(e.Value)
		}
		return obj{"unionLit": m}
	case ast.Select:
		return obj{"field": obj{"record": value(e.Record), "label": e.Label}}
	case ast.Project:
		return obj{"project": obj{"record": value(e.Record), "labels": e.Labels}}
	case ast.BinOp:
		return obj{"op": obj{"op": e.Op.String(), "l": value(e.L), "r": value(e.R)}}
	case ast.Merge:
		m := obj{"handlers": value(e.Handlers), "union": value(e.Union)}
		if e.Type != nil {
			m["type"] = value(e.Type)
		}
		return obj{"merge": m}
	case ast.If:
		return obj{"if": obj{"cond": value(e.Cond), "then": value(e.Then), "else": value(e.Else)}}
	case ast.Assert:
		return obj{"assert": value(e.Type)}
	case ast.Import:
		return obj{"import": e.Location}
	}
	panic(fmt.Sprintf("unimplemented: %T", e))
}
