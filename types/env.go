package types

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smasher164/dhall/ast"
	"github.com/smasher164/dhall/names"
)

// Env is a typing context: a persistent stack of (name, type) bindings. A
// nil *Env is the empty context. Pushing never modifies the receiver, so an
// Env may be shared freely between goroutines.
//
// Types are stored as they were when pushed. Lookup shifts the found type
// past its own binding and every binding pushed after it, which is
// equivalent to shifting the whole context on each push.
type Env struct {
	parent *Env
	name   string
	typ    ast.Expr
	depth  int
}

// Push returns a context extending e with name : t.
func (e *Env) Push(name string, t ast.Expr) *Env {
	return &Env{parent: e, name: name, typ: t, depth: e.Len() + 1}
}

// Len is the number of bindings in e.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return e.depth
}

// Lookup returns the type of v as seen from the top of e.
func (e *Env) Lookup(v ast.Var) (ast.Expr, bool) {
	var passed []string
	n := v.Index
	for p := e; p != nil; p = p.parent {
		if p.name == v.Name {
			if n == 0 {
				t := names.Shift(1, ast.Var{Name: p.name}, p.typ)
				for i := len(passed) - 1; i >= 0; i-- {
					t = names.Shift(1, ast.Var{Name: passed[i]}, t)
				}
				return t, true
			}
			n--
		}
		passed = append(passed, p.name)
	}
	return nil, false
}

func envString(buf io.Writer, e *Env) {
	if e == nil {
		return
	}
	envString(buf, e.parent)
	fmt.Fprintf(buf, "%s\t: %s\n", ast.Label(e.name), e.typ)
}

func (e *Env) String() string {
	if e == nil {
		return "(empty)\n"
	}
	sb := new(strings.Builder)
	buf := tabwriter.NewWriter(sb, 0, 0, 1, ' ', 0)
	envString(buf, e)
	buf.Flush()
	return sb.String()
}
