package ast

// Expr is a node of an expression tree. Trees are immutable: every
// transformation in this module builds a new tree and may share unchanged
// subtrees with its input.
type Expr interface {
	isExpr()
	String() string
}

var (
	_ Expr = Var{}
	_ Expr = Const(0)
	_ Expr = Builtin(0)
	_ Expr = Lambda{}
	_ Expr = Pi{}
	_ Expr = App{}
	_ Expr = Let{}
	_ Expr = Annot{}
	_ Expr = BoolLit(false)
	_ Expr = NaturalLit(0)
	_ Expr = IntegerLit(0)
	_ Expr = DoubleLit(0)
	_ Expr = TextLit{}
	_ Expr = ListLit{}
	_ Expr = Some{}
	_ Expr = RecordType{}
	_ Expr = RecordLit{}
	_ Expr = UnionType{}
	_ Expr = UnionLit{}
	_ Expr = Select{}
	_ Expr = Project{}
	_ Expr = BinOp{}
	_ Expr = Merge{}
	_ Expr = If{}
	_ Expr = Assert{}
	_ Expr = Import{}
)

// Var refers to the binder named Name, skipping Index binders of the same
// name between the occurrence and the one it refers to.
type Var struct {
	Name  string
	Index int
}

// Lambda is λ(Label : Type) → Body.
type Lambda struct {
	Label string
	Type  Expr
	Body  Expr
}

// Pi is ∀(Label : Type) → Body. A function type whose body does not mention
// Label is written Type → Body.
type Pi struct {
	Label string
	Type  Expr
	Body  Expr
}

type App struct {
	Fn  Expr
	Arg Expr
}

// Let is let Label : Annot = Value in Body. Annot may be nil.
type Let struct {
	Label string
	Annot Expr
	Value Expr
	Body  Expr
}

type Annot struct {
	Expr Expr
	Type Expr
}

type BoolLit bool

type NaturalLit uint64

type IntegerLit int64

type DoubleLit float64

// TextLit is Chunks[0].Prefix ${Chunks[0].Expr} ... Suffix.
type TextLit struct {
	Chunks []Chunk
	Suffix string
}

type Chunk struct {
	Prefix string
	Expr   Expr
}

// ListLit holds the element type in Type. Type is required for an empty
// list and optional otherwise.
type ListLit struct {
	Type  Expr
	Elems []Expr
}

type Some struct {
	Value Expr
}

// Entry is a labelled sub-expression of a record or union.
type Entry struct {
	Label string
	Expr  Expr
}

type RecordType struct {
	Fields []Entry
}

type RecordLit struct {
	Fields []Entry
}

// UnionType alternatives with a nil Expr carry no payload.
type UnionType struct {
	Alternatives []Entry
}

// UnionLit is < Label = Value | Alternatives... >. A nil Value selects an
// alternative without payload.
type UnionLit struct {
	Label        string
	Value        Expr
	Alternatives []Entry
}

// Select is Record.Label, for records and for union constructors.
type Select struct {
	Record Expr
	Label  string
}

type Project struct {
	Record Expr
	Labels []string
}

type BinOp struct {
	Op Op
	L  Expr
	R  Expr
}

// Merge is merge Handlers Union : Type. Type may be nil.
type Merge struct {
	Handlers Expr
	Union    Expr
	Type     Expr
}

type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

type Assert struct {
	Type Expr
}

// Import marks a reference the resolver never filled in.
type Import struct {
	Location string
}

func (Var) isExpr()        {}
func (Const) isExpr()      {}
func (Builtin) isExpr()    {}
func (Lambda) isExpr()     {}
func (Pi) isExpr()         {}
func (App) isExpr()        {}
func (Let) isExpr()        {}
func (Annot) isExpr()      {}
func (BoolLit) isExpr()    {}
func (NaturalLit) isExpr() {}
func (IntegerLit) isExpr() {}
func (DoubleLit) isExpr()  {}
func (TextLit) isExpr()    {}
func (ListLit) isExpr()    {}
func (Some) isExpr()       {}
func (RecordType) isExpr() {}
func (RecordLit) isExpr()  {}
func (UnionType) isExpr()  {}
func (UnionLit) isExpr()   {}
func (Select) isExpr()     {}
func (Project) isExpr()    {}
func (BinOp) isExpr()      {}
func (Merge) isExpr()      {}
func (If) isExpr()         {}
func (Assert) isExpr()     {}
func (Import) isExpr()     {}

// Apply builds the left-nested application f a0 a1 ...
func Apply(f Expr, args ...Expr) Expr {
	for _, a := range args {
		f = App{Fn: f, Arg: a}
	}
	return f
}

// Spine splits nested applications into their head and arguments.
func Spine(e Expr) (Expr, []Expr) {
	var args []Expr
	for {
		app, ok := e.(App)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		e = app.Fn
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return e, args
}

// Arrow is the non-dependent function type a → b.
func Arrow(a, b Expr) Pi {
	return Pi{Label: "_", Type: a, Body: b}
}

// PlainText is a text literal without interpolations.
func PlainText(s string) TextLit {
	return TextLit{Suffix: s}
}
