package ast

import "fmt"

// Const is one of the universes Type, Kind and Sort, in increasing order.
type Const int

const (
	Type Const = iota
	Kind
	Sort
)

func (c Const) String() string {
	switch c {
	case Type:
		return "Type"
	case Kind:
		return "Kind"
	case Sort:
		return "Sort"
	default:
		panic("unreachable")
	}
}

type Builtin int

const (
	Bool              Builtin = iota // Bool
	Natural                          // Natural
	Integer                          // Integer
	Double                           // Double
	Text                             // Text
	List                             // List
	Optional                         // Optional
	None                             // None
	NaturalBuild                     // Natural/build
	NaturalFold                      // Natural/fold
	NaturalIsZero                    // Natural/isZero
	NaturalEven                      // Natural/even
	NaturalOdd                       // Natural/odd
	NaturalToInteger                 // Natural/toInteger
	NaturalShow                      // Natural/show
	NaturalSubtract                  // Natural/subtract
	IntegerShow                      // Integer/show
	IntegerToDouble                  // Integer/toDouble
	DoubleShow                       // Double/show
	TextShow                         // Text/show
	ListBuild                        // List/build
	ListFold                         // List/fold
	ListLength                       // List/length
	ListHead                         // List/head
	ListLast                         // List/last
	ListIndexed                      // List/indexed
	ListReverse                      // List/reverse
	OptionalFold                     // Optional/fold
	OptionalBuild                    // Optional/build
	numBuiltins
)

var builtinNames = [...]string{
	Bool:             "Bool",
	Natural:          "Natural",
	Integer:          "Integer",
	Double:           "Double",
	Text:             "Text",
	List:             "List",
	Optional:         "Optional",
	None:             "None",
	NaturalBuild:     "Natural/build",
	NaturalFold:      "Natural/fold",
	NaturalIsZero:    "Natural/isZero",
	NaturalEven:      "Natural/even",
	NaturalOdd:       "Natural/odd",
	NaturalToInteger: "Natural/toInteger",
	NaturalShow:      "Natural/show",
	NaturalSubtract:  "Natural/subtract",
	IntegerShow:      "Integer/show",
	IntegerToDouble:  "Integer/toDouble",
	DoubleShow:       "Double/show",
	TextShow:         "Text/show",
	ListBuild:        "List/build",
	ListFold:         "List/fold",
	ListLength:       "List/length",
	ListHead:         "List/head",
	ListLast:         "List/last",
	ListIndexed:      "List/indexed",
	ListReverse:      "List/reverse",
	OptionalFold:     "Optional/fold",
	OptionalBuild:    "Optional/build",
}

func (b Builtin) String() string {
	if b < 0 || b >= numBuiltins {
		panic(fmt.Sprintf("unknown builtin %d", int(b)))
	}
	return builtinNames[b]
}

var builtinByName = func() map[string]Builtin {
	m := make(map[string]Builtin, numBuiltins)
	for b := Builtin(0); b < numBuiltins; b++ {
		m[builtinNames[b]] = b
	}
	return m
}()

// LookupBuiltin returns the builtin spelled name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinByName[name]
	return b, ok
}

// LookupConst returns the universe spelled name.
func LookupConst(name string) (Const, bool) {
	switch name {
	case "Type":
		return Type, true
	case "Kind":
		return Kind, true
	case "Sort":
		return Sort, true
	}
	return 0, false
}

type Op int

const (
	BoolAnd           Op = iota // &&
	BoolOr                      // ||
	BoolEQ                      // ==
	BoolNE                      // !=
	NaturalPlus                 // +
	NaturalTimes                // *
	TextAppend                  // ++
	ListAppend                  // #
	RecordCombine               // ∧
	RecordPrefer                // ⫽
	RecordTypeCombine           // ⩓
	Equivalence                 // ≡
)

var opSymbols = map[Op]string{
	BoolAnd:           "&&",
	BoolOr:            "||",
	BoolEQ:            "==",
	BoolNE:            "!=",
	NaturalPlus:       "+",
	NaturalTimes:      "*",
	TextAppend:        "++",
	ListAppend:        "#",
	RecordCombine:     "∧",
	RecordPrefer:      "⫽",
	RecordTypeCombine: "⩓",
	Equivalence:       "≡",
}

// ascii spellings accepted in addition to the symbols above.
var opASCII = map[string]Op{
	`/\`:   RecordCombine,
	`//`:   RecordPrefer,
	`//\\`: RecordTypeCombine,
	"===":  Equivalence,
}

func (o Op) String() string {
	if s, ok := opSymbols[o]; ok {
		return s
	}
	panic(fmt.Sprintf("unknown operator %d", int(o)))
}

// LookupOp returns the operator spelled s, either as its symbol or its
// ASCII form.
func LookupOp(s string) (Op, bool) {
	for o, sym := range opSymbols {
		if sym == s {
			return o, true
		}
	}
	o, ok := opASCII[s]
	return o, ok
}
