package types

import (
	"fmt"
	"strings"

	"github.com/smasher164/dhall/ast"
)

type ErrorKind int

const (
	ErrUnboundVariable ErrorKind = iota
	ErrUnresolvedImport
	ErrUntyped
	ErrAnnotMismatch
	ErrInvalidInputType
	ErrInvalidOutputType
	ErrNotAFunction
	ErrTypeMismatch
	ErrBuiltinMismatch
	ErrForbiddenDependentType
	ErrInvalidAlternative
	ErrInvalidFieldType
	ErrInvalidField
	ErrDuplicateField
	ErrDuplicateAlternative
	ErrMissingField
	ErrMissingAlternative
	ErrNotARecord
	ErrInvalidOperand
	ErrMustCombineRecord
	ErrFieldCollision
	ErrMergeNotRecord
	ErrMergeNotUnion
	ErrMergeHandlerNotFunction
	ErrMergeHandlerMismatch
	ErrMergeDependentHandler
	ErrMissingHandler
	ErrUnusedHandler
	ErrMergeResultMismatch
	ErrMergeEmptyNeedsAnnotation
	ErrInvalidPredicate
	ErrIfBranchMustBeTerm
	ErrIfBranchMismatch
	ErrInvalidListType
	ErrInvalidListElement
	ErrMissingListType
	ErrInvalidOptionalType
	ErrInvalidTextInterpolation
	ErrIncomparableExpression
	ErrEquivalenceTypeMismatch
	ErrNotAnEquivalence
	ErrAssertionFailed
	numErrorKinds
)

var errorKindNames = [...]string{
	ErrUnboundVariable:           "unbound variable",
	ErrUnresolvedImport:          "unresolved import",
	ErrUntyped:                   "Sort has no type",
	ErrAnnotMismatch:             "annotation mismatch",
	ErrInvalidInputType:          "invalid function input type",
	ErrInvalidOutputType:         "invalid function output type",
	ErrNotAFunction:              "not a function",
	ErrTypeMismatch:              "wrong argument type",
	ErrBuiltinMismatch:           "wrong builtin argument type",
	ErrForbiddenDependentType:    "dependent function type not allowed",
	ErrInvalidAlternative:        "invalid alternative type",
	ErrInvalidFieldType:          "invalid field type",
	ErrInvalidField:              "invalid field",
	ErrDuplicateField:            "duplicate field",
	ErrDuplicateAlternative:      "duplicate alternative",
	ErrMissingField:              "missing field",
	ErrMissingAlternative:        "missing constructor",
	ErrNotARecord:                "not a record",
	ErrInvalidOperand:            "invalid operand",
	ErrMustCombineRecord:         "can only combine records",
	ErrFieldCollision:            "field collision",
	ErrMergeNotRecord:            "merge handlers are not a record",
	ErrMergeNotUnion:             "merge argument is not a union",
	ErrMergeHandlerNotFunction:   "merge handler is not a function",
	ErrMergeHandlerMismatch:      "merge handler input type mismatch",
	ErrMergeDependentHandler:     "merge handler output type depends on its input",
	ErrMissingHandler:            "missing merge handler",
	ErrUnusedHandler:             "unused merge handler",
	ErrMergeResultMismatch:       "merge handler output types differ",
	ErrMergeEmptyNeedsAnnotation: "merge of an empty union needs an annotation",
	ErrInvalidPredicate:          "if predicate is not a Bool",
	ErrIfBranchMustBeTerm:        "if branch is not a term",
	ErrIfBranchMismatch:          "if branches have different types",
	ErrInvalidListType:           "invalid list element type",
	ErrInvalidListElement:        "list element has the wrong type",
	ErrMissingListType:           "empty list needs a type annotation",
	ErrInvalidOptionalType:       "invalid optional element type",
	ErrInvalidTextInterpolation:  "interpolated expression is not Text",
	ErrIncomparableExpression:    "only terms can be compared for equivalence",
	ErrEquivalenceTypeMismatch:   "equivalence operands have different types",
	ErrNotAnEquivalence:          "assertion is not an equivalence",
	ErrAssertionFailed:           "assertion failed",
}

func (k ErrorKind) String() string {
	if k < 0 || k >= numErrorKinds {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// TypeError describes why an expression is ill-typed.
type TypeError struct {
	Kind ErrorKind
	// Env is the context Expr was checked in.
	Env *Env
	// Expr is the expression whose typing rule failed.
	Expr ast.Expr
	// Label is the field, alternative or binder involved, if any.
	Label string
	// Index is the position of the offending list element.
	Index int
	// Subject is the offending sub-expression and Type its type.
	Subject ast.Expr
	Type    ast.Expr
	// Expected is what the rule required in place of Type.
	Expected ast.Expr
	// Other and OtherType are the second party of a mismatch between two
	// sub-expressions, such as the codomain of a forbidden function type.
	Other     ast.Expr
	OtherType ast.Expr
	Cause     error
}

func (e *TypeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Label != "" {
		fmt.Fprintf(&sb, " %s", ast.Label(e.Label))
	}
	if e.Subject != nil {
		fmt.Fprintf(&sb, ": %s", e.Subject)
		if e.Type != nil {
			fmt.Fprintf(&sb, " : %s", e.Type)
		}
	}
	if e.Expected != nil {
		fmt.Fprintf(&sb, ", expected %s", e.Expected)
	}
	if e.Other != nil {
		fmt.Fprintf(&sb, "; %s", e.Other)
		if e.OtherType != nil {
			fmt.Fprintf(&sb, " : %s", e.OtherType)
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *TypeError) Unwrap() error { return e.Cause }
