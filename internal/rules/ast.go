// Package rules implements the lexer and recursive-descent parser for the
// mlox-compatible rule language: bracketed rule bodies made of Order,
// Note, Conflict, Requires, and Patch directives over predicate
// expressions evaluated against an installed-plugin inventory.
package rules

import (
	"fmt"
	"regexp"
)

// Pos is the source position of a token or rule, used for provenance on
// every emitted message and diagnostic.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d", p.File, p.Line) }

// CompareOp is a VER predicate's comparison operator.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpLT
	OpGT
)

func (op CompareOp) String() string {
	switch op {
	case OpLT:
		return "<"
	case OpGT:
		return ">"
	default:
		return "="
	}
}

// Expr is a predicate expression. Concrete types are Atomic, All, Any,
// Not, Desc, Ver, and Size — a closed sum type discriminated with a type
// switch, not an open interface hierarchy.
type Expr interface {
	exprNode()
}

// Atomic is true iff Plugin is present in the inventory.
type Atomic struct {
	Plugin string
}

// All is a conjunction of its operands.
type All struct {
	Exprs []Expr
}

// Any is a disjunction of its operands.
type Any struct {
	Exprs []Expr
}

// Not negates its operand.
type Not struct {
	Expr Expr
}

// Desc is true iff Plugin is present and its description matches Pattern.
// Compiled is populated at parse time so the evaluator never recompiles a
// regex it has already seen once.
type Desc struct {
	Plugin   string
	Pattern  string
	Negate   bool
	Compiled *regexp.Regexp
}

// Ver is true iff Plugin is present and its version compares Op against
// Version.
type Ver struct {
	Plugin  string
	Op      CompareOp
	Version string
}

// Size is true iff Plugin is present and its size equals (or, if Negate,
// differs from) Bytes.
type Size struct {
	Plugin string
	Bytes  int64
	Negate bool
}

func (Atomic) exprNode() {}
func (All) exprNode()    {}
func (Any) exprNode()    {}
func (Not) exprNode()    {}
func (Desc) exprNode()   {}
func (Ver) exprNode()    {}
func (Size) exprNode()   {}

// Kind is a rule's directive type.
type Kind int

const (
	KindOrder Kind = iota
	KindNote
	KindConflict
	KindRequires
	KindPatch
)

func (k Kind) String() string {
	switch k {
	case KindOrder:
		return "Order"
	case KindNote:
		return "Note"
	case KindConflict:
		return "Conflict"
	case KindRequires:
		return "Requires"
	case KindPatch:
		return "Patch"
	default:
		return "Unknown"
	}
}

// Rule is one parsed directive, fully resolved and ready for the applier.
// Which fields are populated depends on Kind:
//
//   - Order:    Chain
//   - Note:     Message, Exprs[0]
//   - Conflict: Message, Exprs (>=2)
//   - Requires: Message, Exprs[0] (target), Exprs[1] (dependency)
//   - Patch:    Message, Chain[0] (patch plugin), Chain[1:] (required plugins)
type Rule struct {
	Kind    Kind
	Pos     Pos
	Message string
	Chain   []string
	Exprs   []Expr
}
