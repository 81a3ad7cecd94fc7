package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Rules wraps a rule set. The rule-file cache stores a parsed AST through
// Marshal/Unmarshal, which work on []Rule directly, so a later run skips
// re-lexing/re-parsing. Expr is an
// interface, so Marshal/Unmarshal thread a "type" discriminator through a
// wire-friendly wrapper rather than leaning on encoding/json's default
// struct handling, which cannot see through an interface field.
type Rules struct {
	Items []Rule
}

type wireRule struct {
	Kind    Kind        `json:"kind"`
	File    string      `json:"file"`
	Line    int         `json:"line"`
	Message string      `json:"message,omitempty"`
	Chain   []string    `json:"chain,omitempty"`
	Exprs   []wireExpr  `json:"exprs,omitempty"`
}

type wireExpr struct {
	Type    string     `json:"type"`
	Plugin  string     `json:"plugin,omitempty"`
	Pattern string     `json:"pattern,omitempty"`
	Negate  bool       `json:"negate,omitempty"`
	Op      CompareOp  `json:"op,omitempty"`
	Version string     `json:"version,omitempty"`
	Bytes   int64      `json:"bytes,omitempty"`
	Sub     []wireExpr `json:"sub,omitempty"`
}

// Marshal serializes a rule set to JSON.
func Marshal(rs []Rule) ([]byte, error) {
	wire := make([]wireRule, len(rs))
	for i, r := range rs {
		w := wireRule{
			Kind:    r.Kind,
			File:    r.Pos.File,
			Line:    r.Pos.Line,
			Message: r.Message,
			Chain:   r.Chain,
		}
		for _, e := range r.Exprs {
			w.Exprs = append(w.Exprs, toWireExpr(e))
		}
		wire[i] = w
	}
	return json.Marshal(wire)
}

// Unmarshal deserializes a rule set previously produced by Marshal.
func Unmarshal(data []byte) ([]Rule, error) {
	var wire []wireRule
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("rules: unmarshal: %w", err)
	}
	out := make([]Rule, len(wire))
	for i, w := range wire {
		r := Rule{
			Kind:    w.Kind,
			Pos:     Pos{File: w.File, Line: w.Line},
			Message: w.Message,
			Chain:   w.Chain,
		}
		for _, we := range w.Exprs {
			e, err := fromWireExpr(we)
			if err != nil {
				return nil, err
			}
			r.Exprs = append(r.Exprs, e)
		}
		out[i] = r
	}
	return out, nil
}

func toWireExpr(e Expr) wireExpr {
	switch e := e.(type) {
	case Atomic:
		return wireExpr{Type: "atomic", Plugin: e.Plugin}
	case All:
		w := wireExpr{Type: "all"}
		for _, sub := range e.Exprs {
			w.Sub = append(w.Sub, toWireExpr(sub))
		}
		return w
	case Any:
		w := wireExpr{Type: "any"}
		for _, sub := range e.Exprs {
			w.Sub = append(w.Sub, toWireExpr(sub))
		}
		return w
	case Not:
		return wireExpr{Type: "not", Sub: []wireExpr{toWireExpr(e.Expr)}}
	case Desc:
		return wireExpr{Type: "desc", Plugin: e.Plugin, Pattern: e.Pattern, Negate: e.Negate}
	case Ver:
		return wireExpr{Type: "ver", Plugin: e.Plugin, Op: e.Op, Version: e.Version}
	case Size:
		return wireExpr{Type: "size", Plugin: e.Plugin, Bytes: e.Bytes, Negate: e.Negate}
	default:
		return wireExpr{Type: "unknown"}
	}
}

func fromWireExpr(w wireExpr) (Expr, error) {
	switch w.Type {
	case "atomic":
		return Atomic{Plugin: w.Plugin}, nil
	case "all":
		subs, err := subExprs(w.Sub)
		if err != nil {
			return nil, err
		}
		return All{Exprs: subs}, nil
	case "any":
		subs, err := subExprs(w.Sub)
		if err != nil {
			return nil, err
		}
		return Any{Exprs: subs}, nil
	case "not":
		if len(w.Sub) != 1 {
			return nil, fmt.Errorf("rules: NOT must have exactly one operand")
		}
		sub, err := fromWireExpr(w.Sub[0])
		if err != nil {
			return nil, err
		}
		return Not{Expr: sub}, nil
	case "desc":
		compiled, err := regexp.Compile(w.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: recompile cached DESC regex %q: %w", w.Pattern, err)
		}
		return Desc{Plugin: w.Plugin, Pattern: w.Pattern, Negate: w.Negate, Compiled: compiled}, nil
	case "ver":
		return Ver{Plugin: w.Plugin, Op: w.Op, Version: w.Version}, nil
	case "size":
		return Size{Plugin: w.Plugin, Bytes: w.Bytes, Negate: w.Negate}, nil
	default:
		return nil, fmt.Errorf("rules: unknown cached expression type %q", w.Type)
	}
}

func subExprs(ws []wireExpr) ([]Expr, error) {
	out := make([]Expr, len(ws))
	for i, w := range ws {
		e, err := fromWireExpr(w)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
