package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// kindHeaders maps a rule header's bracketed keyword (case-insensitive) to
// its Kind.
var kindHeaders = map[string]Kind{
	"order":    KindOrder,
	"note":     KindNote,
	"conflict": KindConflict,
	"requires": KindRequires,
	"patch":    KindPatch,
}

// pendingRule accumulates the raw body lines of a rule currently being
// read, before it is handed to buildRule at the next blank line or EOF.
type pendingRule struct {
	kind  Kind
	pos   Pos
	lines []lineText
}

type lineText struct {
	text string
	line int
}

// Parse lexes and parses file's rule text. Malformed rules are discarded
// and reported as diagnostics in the returned error (a *multierror.Error);
// parsing always continues to the end of the file, so the returned rule
// slice and error can both be non-nil.
func Parse(filename, text string) ([]Rule, error) {
	var (
		rules   []Rule
		diags   *multierror.Error
		pending *pendingRule
	)

	finalize := func() {
		if pending == nil {
			return
		}
		rule, err := buildRule(*pending)
		if err != nil {
			diags = multierror.Append(diags, fmt.Errorf("%s: %w", pending.pos, err))
		} else {
			rules = append(rules, rule)
		}
		pending = nil
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" {
			finalize()
			continue
		}
		if strings.HasPrefix(trimmed, ";") {
			continue
		}

		if kind, ok := parseHeader(trimmed); ok {
			finalize()
			pending = &pendingRule{kind: kind, pos: Pos{File: filename, Line: lineNo}}
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && !strings.ContainsAny(trimmed[1:len(trimmed)-1], " \t") {
			// A one-word bracketed line that parseHeader rejected is an
			// unknown rule header: it ends the pending rule instead of
			// being read as one of its body lines.
			finalize()
			diags = multierror.Append(diags, fmt.Errorf("%s:%d: unknown rule kind %s", filename, lineNo, trimmed))
			continue
		}

		if pending == nil {
			diags = multierror.Append(diags, fmt.Errorf("%s:%d: body line outside of any rule: %q", filename, lineNo, trimmed))
			continue
		}
		pending.lines = append(pending.lines, lineText{text: trimmed, line: lineNo})
	}
	finalize()

	return rules, diags.ErrorOrNil()
}

// parseHeader recognizes a rule header line like "[Order]" and reports
// its Kind. Anything inside the brackets that isn't a known kind keyword
// is reported false so the caller can decide how to recover.
func parseHeader(line string) (Kind, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return 0, false
	}
	inner := strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
	kind, ok := kindHeaders[inner]
	return kind, ok
}

func buildRule(p pendingRule) (Rule, error) {
	switch p.kind {
	case KindOrder:
		return buildOrder(p)
	case KindNote:
		return buildSinglePredicate(p, KindNote)
	case KindConflict:
		return buildConflict(p)
	case KindRequires:
		return buildRequires(p)
	case KindPatch:
		return buildPatch(p)
	default:
		return Rule{}, fmt.Errorf("unknown rule kind")
	}
}

func buildOrder(p pendingRule) (Rule, error) {
	if len(p.lines) < 2 {
		return Rule{}, fmt.Errorf("Order rule needs at least two plugins, got %d", len(p.lines))
	}
	chain := make([]string, len(p.lines))
	for i, l := range p.lines {
		chain[i] = l.text
	}
	return Rule{Kind: KindOrder, Pos: p.pos, Chain: chain}, nil
}

func buildSinglePredicate(p pendingRule, kind Kind) (Rule, error) {
	if len(p.lines) < 2 {
		return Rule{}, fmt.Errorf("%s rule needs a message line and one predicate line", kind)
	}
	message := p.lines[0].text
	expr, err := parseExprLine(p.lines[1].text)
	if err != nil {
		return Rule{}, fmt.Errorf("%s rule predicate: %w", kind, err)
	}
	return Rule{Kind: kind, Pos: p.pos, Message: message, Exprs: []Expr{expr}}, nil
}

func buildConflict(p pendingRule) (Rule, error) {
	if len(p.lines) < 3 {
		return Rule{}, fmt.Errorf("Conflict rule needs a message line and at least two predicate lines")
	}
	message := p.lines[0].text
	exprs := make([]Expr, 0, len(p.lines)-1)
	for _, l := range p.lines[1:] {
		e, err := parseExprLine(l.text)
		if err != nil {
			return Rule{}, fmt.Errorf("Conflict rule predicate at line %d: %w", l.line, err)
		}
		exprs = append(exprs, e)
	}
	return Rule{Kind: KindConflict, Pos: p.pos, Message: message, Exprs: exprs}, nil
}

func buildRequires(p pendingRule) (Rule, error) {
	if len(p.lines) != 3 {
		return Rule{}, fmt.Errorf("Requires rule needs a message line plus exactly two predicate lines, got %d predicate line(s)", len(p.lines)-1)
	}
	message := p.lines[0].text
	target, err := parseExprLine(p.lines[1].text)
	if err != nil {
		return Rule{}, fmt.Errorf("Requires target predicate: %w", err)
	}
	dep, err := parseExprLine(p.lines[2].text)
	if err != nil {
		return Rule{}, fmt.Errorf("Requires dependency predicate: %w", err)
	}
	return Rule{Kind: KindRequires, Pos: p.pos, Message: message, Exprs: []Expr{target, dep}}, nil
}

func buildPatch(p pendingRule) (Rule, error) {
	if len(p.lines) < 3 {
		return Rule{}, fmt.Errorf("Patch rule needs a message line, a patch plugin, and at least one required plugin")
	}
	message := p.lines[0].text
	chain := make([]string, len(p.lines)-1)
	for i, l := range p.lines[1:] {
		chain[i] = l.text
	}
	return Rule{Kind: KindPatch, Pos: p.pos, Message: message, Chain: chain}, nil
}

// parseExprLine parses one full predicate line into an Expr.
func parseExprLine(line string) (Expr, error) {
	toks, err := lexPredicateLine(line)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty predicate line")
	}
	pos := 0
	e, err := parseExpr(toks, &pos)
	if err != nil {
		return nil, err
	}
	if pos != len(toks) {
		return nil, fmt.Errorf("unexpected trailing tokens after predicate")
	}
	return e, nil
}

func parseExpr(toks []predToken, pos *int) (Expr, error) {
	if *pos >= len(toks) {
		return nil, fmt.Errorf("unexpected end of predicate")
	}
	tok := toks[*pos]
	if tok.kind != predLBracket {
		*pos++
		return Atomic{Plugin: tok.text}, nil
	}

	*pos++ // consume '['
	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("expected keyword after '['")
	}
	keyword := toks[*pos]
	*pos++

	upper := strings.ToUpper(keyword.text)
	switch {
	case upper == "ALL":
		return parseExprList(toks, pos, func(es []Expr) Expr { return All{Exprs: es} })
	case upper == "ANY":
		return parseExprList(toks, pos, func(es []Expr) Expr { return Any{Exprs: es} })
	case upper == "NOT":
		inner, err := parseExpr(toks, pos)
		if err != nil {
			return nil, fmt.Errorf("NOT: %w", err)
		}
		if err := expectRBracket(toks, pos); err != nil {
			return nil, fmt.Errorf("NOT: %w", err)
		}
		return Not{Expr: inner}, nil
	case strings.HasPrefix(upper, "DESC"):
		return parseDesc(keyword.text, toks, pos)
	case upper == "VER":
		return parseVer(toks, pos)
	case strings.HasPrefix(upper, "SIZE"):
		return parseSize(keyword.text, toks, pos)
	default:
		return nil, fmt.Errorf("unknown predicate keyword %q", keyword.text)
	}
}

func parseExprList(toks []predToken, pos *int, build func([]Expr) Expr) (Expr, error) {
	var exprs []Expr
	for {
		if *pos >= len(toks) {
			return nil, fmt.Errorf("unterminated predicate list")
		}
		if toks[*pos].kind == predRBracket {
			*pos++
			if len(exprs) == 0 {
				return nil, fmt.Errorf("predicate list must not be empty")
			}
			return build(exprs), nil
		}
		e, err := parseExpr(toks, pos)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
}

func expectRBracket(toks []predToken, pos *int) error {
	if *pos >= len(toks) || toks[*pos].kind != predRBracket {
		return fmt.Errorf("expected closing ']'")
	}
	*pos++
	return nil
}

// parseDesc handles a keyword token already merged with its slash-delimited
// regex by the lexer, e.g. "DESC/foo.*bar/" or "DESC!/foo/".
func parseDesc(keyword string, toks []predToken, pos *int) (Expr, error) {
	negate := strings.HasPrefix(strings.ToUpper(keyword), "DESC!")
	prefixLen := len("DESC")
	if negate {
		prefixLen = len("DESC!")
	}
	rest := keyword[prefixLen:]
	if len(rest) < 2 || rest[0] != '/' || rest[len(rest)-1] != '/' {
		return nil, fmt.Errorf("DESC predicate missing /regex/ literal")
	}
	pattern := rest[1 : len(rest)-1]

	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("DESC predicate missing plugin reference")
	}
	plugin := toks[*pos].text
	*pos++
	if err := expectRBracket(toks, pos); err != nil {
		return nil, fmt.Errorf("DESC: %w", err)
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("DESC regex %q: %w", pattern, err)
	}
	return Desc{Plugin: plugin, Pattern: pattern, Negate: negate, Compiled: compiled}, nil
}

func parseVer(toks []predToken, pos *int) (Expr, error) {
	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("VER predicate missing operator")
	}
	opTok := toks[*pos].text
	*pos++

	var op CompareOp
	var versionPart string
	switch {
	case opTok == "=" || opTok == "<" || opTok == ">":
		op = opFromString(opTok)
		if *pos >= len(toks) || toks[*pos].kind != predWord {
			return nil, fmt.Errorf("VER predicate missing version")
		}
		versionPart = toks[*pos].text
		*pos++
	case len(opTok) > 1 && (opTok[0] == '=' || opTok[0] == '<' || opTok[0] == '>'):
		op = opFromString(string(opTok[0]))
		versionPart = opTok[1:]
	default:
		return nil, fmt.Errorf("VER predicate has invalid operator %q", opTok)
	}

	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("VER predicate missing plugin reference")
	}
	plugin := toks[*pos].text
	*pos++
	if err := expectRBracket(toks, pos); err != nil {
		return nil, fmt.Errorf("VER: %w", err)
	}
	return Ver{Plugin: plugin, Op: op, Version: versionPart}, nil
}

func opFromString(s string) CompareOp {
	switch s {
	case "<":
		return OpLT
	case ">":
		return OpGT
	default:
		return OpEQ
	}
}

func parseSize(keyword string, toks []predToken, pos *int) (Expr, error) {
	negate := strings.HasSuffix(keyword, "!")

	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("SIZE predicate missing byte count")
	}
	bytes, err := parseByteSize(toks[*pos].text)
	if err != nil {
		return nil, fmt.Errorf("SIZE predicate: %w", err)
	}
	*pos++

	if *pos >= len(toks) || toks[*pos].kind != predWord {
		return nil, fmt.Errorf("SIZE predicate missing plugin reference")
	}
	plugin := toks[*pos].text
	*pos++
	if err := expectRBracket(toks, pos); err != nil {
		return nil, fmt.Errorf("SIZE: %w", err)
	}
	return Size{Plugin: plugin, Bytes: bytes, Negate: negate}, nil
}
