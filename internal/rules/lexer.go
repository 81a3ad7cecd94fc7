package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// predToken is one lexical element of a single predicate line. Predicate
// lines are short enough that a per-line token slice is simpler to reason
// about than a whole-file token stream, and it keeps DESC's slash-delimited
// regex lexing (which cannot be tokenized by the normal word rules) local
// to the line it appears on.
type predToken struct {
	text string
	kind predKind
}

type predKind int

const (
	predLBracket predKind = iota
	predRBracket
	predWord
)

// lexPredicateLine tokenizes one predicate line into brackets and bare
// words. DESC's "/regex/" form is special-cased: once the lexer sees
// "DESC" or "DESC!" immediately followed by '/', it consumes the entire
// slash-delimited span up to the next '/' as a single word token,
// regex metacharacters and internal whitespace alike, rather than
// splitting on whitespace the way every other word does.
func lexPredicateLine(line string) ([]predToken, error) {
	var toks []predToken
	runes := []rune(line)
	i, n := 0, len(runes)

	for i < n {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '[':
			toks = append(toks, predToken{"[", predLBracket})
			i++
		case c == ']':
			toks = append(toks, predToken{"]", predRBracket})
			i++
		default:
			if word, next, ok := lexDescToken(runes, i); ok {
				toks = append(toks, predToken{word, predWord})
				i = next
				continue
			}
			if descPrefix(runes, i) {
				return nil, fmt.Errorf("unterminated regex literal in DESC predicate")
			}
			start := i
			for i < n && runes[i] != ' ' && runes[i] != '\t' && runes[i] != '[' && runes[i] != ']' {
				i++
			}
			toks = append(toks, predToken{string(runes[start:i]), predWord})
		}
	}
	return toks, nil
}

// descKeywordLen reports the length of a "desc" or "desc!" keyword
// (case-insensitive) starting at i, or 0 if runes[i:] doesn't start with
// one.
func descKeywordLen(runes []rune, i int) int {
	n := len(runes)
	if i+4 > n || !strings.EqualFold(string(runes[i:i+4]), "desc") {
		return 0
	}
	if i+5 <= n && runes[i+4] == '!' {
		return 5
	}
	return 4
}

// descPrefix reports whether runes[i:] looks like the start of a DESC
// predicate's regex literal ("DESC/" or "DESC!/"), used to distinguish a
// genuinely unterminated regex from a word that merely starts with "desc".
func descPrefix(runes []rune, i int) bool {
	kwLen := descKeywordLen(runes, i)
	return kwLen > 0 && i+kwLen < len(runes) && runes[i+kwLen] == '/'
}

// lexDescToken consumes a full "DESC/regex/" or "DESC!/regex/" span
// starting at i, spanning any internal whitespace, and returns the merged
// token text and the position just past the closing '/'. ok is false if
// runes[i:] isn't a DESC-prefixed regex literal at all (not merely an
// unterminated one); the caller distinguishes "not DESC" from
// "unterminated DESC" via descPrefix.
func lexDescToken(runes []rune, i int) (word string, next int, ok bool) {
	n := len(runes)
	kwLen := descKeywordLen(runes, i)
	if kwLen == 0 || i+kwLen >= n || runes[i+kwLen] != '/' {
		return "", i, false
	}
	regexStart := i + kwLen + 1
	j := regexStart
	for j < n && runes[j] != '/' {
		j++
	}
	if j >= n {
		return "", i, false
	}
	return string(runes[i : j+1]), j + 1, true
}

// parseByteSize parses a SIZE predicate's byte count, accepting a bare
// decimal integer.
func parseByteSize(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
