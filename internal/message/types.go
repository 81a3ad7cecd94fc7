// Package message defines the notes, conflicts, and diagnostics the
// applier and cycle reporter emit, and collects them the way a conflict
// triage report aggregates findings by severity for a human reader.
package message

import "github.com/rfuzzo/plox/internal/rules"

// Kind is the directive or diagnostic that produced a message.
type Kind string

const (
	KindNote       Kind = "NOTE"
	KindConflict   Kind = "CONFLICT"
	KindRequires   Kind = "REQUIRES"
	KindPatch      Kind = "PATCH"
	KindOrderCycle Kind = "ORDER-CYCLE"
	KindParseError Kind = "PARSE-ERROR"
)

// Severity ranks a message for display; it never affects emission order.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// severityOf is the fixed kind-to-severity mapping.
var severityOf = map[Kind]Severity{
	KindParseError: SeverityError,
	KindOrderCycle: SeverityError,
	KindRequires:   SeverityWarning,
	KindPatch:      SeverityWarning,
	KindConflict:   SeverityWarning,
	KindNote:       SeverityInfo,
}

// SeverityFor returns k's fixed severity.
func SeverityFor(k Kind) Severity {
	if s, ok := severityOf[k]; ok {
		return s
	}
	return SeverityInfo
}

// Message is one emitted note, conflict, warning, or diagnostic.
type Message struct {
	Kind     Kind      `json:"kind"`
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
	Plugins  []string  `json:"plugins,omitempty"`
	Source   rules.Pos `json:"source"`
}

// New builds a Message with kind's fixed severity already attached.
func New(kind Kind, text string, source rules.Pos, plugins ...string) Message {
	return Message{
		Kind:     kind,
		Severity: SeverityFor(kind),
		Text:     text,
		Plugins:  plugins,
		Source:   source,
	}
}
