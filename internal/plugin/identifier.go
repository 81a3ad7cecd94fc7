// Package plugin models the installed-plugin inventory that rules are
// evaluated against: identifiers, metadata records, and the best-effort
// binary header reader used to fill in that metadata.
package plugin

import "strings"

// ID is a case-insensitive plugin identifier. Two IDs are equal iff their
// fold-cased forms are equal; the original casing is preserved separately
// wherever a plugin record is displayed.
type ID string

// Fold returns the case-insensitive comparison key for an identifier. Every
// membership test and map lookup over plugin identifiers must go through
// Fold rather than relying on the identifier's original casing.
func Fold(id string) ID {
	return ID(strings.ToLower(id))
}

// Equal reports whether two identifiers refer to the same plugin,
// case-insensitively.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// recognizedExtensions lists the plugin extensions PLOX understands across
// the supported games, lower-cased.
var recognizedExtensions = map[string]bool{
	".esp":         true,
	".esm":         true,
	".esl":         true,
	".omwaddon":    true,
	".omwscripts":  true,
	".archive":     true,
	".reds":        true,
}

// IsPluginFile reports whether filename has a recognized plugin extension
// for any supported game.
func IsPluginFile(filename string) bool {
	ext := extOf(filename)
	return recognizedExtensions[ext]
}

func extOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i:])
}
