package plugin

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// Version wraps a parsed plugin version for VER-predicate comparisons.
type Version struct {
	raw string
	sv  *semver.Version
}

// trailingJunk strips anything past a recognizable major[.minor[.patch]]
// numeric run, the way a mod's INTV/version string often carries a suffix
// like "1.2.0 hotfix" or "v3.1-beta" that the rule author never intended as
// part of the comparable version.
var trailingJunk = regexp.MustCompile(`^[vV]?(\d+(?:\.\d+){0,2})`)

// ParseVersion parses s leniently: a leading "v", missing minor/patch
// components, and trailing non-numeric text are all tolerated.
func ParseVersion(s string) (*Version, error) {
	m := trailingJunk.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("plugin: version %q has no recognizable numeric prefix", s)
	}
	sv, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("plugin: parse version %q: %w", s, err)
	}
	return &Version{raw: s, sv: sv}, nil
}

// String returns the original, unparsed version text.
func (v *Version) String() string { return v.raw }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, per semantic-version ordering.
func (v *Version) Compare(other *Version) int {
	return v.sv.Compare(other.sv)
}
