package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted, up-to-four-component numeric version. Missing trailing
// components compare as zero.
type Version struct {
	parts [4]int
	n     int // number of components actually supplied, for String()
}

// ParseVersion parses a dotted-integer version string with 1-4 components.
func ParseVersion(s string) (Version, error) {
	var v Version
	if s == "" {
		return v, nil
	}
	segs := strings.Split(s, ".")
	if len(segs) > 4 {
		return v, fmt.Errorf("version %q has more than 4 components", s)
	}
	v.n = len(segs)
	for i, seg := range segs {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: invalid component %q", s, seg)
		}
		v.parts[i] = n
	}
	return v, nil
}

func (v Version) String() string {
	if v.n == 0 {
		return "0"
	}
	segs := make([]string, v.n)
	for i := 0; i < v.n; i++ {
		segs[i] = strconv.Itoa(v.parts[i])
	}
	return strings.Join(segs, ".")
}

// IsZero reports whether the version was never parsed from a non-empty string.
func (v Version) IsZero() bool { return v.n == 0 }

// Cmp compares the first n components (1-4) of a and b. Missing components
// are treated as zero. Returns <0, 0, >0 like strings.Compare.
func Cmp(a, b Version, n int) int {
	for i := 0; i < n; i++ {
		if a.parts[i] != b.parts[i] {
			if a.parts[i] < b.parts[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// MatchRule is the version compatibility rule declared by an Import.
type MatchRule int

const (
	MatchNone MatchRule = iota
	MatchPerfect
	MatchEquivalent
	MatchCompatible
	MatchGreaterOrEqual
)

func (r MatchRule) String() string {
	switch r {
	case MatchNone:
		return "none"
	case MatchPerfect:
		return "perfect"
	case MatchEquivalent:
		return "equivalent"
	case MatchCompatible:
		return "compatible"
	case MatchGreaterOrEqual:
		return "greater-or-equal"
	default:
		return "unknown"
	}
}

// Mismatch reports whether have fails to satisfy a requirement of want under
// rule r, per the predicate in spec.md §4.2.
func Mismatch(rule MatchRule, have, want Version) bool {
	switch rule {
	case MatchPerfect:
		return Cmp(have, want, 4) != 0
	case MatchEquivalent:
		return Cmp(have, want, 2) != 0 || Cmp(have, want, 4) < 0
	case MatchCompatible:
		return Cmp(have, want, 1) != 0 || Cmp(have, want, 4) < 0
	case MatchGreaterOrEqual:
		return Cmp(have, want, 4) < 0
	case MatchNone:
		return false
	default:
		return false
	}
}
