package keydiff

import (
	"github.com/signadot/keydiff/keypath"
)

// Matches reports whether the address matches the glob pattern.  See
// [keypath.Pattern] for the pattern syntax.
func Matches(addr keypath.Addr, pattern string) (bool, error) {
	pat, err := keypath.ParsePattern(pattern)
	if err != nil {
		return false, err
	}
	return pat.Matches(addr), nil
}

// Ignore returns a result without the diffs whose identity address matches
// any of the given patterns.  One stored pattern suppresses a whole family
// of diffs; the identity-key report is kept as is.
func (res *Result) Ignore(patterns ...keypath.Pattern) *Result {
	if len(patterns) == 0 {
		return res
	}
	kept := make([]*Record, 0, len(res.Diffs))
outer:
	for _, rec := range res.Diffs {
		for i := range patterns {
			if patterns[i].Matches(rec.Path) {
				continue outer
			}
		}
		kept = append(kept, rec)
	}
	return &Result{Diffs: kept, Keys: res.Keys}
}
