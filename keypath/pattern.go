package keypath

// Pattern is a glob over addresses.  Segments are literal field names,
// literal bracketed indices, or "*" which matches exactly one segment of
// any kind.  A trailing "*" glued to the last segment ("items*") makes the
// pattern match that address and anything nested under it.  Without a
// trailing wildcard, matching is segment-count sensitive.
type Pattern struct {
	segs    []Segment
	subtree bool
}

func ParsePattern(p string) (Pattern, error) {
	segs, subtree, err := parseSegments(p, true, false)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{segs: segs, subtree: subtree}, nil
}

// MustPattern is for compile-time constant patterns in tests and tables.
func MustPattern(p string) Pattern {
	pat, err := ParsePattern(p)
	if err != nil {
		panic(err)
	}
	return pat
}

func (p Pattern) String() string { return segmentsString(p.segs, p.subtree) }

// Matches reports whether the pattern matches the given address.  Both
// Position and Identity addresses can be matched; a literal index pattern
// segment only matches a positional index segment, a keyed pattern segment
// only a keyed segment with the same key values, while "*" matches any
// segment kind.
func (p Pattern) Matches(a Addr) bool {
	segs := a.Segments()
	if p.subtree {
		if len(segs) < len(p.segs) {
			return false
		}
	} else if len(segs) != len(p.segs) {
		return false
	}
	for i := range p.segs {
		if !matchSegment(&p.segs[i], &segs[i]) {
			return false
		}
	}
	return true
}

func matchSegment(pat, seg *Segment) bool {
	switch {
	case pat.Wild:
		return true
	case pat.Field != nil:
		return seg.Field != nil && *pat.Field == *seg.Field
	case pat.Index != nil:
		return seg.Index != nil && *pat.Index == *seg.Index
	case len(pat.Keys) > 0:
		if len(seg.Keys) != len(pat.Keys) || pat.Occur != seg.Occur {
			return false
		}
		for i := range pat.Keys {
			if pat.Keys[i] != seg.Keys[i] {
				return false
			}
		}
		return true
	}
	return false
}
