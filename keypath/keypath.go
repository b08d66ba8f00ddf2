// Package keypath defines the address kinds used to name nodes in tree
// documents:
//
//   - Position: field names and literal array indices ("spec.containers[0].name"),
//     meaningful only against one concrete document.
//   - Identity: field names with identity-key array segments
//     ("spec.containers[name=app].image"), constructible without a document
//     and resolvable, possibly to absent, against either side of a
//     comparison.
//   - Scoped: a Position tagged with the side (left/right) it was resolved
//     against, so positions from different documents cannot be conflated.
//   - ArrayPattern: an Identity with array segments wildcarded to "[]",
//     naming a structurally-equivalent family of array locations.
//   - Pattern: a glob over addresses ("items.*.v", "items*"), see pattern.go.
//
// The kinds are distinct types on purpose: mixing them up is a compile
// error, not a runtime surprise.
package keypath

import (
	"fmt"
	"slices"
	"strings"
)

// Addr is any concrete address whose segments can be matched by a Pattern.
type Addr interface {
	Segments() []Segment
	String() string
}

// Position names a node by field names and literal array indices.  The zero
// value is the document root.
type Position struct {
	segs []Segment
}

func ParsePosition(p string) (Position, error) {
	segs, subtree, err := parseSegments(p, false, false)
	if err != nil {
		return Position{}, err
	}
	if subtree {
		return Position{}, fmt.Errorf("%w: '*' in position address %q", ErrSyntax, p)
	}
	for i := range segs {
		if len(segs[i].Keys) > 0 {
			return Position{}, fmt.Errorf("%w: key segment %s in position address %q", ErrSyntax, segs[i].String(), p)
		}
	}
	return Position{segs: segs}, nil
}

func (p Position) String() string         { return segmentsString(p.segs, false) }
func (p Position) Segments() []Segment    { return slices.Clone(p.segs) }
func (p Position) Len() int               { return len(p.segs) }
func (p Position) IsRoot() bool           { return len(p.segs) == 0 }
func (p Position) Field(name string) Position {
	return Position{segs: append(slices.Clip(p.segs), fieldSeg(name))}
}
func (p Position) Index(i int) Position {
	return Position{segs: append(slices.Clip(p.segs), indexSeg(i))}
}

// Generalize wildcards every index segment, yielding the pattern of
// structurally-equivalent array locations this position belongs to.
func (p Position) Generalize() ArrayPattern {
	segs := make([]Segment, len(p.segs))
	for i := range p.segs {
		s := &p.segs[i]
		if s.Field != nil {
			segs[i] = fieldSeg(*s.Field)
			continue
		}
		segs[i] = Segment{Any: true}
	}
	return ArrayPattern{segs: segs}
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(d []byte) error {
	pp, err := ParsePosition(string(d))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// Identity names a node using identity-key values for keyed array segments
// and literal indices for arrays without a usable key.  The zero value is
// the document root.
type Identity struct {
	segs []Segment
}

func ParseIdentity(p string) (Identity, error) {
	segs, subtree, err := parseSegments(p, false, false)
	if err != nil {
		return Identity{}, err
	}
	if subtree {
		return Identity{}, fmt.Errorf("%w: '*' in identity address %q", ErrSyntax, p)
	}
	return Identity{segs: segs}, nil
}

func (p Identity) String() string      { return segmentsString(p.segs, false) }
func (p Identity) Segments() []Segment { return slices.Clone(p.segs) }
func (p Identity) Len() int            { return len(p.segs) }
func (p Identity) IsRoot() bool        { return len(p.segs) == 0 }
func (p Identity) Field(name string) Identity {
	return Identity{segs: append(slices.Clip(p.segs), fieldSeg(name))}
}
func (p Identity) Index(i int) Identity {
	return Identity{segs: append(slices.Clip(p.segs), indexSeg(i))}
}

// Keyed appends an identity-key segment with the given key values and
// occurrence counter (0 for the first occurrence of the value).
func (p Identity) Keyed(kvs []KeyVal, occur int) Identity {
	return Identity{segs: append(slices.Clip(p.segs), Segment{Keys: slices.Clone(kvs), Occur: occur})}
}

// Generalize wildcards every array segment, keyed or positional, yielding
// the pattern of structurally-equivalent array locations this address
// belongs to.
func (p Identity) Generalize() ArrayPattern {
	segs := make([]Segment, len(p.segs))
	for i := range p.segs {
		s := &p.segs[i]
		if s.Field != nil {
			segs[i] = fieldSeg(*s.Field)
			continue
		}
		segs[i] = Segment{Any: true}
	}
	return ArrayPattern{segs: segs}
}

func (p Identity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Identity) UnmarshalText(d []byte) error {
	pp, err := ParseIdentity(string(d))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}

// ArrayPattern is an Identity with every array segment replaced by "[]".
type ArrayPattern struct {
	segs []Segment
}

func ParseArrayPattern(p string) (ArrayPattern, error) {
	segs, subtree, err := parseSegments(p, false, true)
	if err != nil {
		return ArrayPattern{}, err
	}
	if subtree {
		return ArrayPattern{}, fmt.Errorf("%w: '*' in array pattern %q", ErrSyntax, p)
	}
	for i := range segs {
		if segs[i].Field == nil && !segs[i].Any {
			return ArrayPattern{}, fmt.Errorf("%w: segment %s in array pattern %q", ErrSyntax, segs[i].String(), p)
		}
	}
	return ArrayPattern{segs: segs}, nil
}

func (p ArrayPattern) String() string      { return segmentsString(p.segs, false) }
func (p ArrayPattern) Segments() []Segment { return slices.Clone(p.segs) }
func (p ArrayPattern) Len() int            { return len(p.segs) }

// Elem appends the "[]" wildcard, giving the location of this array's
// elements ("items" -> "items[]").  Identity-key info for an array is
// recorded under its element location.
func (p ArrayPattern) Elem() ArrayPattern {
	return ArrayPattern{segs: append(slices.Clip(p.segs), Segment{Any: true})}
}

// Side tags which document of a comparison a position was resolved against.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(d []byte) error {
	switch string(d) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("unrecognized side %q", d)
	}
	return nil
}

// Scoped pairs a Position with the side it is valid against.  Two
// independently-resolved positions are only comparable through their side
// tags.
type Scoped struct {
	Side Side
	Pos  Position
}

func NewScoped(side Side, pos Position) Scoped {
	return Scoped{Side: side, Pos: pos}
}

func (s Scoped) String() string {
	return s.Side.String() + ":" + s.Pos.String()
}

func ParseScoped(v string) (Scoped, error) {
	i := strings.IndexByte(v, ':')
	if i == -1 {
		return Scoped{}, fmt.Errorf("%w: scoped address %q has no side tag", ErrSyntax, v)
	}
	var side Side
	if err := side.UnmarshalText([]byte(v[:i])); err != nil {
		return Scoped{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	pos, err := ParsePosition(v[i+1:])
	if err != nil {
		return Scoped{}, err
	}
	return Scoped{Side: side, Pos: pos}, nil
}

func (s Scoped) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scoped) UnmarshalText(d []byte) error {
	ss, err := ParseScoped(string(d))
	if err != nil {
		return err
	}
	*s = ss
	return nil
}
