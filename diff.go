// Package keydiff compares two tree documents and produces a structural
// diff that is stable under array reordering: arrays of record-like objects
// are matched by a detected identity key rather than by position, and every
// difference carries both an identity address, valid against either
// document, and the concrete position addresses it occupies on each side.
package keydiff

import (
	"fmt"
	"strings"

	"github.com/signadot/keydiff/debug"
	"github.com/signadot/keydiff/idkey"
	"github.com/signadot/keydiff/ir"
	"github.com/signadot/keydiff/keypath"
)

type Kind int

const (
	Added Kind = iota
	Removed
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	switch string(d) {
	case "added":
		*k = Added
	case "removed":
		*k = Removed
	case "changed":
		*k = Changed
	default:
		return fmt.Errorf("unrecognized diff kind %q", d)
	}
	return nil
}

// Record is one detected difference.  Path is stable across both
// documents; Left and Right give the concrete position on each side and
// are nil on a side where the element does not exist.  Old is set for
// Removed and Changed, New for Added and Changed.
type Record struct {
	Kind  Kind             `json:"kind"`
	Path  keypath.Identity `json:"path"`
	Left  *keypath.Scoped  `json:"left,omitempty"`
	Right *keypath.Scoped  `json:"right,omitempty"`
	Old   *ir.Node         `json:"old,omitempty"`
	New   *ir.Node         `json:"new,omitempty"`
}

// Result holds the outcome of one comparison run: the differences in
// deterministic pre-order, and the identity-key outcome for every array
// location visited.
type Result struct {
	Diffs []*Record  `json:"diffs"`
	Keys  *idkey.Set `json:"identityKeys"`
}

// Compare walks left and right in lock step and reports their differences.
// The trees are read-only during the walk; concurrent Compare calls on
// independent document pairs need no coordination.
func Compare(left, right *ir.Node) *Result {
	s := &session{keys: idkey.NewSet()}
	s.walk(left, right, keypath.Identity{}, keypath.Position{}, keypath.Position{})
	return &Result{Diffs: s.diffs, Keys: s.keys}
}

// session carries the per-run state: the detector memo and the collected
// diffs.  It is never shared across Compare calls.
type session struct {
	keys  *idkey.Set
	diffs []*Record
}

func (s *session) emit(kind Kind, id keypath.Identity, lpos, rpos *keypath.Position, old, new *ir.Node) {
	rec := &Record{
		Kind: kind,
		Path: id,
		Old:  old,
		New:  new,
	}
	if lpos != nil {
		sc := keypath.NewScoped(keypath.Left, *lpos)
		rec.Left = &sc
	}
	if rpos != nil {
		sc := keypath.NewScoped(keypath.Right, *rpos)
		rec.Right = &sc
	}
	if debug.Diff() {
		debug.Logf("diff %s at %s\n", kind, id.String())
	}
	s.diffs = append(s.diffs, rec)
}

func (s *session) walk(l, r *ir.Node, id keypath.Identity, lpos, rpos keypath.Position) {
	switch {
	case l == nil && r == nil:
		return
	case l == nil:
		s.oneSided(r, Added, id, rpos, keypath.Right)
		return
	case r == nil:
		s.oneSided(l, Removed, id, lpos, keypath.Left)
		return
	}
	if l.Type != r.Type {
		s.emit(Changed, id, &lpos, &rpos, l, r)
		return
	}
	switch l.Type {
	case ir.NullType:
	case ir.BoolType, ir.NumberType, ir.StringType:
		if !ir.Equal(l, r) {
			s.emit(Changed, id, &lpos, &rpos, l, r)
		}
	case ir.ObjectType:
		s.walkObject(l, r, id, lpos, rpos)
	case ir.ArrayType:
		s.walkArrayAt(l, r, id, lpos, rpos)
	}
}

// oneSided handles a node with an absent counterpart.  Scalars yield a
// single record; an object recurses per field so that every nested leaf is
// reported at its own address; an array recurses with the counterpart
// treated as an empty array, so that each logical element is reported.
func (s *session) oneSided(y *ir.Node, kind Kind, id keypath.Identity, pos keypath.Position, side keypath.Side) {
	switch y.Type {
	case ir.ObjectType:
		for i := range y.Fields {
			f := y.Fields[i].String
			s.oneSided(y.Values[i], kind, id.Field(f), pos.Field(f), side)
		}
		if len(y.Fields) > 0 {
			return
		}
		// an empty object still differs from nothing at all
		s.emitOneSided(y, kind, id, pos, side)
	case ir.ArrayType:
		if side == keypath.Left {
			s.walkArrayAt(y, nil, id, pos, keypath.Position{})
		} else {
			s.walkArrayAt(nil, y, id, keypath.Position{}, pos)
		}
		if len(y.Values) == 0 {
			s.emitOneSided(y, kind, id, pos, side)
		}
	default:
		s.emitOneSided(y, kind, id, pos, side)
	}
}

func (s *session) emitOneSided(y *ir.Node, kind Kind, id keypath.Identity, pos keypath.Position, side keypath.Side) {
	if side == keypath.Left {
		s.emit(kind, id, &pos, nil, y, nil)
		return
	}
	s.emit(kind, id, nil, &pos, nil, y)
}

func (s *session) walkObject(l, r *ir.Node, id keypath.Identity, lpos, rpos keypath.Position) {
	rVals := ir.ToMap(r)
	lNames := make(map[string]bool, len(l.Fields))
	for i := range l.Fields {
		f := l.Fields[i].String
		lNames[f] = true
		s.walk(l.Values[i], rVals[f], id.Field(f), lpos.Field(f), rpos.Field(f))
	}
	for i := range r.Fields {
		f := r.Fields[i].String
		if lNames[f] {
			continue
		}
		s.walk(nil, r.Values[i], id.Field(f), lpos.Field(f), rpos.Field(f))
	}
}

// walkArrayAt compares two arrays, either of which may be nil (absent,
// treated as empty).  Identity keys are detected once per generalized
// array location and memoized for the run.
func (s *session) walkArrayAt(l, r *ir.Node, id keypath.Identity, lpos, rpos keypath.Position) {
	loc := id.Generalize().Elem()
	info := s.keys.At(loc)
	if info == nil {
		info = idkey.Detect(l, r)
		if l != nil {
			info.ArrayPath = lpos
		} else {
			info.ArrayPath = rpos
		}
		info.Location = loc
		if debug.Detect() {
			debug.LogAny(info)
		}
		s.keys.Add(info)
	}
	if info.Keyed() {
		s.walkKeyedArray(l, r, info, id, lpos, rpos)
		return
	}
	n := max(arrayLen(l), arrayLen(r))
	for i := 0; i < n; i++ {
		lv, rv := ir.Index(l, i), ir.Index(r, i)
		cid := id.Index(i)
		lp, rp := lpos.Index(i), rpos.Index(i)
		switch {
		case lv == nil && rv == nil:
		case lv == nil:
			s.emit(Added, cid, nil, &rp, nil, rv)
		case rv == nil:
			s.emit(Removed, cid, &lp, nil, lv, nil)
		default:
			s.walk(lv, rv, cid, lp, rp)
		}
	}
}

// logical is one identity-key value treated as a single entity across both
// arrays, regardless of its position in either.
type logical struct {
	kvs   []keypath.KeyVal
	occur int
	lIdx  int
	rIdx  int
}

// walkKeyedArray pairs elements across the two sides by their type-exact
// uniqueness key and its per-side occurrence.  The occurrence counter that
// ends up in the identity address is assigned per display value instead, so
// that elements whose key values render identically (the string "1" and the
// number 1) still get distinct addresses for the resolver to tell apart.
func (s *session) walkKeyedArray(l, r *ir.Node, info *idkey.Info, id keypath.Identity, lpos, rpos keypath.Position) {
	var (
		order  []*logical
		byPair = map[string]*logical{}
	)
	if l != nil {
		typeCounts := map[string]int{}
		dispCounts := map[string]int{}
		for i, elem := range l.Values {
			kvs, uniq := info.ElementKey(elem)
			tOcc := typeCounts[uniq]
			typeCounts[uniq]++
			disp := displayKey(kvs)
			dOcc := dispCounts[disp]
			dispCounts[disp]++
			le := &logical{kvs: kvs, occur: dOcc, lIdx: i, rIdx: -1}
			order = append(order, le)
			byPair[pairKey(uniq, tOcc)] = le
		}
	}
	if r != nil {
		typeCounts := map[string]int{}
		dispCounts := map[string]int{}
		for i, elem := range r.Values {
			kvs, uniq := info.ElementKey(elem)
			tOcc := typeCounts[uniq]
			typeCounts[uniq]++
			disp := displayKey(kvs)
			dOcc := dispCounts[disp]
			dispCounts[disp]++
			if le := byPair[pairKey(uniq, tOcc)]; le != nil {
				le.rIdx = i
				continue
			}
			order = append(order, &logical{kvs: kvs, occur: dOcc, lIdx: -1, rIdx: i})
		}
	}
	for _, le := range order {
		cid := id.Keyed(le.kvs, le.occur)
		switch {
		case le.rIdx == -1:
			lp := lpos.Index(le.lIdx)
			s.emit(Removed, cid, &lp, nil, l.Values[le.lIdx], nil)
		case le.lIdx == -1:
			rp := rpos.Index(le.rIdx)
			s.emit(Added, cid, nil, &rp, nil, r.Values[le.rIdx])
		default:
			s.walk(l.Values[le.lIdx], r.Values[le.rIdx], cid,
				lpos.Index(le.lIdx), rpos.Index(le.rIdx))
		}
	}
}

func pairKey(uniq string, occur int) string {
	return fmt.Sprintf("%s\x1e%d", uniq, occur)
}

// displayKey joins the rendered key values, the form the resolver matches
// elements by.
func displayKey(kvs []keypath.KeyVal) string {
	parts := make([]string, len(kvs))
	for i := range kvs {
		parts[i] = kvs[i].Value
	}
	return strings.Join(parts, "\x1f")
}

func arrayLen(y *ir.Node) int {
	if y == nil {
		return 0
	}
	return len(y.Values)
}
