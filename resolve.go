package keydiff

import (
	"github.com/signadot/keydiff/debug"
	"github.com/signadot/keydiff/idkey"
	"github.com/signadot/keydiff/ir"
	"github.com/signadot/keydiff/keypath"
)

// ResolveIdentity walks an identity address against a concrete document
// and returns the position the addressed node occupies there.  ok is false
// when the element does not exist on this side; that is an expected
// outcome, not an error. It is the meaning of a one-sided diff.
//
// Keyed segments are interpreted through the identity-key outcomes of the
// comparison run that produced the address.  A keyed segment whose array
// location has no recorded key, or whose key fields disagree with the
// recorded ones, resolves to absent rather than guessing.  A numeric
// bracket segment is a literal index.  A segment expecting an array or
// object where the document holds something else resolves to absent.
func ResolveIdentity(id keypath.Identity, doc *ir.Node, keys *idkey.Set) (keypath.Position, bool) {
	var (
		pos    keypath.Position
		prefix keypath.Identity
		cur    = doc
	)
	segs := id.Segments()
	for i := range segs {
		seg := &segs[i]
		switch {
		case seg.Field != nil:
			f := *seg.Field
			if cur == nil || cur.Type != ir.ObjectType {
				return keypath.Position{}, false
			}
			cur = ir.Get(cur, f)
			if cur == nil {
				return keypath.Position{}, false
			}
			pos = pos.Field(f)
			prefix = prefix.Field(f)
		case seg.Index != nil:
			if cur == nil || cur.Type != ir.ArrayType {
				return keypath.Position{}, false
			}
			cur = ir.Index(cur, *seg.Index)
			if cur == nil {
				return keypath.Position{}, false
			}
			pos = pos.Index(*seg.Index)
			prefix = prefix.Index(*seg.Index)
		case len(seg.Keys) > 0:
			if cur == nil || cur.Type != ir.ArrayType {
				return keypath.Position{}, false
			}
			info := keys.At(prefix.Generalize().Elem())
			if info == nil || !info.Keyed() || !fieldsAgree(seg.Keys, info.Fields) {
				if debug.Resolve() {
					debug.Logf("resolve: no usable key info at %s\n", prefix.String())
				}
				return keypath.Position{}, false
			}
			idx := matchElement(cur, info, seg)
			if idx == -1 {
				return keypath.Position{}, false
			}
			cur = cur.Values[idx]
			pos = pos.Index(idx)
			prefix = prefix.Keyed(seg.Keys, seg.Occur)
		default:
			return keypath.Position{}, false
		}
	}
	return pos, true
}

// ResolveBothSides resolves an identity address against both documents of
// a comparison, for callers that need to locate a logical element on the
// two sides simultaneously.
func ResolveBothSides(id keypath.Identity, left, right *ir.Node, keys *idkey.Set) (lpos keypath.Position, lok bool, rpos keypath.Position, rok bool) {
	lpos, lok = ResolveIdentity(id, left, keys)
	rpos, rok = ResolveIdentity(id, right, keys)
	return lpos, lok, rpos, rok
}

func fieldsAgree(kvs []keypath.KeyVal, fields []string) bool {
	if len(kvs) != len(fields) {
		return false
	}
	have := make(map[string]bool, len(fields))
	for _, f := range fields {
		have[f] = true
	}
	for _, kv := range kvs {
		if !have[kv.Field] {
			return false
		}
	}
	return true
}

// matchElement finds the index of the seg.Occur-th element of arr whose
// key field display values equal the segment's, or -1.
func matchElement(arr *ir.Node, info *idkey.Info, seg *keypath.Segment) int {
	want := make(map[string]string, len(seg.Keys))
	for _, kv := range seg.Keys {
		want[kv.Field] = kv.Value
	}
	occur := 0
	for i, elem := range arr.Values {
		kvs, _ := info.ElementKey(elem)
		matched := true
		for _, kv := range kvs {
			if want[kv.Field] != kv.Value {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if occur == seg.Occur {
			return i
		}
		occur++
	}
	return -1
}
