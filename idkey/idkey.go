// Package idkey detects, per array location, a field or minimal field
// combination whose values identify array elements across two documents,
// so that the diff engine can match elements by identity rather than by
// position.  Detection never fails: when no usable key exists the array is
// simply compared positionally.
package idkey

import (
	"strings"

	"github.com/signadot/keydiff/ir"
	"github.com/signadot/keydiff/keypath"
)

const (
	// coverageMin is the fraction of elements, per side, on which a key
	// field must be present with a primitive value ("nearly all").
	coverageMin = 0.9
	// maxCandidates bounds the composite key search to pairs and triples
	// drawn from the first few candidate fields.
	maxCandidates = 4
)

// Info records the identity-key outcome for one array location of a
// comparison run.
type Info struct {
	// ArrayPath is the position of the array in the reference document,
	// the left one when the array exists there.
	ArrayPath keypath.Position `json:"arrayPath"`
	// Location is the generalized element location of the array, with the
	// array's own "[]" segment included ("items[]", "items[].tags[]");
	// structurally-equivalent array locations share one Info.
	Location keypath.ArrayPattern `json:"location"`
	// Fields holds the key field, or fields for a composite key, in match
	// order.  Nil when the array is compared by index.
	Fields    []string `json:"fields,omitempty"`
	Composite bool     `json:"composite"`
	SizeLeft  int      `json:"sizeLeft"`
	SizeRight int      `json:"sizeRight"`
}

// Keyed reports whether elements of this array are matched by identity.
func (info *Info) Keyed() bool {
	return len(info.Fields) > 0
}

// ElementKey computes an element's identity under info: the display
// key/value pairs for identity address segments, and the uniqueness string
// used to pair elements across sides.  A missing key field contributes a
// null value.
func (info *Info) ElementKey(elem *ir.Node) (kvs []keypath.KeyVal, uniq string) {
	kvs = make([]keypath.KeyVal, len(info.Fields))
	parts := make([]string, len(info.Fields))
	for i, f := range info.Fields {
		v := ir.Get(elem, f)
		kvs[i] = keypath.KeyVal{Field: f, Value: v.ScalarString()}
		parts[i] = valueKey(v)
	}
	return kvs, strings.Join(parts, "\x1f")
}

// Detect analyzes the two arrays found at one logical array location and
// reports how their elements should be matched.  Either side may be nil;
// absence is treated as an empty array.  Detect fills Fields, Composite and
// the sizes; the caller records ArrayPath and Location, which are address
// context Detect does not have.
func Detect(left, right *ir.Node) *Info {
	info := &Info{
		SizeLeft:  arrayLen(left),
		SizeRight: arrayLen(right),
	}
	lElems, lok := objectElems(left)
	rElems, rok := objectElems(right)
	if !lok || !rok {
		return info
	}
	if len(lElems) == 0 && len(rElems) == 0 {
		return info
	}
	cands := candidates(lElems, rElems)
	var covered []*candidate
	for _, c := range cands {
		if !c.covered(len(lElems), len(rElems)) {
			continue
		}
		covered = append(covered, c)
		if c.uniqueLeft && c.uniqueRight {
			info.Fields = []string{c.field}
			return info
		}
	}
	if fields := compositeKey(covered, lElems, rElems); fields != nil {
		info.Fields = fields
		info.Composite = true
	}
	return info
}

// DetectDocument pre-annotates every array location of a single document,
// detecting with the document on both sides.  Used when only one side of a
// comparison is loaded yet.
func DetectDocument(doc *ir.Node) []*Info {
	seen := map[string]bool{}
	var infos []*Info
	detectWalk(doc, keypath.Position{}, seen, &infos)
	return infos
}

func detectWalk(y *ir.Node, pos keypath.Position, seen map[string]bool, infos *[]*Info) {
	if y == nil {
		return
	}
	switch y.Type {
	case ir.ObjectType:
		for i := range y.Fields {
			detectWalk(y.Values[i], pos.Field(y.Fields[i].String), seen, infos)
		}
	case ir.ArrayType:
		loc := pos.Generalize().Elem()
		if !seen[loc.String()] {
			seen[loc.String()] = true
			info := Detect(y, y)
			info.ArrayPath = pos
			info.Location = loc
			*infos = append(*infos, info)
		}
		for i, v := range y.Values {
			detectWalk(v, pos.Index(i), seen, infos)
		}
	}
}

func arrayLen(y *ir.Node) int {
	if y == nil || y.Type != ir.ArrayType {
		return 0
	}
	return len(y.Values)
}

// objectElems returns the array's elements when every element is an
// object; ok is false when the array mixes in primitives or nested arrays,
// which rules out identity keying.
func objectElems(y *ir.Node) ([]*ir.Node, bool) {
	if y == nil {
		return nil, true
	}
	if y.Type != ir.ArrayType {
		return nil, false
	}
	for _, v := range y.Values {
		if v.Type != ir.ObjectType {
			return nil, false
		}
	}
	return y.Values, true
}

type candidate struct {
	field       string
	presentL    int
	presentR    int
	uniqueLeft  bool
	uniqueRight bool
	keysL       []string // uniqueness key per left element, "" when absent
	keysR       []string
}

func (c *candidate) covered(nl, nr int) bool {
	if nl > 0 && float64(c.presentL) < coverageMin*float64(nl) {
		return false
	}
	if nr > 0 && float64(c.presentR) < coverageMin*float64(nr) {
		return false
	}
	return true
}

// candidates collects, in canonical field-declaration order (the first
// element's fields first), every field with a primitive value on at least
// one element of either side, with per-side presence and uniqueness stats.
func candidates(lElems, rElems []*ir.Node) []*candidate {
	var (
		order  []*candidate
		byName = map[string]*candidate{}
	)
	scan := func(elems []*ir.Node) {
		for _, elem := range elems {
			for i := range elem.Fields {
				name := elem.Fields[i].String
				if byName[name] != nil {
					continue
				}
				if !elem.Values[i].Type.IsLeaf() {
					continue
				}
				c := &candidate{field: name}
				byName[name] = c
				order = append(order, c)
			}
		}
	}
	scan(lElems)
	scan(rElems)
	for _, c := range order {
		c.keysL, c.presentL, c.uniqueLeft = fieldStats(lElems, c.field)
		c.keysR, c.presentR, c.uniqueRight = fieldStats(rElems, c.field)
	}
	return order
}

func fieldStats(elems []*ir.Node, field string) (keys []string, present int, unique bool) {
	keys = make([]string, len(elems))
	seen := map[string]bool{}
	unique = true
	for i, elem := range elems {
		v := ir.Get(elem, field)
		if v == nil || !v.Type.IsLeaf() {
			continue
		}
		k := valueKey(v)
		keys[i] = k
		present++
		if seen[k] {
			unique = false
		}
		seen[k] = true
	}
	return keys, present, unique
}

// compositeKey searches ordered pairs, then triples, of the first
// maxCandidates covered fields for a combination whose concatenated values
// are unique on both sides.
func compositeKey(covered []*candidate, lElems, rElems []*ir.Node) []string {
	n := min(len(covered), maxCandidates)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if compositeUnique(lElems, covered[i], covered[j]) &&
				compositeUnique(rElems, covered[i], covered[j]) {
				return []string{covered[i].field, covered[j].field}
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if compositeUnique(lElems, covered[i], covered[j], covered[k]) &&
					compositeUnique(rElems, covered[i], covered[j], covered[k]) {
					return []string{covered[i].field, covered[j].field, covered[k].field}
				}
			}
		}
	}
	return nil
}

func compositeUnique(elems []*ir.Node, cands ...*candidate) bool {
	seen := map[string]bool{}
	for _, elem := range elems {
		parts := make([]string, len(cands))
		for i, c := range cands {
			parts[i] = valueKey(ir.Get(elem, c.field))
		}
		k := strings.Join(parts, "\x1f")
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}

// valueKey gives the type-qualified uniqueness key of a primitive value,
// so that e.g. the string "1" and the number 1 never collide.
func valueKey(v *ir.Node) string {
	if v == nil {
		return "~"
	}
	switch v.Type {
	case ir.NullType:
		return "n"
	case ir.BoolType:
		return "b:" + v.ScalarString()
	case ir.NumberType:
		return "d:" + v.ScalarString()
	case ir.StringType:
		return "s:" + v.String
	default:
		return "!:" + v.Type.String()
	}
}
