package keydiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const gnarlyLeft = `{
	"name": "demo",
	"replicas": 2,
	"items": [
		{"id": "a", "v": 1, "tags": ["x", "y"]},
		{"id": "b", "v": 2, "tags": []},
		{"id": "c", "v": 3}
	],
	"ports": [
		{"port": 80, "proto": "tcp"},
		{"port": 443, "proto": "tcp"}
	],
	"meta": {"owner": "team-a", "labels": {"tier": "web"}},
	"raw": [1, "two", null, true]
}`

const gnarlyRight = `{
	"replicas": 3,
	"name": "demo",
	"items": [
		{"id": "c", "v": 3},
		{"id": "b", "v": 2, "tags": ["z"]},
		{"id": "d", "v": 4}
	],
	"ports": [
		{"port": 443, "proto": "udp"},
		{"port": 80, "proto": "tcp"}
	],
	"meta": {"owner": "team-b", "labels": {"tier": "web"}},
	"raw": [1, "two", null, true]
}`

func TestCompare_Idempotent(t *testing.T) {
	for _, doc := range []string{gnarlyLeft, gnarlyRight} {
		res := Compare(mustDecode(t, doc), mustDecode(t, doc))
		if len(res.Diffs) != 0 {
			t.Errorf("Compare(x, x) = %v, want none", fmtRecords(res))
		}
	}
}

func TestCompare_Deterministic(t *testing.T) {
	a := Compare(mustDecode(t, gnarlyLeft), mustDecode(t, gnarlyRight))
	b := Compare(mustDecode(t, gnarlyLeft), mustDecode(t, gnarlyRight))
	if d := cmp.Diff(fmtRecords(a), fmtRecords(b)); d != "" {
		t.Errorf("two runs disagree:\n%s", d)
	}
}

// Swapping the documents swaps Added and Removed and the side scoping, but
// preserves which identity addresses differ.
func TestCompare_Symmetry(t *testing.T) {
	fwd := Compare(mustDecode(t, gnarlyLeft), mustDecode(t, gnarlyRight))
	rev := Compare(mustDecode(t, gnarlyRight), mustDecode(t, gnarlyLeft))

	flip := func(res *Result) map[string]Kind {
		m := make(map[string]Kind, len(res.Diffs))
		for _, rec := range res.Diffs {
			m[rec.Path.String()] = rec.Kind
		}
		return m
	}
	fm, rm := flip(fwd), flip(rev)
	if len(fm) != len(rm) {
		t.Fatalf("forward has %d paths, reverse %d", len(fm), len(rm))
	}
	for p, k := range fm {
		rk, ok := rm[p]
		if !ok {
			t.Errorf("path %s missing from reverse run", p)
			continue
		}
		want := k
		switch k {
		case Added:
			want = Removed
		case Removed:
			want = Added
		}
		if rk != want {
			t.Errorf("path %s: forward %s, reverse %s, want %s", p, k, rk, want)
		}
	}
}

// Reordering elements of keyed arrays and fields of objects changes
// nothing.
func TestCompare_ReorderInvariance(t *testing.T) {
	left := `{
		"items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}, {"id": "c", "v": 3}],
		"x": 1, "y": 2
	}`
	right := `{
		"y": 2, "x": 1,
		"items": [{"id": "c", "v": 3}, {"id": "a", "v": 1}, {"id": "b", "v": 2}]
	}`
	res := Compare(mustDecode(t, left), mustDecode(t, right))
	if len(res.Diffs) != 0 {
		t.Errorf("reorder-only comparison = %v, want none", fmtRecords(res))
	}
}

// Every record's identity address resolves, against each side, to exactly
// the scoped position the record carries, and to absent on a side where the
// record has none.
func TestCompare_ResolutionRoundTrip(t *testing.T) {
	left := mustDecode(t, gnarlyLeft)
	right := mustDecode(t, gnarlyRight)
	res := Compare(left, right)
	if len(res.Diffs) == 0 {
		t.Fatal("want some diffs to round trip")
	}
	for _, rec := range res.Diffs {
		lpos, lok, rpos, rok := ResolveBothSides(rec.Path, left, right, res.Keys)
		if lok != (rec.Left != nil) {
			t.Errorf("%s: left resolution ok = %v, record side = %v", rec.Path.String(), lok, rec.Left)
			continue
		}
		if rok != (rec.Right != nil) {
			t.Errorf("%s: right resolution ok = %v, record side = %v", rec.Path.String(), rok, rec.Right)
			continue
		}
		if lok && lpos.String() != rec.Left.Pos.String() {
			t.Errorf("%s: left resolves to %s, record says %s", rec.Path.String(), lpos.String(), rec.Left.Pos.String())
		}
		if rok && rpos.String() != rec.Right.Pos.String() {
			t.Errorf("%s: right resolves to %s, record says %s", rec.Path.String(), rpos.String(), rec.Right.Pos.String())
		}
	}
}
