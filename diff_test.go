package keydiff

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/keydiff/ir"
	"github.com/signadot/keydiff/keypath"
)

func mustDecode(t *testing.T, d string) *ir.Node {
	t.Helper()
	doc, err := ir.Decode([]byte(d))
	if err != nil {
		t.Fatalf("decode %q: %v", d, err)
	}
	return doc
}

func mustLoc(t *testing.T, p string) keypath.ArrayPattern {
	t.Helper()
	loc, err := keypath.ParseArrayPattern(p)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func mustIdentity(t *testing.T, p string) keypath.Identity {
	t.Helper()
	id, err := keypath.ParseIdentity(p)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// fmtRecord flattens a record to one comparable line.
func fmtRecord(rec *Record) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s %s", rec.Kind, rec.Path.String())
	if rec.Left != nil {
		fmt.Fprintf(b, " %s", rec.Left.String())
	}
	if rec.Right != nil {
		fmt.Fprintf(b, " %s", rec.Right.String())
	}
	if rec.Old != nil {
		d, _ := json.Marshal(rec.Old)
		fmt.Fprintf(b, " old=%s", d)
	}
	if rec.New != nil {
		d, _ := json.Marshal(rec.New)
		fmt.Fprintf(b, " new=%s", d)
	}
	return b.String()
}

func fmtRecords(res *Result) []string {
	lines := make([]string, len(res.Diffs))
	for i, rec := range res.Diffs {
		lines[i] = fmtRecord(rec)
	}
	return lines
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		left, right string
		want        []string
	}{
		{
			name:  "identical",
			left:  `{"a": 1, "b": [1, 2], "c": {"d": "x"}}`,
			right: `{"a": 1, "b": [1, 2], "c": {"d": "x"}}`,
			want:  []string{},
		},
		{
			name:  "scalar change",
			left:  `{"a": 1}`,
			right: `{"a": 2}`,
			want: []string{
				"changed a left:a right:a old=1 new=2",
			},
		},
		{
			name:  "field removed then added",
			left:  `{"a": 1}`,
			right: `{"b": 2}`,
			want: []string{
				"removed a left:a old=1",
				"added b right:b new=2",
			},
		},
		{
			name:  "object reorder is not a diff",
			left:  `{"a": 1, "b": 2}`,
			right: `{"b": 2, "a": 1}`,
			want:  []string{},
		},
		{
			name:  "keyed array matches by identity",
			left:  `{"items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}]}`,
			right: `{"items": [{"id": "b", "v": 3}, {"id": "a", "v": 1}, {"id": "c", "v": 4}]}`,
			want: []string{
				"changed items[id=b].v left:items[1].v right:items[0].v old=2 new=3",
				`added items[id=c] right:items[2] new={"id":"c","v":4}`,
			},
		},
		{
			name:  "keyed array element removed",
			left:  `{"items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}]}`,
			right: `{"items": [{"id": "b", "v": 2}]}`,
			want: []string{
				`removed items[id=a] left:items[0] old={"id":"a","v":1}`,
			},
		},
		{
			name:  "positional array",
			left:  `{"a": [1, 2, 3]}`,
			right: `{"a": [1, 3]}`,
			want: []string{
				"changed a[1] left:a[1] right:a[1] old=2 new=3",
				"removed a[2] left:a[2] old=3",
			},
		},
		{
			name:  "type mismatch reports whole values",
			left:  `{"a": [1]}`,
			right: `{"a": {"b": 1}}`,
			want: []string{
				`changed a left:a right:a old=[1] new={"b":1}`,
			},
		},
		{
			name:  "null versus value",
			left:  `{"a": null}`,
			right: `{"a": 1}`,
			want: []string{
				"changed a left:a right:a old=null new=1",
			},
		},
		{
			name:  "integer versus float",
			left:  `{"a": 1}`,
			right: `{"a": 1.0}`,
			want: []string{
				"changed a left:a right:a old=1 new=1",
			},
		},
		{
			name:  "added subtree floods per field",
			left:  `{"a": 1}`,
			right: `{"a": 1, "o": {"x": 1, "y": {"z": 2}}}`,
			want: []string{
				"added o.x right:o.x new=1",
				"added o.y.z right:o.y.z new=2",
			},
		},
		{
			name:  "added empty object is one record",
			left:  `{"a": 1}`,
			right: `{"a": 1, "o": {}}`,
			want: []string{
				"added o right:o new={}",
			},
		},
		{
			name:  "removed empty array is one record",
			left:  `{"a": 1, "arr": []}`,
			right: `{"a": 1}`,
			want: []string{
				"removed arr left:arr old=[]",
			},
		},
		{
			name:  "added keyed array floods per element",
			left:  `{"a": 1}`,
			right: `{"a": 1, "items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}]}`,
			want: []string{
				`added items[id=a] right:items[0] new={"id":"a","v":1}`,
				`added items[id=b] right:items[1] new={"id":"b","v":2}`,
			},
		},
		{
			name:  "nested keyed arrays",
			left:  `{"specs": [{"name": "s1", "ports": [{"port": 80, "proto": "tcp"}]}]}`,
			right: `{"specs": [{"name": "s1", "ports": [{"port": 80, "proto": "udp"}]}]}`,
			want: []string{
				`changed specs[name=s1].ports[port=80].proto left:specs[0].ports[0].proto right:specs[0].ports[0].proto old="tcp" new="udp"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compare(mustDecode(t, tt.left), mustDecode(t, tt.right))
			got := fmtRecords(res)
			if len(got) == 0 {
				got = []string{}
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("diffs mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestCompare_DuplicateKeyOccurrences(t *testing.T) {
	// one element per side misses the key field; occurrences keep the
	// address unambiguous
	left := mustDecode(t, `{"items": [
		{"id": "a", "v": 1}, {"id": "b", "v": 1}, {"id": "c", "v": 1},
		{"id": "d", "v": 1}, {"id": "e", "v": 1}, {"id": "f", "v": 1},
		{"id": "g", "v": 1}, {"id": "h", "v": 1}, {"id": "i", "v": 1},
		{"v": 1}
	]}`)
	right := mustDecode(t, `{"items": [
		{"v": 2},
		{"id": "a", "v": 1}, {"id": "b", "v": 1}, {"id": "c", "v": 1},
		{"id": "d", "v": 1}, {"id": "e", "v": 1}, {"id": "f", "v": 1},
		{"id": "g", "v": 1}, {"id": "h", "v": 1}, {"id": "i", "v": 1}
	]}`)
	res := Compare(left, right)
	want := []string{
		"changed items[id=null].v left:items[9].v right:items[0].v old=1 new=2",
	}
	if d := cmp.Diff(want, fmtRecords(res)); d != "" {
		t.Errorf("diffs mismatch (-want +got):\n%s", d)
	}
}

func TestCompare_SameDisplayDifferentTypes(t *testing.T) {
	// the string "1" and the number 1 render identically as key values;
	// the occurrence counter keeps their addresses apart
	left := mustDecode(t, `{"items": [{"id": "1", "v": 1}, {"id": 1, "v": 2}]}`)
	right := mustDecode(t, `{"items": [{"id": "1", "v": 3}, {"id": 1, "v": 4}]}`)
	res := Compare(left, right)
	want := []string{
		"changed items[id=1].v left:items[0].v right:items[0].v old=1 new=3",
		"changed items[id=1::1].v left:items[1].v right:items[1].v old=2 new=4",
	}
	if d := cmp.Diff(want, fmtRecords(res)); d != "" {
		t.Fatalf("diffs mismatch (-want +got):\n%s", d)
	}
	seen := map[string]bool{}
	for _, rec := range res.Diffs {
		p := rec.Path.String()
		if seen[p] {
			t.Errorf("identity address %s used by 2 records", p)
		}
		seen[p] = true
		lpos, lok, rpos, rok := ResolveBothSides(rec.Path, left, right, res.Keys)
		if !lok || lpos.String() != rec.Left.Pos.String() {
			t.Errorf("%s: left resolves to %q, %v, record says %s", p, lpos.String(), lok, rec.Left.Pos.String())
		}
		if !rok || rpos.String() != rec.Right.Pos.String() {
			t.Errorf("%s: right resolves to %q, %v, record says %s", p, rpos.String(), rok, rec.Right.Pos.String())
		}
	}
}

func TestCompare_Keys(t *testing.T) {
	left := mustDecode(t, `{"items": [{"id": "a"}], "nums": [1, 2]}`)
	right := mustDecode(t, `{"items": [{"id": "a"}], "nums": [2, 1]}`)
	res := Compare(left, right)
	if res.Keys.Len() != 2 {
		t.Fatalf("Keys.Len() = %d, want 2", res.Keys.Len())
	}
	items := res.Keys.At(mustLoc(t, "items[]"))
	if items == nil {
		t.Fatal("no info at items[]")
	}
	if !items.Keyed() || items.Fields[0] != "id" {
		t.Errorf("items[] info = %+v", items)
	}
	if got := items.Location.String(); got != "items[]" {
		t.Errorf("items Location = %q, want items[]", got)
	}
	nums := res.Keys.At(mustLoc(t, "nums[]"))
	if nums == nil || nums.Keyed() {
		t.Errorf("nums[] info = %+v", nums)
	}
	if got := items.ArrayPath.String(); got != "items" {
		t.Errorf("items ArrayPath = %q", got)
	}
}

func TestKind_Text(t *testing.T) {
	for _, k := range []Kind{Added, Removed, Changed} {
		d, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Kind
		if err := back.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if back != k {
			t.Errorf("round trip %s != %s", back, k)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("mutated")); err == nil {
		t.Errorf("unknown kind should error")
	}
}
