package encode

import (
	"strings"
	"testing"

	keydiff "github.com/signadot/keydiff"
	"github.com/signadot/keydiff/ir"
)

func compare(t *testing.T, left, right string) *keydiff.Result {
	t.Helper()
	l, err := ir.Decode([]byte(left))
	if err != nil {
		t.Fatal(err)
	}
	r, err := ir.Decode([]byte(right))
	if err != nil {
		t.Fatal(err)
	}
	return keydiff.Compare(l, r)
}

func TestWriteDiffs(t *testing.T) {
	res := compare(t,
		`{"items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}], "gone": true}`,
		`{"items": [{"id": "b", "v": 3}, {"id": "a", "v": 1}, {"id": "c", "v": 4}]}`,
	)
	buf := &strings.Builder{}
	if err := WriteDiffs(buf, res.Diffs); err != nil {
		t.Fatal(err)
	}
	want := `~ items[id=b].v: 2 -> 3
+ items[id=c]: {"id":"c","v":4}
- gone: true
`
	if buf.String() != want {
		t.Errorf("WriteDiffs() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteDiffs_StringDelta(t *testing.T) {
	res := compare(t,
		`{"img": "registry/app:v1.2.3"}`,
		`{"img": "registry/app:v1.2.4"}`,
	)
	buf := &strings.Builder{}
	if err := WriteDiffs(buf, res.Diffs); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "[-3-]") || !strings.Contains(got, "{+4+}") {
		t.Errorf("WriteDiffs() = %q, want inline delta markers", got)
	}
	if !strings.HasPrefix(got, "~ img: ") {
		t.Errorf("WriteDiffs() = %q", got)
	}
}

func TestWriteDiffs_UnrelatedStringsFallBack(t *testing.T) {
	res := compare(t, `{"s": "abcdef"}`, `{"s": "uvwxyz"}`)
	buf := &strings.Builder{}
	if err := WriteDiffs(buf, res.Diffs); err != nil {
		t.Fatal(err)
	}
	want := "~ s: \"abcdef\" -> \"uvwxyz\"\n"
	if buf.String() != want {
		t.Errorf("WriteDiffs() = %q, want %q", buf.String(), want)
	}
}

func TestWriteKeys(t *testing.T) {
	res := compare(t,
		`{"items": [{"id": "a"}, {"id": "b"}], "nums": [1, 2, 3]}`,
		`{"items": [{"id": "a"}], "nums": [1, 2]}`,
	)
	buf := &strings.Builder{}
	if err := WriteKeys(buf, res.Keys.Infos()); err != nil {
		t.Fatal(err)
	}
	want := `items[]: key=id (2/1)
nums[]: positional (3/2)
`
	if buf.String() != want {
		t.Errorf("WriteKeys() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteKeys_Composite(t *testing.T) {
	res := compare(t,
		`{"items": [{"a": 1, "b": "x"}, {"a": 1, "b": "y"}, {"a": 2, "b": "x"}]}`,
		`{"items": [{"a": 1, "b": "x"}]}`,
	)
	buf := &strings.Builder{}
	if err := WriteKeys(buf, res.Keys.Infos()); err != nil {
		t.Fatal(err)
	}
	want := "items[]: key=a,b composite (3/1)\n"
	if buf.String() != want {
		t.Errorf("WriteKeys() = %q, want %q", buf.String(), want)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString(nil); got != "null" {
		t.Errorf("MustString(nil) = %q", got)
	}
	doc, err := ir.Decode([]byte(`{"b": 1, "a": 2}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := MustString(doc); got != `{"b":1,"a":2}` {
		t.Errorf("MustString() = %q", got)
	}
}
