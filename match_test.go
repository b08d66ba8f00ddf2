package keydiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/keydiff/keypath"
)

func TestMatches(t *testing.T) {
	addr := mustIdentity(t, "items[id=b].v")
	tests := []struct {
		pattern string
		want    bool
	}{
		{"items.*.v", true},
		{"items.*", false},
		{"items*", true},
		{"items[id=b].v", true},
		{"other.*", false},
	}
	for _, tt := range tests {
		got, err := Matches(addr, tt.pattern)
		if err != nil {
			t.Fatalf("Matches(%q) error = %v", tt.pattern, err)
		}
		if got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
	if _, err := Matches(addr, "a*b"); err == nil {
		t.Errorf("malformed pattern should error")
	}
}

func TestResult_Ignore(t *testing.T) {
	left := mustDecode(t, `{
		"items": [{"id": "a", "v": 1}, {"id": "b", "v": 2}],
		"meta": {"rev": 7}
	}`)
	right := mustDecode(t, `{
		"items": [{"id": "a", "v": 9}, {"id": "b", "v": 8}, {"id": "c", "v": 3}],
		"meta": {"rev": 8}
	}`)
	res := Compare(left, right)

	filtered := res.Ignore(keypath.MustPattern("items.*.v"))
	want := []string{
		`added items[id=c] right:items[2] new={"id":"c","v":3}`,
		"changed meta.rev left:meta.rev right:meta.rev old=7 new=8",
	}
	if d := cmp.Diff(want, fmtRecords(filtered)); d != "" {
		t.Errorf("Ignore(items.*.v) mismatch (-want +got):\n%s", d)
	}
	if filtered.Keys != res.Keys {
		t.Errorf("Ignore must keep the identity-key report")
	}

	all := res.Ignore(keypath.MustPattern("items*"), keypath.MustPattern("meta.rev"))
	if len(all.Diffs) != 0 {
		t.Errorf("Ignore(items*, meta.rev) = %v, want none", fmtRecords(all))
	}

	same := res.Ignore()
	if same != res {
		t.Errorf("Ignore() without patterns should return the result unchanged")
	}
}
