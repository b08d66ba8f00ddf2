package encode

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// stringDelta renders a character-level delta between two string values,
// with deleted runs as [-...-] and inserted runs as {+...+}.  When the
// strings have nothing usable in common the plain old -> new form is used
// instead.
func stringDelta(cfg *encodeConfig, from, to string) string {
	diffCfg := diffpatch.New()
	doMultiLine := strings.Contains(from, "\n") && strings.Contains(to, "\n")
	diffs := diffCfg.DiffMain(from, to, doMultiLine)
	diffs = diffCfg.DiffCleanupSemantic(diffs)

	diffSize := 0
	for i := range diffs {
		if diffs[i].Type != diffpatch.DiffEqual {
			diffSize += len(diffs[i].Text)
		}
	}
	if diffSize > min(len(from), len(to))/2 {
		return quoted(from) + " -> " + quoted(to)
	}

	c := cfg.colors
	buf := strings.Builder{}
	buf.WriteByte('"')
	for i := range diffs {
		diff := &diffs[i]
		switch diff.Type {
		case diffpatch.DiffEqual:
			buf.WriteString(diff.Text)
		case diffpatch.DiffDelete:
			buf.WriteString(c.Removed("[-%s-]", diff.Text))
		case diffpatch.DiffInsert:
			buf.WriteString(c.Added("{+%s+}", diff.Text))
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

func quoted(s string) string {
	return `"` + s + `"`
}
