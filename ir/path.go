package ir

import (
	"strconv"
	"strings"
)

// Path returns the concrete position of a node within its document, built
// from the parent backrefs.  The root renders as the empty string; children
// as "a.b[3].c" style position addresses.
func (y *Node) Path() string {
	if y.Parent == nil {
		return ""
	}
	switch y.Parent.Type {
	case ObjectType:
		prefix := y.Parent.Path()
		f := pathField(y.ParentField)
		if prefix == "" {
			return f
		}
		return prefix + "." + f
	case ArrayType:
		return y.Parent.Path() + "[" + strconv.Itoa(y.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}

func pathField(f string) string {
	if f != "" && strings.IndexAny(f, "'.*[]{}=,:") == -1 {
		return f
	}
	return "'" + strings.Replace(f, "'", "\\'", -1) + "'"
}
