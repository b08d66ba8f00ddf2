package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Detect  bool
	Diff    bool
	Resolve bool
}

var d *debug

func init() {
	d = &debug{}
	d.Detect = boolEnv("KEYDIFF_DEBUG_DETECT")
	d.Diff = boolEnv("KEYDIFF_DEBUG_DIFF")
	d.Resolve = boolEnv("KEYDIFF_DEBUG_RESOLVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Detect() bool {
	return d.Detect
}
func Diff() bool {
	return d.Diff
}
func Resolve() bool {
	return d.Resolve
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte("\n"))
}
