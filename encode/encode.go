// Package encode renders comparison results as human-readable reports.
// Machine output is plain encoding/json of the result types; this package
// only concerns itself with the textual form, optionally colored.
package encode

import (
	"fmt"
	"io"
	"strings"

	keydiff "github.com/signadot/keydiff"
	"github.com/signadot/keydiff/idkey"
	"github.com/signadot/keydiff/ir"
)

type encodeConfig struct {
	colors *Colors
}

type EncodeOption func(*encodeConfig)

// EncodeColors turns on colored output using the given color map.
func EncodeColors(colors *Colors) EncodeOption {
	return func(c *encodeConfig) { c.colors = colors }
}

func newConfig(opts []EncodeOption) *encodeConfig {
	cfg := &encodeConfig{colors: noColors()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WriteDiffs renders one line per difference:
//
//	~ items[id=b].v: 2 -> 3
//	+ items[id=c]: {"id":"c","v":9}
//	- legacy: true
//
// Changed string values additionally get an inline character-level delta.
func WriteDiffs(w io.Writer, diffs []*keydiff.Record, opts ...EncodeOption) error {
	cfg := newConfig(opts)
	for _, rec := range diffs {
		if err := writeDiff(w, cfg, rec); err != nil {
			return err
		}
	}
	return nil
}

func writeDiff(w io.Writer, cfg *encodeConfig, rec *keydiff.Record) error {
	c := cfg.colors
	path := c.Path("%s", rec.Path.String())
	var line string
	switch rec.Kind {
	case keydiff.Added:
		line = c.Added("+ %s: %s", path, MustString(rec.New))
	case keydiff.Removed:
		line = c.Removed("- %s: %s", path, MustString(rec.Old))
	case keydiff.Changed:
		if rec.Old != nil && rec.New != nil &&
			rec.Old.Type == ir.StringType && rec.New.Type == ir.StringType {
			line = c.Changed("~ %s: %s", path, stringDelta(cfg, rec.Old.String, rec.New.String))
		} else {
			line = c.Changed("~ %s: %s -> %s", path, MustString(rec.Old), MustString(rec.New))
		}
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// WriteKeys renders the identity-key report, one line per array location:
//
//	items: key=id (2/3)
//	spec.containers[].env: key=name,scope composite (4/4)
//	tags: positional (2/2)
func WriteKeys(w io.Writer, infos []*idkey.Info, opts ...EncodeOption) error {
	cfg := newConfig(opts)
	c := cfg.colors
	for _, info := range infos {
		loc := c.Path("%s", info.Location.String())
		var kind string
		if info.Keyed() {
			kind = c.Key("key=%s", strings.Join(info.Fields, ","))
			if info.Composite {
				kind += " composite"
			}
		} else {
			kind = "positional"
		}
		if _, err := fmt.Fprintf(w, "%s: %s (%d/%d)\n", loc, kind, info.SizeLeft, info.SizeRight); err != nil {
			return err
		}
	}
	return nil
}

// MustString renders a node as compact ordered JSON; it is the value form
// used throughout reports.
func MustString(y *ir.Node) string {
	if y == nil {
		return "null"
	}
	d, err := y.MarshalJSON()
	if err != nil {
		panic(err)
	}
	return string(d)
}
