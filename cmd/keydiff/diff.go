package main

import (
	"encoding/json"
	"fmt"

	keydiff "github.com/signadot/keydiff"
	"github.com/signadot/keydiff/encode"
	"github.com/signadot/keydiff/keypath"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	left, err := getObjFile(cc, args[0], cfg.decodeOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	right, err := getObjFile(cc, args[1], cfg.decodeOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}

	res := keydiff.Compare(left, right)
	patterns := make([]keypath.Pattern, len(cfg.Ignore))
	for i, p := range cfg.Ignore {
		patterns[i], err = keypath.ParsePattern(p)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
	}
	res = res.Ignore(patterns...)
	if cfg.Filter != "" {
		keep, err := compileFilter(cfg.Filter)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		kept := res.Diffs[:0:0]
		for _, rec := range res.Diffs {
			ok, err := keep(rec)
			if err != nil {
				return fmt.Errorf("error evaluating filter: %w", err)
			}
			if ok {
				kept = append(kept, rec)
			}
		}
		res = &keydiff.Result{Diffs: kept, Keys: res.Keys}
	}

	if err := writeDiffResult(cfg, cc, res); err != nil {
		return err
	}
	if len(res.Diffs) > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func writeDiffResult(cfg *DiffConfig, cc *cli.Context, res *keydiff.Result) error {
	w := cc.Out
	if cfg.JSON {
		out := res
		if !cfg.Keys {
			out = &keydiff.Result{Diffs: res.Diffs}
		}
		d, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		d = append(d, '\n')
		_, err = w.Write(d)
		return err
	}
	encOpts := cfg.encOpts(w)
	if cfg.Keys {
		if err := encode.WriteKeys(w, res.Keys.Infos(), encOpts...); err != nil {
			return err
		}
		if len(res.Diffs) > 0 {
			if _, err := w.Write([]byte("---\n")); err != nil {
				return err
			}
		}
	}
	return encode.WriteDiffs(w, res.Diffs, encOpts...)
}
