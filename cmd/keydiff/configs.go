package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/keydiff/encode"
	"github.com/signadot/keydiff/ir"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='force colored output'"`

	J bool `cli:"name=j aliases=json-in desc='require JSON input'"`
	Y bool `cli:"name=y aliases=yaml-in desc='accept YAML input'"`

	InFormat *ir.Format

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fp **ir.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := ir.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		*fp = &f
		return f, nil
	})
}

func (cfg *MainConfig) decodeOpts() []ir.DecodeOption {
	fmat := ir.AutoFormat
	switch {
	case cfg.J:
		fmat = ir.JSONFormat
	case cfg.Y:
		fmat = ir.YAMLFormat
	}
	if cfg.InFormat != nil {
		fmat = *cfg.InFormat
	}
	return []ir.DecodeOption{ir.DecodeFormat(fmat)}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	if cfg.Color {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return []encode.EncodeOption{encode.EncodeColors(encode.NewColors())}
	}
	return nil
}

type DiffConfig struct {
	*MainConfig

	JSON   bool   `cli:"name=json desc='machine-readable JSON output'"`
	Keys   bool   `cli:"name=keys desc='include the identity key report'"`
	Filter string `cli:"name=filter desc='keep only diffs matching this expression'"`

	Ignore []string

	Diff *cli.Command
}

func (cfg *DiffConfig) mkIgnore() func(cc *cli.Context, a string) (any, error) {
	return func(_ *cli.Context, a string) (any, error) {
		cfg.Ignore = append(cfg.Ignore, a)
		return a, nil
	}
}

type KeysConfig struct {
	*MainConfig

	JSON bool `cli:"name=json desc='machine-readable JSON output'"`

	Keys *cli.Command
}

type ResolveConfig struct {
	*MainConfig

	Resolve *cli.Command
}
