package main

import (
	"encoding/json"
	"fmt"

	"github.com/signadot/keydiff/encode"
	"github.com/signadot/keydiff/idkey"

	"github.com/scott-cotton/cli"
)

func keys(cfg *KeysConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Keys.Parse(cc, args)
	if err != nil {
		cfg.Keys.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: keys requires 1 arg, got %v", cli.ErrUsage, args)
	}
	doc, err := getObjFile(cc, args[0], cfg.decodeOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[0], err)
	}
	infos := idkey.DetectDocument(doc)
	if cfg.JSON {
		d, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		d = append(d, '\n')
		_, err = cc.Out.Write(d)
		return err
	}
	return encode.WriteKeys(cc.Out, infos, cfg.encOpts(cc.Out)...)
}
