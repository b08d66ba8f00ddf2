package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/keydiff/ir"

	"github.com/scott-cotton/cli"
)

func getObjFile(cc *cli.Context, path string, opts ...ir.DecodeOption) (*ir.Node, error) {
	var r io.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		r = cc.In
	}

	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return ir.Decode(d, opts...)
}
