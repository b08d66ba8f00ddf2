package main

import (
	"fmt"

	keydiff "github.com/signadot/keydiff"
	"github.com/signadot/keydiff/idkey"
	"github.com/signadot/keydiff/keypath"

	"github.com/scott-cotton/cli"
)

// resolve turns an identity address into the concrete position it occupies
// in a document.  With one document, identity keys are detected from that
// document alone; with two, they come from comparing the pair and the
// address is resolved against both sides.
func resolve(cfg *ResolveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Resolve.Parse(cc, args)
	if err != nil {
		cfg.Resolve.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("%w: resolve requires <address> and 1 or 2 docs, got %v", cli.ErrUsage, args)
	}
	id, err := keypath.ParseIdentity(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	doc, err := getObjFile(cc, args[1], cfg.decodeOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[1], err)
	}
	if len(args) == 2 {
		set := idkey.NewSet(idkey.DetectDocument(doc)...)
		pos, ok := keydiff.ResolveIdentity(id, doc, set)
		if !ok {
			fmt.Fprintln(cc.Out, "absent")
			return cli.ExitCodeErr(1)
		}
		fmt.Fprintln(cc.Out, pos.String())
		return nil
	}
	doc2, err := getObjFile(cc, args[2], cfg.decodeOpts()...)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", args[2], err)
	}
	res := keydiff.Compare(doc, doc2)
	lpos, lok, rpos, rok := keydiff.ResolveBothSides(id, doc, doc2, res.Keys)
	writeSide(cc, keypath.Left, lpos, lok)
	writeSide(cc, keypath.Right, rpos, rok)
	if !lok && !rok {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func writeSide(cc *cli.Context, side keypath.Side, pos keypath.Position, ok bool) {
	if !ok {
		fmt.Fprintf(cc.Out, "%s: absent\n", side)
		return
	}
	fmt.Fprintln(cc.Out, keypath.NewScoped(side, pos).String())
}
