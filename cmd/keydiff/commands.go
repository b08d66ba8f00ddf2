package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "I",
		Aliases:     []string{"ifmt"},
		Description: "input format: json/j, yaml/y, auto",
		Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
	})

	return cli.NewCommandAt(&cfg.Main, "keydiff").
		WithSynopsis("keydiff [opts] command [opts]").
		WithDescription("keydiff compares tree documents, matching array elements by identity key.").
		WithOpts(opts...).
		WithSubs(
			DiffCommand(cfg),
			KeysCommand(cfg),
			ResolveCommand(cfg))
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "ignore",
		Description: "suppress diffs matching this address pattern (repeatable)",
		Type:        cli.NamedFuncOpt(cli.FuncOpt(cfg.mkIgnore()), "(pattern)"),
	})

	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithOpts(opts...).
		WithSynopsis("diff [opts] a b").
		WithDescription("diff two documents; exits 1 when they differ").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func KeysCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &KeysConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("keys").
		WithAliases("k").
		WithOpts(opts...).
		WithSynopsis("keys [opts] doc").
		WithDescription("detect identity keys for every array of a document").
		WithRun(func(cc *cli.Context, args []string) error {
			return keys(cfg, cc, args)
		})
	cfg.Keys = cmd
	return cmd
}

func ResolveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ResolveConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("resolve").
		WithAliases("r", "res").
		WithSynopsis("resolve <identity-address> <doc> [doc2]").
		WithDescription("resolve an identity address to a concrete position; exits 1 when absent").
		WithRun(func(cc *cli.Context, args []string) error {
			return resolve(cfg, cc, args)
		})
	cfg.Resolve = cmd
	return cmd
}
