package main

import (
	"github.com/expr-lang/expr"

	keydiff "github.com/signadot/keydiff"
)

// compileFilter builds a predicate over diff records from an expression
// such as `kind == "changed" && path startsWith "items"`.  The expression
// sees: kind, path, old, new, left, right.
func compileFilter(src string) (func(*keydiff.Record) (bool, error), error) {
	prog, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	return func(rec *keydiff.Record) (bool, error) {
		env := map[string]any{
			"kind": rec.Kind.String(),
			"path": rec.Path.String(),
			"old":  rec.Old.Interface(),
			"new":  rec.New.Interface(),
		}
		if rec.Left != nil {
			env["left"] = rec.Left.String()
		}
		if rec.Right != nil {
			env["right"] = rec.Right.String()
		}
		out, err := expr.Run(prog, env)
		if err != nil {
			return false, err
		}
		b, _ := out.(bool)
		return b, nil
	}, nil
}
