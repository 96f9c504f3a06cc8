package compiler

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/go-beanio/beanio/parser"
)

// exprProgram adapts a compiled github.com/expr-lang/expr program to the
// parser.Expr interface, keeping the expr-lang import confined to this
// package (SPEC_FULL.md §2.1).
type exprProgram struct {
	program *vm.Program
}

func compileExpr(src string) (parser.Expr, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	return &exprProgram{program: program}, nil
}

func (e *exprProgram) Eval(env map[string]any) (any, error) {
	return expr.Run(e.program, env)
}
