package function

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// NewCELFunction compiles a CEL expression into a Func.
//
// The expression sees two variables: ctx, the attributes of the first
// argument when it implements Attributes (empty otherwise), and args, the
// full argument list.
//
//	ctx.region == "EU" ? "eu-west" : "us-east"
//	args[0] * 2
func NewCELFunction(expr string) (Func, error) {
	env, err := cel.NewEnv(
		cel.Variable("ctx", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("args", cel.ListType(cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling expression %q: %w", expr, iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("generating program %q: %w", expr, err)
	}

	return func(ctx context.Context, args ...any) (any, error) {
		attrs := map[string]any{}
		if len(args) > 0 {
			if a, ok := args[0].(Attributes); ok && a != nil {
				attrs = a.Attributes()
			}
		}
		if args == nil {
			args = []any{}
		}

		out, _, err := prg.ContextEval(ctx, map[string]any{
			"ctx":  attrs,
			"args": args,
		})
		if err != nil {
			return nil, err
		}
		return out.Value(), nil
	}, nil
}

// RegisterCEL compiles each expression and registers it under its name.
func (r *Registry) RegisterCEL(exprs map[string]string) error {
	for name, expr := range exprs {
		fn, err := NewCELFunction(expr)
		if err != nil {
			return fmt.Errorf("function %q: %w", name, err)
		}
		if err := r.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}
