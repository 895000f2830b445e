package rule

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/ysing58/dataquality/pkg/records"
)

// celEnv is the shared environment for custom predicates. Rules see one
// variable, "record", bound to the row as a map; missing-column access and
// type errors surface as evaluation errors on the offending record only.
var celEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		panic(fmt.Sprintf("rule: create CEL environment: %v", err))
	}
	celEnv = env
}

// compileCustom compiles a custom rule's CEL expression into an evaluator.
// Compile errors are configuration errors: they happen before any partition
// is evaluated and fail the run.
func compileCustom(r Rule) (func(records.Record, RecordID) Outcome, error) {
	ast, issues := celEnv.Compile(r.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rule %q: compile expression: %w", r.Name, issues.Err())
	}
	prog, err := celEnv.Program(ast, cel.CostLimit(1_000_000))
	if err != nil {
		return nil, fmt.Errorf("rule %q: build program: %w", r.Name, err)
	}

	name := r.Name
	return func(rec records.Record, id RecordID) Outcome {
		out, _, err := prog.Eval(map[string]any{"record": map[string]any(rec)})
		if err != nil {
			return errored(name, id, fmt.Sprintf("expression error: %v", err))
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return errored(name, id, fmt.Sprintf("expression returned %T, want bool", out.Value()))
		}
		if !ok {
			return failed(name, id, ReasonPredicate, nil)
		}
		return passed(name, id)
	}, nil
}
