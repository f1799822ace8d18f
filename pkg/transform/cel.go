package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/ib-77/rowbatch/pkg/record"
)

// RowVariable is the name records are bound to in expressions.
const RowVariable = "row"

// ErrRejected is wrapped by records that fail a validate expression.
var ErrRejected = errors.New("record rejected")

// Column derives a field from an expression.
type Column struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// Rules is the expression configuration of a CEL stage.
type Rules struct {
	// Validate expressions must all be true or the record fails its batch.
	Validate []string `yaml:"validate"`
	// Filter drops records for which it is false.
	Filter string `yaml:"filter"`
	// Derive sets fields from expression results, in order.
	Derive []Column `yaml:"derive"`
}

func (r Rules) IsZero() bool {
	return len(r.Validate) == 0 && r.Filter == "" && len(r.Derive) == 0
}

type CompileError struct {
	// Location is validate[i], filter or derive[i].
	Location string
	Source   string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %v (expr: %s)", e.Location, e.Err, e.Source)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// CompileErrors collects every expression that failed to compile.
type CompileErrors struct {
	Errors []CompileError
}

func (e *CompileErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d compilation errors: first: %v", len(e.Errors), &e.Errors[0])
}

func (e *CompileErrors) Add(err CompileError) {
	e.Errors = append(e.Errors, err)
}

func (e *CompileErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidationError is a validate expression that evaluated to false.
type ValidationError struct {
	Index      int
	Expression string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: validate[%d] returned false (expr: %s)", ErrRejected, e.Index, e.Expression)
}

func (e *ValidationError) Unwrap() error {
	return ErrRejected
}

type compiledExpr struct {
	location string
	source   string
	program  cel.Program
}

type compiledColumn struct {
	compiledExpr
	name string
}

// Program is a compiled set of Rules. It is safe for concurrent use.
type Program struct {
	validations []compiledExpr
	filter      *compiledExpr
	columns     []compiledColumn
}

// CompileRules compiles every expression in rules against a row of strings.
// All compile errors are reported together as *CompileErrors.
func CompileRules(rules Rules, opts ...cel.EnvOption) (*Program, error) {
	envOpts := append([]cel.EnvOption{
		cel.Variable(RowVariable, cel.MapType(cel.StringType, cel.StringType)),
	}, opts...)
	env, err := cel.NewEnv(envOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEL environment: %w", err)
	}

	compileErrors := &CompileErrors{}
	p := &Program{}

	for i, expr := range rules.Validate {
		loc := fmt.Sprintf("validate[%d]", i)
		prog, err := compileExpression(env, expr, cel.BoolType)
		if err != nil {
			compileErrors.Add(CompileError{Location: loc, Source: expr, Err: err})
			continue
		}
		p.validations = append(p.validations, compiledExpr{location: loc, source: expr, program: prog})
	}

	if rules.Filter != "" {
		prog, err := compileExpression(env, rules.Filter, cel.BoolType)
		if err != nil {
			compileErrors.Add(CompileError{Location: "filter", Source: rules.Filter, Err: err})
		} else {
			p.filter = &compiledExpr{location: "filter", source: rules.Filter, program: prog}
		}
	}

	for i, col := range rules.Derive {
		loc := fmt.Sprintf("derive[%d]", i)
		if col.Name == "" {
			compileErrors.Add(CompileError{Location: loc, Source: col.Expr, Err: errors.New("column name is empty")})
			continue
		}
		prog, err := compileExpression(env, col.Expr, nil)
		if err != nil {
			compileErrors.Add(CompileError{Location: loc, Source: col.Expr, Err: err})
			continue
		}
		p.columns = append(p.columns, compiledColumn{
			compiledExpr: compiledExpr{location: loc, source: col.Expr, program: prog},
			name:         col.Name,
		})
	}

	if compileErrors.HasErrors() {
		return nil, compileErrors
	}
	return p, nil
}

func compileExpression(env *cel.Env, expr string, expectedType *cel.Type) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast == nil {
		return nil, fmt.Errorf("compilation produced nil AST")
	}

	if expectedType != nil {
		outputType := ast.OutputType()
		if !expectedType.IsAssignableType(outputType) {
			return nil, fmt.Errorf("type mismatch: expected %s, got %s", expectedType, outputType)
		}
	}

	return env.Program(ast, cel.EvalOptions(cel.OptOptimize))
}

// Eval runs the program on one record. It returns ErrDrop for filtered
// records and a *ValidationError for rejected ones.
func (p *Program) Eval(ctx context.Context, r record.Record) (record.Record, error) {
	activation := map[string]any{RowVariable: map[string]string(r)}

	for i, v := range p.validations {
		ok, err := evalBool(ctx, v, activation)
		if err != nil {
			return r, err
		}
		if !ok {
			return r, &ValidationError{Index: i, Expression: v.source}
		}
	}

	if p.filter != nil {
		ok, err := evalBool(ctx, *p.filter, activation)
		if err != nil {
			return r, err
		}
		if !ok {
			return r, ErrDrop
		}
	}

	if len(p.columns) == 0 {
		return r, nil
	}

	out := r.Clone()
	for _, col := range p.columns {
		// derived columns see the ones before them
		val, _, err := col.program.ContextEval(ctx, map[string]any{RowVariable: map[string]string(out)})
		if err != nil {
			return r, fmt.Errorf("%s: %w", col.location, err)
		}
		if s, ok := val.Value().(string); ok {
			out[col.name] = s
		} else {
			out[col.name] = fmt.Sprint(val.Value())
		}
	}
	return out, nil
}

func evalBool(ctx context.Context, e compiledExpr, activation map[string]any) (bool, error) {
	out, _, err := e.program.ContextEval(ctx, activation)
	if err != nil {
		return false, fmt.Errorf("%s: %w", e.location, err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%s returned %T, expected bool", e.location, out.Value())
	}
	return val, nil
}

func (p *Program) Stage() Stage[record.Record] {
	return p.Eval
}
