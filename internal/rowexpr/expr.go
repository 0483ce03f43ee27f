package rowexpr

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Expr is a Starlark expression evaluated with the current row bound to
// the global "row". It is safe for concurrent use.
type Expr struct {
	name string
	src  string
	pool *threadPool
}

// Compile checks the syntax of src. name is used in error messages.
func Compile(name, src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%s: empty expression", name)
	}
	if _, err := syntax.ParseExpr(name, src, 0); err != nil { //nolint:staticcheck // SA1019: will migrate to FileOptions later
		return nil, &EvalError{Name: name, Expr: src, Message: err.Error()}
	}
	return &Expr{name: name, src: src, pool: newThreadPool(0)}, nil
}

// String returns the expression source.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression against row and returns the Go value.
func (e *Expr) Eval(row grid.Row) (any, error) {
	value, err := e.eval(row)
	if err != nil {
		return nil, err
	}
	out, err := ToGo(value)
	if err != nil {
		return nil, &EvalError{Name: e.name, Expr: e.src, Message: err.Error()}
	}
	return out, nil
}

// EvalString evaluates the expression and returns its text: strings
// as-is, None as "", anything else in Starlark notation.
func (e *Expr) EvalString(row grid.Row) (string, error) {
	value, err := e.eval(row)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case starlark.String:
		return string(v), nil
	case starlark.NoneType:
		return "", nil
	default:
		return value.String(), nil
	}
}

func (e *Expr) eval(row grid.Row) (starlark.Value, error) {
	dict, err := dictOf(row)
	if err != nil {
		return nil, &EvalError{Name: e.name, Expr: e.src, Message: err.Error()}
	}

	globals := predeclared()
	globals["row"] = dict

	thread := e.pool.get(e.name)
	defer e.pool.put(thread)

	result, err := starlark.Eval(thread, e.name, e.src, globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{Name: e.name, Expr: e.src, Message: err.Error()}
	}
	return result, nil
}

// EvalError reports a failed compile or evaluation.
type EvalError struct {
	Name    string
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: error evaluating %q: %s", e.Name, e.Expr, e.Message)
}
