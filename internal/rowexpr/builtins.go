package rowexpr

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
)

// predeclared returns the globals available to every expression besides
// "row".
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"coalesce": starlark.NewBuiltin("coalesce", coalesce),
		"join":     starlark.NewBuiltin("join", join),
	}
}

// coalesce returns the first argument that is neither None nor "".
func coalesce(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
	}
	for _, arg := range args {
		if arg == starlark.None {
			continue
		}
		if s, ok := arg.(starlark.String); ok && s == "" {
			continue
		}
		return arg, nil
	}
	return starlark.None, nil
}

// join(sep, *values) joins the non-None values as text.
func join(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: missing separator", fn.Name())
	}
	sep, ok := starlark.AsString(args[0])
	if !ok {
		return nil, fmt.Errorf("%s: separator must be a string, got %s", fn.Name(), args[0].Type())
	}

	parts := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		if arg == starlark.None {
			continue
		}
		if s, ok := starlark.AsString(arg); ok {
			parts = append(parts, s)
		} else {
			parts = append(parts, arg.String())
		}
	}
	return starlark.String(strings.Join(parts, sep)), nil
}
