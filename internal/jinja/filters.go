package jinja

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/exec"
	"github.com/pkg/errors"
)

// impureFilters are gonja builtins whose output depends on more than their
// input.
var impureFilters = []string{"file", "fileset", "dir", "random", "panic"}

var (
	envOnce sync.Once
	env     *gonja.Environment
)

// environment returns the shared strict environment. It is built once and
// only read afterwards.
func environment() *gonja.Environment {
	envOnce.Do(func() {
		cfg := config.NewConfig()
		cfg.StrictUndefined = true

		env = gonja.NewEnvironment(cfg, noLoader{})
		for _, name := range impureFilters {
			delete(*env.Filters, name)
		}
		for name, fn := range sprig.HermeticTxtFuncMap() {
			if env.Filters.Exists(name) {
				continue
			}
			_ = env.Filters.Register(name, sprigFilter(name, reflect.ValueOf(fn)))
		}
	})
	return env
}

// noLoader rejects include, import and extends. Templates are self-contained.
type noLoader struct{}

func (noLoader) Get(path string) (io.Reader, error) {
	return nil, errors.Errorf("template %q: loading other templates is not supported", path)
}

func (noLoader) Path(path string) (string, error) {
	return "", errors.Errorf("template %q: loading other templates is not supported", path)
}

// sprigFilter adapts a Sprig function to a gonja filter. The filter
// arguments come first and the filtered value last, matching Sprig's
// pipeline order.
func sprigFilter(name string, fn reflect.Value) exec.FilterFunction {
	ft := fn.Type()
	return func(e *exec.Evaluator, in *exec.Value, params *exec.VarArgs) (out *exec.Value) {
		if in.IsError() {
			return in
		}
		args := make([]any, 0, len(params.Args)+1)
		for _, p := range params.Args {
			args = append(args, p.ToGoSimpleType(false))
		}
		args = append(args, in.ToGoSimpleType(false))

		if ft.IsVariadic() {
			if len(args) < ft.NumIn()-1 {
				return exec.AsValue(errors.Errorf("filter %s: expected at least %d arguments, got %d", name, ft.NumIn()-1, len(args)))
			}
		} else if len(args) != ft.NumIn() {
			return exec.AsValue(errors.Errorf("filter %s: expected %d arguments, got %d", name, ft.NumIn(), len(args)))
		}

		callArgs := make([]reflect.Value, len(args))
		for i, a := range args {
			v, err := convertArg(a, paramType(ft, i))
			if err != nil {
				return exec.AsValue(errors.Wrapf(err, "filter %s: argument %d", name, i+1))
			}
			callArgs[i] = v
		}

		defer func() {
			if r := recover(); r != nil {
				out = exec.AsValue(errors.Errorf("filter %s: %v", name, r))
			}
		}()
		results := fn.Call(callArgs)
		if len(results) == 2 && !results[1].IsNil() {
			return exec.AsValue(errors.Wrapf(results[1].Interface().(error), "filter %s", name))
		}
		if len(results) == 0 {
			return exec.AsValue(nil)
		}
		return exec.AsValue(results[0].Interface())
	}
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

func convertArg(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(pt), nil
	}
	if err, ok := a.(error); ok {
		return reflect.Value{}, err
	}
	rv := reflect.ValueOf(a)
	if rv.Type().AssignableTo(pt) {
		return rv, nil
	}
	if pt.Kind() == reflect.Slice {
		if items, ok := a.([]any); ok {
			out := reflect.MakeSlice(pt, len(items), len(items))
			for i, item := range items {
				v, err := convertArg(item, pt.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(v)
			}
			return out, nil
		}
	}
	if isNumericKind(rv.Kind()) && isNumericKind(pt.Kind()) {
		return rv.Convert(pt), nil
	}
	if pt.Kind() == reflect.String {
		return reflect.ValueOf(fmt.Sprint(a)).Convert(pt), nil
	}
	return reflect.Value{}, errors.Errorf("cannot use %T as %s", a, pt)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
