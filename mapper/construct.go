package mapper

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var errNoConstructor = errors.New("no constructor registered and target does not implement Initializer")

// construct returns a pointer to a fresh target for rule.
func (m *Mapper) construct(ctx context.Context, rule *Rule) (reflect.Value, error) {
	target := rule.Key.Target
	rt := target.Type()

	if rule.Mode != ModeCallConstructor {
		return reflect.New(rt), nil
	}

	if rule.constructor != nil {
		p, err := rule.constructor(ctx)
		if err != nil {
			return reflect.Value{}, &ConstructionError{Target: target, Cause: err}
		}

		if !p.IsValid() || p.Type() != reflect.PointerTo(rt) || p.IsNil() {
			got := "nil"
			if p.IsValid() && p.Type() != reflect.PointerTo(rt) {
				got = p.Type().String()
			}

			return reflect.Value{}, &ConstructionError{
				Target: target,
				Cause:  fmt.Errorf("constructor returned %s, want non-nil *%s", got, rt),
			}
		}

		return p, nil
	}

	p := reflect.New(rt)

	init, ok := p.Interface().(Initializer)
	if !ok {
		return reflect.Value{}, &ConstructionError{Target: target, Cause: errNoConstructor}
	}

	if err := init.Init(); err != nil {
		return reflect.Value{}, &ConstructionError{Target: target, Cause: err}
	}

	return p, nil
}
