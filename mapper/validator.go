package mapper

import (
	"context"
	"errors"

	"caster-mapper/typeid"
)

// Validator checks a fully mapped target. Returning *ValidationFailedError
// reports per-property violations; any other error is reported as the cause
// of a ValidationFailedError.
type Validator interface {
	Validate(ctx context.Context, instance any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, instance any) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, instance any) error {
	return f(ctx, instance)
}

// validate runs the configured validator on instance, a value of target.
func (m *Mapper) validate(ctx context.Context, target typeid.TypeID, instance any) error {
	if m.validator == nil {
		return nil
	}

	err := m.validator.Validate(ctx, instance)
	if err == nil {
		return nil
	}

	var failed *ValidationFailedError
	if errors.As(err, &failed) {
		if failed.Target.IsZero() {
			withTarget := *failed
			withTarget.Target = target

			return &withTarget
		}

		return failed
	}

	return &ValidationFailedError{Target: target, Cause: err}
}
