package mapper

import (
	"errors"
	"fmt"
	"strings"

	"caster-mapper/internal/common"
	"caster-mapper/typeid"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrRuleNotFound indicates no rule is registered for a (source, target) pair.
	ErrRuleNotFound = errors.New("mapper: rule not found")

	// ErrUnresolvedRule indicates a ByRule directive references a rule that was never registered.
	ErrUnresolvedRule = errors.New("mapper: unresolved rule reference")

	// ErrConstruction indicates the target instance could not be constructed.
	ErrConstruction = errors.New("mapper: construction failed")

	// ErrValidationFailed indicates the validator rejected a mapped target.
	ErrValidationFailed = errors.New("mapper: validation failed")

	// ErrDuplicateRule indicates two rules were registered for the same pair.
	ErrDuplicateRule = errors.New("mapper: duplicate rule")

	// ErrInvalidDirective indicates a directive references an unusable property.
	ErrInvalidDirective = errors.New("mapper: invalid directive")

	// ErrRegistrationClosed indicates a registration call after the store was sealed.
	ErrRegistrationClosed = errors.New("mapper: registration closed")

	// ErrUnsupportedSource indicates a source value the executor cannot map.
	ErrUnsupportedSource = errors.New("mapper: unsupported source")
)

// RuleNotFoundError reports a mapping request for an unregistered pair.
type RuleNotFoundError struct {
	Key typeid.Key
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRuleNotFound.Error(), e.Key)
}

func (e *RuleNotFoundError) Unwrap() error {
	return ErrRuleNotFound
}

// UnresolvedRuleError reports a ByRule directive whose rule is missing at
// execution time.
type UnresolvedRuleError struct {
	Key      typeid.Key // Rule holding the directive
	Ref      typeid.Key // Referenced rule
	Property string     // Target property of the directive
}

func (e *UnresolvedRuleError) Error() string {
	return fmt.Sprintf("%s: %s (property %s of %s)", ErrUnresolvedRule.Error(), e.Ref, e.Property, e.Key)
}

func (e *UnresolvedRuleError) Unwrap() error {
	return ErrUnresolvedRule
}

// ConstructionError reports that a target could not be instantiated.
type ConstructionError struct {
	Target typeid.TypeID
	Cause  error
}

func (e *ConstructionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrConstruction.Error(), e.Target.Name(), e.Cause)
	}

	return fmt.Sprintf("%s: %s", ErrConstruction.Error(), e.Target.Name())
}

func (e *ConstructionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConstruction}
	}

	return []error{ErrConstruction, e.Cause}
}

// Violation describes one failed constraint on one property.
type Violation struct {
	Property    string            // Dotted path of the offending property
	Constraints map[string]string // Constraint name to message
	Value       any               // Offending value, when known
}

// String renders the violation as "Property: msg; msg".
func (v Violation) String() string {
	keys := common.SortedKeys(v.Constraints)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, v.Constraints[k])
	}

	if v.Property == "" {
		return strings.Join(msgs, "; ")
	}

	return v.Property + ": " + strings.Join(msgs, "; ")
}

// ValidationFailedError reports a target rejected by the validator.
type ValidationFailedError struct {
	Target     typeid.TypeID
	Violations []Violation
	Cause      error // Non-violation error returned by the validator, if any
}

func (e *ValidationFailedError) Error() string {
	var b strings.Builder

	b.WriteString(ErrValidationFailed.Error())

	if !e.Target.IsZero() {
		b.WriteString(": ")
		b.WriteString(e.Target.Name())
	}

	for i, v := range e.Violations {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}

		b.WriteString(v.String())
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *ValidationFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidationFailed}
	}

	return []error{ErrValidationFailed, e.Cause}
}

// DuplicateRuleError reports a second rule for an already registered pair.
type DuplicateRuleError struct {
	Key     typeid.Key
	Profile string // Profile that attempted the second registration
}

func (e *DuplicateRuleError) Error() string {
	if e.Profile != "" {
		return fmt.Sprintf("%s: %s (profile %s)", ErrDuplicateRule.Error(), e.Key, e.Profile)
	}

	return fmt.Sprintf("%s: %s", ErrDuplicateRule.Error(), e.Key)
}

func (e *DuplicateRuleError) Unwrap() error {
	return ErrDuplicateRule
}

// DirectiveError reports a directive that cannot be applied to the rule's
// types, either at registration or when its result is assigned.
type DirectiveError struct {
	Key      typeid.Key
	Property string
	Cause    error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("%s: %s property %s: %v", ErrInvalidDirective.Error(), e.Key, e.Property, e.Cause)
}

func (e *DirectiveError) Unwrap() []error {
	return []error{ErrInvalidDirective, e.Cause}
}

// ElementError wraps the failure of one element of a sequence.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("mapper: element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// SequenceError collects per-element failures under the CollectErrors policy.
type SequenceError struct {
	Failures []*ElementError
}

func (e *SequenceError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}

	return fmt.Sprintf("mapper: %d element(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *SequenceError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}

	return errs
}

// Indexes returns the indexes of the failed elements in ascending order.
func (e *SequenceError) Indexes() []int {
	out := make([]int, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Index)
	}

	return out
}

func newDirectiveError(key typeid.Key, property string, format string, args ...any) *DirectiveError {
	return &DirectiveError{Key: key, Property: property, Cause: fmt.Errorf(format, args...)}
}
