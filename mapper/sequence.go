package mapper

import (
	"context"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"caster-mapper/typeid"
)

func (m *Mapper) runSequence(ctx context.Context, rv reflect.Value, key typeid.Key) ([]reflect.Value, error) {
	n := 0
	if rv.IsValid() {
		n = rv.Len()
	}

	start := time.Now()
	emitMapStarted(ctx, key.String(), n)

	out, err := m.mapSequence(ctx, rv, key, n)

	emitMapCompleted(ctx, key.String(), n, time.Since(start), err)

	return out, err
}

// mapSequence maps the n elements of rv. The rule is resolved once, so a
// missing rule fails the call before any element is touched.
func (m *Mapper) mapSequence(ctx context.Context, rv reflect.Value, key typeid.Key, n int) ([]reflect.Value, error) {
	rule, err := m.resolve(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make([]reflect.Value, n)
	if n == 0 {
		return out, nil
	}

	var errs []error
	if m.concurrency > 1 && n > 1 {
		errs = m.mapConcurrent(ctx, rv, rule, out)
	} else {
		errs = m.mapSequential(ctx, rv, rule, out)
	}

	var failures []*ElementError

	for i, err := range errs {
		if err == nil {
			continue
		}

		failure := &ElementError{Index: i, Err: err}
		if m.policy == FailFast {
			return nil, failure
		}

		failures = append(failures, failure)
	}

	if len(failures) > 0 {
		return out, &SequenceError{Failures: failures}
	}

	return out, nil
}

// mapSequential maps elements in input order. Under FailFast it stops at the
// first failure.
func (m *Mapper) mapSequential(ctx context.Context, rv reflect.Value, rule *Rule, out []reflect.Value) []error {
	errs := make([]error, len(out))

	for i := range out {
		p, err := m.mapWithRule(ctx, rv.Index(i), rule)
		if err != nil {
			errs[i] = err

			if m.policy == FailFast {
				break
			}

			continue
		}

		out[i] = p
	}

	return errs
}

// mapConcurrent maps elements on up to m.concurrency goroutines. Under
// FailFast, elements above the lowest known failure are skipped; elements
// below it always run, so the lowest failing index is the one reported
// regardless of completion order.
func (m *Mapper) mapConcurrent(ctx context.Context, rv reflect.Value, rule *Rule, out []reflect.Value) []error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		lowest = len(out)
		errs   = make([]error, len(out))
	)

	g.SetLimit(m.concurrency)

	skip := func(i int) bool {
		if m.policy != FailFast {
			return false
		}

		mu.Lock()
		defer mu.Unlock()

		return i > lowest
	}

	for i := range out {
		if skip(i) {
			break
		}

		elem := rv.Index(i)

		g.Go(func() error {
			if skip(i) {
				return nil
			}

			p, err := m.mapWithRule(ctx, elem, rule)
			if err != nil {
				errs[i] = err

				mu.Lock()
				lowest = min(lowest, i)
				mu.Unlock()

				return nil
			}

			out[i] = p

			return nil
		})
	}

	_ = g.Wait()

	return errs
}
