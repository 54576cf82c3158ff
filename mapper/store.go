package mapper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"caster-mapper/typeid"
)

// DuplicatePolicy decides what happens when a pair is registered twice.
type DuplicatePolicy uint8

const (
	// RejectDuplicates fails registration with *DuplicateRuleError.
	RejectDuplicates DuplicatePolicy = iota
	// ReplaceDuplicates keeps the last registration and emits SignalRuleReplaced.
	ReplaceDuplicates
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDuplicatePolicy sets the duplicate-pair policy. The default is
// RejectDuplicates.
func WithDuplicatePolicy(p DuplicatePolicy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// WithIntrospector sets the property introspector used to check directive
// paths. The default is typeid.Default.
func WithIntrospector(in typeid.Introspector) StoreOption {
	return func(s *Store) {
		if in != nil {
			s.introspector = in
		}
	}
}

type ruleTable map[typeid.Key]*Rule

// Store maps (source, target) pairs to rules.
//
// Rules are registered directly with Register or collected once from
// profiles. Once collected the store is sealed: its table never changes
// again and Resolve reads it without locking.
type Store struct {
	policy       DuplicatePolicy
	introspector typeid.Introspector

	mu        sync.Mutex
	collected bool
	profiles  []string

	sealed atomic.Bool
	table  atomic.Pointer[ruleTable]
}

// NewStore returns an empty, unsealed store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		policy:       RejectDuplicates,
		introspector: typeid.Default,
	}

	for _, opt := range opts {
		opt(s)
	}

	empty := ruleTable{}
	s.table.Store(&empty)

	return s
}

// Introspector returns the store's property introspector.
func (s *Store) Introspector() typeid.Introspector {
	return s.introspector
}

// Register inserts rule under its key, enforcing the duplicate policy.
// Rules must come from a builder; registration fails once the store is
// sealed.
func (s *Store) Register(rule *Rule) error {
	if rule == nil || rule.Key.IsZero() {
		return fmt.Errorf("%w: rule without key", ErrInvalidDirective)
	}

	for _, d := range rule.Directives {
		if len(d.dst.steps) == 0 {
			return newDirectiveError(rule.Key, d.Target, "directive was not built by a rule builder")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collected {
		return ErrRegistrationClosed
	}

	return s.commit(context.Background(), []*Rule{rule})
}

// commit publishes rules as a new table. Nothing is published on error.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, rules []*Rule) error {
	current := *s.table.Load()
	next := make(ruleTable, len(current)+len(rules))

	for k, r := range current {
		next[k] = r
	}

	var replaced []*Rule

	for _, r := range rules {
		if _, ok := next[r.Key]; ok {
			if s.policy == RejectDuplicates {
				return &DuplicateRuleError{Key: r.Key, Profile: r.Profile}
			}

			replaced = append(replaced, r)
		}

		next[r.Key] = r
	}

	s.table.Store(&next)

	for _, r := range replaced {
		emitRuleReplaced(ctx, r.Key.String(), r.Profile)
	}

	return nil
}

// CollectFromProfiles defines every profile and registers the resulting
// rules, then seals the store. Only the first successful call does any
// work; later calls return nil without looking at their arguments. When
// collection fails nothing is registered and the store stays unsealed.
func (s *Store) CollectFromProfiles(ctx context.Context, profiles ...Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collected {
		return nil
	}

	pm := newProfileMapper(s.introspector, s.policy)
	names := make([]string, 0, len(profiles))

	for _, p := range profiles {
		if p == nil {
			continue
		}

		pm.profile = p.Name()
		names = append(names, pm.profile)

		if err := p.Define(pm); err != nil {
			pm.fail(fmt.Errorf("mapper: profile %s: %w", pm.profile, err))
		}
	}

	pm.close()

	if err := pm.Err(); err != nil {
		return err
	}

	if err := s.commit(ctx, pm.rules); err != nil {
		return err
	}

	for _, r := range pm.replaced {
		emitRuleReplaced(ctx, r.Key.String(), r.Profile)
	}

	s.collected = true
	s.profiles = names
	s.sealed.Store(true)

	emitRulesCollected(ctx, names, len(pm.rules))

	return nil
}

// Resolve returns the rule registered for (source, target).
func (s *Store) Resolve(source, target typeid.TypeID) (*Rule, bool) {
	r, ok := (*s.table.Load())[typeid.NewKey(source, target)]

	return r, ok
}

// ResolveKey returns the rule registered under key.
func (s *Store) ResolveKey(key typeid.Key) (*Rule, bool) {
	return s.Resolve(key.Source, key.Target)
}

// Rules returns every registered rule ordered by key.
func (s *Store) Rules() []*Rule {
	table := *s.table.Load()

	out := make([]*Rule, 0, len(table))
	for _, r := range table {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Path() < out[j].Key.Path()
	})

	return out
}

// Len returns the number of registered rules.
func (s *Store) Len() int {
	return len(*s.table.Load())
}

// Sealed reports whether profiles have been collected.
func (s *Store) Sealed() bool {
	return s.sealed.Load()
}

// Profiles returns the names of the collected profiles in collection order.
func (s *Store) Profiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.profiles...)
}
