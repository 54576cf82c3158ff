package mapper

import (
	"context"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for mapper events.
var (
	SignalRulesCollected = capitan.NewSignal("mapper.rules.collected", "Profiles collected into the rule store")
	SignalRuleReplaced   = capitan.NewSignal("mapper.rule.replaced", "Rule replaced under the replace policy")
	SignalMapStarted     = capitan.NewSignal("mapper.map.started", "Map operation beginning")
	SignalMapCompleted   = capitan.NewSignal("mapper.map.completed", "Map operation finished")
	SignalAutoMapped     = capitan.NewSignal("mapper.automap.used", "Automatic fallback synthesized a rule")
)

// Keys for typed event data.
var (
	KeyRule      = capitan.NewStringKey("rule")
	KeyProfile   = capitan.NewStringKey("profile")
	KeyProfiles  = capitan.NewStringKey("profiles")
	KeyRuleCount = capitan.NewIntKey("rule_count")
	KeyCount     = capitan.NewIntKey("count")
	KeyFields    = capitan.NewStringKey("fields")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

// emitRulesCollected emits an event after a successful collection pass.
func emitRulesCollected(ctx context.Context, profiles []string, rules int) {
	capitan.Emit(ctx, SignalRulesCollected,
		KeyProfiles.Field(strings.Join(profiles, ",")),
		KeyRuleCount.Field(rules),
	)
}

// emitRuleReplaced emits an event when a rule overrides an earlier one.
func emitRuleReplaced(ctx context.Context, rule, profile string) {
	capitan.Emit(ctx, SignalRuleReplaced,
		KeyRule.Field(rule),
		KeyProfile.Field(profile),
	)
}

// emitMapStarted emits an event when a map call begins.
func emitMapStarted(ctx context.Context, rule string, count int) {
	capitan.Emit(ctx, SignalMapStarted,
		KeyRule.Field(rule),
		KeyCount.Field(count),
	)
}

// emitMapCompleted emits an event when a map call finishes.
func emitMapCompleted(ctx context.Context, rule string, count int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyRule.Field(rule),
		KeyCount.Field(count),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMapCompleted, fields...)
	} else {
		capitan.Emit(ctx, SignalMapCompleted, fields...)
	}
}

// emitAutoMapped emits an event when the fallback builds a rule.
func emitAutoMapped(ctx context.Context, rule string, fields []string) {
	capitan.Emit(ctx, SignalAutoMapped,
		KeyRule.Field(rule),
		KeyFields.Field(strings.Join(fields, ",")),
	)
}
