package skema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/reoring/goskema"
	"github.com/reoring/goskema/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster-mapper/internal/fixture"
	"caster-mapper/mapper"
	"caster-mapper/typeid"
	"caster-mapper/validators/skema"
)

var errBackend = errors.New("backend unavailable")

type toySchema struct{}

func (toySchema) ValidateValue(_ context.Context, t fixture.ToyDto) error {
	var issues goskema.Issues

	if t.Name == "" {
		issues = append(issues, goskema.Issue{Path: "/Name", Code: goskema.CodeRequired, Message: "name is required"})
	}

	if len(t.Name) > 8 {
		issues = append(issues, goskema.Issue{Path: "/Name", Code: goskema.CodeTooLong, Message: "at most 8 characters"})
	}

	if t.Price < 0 {
		issues = append(issues, goskema.Issue{
			Path:    "/Price",
			Code:    goskema.CodeTooSmall,
			Message: "must not be negative",
			Params:  map[string]any{"got": t.Price},
		})
	}

	if len(issues) == 0 {
		return nil
	}

	return issues
}

type brokenSchema struct{}

func (brokenSchema) ValidateValue(context.Context, fixture.ToyDto) error {
	return errBackend
}

func TestProperty(t *testing.T) {
	tests := []struct {
		pointer string
		want    string
	}{
		{"", ""},
		{"/", ""},
		{"/Name", "Name"},
		{"/items/2/price", "items.2.price"},
		{"Payload/Value", "Payload.Value"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}

	for _, tt := range tests {
		t.Run(tt.pointer, func(t *testing.T) {
			assert.Equal(t, tt.want, skema.Property(tt.pointer))
		})
	}
}

func TestViolations(t *testing.T) {
	got := skema.Violations(goskema.Issues{
		{Path: "/Price", Code: goskema.CodeTooSmall, Message: "must not be negative", Params: map[string]any{"got": -1.0}},
		{Path: "/Name", Code: goskema.CodeRequired, Message: "name is required"},
		{Path: "/Name", Code: goskema.CodeRequired, Message: "again"},
		{Path: "/", Message: "whole object"},
	})

	require.Len(t, got, 3)

	assert.Empty(t, got[0].Property)
	assert.Equal(t, map[string]string{goskema.CodeBusinessRule: "whole object"}, got[0].Constraints)

	assert.Equal(t, "Name", got[1].Property)
	assert.Equal(t, map[string]string{goskema.CodeRequired: "name is required; again"}, got[1].Constraints)
	assert.Nil(t, got[1].Value)

	assert.Equal(t, "Price", got[2].Property)
	assert.Equal(t, -1.0, got[2].Value)
}

func TestValidator_Validate(t *testing.T) {
	ctx := context.Background()
	v := skema.New[fixture.ToyDto](toySchema{})

	assert.Equal(t, typeid.Of[fixture.ToyDto](), v.Type())

	require.NoError(t, v.Validate(ctx, fixture.ToyDto{Name: "ball"}))
	require.NoError(t, v.Validate(ctx, &fixture.ToyDto{Name: "ball"}))
	require.NoError(t, v.Validate(ctx, fixture.Toy{}), "other types pass")
	require.NoError(t, v.Validate(ctx, (*fixture.ToyDto)(nil)))

	err := v.Validate(ctx, &fixture.ToyDto{Price: -2})

	var failed *mapper.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.ErrorIs(t, err, mapper.ErrValidationFailed)
	assert.True(t, failed.Target.IsZero())
	require.Len(t, failed.Violations, 2)
	assert.Equal(t, "Name", failed.Violations[0].Property)
	assert.Equal(t, "Price", failed.Violations[1].Property)

	err = skema.New[fixture.ToyDto](brokenSchema{}).Validate(ctx, fixture.ToyDto{})
	assert.Same(t, errBackend, err)
}

func TestValidator_GoskemaSchema(t *testing.T) {
	v := skema.New[string](dsl.String())

	require.NoError(t, v.Validate(context.Background(), "anything"))
	require.NoError(t, v.Validate(context.Background(), 42))
}

func TestWithMapper(t *testing.T) {
	ctx := context.Background()

	store := mapper.NewStore()
	require.NoError(t, store.CollectFromProfiles(ctx))

	m := mapper.New(store,
		mapper.WithAutoMapFallback(true),
		mapper.WithValidator(skema.New[fixture.ToyDto](toySchema{})),
	)

	dto, err := mapper.AutoMap[fixture.ToyDto](ctx, m, fixture.Toy{Name: "ball", Price: 2})
	require.NoError(t, err)
	assert.Equal(t, fixture.ToyDto{Name: "ball", Price: 2}, dto)

	_, err = mapper.AutoMap[fixture.ToyDto](ctx, m, fixture.Toy{Name: "squeaky mouse", Price: -1})

	var failed *mapper.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, typeid.Of[fixture.ToyDto](), failed.Target)
	require.Len(t, failed.Violations, 2)
	assert.Equal(t, map[string]string{goskema.CodeTooLong: "at most 8 characters"}, failed.Violations[0].Constraints)
	assert.Equal(t, -1.0, failed.Violations[1].Value)
}

func TestWithMapper_ValidatorError(t *testing.T) {
	ctx := context.Background()

	store := mapper.NewStore()
	require.NoError(t, store.CollectFromProfiles(ctx))

	m := mapper.New(store,
		mapper.WithAutoMapFallback(true),
		mapper.WithValidator(skema.New[fixture.ToyDto](brokenSchema{})),
	)

	_, err := mapper.AutoMap[fixture.ToyDto](ctx, m, fixture.Toy{Name: "ball"})
	require.ErrorIs(t, err, mapper.ErrValidationFailed)
	require.ErrorIs(t, err, errBackend)
}

func TestSet(t *testing.T) {
	ctx := context.Background()

	set := skema.NewSet()
	skema.Add[fixture.ToyDto](set, toySchema{})
	skema.Add[string](set, dsl.String())

	assert.Equal(t, 2, set.Len())

	require.NoError(t, set.Validate(ctx, nil))
	require.NoError(t, set.Validate(ctx, fixture.CatDto{}))
	require.NoError(t, set.Validate(ctx, "x"))
	require.Error(t, set.Validate(ctx, fixture.ToyDto{}))
	require.Error(t, set.Validate(ctx, &fixture.ToyDto{Price: -1, Name: "x"}))
}
