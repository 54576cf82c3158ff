package mapper_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"caster-mapper/internal/fixture"
	"caster-mapper/mapper"
)

// payloadProfile renders a payload value with a trailing bar.
func payloadProfile(pm *mapper.ProfileMapper) error {
	mapper.AddRule[fixture.Payload, fixture.PayloadDto](pm).
		Property("Value", "Value", mapper.Transform(
			func(_ context.Context, v int, _ *fixture.Payload, _ *fixture.PayloadDto) (string, error) {
				return strconv.Itoa(v) + "|", nil
			}))

	return nil
}

// catProfile maps a cat, forcing its type to bad and marking it new.
func catProfile(pm *mapper.ProfileMapper) error {
	mapper.AddRule[fixture.Cat, fixture.CatDto](pm).
		Properties("Name", "ID").
		Property("Type", "Type", mapper.Const[fixture.Cat, fixture.CatDto](fixture.CatTypeBad)).
		ByRule("Payload", "Payload", mapper.WithRule[fixture.Payload, fixture.PayloadDto]()).
		ByRule("Kittens", "Kittens", mapper.WithRule[fixture.Cat, fixture.CatDto]()).
		ByRule("Toys", "Toys", mapper.WithRule[fixture.Toy, fixture.ToyDto]()).
		Fill("NewValue", mapper.Value[fixture.Cat](true))

	mapper.AddRule[fixture.Toy, fixture.ToyDto](pm).AllProperties()

	return nil
}

func newMapper(t *testing.T, profiles []mapper.Profile, opts ...mapper.Option) *mapper.Mapper {
	t.Helper()

	store := mapper.NewStore()
	require.NoError(t, store.CollectFromProfiles(context.Background(), profiles...))

	return mapper.New(store, opts...)
}

func catMapper(t *testing.T, opts ...mapper.Option) *mapper.Mapper {
	t.Helper()

	return newMapper(t, []mapper.Profile{
		mapper.ProfileFunc(catProfile),
		mapper.ProfileFunc(payloadProfile),
	}, opts...)
}

func profile(define func(pm *mapper.ProfileMapper)) mapper.Profile {
	return mapper.NewProfile("test", func(pm *mapper.ProfileMapper) error {
		define(pm)

		return nil
	})
}
