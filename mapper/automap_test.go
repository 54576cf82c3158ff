package mapper_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster-mapper/internal/fixture"
	"caster-mapper/mapper"
	"caster-mapper/primitive"
	"caster-mapper/typeid"
)

func newUserDTO() fixture.UserDTO {
	return fixture.UserDTO{
		ID:        42,
		Email:     "barsik@example.com",
		Full_Name: "Barsik Cat",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
}

func TestAutoMapDisabled(t *testing.T) {
	m := newMapper(t, nil)

	_, err := mapper.AutoMap[fixture.User](context.Background(), m, newUserDTO())
	require.ErrorIs(t, err, mapper.ErrRuleNotFound)
}

func TestAutoMapSameNamesOnly(t *testing.T) {
	m := newMapper(t, nil, mapper.WithAutoMapFallback(true))
	src := newUserDTO()

	user, err := mapper.AutoMap[fixture.User](context.Background(), m, src)
	require.NoError(t, err)

	assert.Equal(t, fixture.User{
		ID:        src.ID,
		Email:     src.Email,
		CreatedAt: src.CreatedAt,
	}, user)
}

func TestAutoMapFuzzyNames(t *testing.T) {
	m := newMapper(t, nil, mapper.WithFuzzyNames(0))
	ctx := context.Background()

	user, err := mapper.AutoMap[fixture.User](ctx, m, newUserDTO())
	require.NoError(t, err)
	assert.Equal(t, "Barsik Cat", user.FullName)
	assert.False(t, user.Active)
	assert.Empty(t, user.Password)

	order, err := mapper.MapTo[fixture.OrderDTO, fixture.Order](ctx, m, fixture.OrderDTO{
		Order_ID:   "o-1",
		CustomerID: 7,
		Amount:     12.5,
		Status:     "paid",
		Lines:      []fixture.LineDTO{{SKU: "a", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, fixture.Order{OrderID: "o-1", CustomerID: 7, Status: "paid"}, order)
}

type twoNames struct {
	UserName  string
	User_Name string //nolint:revive
}

type oneName struct {
	Username string
}

func TestAutoMapFuzzyAmbiguous(t *testing.T) {
	m := newMapper(t, nil, mapper.WithFuzzyNames(0.9))

	out, err := mapper.MapTo[twoNames, oneName](context.Background(), m, twoNames{UserName: "a", User_Name: "b"})
	require.NoError(t, err)
	assert.Empty(t, out.Username)
}

func TestAutoMapRegisteredRuleWins(t *testing.T) {
	m := catMapper(t, mapper.WithAutoMapFallback(true))

	dto, err := mapper.AutoMap[fixture.CatDto](context.Background(), m, fixture.NewCat())
	require.NoError(t, err)
	assert.Equal(t, fixture.CatTypeBad, dto.Type)
	assert.True(t, dto.NewValue)
}

func TestAutoMapDoesNotTouchStore(t *testing.T) {
	m := newMapper(t, nil, mapper.WithAutoMapFallback(true))
	ctx := context.Background()

	first, err := mapper.AutoMap[fixture.ToyDto](ctx, m, fixture.Toy{Name: "ball"})
	require.NoError(t, err)

	second, err := mapper.AutoMap[fixture.ToyDto](ctx, m, fixture.Toy{Name: "ball"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, m.Store().Len())

	_, ok := m.Store().Resolve(typeid.Of[fixture.Toy](), typeid.Of[fixture.ToyDto]())
	assert.False(t, ok)
}

func TestAutoMapNonStructPair(t *testing.T) {
	m := newMapper(t, nil, mapper.WithAutoMapFallback(true))

	_, err := m.Map(context.Background(), fixture.CatTypeGood, typeid.Of[fixture.CatType](), typeid.Of[fixture.CatDto]())
	require.ErrorIs(t, err, mapper.ErrRuleNotFound)
}

type reading struct {
	Count   int32
	Ratio   string
	Seen    string
	Timeout float64
	Flag    int
}

type metric struct {
	Count   int64
	Ratio   float64
	Seen    time.Time
	Timeout time.Duration
	Flag    bool
}

func TestAutoMapConversions(t *testing.T) {
	m := newMapper(t, nil, mapper.WithConversions(
		primitive.CategorySafeNumber|primitive.CategoryTextNumber|primitive.CategoryDatetime|primitive.CategorySeconds))

	out, err := mapper.MapTo[reading, metric](context.Background(), m, reading{
		Count:   7,
		Ratio:   "0.5",
		Seen:    "2024-05-01T12:00:00Z",
		Timeout: 1.5,
		Flag:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, metric{
		Count:   7,
		Ratio:   0.5,
		Seen:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Timeout: 1500 * time.Millisecond,
	}, out, "int to bool is not enabled")
}

func TestAutoMapConversionFailure(t *testing.T) {
	m := newMapper(t, nil, mapper.WithConversions(primitive.CategoryTextNumber))

	_, err := mapper.MapTo[reading, metric](context.Background(), m, reading{Ratio: "half"})
	require.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestRuleConvert(t *testing.T) {
	m := newMapper(t, []mapper.Profile{profile(func(pm *mapper.ProfileMapper) {
		mapper.AddRule[fixture.OrderDTO, fixture.Order](pm).
			Property("Order_ID", "OrderID").
			Convert("Amount", "TotalCents", primitive.CategoryUnsafeNumber).
			Convert("CustomerID", "CustomerID", primitive.CategoryNone)
	})})

	order, err := mapper.MapTo[fixture.OrderDTO, fixture.Order](context.Background(), m, fixture.OrderDTO{
		Order_ID:   "o-2",
		CustomerID: 3,
		Amount:     12.9,
	})
	require.NoError(t, err)
	assert.Equal(t, fixture.Order{OrderID: "o-2", CustomerID: 3, TotalCents: 12}, order)
}

func TestRuleConvertRejected(t *testing.T) {
	store := mapper.NewStore()
	err := store.CollectFromProfiles(context.Background(), profile(func(pm *mapper.ProfileMapper) {
		mapper.AddRule[fixture.OrderDTO, fixture.Order](pm).
			Convert("Amount", "TotalCents", primitive.CategorySafeNumber)
	}))

	require.ErrorIs(t, err, mapper.ErrInvalidDirective)
	assert.Contains(t, err.Error(), "cannot convert Amount (float64) to TotalCents (int64)")
}
