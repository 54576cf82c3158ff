package primitive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster-mapper/internal/fixture"
	"caster-mapper/primitive"
)

type level int

func (l *level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*l = 1
	case "high":
		*l = 2
	default:
		return assert.AnError
	}

	return nil
}

func TestParse(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		typ     reflect.Type
		literal string
		want    any
	}{
		{"string", reflect.TypeFor[string](), "Barsik", "Barsik"},
		{"int", reflect.TypeFor[int](), "12", 12},
		{"hex int8", reflect.TypeFor[int8](), "0x7f", int8(127)},
		{"uint", reflect.TypeFor[uint16](), " 42 ", uint16(42)},
		{"float", reflect.TypeFor[float64](), "2.5", 2.5},
		{"bool word", reflect.TypeFor[bool](), "yes", true},
		{"bool off", reflect.TypeFor[bool](), "OFF", false},
		{"bool strconv", reflect.TypeFor[bool](), "true", true},
		{"duration", reflect.TypeFor[time.Duration](), "2h45m", 2*time.Hour + 45*time.Minute},
		{"time", reflect.TypeFor[time.Time](), "2024-05-01T12:30:00Z", ts},
		{"string enum", reflect.TypeFor[fixture.CatType](), "bad", fixture.CatTypeBad},
		{"text unmarshaler", reflect.TypeFor[level](), "high", level(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := primitive.Parse(tt.typ, tt.literal, primitive.CategoryAll)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestParse_Pointer(t *testing.T) {
	got, err := primitive.Parse(reflect.TypeFor[*int](), "5", primitive.CategoryAll)
	require.NoError(t, err)

	p, ok := got.Interface().(*int)
	require.True(t, ok)
	assert.Equal(t, 5, *p)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		typ     reflect.Type
		literal string
		allowed primitive.CategoryEnum
		wantErr error
	}{
		{"overflow", reflect.TypeFor[int8](), "300", primitive.CategoryAll, nil},
		{"not a number", reflect.TypeFor[int](), "ten", primitive.CategoryAll, nil},
		{"invalid enum", reflect.TypeFor[fixture.CatType](), "ugly", primitive.CategoryAll, primitive.ErrInvalidEnum},
		{"struct", reflect.TypeFor[fixture.Toy](), "x", primitive.CategoryAll, primitive.ErrNotConvertible},
		{"disabled", reflect.TypeFor[int](), "1", primitive.CategoryTextualBool, primitive.ErrCategoryDisabled},
		{"numbers only via text", reflect.TypeFor[time.Time](), "1", primitive.CategoryTimestamp, primitive.ErrCategoryDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := primitive.Parse(tt.typ, tt.literal, tt.allowed)
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	n := int32(9)

	tests := []struct {
		name string
		in   any
		to   reflect.Type
		want any
	}{
		{"assignable", 5, reflect.TypeFor[int](), 5},
		{"widen", int32(5), reflect.TypeFor[int64](), int64(5)},
		{"narrow", int64(300), reflect.TypeFor[uint8](), uint8(44)},
		{"number to text", 3.25, reflect.TypeFor[string](), "3.25"},
		{"uint to text", uint(7), reflect.TypeFor[string](), "7"},
		{"int to bool", 2, reflect.TypeFor[bool](), true},
		{"bool to int", true, reflect.TypeFor[int](), 1},
		{"bool to text", false, reflect.TypeFor[string](), "false"},
		{"time to text", ts, reflect.TypeFor[string](), "2023-11-14T22:13:20Z"},
		{"timestamp", int64(1700000000), reflect.TypeFor[time.Time](), ts},
		{"time to unix", ts, reflect.TypeFor[int64](), int64(1700000000)},
		{"duration to text", 90 * time.Second, reflect.TypeFor[string](), "1m30s"},
		{"nanoseconds", 1500, reflect.TypeFor[time.Duration](), 1500 * time.Nanosecond},
		{"seconds", 1.5, reflect.TypeFor[time.Duration](), 1500 * time.Millisecond},
		{"duration to seconds", 2 * time.Second, reflect.TypeFor[float64](), 2.0},
		{"enum to text", fixture.CatTypeGood, reflect.TypeFor[string](), "good"},
		{"pointer source", &n, reflect.TypeFor[int64](), int64(9)},
		{"nil pointer source", (*int32)(nil), reflect.TypeFor[int64](), int64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := primitive.Convert(reflect.ValueOf(tt.in), tt.to, primitive.CategoryAll)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestConvert_LiteralCategoriesOnly(t *testing.T) {
	_, err := primitive.Parse(reflect.TypeFor[time.Time](), "1700000000", primitive.CategoryAll)
	require.Error(t, err, "a literal time must be RFC 3339")
}
