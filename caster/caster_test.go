package caster_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster-mapper/caster"
)

type moreThanError interface {
	error
	More()
}

func empty()                          { panic("not implemented") }
func wrong(int) (string, error, bool) { panic("not implemented") }

func full(int) (string, bool, error)          { panic("not implemented") }
func customError(int) (string, moreThanError) { panic("not implemented") }
func blocking(context.Context, int) string    { panic("not implemented") }
func twice(**int) string                      { panic("not implemented") }

func ExampleCaster() {
	desc, err := caster.Parse(full)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = caster.Parse(strconv.Itoa)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = caster.Parse(strconv.Atoi)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = caster.Parse(customError)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.Src.Kind(), desc.Dst.Kind(), desc.HasBool, desc.HasErr)

	desc, err = caster.Parse(blocking)
	fmt.Println(err, desc.PackageAlias, desc.Name, desc.HasCtx)

	_, err = caster.Parse(empty)
	fmt.Println(err)

	_, err = caster.Parse(wrong)
	fmt.Println(err)

	_, err = caster.Parse(twice)
	fmt.Println(err)

	_, err = caster.Parse(42)
	fmt.Println(err)

	// Output:
	// <nil> caster_test full int string true true
	// <nil> strconv Itoa int string false false
	// <nil> strconv Atoi string int false true
	// <nil> caster_test customError int string false true
	// <nil> caster_test blocking true
	// provided function is not a recognizable caster
	// provided function is not a recognizable caster
	// caster function does not support double pointers
	// provided caster is not a function
}

func TestParse_Nil(t *testing.T) {
	_, err := caster.Parse(nil)
	require.ErrorIs(t, err, caster.ErrCasterIsNotAFunction)

	var fn func(int) string

	_, err = caster.Parse(fn)
	require.ErrorIs(t, err, caster.ErrCasterIsNotAFunction)
}

func TestCaster_Call(t *testing.T) {
	errOdd := errors.New("odd")
	seven := 7

	tests := []struct {
		name    string
		fn      any
		in      any
		want    any
		wantOK  bool
		wantErr error
	}{
		{
			name:   "plain",
			fn:     strconv.Itoa,
			in:     5,
			want:   "5",
			wantOK: true,
		},
		{
			name:    "error result",
			fn:      strconv.Atoi,
			in:      "five",
			wantErr: strconv.ErrSyntax,
		},
		{
			name: "declined",
			fn: func(v int) (string, bool) {
				return "", v > 0
			},
			in: 0,
		},
		{
			name: "bool and error",
			fn: func(v int) (int, bool, error) {
				if v%2 == 1 {
					return 0, false, errOdd
				}

				return v / 2, true, nil
			},
			in:     8,
			want:   4,
			wantOK: true,
		},
		{
			name: "bool and error failing",
			fn: func(v int) (int, bool, error) {
				return 0, true, errOdd
			},
			in:      3,
			wantErr: errOdd,
		},
		{
			name:   "pointer dereferenced",
			fn:     strconv.Itoa,
			in:     &seven,
			want:   "7",
			wantOK: true,
		},
		{
			name:   "nil pointer gives zero",
			fn:     strconv.Itoa,
			in:     (*int)(nil),
			want:   "0",
			wantOK: true,
		},
		{
			name:    "mismatch",
			fn:      strconv.Itoa,
			in:      "x",
			wantErr: caster.ErrInputMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := caster.Parse(tt.fn)
			require.NoError(t, err)

			out, ok, err := c.Call(t.Context(), reflect.ValueOf(tt.in))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.want, out.Interface())
			} else {
				assert.False(t, out.IsValid())
			}
		})
	}
}

func TestCaster_CallWithContext(t *testing.T) {
	type key struct{}

	c := caster.MustParse(func(ctx context.Context, v int) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		return fmt.Sprint(ctx.Value(key{}), v), nil
	})

	ctx := context.WithValue(t.Context(), key{}, "n=")
	out, ok, err := c.Call(ctx, reflect.ValueOf(3))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "n=3", out.Interface())

	canceled, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err = c.Call(canceled, reflect.ValueOf(3))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCaster_Accepts(t *testing.T) {
	c := caster.MustParse(strconv.Itoa)

	assert.True(t, c.Accepts(reflect.TypeFor[int]()))
	assert.True(t, c.Accepts(reflect.TypeFor[*int]()))
	assert.False(t, c.Accepts(reflect.TypeFor[string]()))
	assert.False(t, c.Accepts(nil))
	assert.Equal(t, "strconv.Itoa(int) string", c.String())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { caster.MustParse(empty) })
}
