package primitive

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotConvertible   = errors.New("no conversion between kinds")
	ErrCategoryDisabled = errors.New("conversion category is not allowed")
	ErrInvalidEnum      = errors.New("value is not a valid enum member")
)

var (
	stringerType  = reflect.TypeFor[fmt.Stringer]()
	validatorType = reflect.TypeFor[interface{ IsValid() bool }]()
	textType      = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Parse converts a literal into a value of type rt using the string
// conversions in allowed.
func Parse(rt reflect.Type, literal string, allowed CategoryEnum) (reflect.Value, error) {
	return Convert(reflect.ValueOf(literal), rt, allowed&CategoryLiteral)
}

// Convert converts v into a value of type to. Assignable values pass
// through; pointers on either side are followed, a nil source pointer
// giving the zero value of to.
func Convert(v reflect.Value, to reflect.Type, allowed CategoryEnum) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(to), nil
	}

	if v.Type().AssignableTo(to) {
		return v, nil
	}

	if to.Kind() == reflect.Pointer {
		inner, err := Convert(v, to.Elem(), allowed)
		if err != nil {
			return reflect.Value{}, err
		}

		p := reflect.New(to.Elem())
		p.Elem().Set(inner)

		return p, nil
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}

		return Convert(v.Elem(), to, allowed)
	}

	from, dst := FromReflectType(v.Type()), FromReflectType(to)

	c := CategoryOf(from, dst)
	if c == CategoryNone {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotConvertible, v.Type(), to)
	}

	if allowed&c == 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s needs %s", ErrCategoryDisabled, v.Type(), to, c)
	}

	out, err := convert(c, v, to, dst)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("convert %s to %s: %w", v.Type(), to, err)
	}

	return out, nil
}

func convert(c CategoryEnum, v reflect.Value, to reflect.Type, dst KindEnum) (reflect.Value, error) {
	switch c {
	case CategorySafeNumber, CategoryUnsafeNumber:
		return v.Convert(to), nil
	case CategoryTextNumber:
		if dst == KindString {
			return reflect.ValueOf(formatNumber(v)), nil
		}

		return parseNumber(v.String(), to)
	case CategoryNumericBool:
		if dst == KindBool {
			return reflect.ValueOf(integerOf(v) != 0), nil
		}

		return setInteger(to, boolToInt(v.Bool())), nil
	case CategoryTextualBool:
		if dst == KindBool {
			b, err := ParseBool(v.String())

			return reflect.ValueOf(b), err
		}

		return reflect.ValueOf(strconv.FormatBool(v.Bool())), nil
	case CategoryDatetime:
		if dst == KindTime {
			t, err := time.Parse(time.RFC3339Nano, v.String())

			return reflect.ValueOf(t), err
		}

		return reflect.ValueOf(v.Interface().(time.Time).Format(time.RFC3339Nano)), nil //nolint:forcetypeassert // kind checked
	case CategoryTimestamp:
		if dst == KindTime {
			return reflect.ValueOf(time.Unix(integerOf(v), 0).UTC()), nil
		}

		return setInteger(to, v.Interface().(time.Time).Unix()), nil //nolint:forcetypeassert // kind checked
	case CategoryDuration:
		if dst == KindDuration {
			d, err := time.ParseDuration(v.String())

			return reflect.ValueOf(d), err
		}

		return reflect.ValueOf(time.Duration(v.Int()).String()), nil
	case CategoryNanoseconds:
		if dst == KindDuration {
			return reflect.ValueOf(time.Duration(integerOf(v))), nil
		}

		return setInteger(to, v.Int()), nil
	case CategorySeconds:
		if dst == KindDuration {
			return reflect.ValueOf(time.Duration(v.Float() * float64(time.Second))), nil
		}

		return reflect.ValueOf(time.Duration(v.Int()).Seconds()).Convert(to), nil
	case CategoryEnumString:
		return convertEnum(v, to, dst)
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotConvertible, c)
	}
}

// ParseBool accepts yes, no, on, off and every form strconv.ParseBool does.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	default:
		return strconv.ParseBool(s)
	}
}

func formatNumber(v reflect.Value) string {
	switch {
	case v.CanInt():
		return strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	}
}

func parseNumber(s string, to reflect.Type) (reflect.Value, error) {
	s = strings.TrimSpace(s)
	out := reflect.New(to).Elem()

	switch {
	case out.CanInt():
		n, err := strconv.ParseInt(s, 0, to.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetInt(n)
	case out.CanUint():
		n, err := strconv.ParseUint(s, 0, to.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetUint(n)
	default:
		f, err := strconv.ParseFloat(s, to.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetFloat(f)
	}

	return out, nil
}

// integerOf returns an integer value as int64, saturating large unsigned values.
func integerOf(v reflect.Value) int64 {
	if v.CanUint() {
		return int64(min(v.Uint(), math.MaxInt64))
	}

	return v.Int()
}

func setInteger(to reflect.Type, n int64) reflect.Value {
	out := reflect.New(to).Elem()
	if out.CanUint() {
		out.SetUint(uint64(max(n, 0)))
	} else {
		out.SetInt(n)
	}

	return out
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

// convertEnum converts between strings and enum types through their textual
// form. A target implementing IsValid() bool must accept the result.
func convertEnum(v reflect.Value, to reflect.Type, dst KindEnum) (reflect.Value, error) {
	text := enumText(v)

	if dst == KindString {
		return reflect.ValueOf(text).Convert(to), nil
	}

	out := reflect.New(to)

	switch {
	case out.Type().Implements(textType):
		if err := out.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil { //nolint:forcetypeassert // checked above
			return reflect.Value{}, err
		}
	case to.Kind() == reflect.String:
		out.Elem().SetString(text)
	case to.Kind() == reflect.Bool:
		b, err := ParseBool(text)
		if err != nil {
			return reflect.Value{}, err
		}

		out.Elem().SetBool(b)
	default:
		n, err := parseNumber(text, to)
		if err != nil {
			return reflect.Value{}, err
		}

		out.Elem().Set(n)
	}

	if out.Type().Implements(validatorType) {
		if valid := out.Interface().(interface{ IsValid() bool }); !valid.IsValid() { //nolint:forcetypeassert // checked above
			return reflect.Value{}, fmt.Errorf("%w: %q for %s", ErrInvalidEnum, text, to)
		}
	}

	return out.Elem(), nil
}

func enumText(v reflect.Value) string {
	if v.Type().Implements(stringerType) {
		return v.Interface().(fmt.Stringer).String() //nolint:forcetypeassert // checked above
	}

	switch {
	case v.Kind() == reflect.String:
		return v.String()
	case v.Kind() == reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return formatNumber(v)
	}
}
