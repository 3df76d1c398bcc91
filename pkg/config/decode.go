package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"15:04:05",
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	bytesType    = reflect.TypeOf([]byte(nil))
)

// decodeScalar coerces a raw value into dst, which must be addressable.
// Pointer targets are allocated. Strings are parsed according to the
// destination kind; numeric raw values convert directly.
func decodeScalar(dst reflect.Value, raw any) error {
	for dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}
	if dst.Type() == timeType {
		return decodeTime(dst, raw)
	}
	if dst.Type() == durationType {
		return decodeDuration(dst, raw)
	}
	if dst.Type() == bytesType {
		s, ok := scalarString(raw)
		if !ok {
			return fmt.Errorf("expected a value, got a section")
		}
		dst.SetBytes([]byte(s))
		return nil
	}
	switch dst.Kind() {
	case reflect.String:
		s, ok := scalarString(raw)
		if !ok {
			return fmt.Errorf("expected a value, got a section")
		}
		dst.SetString(s)
		return nil
	case reflect.Bool:
		return decodeBool(dst, raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(dst, raw)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decodeUint(dst, raw)
	case reflect.Float32, reflect.Float64:
		return decodeFloat(dst, raw)
	default:
		return fmt.Errorf("cannot decode into %s", dst.Type())
	}
}

func decodeBool(dst reflect.Value, raw any) error {
	switch v := raw.(type) {
	case bool:
		dst.SetBool(v)
		return nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "on", "1":
			dst.SetBool(true)
			return nil
		case "false", "f", "no", "n", "off", "0":
			dst.SetBool(false)
			return nil
		}
		return fmt.Errorf("invalid boolean %q", v)
	case int:
		dst.SetBool(v != 0)
		return nil
	case int64:
		dst.SetBool(v != 0)
		return nil
	default:
		return fmt.Errorf("invalid boolean %v", raw)
	}
}

func decodeInt(dst reflect.Value, raw any) error {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != float64(int64(v)) {
			return fmt.Errorf("%v is not an integer", v)
		}
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		n = parsed
	default:
		return fmt.Errorf("invalid integer %v", raw)
	}
	if dst.OverflowInt(n) {
		return fmt.Errorf("%d overflows %s", n, dst.Type())
	}
	dst.SetInt(n)
	return nil
}

func decodeUint(dst reflect.Value, raw any) error {
	var n uint64
	switch v := raw.(type) {
	case int:
		if v < 0 {
			return fmt.Errorf("%d is negative", v)
		}
		n = uint64(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("%d is negative", v)
		}
		n = uint64(v)
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return fmt.Errorf("%v is not an unsigned integer", v)
		}
		n = uint64(v)
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", v)
		}
		n = parsed
	default:
		return fmt.Errorf("invalid unsigned integer %v", raw)
	}
	if dst.OverflowUint(n) {
		return fmt.Errorf("%d overflows %s", n, dst.Type())
	}
	dst.SetUint(n)
	return nil
}

func decodeFloat(dst reflect.Value, raw any) error {
	switch v := raw.(type) {
	case float64:
		dst.SetFloat(v)
	case int:
		dst.SetFloat(float64(v))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", v)
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("invalid number %v", raw)
	}
	return nil
}

// decodeDuration accepts Go duration strings and bare numbers, which
// are taken as seconds.
func decodeDuration(dst reflect.Value, raw any) error {
	switch v := raw.(type) {
	case int:
		dst.SetInt(int64(time.Duration(v) * time.Second))
		return nil
	case float64:
		dst.SetInt(int64(time.Duration(v * float64(time.Second))))
		return nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			dst.SetInt(int64(time.Duration(n * float64(time.Second))))
			return nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", v)
		}
		dst.SetInt(int64(d))
		return nil
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
}

func decodeTime(dst reflect.Value, raw any) error {
	switch v := raw.(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(v))
		return nil
	case string:
		s := strings.TrimSpace(v)
		for _, format := range timeFormats {
			if t, err := time.Parse(format, s); err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return fmt.Errorf("invalid timestamp %q", v)
	default:
		return fmt.Errorf("invalid timestamp %v", raw)
	}
}
