package conf

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with JSON and YAML serialization that uses
// human-readable strings (e.g., "30s") instead of nanosecond integers.
// This prevents corruption when duration values round-trip through JSON
// (where time.Duration serializes as raw nanoseconds that frontends
// misinterpret as human-scale numbers).
type Duration time.Duration

// Std converts Duration to a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON outputs the duration as a JSON string like "30s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a JSON string ("30s"), a number (nanoseconds for
// backward compatibility), or null (resets to zero).
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration string %q: %w", value, err)
		}
		*d = Duration(parsed)
	case float64:
		// Backward compat: treat as nanoseconds (Go's native representation)
		*d = Duration(time.Duration(int64(value)))
	case nil:
		*d = Duration(0)
	default:
		return fmt.Errorf("invalid duration value of type %T", v)
	}
	return nil
}

// MarshalYAML outputs the duration as a YAML string like "30s".
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a YAML string ("30s") or an integer nanosecond count.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration string %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value %q", node.Value)
	}
	*d = Duration(time.Duration(n))
	return nil
}

// StringToDurationHookFunc returns a mapstructure decode hook that converts
// strings and integers into conf.Duration values when unmarshaling config.
func StringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Duration(0)) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			parsed, err := time.ParseDuration(data.(string))
			if err != nil {
				return nil, fmt.Errorf("invalid duration string %q: %w", data, err)
			}
			return Duration(parsed), nil
		case reflect.Int, reflect.Int64:
			return Duration(time.Duration(reflect.ValueOf(data).Int())), nil
		case reflect.Float64:
			return Duration(time.Duration(int64(data.(float64)))), nil
		default:
			return data, nil
		}
	}
}
