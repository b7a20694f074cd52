package alerting

import (
	"context"
	"fmt"
	"strconv"
)

// Snapshot is a flat point-in-time view of system state supplied by an
// external collaborator. Keys absent from the map make conditions
// referencing them evaluate false.
type Snapshot map[string]any

// SnapshotProvider supplies the state snapshot each monitoring tick
// evaluates against.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context) (Snapshot, error)
}

// clone returns a shallow copy; values are treated as immutable scalars.
func (s Snapshot) clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Float looks up a numeric value, coercing the usual scalar types.
func (s Snapshot) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String looks up a string value.
func (s Snapshot) String(key string) (string, bool) {
	v, ok := s[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Bool looks up a boolean value.
func (s Snapshot) Bool(key string) (bool, bool) {
	v, ok := s[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func toFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", val)
	}
}
