package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// firstPresent returns the first key present in m with a non-nil value.
func firstPresent(m map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return k, true
		}
	}
	return "", false
}

func getStringField(m map[string]interface{}, required bool, keys ...string) (string, error) {
	key, ok := firstPresent(m, keys...)
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", keys[0])
		}
		return "", nil
	}
	switch val := m[key].(type) {
	case string:
		s := strings.TrimSpace(val)
		if required && s == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return s, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, m[key])
	}
}

func getFloat64Field(m map[string]interface{}, required bool, keys ...string) (float64, error) {
	key, ok := firstPresent(m, keys...)
	if !ok {
		if required {
			return 0, fmt.Errorf("missing required field %q", keys[0])
		}
		return 0, nil
	}
	switch val := m[key].(type) {
	case float64:
		return val, nil
	case string: // some exports quote amounts
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q: %q is not a number", key, val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, m[key])
	}
}

func getOptionalFloat64Field(m map[string]interface{}, keys ...string) (*float64, error) {
	if _, ok := firstPresent(m, keys...); !ok {
		return nil, nil
	}
	f, err := getFloat64Field(m, true, keys...)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func getIntField(m map[string]interface{}, keys ...string) (int, error) {
	f, err := getFloat64Field(m, false, keys...)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func getObjectField(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	obj, ok := m[key].(map[string]interface{})
	return obj, ok
}

func getArrayField(m map[string]interface{}, key string) ([]interface{}, bool) {
	arr, ok := m[key].([]interface{})
	return arr, ok
}
