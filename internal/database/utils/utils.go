package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DataToType decodes raw document fields into v. Fields absent from data
// leave the corresponding fields of v untouched, so v can be pre-filled with
// defaults.
func DataToType(data map[string]interface{}, v interface{}) error {
	if data == nil {
		return fmt.Errorf("data is nil")
	}

	jsonStr, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonStr, v); err != nil {
		return err
	}

	return nil
}

// TypeToData encodes v into raw document fields.
func TypeToData(v interface{}) (map[string]interface{}, error) {
	jsonStr, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{}
	if err := json.Unmarshal(jsonStr, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ToValue converts v into the generic shape stored inside documents
// (maps, []interface{}, strings, float64, bool).
func ToValue(v interface{}) (interface{}, error) {
	jsonStr, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out interface{}
	if err := json.Unmarshal(jsonStr, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValueToType decodes a generic document value, as returned by ToValue or
// GetPath, into v.
func ValueToType(value interface{}, v interface{}) error {
	jsonStr, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonStr, v)
}

// GetPath reads a dotted field path from data.
func GetPath(data map[string]interface{}, path string) (interface{}, bool) {
	keys := strings.Split(path, ".")
	var cur interface{} = data
	for _, key := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath returns a copy of data with the dotted path set to value. Only the
// maps along the path are copied; data itself is never modified.
func SetPath(data map[string]interface{}, path string, value interface{}) map[string]interface{} {
	keys := strings.SplitN(path, ".", 2)

	out := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		out[k] = v
	}

	if len(keys) == 1 {
		out[keys[0]] = value
		return out
	}

	child, _ := out[keys[0]].(map[string]interface{})
	out[keys[0]] = SetPath(child, keys[1], value)
	return out
}

// Clone deep copies maps and slices of a document value.
func Clone(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// CloneData deep copies a whole document.
func CloneData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	return Clone(data).(map[string]interface{})
}
