package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// object is a decoded JSON object as produced by a json.Decoder with UseNumber.
type object = map[string]any

// lookup returns the first non-null value found under keys.
func lookup(obj object, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// scalarText reads a string field. Null and blank values count as absent.
// Numbers and booleans are rendered as text, objects and arrays are an error.
func scalarText(obj object, keys ...string) (string, bool, error) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return "", false, nil
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case json.Number:
		s = val.String()
	case bool:
		s = strconv.FormatBool(val)
	default:
		return "", false, fmt.Errorf("field %q must be a string, got %s", keys[0], typeName(v))
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", false, nil
	}
	return s, true, nil
}

// stringList reads a sequence of strings. Absent and null give an empty
// slice; anything else that is not a sequence of strings is an error.
// Blank elements are dropped.
func stringList(obj object, keys ...string) ([]string, error) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return []string{}, nil
	}

	items, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("field %q must be a list of strings, got %s", keys[0], typeName(v))
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("field %q element %d must be a string, got %s", keys[0], i, typeName(item))
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// lenientStringList is stringList for entry-level data: wrong shapes are
// ignored instead of rejected.
func lenientStringList(obj object, keys ...string) []string {
	v, _ := lookup(obj, keys...)
	items, _ := v.([]any)

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var numberCleaner = strings.NewReplacer(",", "", "٬", "", "،", "", " ", "", "+", "", "~", "")

// integer reads a whole number from a JSON number or a numeric string.
// Persian and Arabic-Indic digits and thousands separators are accepted.
func integer(v any) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return clampInt(n)
		}
		f, err := val.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return clampInt(int64(f))

	case string:
		s := numberCleaner.Replace(strings.TrimSpace(toASCIIDigits(val)))
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return clampInt(n)
	}
	return 0, false
}

func clampInt(n int64) (int, bool) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}

func toASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
