package models

import (
	"errors"
	"fmt"
	"math"
)

// Document is the flat, schemaless form a record takes on the wire.
type Document = map[string]any

// ErrDecode is returned for documents that cannot be turned into a record.
var ErrDecode = errors.New("malformed document")

func decodeErr(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrDecode, field, fmt.Sprintf(format, args...))
}

func requiredString(doc Document, field string) (string, error) {
	s, err := optionalString(doc, field)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", decodeErr(field, "missing")
	}
	return s, nil
}

func optionalString(doc Document, field string) (string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", decodeErr(field, "want string, got %T", v)
	}
	return s, nil
}

func optionalBool(doc Document, field string) (bool, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, decodeErr(field, "want bool, got %T", v)
	}
	return b, nil
}

// number accepts the numeric types produced by JSON, structpb and Go callers.
func number(doc Document, field string) (int64, bool, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, true, decodeErr(field, "not a finite number")
		}
		return int64(n), true, nil
	case float32:
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	case int32:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	default:
		return 0, true, decodeErr(field, "want number, got %T", v)
	}
}

func stringList(doc Document, field string) ([]string, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return []string{}, nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, decodeErr(field, "element %d: want string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, decodeErr(field, "want list, got %T", v)
	}
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
