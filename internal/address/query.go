package address

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RawPrefix marks a q parameter whose remainder is a JSON-encoded
// structured constraint rather than free text.
const RawPrefix = "raw"

var ErrInvalidRawQuery = errors.New("invalid raw query")

// QueryValue is the parsed form of the q parameter: free text or a
// structured constraint. Two values are equal iff their canonical
// encodings are equal.
type QueryValue struct {
	text       string
	constraint any
	structured bool
}

// MatchAll is the query used when no q parameter is present.
var MatchAll = Text(" ")

func Text(s string) QueryValue { return QueryValue{text: s} }

// Structured wraps an already-decoded constraint value.
func Structured(v any) QueryValue { return QueryValue{constraint: v, structured: true} }

func (q QueryValue) IsStructured() bool { return q.structured }

// Text returns the free-text query; empty for structured values.
func (q QueryValue) Text() string { return q.text }

// Constraint returns the decoded constraint for structured values.
func (q QueryValue) Constraint() any { return q.constraint }

// Key is the canonical encoding: a JSON string for text, canonical JSON
// (sorted object keys, no insignificant whitespace) for constraints.
func (q QueryValue) Key() string {
	var v any = q.text
	if q.structured {
		v = q.constraint
	}
	b, err := json.Marshal(v)
	if err != nil {
		// Structured values only come from JSON decoding, which always
		// re-encodes; fall back to the Go representation.
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

func (q QueryValue) Equal(other QueryValue) bool {
	return q.Key() == other.Key()
}

func (q QueryValue) String() string {
	if q.structured {
		return RawPrefix + ":" + q.Key()
	}
	return q.text
}

// DeriveQuery computes the query value of a. A missing or empty q yields
// MatchAll. A q of the form "raw:<json>" is decoded into a structured
// value; if decoding fails the error wraps ErrInvalidRawQuery and the
// returned value is the raw string as text.
func DeriveQuery(a Address) (QueryValue, error) {
	raw := a.Query()
	if raw == "" {
		return MatchAll, nil
	}
	prefix := RawPrefix + ":"
	if !strings.HasPrefix(raw, prefix) {
		return Text(raw), nil
	}
	v, err := decodeConstraint(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return Text(raw), fmt.Errorf("%w: %v", ErrInvalidRawQuery, err)
	}
	return Structured(v), nil
}

// RawQuery renders v in the raw-prefixed form accepted by DeriveQuery.
func RawQuery(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode raw query: %w", err)
	}
	return RawPrefix + ":" + string(b), nil
}

func decodeConstraint(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after constraint")
	}
	return normalizeNumbers(v), nil
}

// normalizeNumbers re-encodes json.Number values so that 1, 1.0 and 1e0
// share one canonical form.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeNumbers(child)
		}
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
