package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value pair of caller-supplied additional data.
type Field struct {
	Key   string
	Value any
}

// Fields is an insertion-ordered list of additional-data pairs. Go maps do
// not preserve order, so the file record and the SIEM envelopes carry data
// as a Fields slice and encode it as a JSON object in insertion order.
type Fields []Field

// String builds a Field holding a string value.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds a Field holding an int value.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Any builds a Field holding an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Get returns the first value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Sanitize returns a copy of f in which every value that cannot be JSON
// encoded is replaced by its fmt.Sprint rendering. The returned names list
// holds the keys that were rewritten so the caller can surface a warning.
func (f Fields) Sanitize() (Fields, []string) {
	if len(f) == 0 {
		return nil, nil
	}
	out := make(Fields, 0, len(f))
	var rewritten []string
	for _, field := range f {
		if _, err := json.Marshal(field.Value); err != nil {
			out = append(out, Field{Key: field.Key, Value: fmt.Sprint(field.Value)})
			rewritten = append(rewritten, field.Key)
			continue
		}
		out = append(out, field)
	}
	return out, rewritten
}

// MarshalJSON encodes the fields as a JSON object preserving insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, fmt.Errorf("encode field key %q: %w", field.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", field.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into fields, preserving the key order
// found in the document.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode fields: expected object, got %v", tok)
	}

	out := Fields{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode field key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode field key: unexpected token %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		out = append(out, Field{Key: key, Value: normalizeDecoded(value)})
	}
	*f = out
	return nil
}

// normalizeDecoded converts json.Number values into int64 where possible so
// round-tripped fields compare naturally in callers and tests.
func normalizeDecoded(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return value
	}
}
