package entry

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFieldsMarshalPreservesOrder(t *testing.T) {
	fields := Fields{
		String("zebra", "z"),
		Int("alpha", 1),
		String("middle", "m"),
	}
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	zebra := strings.Index(text, "zebra")
	alpha := strings.Index(text, "alpha")
	middle := strings.Index(text, "middle")
	if zebra < 0 || alpha < 0 || middle < 0 {
		t.Fatalf("missing keys in %s", text)
	}
	if !(zebra < alpha && alpha < middle) {
		t.Errorf("insertion order not preserved: %s", text)
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	fields := Fields{
		String("step", "verify"),
		Int("count", 42),
		Any("ratio", 0.5),
	}
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Fields
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != len(fields) {
		t.Fatalf("expected %d fields, got %d", len(fields), len(back))
	}
	for i, field := range fields {
		if back[i].Key != field.Key {
			t.Errorf("field %d: key %q, want %q", i, back[i].Key, field.Key)
		}
	}
	if v, _ := back.Get("count"); v != int64(42) {
		t.Errorf("count = %v (%T), want int64 42", v, v)
	}
}

func TestFieldsSanitize(t *testing.T) {
	fields := Fields{
		String("ok", "fine"),
		Any("bad", make(chan int)),
	}
	clean, rewritten := fields.Sanitize()
	if len(clean) != 2 {
		t.Fatalf("expected both fields kept, got %d", len(clean))
	}
	if len(rewritten) != 1 || rewritten[0] != "bad" {
		t.Errorf("expected [bad] rewritten, got %v", rewritten)
	}
	if _, err := json.Marshal(clean); err != nil {
		t.Errorf("sanitized fields must marshal: %v", err)
	}
}

func TestFieldsSanitizeEmpty(t *testing.T) {
	clean, rewritten := Fields(nil).Sanitize()
	if clean != nil || rewritten != nil {
		t.Errorf("empty fields should sanitize to nil, got %v %v", clean, rewritten)
	}
}
