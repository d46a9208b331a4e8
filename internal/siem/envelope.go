package siem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chronicle/internal/entry"
)

// EnvelopeType selects the document shape posted to the collector.
type EnvelopeType string

const (
	// EnvelopeGeneric posts the entry as a single JSON object.
	EnvelopeGeneric EnvelopeType = "generic"
	// EnvelopeHEC wraps the entry in a token-authenticated collector
	// envelope with an epoch-seconds time field and fixed source metadata.
	EnvelopeHEC EnvelopeType = "hec"
	// EnvelopeCompact posts the entry as one compact line-delimited JSON
	// document.
	EnvelopeCompact EnvelopeType = "compact"
	// EnvelopeBatch posts the entry as a single-element JSON array.
	EnvelopeBatch EnvelopeType = "batch"
)

// ParseEnvelopeType validates a configured envelope name.
func ParseEnvelopeType(value string) (EnvelopeType, error) {
	switch EnvelopeType(strings.ToLower(strings.TrimSpace(value))) {
	case EnvelopeGeneric:
		return EnvelopeGeneric, nil
	case EnvelopeHEC:
		return EnvelopeHEC, nil
	case EnvelopeCompact:
		return EnvelopeCompact, nil
	case EnvelopeBatch:
		return EnvelopeBatch, nil
	default:
		return "", fmt.Errorf("unknown siem envelope type %q", value)
	}
}

const (
	hecSource     = "chronicle"
	hecSourcetype = "_json"
)

type hecEnvelope struct {
	Time       int64        `json:"time"`
	Host       string       `json:"host"`
	Source     string       `json:"source"`
	Sourcetype string       `json:"sourcetype"`
	Event      *entry.Entry `json:"event"`
}

// EncodeEnvelope renders e in the requested shape and returns the body along
// with its content type.
func EncodeEnvelope(e *entry.Entry, typ EnvelopeType) ([]byte, string, error) {
	switch typ {
	case EnvelopeGeneric:
		body, err := json.Marshal(e)
		if err != nil {
			return nil, "", fmt.Errorf("encode generic envelope: %w", err)
		}
		return body, "application/json", nil
	case EnvelopeHEC:
		env := hecEnvelope{
			Time:       e.Timestamp.Unix(),
			Host:       e.Machine,
			Source:     hecSource,
			Sourcetype: hecSourcetype,
			Event:      e,
		}
		body, err := json.Marshal(env)
		if err != nil {
			return nil, "", fmt.Errorf("encode hec envelope: %w", err)
		}
		return body, "application/json", nil
	case EnvelopeCompact:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		if err := enc.Encode(e); err != nil {
			return nil, "", fmt.Errorf("encode compact envelope: %w", err)
		}
		return buf.Bytes(), "application/x-ndjson", nil
	case EnvelopeBatch:
		body, err := json.Marshal([]*entry.Entry{e})
		if err != nil {
			return nil, "", fmt.Errorf("encode batch envelope: %w", err)
		}
		return body, "application/json", nil
	default:
		return nil, "", fmt.Errorf("unknown siem envelope type %q", typ)
	}
}
