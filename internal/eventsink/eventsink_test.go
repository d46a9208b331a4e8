package eventsink

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"

	"chronicle/internal/entry"
)

type sentEvent struct {
	message  string
	priority journal.Priority
	vars     map[string]string
}

func newCapturingSink(available bool) (*Sink, *[]sentEvent) {
	var sent []sentEvent
	sink := newWithTransport(
		func() bool { return available },
		func(msg string, pri journal.Priority, vars map[string]string) error {
			sent = append(sent, sentEvent{message: msg, priority: pri, vars: vars})
			return nil
		},
	)
	return sink, &sent
}

func sampleEntry() *entry.Entry {
	return &entry.Entry{
		Timestamp:      time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Level:          entry.LevelWarning,
		Message:        "disk almost full",
		Machine:        "host-1",
		ProcessID:      42,
		ProcessName:    "chronicle",
		User:           "svc",
		CorrelationID:  "corr-1",
		CallerFunction: "CheckDisk",
		CallerScript:   "monitor.go",
		CallerLine:     17,
	}
}

func TestWriteUnavailable(t *testing.T) {
	sink, sent := newCapturingSink(false)
	if err := sink.Write(sampleEntry(), Options{Source: "chronicle"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(*sent) != 0 {
		t.Errorf("nothing should be sent when the journal is unavailable")
	}
}

func TestWriteStructuredFields(t *testing.T) {
	sink, sent := newCapturingSink(true)
	if err := sink.Write(sampleEntry(), Options{Source: "chronicle"}); err != nil {
		t.Fatal(err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected one event, got %d", len(*sent))
	}
	evt := (*sent)[0]
	if evt.priority != journal.PriWarning {
		t.Errorf("priority = %v", evt.priority)
	}
	for key, want := range map[string]string{
		"SYSLOG_IDENTIFIER": "chronicle",
		"CHRONICLE_LEVEL":   "Warning",
		"CORRELATION_ID":    "corr-1",
		"CALLER_FUNCTION":   "CheckDisk",
		"CALLER_SCRIPT":     "monitor.go",
		"CALLER_LINE":       "17",
	} {
		if got := evt.vars[key]; got != want {
			t.Errorf("vars[%s] = %q, want %q", key, got, want)
		}
	}
}

func TestWriteDirect(t *testing.T) {
	sink, sent := newCapturingSink(true)
	evt := DirectEvent{
		Message:  "service installed",
		EventID:  1000,
		Severity: entry.LevelInformation,
		Source:   "installer",
		LogName:  "Application",
	}
	if err := sink.WriteDirect(evt, Options{Source: "chronicle"}); err != nil {
		t.Fatal(err)
	}
	got := (*sent)[0]
	if got.message != "service installed" {
		t.Errorf("message = %q", got.message)
	}
	if got.vars["SYSLOG_IDENTIFIER"] != "installer" {
		t.Errorf("explicit source should win, got %q", got.vars["SYSLOG_IDENTIFIER"])
	}
	if got.vars["EVENT_ID"] != "1000" {
		t.Errorf("EVENT_ID = %q", got.vars["EVENT_ID"])
	}
	if got.vars["LOG_NAME"] != "Application" {
		t.Errorf("LOG_NAME = %q", got.vars["LOG_NAME"])
	}
}

func TestWriteDirectDefaultsSource(t *testing.T) {
	sink, sent := newCapturingSink(true)
	if err := sink.WriteDirect(DirectEvent{Message: "m"}, Options{Source: "chronicle"}); err != nil {
		t.Fatal(err)
	}
	got := (*sent)[0]
	if got.vars["SYSLOG_IDENTIFIER"] != "chronicle" {
		t.Errorf("source should fall back to options, got %q", got.vars["SYSLOG_IDENTIFIER"])
	}
	if got.vars["CHRONICLE_LEVEL"] != "Information" {
		t.Errorf("zero severity should normalize, got %q", got.vars["CHRONICLE_LEVEL"])
	}
}

func TestSeverityPriority(t *testing.T) {
	cases := []struct {
		level entry.Level
		want  journal.Priority
	}{
		{entry.LevelDebug, journal.PriInfo},
		{entry.LevelInformation, journal.PriInfo},
		{entry.LevelWarning, journal.PriWarning},
		{entry.LevelError, journal.PriErr},
		{entry.LevelCritical, journal.PriErr},
	}
	for _, tc := range cases {
		if got := severityPriority(tc.level); got != tc.want {
			t.Errorf("severityPriority(%s) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestRenderBlock(t *testing.T) {
	e := sampleEntry()
	e.Exception = &entry.Exception{
		Type:    "*os.PathError",
		Message: "permission denied",
		Code:    13,
		Stack:   "CheckDisk\nmain",
	}
	e.Data = entry.Fields{entry.String("volume", "/var"), entry.Int("free_mb", 12)}

	block := RenderBlock(e)
	for _, want := range []string{
		"disk almost full",
		"Level: Warning",
		"Machine: host-1",
		"Process: chronicle (42)",
		"Correlation: corr-1",
		"Caller: CheckDisk monitor.go:17",
		"Exception:",
		"  Type: *os.PathError",
		"  Code: 13",
		"    CheckDisk",
		"Additional data:",
		"  volume: /var",
		"  free_mb: 12",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q:\n%s", want, block)
		}
	}
	if strings.HasSuffix(block, "\n") {
		t.Error("block should not end with a newline")
	}
}
