package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Exception captures the failure details attached to an entry when the caller
// supplies an error.
type Exception struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Code    int    `json:"code,omitempty"`
	Inner   string `json:"inner,omitempty"`
}

// Entry is one fully-assembled log record. It is immutable once built; sinks
// receive it read-only and must not retain mutable references to it.
type Entry struct {
	Timestamp      time.Time `json:"ts"`
	Level          Level     `json:"level"`
	Message        string    `json:"message"`
	Machine        string    `json:"machine"`
	ProcessID      int       `json:"pid"`
	ProcessName    string    `json:"process"`
	User           string    `json:"user"`
	CorrelationID  string    `json:"correlation_id"`
	CallerFunction string    `json:"caller_function"`
	CallerScript   string    `json:"caller_script"`
	CallerLine     int       `json:"caller_line"`

	Exception *Exception `json:"exception,omitempty"`
	Data      Fields     `json:"data,omitempty"`
}

// NewException derives an exception block from err: dynamic type name,
// message, the unwrap chain's innermost cause, and a numeric code when the
// chain carries an errno. The stack argument is the call stack captured at
// emit time; it may be empty.
func NewException(err error, stack string) *Exception {
	if err == nil {
		return nil
	}
	exc := &Exception{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Stack:   stack,
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		exc.Code = int(errno)
	}
	if inner := errors.Unwrap(err); inner != nil {
		exc.Inner = inner.Error()
	}
	return exc
}

// EncodeLine renders the entry as a single JSON line terminated by a newline,
// the shape appended to the file sink and re-parsed by tooling.
func (e *Entry) EncodeLine() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeLine parses one file-sink record back into an Entry.
func DecodeLine(line []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}
