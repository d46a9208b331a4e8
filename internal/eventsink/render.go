package eventsink

import (
	"fmt"
	"strings"
	"time"

	"chronicle/internal/entry"
)

// RenderBlock formats an entry as the multi-line human-readable block written
// to the journal: the message first, then metadata, then the optional
// exception and additional-data sections.
func RenderBlock(e *entry.Entry) string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	b.WriteString("Timestamp: " + e.Timestamp.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("Level: " + e.Level.String() + "\n")
	b.WriteString("Machine: " + e.Machine + "\n")
	b.WriteString(fmt.Sprintf("Process: %s (%d)\n", e.ProcessName, e.ProcessID))
	b.WriteString("User: " + e.User + "\n")
	b.WriteString("Correlation: " + e.CorrelationID + "\n")
	b.WriteString(fmt.Sprintf("Caller: %s %s:%d\n", e.CallerFunction, e.CallerScript, e.CallerLine))

	if exc := e.Exception; exc != nil {
		b.WriteString("\nException:\n")
		b.WriteString("  Type: " + exc.Type + "\n")
		b.WriteString("  Message: " + exc.Message + "\n")
		if exc.Code != 0 {
			b.WriteString(fmt.Sprintf("  Code: %d\n", exc.Code))
		}
		if exc.Inner != "" {
			b.WriteString("  Inner: " + exc.Inner + "\n")
		}
		if exc.Stack != "" {
			b.WriteString("  Stack:\n")
			for _, line := range strings.Split(strings.TrimRight(exc.Stack, "\n"), "\n") {
				b.WriteString("    " + line + "\n")
			}
		}
	}

	if len(e.Data) > 0 {
		b.WriteString("\nAdditional data:\n")
		for _, field := range e.Data {
			b.WriteString(fmt.Sprintf("  %s: %v\n", field.Key, field.Value))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
