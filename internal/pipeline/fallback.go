package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chronicle/internal/diag"
)

// writeFallback appends the original message and the failure reason to the
// fixed fallback file, which sits outside the rotation scheme. This is the
// terminal best-effort path: a failure to write even this line is swallowed,
// because nothing may escape Emit.
func (p *Pipeline) writeFallback(original, reason string) {
	p.diag.Record(diag.CounterFallback, "emit failed; wrote fallback record")

	p.mu.Lock()
	path := p.settings.FallbackPath
	p.mu.Unlock()
	if path == "" {
		return
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()

	line := fmt.Sprintf("%s | %s | original=%q\n",
		time.Now().UTC().Format(time.RFC3339), reason, original)
	_, _ = file.WriteString(line)
}
