package pipeline

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// callerSentinel is returned whenever the call site cannot be resolved.
// Resolution is best-effort and must never fail an Emit.
var callerSentinel = callerInfo{Function: "Unknown", Script: "Unknown", Line: 0}

type callerInfo struct {
	Function string
	Script   string
	Line     int
}

// internalPrefixes are the packages whose frames the resolver skips so the
// reported caller is the emitting code, not the pipeline itself.
var internalPrefixes = []string{
	"chronicle/internal/pipeline",
	"runtime.",
}

// resolveCaller walks a bounded slice of the call stack and returns the
// nearest frame outside the pipeline.
func resolveCaller() (info callerInfo) {
	info = callerSentinel
	defer func() {
		if recover() != nil {
			info = callerSentinel
		}
	}()

	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return callerSentinel
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !isInternalFrame(frame.Function) {
			return callerInfo{
				Function: shortFunction(frame.Function),
				Script:   filepath.Base(frame.File),
				Line:     frame.Line,
			}
		}
		if !more {
			return callerSentinel
		}
	}
}

func isInternalFrame(function string) bool {
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return false
}

// shortFunction trims the package path, leaving "pkg.Func" or
// "pkg.(*Type).Method".
func shortFunction(function string) string {
	if idx := strings.LastIndex(function, "/"); idx >= 0 {
		return function[idx+1:]
	}
	return function
}

// captureStack renders the same bounded walk as a stack block for exception
// records: one "function (file:line)" per line, pipeline frames excluded.
func captureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !isInternalFrame(frame.Function) {
			fmt.Fprintf(&b, "%s (%s:%d)\n", shortFunction(frame.Function), filepath.Base(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
