package pipeline

import (
	"strings"
	"testing"
)

func TestShortFunction(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"chronicle/internal/config.Load", "config.Load"},
		{"github.com/example/app/worker.(*Pool).Run", "worker.(*Pool).Run"},
		{"main.main", "main.main"},
		{"testing.tRunner", "testing.tRunner"},
	}
	for _, tc := range cases {
		if got := shortFunction(tc.in); got != tc.want {
			t.Errorf("shortFunction(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsInternalFrame(t *testing.T) {
	cases := []struct {
		function string
		want     bool
	}{
		{"chronicle/internal/pipeline.(*Pipeline).Emit", true},
		{"chronicle/internal/pipeline.resolveCaller", true},
		{"runtime.goexit", true},
		{"chronicle/internal/config.Load", false},
		{"main.main", false},
	}
	for _, tc := range cases {
		if got := isInternalFrame(tc.function); got != tc.want {
			t.Errorf("isInternalFrame(%q) = %v, want %v", tc.function, got, tc.want)
		}
	}
}

func TestResolveCallerSkipsPipelineFrames(t *testing.T) {
	// The test itself lives in this package, so the resolver reports the
	// nearest frame outside it: the test runner. What matters is that the
	// result is a concrete resolved frame, never the sentinel.
	info := resolveCaller()
	if info == callerSentinel {
		t.Fatal("resolver fell back to the sentinel")
	}
	if strings.HasPrefix(info.Function, "pipeline.") {
		t.Errorf("resolver reported an internal frame: %+v", info)
	}
	if info.Script == "" || info.Line == 0 {
		t.Errorf("incomplete frame: %+v", info)
	}
}

func TestCaptureStackExcludesPipeline(t *testing.T) {
	stack := captureStack()
	if stack == "" {
		t.Fatal("stack should not be empty")
	}
	for _, line := range strings.Split(stack, "\n") {
		if strings.HasPrefix(line, "pipeline.") {
			t.Errorf("stack contains internal frame: %s", line)
		}
		if !strings.Contains(line, "(") || !strings.Contains(line, ":") {
			t.Errorf("malformed stack line: %q", line)
		}
	}
}

func TestCallerSentinelShape(t *testing.T) {
	if callerSentinel.Function != "Unknown" || callerSentinel.Script != "Unknown" || callerSentinel.Line != 0 {
		t.Errorf("sentinel = %+v", callerSentinel)
	}
}
