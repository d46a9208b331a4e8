package siem

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func TestDeliverFirstAttempt(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	recorder := &sleepRecorder{}
	client := NewClient(nil, WithSleep(recorder.sleep))
	target := Target{Endpoint: server.URL, Token: "secret", Envelope: EnvelopeGeneric, Timeout: 5 * time.Second}

	attempts, err := client.Deliver(context.Background(), envelopeEntry(), target)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if attempts != 1 || requests != 1 {
		t.Errorf("attempts = %d, requests = %d", attempts, requests)
	}
	if len(recorder.delays) != 0 {
		t.Errorf("no backoff expected on first-attempt success, got %v", recorder.delays)
	}
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	recorder := &sleepRecorder{}
	client := NewClient(nil, WithSleep(recorder.sleep))
	target := Target{Endpoint: server.URL, Envelope: EnvelopeGeneric, Timeout: 5 * time.Second}

	attempts, err := client.Deliver(context.Background(), envelopeEntry(), target)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(recorder.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", recorder.delays, want)
	}
	for i := range want {
		if recorder.delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, recorder.delays[i], want[i])
		}
	}
}

func TestDeliverExhaustsAttempts(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	recorder := &sleepRecorder{}
	client := NewClient(nil, WithSleep(recorder.sleep))
	target := Target{Endpoint: server.URL, Envelope: EnvelopeGeneric, Timeout: 5 * time.Second}

	attempts, err := client.Deliver(context.Background(), envelopeEntry(), target)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 || requests != 3 {
		t.Errorf("attempts = %d, requests = %d, want 3 each", attempts, requests)
	}
	// No sleep after the final failed attempt.
	if len(recorder.delays) != 2 {
		t.Errorf("delays = %v", recorder.delays)
	}
}

func TestDeliverHECAuthScheme(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil)
	target := Target{Endpoint: server.URL, Token: "hec-token", Envelope: EnvelopeHEC, Timeout: 5 * time.Second}
	if _, err := client.Deliver(context.Background(), envelopeEntry(), target); err != nil {
		t.Fatal(err)
	}
	if auth != "Splunk hec-token" {
		t.Errorf("authorization = %q", auth)
	}
}

func TestDeliverNoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil)
	target := Target{Endpoint: server.URL, Envelope: EnvelopeGeneric, Timeout: 5 * time.Second}
	if _, err := client.Deliver(context.Background(), envelopeEntry(), target); err != nil {
		t.Fatal(err)
	}
	if hasAuth {
		t.Error("no Authorization header expected without a token")
	}
}

func TestDeliverCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(nil, WithSleep(func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}))
	target := Target{Endpoint: server.URL, Envelope: EnvelopeGeneric, Timeout: 5 * time.Second}

	attempts, err := client.Deliver(context.Background(), envelopeEntry(), target)
	if err == nil {
		t.Fatal("expected interruption error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
