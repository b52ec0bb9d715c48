package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yanchenliu/moodlog-backend/client/httpbackend"
	"github.com/yanchenliu/moodlog-backend/pkg/config"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel})
}

// recordServer accepts record and analysis inserts and counts the latter.
func recordServer(t *testing.T, analysisCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/records":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"data":{"record":{"id":%q,"user_id":%q,"type":"text","content":"x","created_at":"2026-08-29T10:00:00Z"}}}`,
				uuid.New(), uuid.New())
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyses"):
			analysisCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"data":{"analysis":{"id":%q,"record_id":%q,"analysis_result":"ok","sentiment":"positive","created_at":"2026-08-29T10:00:01Z"}}}`,
				uuid.New(), uuid.New())
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": "NOT_FOUND", "message": "not found"}})
		}
	}))
}

func signedInTokens() httpbackend.TokenStorage {
	tokens := &httpbackend.MemoryTokenStorage{}
	tokens.Save("access", "refresh")
	return tokens
}

func TestNewWiresAllServices(t *testing.T) {
	a, err := New(Params{
		BaseURL: "http://localhost:8080",
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Backend == nil || a.Session == nil || a.Capture == nil || a.Submitter == nil || a.History == nil {
		t.Fatalf("expected every service wired, got %+v", a)
	}
}

func TestNewRequiresLogger(t *testing.T) {
	if _, err := New(Params{BaseURL: "http://localhost:8080"}); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Params{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestZeroLatencyAnalysisRunsInline(t *testing.T) {
	var analysisCalls atomic.Int32
	server := recordServer(t, &analysisCalls)
	defer server.Close()

	a, err := New(Params{
		BaseURL:  server.URL,
		Analysis: config.AnalysisConfig{SimulatedLatency: 0},
		Logger:   testLogger(),
		Tokens:   signedInTokens(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	a.Capture.SetText("今天很开心")
	if _, err := a.Submitter.Submit(context.Background(), a.Capture, nil, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := analysisCalls.Load(); got != 1 {
		t.Fatalf("expected analysis inserted once, got %d", got)
	}
}

func TestConfiguredLatencyDelaysAnalysis(t *testing.T) {
	var analysisCalls atomic.Int32
	server := recordServer(t, &analysisCalls)
	defer server.Close()

	a, err := New(Params{
		BaseURL:  server.URL,
		Analysis: config.AnalysisConfig{SimulatedLatency: time.Minute},
		Logger:   testLogger(),
		Tokens:   signedInTokens(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	a.Capture.SetText("今天很开心")
	record, err := a.Submitter.Submit(ctx, a.Capture, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if record == nil {
		t.Fatal("record must save even when the analysis wait is cut short")
	}
	if got := analysisCalls.Load(); got != 0 {
		t.Fatalf("analysis must still be waiting out the configured latency, got %d inserts", got)
	}
}
