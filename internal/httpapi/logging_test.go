package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	// shorthand ?log=1
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	// default
	defer SetDefaultLogLevel("")
	SetDefaultLogLevel("info")
	r = httptest.NewRequest("GET", "/x", nil)
	if got := requestLogLevel(r); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestLogRequestEnd_Levels(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	r := httptest.NewRequest("POST", "/upload", nil)
	logRequestEnd(r, LevelOff, "upload end", http.StatusInternalServerError, time.Now(), errors.New("x"))
	if buf.Len() != 0 {
		t.Fatalf("LevelOff must not log: %q", buf.String())
	}
	logRequestEnd(r, LevelError, "upload end", http.StatusBadRequest, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("LevelError must skip client errors: %q", buf.String())
	}
	logRequestEnd(r, LevelError, "upload end", http.StatusInternalServerError, time.Now(), errors.New("disk full"))
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "disk full") || !strings.Contains(out, `"status":500`) {
		t.Fatalf("unexpected log line: %q", out)
	}
	buf.Reset()
	logRequestEnd(r, LevelInfo, "upload end", http.StatusOK, time.Now(), nil)
	if !strings.Contains(buf.String(), `"level":"info"`) || !strings.Contains(buf.String(), `"path":"/upload"`) {
		t.Fatalf("unexpected log line: %q", buf.String())
	}
}

func TestUploadLogsWithZerologInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	req := uploadRequest(t, "file", "cat.png", []byte("x"))
	req.URL.RawQuery = "log=info"
	rec := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "upload end") || !strings.Contains(buf.String(), "request_id") {
		t.Fatalf("expected upload end line with request id, got %q", buf.String())
	}
}
