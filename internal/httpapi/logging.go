package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("IMGCLASSD_HTTP_LOG"))

// SetDefaultLogLevel sets the request log level used when a request carries
// no override.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logRequestEnd emits the end-of-request line. Server faults are logged at
// LevelError and above, everything else needs LevelInfo.
func logRequestEnd(r *http.Request, lvl LogLevel, msg string, status int, start time.Time, err error) {
	if lvl < LevelError || (lvl < LevelInfo && status < http.StatusInternalServerError) {
		return
	}
	if zlog == nil {
		log.Printf("%s status=%d dur=%s err=%v", msg, status, time.Since(start), err)
		return
	}
	z := zlog.Info()
	if status >= http.StatusInternalServerError {
		z = zlog.Error()
	}
	z = z.Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg(msg)
}
