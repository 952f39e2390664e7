package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imgclassd/internal/classifier"
	"imgclassd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Upload(ctx context.Context, filename string, body io.Reader) (types.UploadResponse, error)
	Predictions(ctx context.Context) ([]types.Prediction, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: defaultList(corsAllowedOrigins, "*"),
			AllowedMethods: defaultList(corsAllowedMethods, "GET", "POST", "OPTIONS"),
			AllowedHeaders: defaultList(corsAllowedHeaders, "Content-Type"),
			MaxAge:         300,
		}))
	}

	r.Post("/upload", handleUpload(svc))
	r.Get("/predictions", handlePredictions(svc))
	r.Get("/status", handleStatus(svc))
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(svc))

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func defaultList(v []string, def ...string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// handleUpload classifies an uploaded image.
//
// @Summary      Upload and classify an image
// @Description  Stores the image, runs one forward pass and persists the predicted label.
// @Tags         predictions
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "Image (png, jpg, jpeg, gif)"
// @Success      200  {object}  types.UploadResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /upload [post]
func handleUpload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		reject := func(status int, msg, reason string, err error) {
			IncrementUploadRejection(reason)
			writeJSONError(w, status, msg)
			logRequestEnd(r, lvl, "upload end", status, start, err)
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				reject(http.StatusRequestEntityTooLarge, "file too large", "too_large", err)
				return
			}
			reject(http.StatusBadRequest, classifier.MsgNoFilePart, "no_file_part", err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			// a part named file with an empty filename is parsed as a plain value
			if _, ok := r.MultipartForm.Value["file"]; ok {
				reject(http.StatusBadRequest, classifier.MsgNoSelectedFile, "no_selected_file", nil)
				return
			}
			reject(http.StatusBadRequest, classifier.MsgNoFilePart, "no_file_part", nil)
			return
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			reject(http.StatusInternalServerError, "storage failure", "store_error", err)
			return
		}
		defer f.Close()

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.Upload(ctx, fh.Filename, f)
		if err != nil {
			status, msg := mapError(err)
			reject(status, msg, rejectionReason(err), err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		logRequestEnd(r, lvl, "upload end", http.StatusOK, start, nil)
	}
}

// handlePredictions lists every stored prediction.
//
// @Summary      List predictions
// @Description  Returns all prediction records in insertion order.
// @Tags         predictions
// @Produce      json
// @Success      200  {array}   types.Prediction
// @Failure      500  {object}  types.ErrorResponse
// @Router       /predictions [get]
func handlePredictions(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recs, err := svc.Predictions(r.Context())
		if err != nil {
			status, msg := mapError(err)
			writeJSONError(w, status, msg)
			logRequestEnd(r, requestLogLevel(r), "predictions end", status, start, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(recs); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}

// handleStatus reports model and store state.
//
// @Summary      Service status
// @Tags         ops
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	}
}

// handleHealthz is a liveness probe.
//
// @Summary  Liveness probe
// @Tags     ops
// @Produce  plain
// @Success  200  {string}  string  "ok"
// @Router   /healthz [get]
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz reports whether the model is loaded.
//
// @Summary  Readiness probe
// @Tags     ops
// @Produce  plain
// @Success  200  {string}  string  "ready"
// @Failure  503  {string}  string  "loading"
// @Router   /readyz [get]
func handleReadyz(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	}
}
