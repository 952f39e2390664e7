package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"imgclassd/pkg/types"
)

// ResultStore is the append-only prediction record store.
type ResultStore interface {
	Append(ctx context.Context, r types.PredictionResult) (types.Prediction, error)
	List(ctx context.Context) ([]types.Prediction, error)
}

// Config wires the Service's collaborators. Engine, Preprocessor, Catalog,
// Files and Store are required.
type Config struct {
	Engine       *Engine
	Preprocessor *Preprocessor
	Catalog      *Catalog
	ScoreMode    ScoreMode
	Files        *FileStore
	Store        ResultStore
	Publisher    EventPublisher
	Logger       zerolog.Logger
	// AllowedExtensions are compared case-insensitively, with or without the dot.
	AllowedExtensions []string
}

// Service runs the upload pipeline: validate, store, preprocess, infer,
// decode and persist.
type Service struct {
	engine  *Engine
	pre     *Preprocessor
	catalog *Catalog
	decoder *Decoder
	files   *FileStore
	store   ResultStore
	pub     EventPublisher
	log     zerolog.Logger
	allowed map[string]struct{}

	started     time.Time
	predictions atomic.Uint64
}

// NewService validates cfg and returns a ready-to-use Service.
func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.Engine == nil:
		return nil, errors.New("classifier: engine is required")
	case cfg.Preprocessor == nil:
		return nil, errors.New("classifier: preprocessor is required")
	case cfg.Catalog == nil:
		return nil, errors.New("classifier: catalog is required")
	case cfg.Files == nil:
		return nil, errors.New("classifier: file store is required")
	case cfg.Store == nil:
		return nil, errors.New("classifier: result store is required")
	}
	dec, err := NewDecoder(cfg.Catalog, cfg.ScoreMode)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil, errors.New("classifier: no allowed extensions")
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Service{
		engine:  cfg.Engine,
		pre:     cfg.Preprocessor,
		catalog: cfg.Catalog,
		decoder: dec,
		files:   cfg.Files,
		store:   cfg.Store,
		pub:     pub,
		log:     cfg.Logger,
		allowed: allowed,
		started: time.Now(),
	}, nil
}

// Ready reports whether the model is loaded.
func (s *Service) Ready() bool { return s.engine.Ready() }

// Catalog returns the class catalog.
func (s *Service) Catalog() *Catalog { return s.catalog }

// ValidateName checks a client-supplied filename against the allow-list and
// returns its lower-case extension.
func (s *Service) ValidateName(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrValidation(MsgNoSelectedFile)
	}
	_, ext := splitUploadName(filename)
	if _, ok := s.allowed[ext]; !ok {
		return "", ErrValidation(MsgInvalidType)
	}
	return ext, nil
}

// Upload stores the file and classifies it. Validation failures and an
// unloaded model return before anything is written. After the file is stored
// any failure leaves it in place and persists no record.
func (s *Service) Upload(ctx context.Context, filename string, body io.Reader) (types.UploadResponse, error) {
	ext, err := s.ValidateName(filename)
	if err != nil {
		return types.UploadResponse{}, err
	}
	if !s.engine.Ready() {
		return types.UploadResponse{}, ErrModelNotLoaded
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return types.UploadResponse{}, storeError{op: "read upload", err: err}
	}
	asset, err := s.files.Save(filename, ext, raw)
	if err != nil {
		return types.UploadResponse{}, err
	}

	d, err := s.Classify(ctx, raw)
	if err != nil {
		s.log.Warn().Err(err).Str("file", asset.Stored).Msg("inference failed")
		s.pub.Publish(Event{Name: EventInferenceFailed, Filename: asset.Stored, Fields: map[string]any{"error": err.Error()}})
		return types.UploadResponse{}, err
	}

	rec, err := s.store.Append(ctx, types.PredictionResult{Filename: asset.Stored, Label: d.Label, Confidence: d.Confidence})
	if err != nil {
		s.log.Error().Err(err).Str("file", asset.Stored).Msg("persist prediction")
		return types.UploadResponse{}, storeError{op: "append prediction", err: err}
	}
	s.predictions.Add(1)
	predictionsTotal.WithLabelValues(d.Label).Inc()
	s.log.Info().Int64("id", rec.ID).Str("file", asset.Stored).Str("label", d.Label).
		Float64("confidence", d.Confidence).Msg("prediction stored")
	s.pub.Publish(Event{Name: EventPredictionCreated, Filename: asset.Stored, Fields: map[string]any{
		"id":         rec.ID,
		"prediction": d.Label,
		"confidence": d.Confidence,
	}})
	return types.UploadResponse{Filename: asset.Stored, Prediction: d.Label, Confidence: d.Confidence}, nil
}

// Classify runs Preprocess, Infer and Decode on raw image bytes without
// storing anything.
func (s *Service) Classify(ctx context.Context, raw []byte) (Decoded, error) {
	in, err := s.pre.Preprocess(raw)
	if err != nil {
		return Decoded{}, err
	}
	out, err := s.engine.Infer(ctx, in)
	if err != nil {
		return Decoded{}, err
	}
	return s.decoder.Decode(out)
}

// Predictions returns every stored record in insertion order.
func (s *Service) Predictions(ctx context.Context) ([]types.Prediction, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError{op: "list predictions", err: err}
	}
	if recs == nil {
		recs = []types.Prediction{}
	}
	return recs, nil
}

// Close releases the model handle.
func (s *Service) Close() error {
	if err := s.engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}
