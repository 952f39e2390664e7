package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"imgclassd/internal/classifier"
	"imgclassd/internal/common/fsutil"
	"imgclassd/internal/config"
	"imgclassd/internal/eventbus"
	"imgclassd/internal/onnxrt"
	"imgclassd/internal/store"
)

// app holds the collaborators built from a resolved config.
type app struct {
	svc   *classifier.Service
	store store.Store
	pub   *eventbus.KafkaPublisher
	log   zerolog.Logger
}

// newPreprocessor builds the preprocessor described by cfg.
func newPreprocessor(cfg config.Config) (*classifier.Preprocessor, error) {
	return classifier.NewPreprocessor(classifier.PreprocessConfig{
		Width:     cfg.InputWidth,
		Height:    cfg.InputHeight,
		Layout:    classifier.Layout(cfg.Layout),
		Filter:    cfg.ResizeFilter,
		MaxPixels: cfg.MaxPixels,
	})
}

// newEngine builds the engine and attempts the single model load. A failed
// load is logged and kept on the engine; the caller decides whether it is fatal.
func newEngine(cfg config.Config, pre *classifier.Preprocessor, log zerolog.Logger) *classifier.Engine {
	timeout := time.Duration(cfg.InferTimeoutSec) * time.Second
	open := fnOpener(cfg, pre.Shape())
	eng := classifier.NewEngine(func(p string) (classifier.Runtime, error) {
		if !fsutil.PathExists(p) {
			return nil, fmt.Errorf("model file %s does not exist", p)
		}
		return open(p)
	}, timeout)
	path, err := fsutil.ExpandHome(cfg.ModelPath)
	if err != nil {
		path = cfg.ModelPath
	}
	if err := eng.Load(path); err != nil {
		log.Error().Err(err).Str("model", path).Msg("model load failed; serving without a model")
		if !onnxrt.Available() {
			log.Warn().Msg("built without ONNX support; rebuild with -tags onnx")
		}
		return eng
	}
	log.Info().Str("model", path).Ints64("input_shape", eng.InputShape()).Msg("model loaded")
	return eng
}

// buildApp wires the upload pipeline. Only catalog, preprocessing, upload
// directory and store failures abort; a missing model leaves the service unready.
func buildApp(ctx context.Context, cfg config.Config, log zerolog.Logger) (*app, error) {
	catalog, err := classifier.LoadCatalog(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	pre, err := newPreprocessor(cfg)
	if err != nil {
		return nil, err
	}
	mode, err := classifier.ParseScoreMode(cfg.ScoreMode)
	if err != nil {
		return nil, err
	}
	files, err := classifier.NewFileStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	st, err := fnOpenStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &app{store: st, log: log}
	var pub classifier.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := eventbus.Dial(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			// events are best effort
			log.Warn().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka unavailable; events disabled")
		} else {
			a.pub = k
			pub = k
		}
	}

	eng := newEngine(cfg, pre, log)
	svc, err := classifier.NewService(classifier.Config{
		Engine:            eng,
		Preprocessor:      pre,
		Catalog:           catalog,
		ScoreMode:         mode,
		Files:             files,
		Store:             st,
		Publisher:         pub,
		Logger:            log,
		AllowedExtensions: cfg.AllowedExtensions,
	})
	if err != nil {
		_ = a.Close()
		_ = eng.Close()
		return nil, err
	}
	a.svc = svc
	if rep := svc.SanityCheck(); rep.Error != "" && svc.Ready() {
		log.Warn().Str("sanity", rep.Error).Msg("model and class catalog disagree")
	}
	return a, nil
}

// Close releases the service, the publisher and the store, in that order.
func (a *app) Close() error {
	var errs []error
	if a.svc != nil {
		errs = append(errs, a.svc.Close())
	}
	if a.pub != nil {
		errs = append(errs, a.pub.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, onnxrt.Shutdown())
	return errors.Join(errs...)
}
