package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"imgclassd/internal/classifier"
	"imgclassd/internal/common/fsutil"
	"imgclassd/internal/config"
)

// runPredict classifies one image without storing anything and prints
// "<label>\t<confidence>" to w.
func runPredict(ctx context.Context, cfg config.Config, log zerolog.Logger, imagePath string, w io.Writer) error {
	p, err := fsutil.ExpandHome(imagePath)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	catalog, err := classifier.LoadCatalog(cfg.LabelsPath)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	pre, err := newPreprocessor(cfg)
	if err != nil {
		return err
	}
	mode, err := classifier.ParseScoreMode(cfg.ScoreMode)
	if err != nil {
		return err
	}
	eng := newEngine(cfg, pre, log)
	defer eng.Close()
	if !eng.Ready() {
		return eng.LoadErr()
	}

	start := time.Now()
	in, err := pre.Preprocess(raw)
	if err != nil {
		return err
	}
	out, err := eng.Infer(ctx, in)
	if err != nil {
		return err
	}
	dec, err := classifier.NewDecoder(catalog, mode)
	if err != nil {
		return err
	}
	d, err := dec.Decode(out)
	if err != nil {
		return err
	}
	log.Debug().Str("file", p).Int("index", d.Index).Dur("dur", time.Since(start)).Msg("predicted")
	_, err = fmt.Fprintf(w, "%s\t%.4f\n", d.Label, d.Confidence)
	return err
}

// runLabels prints the class catalog, one "<index>\t<label>" per line.
func runLabels(cfg config.Config, w io.Writer) error {
	catalog, err := classifier.LoadCatalog(cfg.LabelsPath)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}
	for i, l := range catalog.Labels() {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, l); err != nil {
			return err
		}
	}
	return nil
}
