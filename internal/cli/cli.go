// Package cli implements the imgclassd command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"imgclassd/internal/classifier"
	"imgclassd/internal/common/fsutil"
	"imgclassd/internal/config"
	"imgclassd/internal/onnxrt"
	"imgclassd/internal/store"
)

// Indirections for tests.
var (
	fnServe     = runServe
	fnPredict   = runPredict
	fnLabels    = runLabels
	fnOpenStore = store.Open
	fnGetenv    = os.Getenv
	fnOpener    = func(cfg config.Config, shape []int64) classifier.Opener {
		return onnxrt.NewOpener(onnxrt.Options{LibraryPath: cfg.ONNXLibraryPath, InputShape: shape})
	}
)

// Options collects the command-line flags. Empty values leave the config
// file and environment in charge.
type Options struct {
	ConfigPath  string
	LogLevel    string
	Addr        string
	ModelPath   string
	LabelsPath  string
	UploadDir   string
	StoreDriver string
	StoreDSN    string
	ONNXLib     string
	ScoreMode   string
	CORS        bool
}

func (o *Options) apply(cfg *config.Config) {
	set := func(v string, dst *string) {
		if v != "" {
			*dst = v
		}
	}
	set(o.LogLevel, &cfg.LogLevel)
	set(o.Addr, &cfg.Addr)
	set(o.ModelPath, &cfg.ModelPath)
	set(o.LabelsPath, &cfg.LabelsPath)
	set(o.UploadDir, &cfg.UploadDir)
	set(o.StoreDriver, &cfg.Store.Driver)
	set(o.StoreDSN, &cfg.Store.DSN)
	set(o.ONNXLib, &cfg.ONNXLibraryPath)
	set(o.ScoreMode, &cfg.ScoreMode)
	if o.CORS {
		cfg.CORS.Enabled = true
	}
}

// resolveConfig applies defaults, then the config file, then IMGCLASSD_* env, then flags.
func resolveConfig(o *Options) (config.Config, error) {
	var cfg config.Config
	if o.ConfigPath != "" {
		p, err := fsutil.ExpandHome(o.ConfigPath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = config.Load(p); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", p, err)
		}
	}
	cfg = cfg.ApplyEnv(fnGetenv)
	o.apply(&cfg)
	return cfg.WithDefaults(), nil
}

// buildRootCmdWith constructs the cobra tree bound to o.
func buildRootCmdWith(o *Options, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "imgclassd",
		Short:         "Image classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&o.ConfigPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&o.LogLevel, "log-level", "", "Log level: debug|info|warn|error (defaults IMGCLASSD_LOG_LEVEL or info)")
	pf.StringVar(&o.ModelPath, "model", "", "ONNX model path")
	pf.StringVar(&o.LabelsPath, "labels", "", "Class labels file (.txt, .json, .yaml)")
	pf.StringVar(&o.ONNXLib, "onnx-lib", "", "Path to the onnxruntime shared library")
	pf.StringVar(&o.ScoreMode, "score-mode", "", "Model output scores: probabilities|logits")

	setup := func() (config.Config, zerolog.Logger, error) {
		cfg, err := resolveConfig(o)
		if err != nil {
			return cfg, zerolog.Nop(), err
		}
		return cfg, newLogger(stderr, cfg.LogLevel), nil
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP upload and prediction server",
		Example: "  imgclassd serve --addr :8080 --model model.onnx --labels labels.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return fnServe(cmd.Context(), cfg, log)
		},
	}
	sf := serveCmd.Flags()
	sf.StringVar(&o.Addr, "addr", "", "HTTP listen address, e.g. :8080")
	sf.StringVar(&o.UploadDir, "upload-dir", "", "Directory for uploaded images")
	sf.StringVar(&o.StoreDriver, "store", "", "Prediction store: memory|sqlite|postgres|redis")
	sf.StringVar(&o.StoreDSN, "dsn", "", "Store DSN (sqlite path or postgres URL)")
	sf.BoolVar(&o.CORS, "cors", false, "Enable CORS")

	predictCmd := &cobra.Command{
		Use:     "predict <image>",
		Short:   "Classify one image and print label and confidence",
		Example: "  imgclassd predict --model model.onnx --labels labels.txt cat.jpg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer onnxrt.Shutdown()
			return fnPredict(cmd.Context(), cfg, log, args[0], cmd.OutOrStdout())
		},
	}

	labelsCmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the class catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			return fnLabels(cfg, cmd.OutOrStdout())
		},
	}

	root.AddCommand(serveCmd, predictCmd, labelsCmd)
	return root
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns 0 on success or help, 2 when no command is given and 1 on error.
func MainWithArgs(args []string) int {
	return mainWith(context.Background(), args, os.Stdout, os.Stderr)
}

func mainWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmdWith(&Options{}, stdout, stderr)
	if len(args) == 0 {
		_ = root.Help()
		return 2
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/imgclassd.
func Main() int { return MainWithArgs(os.Args[1:]) }
