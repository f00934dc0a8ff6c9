package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/primes/internal/config"
	"github.com/ligustah/primes/pkg/handoff"
)

// cliOptions holds flag values shared by all commands.
type cliOptions struct {
	configPath string
	overrides  config.Config
	noChecksum bool
	verbose    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &cliOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "primes [flags] <limit>",
		Short: "Enumerate all primes up to a limit using parallel workers",
		Long: `primes splits [1, limit] into one contiguous block per worker, lets every
worker persist the primes of its block as an artifact, and merges the
artifacts into one sorted sequence once all workers are done.

Artifacts are stored under {prefix}{run-id}/ in a local directory (--dir)
or any gocloud bucket URL (--bucket mem://, s3://..., gs://...).`,
		Example:       "  primes 50\n  primes --workers 4 --cleanup 1000000",
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.Context(), o, args[0])
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&o.overrides.Bucket, "bucket", "", "Artifact bucket URL (overrides --dir)")
	pf.StringVar(&o.overrides.Dir, "dir", "", "Local directory for artifacts (default \".\")")
	pf.StringVar(&o.overrides.Prefix, "prefix", "", "Object prefix for runs (default \"primes/\")")
	pf.StringVar(&o.overrides.RunID, "run-id", "", "Run identifier (default: random UUID)")
	pf.BoolVar(&o.noChecksum, "no-checksum", false, "Skip artifact checksum verification")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")

	f := root.Flags()
	f.IntVarP(&o.overrides.Workers, "workers", "w", 0, "Number of workers (default: hardware threads)")
	f.BoolVar(&o.overrides.Cleanup, "cleanup", false, "Delete artifacts after merging")
	f.BoolVar(&o.overrides.Progress, "progress", false, "Show progress output")

	root.AddCommand(
		newValidateCmd(o),
		newMergeCmd(o),
		newCleanCmd(o),
	)
	return root
}

// exactArgs is cobra.ExactArgs with a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{err: fmt.Errorf("expected %d argument(s), got %d", n, len(args))}
		}
		return nil
	}
}

// loadConfig applies defaults, the config file, the environment and flags,
// in that order.
func (o *cliOptions) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(o.configPath)
		if err != nil {
			return config.Config{}, &usageError{err: err}
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, &usageError{err: err}
	}

	cfg = cfg.Merge(o.overrides)
	if o.noChecksum {
		cfg.VerifyChecksum = false
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, &usageError{err: err}
	}
	return cfg, nil
}

// newLogger builds a zap logger writing to w.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

// openBucket opens the configured bucket URL, or a directory bucket rooted
// at cfg.Dir, creating the directory if needed.
func openBucket(ctx context.Context, cfg config.Config) (*blob.Bucket, error) {
	if cfg.Bucket != "" {
		return blob.OpenBucket(ctx, cfg.Bucket)
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
}

// openBucketOrMemory is openBucket for the compute path: a store that cannot
// be opened degrades to an in-memory bucket so the run still completes.
func openBucketOrMemory(ctx context.Context, cfg config.Config, logger *zap.Logger) *blob.Bucket {
	bkt, err := openBucket(ctx, cfg)
	if err != nil {
		logger.Warn("cannot open artifact store, artifacts will not be persisted",
			zap.String("bucket", cfg.Bucket),
			zap.String("dir", cfg.Dir),
			zap.Error(err),
		)
		return memblob.OpenBucket(nil)
	}
	return bkt
}

// runPrefix returns the object prefix of the configured run.
func runPrefix(cfg config.Config) string {
	return handoff.RunPrefix(cfg.Prefix, cfg.RunID)
}
