package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ligustah/primes/internal/pipeline"
	"github.com/ligustah/primes/internal/progress"
	"github.com/ligustah/primes/pkg/handoff"
	"github.com/ligustah/primes/pkg/primes"
)

// parseLimit accepts ASCII digits only: no sign, no spaces, no empty string.
func parseLimit(s string) (int64, error) {
	if s == "" {
		return 0, &limitError{arg: s, err: strconv.ErrSyntax}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, &limitError{arg: s, err: strconv.ErrSyntax}
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &limitError{arg: s, err: err}
	}
	return v, nil
}

// runCompute enumerates the primes up to the limit given in arg and prints
// them to stdout.
func runCompute(ctx context.Context, o *cliOptions, arg string) error {
	// The limit is checked before anything touches storage.
	limit, err := parseLimit(arg)
	if err != nil {
		return err
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	logger, err := newLogger(cfg.Log, o.stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	detected := runtime.NumCPU()
	if cfg.Workers > 0 {
		detected = cfg.Workers
	}
	workers := primes.WorkerCount(limit, detected)
	logger.Info("starting run",
		zap.String("run_id", cfg.RunID),
		zap.Int("hardware_threads", runtime.NumCPU()),
		zap.Int("workers", workers),
	)

	bkt := openBucketOrMemory(ctx, cfg, logger)
	defer bkt.Close()

	prefix := runPrefix(cfg)

	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			Limit:      limit,
			Partitions: workers,
			Workers:    workers,
			Output:     o.stderr,
		})
		reporter.Start()
	}

	result, err := pipeline.Compute(ctx, limit, pipeline.Options{
		Workers:        cfg.Workers,
		Bucket:         bkt,
		RunPrefix:      prefix,
		VerifyChecksum: cfg.VerifyChecksum,
		WriteManifest:  true,
		Metadata:       map[string]string{"run_id": cfg.RunID},
		Logger:         logger,
		Progress:       reporter,
	})
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return err
	}
	logger.Info("run finished",
		zap.String("scanned", progress.FormatCount(limit)),
		zap.String("primes", progress.FormatCount(int64(len(result.Primes)))),
		zap.Int("fallbacks", result.Fallbacks()),
	)

	if err := printPrimes(o.stdout, limit, result.Primes); err != nil {
		return err
	}

	if cfg.Cleanup {
		if err := handoff.Delete(ctx, bkt, prefix); err != nil {
			logger.Warn("failed to delete artifacts", zap.String("prefix", prefix), zap.Error(err))
		} else {
			logger.Info("deleted artifacts", zap.String("prefix", prefix))
		}
	} else if result.Manifest != nil {
		logger.Info("artifacts kept", zap.String("prefix", prefix), zap.String("run_id", cfg.RunID))
	}

	return nil
}

// printPrimes writes the final listing: a header line followed by the
// ascending space-separated sequence, or a no-primes notice.
func printPrimes(w io.Writer, limit int64, values []int64) error {
	bw := bufio.NewWriter(w)
	if limit < 2 || len(values) == 0 {
		fmt.Fprintf(bw, "No primes <= %d.\n", limit)
		return bw.Flush()
	}

	fmt.Fprintf(bw, "Prime numbers <= %d:\n", limit)
	var buf []byte
	for i, v := range values {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, v, 10)
		bw.Write(buf)
	}
	bw.WriteByte('\n')
	return bw.Flush()
}
