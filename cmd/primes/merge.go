package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligustah/primes/internal/pipeline"
	"github.com/ligustah/primes/pkg/handoff"
)

// newMergeCmd merges a finished run again from its persisted artifacts,
// without recomputing anything.
func newMergeCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge --run-id <id>",
		Short: "Merge the persisted artifacts of a run and print the primes",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if cfg.RunID == "" {
				return &usageError{err: errors.New("--run-id is required")}
			}

			logger, err := newLogger(cfg.Log, o.stderr)
			if err != nil {
				return err
			}
			defer logger.Sync()

			bkt, err := openBucket(cmd.Context(), cfg)
			if err != nil {
				return &storageError{err: fmt.Errorf("open bucket: %w", err)}
			}
			defer bkt.Close()

			prefix := runPrefix(cfg)
			m, handoffs, err := handoff.OpenRun(cmd.Context(), bkt, prefix, cfg.VerifyChecksum)
			if err != nil {
				return &storageError{err: err}
			}
			logger.Info("merging persisted run",
				zap.String("prefix", prefix),
				zap.Int64("limit", m.Limit),
				zap.Int("workers", m.Workers),
			)

			result, err := pipeline.Merge(cmd.Context(), handoffs, logger)
			if err != nil {
				return &storageError{err: err}
			}
			return printPrimes(o.stdout, m.Limit, result.Primes)
		},
	}
}
