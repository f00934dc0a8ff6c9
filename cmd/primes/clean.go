package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/primes/pkg/handoff"
)

// newCleanCmd removes a run's artifacts and manifest.
func newCleanCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean --run-id <id>",
		Short: "Delete all artifacts and the manifest of a run",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if cfg.RunID == "" {
				return &usageError{err: errors.New("--run-id is required")}
			}

			bkt, err := openBucket(cmd.Context(), cfg)
			if err != nil {
				return &storageError{err: fmt.Errorf("open bucket: %w", err)}
			}
			defer bkt.Close()

			prefix := runPrefix(cfg)
			if err := handoff.Delete(cmd.Context(), bkt, prefix); err != nil {
				return &storageError{err: err}
			}

			fmt.Fprintf(o.stdout, "Deleted run: %s\n", prefix)
			return nil
		},
	}
}
