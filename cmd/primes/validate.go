package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligustah/primes/pkg/handoff"
)

// newValidateCmd checks that every artifact of a finished run exists and
// matches its manifest.
func newValidateCmd(o *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate --run-id <id>",
		Short: "Verify that all artifacts of a run exist and match the manifest",
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
			result, err := handoff.Validate(cmd.Context(), bkt, prefix, cfg.VerifyChecksum)
			if err != nil {
				return &storageError{err: err}
			}

			out := o.stdout
			fmt.Fprintf(out, "Run: %s\n", prefix)
			fmt.Fprintf(out, "Limit: %d\n", result.Limit)
			fmt.Fprintf(out, "Artifacts: %d\n", result.ArtifactCount)
			fmt.Fprintf(out, "Primes: %d\n", result.PrimeCount)

			if result.Valid {
				fmt.Fprintln(out, "Status: VALID")
				return nil
			}

			fmt.Fprintln(out, "Status: INVALID")
			fmt.Fprintf(out, "Unpersisted: %d\n", result.Unpersisted)
			fmt.Fprintf(out, "Missing artifacts: %d\n", result.MissingArtifacts)
			fmt.Fprintf(out, "Size mismatches: %d\n", result.SizeMismatches)
			fmt.Fprintf(out, "Checksum mismatches: %d\n", result.ChecksumMismatches)

			if len(result.Errors) > 0 {
				fmt.Fprintln(out, "\nErrors:")
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  - %s\n", e)
				}
			}
			return errValidationFailed
		},
	}
}
