// Package config defines configuration structures for the primes CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (PRIMES_ prefix)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, file, environment, flags.
//
// # Structure
//
//	type Config struct {
//	    Workers        int
//	    Bucket         string
//	    Dir            string
//	    Prefix         string
//	    RunID          string
//	    Cleanup        bool
//	    Progress       bool
//	    VerifyChecksum bool
//	    Log            LogConfig
//	}
//
//	type LogConfig struct {
//	    Level    string
//	    Encoding string
//	}
package config
