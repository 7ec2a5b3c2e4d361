// Package config resolves artifactwait settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. Environment variables (ARTIFACTWAIT_RUN_ID, then fallbacks such as GITHUB_TOKEN)
//  3. A .env file in the working directory
//  4. Local config (.artifactwait.yaml in the git root)
//  5. Global config (~/.config/artifactwait/config.yaml)
//  6. Built-in defaults
//
// # Basic Usage
//
//	resolver := config.NewResolver(config.Default())
//	cfg := resolver.ResolveWithFlags(map[string]string{
//	    config.KeyRunID: *runID,
//	})
//	timeout, err := cfg.Duration(config.KeyTimeout)
//	names := cfg.Fields(config.KeyArtifactNames)
//
// Each resolved value remembers its Source, so error messages can say
// where a bad value came from.
//
// A local file might look like:
//
//	repo: acme/widgets
//	artifact_names: [linux-amd64, darwin-arm64]
//	poll_interval: 15
package config
