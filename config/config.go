package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ResolverConfig configures the layered config resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// With EnvPrefix "ARTIFACTWAIT_", key "run_id" maps to ARTIFACTWAIT_RUN_ID.
	EnvPrefix string

	// GlobalConfigDir is the directory under ~/.config/ holding the global config.
	GlobalConfigDir string

	// GlobalConfigFile defaults to "config.yaml".
	GlobalConfigFile string

	// LocalConfigName is the config filename looked up in the git root.
	LocalConfigName string

	// DotEnvFile is a .env file read without modifying the process
	// environment. Missing files are ignored.
	DotEnvFile string

	// Keys lists the recognised keys. File entries outside it are skipped
	// with a warning. If nil, all keys are accepted.
	Keys []string

	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// EnvFallbacks maps a key to unprefixed variables consulted, in order,
	// when the prefixed variable is unset.
	EnvFallbacks map[string][]string

	// GitRootFinder finds the git root directory.
	// If nil, the nearest parent containing .git is used.
	GitRootFinder func(startDir string) (string, error)

	// ErrWriter receives warnings. Defaults to os.Stderr.
	ErrWriter io.Writer
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver merges configuration layers.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a resolver that locates its files from the working
// directory and the user's home directory.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := newResolver(cfg)

	find := cfg.GitRootFinder
	if find == nil {
		find = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}
	if root, err := find("."); err == nil && root != "" {
		r.gitRoot = root
		if cfg.LocalConfigName != "" {
			r.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.globalPath = filepath.Join(home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile())
		}
	}

	return r
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	r := newResolver(cfg)
	r.globalPath = globalPath
	r.localPath = localPath
	return r
}

func newResolver(cfg ResolverConfig) *Resolver {
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}
	return &Resolver{config: cfg}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > .env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range r.config.Defaults {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyDotEnv(cfg)
	r.applyVars(cfg, os.Getenv, SourceEnv)

	return cfg
}

// ResolveWithFlags resolves config and applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		cfg.set(key, value, SourceFlag)
	}
	return cfg
}

func (r *Resolver) applyFile(cfg *Resolved, path string, src Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist - not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if !r.known(key) {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		cfg.set(key, toString(value), src)
	}
}

func (r *Resolver) applyDotEnv(cfg *Resolved) {
	if r.config.DotEnvFile == "" {
		return
	}
	if _, err := os.Stat(r.config.DotEnvFile); err != nil {
		return
	}

	vars, err := godotenv.Read(r.config.DotEnvFile)
	if err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", r.config.DotEnvFile, err))
		return
	}
	r.applyVars(cfg, func(name string) string { return vars[name] }, SourceDotEnv)
}

// applyVars looks up each key as a prefixed variable, then its fallbacks.
func (r *Resolver) applyVars(cfg *Resolved, lookup func(string) string, src Source) {
	for _, key := range r.keys(cfg) {
		if r.config.EnvPrefix != "" {
			name := r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
			if cfg.set(key, lookup(name), src) {
				continue
			}
		}
		for _, name := range r.config.EnvFallbacks[key] {
			if cfg.set(key, lookup(name), src) {
				break
			}
		}
	}
}

// keys returns every key worth looking up in the environment.
func (r *Resolver) keys(cfg *Resolved) []string {
	all := slices.Clone(r.config.Keys)
	for k := range r.config.Defaults {
		all = append(all, k)
	}
	for k := range r.config.EnvFallbacks {
		all = append(all, k)
	}
	for k := range cfg.values {
		all = append(all, k)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

func (r *Resolver) known(key string) bool {
	return len(r.config.Keys) == 0 || slices.Contains(r.config.Keys, key)
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// set records a non-empty value and reports whether it did.
func (c *Resolved) set(key, value string, src Source) bool {
	if value == "" {
		return false
	}
	c.values[key] = value
	c.sources[key] = src
	return true
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Int parses a key as a non-negative integer. Unset keys yield 0.
func (c *Resolved) Int(key string) (int, error) {
	v := strings.TrimSpace(c.values[key])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s (from %s): %q is not a non-negative integer", key, c.sources[key], v)
	}
	return n, nil
}

// Duration parses a key holding a whole number of seconds.
func (c *Resolved) Duration(key string) (time.Duration, error) {
	n, err := c.Int(key)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

// Fields splits a key's value on whitespace.
func (c *Resolved) Fields(key string) []string {
	return strings.Fields(c.values[key])
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	case []any:
		// artifact_names may be written as a YAML list.
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := toString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// findGitRoot finds the git root by looking for a .git entry.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "" // Reached root
		}
		dir = parent
	}
}
