package provider

import (
	"fmt"

	"github.com/randalmurphal/artifactwait/waiter"
)

// Config selects and authenticates a CI host.
type Config struct {
	Kind      Kind   // github or gitlab; detected from ServerURL when empty
	ServerURL string // API base URL; empty for the public hosted service
	Token     string // API token (required)
}

// New creates the waiter.Source for cfg.
func New(cfg Config) (waiter.Source, error) {
	kind := cfg.Kind
	if kind == "" {
		var err error
		if kind, err = DetectProvider(cfg.ServerURL); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindGitHub:
		src, err := NewGitHubSource(cfg.Token, cfg.ServerURL)
		if err != nil {
			return nil, err
		}
		return src, nil
	case KindGitLab:
		src, err := NewGitLabSource(cfg.Token, cfg.ServerURL)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, kind)
	}
}
