package provider

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/randalmurphal/artifactwait/waiter"
)

// Kind names a supported CI host.
type Kind string

const (
	KindGitHub Kind = "github"
	KindGitLab Kind = "gitlab"
)

// ParseRepo parses an "owner/name" repository identifier.
func ParseRepo(s string) (waiter.Repo, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return waiter.Repo{}, fmt.Errorf("%w: %q", ErrInvalidRepo, s)
	}
	return waiter.Repo{Owner: parts[0], Name: parts[1]}, nil
}

// ParseRunID parses a positive run (or pipeline) ID.
func ParseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRunID, s)
	}
	return id, nil
}

// ParseNames splits a whitespace-separated list of artifact names.
func ParseNames(s string) []string {
	return strings.Fields(s)
}

// DetectProvider guesses the CI host kind from a server URL.
// An empty URL means github.com. Hosts named neither github nor gitlab
// are recognised by their REST prefix: /api/v3 for GitHub Enterprise
// Server, /api/v4 for GitLab.
func DetectProvider(serverURL string) (Kind, error) {
	u := strings.ToLower(strings.TrimSpace(serverURL))

	switch {
	case u == "", strings.Contains(u, "github"):
		return KindGitHub, nil
	case strings.Contains(u, "gitlab"):
		return KindGitLab, nil
	}

	if parsed, err := url.Parse(u); err == nil {
		switch strings.TrimSuffix(parsed.Path, "/") {
		case "/api/v3":
			return KindGitHub, nil
		case "/api/v4":
			return KindGitLab, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownProvider, serverURL)
}
