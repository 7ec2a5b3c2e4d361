// Package provider implements waiter.Source for CI hosts.
//
// Implementations:
//   - GitHubSource: GitHub Actions workflow run artifacts, using go-github
//   - GitLabSource: GitLab CI pipeline job artifacts, using go-gitlab
//
// Both list results lazily, 100 per page, following the API's next-page
// links, and download whole zip archives into memory.
//
// Example usage:
//
//	src, err := provider.New(provider.Config{Kind: provider.KindGitHub, Token: token})
//	if err != nil {
//	    return err
//	}
//	repo, err := provider.ParseRepo("acme/widgets")
//	if err != nil {
//	    return err
//	}
//	found, err := waiter.Wait(ctx, waiter.Request{Repo: repo, RunID: id, Names: names, Source: src})
package provider
