// Command artifactwait waits for named artifacts of a CI run to appear and
// optionally downloads each one as <name>.zip.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/randalmurphal/artifactwait/config"
	clierrors "github.com/randalmurphal/artifactwait/errors"
	"github.com/randalmurphal/artifactwait/notify"
	"github.com/randalmurphal/artifactwait/provider"
	"github.com/randalmurphal/artifactwait/waiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		resolver: config.NewResolver(config.Default()),
	}
	code := a.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// app holds the process dependencies that tests replace.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	resolver *config.Resolver
	clock    waiter.Clock // nil means wall clock
}

func (a *app) run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("artifactwait", flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	flags := map[string]*string{
		config.KeyRepo:          fs.String("repo", "", "Repository as owner/name (default $GITHUB_REPOSITORY)"),
		config.KeyRunID:         fs.String("run-id", "", "Workflow run (or GitLab pipeline) ID (required)"),
		config.KeyArtifactNames: fs.String("artifact-names", "", "Whitespace-separated artifact names (required)"),
		config.KeyDownloadDir:   fs.String("download-dir", "", "Directory to save <name>.zip archives in (default: no download)"),
		config.KeyTimeout:       fs.String("timeout", "", "Seconds to keep polling before the final pass (default 0)"),
		config.KeyPollInterval:  fs.String("poll-interval", "", "Seconds between passes (default 10)"),
		config.KeyToken:         fs.String("token", "", "API token (default $GITHUB_TOKEN)"),
		config.KeyProvider:      fs.String("provider", "", "github or gitlab (default: detected from -server-url)"),
		config.KeyServerURL:     fs.String("server-url", "", "API base URL for GitHub Enterprise or self-hosted GitLab"),
		config.KeyOutputFile:    fs.String("output-file", "", "File to append artifact-ids=... to (default $GITHUB_OUTPUT)"),
		config.KeyNotifyWebhook: fs.String("notify-webhook", "", "URL to POST the outcome to as JSON"),
		config.KeySlackWebhook:  fs.String("slack-webhook", "", "Slack incoming webhook URL for the outcome"),
		config.KeySlackChannel:  fs.String("slack-channel", "", "Slack channel override"),
	}
	verbose := fs.Bool("v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintln(a.stderr, `Usage: artifactwait [options]

Wait until every named artifact of a CI run exists, downloading each
to -download-dir as it is found. Prints artifact-ids=<ids> on success.

Every option can also be set as ARTIFACTWAIT_<OPTION> in the environment
or a .env file, or in .artifactwait.yaml (git root) and
~/.config/artifactwait/config.yaml.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return clierrors.ExitOK
		}
		return clierrors.ExitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "Error: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return clierrors.ExitUsage
	}

	values := make(map[string]string, len(flags))
	for key, v := range flags {
		values[key] = *v
	}
	cfg := a.resolver.ResolveWithFlags(values)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	logConfig(logger, a.resolver, cfg)

	req, err := a.buildRequest(cfg, logger)
	if err == nil {
		err = prepareDownloadDir(req.DownloadDir)
	}
	if err != nil {
		return a.fail(err, cfg)
	}

	found, err := waiter.Wait(ctx, req)
	a.report(ctx, cfg, logger, notify.NewEvent(req, found, err, time.Now()))
	if err != nil {
		return a.fail(err, cfg)
	}

	line := "artifact-ids=" + strings.Join(artifactIDs(req.Names, found), " ")
	fmt.Fprintln(a.stdout, line)

	if out := cfg.Get(config.KeyOutputFile); out != "" {
		if err := appendLine(out, line); err != nil {
			return a.fail(fmt.Errorf("write output file: %w", err), cfg)
		}
	}

	logger.Info("artifacts ready", "count", len(found))
	return clierrors.ExitOK
}

// secretKeys are never logged in clear.
var secretKeys = []string{config.KeyToken, config.KeyNotifyWebhook, config.KeySlackWebhook}

// logConfig records where each setting came from at debug level.
func logConfig(logger *slog.Logger, r *config.Resolver, cfg *config.Resolved) {
	logger.Debug("config files",
		"git_root", r.GitRoot(),
		"global", r.GlobalPath(),
		"local", r.LocalPath(),
	)
	for _, key := range slices.Sorted(maps.Keys(cfg.All())) {
		value, src := cfg.GetWithSource(key)
		if slices.Contains(secretKeys, key) {
			value = "[redacted]"
		}
		logger.Debug("config", "key", key, "value", value, "source", src)
	}
}

// buildRequest turns resolved settings into a wait request.
func (a *app) buildRequest(cfg *config.Resolved, logger *slog.Logger) (waiter.Request, error) {
	var req waiter.Request

	repo, err := provider.ParseRepo(cfg.Get(config.KeyRepo))
	if err != nil {
		return req, err
	}
	runID, err := provider.ParseRunID(cfg.Get(config.KeyRunID))
	if err != nil {
		return req, err
	}
	names := cfg.Fields(config.KeyArtifactNames)
	if len(names) == 0 {
		return req, clierrors.NewInvalidInputError(errors.New("artifact_names is required"))
	}
	timeout, err := cfg.Duration(config.KeyTimeout)
	if err != nil {
		return req, clierrors.NewInvalidInputError(err)
	}
	pollInterval, err := cfg.Duration(config.KeyPollInterval)
	if err != nil {
		return req, clierrors.NewInvalidInputError(err)
	}

	// The built-in provider default defers to detection from the server URL.
	kind := provider.Kind(cfg.Get(config.KeyProvider))
	if cfg.Source(config.KeyProvider) == config.SourceDefault {
		kind = ""
	}
	src, err := provider.New(provider.Config{
		Kind:      kind,
		ServerURL: cfg.Get(config.KeyServerURL),
		Token:     cfg.Get(config.KeyToken),
	})
	if err != nil {
		return req, err
	}

	return waiter.Request{
		Repo:         repo,
		RunID:        runID,
		Names:        names,
		DownloadDir:  cfg.Get(config.KeyDownloadDir),
		Timeout:      timeout,
		PollInterval: pollInterval,
		Source:       src,
		Clock:        a.clock,
		Logger:       logger,
	}, nil
}

// report sends the outcome to any configured endpoints. Failures are
// logged and do not change the exit code.
func (a *app) report(ctx context.Context, cfg *config.Resolved, logger *slog.Logger, ev notify.Event) {
	var notifiers []notify.Notifier
	if url := cfg.Get(config.KeyNotifyWebhook); url != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(url, nil))
	}
	if url := cfg.Get(config.KeySlackWebhook); url != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(url, notify.WithSlackChannel(cfg.Get(config.KeySlackChannel))))
	}
	if len(notifiers) == 0 {
		return
	}

	// Still deliver when the wait itself was interrupted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	multi := notify.NewMultiNotifier(notifiers...)
	multi.Logger = logger
	_ = multi.Notify(ctx, ev)
}

func (a *app) fail(err error, cfg *config.Resolved) int {
	err = clierrors.WrapWaitError(err, clierrors.WithServerURL(cfg.Get(config.KeyServerURL)))
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return clierrors.ExitCode(err)
}

func prepareDownloadDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	return nil
}

// artifactIDs lists IDs in request order, repeating duplicated names.
func artifactIDs(names []string, found map[string]waiter.Artifact) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		ids = append(ids, strconv.FormatInt(found[name].ID, 10))
	}
	return ids
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
