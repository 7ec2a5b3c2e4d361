package config

// Configuration keys understood by artifactwait.
const (
	KeyProvider      = "provider"
	KeyServerURL     = "server_url"
	KeyRepo          = "repo"
	KeyRunID         = "run_id"
	KeyArtifactNames = "artifact_names"
	KeyDownloadDir   = "download_dir"
	KeyTimeout       = "timeout"
	KeyPollInterval  = "poll_interval"
	KeyToken         = "token"
	KeyOutputFile    = "output_file"
	KeyNotifyWebhook = "notify_webhook"
	KeySlackWebhook  = "slack_webhook"
	KeySlackChannel  = "slack_channel"
)

// Keys lists every recognised key.
var Keys = []string{
	KeyProvider,
	KeyServerURL,
	KeyRepo,
	KeyRunID,
	KeyArtifactNames,
	KeyDownloadDir,
	KeyTimeout,
	KeyPollInterval,
	KeyToken,
	KeyOutputFile,
	KeyNotifyWebhook,
	KeySlackWebhook,
	KeySlackChannel,
}

// Default returns the resolver settings used by the artifactwait CLI.
func Default() ResolverConfig {
	return ResolverConfig{
		EnvPrefix:       "ARTIFACTWAIT_",
		GlobalConfigDir: "artifactwait",
		LocalConfigName: ".artifactwait.yaml",
		DotEnvFile:      ".env",
		Keys:            Keys,
		Defaults: map[string]string{
			KeyProvider:     "github",
			KeyTimeout:      "0",
			KeyPollInterval: "10",
		},
		// Variables a GitHub Actions runner already provides.
		EnvFallbacks: map[string][]string{
			KeyToken:      {"GITHUB_TOKEN"},
			KeyRepo:       {"GITHUB_REPOSITORY"},
			KeyServerURL:  {"GITHUB_API_URL"},
			KeyOutputFile: {"GITHUB_OUTPUT"},
		},
	}
}
