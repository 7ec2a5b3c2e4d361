package config

// Source indicates where a configuration value came from.
type Source string

// Configuration sources, lowest priority first.
const (
	SourceDefault Source = "default"

	// SourceGlobal is ~/.config/<app>/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal is the local config file in the git root.
	SourceLocal Source = "local"

	// SourceDotEnv is a .env file in the working directory.
	SourceDotEnv Source = "dotenv"

	SourceEnv  Source = "env"
	SourceFlag Source = "flag"
)
