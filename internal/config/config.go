// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/mavensync/mavensync/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "mavensync"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is the per-tree config file looked up in the tree root.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variables that override config values,
	// for example MAVENSYNC_OUTPUT_DIR.
	EnvPrefix = "MAVENSYNC"

	schemaPath = "#Config"
)

//go:embed config_schema.cue
var configSchema []byte

// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigDir returns the mavensync configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading. It returns the
// loaded config and the path of the file it came from ("" for defaults).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'mavensync config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Write coordinates as group:library:version:extension").
			WithSuggestion("Make every artifact's 'repo' name a configured repository id").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	cfg.Source = resolvedPath
	return &cfg, resolvedPath, nil
}

// resolveConfigPath applies the lookup order: explicit file, the tree-local
// file, the user config file. It returns "" when only defaults apply.
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'mavensync config init' to write a default configuration").
				Wrap(fmt.Errorf("%w: %s", ErrConfigNotFound, opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	localPath := filepath.Join(opts.BaseDir, LocalConfigFile)
	if fileExists(localPath) {
		return localPath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(userPath) {
		return userPath, nil
	}

	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("repositories", defaults.Repositories)
	v.SetDefault("artifacts", defaults.Artifacts)
	v.SetDefault("rewrite_rules", defaults.RewriteRules)
	v.SetDefault("dependency_rewrites", defaults.DependencyRewrites)
	v.SetDefault("blacklist", defaults.Blacklist)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("working_dir", defaults.WorkingDir)
	v.SetDefault("extract_resources", defaults.ExtractResources)
	v.SetDefault("include_static_deps", defaults.IncludeStaticDeps)
	v.SetDefault("manifest.generator", defaults.Manifest.Generator)
	v.SetDefault("manifest.file", defaults.Manifest.File)
	v.SetDefault("manifest.sdk_version", defaults.Manifest.SDKVersion)
	v.SetDefault("manifest.min_sdk_version", defaults.Manifest.MinSDKVersion)
	v.SetDefault("manifest.excludes", defaults.Manifest.Excludes)
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", defaults.HTTP.UserAgent)
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Fields are optional, so validation does
// not require concrete values.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fields, err := decodeConfigFile(data, path)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(fields); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// mavensync configuration\n")
	sb.WriteString("// Fields left out keep their built-in defaults.\n\n")

	sb.WriteString("repositories: [\n")
	for _, r := range cfg.Repositories {
		fmt.Fprintf(&sb, "\t{id: %q, name: %q, url: %q},\n", r.ID, r.Name, r.URL)
	}
	sb.WriteString("]\n")

	sb.WriteString("\nartifacts: [\n")
	for _, a := range cfg.Artifacts {
		fmt.Fprintf(&sb, "\t{coordinate: %q, repo: %q%s},\n", a.Coordinate, a.Repo, ruleFieldsCUE(a.RuleFields))
	}
	sb.WriteString("]\n")

	if len(cfg.RewriteRules) > 0 {
		sb.WriteString("\nrewrite_rules: [\n")
		for _, r := range cfg.RewriteRules {
			fmt.Fprintf(&sb, "\t{key: %q%s},\n", r.Key, ruleFieldsCUE(r.RuleFields))
		}
		sb.WriteString("]\n")
	}

	if len(cfg.DependencyRewrites) > 0 {
		sb.WriteString("\ndependency_rewrites: [\n")
		for _, d := range cfg.DependencyRewrites {
			fmt.Fprintf(&sb, "\t{from: %q, to: %q},\n", d.From, d.To)
		}
		sb.WriteString("]\n")
	}

	fmt.Fprintf(&sb, "\nblacklist: %s\n", cueStrings(cfg.Blacklist))

	fmt.Fprintf(&sb, "\noutput_dir: %q\n", cfg.OutputDir)
	fmt.Fprintf(&sb, "working_dir: %q\n", cfg.WorkingDir)
	fmt.Fprintf(&sb, "extract_resources: %v\n", cfg.ExtractResources)
	fmt.Fprintf(&sb, "include_static_deps: %v\n", cfg.IncludeStaticDeps)

	sb.WriteString("\nmanifest: {\n")
	fmt.Fprintf(&sb, "\tgenerator: %q\n", cfg.Manifest.Generator)
	fmt.Fprintf(&sb, "\tfile: %q\n", cfg.Manifest.File)
	fmt.Fprintf(&sb, "\tsdk_version: %d\n", cfg.Manifest.SDKVersion)
	fmt.Fprintf(&sb, "\tmin_sdk_version: %d\n", cfg.Manifest.MinSDKVersion)
	fmt.Fprintf(&sb, "\texcludes: %s\n", cueStrings(cfg.Manifest.Excludes))
	sb.WriteString("}\n")

	sb.WriteString("\nhttp: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.HTTP.Timeout.String())
	if cfg.HTTP.UserAgent != "" {
		fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.HTTP.UserAgent)
	}
	sb.WriteString("}\n")

	return sb.String()
}

func ruleFieldsCUE(f RuleFields) string {
	var sb strings.Builder
	if f.Name != "" {
		fmt.Fprintf(&sb, ", name: %q", f.Name)
	}
	if f.Path != "" {
		fmt.Fprintf(&sb, ", path: %q", f.Path)
	}
	if f.Host {
		sb.WriteString(", host: true")
	}
	if f.HostAndDevice {
		sb.WriteString(", host_and_device: true")
	}
	if len(f.ExtraStaticLibs) > 0 {
		fmt.Fprintf(&sb, ", extra_static_libs: %s", cueStrings(f.ExtraStaticLibs))
	}
	if len(f.OptionalUsesLibs) > 0 {
		fmt.Fprintf(&sb, ", optional_uses_libs: %s", cueStrings(f.OptionalUsesLibs))
	}
	return sb.String()
}

func cueStrings(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, s := range values {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// tomlConfig mirrors Config for TOML output, with the timeout as a duration
// string.
type tomlConfig struct {
	Repositories       []Repository        `toml:"repositories"`
	Artifacts          []Artifact          `toml:"artifacts"`
	RewriteRules       []RewriteRule       `toml:"rewrite_rules"`
	DependencyRewrites []DependencyRewrite `toml:"dependency_rewrites"`
	Blacklist          []string            `toml:"blacklist"`
	OutputDir          string              `toml:"output_dir"`
	WorkingDir         string              `toml:"working_dir"`
	ExtractResources   bool                `toml:"extract_resources"`
	IncludeStaticDeps  bool                `toml:"include_static_deps"`
	Manifest           ManifestConfig      `toml:"manifest"`
	HTTP               struct {
		Timeout   string `toml:"timeout"`
		UserAgent string `toml:"user_agent,omitempty"`
	} `toml:"http"`
}

// GenerateTOML renders the configuration as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	doc := tomlConfig{
		Repositories:       cfg.Repositories,
		Artifacts:          cfg.Artifacts,
		RewriteRules:       cfg.RewriteRules,
		DependencyRewrites: cfg.DependencyRewrites,
		Blacklist:          cfg.Blacklist,
		OutputDir:          cfg.OutputDir,
		WorkingDir:         cfg.WorkingDir,
		ExtractResources:   cfg.ExtractResources,
		IncludeStaticDeps:  cfg.IncludeStaticDeps,
		Manifest:           cfg.Manifest,
	}
	doc.HTTP.Timeout = cfg.HTTP.Timeout.String()
	doc.HTTP.UserAgent = cfg.HTTP.UserAgent

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render TOML: %w", err)
	}
	return string(out), nil
}
