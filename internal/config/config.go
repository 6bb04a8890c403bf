package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/authorbio"
	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "blogbuilder.yaml"

// Config is the site configuration. It is loaded once per build and treated
// as read-only afterwards.
type Config struct {
	BaseURL     string          `yaml:"base_url"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description,omitempty"`
	Params      map[string]any  `yaml:"params,omitempty"`
	AuthorBio   AuthorBioConfig `yaml:"author_bio,omitempty"`
	Build       BuildConfig     `yaml:"build,omitempty"`
	Logging     LoggingConfig   `yaml:"logging,omitempty"`
	Metrics     MetricsConfig   `yaml:"metrics,omitempty"`

	// Root is the directory relative paths are resolved against (the
	// directory holding the config file).
	Root string `yaml:"-"`
}

// AuthorBioConfig controls where the bio partial is placed.
type AuthorBioConfig struct {
	// Auto appends the bio at the end of every page whose decision shows it.
	// Disable it to place bios manually with the author-bio shortcode.
	Auto *bool `yaml:"auto,omitempty"`
}

// BuildConfig holds content and output locations and build behaviour.
type BuildConfig struct {
	ContentDir  string `yaml:"content_dir,omitempty"`
	LayoutsDir  string `yaml:"layouts_dir,omitempty"`
	OutputDir   string `yaml:"output_dir,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Drafts      bool   `yaml:"drafts,omitempty"`
	Sanitize    *bool  `yaml:"sanitize,omitempty"`
	Incremental bool   `yaml:"incremental,omitempty"`
	Clean       bool   `yaml:"clean,omitempty"`
}

// MetricsConfig enables writing build metrics in the Prometheus text format.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads the configuration file at path. .env and .env.local next to the
// working directory are loaded first so ${VAR} references can be expanded.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.ConfigInvalid(path, fmt.Errorf("read: %w", err))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}
	cfg.Root = abs
	return cfg, nil
}

// Parse decodes configuration bytes, expands environment variables, applies
// defaults and validates the result. Root is left empty.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "My Blog"
	}
	if c.Build.ContentDir == "" {
		c.Build.ContentDir = "content"
	}
	if c.Build.LayoutsDir == "" {
		c.Build.LayoutsDir = "layouts"
	}
	if c.Build.OutputDir == "" {
		c.Build.OutputDir = "public"
	}
	if c.Build.Concurrency == 0 {
		c.Build.Concurrency = 8
	}
	if c.Params == nil {
		c.Params = map[string]any{}
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Validate checks values that would otherwise fail late in the build.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return derrors.ValidationFailed("base_url", fmt.Sprintf("%q is not an absolute URL", c.BaseURL))
		}
	}
	if c.Build.Concurrency < 1 {
		return derrors.ValidationFailed("build.concurrency", "must be at least 1")
	}
	if filepath.Clean(c.Build.ContentDir) == filepath.Clean(c.Build.OutputDir) {
		return derrors.ValidationFailed("build.output_dir", "must differ from build.content_dir")
	}
	return nil
}

// AutoAuthorBio reports whether the bio partial is appended automatically.
// Defaults to true.
func (c *Config) AutoAuthorBio() bool {
	return c.AuthorBio.Auto == nil || *c.AuthorBio.Auto
}

// SanitizeHTML reports whether rendered Markdown is sanitised. Defaults to true.
func (c *Config) SanitizeHTML() bool {
	return c.Build.Sanitize == nil || *c.Build.Sanitize
}

// ContentPath returns the absolute content directory.
func (c *Config) ContentPath() string { return c.resolve(c.Build.ContentDir) }

// LayoutsPath returns the absolute layout override directory.
func (c *Config) LayoutsPath() string { return c.resolve(c.Build.LayoutsDir) }

// OutputPath returns the absolute output directory.
func (c *Config) OutputPath() string { return c.resolve(c.Build.OutputDir) }

// MetricsPath returns the metrics textfile path, or "" when metrics are off.
func (c *Config) MetricsPath() string {
	if c.Metrics.Textfile == "" {
		return ""
	}
	return c.resolve(c.Metrics.Textfile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// SiteParams extracts the author parameters from the params namespace. Keys
// are matched case-insensitively; missing or non-string values yield "".
func (c *Config) SiteParams() authorbio.SiteParams {
	return authorbio.SiteParams{
		AuthorsName:        c.param("authors_name"),
		AuthorsDescription: c.param("authors_description"),
		AuthorsLinkedIn:    c.param("authors_linkedin"),
	}
}

func (c *Config) param(key string) string {
	if v, ok := c.Params[key]; ok {
		return scalarString(v)
	}
	for k, v := range c.Params {
		if strings.EqualFold(k, key) {
			return scalarString(v)
		}
	}
	return ""
}

func scalarString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(vv)
	}
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	auto := true
	example := Config{
		BaseURL:     "https://example.com/",
		Title:       "My Blog",
		Description: "Notes and write-ups",
		Params: map[string]any{
			"authors_name":        "Your Name",
			"authors_description": "A short bio shown under each post.",
			"authors_linkedin":    "https://www.linkedin.com/in/your-handle",
		},
		AuthorBio: AuthorBioConfig{Auto: &auto},
		Build: BuildConfig{
			ContentDir:  "content",
			LayoutsDir:  "layouts",
			OutputDir:   "public",
			Concurrency: 8,
			Clean:       true,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
