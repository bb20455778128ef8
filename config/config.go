package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/gommon/bytes"
)

//go:embed default.toml
var defaultConfig string

var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a string in TOML, e.g. "72h"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Size is a byte size written as a string in TOML, e.g. "5MB"
type Size int64

func (s *Size) UnmarshalText(text []byte) error {
	parsed, err := bytes.Parse(string(text))
	if err != nil {
		return err
	}
	*s = Size(parsed)
	return nil
}

func (s Size) String() string {
	return bytes.Format(int64(s))
}

type TomlServer struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	CorsOrigins   []string `toml:"cors_origins"`
	UploadsDir    string   `toml:"uploads_dir"`
	MaxUploadSize Size     `toml:"max_upload_size"`
}

type TomlDatabase struct {
	Path string `toml:"path"`
}

type TomlAdmin struct {
	Password   string   `toml:"password"`
	JWTSecret  string   `toml:"jwt_secret"`
	SessionTTL Duration `toml:"session_ttl"`
}

type TomlLLM struct {
	BaseURL        string   `toml:"base_url"`
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	FallbackModels []string `toml:"fallback_models"`
	Timeout        Duration `toml:"timeout"`
	Persona        string   `toml:"persona"`
	CVPath         string   `toml:"cv_path"`
}

type TomlGitHub struct {
	Username string `toml:"username"`
	Topic    string `toml:"topic"`
	Token    string `toml:"token"`
	BaseURL  string `toml:"base_url"`
}

type TomlSchedule struct {
	BlogsInterval    Duration `toml:"blogs_interval"`
	ProjectsInterval Duration `toml:"projects_interval"`
}

// TomlCategory is one row of the ordered taxonomy table. Order in the file is priority.
type TomlCategory struct {
	Label    string   `toml:"label"`
	Keywords []string `toml:"keywords"`
}

// TomlPipeline configures ingestion for one content kind
type TomlPipeline struct {
	Sources        []string       `toml:"sources"`
	Capacity       int            `toml:"capacity"`
	PerSourceLimit int            `toml:"per_source_limit"`
	FetchTimeout   Duration       `toml:"fetch_timeout"`
	MinBodyLength  int            `toml:"min_body_length"`
	MaxBodyLength  int            `toml:"max_body_length"`
	ExcerptLength  int            `toml:"excerpt_length"`
	Padding        string         `toml:"padding"`
	UseLLM         bool           `toml:"use_llm"`
	DenyEnabled    bool           `toml:"deny_enabled"`
	Deny           []string       `toml:"deny"`
	Fallback       string         `toml:"fallback"`
	Taxonomy       []TomlCategory `toml:"taxonomy"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Server   TomlServer   `toml:"server"`
	Database TomlDatabase `toml:"database"`
	Admin    TomlAdmin    `toml:"admin"`
	LLM      TomlLLM      `toml:"llm"`
	GitHub   TomlGitHub   `toml:"github"`
	Schedule TomlSchedule `toml:"schedule"`
	Blogs    TomlPipeline `toml:"blogs"`
	Tools    TomlPipeline `toml:"tools"`
}

// Default returns the embedded configuration
func Default() (*TomlConfig, error) {
	var config TomlConfig
	if _, err := toml.Decode(defaultConfig, &config); err != nil {
		return nil, fmt.Errorf("error parsing default config: %w", err)
	}
	return &config, nil
}

// LoadConfig reads the file at path on top of the defaults. An empty path returns the defaults.
func LoadConfig(path string) (*TomlConfig, error) {
	config, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		return config, config.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Tables listed in the file replace the default ones instead of merging
	// element by element, so a custom taxonomy never inherits stale rows.
	var overlay TomlConfig
	meta, err := toml.Decode(string(data), &overlay)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if meta.IsDefined("blogs", "taxonomy") {
		config.Blogs.Taxonomy = nil
	}
	if meta.IsDefined("tools", "taxonomy") {
		config.Tools.Taxonomy = nil
	}

	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return config, config.Validate()
}

func (c *TomlConfig) Validate() error {
	if c.Schedule.BlogsInterval.Duration <= 0 || c.Schedule.ProjectsInterval.Duration <= 0 {
		return fmt.Errorf("%w: schedule intervals must be positive", ErrInvalid)
	}
	if err := c.Blogs.validate("blogs"); err != nil {
		return err
	}
	return c.Tools.validate("tools")
}

func (p *TomlPipeline) validate(name string) error {
	if p.Capacity <= 0 {
		return fmt.Errorf("%w: %s.capacity must be positive", ErrInvalid, name)
	}
	if p.PerSourceLimit <= 0 {
		return fmt.Errorf("%w: %s.per_source_limit must be positive", ErrInvalid, name)
	}
	if p.Fallback == "" {
		return fmt.Errorf("%w: %s.fallback must be set", ErrInvalid, name)
	}

	seen := map[string]bool{p.Fallback: true}
	for _, category := range p.Taxonomy {
		if category.Label == "" {
			return fmt.Errorf("%w: %s.taxonomy has an empty label", ErrInvalid, name)
		}
		if seen[category.Label] {
			return fmt.Errorf("%w: %s.taxonomy label %q is duplicated", ErrInvalid, name, category.Label)
		}
		seen[category.Label] = true
	}
	return nil
}
