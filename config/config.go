// Package config holds the client configuration for the editing API and
// the optional Overpass query endpoint.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	osmapi "github.com/omniscale/go-osmapi"
)

const (
	defaultTimeout = 30 * time.Second

	defaultOverpassRetries   = 3
	defaultOverpassRetryWait = 10 * time.Second
)

type Config struct {
	// BaseURL of the editing API, e.g. https://api.openstreetmap.org
	BaseURL   string   `yaml:"base_url" validate:"required,url"`
	UserAgent string   `yaml:"user_agent"`
	Timeout   Duration `yaml:"timeout"`
	// User/Password for HTTP Basic auth. The library only forwards the
	// credentials, it does not negotiate sessions.
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	Overpass Overpass `yaml:"overpass"`
}

type Overpass struct {
	URL       string   `yaml:"url" validate:"omitempty,url"`
	Retries   int      `yaml:"retries" validate:"gte=0"`
	RetryWait Duration `yaml:"retry_wait"`
}

// Duration parses YAML values like "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var value string
	if err := unmarshal(&value); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// New returns a validated Config for the given API URL, with all other
// options at their defaults.
func New(baseURL string) (*Config, error) {
	c := &Config{BaseURL: baseURL}
	c.applyDefaults()
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a YAML config file, applies defaults and validates.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening config file")
	}
	defer f.Close()

	c := &Config{}
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", filename)
	}
	c.applyDefaults()
	if err := c.Check(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", filename)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "go-osmapi/" + osmapi.Version
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(defaultTimeout)
	}
	if c.Overpass.Retries == 0 {
		c.Overpass.Retries = defaultOverpassRetries
	}
	if c.Overpass.RetryWait == 0 {
		c.Overpass.RetryWait = Duration(defaultOverpassRetryWait)
	}
}

// Check validates the configuration.
func (c *Config) Check() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "validating config")
	}
	return nil
}
