package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultStringLength is the size of the buffer the harness hands to
// RemoveHead when no length was configured.
const DefaultStringLength = 1024

type Config struct {
	// FailPercent is the chance that an allocation is refused.
	FailPercent  int          `yaml:"fail_percent"`
	Seed         int64        `yaml:"seed"`
	StringLength int          `yaml:"string_length"`
	Verbose      bool         `yaml:"verbose"`
	Echo         bool         `yaml:"echo"`
	LogLevel     logrus.Level `yaml:"-"`
	RawLogLevel  string       `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Seed:         1,
		StringLength: DefaultStringLength,
		LogLevel:     logrus.InfoLevel,
		RawLogLevel:  logrus.InfoLevel.String(),
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks ranges and resolves RawLogLevel into LogLevel.
func (c *Config) Validate() error {
	if c.FailPercent < 0 || c.FailPercent > 100 {
		return errors.Errorf("fail_percent %d out of range 0..100", c.FailPercent)
	}
	if c.StringLength < 0 {
		return errors.Errorf("string_length %d must not be negative", c.StringLength)
	}
	if c.RawLogLevel != "" {
		level, err := logrus.ParseLevel(c.RawLogLevel)
		if err != nil {
			return errors.Wrap(err, "log_level")
		}
		c.LogLevel = level
	}
	return nil
}
