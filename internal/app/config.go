package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	defaultQVMURL = "http://127.0.0.1:5000"
	configFile    = "config.yaml"
)

// Config holds runtime wiring options for building the CLI's
// dependency graph. QVMURL, Device and Debug can be pinned in
// <home>/config.yaml; command-line flags override the file.
type Config struct {
	// Home is the config directory, e.g. $HOME/.quilbridge.
	Home string `yaml:"-"`
	// QVMURL is the qvmd base URL, e.g. http://127.0.0.1:5000.
	QVMURL string `yaml:"qvm_url"`
	// Device names the default execution device; empty picks the
	// executor's first QPU.
	Device string `yaml:"device"`
	// Debug enables development logging.
	Debug bool `yaml:"debug"`
	// Timeout for individual qvmd requests; zero uses the client
	// default.
	Timeout time.Duration `yaml:"-"`
}

// WithDefaults returns a copy with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.QVMURL == "" {
		c.QVMURL = defaultQVMURL
	}
	return c
}

// LoadConfig reads <home>/config.yaml when present. A missing file is
// not an error: the zero config plus defaults is a working setup.
func LoadConfig(home string) (Config, error) {
	cfg := Config{Home: home}
	b, err := os.ReadFile(filepath.Join(home, configFile))
	if os.IsNotExist(err) {
		return cfg.WithDefaults(), nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "app: read config")
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "app: parse config")
	}
	return cfg.WithDefaults(), nil
}
