// Package config loads and validates the server's YAML configuration.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Listener describes one address the server accepts connections on.
type Listener struct {
	Address string `yaml:"address"`
	TLS     bool   `yaml:"tls"`
	TLSCert string `yaml:"tls_cert,omitempty"`
	TLSKey  string `yaml:"tls_key,omitempty"`
}

// Config is the core's entire view of configuration: a hostname, an MOTD
// (split into lines), and a named set of listeners, plus optional
// settings for the character encoding, ping interval and timeout
// (durations), and maximum line length.
type Config struct {
	Hostname string              `yaml:"hostname"`
	MOTD     string              `yaml:"motd"`
	Encoding string              `yaml:"encoding"`
	PingTime string              `yaml:"ping_time"`
	DeadTime string              `yaml:"dead_time"`
	MaxLine  int                 `yaml:"max_line"`
	Listeners map[string]Listener `yaml:"listeners"`
}

// MOTDLines splits Config.MOTD on newlines, the shape the session's
// MOTD-burst handler wants.
func (c Config) MOTDLines() []string {
	if c.MOTD == "" {
		return nil
	}
	return strings.Split(c.MOTD, "\n")
}

// Load reads and validates configuration from a YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse config file")
	}

	if err := c.validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if c.Hostname == "" {
		return errors.New("hostname is required")
	}
	if len(c.Listeners) == 0 {
		return errors.New("at least one listener is required")
	}
	for name, l := range c.Listeners {
		if l.Address == "" {
			return errors.Errorf("listener %q: address is required", name)
		}
		if l.TLS && (l.TLSCert == "" || l.TLSKey == "") {
			return errors.Errorf("listener %q: tls_cert and tls_key are required when tls is enabled", name)
		}
	}
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	return nil
}
