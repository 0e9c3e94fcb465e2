package mcpclient

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config lists the remote tool servers to attach.
type Config struct {
	Servers []*ServerConfig `json:"servers" yaml:"servers" validate:"dive"`
}

// ServerConfig describes one remote tool server. Either Command (a
// subprocess speaking MCP over stdio) or URL (an HTTP endpoint) must be
// set.
type ServerConfig struct {
	// Name is the origin identifier for tools from this server.
	Name string `json:"name" yaml:"name" validate:"required"`
	// Command starts the server as a subprocess, e.g. "npx".
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
	// Args are passed to Command.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
	// URL is the endpoint of an HTTP server.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Enabled defaults to true.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the server should be attached.
func (c *ServerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Validate checks the configuration for completeness.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	for _, srv := range c.Servers {
		if srv.Command == "" && srv.URL == "" {
			return errors.Newf("server %q: either command or url is required", srv.Name)
		}
	}
	return nil
}

// LoadConfig loads and validates the servers configuration from file.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
