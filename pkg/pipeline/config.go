package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphimg/pkg/errors"
)

// Config is a file of named option profiles:
//
//	default = "small"
//
//	[profiles.small]
//	vertices = 1000
//	edges = 8000
//
//	[profiles.powerlaw]
//	vertices = 65536
//	edges = 1048576
//	source = "rmat"
//
// The format follows the file extension: .toml, .yaml/.yml or .json.
type Config struct {
	Default  string             `json:"default,omitempty" toml:"default" yaml:"default,omitempty"`
	Profiles map[string]Options `json:"profiles" toml:"profiles" yaml:"profiles"`
}

// LoadConfig reads a profile file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"unsupported config format %q (use .toml, .yaml or .json)", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}

	if cfg.Default != "" {
		if _, ok := cfg.Profiles[cfg.Default]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"config %s: default profile %q is not defined", path, cfg.Default)
		}
	}
	return &cfg, nil
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NeedsChoice reports whether a profile must be picked by the user: there
// is more than one and no default.
func (c *Config) NeedsChoice() bool {
	return c.Default == "" && len(c.Profiles) > 1
}

// Profile returns the named profile. An empty name selects the default
// profile, or the only profile if there is just one.
func (c *Config) Profile(name string) (Options, error) {
	if name == "" {
		switch {
		case c.Default != "":
			name = c.Default
		case len(c.Profiles) == 1:
			name = c.ProfileNames()[0]
		case len(c.Profiles) == 0:
			return Options{}, errors.New(errors.ErrCodeInvalidArgument, "config defines no profiles")
		default:
			return Options{}, errors.New(errors.ErrCodeInvalidArgument,
				"config defines several profiles (%s); choose one", strings.Join(c.ProfileNames(), ", "))
		}
	}
	opts, ok := c.Profiles[name]
	if !ok {
		return Options{}, errors.New(errors.ErrCodeInvalidArgument,
			"unknown profile %q (have: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	return opts, nil
}
