package util

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Configuration carries the runtime settings resolved before a program
// executes.
type Configuration struct {
	// TypeCheck is the contract-enforcement mode name: off, warn or on.
	TypeCheck string `toml:"type_check" yaml:"type_check"`

	// LogLevel maps onto slog levels at startup.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Aliases maps annotation names to their expansion text.
	Aliases map[string]string `toml:"aliases" yaml:"aliases"`
}

// EnvTypeCheck overrides the project file when set.
const EnvTypeCheck = "SONA_TYPE_CHECK"

const (
	tomlProjectFile = "sona.toml"
	yamlProjectFile = "sona.yaml"
)

func defaultConfiguration() Configuration {
	return Configuration{
		TypeCheck: "off",
		LogLevel:  "info",
	}
}

// Load resolves the configuration for a project directory. Precedence,
// highest first: the explicit override, the environment variable, a
// sona.toml or sona.yaml project file, then built-in defaults.
func Load(dir, override string) (Configuration, error) {
	cfg := defaultConfiguration()

	if err := loadProjectFile(dir, &cfg); err != nil {
		return cfg, err
	}

	if env := os.Getenv(EnvTypeCheck); env != "" {
		cfg.TypeCheck = env
	}
	if override != "" {
		cfg.TypeCheck = override
	}

	return cfg, nil
}

// loadProjectFile reads sona.toml if present, else sona.yaml. A file
// that exists but cannot be parsed is a hard error; running with
// silently ignored settings is worse than failing.
func loadProjectFile(dir string, cfg *Configuration) error {
	tomlPath := filepath.Join(dir, tomlProjectFile)
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return errors.Wrapf(err, "parsing %s", tomlPath)
		}
		return nil
	}

	yamlPath := filepath.Join(dir, yamlProjectFile)
	if _, err := os.Stat(yamlPath); err == nil {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return errors.Wrapf(err, "reading %s", yamlPath)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(err, "parsing %s", yamlPath)
		}
		return nil
	}

	return nil
}
