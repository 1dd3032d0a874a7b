package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".wtp.yaml"

// Config is the project configuration.
type Config struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	RulesFile  string   `yaml:"rules_file,omitempty"`
}

// Default returns the configuration written by Init.
func Default() Config {
	return Config{
		Name:       "wtp",
		Extensions: []string{".wiki", ".wikitext", ".mediawiki"},
	}
}

// Load reads the configuration at path. A missing file at the default path
// is not an error and yields Default. A relative rules file is resolved
// against the directory of the configuration file.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	config := Default()
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.RulesFile != "" && !filepath.IsAbs(config.RulesFile) {
		config.RulesFile = filepath.Join(filepath.Dir(path), config.RulesFile)
	}
	return config, nil
}

// Init writes the default configuration to path.
func Init(path string) error {
	if path == "" {
		path = DefaultPath
	}

	d, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
