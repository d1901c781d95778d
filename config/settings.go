package config

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Addr     string `yaml:"addr"`
	DataDir  string `yaml:"data_dir"`
	WebRoot  string `yaml:"web_root"`
	Encoding string `yaml:"encoding"`
	Verbose  bool   `yaml:"verbose"`
}

func DefaultSettings() Settings {
	return Settings{
		Addr:     ":8000",
		DataDir:  ".",
		WebRoot:  "",
		Encoding: DefaultNameEncoding,
	}
}

// LoadSettings reads a yaml file on top of DefaultSettings.
// A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrapf(err, "Failed to read settings %q", path)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	return s, nil
}

// Apply pushes process-wide values (name encoding) from the settings.
func (s Settings) Apply() error {
	if s.Encoding != "" {
		if err := SetNameEncoding(s.Encoding); err != nil {
			return err
		}
	}
	return nil
}
