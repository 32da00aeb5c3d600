package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skyrmion/antop/internal/errors"
	"gopkg.in/yaml.v3"
)

// configHeader is prepended to generated config files.
const configHeader = `# antop configuration
# Run 'antop' to open the dashboard
# Poll intervals: 1s, 2s, 5s, 10s, 30s, 60s

`

// Write marshals the config to YAML and writes it to path, creating parent
// directories as needed.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Failed to create config directory: %s", dir),
				"Check directory permissions")
		}
	}

	content := configHeader + string(data)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}

	return nil
}

// GlobalConfigPath returns ~/.config/antop/config.yaml, or an error when the
// home directory cannot be determined.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set HOME or pass an explicit --config path")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}
