// Package config is used to load the configuration file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/simbio/internal/utils"
	"github.com/blacktop/simbio/pkg/coresim"
	"github.com/spf13/viper"
)

// xcodeSelect is swapped out in tests
var xcodeSelect = utils.GetXCodePath

// Config is the configuration struct
type Config struct {
	DeveloperDir string `mapstructure:"developer-dir"`
	Framework    string `mapstructure:"framework"`
	UDID         string `mapstructure:"udid"`
}

func (c *Config) verify() error {
	if len(c.DeveloperDir) == 0 {
		if dir, err := xcodeSelect(); err == nil {
			c.DeveloperDir = dir
		} else {
			log.WithError(err).Debugf("xcode-select failed, using %s", coresim.DefaultDeveloperDir)
			c.DeveloperDir = coresim.DefaultDeveloperDir
		}
	}
	c.DeveloperDir = filepath.Clean(c.DeveloperDir)
	if strings.HasSuffix(c.DeveloperDir, ".app") {
		c.DeveloperDir = filepath.Join(c.DeveloperDir, "Contents", "Developer")
	}
	if len(c.Framework) > 0 {
		if _, err := os.Stat(c.Framework); err != nil {
			return fmt.Errorf("invalid framework path %s: %w", c.Framework, err)
		}
	}
	c.UDID = strings.TrimSpace(c.UDID)
	return nil
}

// CoreSimulator returns the framework loading options
func (c *Config) CoreSimulator() coresim.Config {
	return coresim.Config{
		DeveloperDir:  c.DeveloperDir,
		FrameworkPath: c.Framework,
	}
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	var c *Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
