// Package config loads YAML configuration files with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Options controls where configuration is read from.
type Options struct {
	// Path is the config file. When empty, CONFIG_PATH and then
	// configs/<name>.yaml are tried.
	Path string
	// Name is the service name; it also names the file.
	Name string
	// EnvPrefix prefixes environment overrides, e.g. BLOGHEAD_DATABASE_HOST.
	EnvPrefix string
	// Defaults are applied before the file is read.
	Defaults map[string]interface{}
}

const configDir = "configs"

// Load reads the configuration into out. Struct fields are matched by their
// yaml tags and every key can be overridden from the environment.
func Load(opts Options, out interface{}) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.Path
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = filepath.Join(configDir, opts.Name+".yaml")
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := v.Unmarshal(out, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	return nil
}
