package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jalgreatworks0/ClientForge-sub014/data"
	"github.com/jalgreatworks0/ClientForge-sub014/logging/logger"
)

// Config represents the application configuration handed to the module
// runtime. It is loaded once at boot and shared read-only.
type Config struct {
	AppName string
	RunMode string

	Logger   *logger.Config
	Data     *data.Config
	Feature  *Feature
	Registry *Registry

	Viper *viper.Viper
}

// Load reads configuration from the given file, or from the default
// search paths when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/clientforge")
		v.AddConfigPath("$HOME/.clientforge")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return fromViper(v), nil
}

// fromViper maps a loaded viper instance into the config struct
func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName: v.GetString("app_name"),
		RunMode: v.GetString("run_mode"),
		Logger: &logger.Config{
			Level:      v.GetInt("logger.level"),
			Format:     v.GetString("logger.format"),
			Output:     v.GetString("logger.output"),
			OutputFile: v.GetString("logger.output_file"),
		},
		Data: &data.Config{
			Database: &data.DatabaseConfig{
				Driver:          v.GetString("data.database.driver"),
				Source:          v.GetString("data.database.source"),
				MaxOpenConns:    v.GetInt("data.database.max_open_conns"),
				MaxIdleConns:    v.GetInt("data.database.max_idle_conns"),
				ConnMaxLifetime: v.GetDuration("data.database.conn_max_lifetime"),
			},
			Search: &data.SearchConfig{
				Host:   v.GetString("data.search.host"),
				APIKey: v.GetString("data.search.api_key"),
			},
			Redis: &data.RedisConfig{
				Addr:     v.GetString("data.redis.addr"),
				Username: v.GetString("data.redis.username"),
				Password: v.GetString("data.redis.password"),
				DB:       v.GetInt("data.redis.db"),
			},
		},
		Feature:  getFeatureConfig(v),
		Registry: getRegistryConfig(v),
		Viper:    v,
	}
}

// Watch re-reads the configuration whenever the underlying file changes
// and invokes the callback with the fresh config. Reload failures keep
// the previous config and log a warning.
func (c *Config) Watch(onChange func(*Config)) error {
	if c.Viper == nil || c.Viper.ConfigFileUsed() == "" {
		return fmt.Errorf("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	file := c.Viper.ConfigFileUsed()
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		// Editors replace files rather than writing in place, so debounce
		// bursts of events for the same path.
		var last time.Time
		for {
			select {
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != filepath.Clean(file) {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if time.Since(last) < 100*time.Millisecond {
					continue
				}
				last = time.Now()

				if err := c.Viper.ReadInConfig(); err != nil {
					logger.Warnf(nil, "config reload failed, keeping previous config: %v", err)
					continue
				}
				onChange(fromViper(c.Viper))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf(nil, "config watcher error: %v", err)
			}
		}
	}()

	return nil
}
