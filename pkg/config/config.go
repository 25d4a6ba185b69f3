package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const appName = "inkwell"

// paths are fixed by Init and read through the getters below.
var paths struct {
	dir     string
	file    string
	session string
}

// defaults is every key the client reads. Values in config.toml or
// INKWELL_* variables override them.
var defaults = map[string]any{
	"api.base_url":   "http://localhost:5000/api",
	"api.timeout":    30,
	"api.user_agent": "Inkwell-CLI/0.1.0",

	"ws.url":               "ws://localhost:5000/ws",
	"ws.heartbeat_ms":      30000,
	"ws.reconnect_base_ms": 2000,
	"ws.reconnect_max_ms":  30000,

	"output.format": "text",

	"log.level":        "info",
	"log.max_size_mb":  10,
	"log.max_backups":  3,
	"log.max_age_days": 14,

	"telemetry.enabled":       false,
	"telemetry.otlp_endpoint": "localhost:4318",
	"telemetry.sample_rate":   1.0,
	"telemetry.environment":   "development",

	"engine.wait_timeout": "10s",
}

// pathKeys hold file paths and get ~ expanded on read.
var pathKeys = map[string]bool{"log.file": true}

// Init loads configuration. An empty configPath means the per-user default
// location. The directory is created if missing.
func Init(configPath string) error {
	if configPath == "" {
		dir, err := userConfigDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, "config.toml")
	}
	configPath = expandPath(configPath)

	paths.file = configPath
	paths.dir = filepath.Dir(configPath)
	paths.session = filepath.Join(paths.dir, "session")
	if err := os.MkdirAll(paths.dir, 0700); err != nil {
		return err
	}

	viper.Reset()
	viper.SetConfigType("toml")
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetDefault("log.file", filepath.Join(paths.dir, appName+".log"))

	// site-wide file first, the user's file merged over it
	for _, p := range append(systemConfigFiles(), paths.file) {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		viper.SetConfigFile(p)
		if err := viper.MergeInConfig(); err != nil {
			return err
		}
	}
	viper.SetConfigFile(paths.file)

	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return nil
}

func userConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			var err error
			if base, err = os.UserConfigDir(); err != nil {
				return "", err
			}
		}
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func systemConfigFiles() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramData"), "Inkwell", "config.toml")}
	}
	return []string{"/etc/inkwell/config.toml"}
}

func expandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func GetString(key string) string {
	v := viper.GetString(key)
	if pathKeys[key] {
		return expandPath(v)
	}
	return v
}

func GetInt(key string) int { return viper.GetInt(key) }

func GetBool(key string) bool { return viper.GetBool(key) }

func GetFloat(key string) float64 { return viper.GetFloat64(key) }

func GetDuration(key string) time.Duration { return viper.GetDuration(key) }

// Set overrides a value for this process only.
func Set(key string, value any) { viper.Set(key, value) }

// SetString sets a value and writes the user's config file.
func SetString(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(paths.file)
}

func GetConfigDir() string { return paths.dir }

// GetSessionPath is where the signed-in session is persisted.
func GetSessionPath() string { return paths.session }
