// Package hostconfig loads the host program's configuration (directories to
// scan, default scan flags, log format/level, the admin HTTP listen address).
// Grounded on Andrei-cloud-go_hsm/internal/config/config.go's viper setup:
// multi-path search, env-var prefix binding, and default-config-file
// creation.
package hostconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pluffgo/pluffgo/internal/engine"
)

// Config holds the settings a pluffhost process needs at startup.
type Config struct {
	Directories []string
	Scan        struct {
		Upgrade          bool
		StopAllOnUpgrade bool
		StopAllOnInstall bool
		RestartActive    bool
	}
	Log struct {
		Level  string
		Format string
	}
	Admin struct {
		Addr string
	}
}

// Flags converts the scan section into engine.ScanFlags.
func (c Config) Flags() engine.ScanFlags {
	var f engine.ScanFlags
	if c.Scan.Upgrade {
		f |= engine.ScanUpgrade
	}
	if c.Scan.StopAllOnUpgrade {
		f |= engine.ScanStopAllOnUpgrade
	}
	if c.Scan.StopAllOnInstall {
		f |= engine.ScanStopAllOnInstall
	}
	if c.Scan.RestartActive {
		f |= engine.ScanRestartActive
	}
	return f
}

// Load reads configuration from ./pluffhost.yaml, $HOME/.pluffhost/pluffhost.yaml
// or /etc/pluffhost/pluffhost.yaml, environment variables prefixed PLUFFHOST_, and
// defaults, in viper's usual precedence order (highest first: flags bound by
// the caller, env, config file, defaults). v is returned so the caller
// (cmd/pluffhost) can BindPFlag additional command-line flags onto it.
func Load() (Config, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("pluffhost")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pluffhost")
	v.AddConfigPath("/etc/pluffhost/")

	setDefaults(v)

	v.SetEnvPrefix("PLUFFHOST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := ensureDefaultFile(); err != nil {
		return Config{}, nil, fmt.Errorf("creating default config file: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("directories", []string{"plugins"})
	v.SetDefault("scan.upgrade", true)
	v.SetDefault("scan.stopallonupgrade", false)
	v.SetDefault("scan.stopalloninstall", false)
	v.SetDefault("scan.restartactive", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")
	v.SetDefault("admin.addr", "localhost:8089")
}

func ensureDefaultFile() error {
	home := os.Getenv("HOME")
	if home == "" {
		return nil
	}
	dir := filepath.Join(home, ".pluffhost")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file := filepath.Join(dir, "pluffhost.yaml")
	if _, err := os.Stat(file); os.IsNotExist(err) {
		const defaultConfig = `directories:
  - plugins

scan:
  upgrade: true
  stopallonupgrade: false
  stopalloninstall: false
  restartactive: true

log:
  level: info
  format: human

admin:
  addr: localhost:8089
`
		if err := os.WriteFile(file, []byte(defaultConfig), 0o644); err != nil {
			return err
		}
	}
	return nil
}
