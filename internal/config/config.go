// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full focusprobe configuration tree.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Probe  ProbeConfig  `mapstructure:"probe" yaml:"probe"`
}

// LoggerConfig configures the zap logger bootstrap.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File output; empty disables it. Rotation handled by lumberjack.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ProbeConfig holds the default engine settings the CLI applies when the
// command line does not override them.
type ProbeConfig struct {
	Trap      TrapSettings      `mapstructure:"trap" yaml:"trap"`
	Navigator NavigatorSettings `mapstructure:"navigator" yaml:"navigator"`
}

// TrapSettings mirrors focus.TrapConfig for file/env configuration.
type TrapSettings struct {
	Enabled                 bool `mapstructure:"enabled" yaml:"enabled"`
	RestoreFocus            bool `mapstructure:"restore_focus" yaml:"restore_focus"`
	AutoFocus               bool `mapstructure:"auto_focus" yaml:"auto_focus"`
	PreventScroll           bool `mapstructure:"prevent_scroll" yaml:"prevent_scroll"`
	AllowOutsideClick       bool `mapstructure:"allow_outside_click" yaml:"allow_outside_click"`
	EscapeDeactivates       bool `mapstructure:"escape_deactivates" yaml:"escape_deactivates"`
	ClickOutsideDeactivates bool `mapstructure:"click_outside_deactivates" yaml:"click_outside_deactivates"`
	ReturnFocusOnDeactivate bool `mapstructure:"return_focus_on_deactivate" yaml:"return_focus_on_deactivate"`
}

// NavigatorSettings mirrors focus.NavigatorConfig.
type NavigatorSettings struct {
	WrapAround      bool     `mapstructure:"wrap_around" yaml:"wrap_around"`
	SkipHidden      bool     `mapstructure:"skip_hidden" yaml:"skip_hidden"`
	SkipDisabled    bool     `mapstructure:"skip_disabled" yaml:"skip_disabled"`
	CustomSelectors []string `mapstructure:"custom_selectors" yaml:"custom_selectors"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "focusprobe",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      14,
		},
		Probe: ProbeConfig{
			Trap: TrapSettings{
				Enabled:                 true,
				RestoreFocus:            true,
				AutoFocus:               true,
				EscapeDeactivates:       true,
				ReturnFocusOnDeactivate: true,
			},
			Navigator: NavigatorSettings{
				WrapAround:   true,
				SkipHidden:   true,
				SkipDisabled: true,
			},
		},
	}
}

// Load reads configuration from the given file (or ./focusprobe.yaml when
// path is empty), layered over defaults and FOCUSPROBE_* environment
// variables. A missing default config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("focusprobe")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FOCUSPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading %q: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.service_name", d.Logger.ServiceName)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)

	v.SetDefault("probe.trap.enabled", d.Probe.Trap.Enabled)
	v.SetDefault("probe.trap.restore_focus", d.Probe.Trap.RestoreFocus)
	v.SetDefault("probe.trap.auto_focus", d.Probe.Trap.AutoFocus)
	v.SetDefault("probe.trap.escape_deactivates", d.Probe.Trap.EscapeDeactivates)
	v.SetDefault("probe.trap.return_focus_on_deactivate", d.Probe.Trap.ReturnFocusOnDeactivate)

	v.SetDefault("probe.navigator.wrap_around", d.Probe.Navigator.WrapAround)
	v.SetDefault("probe.navigator.skip_hidden", d.Probe.Navigator.SkipHidden)
	v.SetDefault("probe.navigator.skip_disabled", d.Probe.Navigator.SkipDisabled)
}
