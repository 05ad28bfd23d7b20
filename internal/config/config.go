package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "nativetts"

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Install  InstallConfig `mapstructure:"install"`
	TTS      TTSConfig     `mapstructure:"tts"`
	Server   ServerConfig  `mapstructure:"server"`
}

type PathsConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type RuntimeConfig struct {
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTAPIVersion  uint32 `mapstructure:"ort_api_version"`
}

type InstallConfig struct {
	ModelURL  string `mapstructure:"model_url"`
	VoicesURL string `mapstructure:"voices_url"`
	UserAgent string `mapstructure:"user_agent"`
}

type TTSConfig struct {
	Backend string `mapstructure:"backend"`
	CLIPath string `mapstructure:"cli_path"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps each CLI flag to the config key it overrides.
var flagKeys = map[string]string{
	"log-level":               "log_level",
	"data-dir":                "paths.data_dir",
	"ort-lib":                 "runtime.ort_library_path",
	"ort-api-version":         "runtime.ort_api_version",
	"install-model-url":       "install.model_url",
	"install-voices-url":      "install.voices_url",
	"install-user-agent":      "install.user_agent",
	"backend":                 "tts.backend",
	"tts-cli-path":            "tts.cli_path",
	"server-listen-addr":      "server.listen_addr",
	"server-shutdown-timeout": "server.shutdown_timeout",
	"server-max-body-bytes":   "server.max_body_bytes",
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Runtime: RuntimeConfig{
			ORTAPIVersion: 23,
		},
		TTS: TTSConfig{
			Backend: BackendONNX,
		},
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8765",
			ShutdownTimeout: 10,
			MaxBodyBytes:    1 << 20,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("data-dir", defaults.Paths.DataDir, "Application data directory (default: user config dir)")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.Uint32("ort-api-version", defaults.Runtime.ORTAPIVersion, "ONNX Runtime C API version")
	fs.String("install-model-url", defaults.Install.ModelURL, "Override the model download URL")
	fs.String("install-voices-url", defaults.Install.VoicesURL, "Override the voice bank download URL")
	fs.String("install-user-agent", defaults.Install.UserAgent, "User-Agent sent when downloading assets")
	fs.String("backend", defaults.TTS.Backend, "Synthesis backend (onnx|cli)")
	fs.String("tts-cli-path", defaults.TTS.CLIPath, "Path to pocket-tts executable (cli backend)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int64("server-max-body-bytes", defaults.Server.MaxBodyBytes, "Maximum request body size in bytes")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	if err := v.BindEnv("runtime.ort_library_path", "NATIVETTS_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	backend, err := NormalizeBackend(cfg.TTS.Backend)
	if err != nil {
		return Config{}, err
	}
	cfg.TTS.Backend = backend

	return cfg, nil
}

// ResolveDataDir returns the configured data directory, falling back to
// <user config dir>/nativetts.
func (p PathsConfig) ResolveDataDir() (string, error) {
	if p.DataDir != "" {
		return filepath.Abs(p.DataDir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.data_dir", c.Paths.DataDir)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_api_version", c.Runtime.ORTAPIVersion)
	v.SetDefault("install.model_url", c.Install.ModelURL)
	v.SetDefault("install.voices_url", c.Install.VoicesURL)
	v.SetDefault("install.user_agent", c.Install.UserAgent)
	v.SetDefault("tts.backend", c.TTS.Backend)
	v.SetDefault("tts.cli_path", c.TTS.CLIPath)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_bytes", c.Server.MaxBodyBytes)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
