package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/chartclip/compress"
)

// Config holds settings read from config.toml. Flags override them.
type Config struct {
	LogLevel            string `toml:"log_level"`
	MaxDecompressedSize int    `toml:"max_decompressed_size"`
	UseClipboard        bool   `toml:"use_clipboard"`
	Format              string `toml:"format"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

var formats = []string{"text", "toml", "cbor"}

func defaultConfig() Config {
	return Config{
		LogLevel:            "warn",
		MaxDecompressedSize: compress.DefaultMaxDecompressedSize,
		Format:              "text",
	}
}

// defaultConfigPath returns $XDG_CONFIG_HOME/chartclip/config.toml, or the
// platform equivalent.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chartclip", "config.toml")
}

// loadConfig reads path over the defaults. A missing file at the default
// location is not an error; a missing file named explicitly is.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.MaxDecompressedSize <= 0 {
		return fmt.Errorf("max_decompressed_size must be positive, got %d", c.MaxDecompressedSize)
	}
	return checkFormat(c.Format)
}

func checkFormat(format string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want text, toml or cbor)", format)
}

// newLogger builds a stderr logger at the configured level. verbose forces
// debug output with the development encoder.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
