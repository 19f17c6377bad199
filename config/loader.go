package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// maxEnvKeyParts bounds how many underscore-separated parts of an
// environment key are expanded into nested key variants.
const maxEnvKeyParts = 8

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment. Variables that are
// already set win.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Defaulter is implemented by configs that fill in their own defaults.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by configs that check themselves.
type Validator interface {
	Validate() error
}

// LoaderConfig holds the loader dependencies and file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
}

// LoaderOption configures Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the file system, mostly for tests.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit YAML file. The file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file. The file must exist.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment variable prefix derived from the
// service name.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Files are the config and env files the loader settled on. Either may be
// empty.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolve returns the explicit files from lc, or searches the standard
// locations for serviceName when none were given.
func Resolve(serviceName string, lc LoaderConfig) (Files, error) {
	files := Files{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return files, fmt.Errorf("config file %s not found", files.ConfigFile)
		}
	} else {
		files.ConfigFile = firstExisting(lc.FileSystem, configSearchPaths(serviceName))
	}

	if files.EnvFile != "" {
		if !lc.FileSystem.Exists(files.EnvFile) {
			return files, fmt.Errorf("env file %s not found", files.EnvFile)
		}
	} else {
		files.EnvFile = firstExisting(lc.FileSystem, envSearchPaths(serviceName))
	}
	return files, nil
}

func configSearchPaths(serviceName string) []string {
	return []string{
		"./cmd/" + serviceName + "/config.yml",
		"../cmd/" + serviceName + "/config.yml",
		"../../cmd/" + serviceName + "/config.yml",
		"./config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	return []string{
		"./cmd/" + serviceName + "/.env",
		"../cmd/" + serviceName + "/.env",
		"./.env",
		"../.env",
	}
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// Load reads configuration for serviceName into cfg. Sources, lowest
// precedence first: the YAML file, then prefixed environment variables,
// with the .env file loaded into the environment beforehand. If cfg
// implements Defaulter or Validator those run last.
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.EnvPrefix == "" {
		lc.EnvPrefix = EnvPrefix(serviceName)
	}

	files, err := Resolve(serviceName, lc)
	if err != nil {
		return err
	}

	v := viper.New()
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}
	if files.EnvFile != "" {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
	}
	bindPrefixedEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", serviceName, err)
	}

	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("invalid config for %s: %w", serviceName, err)
		}
	}
	return nil
}

// EnvPrefix derives the environment prefix for a service name:
// "session-probe" becomes "SESSION_PROBE".
func EnvPrefix(serviceName string) string {
	return strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_"))
}

// bindPrefixedEnv sets every PREFIX_KEY=value from environ on v. Because an
// underscore may be a nesting separator or part of a key, each variable is
// set under every reading of its underscores.
func bindPrefixedEnv(v *viper.Viper, prefix string, environ []string) {
	want := prefix + "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, want) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, want)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands LOGGING_NO_COLOR into logging_no_color,
// logging.no_color, logging_no.color and logging.no.color.
func envKeyVariants(key string) []string {
	parts := strings.Split(strings.ToLower(key), "_")
	if len(parts) == 0 || parts[0] == "" {
		return nil
	}
	if len(parts) > maxEnvKeyParts {
		return []string{strings.Join(parts, "_"), strings.Join(parts, ".")}
	}

	variants := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, len(variants)*2)
		for _, prefix := range variants {
			next = append(next, prefix+"_"+part, prefix+"."+part)
		}
		variants = next
	}
	return variants
}
