package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	DefaultWidget    = "default"
	DefaultNamespace = "persona"
	DefaultServeAddr = "127.0.0.1:7381"
)

type Config struct {
	Backend  string      `mapstructure:"backend" yaml:"backend,omitempty"`
	Dir      string      `mapstructure:"dir" yaml:"dir,omitempty"`
	Widget   string      `mapstructure:"widget" yaml:"widget,omitempty"`
	Language string      `mapstructure:"language" yaml:"language,omitempty"`
	Format   string      `mapstructure:"format" yaml:"format,omitempty"`
	Redis    RedisConfig `mapstructure:"redis" yaml:"redis,omitempty"`
	Log      LogConfig   `mapstructure:"log" yaml:"log,omitempty"`
	Serve    ServeConfig `mapstructure:"serve" yaml:"serve,omitempty"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr,omitempty"`
	Namespace string `mapstructure:"namespace" yaml:"namespace,omitempty"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode" yaml:"mode,omitempty"`
	Level string `mapstructure:"level" yaml:"level,omitempty"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.persona).
	if v := strings.TrimSpace(os.Getenv("PERSONA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("widget", DefaultWidget)
	v.SetDefault("format", "json")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.namespace", DefaultNamespace)
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "warn")
	v.SetDefault("serve.addr", DefaultServeAddr)
}

// LoadConfig merges defaults, the global config file, PERSONA_* environment
// variables and (when non-nil) the flags of flags that share a key name.
// Flags win over the environment, which wins over the file.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("PERSONA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if flags != nil {
		for _, key := range []string{"backend", "dir", "widget", "language", "format"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendSQLite, BackendRedis)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// SaveConfig writes cfg to the global config file. The previous file is kept
// as config.yaml.bak.
func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.yaml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

// SetConfigValue updates one dotted key of the global config file.
func SetConfigValue(key, value string) (*Config, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "backend":
		cfg.Backend = value
	case "dir":
		cfg.Dir = value
	case "widget":
		cfg.Widget = value
	case "language":
		cfg.Language = value
	case "format":
		cfg.Format = value
	case "redis.addr":
		cfg.Redis.Addr = value
	case "redis.namespace":
		cfg.Redis.Namespace = value
	case "log.mode":
		cfg.Log.Mode = value
	case "log.level":
		cfg.Log.Level = value
	case "serve.addr":
		cfg.Serve.Addr = value
	default:
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
