package globalconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MrSnakeDoc/plugup/internal/utils/pathutils"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type PersistentConfig struct {
	ProjectsFile string `yaml:"projects_file"`
	CacheBackend string `yaml:"cache_backend,omitempty"`
	CacheDir     string `yaml:"cache_dir,omitempty"`
}

// Env holds PLUGUP_* overrides. PLUGUP_FORCE_UPDATE bypasses every transient
// and is meant for development only.
type Env struct {
	ForceUpdate  bool          `envconfig:"FORCE_UPDATE" default:"false"`
	CacheBackend string        `envconfig:"CACHE_BACKEND"`
	CacheDir     string        `envconfig:"CACHE_DIR"`
	ConfigDir    string        `envconfig:"CONFIG_DIR"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"2s"`
	TransientTTL time.Duration `envconfig:"CACHE_TTL" default:"6h"`
}

const (
	envPrefix  = "plugup"
	configDir  = ".config/plugup"
	configFile = "config.yml"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("invalid PLUGUP_* environment: %w", err)
	}
	return env, nil
}

func GetConfigDir() (string, error) {
	if dir := os.Getenv("PLUGUP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

func LoadPersistentConfig() (*PersistentConfig, error) {
	fullConfigDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(fullConfigDir, configFile)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no configuration found. Please run 'plugup init' first")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg PersistentConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	absPath, err := pathutils.ToAbsolutePath(cfg.ProjectsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects file path: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("projects file not found at %s: %w", cfg.ProjectsFile, err)
	}

	cfg.ProjectsFile = absPath
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = BackendFile
	}
	return &cfg, nil
}

// ApplyEnv lets PLUGUP_CACHE_BACKEND and PLUGUP_CACHE_DIR win over the file.
func (c *PersistentConfig) ApplyEnv(env Env) {
	if env.CacheBackend != "" {
		c.CacheBackend = env.CacheBackend
	}
	if env.CacheDir != "" {
		c.CacheDir = env.CacheDir
	}
}

func (c *PersistentConfig) Save() error {
	fullConfigDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(fullConfigDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	homePath, err := pathutils.ToHomePathFormat(c.ProjectsFile)
	if err != nil {
		return fmt.Errorf("failed to convert to home path format: %w", err)
	}
	out.ProjectsFile = homePath

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(fullConfigDir, configFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
