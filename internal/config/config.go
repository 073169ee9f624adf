// Package config provides configuration management for rigcheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

const (
	// CurrentVersion is the config schema version written by `config init`.
	CurrentVersion = 1

	// DefaultCommandTimeout bounds a single probe command.
	DefaultCommandTimeout = 10 * time.Second

	// AppName is used for the user config directory.
	AppName = "rigcheck"
)

// ProjectConfigNames lists the project config file names, most preferred first.
var ProjectConfigNames = []string{".rigcheck.yaml", ".rigcheck.yml"}

// Config represents the complete rigcheck configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Detect     DetectConfig     `yaml:"detect" json:"detect"`
	Thresholds ThresholdsConfig `yaml:"thresholds" json:"thresholds"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// DetectConfig controls how probes reach the host.
type DetectConfig struct {
	CommandTimeout time.Duration `yaml:"command_timeout" json:"command_timeout"`
	Python         string        `yaml:"python" json:"python"`
	OllamaHost     string        `yaml:"ollama_host" json:"ollama_host"`
	LMStudioHost   string        `yaml:"lmstudio_host" json:"lmstudio_host"`
}

// ThresholdsConfig holds the classification cutoffs.
type ThresholdsConfig struct {
	RAMOkGB          float64 `yaml:"ram_ok_gb" json:"ram_ok_gb"`
	RAMWarnGB        float64 `yaml:"ram_warn_gb" json:"ram_warn_gb"`
	MinCUDAVersion   string  `yaml:"min_cuda_version" json:"min_cuda_version"`
	MinWSLKernel     string  `yaml:"min_wsl_kernel" json:"min_wsl_kernel"`
	HighEndGPUVRAMMB int     `yaml:"high_end_gpu_vram_mb" json:"high_end_gpu_vram_mb"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Detect: DetectConfig{
			CommandTimeout: DefaultCommandTimeout,
			Python:         detect.DefaultPython,
			OllamaHost:     detect.DefaultOllamaHost,
			LMStudioHost:   detect.DefaultLMStudioHost,
		},
		Thresholds: ThresholdsConfig{
			RAMOkGB:          detect.DefaultRAMOkGB,
			RAMWarnGB:        detect.DefaultRAMWarnGB,
			MinCUDAVersion:   detect.DefaultMinCUDAVersion,
			MinWSLKernel:     detect.DefaultMinWSLKernel,
			HighEndGPUVRAMMB: detect.DefaultHighEndGPUVRAMMB,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// Settings converts the config into the detector's probe settings.
func (c *Config) Settings() detect.Settings {
	return detect.Settings{
		Python:       c.Detect.Python,
		OllamaHost:   c.Detect.OllamaHost,
		LMStudioHost: c.Detect.LMStudioHost,
		Thresholds: detect.Thresholds{
			RAMOkGB:          c.Thresholds.RAMOkGB,
			RAMWarnGB:        c.Thresholds.RAMWarnGB,
			MinCUDAVersion:   c.Thresholds.MinCUDAVersion,
			MinWSLKernel:     c.Thresholds.MinWSLKernel,
			HighEndGPUVRAMMB: c.Thresholds.HighEndGPUVRAMMB,
		},
	}
}

// GetUserConfigPath returns the path to the user config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/rigcheck/config.yaml.
func GetUserConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, "config.yaml")
}

// GetUserConfigDir returns the directory containing the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists checks if a user config file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if none exists.
// .rigcheck.yaml wins over .rigcheck.yml.
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectConfigNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadUserConfig returns nil, nil when there is no user config.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if configPath == "" || !fileExists(configPath) {
		return nil, nil
	}

	cfg := &Config{}
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the given directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config ($XDG_CONFIG_HOME/rigcheck/config.yaml)
//  3. Project config (.rigcheck.yaml in dir)
//  4. A .env file in dir, which never overrides variables already set and
//     is re-read on every call
//  5. Environment variables (RIGCHECK_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()
	var dotenv map[string]string

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if dir != "" {
		if path := ProjectConfigPath(dir); path != "" {
			project := &Config{}
			if err := project.loadYAML(path); err != nil {
				return nil, fmt.Errorf("failed to load project config from %s: %w", path, err)
			}
			cfg.mergeWith(project)
		}

		vars, err := loadDotEnv(filepath.Join(dir, ".env"))
		if err != nil {
			return nil, err
		}
		dotenv = vars
	}

	if err := cfg.applyEnvOverrides(envLookup(dotenv)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads the variables in path without exporting them, so every
// Load sees the file as it is now.
func loadDotEnv(path string) (map[string]string, error) {
	if !fileExists(path) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return vars, nil
}

// envLookup resolves a variable from the process environment, falling back
// to dotenv for variables the environment does not set.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// mergeWith copies every non-zero field of other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Detect.CommandTimeout != 0 {
		c.Detect.CommandTimeout = other.Detect.CommandTimeout
	}
	if other.Detect.Python != "" {
		c.Detect.Python = other.Detect.Python
	}
	if other.Detect.OllamaHost != "" {
		c.Detect.OllamaHost = normalizeHost(other.Detect.OllamaHost)
	}
	if other.Detect.LMStudioHost != "" {
		c.Detect.LMStudioHost = normalizeHost(other.Detect.LMStudioHost)
	}

	if other.Thresholds.RAMOkGB != 0 {
		c.Thresholds.RAMOkGB = other.Thresholds.RAMOkGB
	}
	if other.Thresholds.RAMWarnGB != 0 {
		c.Thresholds.RAMWarnGB = other.Thresholds.RAMWarnGB
	}
	if other.Thresholds.MinCUDAVersion != "" {
		c.Thresholds.MinCUDAVersion = other.Thresholds.MinCUDAVersion
	}
	if other.Thresholds.MinWSLKernel != "" {
		c.Thresholds.MinWSLKernel = other.Thresholds.MinWSLKernel
	}
	if other.Thresholds.HighEndGPUVRAMMB != 0 {
		c.Thresholds.HighEndGPUVRAMMB = other.Thresholds.HighEndGPUVRAMMB
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies RIGCHECK_* variables read through getenv.
// Malformed numbers are an error rather than silently ignored.
func (c *Config) applyEnvOverrides(getenv func(string) string) error {
	if v := getenv("RIGCHECK_COMMAND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RIGCHECK_COMMAND_TIMEOUT: %w", err)
		}
		c.Detect.CommandTimeout = d
	}
	if v := getenv("RIGCHECK_PYTHON"); v != "" {
		c.Detect.Python = v
	}

	// OLLAMA_HOST is what the ollama CLI itself reads
	if v := getenv("OLLAMA_HOST"); v != "" {
		c.Detect.OllamaHost = normalizeHost(v)
	}
	if v := getenv("RIGCHECK_OLLAMA_HOST"); v != "" {
		c.Detect.OllamaHost = normalizeHost(v)
	}
	if v := getenv("RIGCHECK_LMSTUDIO_HOST"); v != "" {
		c.Detect.LMStudioHost = normalizeHost(v)
	}

	if v := getenv("RIGCHECK_RAM_OK_GB"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RIGCHECK_RAM_OK_GB: %w", err)
		}
		c.Thresholds.RAMOkGB = f
	}
	if v := getenv("RIGCHECK_RAM_WARN_GB"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RIGCHECK_RAM_WARN_GB: %w", err)
		}
		c.Thresholds.RAMWarnGB = f
	}
	if v := getenv("RIGCHECK_MIN_CUDA_VERSION"); v != "" {
		c.Thresholds.MinCUDAVersion = v
	}
	if v := getenv("RIGCHECK_MIN_WSL_KERNEL"); v != "" {
		c.Thresholds.MinWSLKernel = v
	}
	if v := getenv("RIGCHECK_HIGH_END_GPU_VRAM_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RIGCHECK_HIGH_END_GPU_VRAM_MB: %w", err)
		}
		c.Thresholds.HighEndGPUVRAMMB = n
	}

	if v := getenv("RIGCHECK_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	return nil
}

// normalizeHost adds an http scheme to bare host:port values such as the
// ones OLLAMA_HOST commonly carries. A 0.0.0.0 bind address becomes localhost.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimRight(host, "/")
	if host == "" {
		return host
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.Replace(host, "://0.0.0.0", "://localhost", 1)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Detect.CommandTimeout <= 0 {
		return fmt.Errorf("detect.command_timeout must be positive, got %s", c.Detect.CommandTimeout)
	}
	if strings.TrimSpace(c.Detect.Python) == "" {
		return fmt.Errorf("detect.python must not be empty")
	}

	if c.Thresholds.RAMWarnGB <= 0 {
		return fmt.Errorf("thresholds.ram_warn_gb must be positive, got %g", c.Thresholds.RAMWarnGB)
	}
	if c.Thresholds.RAMOkGB < c.Thresholds.RAMWarnGB {
		return fmt.Errorf("thresholds.ram_ok_gb (%g) must be at least ram_warn_gb (%g)",
			c.Thresholds.RAMOkGB, c.Thresholds.RAMWarnGB)
	}
	if !detect.ValidVersion(c.Thresholds.MinCUDAVersion) {
		return fmt.Errorf("thresholds.min_cuda_version is not a version: %q", c.Thresholds.MinCUDAVersion)
	}
	if !detect.ValidVersion(c.Thresholds.MinWSLKernel) {
		return fmt.Errorf("thresholds.min_wsl_kernel is not a version: %q", c.Thresholds.MinWSLKernel)
	}
	if c.Thresholds.HighEndGPUVRAMMB < 0 {
		return fmt.Errorf("thresholds.high_end_gpu_vram_mb must be non-negative, got %d", c.Thresholds.HighEndGPUVRAMMB)
	}

	validTransports := map[string]bool{"stdio": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be one of debug, info, warn, error, got %s", c.Server.LogLevel)
	}

	return nil
}

// YAML returns the config serialized as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeNewDefaults fills fields an older config file left unset.
// Returns the dotted names of the fields that were added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Version == 0 {
		c.Version = defaults.Version
		added = append(added, "version")
	}
	if c.Detect.CommandTimeout == 0 {
		c.Detect.CommandTimeout = defaults.Detect.CommandTimeout
		added = append(added, "detect.command_timeout")
	}
	if c.Detect.Python == "" {
		c.Detect.Python = defaults.Detect.Python
		added = append(added, "detect.python")
	}
	if c.Detect.OllamaHost == "" {
		c.Detect.OllamaHost = defaults.Detect.OllamaHost
		added = append(added, "detect.ollama_host")
	}
	if c.Detect.LMStudioHost == "" {
		c.Detect.LMStudioHost = defaults.Detect.LMStudioHost
		added = append(added, "detect.lmstudio_host")
	}
	if c.Thresholds.RAMOkGB == 0 {
		c.Thresholds.RAMOkGB = defaults.Thresholds.RAMOkGB
		added = append(added, "thresholds.ram_ok_gb")
	}
	if c.Thresholds.RAMWarnGB == 0 {
		c.Thresholds.RAMWarnGB = defaults.Thresholds.RAMWarnGB
		added = append(added, "thresholds.ram_warn_gb")
	}
	if c.Thresholds.MinCUDAVersion == "" {
		c.Thresholds.MinCUDAVersion = defaults.Thresholds.MinCUDAVersion
		added = append(added, "thresholds.min_cuda_version")
	}
	if c.Thresholds.MinWSLKernel == "" {
		c.Thresholds.MinWSLKernel = defaults.Thresholds.MinWSLKernel
		added = append(added, "thresholds.min_wsl_kernel")
	}
	if c.Thresholds.HighEndGPUVRAMMB == 0 {
		c.Thresholds.HighEndGPUVRAMMB = defaults.Thresholds.HighEndGPUVRAMMB
		added = append(added, "thresholds.high_end_gpu_vram_mb")
	}
	if c.Server.Transport == "" {
		c.Server.Transport = defaults.Server.Transport
		added = append(added, "server.transport")
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
		added = append(added, "server.log_level")
	}

	return added
}

// LoadFile reads a single config file without applying defaults.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
