// Package config provides configuration loading and management for the Cello web backend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Registry   RegistryConfig   `yaml:"registry"`
	Library    LibraryConfig    `yaml:"library"`
	Projects   ProjectsConfig   `yaml:"projects"`
	TargetData TargetDataConfig `yaml:"target_data"`
	Compiler   CompilerConfig   `yaml:"compiler"`
	NATS       NATSConfig       `yaml:"nats"`
	Auth       AuthConfig       `yaml:"auth"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Addr is the listen address (default: ":8080")
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxBodyBytes limits request bodies
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// RegistryConfig configures the SynBioHub client
type RegistryConfig struct {
	// URL is the default registry used when a request names none
	URL string `yaml:"url"`
	// Token is sent as the X-authorization header when set
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerSecond and Burst shape outgoing registry traffic
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// AllowPrivate permits registries on private or loopback addresses
	AllowPrivate bool `yaml:"allow_private"`
	// AttachmentConcurrency bounds parallel attachment downloads per build
	AttachmentConcurrency int `yaml:"attachment_concurrency"`
}

// LibraryConfig configures library building
type LibraryConfig struct {
	// Namespace is the annotation namespace of Cello properties on SBOL entities
	Namespace string `yaml:"namespace"`
	// FileName is the project file the library is written to
	FileName string `yaml:"file_name"`
}

// ProjectsConfig configures the project tree
type ProjectsConfig struct {
	Root string `yaml:"root"`
}

// TargetDataConfig configures the local target-data catalog
type TargetDataConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// CompilerConfig configures the external compiler
type CompilerConfig struct {
	Executable string `yaml:"executable"`
	// Args are templates; {verilog} {ucf} {input} {output} {options} {outdir}
	// expand to paths in the project directory
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = use embedded server)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
	// StoreDir is the JetStream directory of the embedded server (empty = temp dir)
	StoreDir string `yaml:"store_dir"`
}

// AuthConfig configures session tokens
type AuthConfig struct {
	// Secret signs session tokens; required when serving
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Registry: RegistryConfig{
			URL:                   "https://synbiohub.org",
			Timeout:               30 * time.Second,
			RequestsPerSecond:     5,
			Burst:                 5,
			AttachmentConcurrency: 4,
		},
		Library: LibraryConfig{
			Namespace: "http://cellocad.org/Terms/cello#",
			FileName:  "library.UCF.json",
		},
		Projects: ProjectsConfig{
			Root: "./projects",
		},
		TargetData: TargetDataConfig{
			Dir:   "./resources/target_data",
			Watch: true,
		},
		Compiler: CompilerConfig{
			Executable: "cello",
			Args: []string{
				"-inputNetlist", "{verilog}",
				"-userConstraintsFile", "{ucf}",
				"-inputSensorFile", "{input}",
				"-outputDeviceFile", "{output}",
				"-options", "{options}",
				"-outputDir", "{outdir}",
			},
			Timeout: 10 * time.Minute,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: true,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("registry.timeout must be positive")
	}
	if c.Registry.RequestsPerSecond < 0 {
		return fmt.Errorf("registry.requests_per_second must not be negative")
	}
	if c.Registry.AttachmentConcurrency < 1 {
		return fmt.Errorf("registry.attachment_concurrency must be at least 1")
	}
	if c.Library.Namespace == "" {
		return fmt.Errorf("library.namespace is required")
	}
	if c.Library.FileName == "" || filepath.Base(c.Library.FileName) != c.Library.FileName {
		return fmt.Errorf("library.file_name must be a plain file name")
	}
	if c.Projects.Root == "" {
		return fmt.Errorf("projects.root is required")
	}
	if c.Compiler.Executable == "" {
		return fmt.Errorf("compiler.executable is required")
	}
	if c.Compiler.Timeout <= 0 {
		return fmt.Errorf("compiler.timeout must be positive")
	}
	if !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.embedded is false")
	}
	return nil
}

// ErrNoAuthSecret is returned by ValidateServe when auth.secret is unset.
var ErrNoAuthSecret = errors.New("auth.secret is required to serve")

// ValidateServe runs Validate plus the checks that only matter for the HTTP server
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.Secret == "" {
		return ErrNoAuthSecret
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadInto overlays the keys present in a YAML file onto config
func loadInto(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ShutdownTimeout != 0 {
		c.Server.ShutdownTimeout = other.Server.ShutdownTimeout
	}
	if other.Server.MaxBodyBytes != 0 {
		c.Server.MaxBodyBytes = other.Server.MaxBodyBytes
	}

	// Registry
	if other.Registry.URL != "" {
		c.Registry.URL = other.Registry.URL
	}
	if other.Registry.Token != "" {
		c.Registry.Token = other.Registry.Token
	}
	if other.Registry.Timeout != 0 {
		c.Registry.Timeout = other.Registry.Timeout
	}
	if other.Registry.RequestsPerSecond != 0 {
		c.Registry.RequestsPerSecond = other.Registry.RequestsPerSecond
	}
	if other.Registry.Burst != 0 {
		c.Registry.Burst = other.Registry.Burst
	}
	if other.Registry.AllowPrivate {
		c.Registry.AllowPrivate = true
	}
	if other.Registry.AttachmentConcurrency != 0 {
		c.Registry.AttachmentConcurrency = other.Registry.AttachmentConcurrency
	}

	// Library
	if other.Library.Namespace != "" {
		c.Library.Namespace = other.Library.Namespace
	}
	if other.Library.FileName != "" {
		c.Library.FileName = other.Library.FileName
	}

	// Projects and target data
	if other.Projects.Root != "" {
		c.Projects.Root = other.Projects.Root
	}
	if other.TargetData.Dir != "" {
		c.TargetData.Dir = other.TargetData.Dir
	}
	if other.TargetData.Watch {
		c.TargetData.Watch = true
	}

	// Compiler
	if other.Compiler.Executable != "" {
		c.Compiler.Executable = other.Compiler.Executable
	}
	if len(other.Compiler.Args) > 0 {
		c.Compiler.Args = other.Compiler.Args
	}
	if other.Compiler.Timeout != 0 {
		c.Compiler.Timeout = other.Compiler.Timeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	if other.NATS.StoreDir != "" {
		c.NATS.StoreDir = other.NATS.StoreDir
	}

	// Auth
	if other.Auth.Secret != "" {
		c.Auth.Secret = other.Auth.Secret
	}
	if other.Auth.TokenTTL != 0 {
		c.Auth.TokenTTL = other.Auth.TokenTTL
	}
}
