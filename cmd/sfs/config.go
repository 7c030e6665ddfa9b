package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "SFS"
	appName      = "sfs"

	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

type Config struct {
	Addr       string `envconfig:"SFS_ADDR"        yaml:"addr"`
	Backend    string `envconfig:"SFS_BACKEND"     yaml:"backend"`
	Volume     string `envconfig:"SFS_VOLUME"      yaml:"volume"`
	BlockSize  Byte   `envconfig:"SFS_BLOCK_SIZE"  yaml:"blockSize"`
	DataBlocks Block  `envconfig:"SFS_DATA_BLOCKS" yaml:"dataBlocks"`
	Inodes     Ino    `envconfig:"SFS_INODES"      yaml:"inodes"`
	Bucket     string `envconfig:"SFS_BUCKET"      yaml:"bucket"`
	Prefix     string `envconfig:"SFS_PREFIX"      yaml:"prefix"`
	Gzip       bool   `envconfig:"SFS_GZIP"        yaml:"gzip"`
	LogLevel   string `envconfig:"SFS_LOG_LEVEL"   yaml:"logLevel"`
	LogFormat  string `envconfig:"SFS_LOG_FORMAT"  yaml:"logFormat"`
}

// DefaultConfig is overlaid by the config file and then by the environment.
// envconfig `default` tags would override values from the file.
func DefaultConfig() Config {
	return Config{
		Addr:       "127.0.0.1:8080",
		Backend:    BackendFile,
		Volume:     "sfs.img",
		BlockSize:  layout.DefaultGeometry.BlockSize,
		DataBlocks: layout.DefaultGeometry.DataBlocks,
		Inodes:     layout.DefaultGeometry.Inodes,
		Prefix:     "volumes",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// LoadConfig reads `configFile` (or `$SFS_CONFIG_FILE`, or
// `$HOME/.config/sfs.yaml`) and overlays the `SFS_*` environment
// variables. A missing config file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = os.Getenv(envVarPrefix + "_CONFIG_FILE")
	}
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating config file: %w", err)
		}
		configFile = filepath.Join(home, ".config", appName+".yaml")
	}

	c := DefaultConfig()
	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file: %w", err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.Backend == "" {
			return "backend", "BACKEND"
		}
		if c.Volume == "" {
			return "volume", "VOLUME"
		}
		if c.Backend == BackendS3 && c.Bucket == "" {
			return "bucket", "BUCKET"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing required configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}

	switch c.Backend {
	case BackendFile, BackendMemory, BackendS3, BackendPostgres:
	default:
		return fmt.Errorf(
			"invalid backend `%s`: wanted one of `%s`, `%s`, `%s` or `%s`",
			c.Backend,
			BackendFile,
			BackendMemory,
			BackendS3,
			BackendPostgres,
		)
	}

	geometry := c.Geometry()
	return geometry.Validate()
}

func (c *Config) Geometry() layout.Geometry {
	return layout.Geometry{
		BlockSize:  c.BlockSize,
		DataBlocks: c.DataBlocks,
		Inodes:     c.Inodes,
	}
}

// Logger builds a stderr logger from the configured level and format
// (`text` or `json`).
func (c *Config) Logger() (*slog.Logger, error) {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf(
				"unmarshaling log level `%s`: %w",
				c.LogLevel,
				err,
			)
		}
	}

	opts := slog.HandlerOptions{Level: level}
	switch c.LogFormat {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, &opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, &opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format `%s`", c.LogFormat)
	}
}
