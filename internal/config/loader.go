package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by Default() values.
type Config struct {
	Host              string `json:"host" yaml:"host" toml:"host"`
	CommunicationPort int    `json:"communication_port" yaml:"communication_port" toml:"communication_port"`
	StreamingPort     int    `json:"streaming_port" yaml:"streaming_port" toml:"streaming_port"`
	HTTPAddr          string `json:"http_addr" yaml:"http_addr" toml:"http_addr"`
	DBPath            string `json:"db_path" yaml:"db_path" toml:"db_path"`
	SongsDir          string `json:"songs_dir" yaml:"songs_dir" toml:"songs_dir"`
	ImagesDir         string `json:"images_dir" yaml:"images_dir" toml:"images_dir"`
	LogLevel          string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// CORSOrigins enables CORS on the HTTP admin plane when non-empty.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Default returns the configuration used when no file or flag overrides a
// field. The ports match the original deployment defaults.
func Default() Config {
	return Config{
		CommunicationPort: 9191,
		StreamingPort:     9090,
		HTTPAddr:          ":8080",
		DBPath:            "songs.db",
		SongsDir:          "songs",
		ImagesDir:         "images",
		LogLevel:          "info",
	}
}

// Load reads a configuration file based on its extension and overlays it on
// the defaults. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// CommunicationAddr returns the host:port the communication listener binds to.
func (c Config) CommunicationAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.CommunicationPort)
}

// StreamingAddr returns the host:port the streaming listener binds to.
func (c Config) StreamingAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.StreamingPort)
}
