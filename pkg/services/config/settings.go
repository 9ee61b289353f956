package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	keyServerHost      = "server_host"
	keyServerPort      = "server_port"
	keyLogLevel        = "log_level"
	keyQueryTimeout    = "query_timeout"
	keyCloudConfigPath = "cloud_config_path"
)

// Settings are the process-level options of the web server and CLI.
type Settings struct {
	ServerHost      string        `mapstructure:"server_host"`
	ServerPort      int           `mapstructure:"server_port"`
	LogLevel        string        `mapstructure:"log_level"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	CloudConfigPath string        `mapstructure:"cloud_config_path"`
}

func (s Settings) Addr() string {
	return net.JoinHostPort(s.ServerHost, strconv.Itoa(s.ServerPort))
}

// Level parses LogLevel, falling back to info.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// NewViper returns a viper instance with defaults and env binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyServerHost, "0.0.0.0")
	v.SetDefault(keyServerPort, 5000)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyQueryTimeout, 30*time.Second)
	v.SetDefault(keyCloudConfigPath, "config/clouds.ini")
	v.AutomaticEnv()
	return v
}

// LoadSettings reads settings from v, optionally merging the file at path.
func LoadSettings(v *viper.Viper, path string) (Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.ServerPort <= 0 || s.ServerPort > 65535 {
		return Settings{}, fmt.Errorf("invalid server port %d", s.ServerPort)
	}
	if s.QueryTimeout <= 0 {
		return Settings{}, fmt.Errorf("invalid query timeout %s", s.QueryTimeout)
	}
	return s, nil
}
