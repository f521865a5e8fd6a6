package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/filedash/filedash_server/internal/media"
	"github.com/filedash/filedash_server/internal/storage"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig          `mapstructure:"server"`
	Database DatabaseConfig        `mapstructure:"database"`
	Storage  storage.BackendConfig `mapstructure:"storage"`
	Upload   media.Config          `mapstructure:"upload"`
	CORS     CORSConfig            `mapstructure:"cors"`
}

type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MaxUploadBytes int    `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const configFilePath = "files/config.yaml"

// LoadConfig reads files/config.yaml when present and lets environment
// variables (FILEDASH_ prefix, e.g. FILEDASH_DATABASE_URL) override any
// key. A missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(configFilePath)

	viper.SetEnvPrefix("filedash")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":5000")
	viper.SetDefault("server.max_upload_bytes", 500*1024*1024)
	viper.SetDefault("database.url", "postgres://localhost:5432/filedash?sslmode=disable")
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "files/storage")
	viper.SetDefault("upload.owner", "user1")
	viper.SetDefault("upload.thumbnail_size", 128)
	viper.SetDefault("upload.jpeg_quality", 80)
	viper.SetDefault("upload.ffmpeg_path", "ffmpeg")
	viper.SetDefault("upload.ffprobe_path", "ffprobe")
	viper.SetDefault("upload.task_timeout_sec", 120)
	viper.SetDefault("cors.allowed_origins", []string{"*"})

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
