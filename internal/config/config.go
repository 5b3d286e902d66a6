package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BlobDriverCloudinary = "cloudinary"
	BlobDriverLocal      = "local"
)

type Config struct {
	Env     string        `yaml:"env" env:"CMS_ENV" env-default:"local"`
	DSN     string        `yaml:"dsn" env:"CMS_DSN" env-required:"true"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Redis   RedisConf     `yaml:"redis"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port" env:"CMS_HTTP_PORT" env-default:"3001"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env-default:"*"`
}

type StorageConfig struct {
	AutoMigrate bool `yaml:"auto_migrate" env:"CMS_AUTO_MIGRATE" env-default:"false"`
}

type BlobConfig struct {
	Driver        string           `yaml:"driver" env:"CMS_BLOB_DRIVER" env-default:"cloudinary"`
	MaxUploadSize string           `yaml:"max_upload_size" env-default:"20MiB"`
	Cloudinary    CloudinaryConfig `yaml:"cloudinary"`
	Local         LocalBlobConfig  `yaml:"local"`

	// MaxUploadBytes is the parsed form of MaxUploadSize, set by Validate.
	MaxUploadBytes int64 `yaml:"-"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY"`
	APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET"`
}

type LocalBlobConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:3001/media/upload"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"CMS_REDIS_ADDR"`
	RedisPassword string `yaml:"redispassword" env:"CMS_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

func MustLoad(flagPath string) *Config {
	path := ResolvePath(flagPath)
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

// Validate checks cross-field constraints cleanenv tags cannot express.
func (c *Config) Validate() error {
	size, err := units.RAMInBytes(c.Blob.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("blob.max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("blob.max_upload_size must be positive")
	}
	c.Blob.MaxUploadBytes = size

	switch c.Blob.Driver {
	case BlobDriverCloudinary:
		cld := c.Blob.Cloudinary
		if cld.CloudName == "" || cld.APIKey == "" || cld.APISecret == "" {
			return fmt.Errorf("blob.cloudinary: cloud_name, api_key and api_secret are required")
		}
	case BlobDriverLocal:
		if c.Blob.Local.BaseDir == "" {
			return fmt.Errorf("blob.local.base_dir is required")
		}
	default:
		return fmt.Errorf("blob.driver: unknown driver %q", c.Blob.Driver)
	}

	return nil
}

// ResolvePath returns the --config flag value, falling back to CONFIG_PATH.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	return os.Getenv("CONFIG_PATH")
}
