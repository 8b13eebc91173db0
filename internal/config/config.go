// Package config loads the service configuration from YAML with
// environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/inkwell-mail/inkwell/internal/blobstore"
	"github.com/inkwell-mail/inkwell/pkg/db"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type SMTPConfig struct {
	Listen string `yaml:"listen"`
	Domain string `yaml:"domain"`
}

// AuthConfig describes the external identity gateway whose tokens the
// read APIs accept.
type AuthConfig struct {
	// PEM-encoded RSA public key of the token issuer.
	PublicKey string `yaml:"public_key"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

type IngestConfig struct {
	// Shared secret gating the internal /ingest endpoint.
	Secret string `yaml:"secret"`
	// Base URL of the API server, used by the mail receiver to hand
	// off stored raw messages.
	APIURL string `yaml:"api_url"`
}

type StorageConfig struct {
	blobstore.Config `yaml:",inline"`
	RawBucket        string `yaml:"raw_bucket"`
	ArticleBucket    string `yaml:"article_bucket"`
	// Days to keep raw messages before the sweep deletes them.
	// 0 disables the sweep.
	RawRetentionDays int `yaml:"raw_retention_days"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	DB      db.Config     `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Ingest  IngestConfig  `yaml:"ingest"`
}

// Load reads the YAML file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.Storage.AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		cfg.Storage.SecretKey = secret
	}

	if secret := os.Getenv("INGEST_SECRET"); secret != "" {
		cfg.Ingest.Secret = secret
	}
	if url := os.Getenv("INGEST_API_URL"); url != "" {
		cfg.Ingest.APIURL = url
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
}
