package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/holocron/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "15m"-style strings and integer nanoseconds. Absent fields keep the value
// already present in Config.
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	GRPCAddr       string         `json:"grpc_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	BcryptCost     int            `json:"bcrypt_cost"`
	SwapiURL       string         `json:"swapi_url"`
	SyncTimeout    timex.Duration `json:"sync_timeout"`
	LogLevel       string         `json:"log_level"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	ArtworkURLTTL  timex.Duration `json:"artwork_url_ttl"`
}

func parseJSON(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SwapiURL, c.SwapiURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.SyncTimeout.Duration != 0 {
		config.SyncTimeout = c.SyncTimeout.Duration
	}
	if c.ArtworkURLTTL.Duration != 0 {
		config.ArtworkURLTTL = c.ArtworkURLTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
