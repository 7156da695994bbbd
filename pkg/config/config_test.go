package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Store.Driver = DriverMemory
	cfg.App.FeedPageSize = 10
	cfg.Storage.Region = "auto"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory store", mutate: func(*Config) {}},
		{
			name:    "mongo needs postgres for sessions",
			mutate:  func(c *Config) { c.Store.Driver = DriverMongo },
			wantErr: "POSTGRES_CONN_STR",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "redis" },
			wantErr: "unknown STORE_DRIVER",
		},
		{
			name:    "aws bucket without region",
			mutate:  func(c *Config) { c.Storage.Bucket, c.Storage.AccessKey, c.Storage.SecretKey = "media", "k", "s" },
			wantErr: "S3_REGION",
		},
		{
			name: "aws bucket with region",
			mutate: func(c *Config) {
				c.Storage.Bucket, c.Storage.AccessKey, c.Storage.SecretKey = "media", "k", "s"
				c.Storage.Region = "us-east-1"
			},
		},
		{
			name: "custom endpoint",
			mutate: func(c *Config) {
				c.Storage.Bucket, c.Storage.AccessKey, c.Storage.SecretKey = "media", "k", "s"
				c.Storage.Endpoint = "http://localhost:9000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
