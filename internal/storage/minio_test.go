package storage

import (
	"testing"

	"github.com/andresuchdata/po-analysis/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinioClient_Validation(t *testing.T) {
	valid := config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "exports",
	}

	tests := map[string]func(cfg *config.StorageConfig){
		"missing endpoint": func(cfg *config.StorageConfig) { cfg.Endpoint = "" },
		"missing secret":   func(cfg *config.StorageConfig) { cfg.SecretKey = "" },
		"missing bucket":   func(cfg *config.StorageConfig) { cfg.Bucket = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			_, err := NewMinioClient(cfg)
			assert.Error(t, err)
		})
	}

	client, err := NewMinioClient(valid)
	require.NoError(t, err)
	assert.Equal(t, "exports", client.bucket)
	assert.Equal(t, "localhost:9000", client.client.EndpointURL().Host)
}

func TestNewMinioClient_AcceptsURLs(t *testing.T) {
	cfg := config.StorageConfig{
		Endpoint:  "https://s3.example.com/",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "exports",
	}

	client, err := NewMinioClient(cfg)

	require.NoError(t, err)
	assert.Equal(t, "https", client.client.EndpointURL().Scheme)
	assert.Equal(t, "s3.example.com", client.client.EndpointURL().Host)
}
