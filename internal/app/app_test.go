package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/belivan/prospect-discovery/internal/config"
)

func TestNewAppRejectsUnknownStorageProvider(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Storage: config.StorageConfig{Provider: "cassandra"}}
	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown storage provider")
}

func TestNewAppRequiresSearchCredentials(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Storage: config.StorageConfig{Provider: "memory"},
		OpenAI:  config.OpenAIConfig{APIKey: "sk-test"},
	}
	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "initialize search client")
}
