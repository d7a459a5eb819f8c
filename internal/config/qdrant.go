package config

import (
	"context"
	"fmt"

	"law-rag-platform/utils"

	"github.com/qdrant/go-client/qdrant"
)

func NewQdrantClient(cfg *Config) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %v", err)
	}

	// Test connection
	ctx, cancel := utils.WithTimeout(context.Background())
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %v", err)
	}

	return client, nil
}
