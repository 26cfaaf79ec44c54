package storage_test

import (
	"context"
	"testing"

	"github.com/jhoicas/bodegas-api/internal/infrastructure/storage"
	"github.com/jhoicas/bodegas-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Inventory: config.InventoryConfig{Store: "memory"}}
	s, err := storage.Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.Warehouses)
	assert.NotNil(t, s.TxRunner)
	assert.NotNil(t, s.Listings)
}

func TestOpen_Unknown(t *testing.T) {
	cfg := &config.Config{Inventory: config.InventoryConfig{Store: "mongo"}}
	_, err := storage.Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
