package retrieval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expatwise/retrieval/ai/mock"
	"github.com/expatwise/retrieval/core"
	"github.com/expatwise/retrieval/router"
)

func TestNewService(t *testing.T) {
	t.Run("create new service", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		svc, err := NewService(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()

		// Verify components are initialized
		assert.NotNil(t, svc.VectorStore())
		assert.NotNil(t, svc.Provider())
		assert.NotNil(t, svc.backend)
		assert.NotNil(t, svc.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		svc, err := NewService(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, svc)
	})
}

func TestService_Close(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, svc)

	err = svc.Close()
	assert.NoError(t, err)
}

func TestService_Search(t *testing.T) {
	svc, err := NewServiceWithProvider("", mock.NewMockProvider(), WithInMemory())
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	_, err = svc.VectorStore().UpsertDocuments(ctx, router.PartitionVisas,
		&core.Document{Content: "Residence visa requirements", Vector: []float32{1, 0, 0}},
	)
	require.NoError(t, err)

	result, err := svc.Search(ctx, "requirements for a residence visa")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, router.PartitionVisas, result.PartitionUsed)
	require.Len(t, result.Documents, 1)

	t.Run("second search hits the cache", func(t *testing.T) {
		cached, err := svc.Search(ctx, "requirements for a residence visa")
		require.NoError(t, err)
		assert.Equal(t, core.CacheHitExact, cached.CacheHit)
	})

	t.Run("cache stats and clear", func(t *testing.T) {
		stats, err := svc.CacheStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Size)

		require.NoError(t, svc.ClearCache(ctx))
		stats, err = svc.CacheStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Size)
	})
}

func TestService_Route(t *testing.T) {
	svc, err := NewServiceWithProvider("", mock.NewMockProvider(), WithInMemory())
	require.NoError(t, err)
	defer svc.Close()

	decision := svc.Route("how do I renew my trade license")
	assert.Equal(t, router.PartitionLicensing, decision.Partition)
}

func TestService_NewReindexer(t *testing.T) {
	svc, err := NewServiceWithProvider("", mock.NewMockProvider(), WithInMemory())
	require.NoError(t, err)
	defer svc.Close()

	reindexer, err := svc.NewReindexer(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, reindexer)
}
