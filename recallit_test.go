package recallit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recallit/transcript"
)

func TestNewService(t *testing.T) {
	t.Run("create new service", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		service, err := NewService(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, service)
		defer service.Close()

		// Verify components are initialized
		assert.NotNil(t, service.CaptureRepository())
		assert.NotNil(t, service.ChunkRepository())
		assert.NotNil(t, service.SessionRepository())
		assert.NotNil(t, service.Provider())
		assert.NotNil(t, service.backend)
		assert.NotNil(t, service.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open the store at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		service, err := NewService(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, service)
	})
}

func TestService_Close(t *testing.T) {
	service, err := NewService(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, service)

	err = service.Close()
	assert.NoError(t, err)
}

func TestService_FactoryMethods(t *testing.T) {
	service, err := NewService(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, service)
	defer service.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := service.NewIngestionPipeline(transcript.Disabled{})
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create context builder and coordinator", func(t *testing.T) {
		builder, err := service.NewContextBuilder()
		require.NoError(t, err)
		require.NotNil(t, builder)
		defer builder.Release()

		coordinator, err := service.NewAnswerCoordinator(builder)
		require.NoError(t, err)
		require.NotNil(t, coordinator)
	})
}
