package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdefend/bkpops/internal/config"
)

func TestMainProcess_Success(t *testing.T) {
	main := MainProcess(config.ServerConfig{Command: "true"})
	assert.NoError(t, main(context.Background()))
}

func TestMainProcess_Failure(t *testing.T) {
	main := MainProcess(config.ServerConfig{Command: "false"})
	err := main(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main process")
}

func TestMainProcess_CancelledContextIsNotAFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	main := MainProcess(config.ServerConfig{Command: "sleep", Args: []string{"30"}})
	assert.NoError(t, main(ctx))
}
