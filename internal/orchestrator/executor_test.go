package orchestrator_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Batman16012001/Locally-Connector-New/internal/orchestrator"
)

func TestExecutor_RunsSubmittedTasks(t *testing.T) {
	e := orchestrator.NewExecutor(2, 8)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Submit(func(context.Context) {
			ran.Add(1)
		}))
	}

	e.Shutdown()
	assert.Equal(t, int32(5), ran.Load())
}

func TestExecutor_QueueFull(t *testing.T) {
	e := orchestrator.NewExecutor(1, 1)
	defer e.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})

	// Occupy the single worker, then fill the single queue slot.
	require.NoError(t, e.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, e.Submit(func(context.Context) {}))

	err := e.Submit(func(context.Context) {})
	assert.ErrorIs(t, err, orchestrator.ErrQueueFull)

	close(release)
}

func TestExecutor_SubmitAfterShutdown(t *testing.T) {
	e := orchestrator.NewExecutor(1, 1)
	e.Shutdown()

	err := e.Submit(func(context.Context) {})
	assert.ErrorIs(t, err, orchestrator.ErrShuttingDown)
}

func TestExecutor_ShutdownDrainsQueue(t *testing.T) {
	e := orchestrator.NewExecutor(1, 4)

	var ran atomic.Int32
	for i := 0; i < 4; i++ {
		require.NoError(t, e.Submit(func(context.Context) {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		}))
	}

	e.Shutdown()
	assert.Equal(t, int32(4), ran.Load())
}

func TestExecutor_SurvivesPanickingTask(t *testing.T) {
	e := orchestrator.NewExecutor(1, 4)

	require.NoError(t, e.Submit(func(context.Context) {
		panic("task blew up")
	}))

	var ran atomic.Bool
	require.NoError(t, e.Submit(func(context.Context) {
		ran.Store(true)
	}))

	e.Shutdown()
	assert.True(t, ran.Load())
}
