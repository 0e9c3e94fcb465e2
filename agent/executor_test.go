package agent_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SerialExecutor(t *testing.T) {
	exec := agent.NewSerialExecutor()
	defer exec.Close()

	result, err := exec.Submit(context.Background(), func(context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result)

	_, err = exec.Submit(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("remote failed")
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "remote failed")
}

func Test_SerialExecutor_Serializes(t *testing.T) {
	exec := agent.NewSerialExecutor()
	defer exec.Close()

	var mu sync.Mutex
	var order []int
	var running int
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := exec.Submit(context.Background(), func(context.Context) (string, error) {
				mu.Lock()
				running++
				assert.Equal(t, 1, running)
				order = append(order, i)
				running--
				mu.Unlock()
				return "", nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, order, 8)
}

func Test_SerialExecutor_ContextCancel(t *testing.T) {
	exec := agent.NewSerialExecutor()
	defer exec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	_, err := exec.Submit(ctx, func(context.Context) (string, error) {
		close(started)
		<-release
		return "late", nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}

func Test_SerialExecutor_Close(t *testing.T) {
	exec := agent.NewSerialExecutor()
	exec.Close()
	// Close is idempotent
	exec.Close()

	_, err := exec.Submit(context.Background(), func(context.Context) (string, error) {
		return "", nil
	})
	require.Error(t, err)

	// Submit with a done context fails fast even when closed
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)
	_, err = exec.Submit(ctx, func(context.Context) (string, error) {
		return "", nil
	})
	require.Error(t, err)
}
