package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelForEach_ProcessesAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var sum int64

	errs := ParallelForEach(context.Background(), items, 3, func(_ context.Context, n int) error {
		atomic.AddInt64(&sum, int64(n))
		return nil
	})

	assert.Equal(t, int64(15), atomic.LoadInt64(&sum))
	assert.NoError(t, FirstError(errs))
}

func TestParallelForEach_ErrorsKeepItemOrder(t *testing.T) {
	items := []string{"a", "b", "c"}
	failB := errors.New("b failed")

	errs := ParallelForEach(context.Background(), items, 2, func(_ context.Context, s string) error {
		if s == "b" {
			return failB
		}
		return nil
	})

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], failB)
	assert.NoError(t, errs[2])
}

func TestParallelForEach_RespectsWorkerLimit(t *testing.T) {
	var mu sync.Mutex
	inflight, peak := 0, 0

	items := make([]int, 20)
	ParallelForEach(context.Background(), items, 4, func(_ context.Context, _ int) error {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return nil
	})

	assert.LessOrEqual(t, peak, 4)
}

func TestParallelForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	ParallelForEach(ctx, []int{1, 2, 3}, 2, func(_ context.Context, _ int) error {
		atomic.AddInt64(&ran, 1)
		return nil
	})

	assert.LessOrEqual(t, atomic.LoadInt64(&ran), int64(3))
}

func TestParallelForEach_ZeroWorkers(t *testing.T) {
	var count int64
	ParallelForEach(context.Background(), []int{1, 2}, 0, func(_ context.Context, _ int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.Equal(t, int64(2), atomic.LoadInt64(&count))
}

func TestFirstError(t *testing.T) {
	first := errors.New("first")
	assert.NoError(t, FirstError(nil))
	assert.NoError(t, FirstError([]error{nil, nil}))
	assert.ErrorIs(t, FirstError([]error{nil, first, errors.New("second")}), first)
}

func TestCollectErrors(t *testing.T) {
	assert.Nil(t, CollectErrors([]error{nil, nil}))

	errs := make([]error, 4)
	errs[1] = fmt.Errorf("one")
	errs[3] = fmt.Errorf("two")
	assert.Len(t, CollectErrors(errs), 2)
}
