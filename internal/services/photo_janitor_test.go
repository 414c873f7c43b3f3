package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCleaner struct {
	runs    atomic.Int32
	removed int
	err     error
	block   chan struct{}
}

func (f *fakeCleaner) Cleanup(ctx context.Context) (int, error) {
	f.runs.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.removed, f.err
}

func (f *fakeCleaner) Usage(context.Context) (int, int64, error) {
	return 2, 1024, nil
}

type health bool

func (h health) PhotoStoreOnline() bool { return bool(h) }

func TestPhotoJanitor_RunOnce(t *testing.T) {
	cleaner := &fakeCleaner{removed: 3}
	j, err := NewPhotoJanitor(cleaner, health(true), nil, JanitorConfig{})
	require.NoError(t, err)

	removed, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.EqualValues(t, 1, cleaner.runs.Load())
}

func TestPhotoJanitor_SkipsWhenStoreOffline(t *testing.T) {
	cleaner := &fakeCleaner{removed: 3}
	j, err := NewPhotoJanitor(cleaner, health(false), nil, JanitorConfig{})
	require.NoError(t, err)

	removed, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Zero(t, cleaner.runs.Load())
}

func TestPhotoJanitor_PropagatesCleanupError(t *testing.T) {
	j, err := NewPhotoJanitor(&fakeCleaner{err: errors.New("disk full")}, nil, nil, JanitorConfig{})
	require.NoError(t, err)

	_, err = j.RunOnce(context.Background())
	assert.EqualError(t, err, "disk full")
}

func TestPhotoJanitor_SkipsOverlappingPass(t *testing.T) {
	cleaner := &fakeCleaner{block: make(chan struct{})}
	j, err := NewPhotoJanitor(cleaner, nil, nil, JanitorConfig{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = j.RunOnce(context.Background())
	}()
	require.Eventually(t, func() bool { return cleaner.runs.Load() == 1 }, time.Second, time.Millisecond)

	removed, err := j.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, removed)

	close(cleaner.block)
	<-done
	assert.EqualValues(t, 1, cleaner.runs.Load())
}

func TestPhotoJanitor_RejectsBadSchedule(t *testing.T) {
	_, err := NewPhotoJanitor(&fakeCleaner{}, nil, nil, JanitorConfig{Schedule: "every now and then"})
	assert.Error(t, err)
}

func TestPhotoJanitor_StartStop(t *testing.T) {
	j, err := NewPhotoJanitor(&fakeCleaner{}, nil, nil, JanitorConfig{Schedule: "@every 1h"})
	require.NoError(t, err)
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
