package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type stopper struct{ stopped bool }

func (s *stopper) Stop() { s.stopped = true }

func TestShutdown_RunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.RegisterCloser("second", closerFunc(func() error {
		order = append(order, "second")
		return nil
	}))

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestShutdown_JoinsErrorsAndKeepsGoing(t *testing.T) {
	m := New(time.Second, nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	s := &stopper{}

	m.RegisterStopper("worker", s)
	m.Register("a", func(context.Context) error { return errA })
	m.RegisterCloser("b", closerFunc(func() error { return errB }))

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, s.stopped)
}

func TestShutdown_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	var hasDeadline bool
	m.Register("probe", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, hasDeadline)
}

func TestRegister_IgnoresNil(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("nil", nil)
	m.RegisterCloser("nil", nil)
	m.RegisterStopper("nil", nil)
	assert.Empty(t, m.hooks)
}

func TestShutdown_RunsOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("once", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestShutdown_ErrorNamesComponent(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("photo_store", func(context.Context) error { return errors.New("file locked") })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo_store: file locked")
}
