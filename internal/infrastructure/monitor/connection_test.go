package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	err   error
	count int
}

func (s fakeStore) Ping(context.Context) error         { return s.err }
func (s fakeStore) Count(context.Context) (int, error) { return s.count, s.err }

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestRefresh_AllHealthy(t *testing.T) {
	m := New(Deps{
		Postgres:   PingFunc(ok),
		Redis:      PingFunc(ok),
		PhotoStore: fakeStore{count: 7},
		Workspaces: func() int { return 2 },
	}, time.Hour, nil)

	status := m.Refresh()
	assert.True(t, status.PostgreSQL)
	assert.True(t, status.Redis)
	assert.True(t, status.PhotoStore)
	assert.Equal(t, 7, status.Photos)
	assert.Equal(t, 2, status.Workspaces)
	assert.True(t, m.IsOnline())
	assert.True(t, m.PhotoStoreOnline())
}

func TestRefresh_OptionalDependenciesMayBeAbsent(t *testing.T) {
	m := New(Deps{PhotoStore: fakeStore{}}, time.Hour, nil)
	m.Refresh()
	assert.True(t, m.IsOnline())
	assert.False(t, m.GetStatus().Redis)
}

func TestRefresh_ConfiguredDependencyDown(t *testing.T) {
	m := New(Deps{
		Redis:      PingFunc(down),
		PhotoStore: fakeStore{},
	}, time.Hour, nil)
	m.Refresh()
	assert.False(t, m.IsOnline())

	m = New(Deps{PhotoStore: fakeStore{err: errors.New("closed")}}, time.Hour, nil)
	m.Refresh()
	assert.False(t, m.PhotoStoreOnline())
}

func TestStartStop(t *testing.T) {
	m := New(Deps{PhotoStore: fakeStore{}}, 5*time.Millisecond, nil)
	m.Start()
	assert.Eventually(t, func() bool { return !m.GetStatus().LastCheck.IsZero() }, time.Second, time.Millisecond)
	m.Stop()
	m.Stop()
}
