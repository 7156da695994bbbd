package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepExpiredStories(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestStorySweeper_RunOnce(t *testing.T) {
	ok := &countingSweeper{}
	NewStorySweeper(ok, time.Hour, logger.Discard()).RunOnce(context.Background())
	assert.EqualValues(t, 1, ok.calls.Load())

	failing := &countingSweeper{err: errors.New("store down")}
	NewStorySweeper(failing, time.Hour, logger.Discard()).RunOnce(context.Background())
	assert.EqualValues(t, 1, failing.calls.Load())
}

func TestStorySweeper_Schedules(t *testing.T) {
	s := &countingSweeper{}
	sweeper := NewStorySweeper(s, 20*time.Millisecond, logger.Discard())

	require.NoError(t, sweeper.Start(context.Background()))
	require.Eventually(t, func() bool { return s.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, sweeper.Stop())

	stopped := s.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, s.calls.Load())
}

func TestStorySweeper_StopWithoutStart(t *testing.T) {
	assert.NoError(t, NewStorySweeper(&countingSweeper{}, time.Hour, logger.Discard()).Stop())
}
