package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbtao/connectify/backend/pkg/logger"
)

type countingPruner struct {
	calls atomic.Int32
}

func (c *countingPruner) Prune() int {
	c.calls.Add(1)
	return 1
}

func TestLimiterPruner_RunOnce(t *testing.T) {
	p := &countingPruner{}
	NewLimiterPruner(p, time.Hour, logger.Discard()).RunOnce()
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestLimiterPruner_Schedules(t *testing.T) {
	p := &countingPruner{}
	pruner := NewLimiterPruner(p, 20*time.Millisecond, logger.Discard())

	require.NoError(t, pruner.Start())
	require.Eventually(t, func() bool { return p.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, pruner.Stop())
}
