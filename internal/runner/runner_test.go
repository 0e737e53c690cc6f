package runner

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	name     string
	schedule string
	timeout  time.Duration
	runs     atomic.Int32
	err      error
	deadline bool
}

func (c *countingTask) Name() string           { return c.name }
func (c *countingTask) Schedule() string       { return c.schedule }
func (c *countingTask) Timeout() time.Duration { return c.timeout }

func (c *countingTask) Run(ctx context.Context) error {
	c.runs.Add(1)
	_, c.deadline = ctx.Deadline()
	return c.err
}

func quietRunner(reg *TaskRegistry) *Runner {
	return NewRunnerWithLogger(reg, log.New(io.Discard, "", 0))
}

func TestRegistryOrder(t *testing.T) {
	reg := NewTaskRegistry()
	reg.Register(&countingTask{name: "b"})
	reg.Register(&countingTask{name: "a"})
	reg.Register(&countingTask{name: "b"})

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name())
	assert.Equal(t, "b", all[1].Name())
}

func TestRunNow(t *testing.T) {
	reg := NewTaskRegistry()
	bounded := &countingTask{name: "bounded", schedule: "@every 1h", timeout: time.Minute}
	unbounded := &countingTask{name: "unbounded", schedule: "@every 1h", err: errors.New("rows failed")}
	reg.Register(bounded)
	reg.Register(unbounded)
	r := quietRunner(reg)

	require.NoError(t, r.RunNow(context.Background(), "bounded"))
	assert.EqualValues(t, 1, bounded.runs.Load())
	assert.True(t, bounded.deadline)

	assert.EqualError(t, r.RunNow(context.Background(), "unbounded"), "rows failed")
	assert.False(t, unbounded.deadline)

	assert.Error(t, r.RunNow(context.Background(), "missing"))
}

func TestRunNowAfterStop(t *testing.T) {
	reg := NewTaskRegistry()
	task := &countingTask{name: "late", schedule: "@every 1h"}
	reg.Register(task)
	r := quietRunner(reg)

	r.Stop()
	assert.ErrorIs(t, r.RunNow(context.Background(), "late"), ErrStopped)
	assert.Zero(t, task.runs.Load())
}

func TestScheduleAndEntries(t *testing.T) {
	reg := NewTaskRegistry()
	reg.Register(&countingTask{name: "nightly", schedule: "0 0 2 * * *"})
	reg.Register(&countingTask{name: "hourly", schedule: "@hourly"})
	r := quietRunner(reg)

	require.NoError(t, r.Schedule(context.Background()))
	require.NoError(t, r.Schedule(context.Background()))

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "hourly", entries[0].Name)
	assert.Equal(t, "0 0 2 * * *", entries[1].Schedule)
}

func TestScheduleRejectsBadCron(t *testing.T) {
	reg := NewTaskRegistry()
	reg.Register(&countingTask{name: "broken", schedule: "every night"})
	err := quietRunner(reg).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule task broken")
}

func TestStartStopsOnCancel(t *testing.T) {
	reg := NewTaskRegistry()
	task := &countingTask{name: "fast", schedule: "* * * * * *"}
	reg.Register(task)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	err := quietRunner(reg).Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, task.runs.Load(), int32(1))
}
