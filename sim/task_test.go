package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_LifecycleHappyPath(t *testing.T) {
	task := NewTask("t1", "iot-0", 500, 10, false, 0)
	assert.Equal(t, Created, task.State)
	assert.Equal(t, 500, task.RemainingWork)

	require.NoError(t, task.MarkQueued("fog-0"))
	assert.Equal(t, Queued, task.State)
	assert.Equal(t, "fog-0", task.OriginFog)

	require.NoError(t, task.MarkExecuting())
	assert.Equal(t, Executing, task.State)

	require.NoError(t, task.MarkCompleted())
	assert.Equal(t, Completed, task.State)
	assert.Equal(t, 0, task.RemainingWork)
}

func TestTask_InvalidTransitionsReturnErrors(t *testing.T) {
	task := NewTask("t1", "iot-0", 500, 10, false, 0)

	assert.Error(t, task.MarkExecuting(), "cannot execute before queued")
	assert.Error(t, task.MarkCompleted(), "cannot complete before executing")

	require.NoError(t, task.MarkQueued("fog-0"))
	assert.Error(t, task.MarkQueued("fog-0"), "cannot re-queue")

	require.NoError(t, task.MarkExecuting())
	require.NoError(t, task.MarkCompleted())
	assert.Error(t, task.MarkFailed(), "a completed task cannot fail")
}

func TestTask_MarkFailedFromQueuedOrExecuting(t *testing.T) {
	queued := NewTask("t1", "iot-0", 500, 10, false, 0)
	require.NoError(t, queued.MarkQueued("fog-0"))
	require.NoError(t, queued.MarkFailed())
	assert.Equal(t, Failed, queued.State)

	executing := NewTask("t2", "iot-0", 500, 10, false, 0)
	require.NoError(t, executing.MarkQueued("fog-0"))
	require.NoError(t, executing.MarkExecuting())
	require.NoError(t, executing.MarkFailed())
	assert.Equal(t, Failed, executing.State)
}

func TestTask_AddResponseTimeAccumulatesAndNeverDecreases(t *testing.T) {
	task := NewTask("t1", "iot-0", 500, 10, false, 0)
	task.AddResponseTime(5)
	task.AddResponseTime(3.5)
	assert.InDelta(t, 8.5, task.ResponseTime, 1e-9)
}

func TestTask_AddResponseTimePanicsOnNegative(t *testing.T) {
	task := NewTask("t1", "iot-0", 500, 10, false, 0)
	assert.Panics(t, func() { task.AddResponseTime(-1) })
}

func TestTask_PolicyInfoAccessors(t *testing.T) {
	task := NewTask("t7", "iot-2", 900, 12, true, 3)
	assert.Equal(t, "t7", task.TaskID())
	assert.True(t, task.IsUrgent())
	assert.Equal(t, 900, task.TaskSize())
}
