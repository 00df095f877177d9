// Package sim implements the discrete-step IoT/fog offloading simulator:
// tasks, fog/IoT devices, per-device scheduling, the offloading controller,
// and the tick loop that drives them.
package sim

import "fmt"

// TaskState is the lifecycle stage of a Task.
type TaskState int

const (
	Created TaskState = iota
	Queued
	Executing
	Completed
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Created:
		return "created"
	case Queued:
		return "queued"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is a unit of computational work generated by an IoTDevice.
// Identity (ID, SourceIoT, Size, CreatedAt, Urgent) is fixed at creation;
// RemainingWork, ResponseTime, Deadline, State, and OriginFog mutate as
// the task moves through the system.
type Task struct {
	ID        string
	SourceIoT string
	OriginFog string // set on receipt by the first fog device to admit it

	Size      int  // MI, fixed at creation
	Urgent    bool
	CreatedAt int64 // tick of generation

	Deadline      int // ticks remaining until expiry while queued
	RemainingWork int // MI remaining; 0 <= RemainingWork <= Size
	ResponseTime  float64 // accumulated ms; monotonically non-decreasing

	State TaskState
}

// NewTask creates a Task in the Created state with RemainingWork == Size.
func NewTask(id, sourceIoT string, size, deadline int, urgent bool, createdAt int64) *Task {
	return &Task{
		ID:            id,
		SourceIoT:     sourceIoT,
		Size:          size,
		Urgent:        urgent,
		CreatedAt:     createdAt,
		Deadline:      deadline,
		RemainingWork: size,
		State:         Created,
	}
}

// MarkQueued transitions Created -> Queued, recording the admitting device.
func (t *Task) MarkQueued(fogID string) error {
	if t.State != Created {
		return fmt.Errorf("task %s: cannot queue from state %s", t.ID, t.State)
	}
	t.OriginFog = fogID
	t.State = Queued
	return nil
}

// MarkExecuting transitions Queued -> Executing.
func (t *Task) MarkExecuting() error {
	if t.State != Queued {
		return fmt.Errorf("task %s: cannot execute from state %s", t.ID, t.State)
	}
	t.State = Executing
	return nil
}

// MarkCompleted transitions Executing -> Completed. Once Completed, a task
// is immutable; callers must not invoke this again.
func (t *Task) MarkCompleted() error {
	if t.State != Executing {
		return fmt.Errorf("task %s: cannot complete from state %s", t.ID, t.State)
	}
	t.State = Completed
	t.RemainingWork = 0
	return nil
}

// MarkFailed transitions Queued or Executing -> Failed (deadline expiry).
func (t *Task) MarkFailed() error {
	if t.State != Queued && t.State != Executing {
		return fmt.Errorf("task %s: cannot fail from state %s", t.ID, t.State)
	}
	t.State = Failed
	return nil
}

// TaskID returns the task's id, implementing policy.TaskInfo.
func (t *Task) TaskID() string { return t.ID }

// IsUrgent reports whether the task is urgent, implementing policy.TaskInfo.
func (t *Task) IsUrgent() bool { return t.Urgent }

// TaskSize returns the task's size in MI, implementing policy.TaskInfo.
func (t *Task) TaskSize() int { return t.Size }

// AddResponseTime accumulates response time; it never decreases.
func (t *Task) AddResponseTime(ms float64) {
	if ms < 0 {
		panic(fmt.Sprintf("task %s: negative response time delta %f", t.ID, ms))
	}
	t.ResponseTime += ms
}
