package sim

import "container/heap"

// MinProgressMIPS guarantees forward progress for an executing task
// regardless of contention from other executing tasks on the same device.
const MinProgressMIPS = 100.0

// taskQueue is a priority queue over queued tasks: urgent before
// non-urgent; within an urgency class, earlier deadline first; ties
// broken by task ID, lexicographically, for determinism (spec.md §4.4).
type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.Urgent != b.Urgent {
		return a.Urgent // urgent sorts first
	}
	if a.Deadline != b.Deadline {
		return a.Deadline < b.Deadline
	}
	return a.ID < b.ID
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) {
	*q = append(*q, x.(*Task))
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Scheduler is a per-FogDevice admission/execution engine: a priority
// queue of queued tasks, an unordered bag of executing tasks, a list of
// completed tasks, and run counters.
type Scheduler struct {
	owner ResourceHandle

	queue     taskQueue
	executing []*Task
	completed []*Task

	FailedCount       int
	ExecutedCount     int
	TotalResponseTime float64
	StillInFlightAtEnd int
}

// NewScheduler creates a Scheduler bound to the given device's narrow
// ResourceHandle (per spec.md §9, not a full back-pointer).
func NewScheduler(owner ResourceHandle) *Scheduler {
	s := &Scheduler{owner: owner}
	heap.Init(&s.queue)
	return s
}

// QueueLen returns the number of currently queued (not yet executing) tasks.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// ExecutingCount returns the number of currently executing tasks.
func (s *Scheduler) ExecutingCount() int { return len(s.executing) }

// Completed returns the list of completed tasks, including tasks
// force-completed at end of run by ForceCompleteAll.
func (s *Scheduler) Completed() []*Task { return s.completed }

// Admit accepts task into the queue iff the queue is below capacity,
// transitioning it Created -> Queued. Admission is gated only on queue
// capacity; a task whose Size exceeds the device's total MIPS is still
// admitted here and will simply never satisfy Dispatch's fit check,
// eventually expiring by deadline (spec.md §9).
func (s *Scheduler) Admit(t *Task) bool {
	if len(s.queue) >= s.owner.MaxQueue() {
		return false
	}
	if err := t.MarkQueued(s.owner.ID()); err != nil {
		panic(err)
	}
	heap.Push(&s.queue, t)
	return true
}

// Tick advances the scheduler by one simulation step, running Progress,
// then Dispatch, then DeadlineDecay, in that fixed order (spec.md §4.4/§5).
func (s *Scheduler) Tick() {
	s.progress()
	s.dispatch()
	s.deadlineDecay()
}

func (s *Scheduler) progress() {
	if len(s.executing) == 0 {
		return
	}
	perTask := s.owner.TotalMIPS() / float64(max(1, len(s.executing)))
	if perTask < 1 {
		perTask = 1
	}
	advance := perTask
	if advance < MinProgressMIPS {
		advance = MinProgressMIPS
	}

	remaining := s.executing[:0:0]
	for _, t := range s.executing {
		t.RemainingWork -= int(advance)
		if t.RemainingWork <= 0 {
			t.RemainingWork = 0
			s.owner.Release(float64(t.Size))
			if err := t.MarkCompleted(); err != nil {
				panic(err)
			}
			s.TotalResponseTime += t.ResponseTime
			s.ExecutedCount++
			s.completed = append(s.completed, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	s.executing = remaining
}

func (s *Scheduler) dispatch() {
	for len(s.queue) > 0 {
		head := s.queue[0]
		if float64(head.Size) > s.owner.AvailableMIPS() {
			break
		}
		t := heap.Pop(&s.queue).(*Task)
		if err := t.MarkExecuting(); err != nil {
			panic(err)
		}
		s.owner.Allocate(float64(t.Size))
		s.executing = append(s.executing, t)
	}
}

func (s *Scheduler) deadlineDecay() {
	if len(s.queue) == 0 {
		return
	}
	survivors := s.queue[:0:0]
	for _, t := range s.queue {
		t.Deadline--
		if t.Deadline <= 0 {
			if err := t.MarkFailed(); err != nil {
				panic(err)
			}
			s.FailedCount++
			continue
		}
		survivors = append(survivors, t)
	}
	s.queue = survivors
	// Deadlines mutated in-place; re-establish the heap invariant.
	heap.Init(&s.queue)
}

// ForceCompleteAll marks every still-queued or still-executing task as
// Completed without counting it toward ExecutedCount — these are captured
// separately via StillInFlightAtEnd so end-of-run metrics can distinguish
// real completions from the terminal convenience sweep (spec.md §4.4/§9).
// Their response times are not added to TotalResponseTime.
func (s *Scheduler) ForceCompleteAll() {
	for _, t := range s.executing {
		s.owner.Release(float64(t.Size))
		s.forceComplete(t)
	}
	s.executing = nil
	for _, t := range s.queue {
		s.forceComplete(t)
	}
	s.queue = nil
}

func (s *Scheduler) forceComplete(t *Task) {
	switch t.State {
	case Executing:
		if err := t.MarkCompleted(); err != nil {
			panic(err)
		}
	case Queued:
		// Queued tasks never executed; jump straight to Completed for
		// metrics purposes without passing through Executing.
		t.State = Completed
		t.RemainingWork = 0
	}
	s.StillInFlightAtEnd++
	s.completed = append(s.completed, t)
}
