// internal/game/scheduler.go
package game

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Callbacks run on their own
// goroutine (RealScheduler) or on the caller of Advance (ManualScheduler)
// and never with the game lock held.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

func (RealScheduler) After(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// ManualScheduler runs callbacks only when its clock is advanced. It is safe
// for concurrent use.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s    *ManualScheduler
	at   time.Duration
	seq  int
	fn   func()
	done bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTask{s: s, at: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Now returns the time elapsed on the manual clock.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of callbacks that have not run or been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compact()
	return len(s.tasks)
}

// Advance moves the clock forward by d and runs every callback that falls
// due, in due order, including callbacks scheduled by earlier ones within
// the window. It returns how many ran.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	deadline := s.now + d
	s.mu.Unlock()

	ran := 0
	for {
		t, ok := s.nextDue(deadline)
		if !ok {
			break
		}
		t.fn()
		ran++
	}

	s.mu.Lock()
	if s.now < deadline {
		s.now = deadline
	}
	s.mu.Unlock()
	return ran
}

// RunNext jumps the clock to the earliest pending callback and runs it. It
// reports false when nothing is pending.
func (s *ManualScheduler) RunNext() bool {
	t, ok := s.nextDue(-1)
	if !ok {
		return false
	}
	t.fn()
	return true
}

// nextDue pops the earliest pending task due by deadline; a negative
// deadline accepts any task. The clock moves to the task's due time.
func (s *ManualScheduler) nextDue(deadline time.Duration) (*manualTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compact()
	if len(s.tasks) == 0 {
		return nil, false
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	t := s.tasks[0]
	if deadline >= 0 && t.at > deadline {
		return nil, false
	}
	t.done = true
	s.tasks = s.tasks[1:]
	if t.at > s.now {
		s.now = t.at
	}
	return t, true
}

func (s *ManualScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	s.tasks = live
}
