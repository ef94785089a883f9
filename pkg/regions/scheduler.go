package regions

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultResizeDelay is how long resize notifications are coalesced.
const DefaultResizeDelay = 300 * time.Millisecond

// Scheduler serializes layout passes. Requests that arrive while a pass is
// running, from any goroutine or from inside the pass, are folded into one
// more pass run by the goroutine already running.
type Scheduler struct {
	pass          func()
	invalidateAll func()
	delay         time.Duration
	log           *zap.Logger

	mu       sync.Mutex
	pending  int
	running  bool
	timer    *time.Timer
	closed   bool
	inflight sync.WaitGroup
}

// NewScheduler creates a scheduler running pass for every layout request.
// invalidateAll runs before the pass a debounced resize triggers.
func NewScheduler(pass, invalidateAll func(), delay time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &Scheduler{
		pass:          pass,
		invalidateAll: invalidateAll,
		delay:         delay,
		log:           log,
	}
}

// Request asks for a layout pass. It runs the pass on the calling goroutine
// unless one is already running, in which case it returns at once.
func (s *Scheduler) Request() {
	s.mu.Lock()
	s.pending++
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	passes := 0
	for {
		s.mu.Lock()
		if s.pending == 0 {
			s.running = false
			s.mu.Unlock()
			break
		}
		s.pending = 0
		s.mu.Unlock()
		s.run()
		passes++
	}
	if passes > 1 {
		s.log.Debug("Coalesced layout requests", zap.Int("passes", passes))
	}
}

func (s *Scheduler) run() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.running = false
			s.pending = 0
			s.mu.Unlock()
			panic(r)
		}
	}()
	s.pass()
}

// NotifyResize schedules a full reflow of every flow once no further resize
// has been notified for the debounce delay.
func (s *Scheduler) NotifyResize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.resized)
}

func (s *Scheduler) resized() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.log.Debug("Resize settled, reflowing all flows")
	if s.invalidateAll != nil {
		s.invalidateAll()
	}
	s.Request()
}

// Close cancels a pending resize and waits for a resize pass in progress.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.inflight.Wait()
}
