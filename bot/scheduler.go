package bot

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTick is how often the scheduler looks for due jobs.
const DefaultTick = 15 * time.Second

type job struct {
	at  time.Time
	run func()
}

// Scheduler runs one-shot jobs at a wall clock instant. Jobs live in memory
// only and are dropped when the bot stops.
type Scheduler struct {
	logger *zap.Logger
	tick   time.Duration
	now    func() time.Time

	mu      sync.Mutex
	jobs    []job
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		tick:   DefaultTick,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// At queues run for at. Jobs already due run on the next tick.
func (s *Scheduler) At(at time.Time, run func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{at: at, run: run})
	sort.SliceStable(s.jobs, func(i, j int) bool { return s.jobs[i].at.Before(s.jobs[j].at) })
}

// Pending is the number of queued jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Start begins the ticker loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()
}

// Stop terminates the loop and waits for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("scheduler stopped", zap.Int("dropped_jobs", s.Pending()))
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunDue()
		case <-s.done:
			return
		}
	}
}

// RunDue runs every job whose instant has passed.
func (s *Scheduler) RunDue() {
	now := s.now()

	s.mu.Lock()
	n := 0
	for n < len(s.jobs) && !s.jobs[n].at.After(now) {
		n++
	}
	due := append([]job(nil), s.jobs[:n]...)
	s.jobs = s.jobs[n:]
	s.mu.Unlock()

	for _, j := range due {
		s.runJob(j)
	}
}

func (s *Scheduler) runJob(j job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled job panicked", zap.Any("panic", r), zap.Time("at", j.at))
		}
	}()
	j.run()
}
