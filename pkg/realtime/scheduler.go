package realtime

import (
	"errors"
	"math"
	"sync"

	"ai-docstore-be/pkg/codec"
)

var ErrPlaybackClosed = errors.New("playback closed")

// Scheduler queues buffers back to back on an AudioPlayback. Each buffer starts
// at max(now, nextStart) and moves nextStart forward by its duration, so chunks
// arriving with network jitter neither overlap nor leave gaps.
type Scheduler struct {
	mu        sync.Mutex
	playback  AudioPlayback
	nextStart float64
	seq       uint64
	sources   map[uint64]Source
	closed    bool
}

func NewScheduler(playback AudioPlayback) *Scheduler {
	return &Scheduler{
		playback: playback,
		sources:  make(map[uint64]Source),
	}
}

// Enqueue schedules buf and returns its start time.
func (s *Scheduler) Enqueue(buf *codec.AudioBuffer) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrPlaybackClosed
	}

	start := math.Max(s.playback.Now(), s.nextStart)
	s.seq++
	id := s.seq

	src, err := s.playback.Schedule(buf, start, func() { s.release(id) })
	if err != nil {
		return 0, err
	}
	s.sources[id] = src
	s.nextStart = start + buf.Duration()
	return start, nil
}

func (s *Scheduler) release(id uint64) {
	s.mu.Lock()
	delete(s.sources, id)
	s.mu.Unlock()
}

// Interrupt stops every scheduled source and resets the cursor so the next
// buffer starts immediately.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	srcs := s.detachLocked()
	s.nextStart = 0
	s.mu.Unlock()

	stopAll(srcs)
}

// detachLocked empties the source set. Sources are stopped outside the lock
// because Stop may fire onEnded.
func (s *Scheduler) detachLocked() []Source {
	srcs := make([]Source, 0, len(s.sources))
	for id, src := range s.sources {
		srcs = append(srcs, src)
		delete(s.sources, id)
	}
	return srcs
}

func stopAll(srcs []Source) {
	for _, src := range srcs {
		src.Stop()
	}
}

// NextStart is the clock time the next buffer would start at, ignoring now.
func (s *Scheduler) NextStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Pending is the number of sources not yet ended.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// Close stops all sources and closes the playback. Later calls are no-ops.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srcs := s.detachLocked()
	s.nextStart = 0
	pb := s.playback
	s.mu.Unlock()

	stopAll(srcs)
	return pb.Close()
}
