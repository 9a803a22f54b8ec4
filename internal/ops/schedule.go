package ops

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/daybrief/internal/errors"
)

// Mode is the summary generation mode.
type Mode string

const (
	ModeImmediate Mode = "immediate" // refresh when the dashboard home is opened
	ModeScheduled Mode = "scheduled" // refresh once at a chosen local time
)

// ScheduleState is a snapshot of the scheduler.
type ScheduleState struct {
	Mode        Mode       `json:"mode"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Scheduler holds the generation mode and at most one pending timed refresh.
// The timer lives only in this process.
type Scheduler struct {
	refresh func(context.Context) error
	now     func() time.Time

	mu    sync.Mutex
	mode  Mode
	at    *time.Time
	timer *time.Timer
	seq   uint64
}

// NewScheduler returns a scheduler in immediate mode. refresh runs when a
// scheduled time arrives.
func NewScheduler(refresh func(context.Context) error) *Scheduler {
	return &Scheduler{refresh: refresh, now: time.Now, mode: ModeImmediate}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeImmediate, ModeScheduled:
		return m, nil
	default:
		return "", errors.NewInvalidRequest("mode must be one of: immediate, scheduled")
	}
}

// SetMode switches mode. Leaving scheduled mode cancels a pending refresh.
func (s *Scheduler) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	if m == ModeImmediate {
		s.cancelLocked()
	}
}

// Mode returns the current mode.
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Schedule arms a one-shot refresh at t, replacing any pending one, and
// switches to scheduled mode. t must be in the future.
func (s *Scheduler) Schedule(t time.Time) error {
	delay := t.Sub(s.now())
	if delay <= 0 {
		return errors.NewInvalidRequest("scheduled time must be in the future")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.mode = ModeScheduled
	s.seq++
	seq := s.seq
	at := t
	s.at = &at
	s.timer = time.AfterFunc(delay, func() { s.fire(seq) })
	log.Printf("ops: summary refresh scheduled for %s", t.Format(time.RFC3339))
	return nil
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if s.seq != seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.at = nil
	s.mu.Unlock()

	if err := s.refresh(context.Background()); err != nil {
		log.Printf("ops: scheduled refresh failed: %v", err)
	}
}

// State returns the current mode and pending time.
func (s *Scheduler) State() ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ScheduleState{Mode: s.mode}
	if s.at != nil {
		at := *s.at
		st.ScheduledAt = &at
	}
	return st
}

// Stop cancels any pending refresh.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.at = nil
	s.seq++
}

// ParseScheduleTime combines a date ("2006-01-02") and a clock time ("15:04")
// in loc, as submitted by the schedule form.
func ParseScheduleTime(date, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, errors.NewInvalidRequest("date and time are required")
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, errors.NewInvalidRequest(fmt.Sprintf("invalid date or time: %s %s", date, clock))
	}
	return t, nil
}
