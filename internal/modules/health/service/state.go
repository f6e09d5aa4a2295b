package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastSignalUnix atomic.Int64 // unix seconds
	signalsSeen    atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// TouchSignal телеграм-хендлер отмечает каждый принятый в работу сигнал.
func (s *State) TouchSignal(t time.Time) {
	s.lastSignalUnix.Store(t.Unix())
	s.signalsSeen.Add(1)
}

func (s *State) LastSignal() time.Time {
	u := s.lastSignalUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) SignalsSeen() int64 { return s.signalsSeen.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
