// Package journal пишет аудит всех попыток исполнения сигналов.
// Журнал только на запись: состояние сделок из него не восстанавливается.
package journal

import (
	"context"
	"sync"
	"time"

	"signal_bot/internal/models"
)

type Entry struct {
	Symbol        string
	Exchange      string
	Success       bool
	Reason        string
	TotalAmount   float64
	AvgEntryPrice float64
	OrdersPlaced  int
	Signal        models.Signal
	At            time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

// Memory держит записи в памяти. Для тестов и cli.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
