// Package testhelpers provides shared infrastructure for integration
// tests: a suite wiring the codec service to a throwaway database, a
// metrics collector and an event recorder.
package testhelpers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/logger"
	"github.com/linelab/linelab/pkg/metrics"
	"github.com/linelab/linelab/pkg/studio"
)

// IntegrationSuite provides infrastructure for integration tests
type IntegrationSuite struct {
	T         *testing.T
	Logger    *logger.Logger
	Ctx       context.Context
	Cancel    context.CancelFunc
	DB        *database.DB
	Repo      *database.RunRepository
	Collector *metrics.Collector
	Service   *studio.Service
	Events    *EventRecorder
}

// SuiteOptions tunes suite construction
type SuiteOptions struct {
	SamplesPerBit int
	MaxSamples    int
}

// NewIntegrationSuite creates a suite with a temp database and a fully
// wired studio service. Callers must defer Cleanup.
func NewIntegrationSuite(t *testing.T, opts SuiteOptions) *IntegrationSuite {
	t.Helper()
	if opts.SamplesPerBit == 0 {
		opts.SamplesPerBit = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	log := logger.New(logger.Config{
		Level:  "error",
		Format: "text",
	})

	db, err := database.NewDB(database.Config{
		Path: filepath.Join(t.TempDir(), "integration.db"),
	}, log)
	if err != nil {
		cancel()
		t.Fatalf("failed to open test database: %v", err)
	}
	repo := database.NewRunRepository(db.GetDB())

	collector := metrics.NewCollector()
	events := &EventRecorder{}

	service, err := studio.NewService(studio.Config{
		SamplesPerBit: opts.SamplesPerBit,
		MaxSamples:    opts.MaxSamples,
	}, repo, collector, events, log)
	if err != nil {
		cancel()
		t.Fatalf("failed to construct service: %v", err)
	}

	return &IntegrationSuite{
		T:         t,
		Logger:    log,
		Ctx:       ctx,
		Cancel:    cancel,
		DB:        db,
		Repo:      repo,
		Collector: collector,
		Service:   service,
		Events:    events,
	}
}

// Cleanup releases the suite's resources
func (s *IntegrationSuite) Cleanup() {
	s.Cancel()
	if s.DB != nil {
		_ = s.DB.Close()
	}
}

// WaitFor polls cond until it holds or the timeout elapses
func (s *IntegrationSuite) WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// EventRecorder captures published events for assertions. It satisfies
// studio.EventPublisher.
type EventRecorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// RecordedEvent is one captured event
type RecordedEvent struct {
	Type string
	Data map[string]interface{}
}

// Publish records the event
func (r *EventRecorder) Publish(eventType string, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Type: eventType, Data: data})
}

// All returns a copy of the captured events
func (r *EventRecorder) All() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// CountByType returns how many events of the given type were captured
func (r *EventRecorder) CountByType(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
