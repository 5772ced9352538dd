package testhelpers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNewIntegrationSuite(t *testing.T) {
	suite := NewIntegrationSuite(t, SuiteOptions{})
	defer suite.Cleanup()

	if suite.Service == nil || suite.Repo == nil || suite.Collector == nil {
		t.Fatal("suite not fully wired")
	}
	if suite.Service.SamplesPerBit() != 4 {
		t.Errorf("default samples per bit = %d, want 4", suite.Service.SamplesPerBit())
	}
}

func TestEventRecorder(t *testing.T) {
	rec := &EventRecorder{}
	rec.Publish("run_completed", map[string]interface{}{"scheme": "AMI"})
	rec.Publish("status_update", nil)
	rec.Publish("run_completed", nil)

	if got := rec.CountByType("run_completed"); got != 2 {
		t.Errorf("CountByType = %d, want 2", got)
	}
	if got := len(rec.All()); got != 3 {
		t.Errorf("All = %d events, want 3", got)
	}
}

func TestWaitFor(t *testing.T) {
	suite := NewIntegrationSuite(t, SuiteOptions{})
	defer suite.Cleanup()

	start := time.Now()
	var flag atomic.Bool
	go func() {
		time.Sleep(30 * time.Millisecond)
		flag.Store(true)
	}()
	if !suite.WaitFor(time.Second, flag.Load) {
		t.Fatal("WaitFor gave up before the condition held")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("WaitFor took longer than expected")
	}
}
