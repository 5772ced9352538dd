//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/linelab/linelab/internal/testhelpers"
	"github.com/linelab/linelab/pkg/config"
	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/linecode"
	"github.com/linelab/linelab/pkg/studio"
	"github.com/linelab/linelab/pkg/web"
)

// TestEncodePipeline exercises the full encode path: codec, analysis,
// persistence, metrics and event publication.
func TestEncodePipeline(t *testing.T) {
	suite := testhelpers.NewIntegrationSuite(t, testhelpers.SuiteOptions{SamplesPerBit: 2})
	defer suite.Cleanup()

	for _, scheme := range linecode.Schemes() {
		result, err := suite.Service.Encode(studio.EncodeRequest{
			Bits:   "1100000000101",
			Scheme: scheme.String(),
			Decode: true,
		})
		if err != nil {
			t.Fatalf("%s: encode failed: %v", scheme, err)
		}
		if len(result.Waveform) != 13*2 {
			t.Errorf("%s: waveform length = %d, want 26", scheme, len(result.Waveform))
		}

		stored, err := suite.Repo.GetByRunID(result.RunID)
		if err != nil {
			t.Fatalf("%s: run not persisted: %v", scheme, err)
		}
		if stored.Scheme != scheme.String() {
			t.Errorf("stored scheme = %q, want %q", stored.Scheme, scheme)
		}
	}

	total, err := suite.Repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != int64(len(linecode.Schemes())) {
		t.Errorf("stored runs = %d, want %d", total, len(linecode.Schemes()))
	}
	if got := suite.Events.CountByType("run_completed"); got != len(linecode.Schemes()) {
		t.Errorf("run_completed events = %d, want %d", got, len(linecode.Schemes()))
	}
	if got := suite.Collector.GetRunsStored(); got != uint64(len(linecode.Schemes())) {
		t.Errorf("runs stored metric = %d, want %d", got, len(linecode.Schemes()))
	}
}

// TestAnalogToWaveform runs sine wave -> PCM bits -> scrambled encode ->
// decode, end to end.
func TestAnalogToWaveform(t *testing.T) {
	suite := testhelpers.NewIntegrationSuite(t, testhelpers.SuiteOptions{SamplesPerBit: 2})
	defer suite.Cleanup()

	result, err := suite.Service.Analog(studio.AnalogRequest{
		Kind: studio.AnalogPCM, Freq: 5, Amp: 1, Duration: 1, Samples: 20, PCMBits: 4,
		Scheme: "AMI-B8ZS", Encode: true,
	}, studio.AnalogDefaults{PCMBits: 8, DefaultSamples: 50, MaxSamples: 4096})
	if err != nil {
		t.Fatalf("Analog failed: %v", err)
	}
	if result.EncodeResult == nil {
		t.Fatal("expected an encode result")
	}
	if result.EncodeResult.Decoded != result.Bits {
		t.Errorf("B8ZS round trip mismatch:\n bits    %s\n decoded %s",
			result.Bits, result.EncodeResult.Decoded)
	}

	stored, err := suite.Repo.GetByRunID(result.EncodeResult.RunID)
	if err != nil {
		t.Fatalf("run not persisted: %v", err)
	}
	if stored.Source != database.SourcePCM {
		t.Errorf("stored source = %q, want pcm", stored.Source)
	}
}

// TestWebAPIRoundTrip starts the real web server and drives the codec
// through HTTP.
func TestWebAPIRoundTrip(t *testing.T) {
	suite := testhelpers.NewIntegrationSuite(t, testhelpers.SuiteOptions{SamplesPerBit: 4})
	defer suite.Cleanup()

	srv := web.NewServer(
		config.WebConfig{Enabled: true, Host: "localhost", Port: 0},
		suite.Service,
		suite.Repo,
		studio.AnalogDefaults{PCMBits: 8, DefaultSamples: 50, MaxSamples: 4096},
		suite.Logger,
	)
	go func() {
		_ = srv.Start(suite.Ctx)
	}()

	if !suite.WaitFor(2*time.Second, func() bool { return srv.GetAddr() != "" }) {
		t.Fatal("web server never started")
	}
	base := "http://" + srv.GetAddr()

	resp, err := http.Post(base+"/api/encode", "application/json",
		strings.NewReader(`{"bits":"10110","scheme":"Manchester","decode":true}`))
	if err != nil {
		t.Fatalf("encode request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encode status = %d, want 200", resp.StatusCode)
	}

	var encResp struct {
		Decoded  string    `json:"decoded"`
		Waveform []float64 `json:"waveform"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&encResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if encResp.Decoded != "10110" {
		t.Errorf("decoded = %q, want 10110", encResp.Decoded)
	}
	if len(encResp.Waveform) != 20 {
		t.Errorf("waveform length = %d, want 20", len(encResp.Waveform))
	}

	// The run must be visible in the history endpoint
	runsResp, err := http.Get(base + "/api/runs")
	if err != nil {
		t.Fatalf("runs request failed: %v", err)
	}
	defer runsResp.Body.Close()
	var runs struct {
		Total int64 `json:"total"`
	}
	if err := json.NewDecoder(runsResp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode runs response: %v", err)
	}
	if runs.Total != 1 {
		t.Errorf("runs total = %d, want 1", runs.Total)
	}
}
