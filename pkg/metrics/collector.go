package metrics

import (
	"sync"
)

// Collector collects LineLab codec and service metrics
type Collector struct {
	mu sync.RWMutex

	// Codec metrics, per scheme
	encodesByScheme       map[string]uint64
	decodesByScheme       map[string]uint64
	substitutionsByScheme map[string]uint64

	// Aggregate codec metrics
	samplesGenerated uint64
	bitsEncoded      uint64
	decodeSentinels  uint64
	invalidInputs    uint64

	// Analog front-end conversions, per kind ("pcm"/"dm")
	analogByKind map[string]uint64

	// Persistence
	runsStored uint64
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		encodesByScheme:       make(map[string]uint64),
		decodesByScheme:       make(map[string]uint64),
		substitutionsByScheme: make(map[string]uint64),
		analogByKind:          make(map[string]uint64),
	}
}

// EncodeCompleted records a successful encode
func (c *Collector) EncodeCompleted(scheme string, bits, samples int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.encodesByScheme[scheme]++
	c.bitsEncoded += uint64(bits)
	c.samplesGenerated += uint64(samples)
}

// DecodeCompleted records a decode that produced bits
func (c *Collector) DecodeCompleted(scheme string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decodesByScheme[scheme]++
}

// DecodeSentinel records a decode that returned a placeholder result
func (c *Collector) DecodeSentinel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decodeSentinels++
}

// SubstitutionsReverted records unscrambled substitution windows
func (c *Collector) SubstitutionsReverted(scheme string, count int) {
	if count <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.substitutionsByScheme[scheme] += uint64(count)
}

// InvalidInput records a request rejected before the codec ran
func (c *Collector) InvalidInput() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidInputs++
}

// AnalogConverted records a PCM or delta modulation conversion
func (c *Collector) AnalogConverted(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.analogByKind[kind]++
}

// RunStored records a run persisted to the database
func (c *Collector) RunStored() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runsStored++
}

// Reset clears all metrics (useful for testing)
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.encodesByScheme = make(map[string]uint64)
	c.decodesByScheme = make(map[string]uint64)
	c.substitutionsByScheme = make(map[string]uint64)
	c.analogByKind = make(map[string]uint64)
	c.samplesGenerated = 0
	c.bitsEncoded = 0
	c.decodeSentinels = 0
	c.invalidInputs = 0
	c.runsStored = 0
}

// Getters for metrics

// GetEncodes returns encode counts keyed by scheme
func (c *Collector) GetEncodes() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyCounts(c.encodesByScheme)
}

// GetDecodes returns decode counts keyed by scheme
func (c *Collector) GetDecodes() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyCounts(c.decodesByScheme)
}

// GetSubstitutions returns reverted substitution counts keyed by scheme
func (c *Collector) GetSubstitutions() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyCounts(c.substitutionsByScheme)
}

// GetAnalogConversions returns analog conversion counts keyed by kind
func (c *Collector) GetAnalogConversions() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyCounts(c.analogByKind)
}

// GetSamplesGenerated returns total waveform samples produced
func (c *Collector) GetSamplesGenerated() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.samplesGenerated
}

// GetBitsEncoded returns total bits encoded
func (c *Collector) GetBitsEncoded() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitsEncoded
}

// GetDecodeSentinels returns total sentinel decode results
func (c *Collector) GetDecodeSentinels() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeSentinels
}

// GetInvalidInputs returns total rejected requests
func (c *Collector) GetInvalidInputs() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invalidInputs
}

// GetRunsStored returns total runs persisted
func (c *Collector) GetRunsStored() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runsStored
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
