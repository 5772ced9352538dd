package database

import (
	"time"

	"gorm.io/gorm"
)

// Run kinds
const (
	KindEncode = "encode"
	KindDecode = "decode"
)

// Bit sources
const (
	SourceDigital = "digital" // Hand-typed or API-supplied bits
	SourcePCM     = "pcm"     // Bits from the PCM front-end
	SourceDM      = "dm"      // Bits from delta modulation
)

// SignalRun records one completed encode or decode
type SignalRun struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	RunID          string    `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	Kind           string    `gorm:"index;size:10;not null" json:"kind"`
	Scheme         string    `gorm:"index;size:30;not null" json:"scheme"`
	Source         string    `gorm:"size:10" json:"source"`
	Bits           string    `json:"bits"`
	BitCount       int       `gorm:"not null" json:"bit_count"`
	SampleCount    int       `gorm:"not null" json:"sample_count"`
	Decoded        string    `json:"decoded,omitempty"`
	Palindrome     string    `json:"palindrome,omitempty"`
	LongestZeroRun int       `json:"longest_zero_run"`
	Substitutions  int       `json:"substitutions"`
	DurationMicros int64     `json:"duration_micros"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for SignalRun
func (SignalRun) TableName() string {
	return "signal_runs"
}

// BeforeCreate hook to ensure CreatedAt is set
func (r *SignalRun) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
