package proximity

import (
	"fmt"
	"time"
)

// Distance is the near/far classification of a proximity reading.
type Distance uint8

const (
	// Far means nothing covers the sensor.
	Far Distance = iota
	// Near means the sensor face is covered.
	Near
)

// String returns a lowercase name suitable for logs.
func (d Distance) String() string {
	if d == Near {
		return "near"
	}

	return "far"
}

// Sample is a single proximity reading delivered by a sensor source.
type Sample struct {
	// Raw is the distance value as reported by the hardware.
	Raw float64
	// ReceivedAt is when the reading reached the process.
	ReceivedAt time.Time
}

// NewSample stamps a raw reading with the current time.
func NewSample(raw float64) Sample {
	return Sample{
		Raw:        raw,
		ReceivedAt: time.Now(),
	}
}

// Classify maps a raw value to a Distance.
// Only an exact zero is near; negative and fractional values are far.
func Classify(raw float64) Distance {
	if raw == 0 {
		return Near
	}

	return Far
}

// Distance classifies the sample.
func (s Sample) Distance() Distance {
	return Classify(s.Raw)
}

// Near reports whether the sample classifies as near.
func (s Sample) Near() bool {
	return s.Distance() == Near
}

// String renders the sample for logs.
func (s Sample) String() string {
	return fmt.Sprintf("%s (raw=%g)", s.Distance(), s.Raw)
}
