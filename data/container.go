// Package data keeps process-wide runtime state shared between the probe
// scheduler and the health endpoint. No drug records are stored here.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/drugs-api/interfaces"
	"github.com/giygas/drugs-api/logging"
)

// Compile-time check to ensure ProbeContainer implements ProbeStore
var _ interfaces.ProbeStore = (*ProbeContainer)(nil)

// ProbeContainer holds the latest provider probe outcome with atomic values
type ProbeContainer struct {
	lastProbe       atomic.Value // interfaces.ProbeResult
	lastSuccess     atomic.Value // time.Time
	probing         atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewProbeContainer creates an empty container
func NewProbeContainer() *ProbeContainer {
	pc := &ProbeContainer{}
	pc.lastSuccess.Store(time.Time{})
	pc.serverStartTime.Store(time.Time{})
	return pc
}

// RecordProbe stores result and, when it succeeded, moves the last success time
func (pc *ProbeContainer) RecordProbe(result interfaces.ProbeResult) {
	pc.lastProbe.Store(result)
	if result.Err == "" {
		pc.lastSuccess.Store(result.At)
	}
}

// LastProbe returns the latest probe outcome; false when no probe ran yet
func (pc *ProbeContainer) LastProbe() (interfaces.ProbeResult, bool) {
	if v := pc.lastProbe.Load(); v != nil {
		if result, ok := v.(interfaces.ProbeResult); ok {
			return result, true
		}
		logging.Warn("Probe result is invalid")
	}
	return interfaces.ProbeResult{}, false
}

// LastSuccess returns the time of the latest successful probe
func (pc *ProbeContainer) LastSuccess() time.Time {
	if v := pc.lastSuccess.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the last probe success value")
	return time.Time{}
}

// IsProbing returns true if a probe is currently in progress
func (pc *ProbeContainer) IsProbing() bool {
	return pc.probing.Load()
}

// BeginProbe marks the start of a probe
// Returns true if the probe can proceed, false if another one is in progress
func (pc *ProbeContainer) BeginProbe() bool {
	return pc.probing.CompareAndSwap(false, true)
}

// EndProbe marks the end of a probe
func (pc *ProbeContainer) EndProbe() {
	pc.probing.Store(false)
}

// SetServerStartTime sets the server start time
func (pc *ProbeContainer) SetServerStartTime(startTime time.Time) {
	pc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (pc *ProbeContainer) GetServerStartTime() time.Time {
	if v := pc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
