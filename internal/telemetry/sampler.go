package telemetry

import (
	"time"

	"github.com/rs/zerolog/log"
)

// WallClock is the synced clock, see package clock.
type WallClock interface {
	Unix() int64
}

// SignalSource reports link quality in dBm.
type SignalSource interface {
	Signal() (int, error)
}

// MemorySource reports bytes available for allocation.
type MemorySource interface {
	FreeMemory() (uint64, error)
}

type Sampler struct {
	deviceID string
	clock    WallClock
	signal   SignalSource
	memory   MemorySource
	boot     time.Time
	since    func(time.Time) time.Duration
}

func NewSampler(deviceID string, clock WallClock, signal SignalSource, memory MemorySource) *Sampler {
	return &Sampler{
		deviceID: deviceID,
		clock:    clock,
		signal:   signal,
		memory:   memory,
		boot:     time.Now(),
		since:    time.Since,
	}
}

// Sample never fails: an unreadable source reports zero.
func (s *Sampler) Sample() Record {
	rssi, err := s.signal.Signal()
	if err != nil {
		log.Debug().Err(err).Msg("signal unavailable")
		rssi = 0
	}
	free, err := s.memory.FreeMemory()
	if err != nil {
		log.Debug().Err(err).Msg("memory stats unavailable")
		free = 0
	}

	return Record{
		DeviceID:       s.deviceID,
		Timestamp:      s.clock.Unix(),
		SignalStrength: rssi,
		FreeMemory:     free,
		Uptime:         uint64(s.since(s.boot).Milliseconds()),
	}
}
