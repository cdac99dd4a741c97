// Package diag replaces the teacher's heartbeat service with a tick loop
// that reports the coordinator's own loop-rate counters instead of a bare
// "still alive" pulse: it subscribes to the retained diag/firmware/*
// messages firmware.Firmware publishes and logs the latest values on its
// own cadence, picking up interval overrides from config/diag exactly the
// way heartbeat picks up config/heartbeat.
package diag

import (
	"context"
	"sync/atomic"
	"time"

	"slider-fw/bus"
	"slider-fw/x/fmtx"
)

var (
	topicConfigDiag = bus.T("config", "diag")
	topicInputHz    = bus.T("diag", "firmware", "input_hz")
	topicOutputHz   = bus.T("diag", "firmware", "output_hz")
)

// Service holds the last-seen loop rates between log lines.
type Service struct {
	inputHz  atomic.Int64
	outputHz atomic.Int64
}

// NewService returns an idle diag service.
func NewService() *Service { return &Service{} }

// Rates returns the most recently observed input/output loop rates in Hz.
func (s *Service) Rates() (inputHz, outputHz int) {
	return int(s.inputHz.Load()), int(s.outputHz.Load())
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	inSub := conn.Subscribe(topicInputHz)
	outSub := conn.Subscribe(topicOutputHz)
	cfgSub := conn.Subscribe(topicConfigDiag)
	defer conn.Unsubscribe(inSub)
	defer conn.Unsubscribe(outSub)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-inSub.Channel():
			if v, ok := toInt(m.Payload); ok {
				s.inputHz.Store(int64(v))
			}
		case m := <-outSub.Channel():
			if v, ok := toInt(m.Payload); ok {
				s.outputHz.Store(int64(v))
			}
		case msg := <-cfgSub.Channel():
			if mp, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := mp["interval"]; ok {
					if interval, ok := iv.(float64); ok && interval > 0 {
						tick.Reset(time.Duration(interval) * time.Second)
					}
				}
			}
		case <-tick.C:
			in, out := s.Rates()
			fmtx.Printf("[diag] input=%d/s output=%d/s\n", in, out)
		}
	}
}

// Start launches the diag loop in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func toInt(payload any) (int, bool) {
	switch v := payload.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
