package firmware

import "sync"

// SerialEndpoint is the narrow, non-blocking interface the coordinator
// drives the three USB CDC streams through (§6): ReadAvailable copies
// whatever bytes are currently buffered without blocking for more, and
// Write enqueues bytes for transmission. Both calls return immediately
// regardless of how many bytes were actually available/accepted, matching
// the "parsers and emitters never await" rule of §5.
type SerialEndpoint interface {
	ReadAvailable(buf []byte) int
	Write(p []byte) (int, error)
}

// LoopbackEndpoint is a byte-slice-backed SerialEndpoint for host tests and
// simulation: Feed enqueues bytes as if the host had sent them, Written
// drains whatever the firmware wrote back. Safe for concurrent use since
// the coordinator's output loop and a test's driving goroutine touch it
// from different goroutines.
type LoopbackEndpoint struct {
	mu      sync.Mutex
	inbound []byte
	written []byte
}

// NewLoopbackEndpoint returns an empty loopback endpoint.
func NewLoopbackEndpoint() *LoopbackEndpoint { return &LoopbackEndpoint{} }

// Feed appends bytes to the inbound queue, as if the host had just sent
// them on this stream.
func (e *LoopbackEndpoint) Feed(p []byte) {
	e.mu.Lock()
	e.inbound = append(e.inbound, p...)
	e.mu.Unlock()
}

// ReadAvailable copies as many buffered inbound bytes into buf as fit.
func (e *LoopbackEndpoint) ReadAvailable(buf []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := copy(buf, e.inbound)
	e.inbound = e.inbound[n:]
	return n
}

// Write appends p to the outbound buffer.
func (e *LoopbackEndpoint) Write(p []byte) (int, error) {
	e.mu.Lock()
	e.written = append(e.written, p...)
	e.mu.Unlock()
	return len(p), nil
}

// Written drains and returns everything written so far.
func (e *LoopbackEndpoint) Written() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := append([]byte(nil), e.written...)
	e.written = e.written[:0]
	return out
}

// HIDEndpoint is the keyboard-mode output target: a single HID report
// write, gated on Writable so the coordinator never blocks waiting on the
// USB stack's device-task pump.
type HIDEndpoint interface {
	Writable() bool
	WriteReport(report []byte) error
}

// StubHID is a HIDEndpoint that is always writable and records every
// report for inspection, standing in for the real USB HID interface in
// host tests.
type StubHID struct {
	mu      sync.Mutex
	reports [][]byte
}

// NewStubHID returns an always-writable HID stub.
func NewStubHID() *StubHID { return &StubHID{} }

// Writable always reports true; the real HID interface is the only thing
// that can be momentarily not writable.
func (h *StubHID) Writable() bool { return true }

// WriteReport records a copy of report.
func (h *StubHID) WriteReport(report []byte) error {
	h.mu.Lock()
	h.reports = append(h.reports, append([]byte(nil), report...))
	h.mu.Unlock()
	return nil
}

// Reports drains and returns every report written so far.
func (h *StubHID) Reports() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.reports
	h.reports = nil
	return out
}
