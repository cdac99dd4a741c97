// Package slider implements the slider protocol engine (§4.D): the command
// dispatch table for the slider's own serial endpoint, SLIDER_REPORT
// generation from a touch snapshot, and LED_REPORT decoding into strip
// updates. It is grounded on sega_slider.cpp's command switch and
// map_touch_to_byte, generalized onto the shared codec.Dialect/Parser rather
// than a hand-rolled state machine.
package slider

import (
	"slider-fw/codec"
	"slider-fw/x/mathx"
)

// Wire framing constants for the slider's serial endpoint.
const (
	Sync   byte = 0xFF
	Escape byte = 0xFD
)

// Command IDs understood by the slider endpoint.
const (
	CmdSliderReport      byte = 0x01
	CmdLEDReport         byte = 0x02
	CmdEnableAutoReport  byte = 0x03
	CmdDisableAutoReport byte = 0x04
	CmdReset             byte = 0x10
	CmdGetHWInfo         byte = 0xF0
)

// NumKeys is the number of slider keys, each backed by two capacitive
// sensors (§3).
const NumKeys = 16

// hwInfoPayload is the fixed 16-byte GET_HW_INFO response body, copied
// verbatim from the hardware this firmware emulates.
var hwInfoPayload = []byte{
	0x31, 0x35, 0x33, 0x33, 0x30, 0x20, 0x20, 0x20,
	0xA0, 0x30, 0x36, 0x37, 0x31, 0x32, 0xFF, 0x90,
}

// Dialect is the codec.Dialect for the slider's wire format: a 2-field
// header (command_id, length) and a negated-sum checksum.
var Dialect = codec.Dialect{
	Sync:         Sync,
	Escape:       Escape,
	HeaderFields: 2,
	BodyLen:      func(header []byte) int { return int(header[1]) },
	Checksum:     checksum,
}

// checksum computes the slider protocol's negated-sum checksum over the
// header and body (the sync byte itself is not included).
func checksum(header, body []byte) byte {
	sum := 0
	for _, b := range header {
		sum += int(b)
	}
	for _, b := range body {
		sum += int(b)
	}
	return byte((-sum) & 0xFF)
}

// Strip is the subset of the LED strip facade (component B) the LED_REPORT
// handler drives. Defined here, rather than imported from package ledstrip,
// so the slider engine depends on a capability, not a concrete type.
type Strip interface {
	SetBrightness(b byte)
	SetKey(key int, r, g, b byte)
	SetDivider(divider int, r, g, b byte)
	Update()
}

// Engine holds the slider endpoint's protocol-level state: whether
// auto-report is currently enabled, and whether report bytes should be
// synthesized in "fake" touch mode instead of mapped from real pressure
// readings.
type Engine struct {
	AutoReport bool
	FakeMode   bool

	strip Strip
}

// New returns an Engine driving the given LED strip facade.
func New(strip Strip) *Engine {
	return &Engine{strip: strip}
}

// Dispatch handles one parsed, checksum-valid frame from the slider's
// serial endpoint and returns the frame to send in response, or nil when no
// response is due. Frames with a bad checksum are dropped by the caller
// before they ever reach Dispatch (§7); Dispatch itself never returns an
// error, since every drop reason here is diagnostics-only.
func (e *Engine) Dispatch(f codec.Frame, touched *[32]bool, pressures *[32]uint16) *codec.Frame {
	if len(f.Header) < 1 {
		return nil
	}
	switch f.Header[0] {
	case CmdSliderReport:
		return e.GenerateReport(touched, pressures)
	case CmdLEDReport:
		e.handleLEDReport(f.Body)
		return nil
	case CmdEnableAutoReport:
		e.AutoReport = true
		return nil
	case CmdDisableAutoReport:
		e.AutoReport = false
		return e.ack(CmdDisableAutoReport)
	case CmdReset:
		e.AutoReport = false
		return e.ack(CmdReset)
	case CmdGetHWInfo:
		return e.frame(CmdGetHWInfo, hwInfoPayload)
	default:
		return nil
	}
}

// GenerateReport builds a SLIDER_REPORT frame from the current touch
// snapshot. It is also what the coordinator calls directly on the
// auto-report cadence, without going through Dispatch.
//
// Keys are emitted high to low (15 down to 0), two sensor bytes per key, per
// sega_slider.cpp's generate_slider_report. In real mode each sensor's
// pressure is linearly mapped from its 10-bit range onto 0..0xFC, the
// largest value below both the sync and escape bytes so the common case
// never needs escaping. In fake mode a touched sensor reports 0xFC and an
// untouched one reports 0x00.
func (e *Engine) GenerateReport(touched *[32]bool, pressures *[32]uint16) *codec.Frame {
	body := make([]byte, NumKeys*2)
	idx := 0
	for key := NumKeys - 1; key >= 0; key-- {
		for j := 0; j < 2; j++ {
			sensor := key*2 + j
			if e.FakeMode {
				if touched[sensor] {
					body[idx] = 0xFC
				} else {
					body[idx] = 0x00
				}
			} else {
				body[idx] = mapPressure(pressures[sensor])
			}
			idx++
		}
	}
	return e.frame(CmdSliderReport, body)
}

// mapPressure linearly maps a 10-bit pressure reading onto 0..0xFC.
func mapPressure(v uint16) byte {
	return byte(mathx.MapU16(v, 0, 1023, 0, 0xFC))
}

// handleLEDReport decodes a LED_REPORT body into strip updates.
// Body layout: byte 0 is the global brightness, followed by 31 BGR
// triples. Triples alternate key/divider, highest index first: triple 0
// lands on key 15, triple 1 on divider 14, triple 2 on key 14, and so on,
// per sega_slider.cpp's handle_led_report.
func (e *Engine) handleLEDReport(body []byte) {
	if e.strip == nil || len(body) < 1 {
		return
	}
	e.strip.SetBrightness(body[0])
	for i := 0; i < 31; i++ {
		off := 1 + i*3
		if off+2 >= len(body) {
			break
		}
		blue, red, green := body[off], body[off+1], body[off+2]
		if i%2 == 0 {
			key := NumKeys - 1 - i/2
			e.strip.SetKey(key, red, green, blue)
		} else {
			divider := NumKeys - 2 - i/2
			e.strip.SetDivider(divider, red, green, blue)
		}
	}
	e.strip.Update()
}

func (e *Engine) frame(cmd byte, body []byte) *codec.Frame {
	header := []byte{cmd, byte(len(body))}
	return &codec.Frame{
		Header:   header,
		Body:     body,
		Checksum: checksum(header, body),
	}
}

func (e *Engine) ack(cmd byte) *codec.Frame {
	return e.frame(cmd, nil)
}
