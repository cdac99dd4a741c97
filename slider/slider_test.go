package slider

import (
	"bytes"
	"testing"

	"slider-fw/codec"
)

type fakeStrip struct {
	brightness byte
	keys       [NumKeys][3]byte
	dividers   [NumKeys - 1][3]byte
	updated    bool
}

func (s *fakeStrip) SetBrightness(b byte) { s.brightness = b }
func (s *fakeStrip) SetKey(key int, r, g, b byte) {
	s.keys[key] = [3]byte{r, g, b}
}
func (s *fakeStrip) SetDivider(divider int, r, g, b byte) {
	s.dividers[divider] = [3]byte{r, g, b}
}
func (s *fakeStrip) Update() { s.updated = true }

func emit(f *codec.Frame) []byte {
	logical := append(append([]byte{}, f.Header...), f.Body...)
	return codec.Emitter{Sync: Sync, Escape: Escape}.Emit(logical, f.Checksum)
}

// S1 — GET_HW_INFO: request FF F0 00 10, response starts FF F0 10 then the
// 16-byte identity with its embedded 0xFF escaped as FD FE.
func TestHWInfo_S1(t *testing.T) {
	e := New(nil)
	f := e.Dispatch(codec.Frame{Header: []byte{CmdGetHWInfo, 0x00}}, &[32]bool{}, &[32]uint16{})
	if f == nil {
		t.Fatal("expected a response frame")
	}
	if !bytes.Equal(f.Body, hwInfoPayload) {
		t.Fatalf("body mismatch: got %x want %x", f.Body, hwInfoPayload)
	}

	wire := emit(f)
	wantPrefix := []byte{Sync, CmdGetHWInfo, 0x10}
	if !bytes.HasPrefix(wire, wantPrefix) {
		t.Fatalf("wire prefix mismatch: got %x want prefix %x", wire, wantPrefix)
	}
	// The 0xFF at identity offset 14 must be escaped as FD FE on the wire.
	if !bytes.Contains(wire, []byte{0xFD, 0xFE}) {
		t.Fatalf("expected escaped 0xFF (FD FE) in wire bytes: %x", wire)
	}
}

// S2 — enable auto-report, then one report with all sensors quiet: the
// device emits FF 01 20 <32 zero bytes> DF.
func TestAutoReport_S2(t *testing.T) {
	e := New(nil)
	resp := e.Dispatch(codec.Frame{Header: []byte{CmdEnableAutoReport, 0x00}}, &[32]bool{}, &[32]uint16{})
	if resp != nil {
		t.Fatalf("ENABLE_AUTO_REPORT must not itself produce a response, got %+v", resp)
	}
	if !e.AutoReport {
		t.Fatal("expected AutoReport to be enabled")
	}

	report := e.GenerateReport(&[32]bool{}, &[32]uint16{})
	if report.Header[0] != CmdSliderReport || report.Header[1] != 0x20 {
		t.Fatalf("unexpected header: %x", report.Header)
	}
	for i, b := range report.Body {
		if b != 0 {
			t.Fatalf("expected all-zero body at quiescent pressures, byte %d = %#x", i, b)
		}
	}
	if report.Checksum != 0xDF {
		t.Fatalf("checksum mismatch: got %#x want 0xDF", report.Checksum)
	}
}

// S3 — LED_REPORT at brightness 0x3F with all triples zero: no response,
// and the strip's brightness becomes 0x3F.
func TestLEDReport_S3(t *testing.T) {
	strip := &fakeStrip{}
	e := New(strip)

	body := make([]byte, 94)
	body[0] = 0x3F
	resp := e.Dispatch(codec.Frame{Header: []byte{CmdLEDReport, 0x5E}, Body: body}, &[32]bool{}, &[32]uint16{})
	if resp != nil {
		t.Fatalf("LED_REPORT must not produce a response, got %+v", resp)
	}
	if strip.brightness != 0x3F {
		t.Fatalf("brightness not applied: got %#x want 0x3F", strip.brightness)
	}
	if !strip.updated {
		t.Fatal("expected strip.Update to be called")
	}
	for k, rgb := range strip.keys {
		if rgb != [3]byte{0, 0, 0} {
			t.Fatalf("key %d expected zero colour, got %v", k, rgb)
		}
	}
}

// LED_REPORT placement: a single non-zero triple must land on the correct
// key or divider. Triple 0 -> key 15, triple 1 -> divider 14, triple 2 ->
// key 14, and so on (§4.D), with red/green/blue taken from the {blue, red,
// green} wire order.
func TestLEDReport_Placement(t *testing.T) {
	cases := []struct {
		tripleIdx int
		wantKey   int // -1 if it should land on a divider instead
		wantDiv   int
	}{
		{0, 15, -1},
		{1, -1, 14},
		{2, 14, -1},
		{29, -1, 0},
		{30, 0, -1},
	}
	for _, c := range cases {
		strip := &fakeStrip{}
		e := New(strip)
		body := make([]byte, 94)
		body[0] = 0x10 // brightness, irrelevant here
		off := 1 + c.tripleIdx*3
		body[off], body[off+1], body[off+2] = 0x11, 0x22, 0x33 // blue, red, green
		e.Dispatch(codec.Frame{Header: []byte{CmdLEDReport, byte(len(body))}, Body: body}, &[32]bool{}, &[32]uint16{})

		want := [3]byte{0x22, 0x33, 0x11} // r, g, b
		if c.wantKey >= 0 {
			if strip.keys[c.wantKey] != want {
				t.Fatalf("triple %d: key %d got %v want %v", c.tripleIdx, c.wantKey, strip.keys[c.wantKey], want)
			}
		} else {
			if strip.dividers[c.wantDiv] != want {
				t.Fatalf("triple %d: divider %d got %v want %v", c.tripleIdx, c.wantDiv, strip.dividers[c.wantDiv], want)
			}
		}
	}
}

// Slider checksum invariant (§8.3): for any generated frame, the sum of
// header, body, and checksum is zero modulo 256.
func TestChecksumInvariant(t *testing.T) {
	e := New(nil)
	pressures := &[32]uint16{}
	for i := range pressures {
		pressures[i] = uint16(i * 31 % 1024)
	}
	report := e.GenerateReport(&[32]bool{}, pressures)

	sum := 0
	for _, b := range report.Header {
		sum += int(b)
	}
	for _, b := range report.Body {
		sum += int(b)
	}
	sum += int(report.Checksum)
	if sum%256 != 0 {
		t.Fatalf("checksum invariant violated: sum mod 256 = %d", sum%256)
	}
}

// Unknown commands and bad-state frames produce no response, and RESET /
// DISABLE_AUTO_REPORT ack with an echoed, zero-length body.
func TestResetAndDisableAck(t *testing.T) {
	e := New(nil)
	e.AutoReport = true

	resp := e.Dispatch(codec.Frame{Header: []byte{CmdReset, 0x00}}, &[32]bool{}, &[32]uint16{})
	if resp == nil || resp.Header[0] != CmdReset || len(resp.Body) != 0 {
		t.Fatalf("unexpected RESET response: %+v", resp)
	}
	if e.AutoReport {
		t.Fatal("RESET must disable auto-report")
	}

	e.AutoReport = true
	resp = e.Dispatch(codec.Frame{Header: []byte{CmdDisableAutoReport, 0x00}}, &[32]bool{}, &[32]uint16{})
	if resp == nil || resp.Header[0] != CmdDisableAutoReport {
		t.Fatalf("unexpected DISABLE_AUTO_REPORT response: %+v", resp)
	}
	if e.AutoReport {
		t.Fatal("DISABLE_AUTO_REPORT must disable auto-report")
	}

	resp = e.Dispatch(codec.Frame{Header: []byte{0x7F, 0x00}}, &[32]bool{}, &[32]uint16{})
	if resp != nil {
		t.Fatalf("unknown command must produce no response, got %+v", resp)
	}
}

// FakeMode reports 0xFC for a touched sensor and 0x00 otherwise, regardless
// of the pressure snapshot.
func TestFakeModeReport(t *testing.T) {
	e := New(nil)
	e.FakeMode = true
	touched := &[32]bool{}
	touched[0] = true
	touched[31] = true
	report := e.GenerateReport(touched, &[32]uint16{})

	// Keys are emitted high to low: body[0..1] is key 15's two sensors (30,
	// 31), body[30..31] is key 0's (0, 1).
	if report.Body[1] != 0xFC {
		t.Fatalf("sensor 31 (body[1]) expected 0xFC, got %#x", report.Body[1])
	}
	if report.Body[30] != 0xFC {
		t.Fatalf("sensor 0 (body[30]) expected 0xFC, got %#x", report.Body[30])
	}
	if report.Body[0] != 0x00 {
		t.Fatalf("untouched sensor 30 expected 0x00, got %#x", report.Body[0])
	}
}
