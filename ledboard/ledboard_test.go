package ledboard

import (
	"bytes"
	"testing"

	"slider-fw/codec"
)

type fakeStrip struct {
	towers [2][3][3]byte // [side][group][r,g,b]
}

func (s *fakeStrip) SetTower(side, group int, r, g, b byte) {
	s.towers[side][group] = [3]byte{r, g, b}
}

func requestFrame(cmd byte, data []byte) codec.Frame {
	body := append([]byte{cmd}, data...)
	header := []byte{AddressHost, AddressBoard, byte(len(body))}
	return codec.Frame{Header: header, Body: body, Checksum: checksum(header, body)}
}

func TestBoardInfo(t *testing.T) {
	e := New(0, nil)
	resp := e.Dispatch(requestFrame(CmdBoardInfo, nil))
	if resp == nil {
		t.Fatal("expected a response")
	}
	wantBody := append([]byte{1, CmdBoardInfo, 1}, boardInfoPayload...)
	if !bytes.Equal(resp.Body, wantBody) {
		t.Fatalf("body mismatch: got %x want %x", resp.Body, wantBody)
	}
	if resp.Header[0] != AddressHost || resp.Header[1] != AddressBoard {
		t.Fatalf("unexpected address bytes: %x", resp.Header)
	}
}

func TestBoardSideEchoesIndex(t *testing.T) {
	e0 := New(0, nil)
	e1 := New(1, nil)
	r0 := e0.Dispatch(requestFrame(CmdBoardSide, nil))
	r1 := e1.Dispatch(requestFrame(CmdBoardSide, nil))
	if r0.Body[3] != 0 {
		t.Fatalf("board 0 side mismatch: got %d", r0.Body[3])
	}
	if r1.Body[3] != 1 {
		t.Fatalf("board 1 side mismatch: got %d", r1.Body[3])
	}
}

func TestFixedResponses(t *testing.T) {
	e := New(0, nil)

	if r := e.Dispatch(requestFrame(CmdBoardStatus, nil)); !bytes.Equal(r.Body[3:], []byte{0, 0, 0, 0}) {
		t.Fatalf("BOARD_STATUS mismatch: %x", r.Body)
	}
	if r := e.Dispatch(requestFrame(CmdFWSum, nil)); !bytes.Equal(r.Body[3:], []byte{0xAD, 0xF7}) {
		t.Fatalf("FW_SUM mismatch: %x", r.Body)
	}
	if r := e.Dispatch(requestFrame(CmdProtocolVer, nil)); !bytes.Equal(r.Body[3:], []byte{0x01, 0x01, 0x04}) {
		t.Fatalf("PROTOCOL_VER mismatch: %x", r.Body)
	}
}

func TestSetTimeoutEchoesPayload(t *testing.T) {
	e := New(0, nil)
	resp := e.Dispatch(requestFrame(CmdSetTimeout, []byte{0x12, 0x34}))
	if !bytes.Equal(resp.Body[3:], []byte{0x12, 0x34}) {
		t.Fatalf("SET_TIMEOUT echo mismatch: %x", resp.Body)
	}
}

// S5 — SET_DISABLE_RESPONSE(1) followed by SET_LED produces zero response
// bytes, but the tower bytes are still applied to the strip.
func TestResponseSuppression_S5(t *testing.T) {
	strip := &fakeStrip{}
	e := New(0, strip)

	resp := e.Dispatch(requestFrame(CmdSetDisableResponse, []byte{1}))
	if resp == nil {
		t.Fatal("SET_DISABLE_RESPONSE itself must still respond")
	}
	if e.ResponsesEnabled {
		t.Fatal("expected ResponsesEnabled to become false")
	}

	payload := make([]byte, 189)
	payload[150], payload[151], payload[152] = 0x11, 0x22, 0x33 // group 0
	resp = e.Dispatch(requestFrame(CmdSetLED, payload))
	if resp != nil {
		t.Fatalf("expected zero response bytes with responses disabled, got %+v", resp)
	}
	if strip.towers[0][0] != [3]byte{0x22, 0x33, 0x11} {
		t.Fatalf("tower group 0 not applied: got %v", strip.towers[0][0])
	}

	// LED_RESET re-enables responses.
	resp = e.Dispatch(requestFrame(CmdLEDReset, nil))
	if resp == nil {
		t.Fatal("LED_RESET must always respond")
	}
	if !e.ResponsesEnabled {
		t.Fatal("LED_RESET must re-enable responses")
	}
}

func TestSetLEDWindowOffsetPerBoard(t *testing.T) {
	strip := &fakeStrip{}
	e0 := New(0, strip)
	e1 := New(1, strip)

	payload := make([]byte, 189)
	payload[150], payload[151], payload[152] = 1, 2, 3 // board 0 group 0
	payload[180], payload[181], payload[182] = 4, 5, 6 // board 1 group 0

	e0.Dispatch(requestFrame(CmdSetLED, payload))
	e1.Dispatch(requestFrame(CmdSetLED, payload))

	if strip.towers[0][0] != [3]byte{2, 3, 1} {
		t.Fatalf("board 0 group 0 mismatch: %v", strip.towers[0][0])
	}
	if strip.towers[1][0] != [3]byte{5, 6, 4} {
		t.Fatalf("board 1 group 0 mismatch: %v", strip.towers[1][0])
	}
}

// LED checksum invariant: for any generated response, the checksum byte is
// the plain sum of header and body modulo 256 (not a two's-complement).
func TestChecksumInvariant(t *testing.T) {
	e := New(0, nil)
	resp := e.Dispatch(requestFrame(CmdBoardInfo, nil))

	sum := 0
	for _, b := range resp.Header {
		sum += int(b)
	}
	for _, b := range resp.Body {
		sum += int(b)
	}
	if int(resp.Checksum) != sum%256 {
		t.Fatalf("checksum invariant violated: checksum %#x, sum mod 256 = %#x", resp.Checksum, sum%256)
	}
}

func TestUnknownCommandNoResponse(t *testing.T) {
	e := New(0, nil)
	if resp := e.Dispatch(requestFrame(0x55, nil)); resp != nil {
		t.Fatalf("expected no response for unknown command, got %+v", resp)
	}
}
