// Package ledboard implements the LED-board protocol engine (§4.E). Two
// independent instances run concurrently, one per physical tower board,
// sharing this package's Dialect but each with its own Engine state
// (responses_enabled and which window of the SET_LED payload it reads).
//
// Grounded on sega_led_board.cpp's process_packet/send_packet: the board
// address bytes are never parsed out of the request body and stored, they
// are fixed wire constants re-synthesized on every response.
package ledboard

import "slider-fw/codec"

// Wire framing constants for both LED-board serial endpoints.
const (
	Sync   byte = 0xE0
	Escape byte = 0xD0
)

// Fixed addressing constants, re-synthesized on every frame regardless of
// direction (request or response) — the boards never parse or remember an
// address, they only ever see their own stream.
const (
	AddressHost  byte = 1
	AddressBoard byte = 2
)

// Command IDs understood by a LED-board endpoint.
const (
	CmdLEDReset           byte = 0x10
	CmdSetTimeout         byte = 0x11
	CmdSetDisableResponse byte = 0x14
	CmdSetLED             byte = 0x82
	CmdBoardInfo          byte = 0xF0
	CmdBoardStatus        byte = 0xF1
	CmdFWSum              byte = 0xF2
	CmdProtocolVer        byte = 0xF3
	CmdBoardSide          byte = 0x27
)

// boardInfoPayload is the fixed 16-byte BOARD_INFO identity response.
var boardInfoPayload = []byte{
	0x31, 0x35, 0x30, 0x39, 0x33, 0x2D, 0x30, 0x36,
	0x0A, 0x36, 0x37, 0x31, 0x30, 0x20, 0xFF, 0x90,
}

// windowOffset is the byte offset into the SET_LED payload at which each
// board's 9 tower bytes begin: 50*3 for board 0 (left), 60*3 for board 1
// (right).
var windowOffset = [2]int{150, 180}

// Dialect is the codec.Dialect shared by both LED-board streams: a 3-field
// header (dst, src, length) and a plain-sum checksum.
var Dialect = codec.Dialect{
	Sync:         Sync,
	Escape:       Escape,
	HeaderFields: 3,
	BodyLen:      func(header []byte) int { return int(header[2]) },
	Checksum:     checksum,
}

// checksum computes the LED-board protocol's plain-sum checksum over the
// header and body (dst + src + length + command + Σdata), truncated to a
// byte. It never includes the sync byte.
func checksum(header, body []byte) byte {
	sum := 0
	for _, b := range header {
		sum += int(b)
	}
	for _, b := range body {
		sum += int(b)
	}
	return byte(sum & 0xFF)
}

// Strip is the subset of the LED strip facade a board's SET_LED handler
// drives. Defined locally, like slider.Strip, so this package depends on a
// capability rather than a concrete type.
type Strip interface {
	SetTower(side, group int, r, g, b byte)
}

// Engine is one LED board's protocol state: its physical side (0 left, 1
// right) and whether it currently acknowledges SET_LED requests.
type Engine struct {
	Side             int
	ResponsesEnabled bool

	strip Strip
}

// New returns an Engine for the given physical side (0 or 1), with
// responses enabled by default, mirroring the board's boot state.
func New(side int, strip Strip) *Engine {
	return &Engine{Side: side, ResponsesEnabled: true, strip: strip}
}

// Dispatch handles one parsed frame and returns the response frame to
// send, or nil when no response is due. Every command responds
// unconditionally except SET_LED, which is suppressed while
// ResponsesEnabled is false (§4.E response suppression).
func (e *Engine) Dispatch(f codec.Frame) *codec.Frame {
	if len(f.Body) < 1 {
		return nil
	}
	cmd := f.Body[0]
	data := f.Body[1:]

	switch cmd {
	case CmdLEDReset:
		e.ResponsesEnabled = true
		return e.respond(cmd, nil)
	case CmdSetTimeout:
		payload := append([]byte{}, data...)
		return e.respond(cmd, payload)
	case CmdSetDisableResponse:
		if len(data) >= 1 {
			e.ResponsesEnabled = data[0] == 0
		}
		payload := append([]byte{}, data...)
		return e.respond(cmd, payload)
	case CmdSetLED:
		e.handleSetLED(data)
		if !e.ResponsesEnabled {
			return nil
		}
		return e.respond(cmd, nil)
	case CmdBoardInfo:
		return e.respond(cmd, boardInfoPayload)
	case CmdBoardStatus:
		return e.respond(cmd, []byte{0x00, 0x00, 0x00, 0x00})
	case CmdFWSum:
		return e.respond(cmd, []byte{0xAD, 0xF7})
	case CmdProtocolVer:
		return e.respond(cmd, []byte{0x01, 0x01, 0x04})
	case CmdBoardSide:
		return e.respond(cmd, []byte{byte(e.Side)})
	default:
		return nil
	}
}

// handleSetLED reads the board's 9-byte tower window (three BGR triples,
// groups bottom/middle/top) out of the SET_LED payload and applies it.
func (e *Engine) handleSetLED(data []byte) {
	if e.strip == nil {
		return
	}
	off := windowOffset[e.Side]
	if off+9 > len(data) {
		return
	}
	for group := 0; group < 3; group++ {
		base := off + group*3
		blue, red, green := data[base], data[base+1], data[base+2]
		e.strip.SetTower(e.Side, group, red, green, blue)
	}
}

// respond builds the response frame for cmd. Every response carries the
// fixed { status=1, command, report=1 } triple before the payload.
func (e *Engine) respond(cmd byte, payload []byte) *codec.Frame {
	body := make([]byte, 0, 3+len(payload))
	body = append(body, 1, cmd, 1)
	body = append(body, payload...)

	header := []byte{AddressHost, AddressBoard, byte(len(body))}
	return &codec.Frame{
		Header:   header,
		Body:     body,
		Checksum: checksum(header, body),
	}
}
