//go:build !rp2040 && !rp2350

package main

import (
	"slider-fw/drivers/captouch"
	"slider-fw/firmware"
	"slider-fw/ledstrip"
)

// defaultDeviceID selects which embedded config services/config publishes
// at boot. The desktop build defaults to the arcade cabinet profile; a real
// deployment would read this from a strapping pin or flash record.
const defaultDeviceID = "arcade-cab"

// bringUp on the host build wires every collaborator to an in-memory
// simulator: three loopback serial endpoints, a HID stub, and the
// captouch host simulator behind the touch façade. This is what the
// in-process tests exercise and what `go run ./cmd/slider-fw-main` drives
// on a development machine without any attached hardware.
func bringUp() (sliderEP, board0EP, board1EP firmware.SerialEndpoint, hid firmware.HIDEndpoint, newChip firmware.NewChipFunc, stripSink ledstrip.Sink) {
	sliderEP = firmware.NewLoopbackEndpoint()
	board0EP = firmware.NewLoopbackEndpoint()
	board1EP = firmware.NewLoopbackEndpoint()
	hid = firmware.NewStubHID()
	newChip = func(addr uint16) captouch.Device { return captouch.New(nil) }
	stripSink = nil // host build inspects ledstrip.Facade.Image() directly
	return
}
