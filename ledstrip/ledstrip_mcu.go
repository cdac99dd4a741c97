//go:build rp2040 || rp2350

package ledstrip

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// ws2812Sink adapts a tinygo.org/x/drivers/ws2812 device to the Sink
// interface, converting ledstrip's RGB into GRB-ordered raw bytes written
// through the driver's WriteRaw.
type ws2812Sink struct {
	dev ws2812.Device
}

func (s ws2812Sink) WriteColors(pixels []RGB) error {
	buf := make([]byte, 0, len(pixels)*3)
	for _, px := range pixels {
		buf = append(buf, px.G, px.R, px.B)
	}
	return s.dev.WriteRaw(buf)
}

// NewMCU returns a Facade driving a real WS2812B chain on pin.
func NewMCU(pin machine.Pin) *Facade {
	return New(NewWS2812Sink(pin))
}

// NewWS2812Sink returns the Sink alone, for callers (such as the board
// bring-up entry point) that construct the Facade themselves via New.
func NewWS2812Sink(pin machine.Pin) Sink {
	return ws2812Sink{dev: ws2812.New(pin)}
}
