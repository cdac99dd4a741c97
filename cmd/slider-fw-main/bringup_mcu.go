//go:build rp2040 || rp2350

package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"slider-fw/drivers/captouch"
	"slider-fw/firmware"
	"slider-fw/ledstrip"
)

const defaultDeviceID = "arcade-cab"

// ledStripPin, sliderUART and the board UARTs are fixed per this board's
// wiring; a future revision would read these from a pin-map config record
// instead of compiling them in.
const ledStripPin = machine.GPIO18

// bringUp on the MCU build wires real hardware: the three touch chips over
// I2C0, the WS2812B chain on ledStripPin, the slider endpoint over UART1
// via tinygo-uartx's interrupt-driven driver (its TryRead is exactly the
// non-blocking ReadAvailable firmware.SerialEndpoint wants), and the two
// LED-board endpoints over the stdlib UART0, since this board only breaks
// out two spare UARTs — a genuine USB CDC composite device would replace
// both once the board's USB descriptors are defined.
func bringUp() (sliderEP, board0EP, board1EP firmware.SerialEndpoint, hid firmware.HIDEndpoint, newChip firmware.NewChipFunc, stripSink ledstrip.Sink) {
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{Frequency: machine.TWI_FREQ_400KHZ})

	slider := uartx.UART1
	_ = slider.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       uartx.UART1_TX_PIN,
		RX:       uartx.UART1_RX_PIN,
	})
	sliderEP = &uartxEndpoint{uart: slider}

	board0 := machine.UART0
	_ = board0.Configure(machine.UARTConfig{BaudRate: 115200})
	board0EP = &machineUARTEndpoint{uart: board0}

	// Second LED-board stream shares UART0's software buffer isolation
	// only nominally here; a real board needs a second physical UART or a
	// genuine USB CDC interface for this stream.
	board1EP = &machineUARTEndpoint{uart: board0}

	hid = firmware.NewStubHID()

	newChip = func(addr uint16) captouch.Device {
		return captouch.New(i2c)
	}

	stripSink = ledstrip.NewWS2812Sink(ledStripPin)
	return
}

// uartxEndpoint adapts a tinygo-uartx UART to firmware.SerialEndpoint.
type uartxEndpoint struct {
	uart *uartx.UART
}

func (e *uartxEndpoint) ReadAvailable(buf []byte) int { return e.uart.TryRead(buf) }
func (e *uartxEndpoint) Write(p []byte) (int, error)  { return e.uart.Write(p) }

// machineUARTEndpoint adapts the tinygo standard library's UART to
// firmware.SerialEndpoint using its buffered, non-blocking ReadByte.
type machineUARTEndpoint struct {
	uart *machine.UART
}

func (e *machineUARTEndpoint) ReadAvailable(buf []byte) int {
	n := 0
	for n < len(buf) && e.uart.Buffered() > 0 {
		b, err := e.uart.ReadByte()
		if err != nil {
			break
		}
		buf[n] = b
		n++
	}
	return n
}

func (e *machineUARTEndpoint) Write(p []byte) (int, error) { return e.uart.Write(p) }
