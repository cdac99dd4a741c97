// Package captouch provides a driver for MPR121-style 12-channel capacitive
// touch controllers, used here as the physical acquisition chip behind the
// touch façade (component A). It follows the two-phase shape of
// drivers/aht20: Configure once at bring-up, then poll GetAllTouched and
// GetAllElectrodeValues from the input loop.
//
// Configuration follows the chip's stop-mode/run-mode discipline: threshold
// and filter registers can only be written while the electrode configuration
// register holds the device in stop mode; writing the electrode count to
// that register starts sampling.
package captouch

import "time"

// Config controls non-hardware behaviour applied at Configure time.
type Config struct {
	// Address is the I2C address, one of 0x5A, 0x5C, 0x5D on this board.
	Address uint16
	// TouchThreshold and ReleaseThreshold are applied to every electrode
	// (§3's fixed 15/7 discipline).
	TouchThreshold   byte
	ReleaseThreshold byte
}

// Device is the interface touch.Facade composes three instances of, one per
// physical chip. The MCU build backs it with real I2C register access; the
// host build backs it with a deterministic or caller-injected simulator.
type Device interface {
	Configure(cfg Config) error
	// GetAllTouched returns the touch status bitmap, electrodes 0..11 in
	// the low 12 bits.
	GetAllTouched() (uint16, error)
	// GetAllElectrodeValues returns the filtered (pressure-like) reading
	// for all 12 electrodes, regardless of how many are actually wired on
	// this chip — callers slice down to the electrodes they use.
	GetAllElectrodeValues() ([12]uint16, error)
}

// defaultBringUpDelay is the settle time the chip needs between leaving
// stop mode and producing a first valid sample.
const defaultBringUpDelay = 10 * time.Millisecond
