// Package touch implements the touch acquisition façade (component A):
// composing three physical capacitive-touch chips into the 32-sensor
// logical array the rest of the firmware works with.
package touch

import "slider-fw/drivers/captouch"

// NumSensors is the number of logical touch sensors (16 keys × 2 each).
const NumSensors = 32

// chipAddress and chipLowerBound describe the three-chip composition rule:
// for each chip in order, electrode index runs from 11 down to the given
// lower bound. The first two chips use all 12 electrodes; the third only
// electrodes 11..4.
var (
	chipAddress    = [3]uint16{0x5A, 0x5C, 0x5D}
	chipLowerBound = [3]int{0, 0, 4}
)

// TouchThreshold and ReleaseThreshold are applied uniformly across every
// electrode on every chip.
const (
	TouchThreshold   byte = 15
	ReleaseThreshold byte = 7
)

// Facade composes the three chips into the 32-entry logical sensor arrays
// and caches the most recent scan.
type Facade struct {
	chips [3]captouch.Device

	states   [NumSensors]bool
	readouts [NumSensors]uint16
}

// New returns a Facade driving 3 chip devices, constructed by newChip (one
// call per chip, in address order) so host and MCU builds can each supply
// their own constructor without this package needing a build tag of its
// own.
func New(newChip func(addr uint16) captouch.Device) *Facade {
	f := &Facade{}
	for i, addr := range chipAddress {
		f.chips[i] = newChip(addr)
	}
	return f
}

// Configure brings up every chip with the fixed touch/release thresholds.
// A chip that fails to configure is left as-is; downstream scans of it
// return zeros, per the configuration-mismatch handling this firmware
// applies to touch hardware.
func (f *Facade) Configure() {
	for i, chip := range f.chips {
		_ = chip.Configure(captouch.Config{
			Address:          chipAddress[i],
			TouchThreshold:   TouchThreshold,
			ReleaseThreshold: ReleaseThreshold,
		})
	}
}

// ScanTouchStates re-reads the touch bitmap from every chip and returns the
// populated 32-element boolean array, in logical sensor order.
func (f *Facade) ScanTouchStates() *[NumSensors]bool {
	idx := 0
	for i, chip := range f.chips {
		bitmap, _ := chip.GetAllTouched()
		for e := 11; e >= chipLowerBound[i]; e-- {
			f.states[idx] = bitmap&(1<<uint(e)) != 0
			idx++
		}
	}
	return &f.states
}

// ScanTouchReadouts re-reads the filtered pressure values from every chip
// and returns the populated 32-element array, in logical sensor order.
func (f *Facade) ScanTouchReadouts() *[NumSensors]uint16 {
	idx := 0
	for i, chip := range f.chips {
		values, _ := chip.GetAllElectrodeValues()
		for e := 11; e >= chipLowerBound[i]; e-- {
			f.readouts[idx] = values[e]
			idx++
		}
	}
	return &f.readouts
}

// IsKeyPressed reports whether either sensor backing key k (0..15) is
// touched, using the most recent ScanTouchStates result.
func (f *Facade) IsKeyPressed(k int) bool {
	return f.states[2*k] || f.states[2*k+1]
}
