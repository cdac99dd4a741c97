// Package firmware implements the coordinator (component G): the single
// value that owns every subsystem (touch façade, LED strip, the slider and
// LED-board protocol engines, the keyboard report) and runs the two loop
// entry points the board-bringup entry point pins to the two physical
// cores.
package firmware

import "slider-fw/touch"

// Mode selects which half of §4.G's output loop runs: arcade mode services
// the three serial endpoints through the real-protocol engines; keyboard
// mode instead drives the HID bitmap and reactive lighting.
const (
	ModeArcade   = "arcade"
	ModeKeyboard = "keyboard"
)

// Config holds the boot-time settings a device config publishes under
// "config/*" (services/config), mirroring the shape of the embedded
// arcade-cab / keyboard-frontend configs.
type Config struct {
	Mode             string
	AutoReportMs     uint32
	LightsDivisor    uint32
	TouchThreshold   byte
	ReleaseThreshold byte
}

// DefaultConfig matches the firmware's boot state before any config
// message has arrived: arcade mode, 4ms auto-report cadence, LED commits
// paced at 1-in-4 HID frames.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeArcade,
		AutoReportMs:     4,
		LightsDivisor:    4,
		TouchThreshold:   touch.TouchThreshold,
		ReleaseThreshold: touch.ReleaseThreshold,
	}
}
