package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under ctxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgArcadeCab = `{
  "mode": "arcade",
  "auto_report_ms": 4,
  "lights_divisor": 4,
  "touch_threshold": 15,
  "release_threshold": 7,
  "heartbeat": {
      "interval": 1
  }
}`

const cfgKeyboardFrontend = `{
  "mode": "keyboard",
  "auto_report_ms": 4,
  "lights_divisor": 4,
  "touch_threshold": 15,
  "release_threshold": 7,
  "heartbeat": {
      "interval": 1
  }
}`

var embeddedConfigs = map[string][]byte{
	"arcade-cab":        []byte(cfgArcadeCab),
	"keyboard-frontend": []byte(cfgKeyboardFrontend),
}
