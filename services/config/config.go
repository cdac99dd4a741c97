// services/config/config.go
package config

import (
	"context"
	"errors"

	"slider-fw/bus"
	"slider-fw/x/strx"

	"github.com/andreyvit/tinyjson"
)

// defaultDevice is the embedded config selected when the boot context
// carries no device ID, so a board with no strapping-pin or flash record
// still comes up as an arcade cabinet rather than refusing to publish.
const defaultDevice = "arcade-cab"

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	ctxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// WithDevice returns a context carrying the device ID used to select an
// embedded config at boot.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ctxDeviceKey, device)
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

// Service publishes the embedded board config (output mode, cadence, pin
// layout overrides, ...) as retained per-key messages under "config/*" so
// that the boot-time pickup in cmd/slider-fw-main and services such as
// services/diag can read their settings with a single Subscribe, the same
// way hal picks up "config/hal" in the teacher's boot sequence.
type Service struct {
	Name string
}

func NewService() *Service { return &Service{Name: serviceName} }

// publishConfig reads the device config from embedded data and publishes it as retained messages.
func (s *Service) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(ctxDeviceKey).(string)
	device = strx.Coalesce(device, defaultDevice)

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value() // should be a map[string]any
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("embedded config is not a JSON object")
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		_ = s.publishConfig(ctx, conn)
	}()
}
