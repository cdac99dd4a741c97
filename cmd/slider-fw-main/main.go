// Command slider-fw-main is the board-bringup entry point: it assembles a
// firmware.Firmware from whichever collaborators the current build target
// provides (see bringup_host.go / bringup_mcu.go) and runs its two loops.
// Pinning RunInput/RunOutput to the two physical cores is itself board
// bring-up and happens here, not inside package firmware.
package main

import (
	"context"
	"time"

	"slider-fw/bus"
	"slider-fw/firmware"
	"slider-fw/services/config"
	"slider-fw/services/diag"
)

func main() {
	ctx := context.Background()

	b := bus.NewBus(8)
	cfgConn := b.NewConnection("config")
	diagConn := b.NewConnection("diag")
	fwConn := b.NewConnection("firmware")

	println("[main] publishing embedded config ...")
	config.NewService().Start(config.WithDevice(ctx, defaultDeviceID), cfgConn)

	println("[main] starting diag service ...")
	diag.NewService().Start(ctx, diagConn)

	time.Sleep(100 * time.Millisecond) // let retained config/* messages land

	cfg := firmware.DefaultConfig()
	awaitConfig(b, &cfg)

	sliderEP, board0EP, board1EP, hid, newChip, stripSink := bringUp()

	fw := firmware.New(cfg, newChip, stripSink, sliderEP, board0EP, board1EP, hid, fwConn)
	fw.Configure()

	println("[main] starting input/output loops ...")
	go fw.RunInput(ctx)
	fw.RunOutput(ctx)
}

// awaitConfig applies whatever config/* values the config service has
// already published, the same single-shot pickup hal.Run does for
// config/hal: it subscribes, waits briefly, and takes whatever retained
// messages are already sitting on each topic.
func awaitConfig(b *bus.Bus, cfg *firmware.Config) {
	conn := b.NewConnection("bootstrap")
	defer conn.Disconnect()

	modeSub := conn.Subscribe(bus.T("config", "mode"))
	cadenceSub := conn.Subscribe(bus.T("config", "auto_report_ms"))
	divisorSub := conn.Subscribe(bus.T("config", "lights_divisor"))

	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case m := <-modeSub.Channel():
			if s, ok := m.Payload.(string); ok {
				cfg.Mode = s
			}
		case m := <-cadenceSub.Channel():
			if v, ok := m.Payload.(float64); ok {
				cfg.AutoReportMs = uint32(v)
			}
		case m := <-divisorSub.Channel():
			if v, ok := m.Payload.(float64); ok {
				cfg.LightsDivisor = uint32(v)
			}
		case <-deadline:
			return
		}
	}
}
