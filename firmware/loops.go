package firmware

import (
	"context"

	"slider-fw/bus"
	"slider-fw/codec"
	"slider-fw/errcode"
	"slider-fw/ledboard"
	"slider-fw/slider"
	"slider-fw/touch"
	"slider-fw/x/fmtx"
	"slider-fw/x/timex"
)

// RunInput is the input loop's entry point (§4.G, intended for core 1): an
// unbounded tight cycle scanning the touch façade and, in keyboard mode,
// detecting per-key transitions for reactive lighting. It returns when ctx
// is cancelled.
func (f *Firmware) RunInput(ctx context.Context) {
	var perSecond uint32
	lastMetric := timex.NowMs()

	for {
		if ctx.Err() != nil {
			return
		}

		states := f.touch.ScanTouchStates()

		if f.cfg.Mode == ModeKeyboard {
			f.reactToTransitions(states)
		}

		var pressures *[touch.NumSensors]uint16
		if f.cfg.Mode == ModeArcade && !f.sliderEngine.FakeMode {
			pressures = f.touch.ScanTouchReadouts()
		} else {
			pressures = &[touch.NumSensors]uint16{}
		}

		f.publishSnapshot(states, pressures)

		perSecond++
		now := timex.NowMs()
		if now-lastMetric >= 1000 {
			fmtx.Printf("[input] rate: %d/s\n", perSecond)
			if f.diag != nil {
				f.diag.Publish(f.diag.NewMessage(bus.T("diag", "firmware", "input_hz"), int(perSecond), true))
			}
			perSecond = 0
			lastMetric = now
		}
	}
}

// reactToTransitions diffs states against the shadow copy kept from the
// previous scan; on a key's press/release transition it writes a reactive
// color into the strip image and raises lightsDirty. The actual strip
// commit is deferred to the output loop's pacing (§4.G).
func (f *Firmware) reactToTransitions(states *[touch.NumSensors]bool) {
	for k := 0; k < slider.NumKeys; k++ {
		pressed := states[2*k] || states[2*k+1]
		if pressed == f.shadow[2*k] {
			continue
		}
		f.shadow[2*k] = pressed
		f.shadow[2*k+1] = pressed

		if pressed {
			f.strip.SetKey(k, 0xFF, 0xFF, 0xFF)
		} else {
			f.strip.SetKey(k, 0, 0, 0)
		}
		f.lightsDirty.Store(true)
	}
}

// publishSnapshot marshals the current touch state and gate-writes it into
// the shared ring: the write only happens when the ring has room for a
// whole snapshot, so the output loop, which drains and keeps only the
// newest complete snapshot, never observes a torn write. A scan that loses
// this race simply tries again next cycle — the ring is a cadence decouple,
// not a queue of history anyone needs to preserve.
func (f *Firmware) publishSnapshot(states *[touch.NumSensors]bool, pressures *[touch.NumSensors]uint16) {
	if f.shmRing.Space() < touch.SnapshotSize {
		return
	}
	var snap touch.Snapshot
	snap.States = *states
	snap.Pressures = *pressures

	buf := make([]byte, touch.SnapshotSize)
	snap.Marshal(buf)
	f.shmRing.WriteFrom(buf)
}

// latestSnapshot drains whatever is currently queued on the ring and keeps
// only the newest complete snapshot, discarding any stale ones behind it.
// If nothing new has arrived, the previously held snapshot is returned
// unchanged.
func (f *Firmware) latestSnapshot() *touch.Snapshot {
	n := f.shmRing.ReadInto(f.shmBuf)
	complete := (n / touch.SnapshotSize) * touch.SnapshotSize
	if complete > 0 {
		f.snapshot.Unmarshal(f.shmBuf[complete-touch.SnapshotSize : complete])
	}
	return &f.snapshot
}

// RunOutput is the output loop's entry point (§4.G, intended for core 0):
// services the protocol engines in arcade mode, or the HID report and
// paced LED commits in keyboard mode. It returns when ctx is cancelled.
func (f *Firmware) RunOutput(ctx context.Context) {
	var perSecond uint32
	lastMetric := timex.NowMs()
	f.autoDeadline = lastMetric + int64(f.cfg.AutoReportMs)

	readBuf := make([]byte, 256)

	for {
		if ctx.Err() != nil {
			return
		}

		switch f.cfg.Mode {
		case ModeKeyboard:
			f.runKeyboardFrame()
		default:
			f.runArcadeFrame(readBuf)
		}

		perSecond++
		now := timex.NowMs()
		if now-lastMetric >= 1000 {
			fmtx.Printf("[output] rate: %d/s\n", perSecond)
			if f.diag != nil {
				f.diag.Publish(f.diag.NewMessage(bus.T("diag", "firmware", "output_hz"), int(perSecond), true))
			}
			perSecond = 0
			lastMetric = now
		}
	}
}

// runArcadeFrame services the slider endpoint and both LED-board endpoints
// for whatever bytes are currently available, then emits an auto-report if
// due and the slider parser isn't mid-frame.
func (f *Firmware) runArcadeFrame(readBuf []byte) {
	snap := f.latestSnapshot()

	f.pumpSlider(readBuf, snap)
	for side := 0; side < 2; side++ {
		f.pumpBoard(side, readBuf)
	}

	now := timex.NowMs()
	if f.sliderEngine.AutoReport && now >= f.autoDeadline && !f.sliderParser.InProgress() {
		report := f.sliderEngine.GenerateReport(&snap.States, &snap.Pressures)
		f.sliderEP.Write(f.sliderEmitter.Emit(frameLogical(report), report.Checksum))
		f.autoDeadline += int64(f.cfg.AutoReportMs)
	}
}

// pumpSlider feeds available bytes on the slider endpoint to its parser
// and dispatches every frame it completes.
func (f *Firmware) pumpSlider(readBuf []byte, snap *touch.Snapshot) {
	n := f.sliderEP.ReadAvailable(readBuf)
	if n == 0 {
		return
	}
	f.sliderParser.Feed(readBuf[:n], func(frame codec.Frame) {
		if !frame.ChecksumOK(slider.Dialect) {
			f.traceDrop(errcode.FrameChecksum, frame.Header, frame.Body)
			return
		}
		if len(frame.Header) < 1 || !isKnownSliderCmd(frame.Header[0]) {
			f.countDrop(errcode.UnknownCommand)
		}
		resp := f.sliderEngine.Dispatch(frame, &snap.States, &snap.Pressures)
		if resp != nil {
			f.sliderEP.Write(f.sliderEmitter.Emit(frameLogical(resp), resp.Checksum))
		}
	})
}

// pumpBoard feeds available bytes on LED-board endpoint side to its parser
// and dispatches every frame it completes.
func (f *Firmware) pumpBoard(side int, readBuf []byte) {
	n := f.boardEP[side].ReadAvailable(readBuf)
	if n == 0 {
		return
	}
	f.boardParser[side].Feed(readBuf[:n], func(frame codec.Frame) {
		if !frame.ChecksumOK(ledboard.Dialect) {
			f.traceDrop(errcode.FrameChecksum, frame.Header, frame.Body)
			return
		}
		if len(frame.Body) < 1 || !isKnownBoardCmd(frame.Body[0]) {
			f.countDrop(errcode.UnknownCommand)
		}
		resp := f.boardEngine[side].Dispatch(frame)
		if resp != nil {
			f.boardEP[side].Write(f.boardEmitter.Emit(frameLogical(resp), resp.Checksum))
		}
	})
}

// runKeyboardFrame sends the current touch snapshot as an NKRO HID report
// whenever the endpoint is writable, and paces LED commits to at most once
// every LightsDivisor HID frames, only when lightsDirty is set.
func (f *Firmware) runKeyboardFrame() {
	snap := f.latestSnapshot()

	if f.hid != nil && f.hid.Writable() {
		f.kbReport.SetSliderStates(snap.States)
		f.kbReport.SendUpdate(f.hid)
	}

	f.hidFrameCount++
	divisor := f.cfg.LightsDivisor
	if divisor == 0 {
		divisor = 1
	}
	if f.hidFrameCount%divisor == 0 && f.lightsDirty.Load() {
		f.strip.Update()
		f.lightsDirty.Store(false)
	}
}

// frameLogical reassembles a Frame's header+body into the flat logical
// byte slice codec.Emitter.Emit expects.
func frameLogical(f *codec.Frame) []byte {
	out := make([]byte, 0, len(f.Header)+len(f.Body))
	out = append(out, f.Header...)
	out = append(out, f.Body...)
	return out
}

func isKnownSliderCmd(cmd byte) bool {
	switch cmd {
	case slider.CmdSliderReport, slider.CmdLEDReport, slider.CmdEnableAutoReport,
		slider.CmdDisableAutoReport, slider.CmdReset, slider.CmdGetHWInfo:
		return true
	default:
		return false
	}
}

func isKnownBoardCmd(cmd byte) bool {
	switch cmd {
	case ledboard.CmdLEDReset, ledboard.CmdSetTimeout, ledboard.CmdSetDisableResponse,
		ledboard.CmdSetLED, ledboard.CmdBoardInfo, ledboard.CmdBoardStatus,
		ledboard.CmdFWSum, ledboard.CmdProtocolVer, ledboard.CmdBoardSide:
		return true
	default:
		return false
	}
}
