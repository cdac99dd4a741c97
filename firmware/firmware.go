package firmware

import (
	"sync/atomic"

	"slider-fw/bus"
	"slider-fw/codec"
	"slider-fw/drivers/captouch"
	"slider-fw/errcode"
	"slider-fw/keyboard"
	"slider-fw/ledboard"
	"slider-fw/ledstrip"
	"slider-fw/slider"
	"slider-fw/touch"
	"slider-fw/x/conv"
	"slider-fw/x/fmtx"
	"slider-fw/x/shmring"
)

// ringSize is the shared-memory ring's capacity: the next power of two at
// or above touch.SnapshotSize, large enough for exactly one gated snapshot
// write plus slack, per the shmring gate-write discipline described below.
const ringSize = 128

// Firmware owns every subsystem and both loop entry points. There is no
// process-wide mutable state outside of it: a board-bringup entry point
// constructs exactly one value and pins RunInput/RunOutput to the two
// physical cores.
type Firmware struct {
	cfg Config

	touch *touch.Facade
	strip *ledstrip.Facade

	sliderEngine *slider.Engine
	boardEngine  [2]*ledboard.Engine

	sliderParser *codec.Parser
	boardParser  [2]*codec.Parser

	sliderEmitter codec.Emitter
	boardEmitter  codec.Emitter

	sliderEP SerialEndpoint
	boardEP  [2]SerialEndpoint

	hid      HIDEndpoint
	kbReport keyboard.Report

	shmHandle shmring.Handle
	shmRing   *shmring.Ring
	shmBuf    []byte
	snapshot  touch.Snapshot

	lightsDirty atomic.Bool

	// shadow holds the per-key pressed state as of the last input-loop
	// scan, used to detect key transitions for reactive lighting in
	// keyboard mode.
	shadow [touch.NumSensors]bool

	autoDeadline  int64
	hidFrameCount uint32

	diag *bus.Connection

	drops [4]atomic.Uint32 // indexed by dropReasonIndex
}

// NewChipFunc constructs one touch chip device at the given I2C address;
// host and MCU builds each supply their own (captouch.New bound to a real
// or simulated bus).
type NewChipFunc func(addr uint16) captouch.Device

// New assembles a Firmware from its external collaborators: three touch
// chip constructors (via newChip), an LED strip sink, the three serial
// endpoints (slider, LED board 0, LED board 1), a HID endpoint, and an
// optional bus connection for boot-time config and diagnostics (nil is
// fine in tests that don't care about either).
func New(cfg Config, newChip NewChipFunc, stripSink ledstrip.Sink, sliderEP, board0EP, board1EP SerialEndpoint, hid HIDEndpoint, diag *bus.Connection) *Firmware {
	strip := ledstrip.New(stripSink)

	f := &Firmware{
		cfg:          cfg,
		touch:        touch.New(newChip),
		strip:        strip,
		sliderEngine: slider.New(strip),
		sliderParser: codec.New(slider.Dialect),
		sliderEmitter: codec.Emitter{
			Sync:   slider.Sync,
			Escape: slider.Escape,
		},
		boardEmitter: codec.Emitter{
			Sync:   ledboard.Sync,
			Escape: ledboard.Escape,
		},
		sliderEP: sliderEP,
		hid:      hid,
		diag:     diag,
	}
	f.boardEngine[0] = ledboard.New(0, strip)
	f.boardEngine[1] = ledboard.New(1, strip)
	f.boardParser[0] = codec.New(ledboard.Dialect)
	f.boardParser[1] = codec.New(ledboard.Dialect)
	f.boardEP[0] = board0EP
	f.boardEP[1] = board1EP

	f.shmHandle, f.shmRing = shmring.New(ringSize)
	f.shmBuf = make([]byte, ringSize)

	return f
}

// Close releases the shared-memory ring backing this Firmware. Safe to
// call once, typically from the entry point's shutdown path (tests call it
// via t.Cleanup).
func (f *Firmware) Close() { shmring.Close(f.shmHandle) }

// Configure brings up the touch chips with the fixed threshold discipline
// (§3) and clears the LED strip.
func (f *Firmware) Configure() {
	f.touch.Configure()
	f.strip.SetAll(ledstrip.RGB{})
	f.strip.Update()
}

// ApplyConfig swaps in a new Config, taking effect on the next loop
// iteration of each side (auto-report cadence, lights pacing divisor,
// mode).
func (f *Firmware) ApplyConfig(cfg Config) { f.cfg = cfg }

// dropReasonIndex maps the diagnostics-only errcode.Code values the
// codec/protocol layer can report into a small dense index for the
// lock-free counters in drops.
func dropReasonIndex(c errcode.Code) int {
	switch c {
	case errcode.FrameChecksum:
		return 0
	case errcode.FrameLength:
		return 1
	case errcode.UnknownCommand:
		return 2
	default:
		return 3
	}
}

// countDrop increments the counter for reason c. Called only from the
// output loop, so the atomic is for visibility to diag readers, not
// contention.
func (f *Firmware) countDrop(c errcode.Code) {
	f.drops[dropReasonIndex(c)].Add(1)
}

// DropCounts returns a snapshot of the four diagnostics counters, keyed by
// the same four buckets dropReasonIndex produces, for tests and the diag
// service.
func (f *Firmware) DropCounts() (checksum, length, unknownCmd, other uint32) {
	return f.drops[0].Load(), f.drops[1].Load(), f.drops[2].Load(), f.drops[3].Load()
}

// traceDrop counts the drop and, for checksum failures, logs a compact hex
// dump of the offending frame so a bad byte on the wire can be spotted
// without pulling in fmtx's allocation-heavier %x path for every drop.
func (f *Firmware) traceDrop(c errcode.Code, header, body []byte) {
	f.countDrop(c)
	if c != errcode.FrameChecksum {
		return
	}
	var hbuf, bbuf [64]byte
	fmtx.Printf("[firmware] drop checksum hdr=%s body=%s\n",
		string(conv.Bytes(hbuf[:0], header)), string(conv.Bytes(bbuf[:0], body)))
}
