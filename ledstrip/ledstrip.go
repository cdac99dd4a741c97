// Package ledstrip implements the LED strip façade (component B): zone
// addressing over a single physical WS2812B chain, with brightness and a
// deferred commit.
package ledstrip

import "slider-fw/x/ramp"

// NumLEDs is the chain's total logical length: 16 keys × 2 + 15 dividers
// (the slider section) plus 2 towers × 3 groups × 3 LEDs each.
const NumLEDs = 16*2 + 15 + 2*9

const (
	NumKeys     = 16
	NumDividers = 15
	NumGroups   = 3
)

// towerBase gives the starting LED index for each tower side's three
// groups. The physical chain is wired right-tower-first, so side 1
// (right) immediately follows the slider section and side 0 (left)
// follows that.
var towerBase = [2]int{56, 47}

// RGB is one LED's colour, stored unscaled; brightness is applied only at
// Update time, since the WS2812B has no hardware brightness register.
type RGB struct {
	R, G, B byte
}

// Sink is the physical commit target: one WriteColors call per Update,
// given the whole chain in logical order. The MCU build backs it with
// tinygo.org/x/drivers/ws2812; the host build keeps an inspectable
// in-memory array and has no Sink at all.
type Sink interface {
	WriteColors(pixels []RGB) error
}

// Facade holds the in-memory LED image and brightness, and commits both to
// a Sink on Update.
type Facade struct {
	image      [NumLEDs]RGB
	brightness byte
	sink       Sink
}

// New returns a Facade committing to sink. sink may be nil, in which case
// Update is a no-op and only the in-memory image (inspectable via Image)
// changes — used by host-side tests.
func New(sink Sink) *Facade {
	return &Facade{brightness: 255, sink: sink}
}

// Image returns the current in-memory LED image, for host-side inspection.
func (f *Facade) Image() *[NumLEDs]RGB { return &f.image }

// Brightness returns the last value set by SetBrightness.
func (f *Facade) Brightness() byte { return f.brightness }

// SetAll sets every LED in the chain to rgb.
func (f *Facade) SetAll(rgb RGB) {
	for i := range f.image {
		f.image[i] = rgb
	}
}

// SetKey writes the two LEDs backing key k (0..15): 3k and 3k+1.
func (f *Facade) SetKey(key int, r, g, b byte) {
	rgb := RGB{r, g, b}
	f.image[3*key] = rgb
	f.image[3*key+1] = rgb
}

// SetDivider writes the single LED backing divider d (0..14): 3d+2.
func (f *Facade) SetDivider(divider int, r, g, b byte) {
	f.image[3*divider+2] = RGB{r, g, b}
}

// SetTower writes the three consecutive LEDs backing tower group (side,
// group): side 0 (left) starts at 56+3g, side 1 (right) at 47+3g.
func (f *Facade) SetTower(side, group int, r, g, b byte) {
	rgb := RGB{r, g, b}
	base := towerBase[side] + 3*group
	f.image[base] = rgb
	f.image[base+1] = rgb
	f.image[base+2] = rgb
}

// SetBrightness sets the brightness scalar applied at Update time.
func (f *Facade) SetBrightness(b byte) { f.brightness = b }

// Update commits the in-memory image, pre-scaled by brightness, to the
// physical strip. A nil sink (host tests with no hardware) makes this a
// no-op beyond the image itself already being current.
func (f *Facade) Update() {
	if f.sink == nil {
		return
	}
	scaled := make([]RGB, NumLEDs)
	for i, px := range f.image {
		scaled[i] = RGB{
			R: scale(px.R, f.brightness),
			G: scale(px.G, f.brightness),
			B: scale(px.B, f.brightness),
		}
	}
	_ = f.sink.WriteColors(scaled)
}

func scale(channel, brightness byte) byte {
	return byte((uint16(channel) * uint16(brightness)) / 255)
}

// Fade smoothly ramps key k's colour from its current value to `to` over
// durationMs in the given number of steps, using tick for pacing. Zero
// steps (or zero duration) snaps instantly, matching the original
// hardware's behaviour; callers opt into smoothing explicitly.
func (f *Facade) Fade(key int, to RGB, durationMs uint32, steps uint16, tick ramp.Tick) {
	cur := f.image[3*key]
	fadeChannel(cur.R, to.R, durationMs, steps, tick, func(v uint16) { f.image[3*key].R = byte(v); f.image[3*key+1].R = byte(v) })
	fadeChannel(cur.G, to.G, durationMs, steps, tick, func(v uint16) { f.image[3*key].G = byte(v); f.image[3*key+1].G = byte(v) })
	fadeChannel(cur.B, to.B, durationMs, steps, tick, func(v uint16) { f.image[3*key].B = byte(v); f.image[3*key+1].B = byte(v) })
}

func fadeChannel(cur, to byte, durationMs uint32, steps uint16, tick ramp.Tick, set ramp.Step) {
	ramp.StartLinear(uint16(cur), uint16(to), 255, durationMs, steps, tick, set)
}
