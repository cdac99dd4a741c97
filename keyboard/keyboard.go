// Package keyboard implements the keyboard output path (component F): the
// keyboard-emulation fallback that maps the 32 slider sensors and 6
// air-tower booleans onto a fixed USB HID NKRO bitmap.
package keyboard

// BitmapSize is the HID report size: one modifier byte followed by 31
// regular-key bytes (8 codes each, covering codes 0..247).
const BitmapSize = 32

// sliderCodes are the 32 fixed HID usage IDs for the slider sensors, in
// sensor order: A..Z then 1..6.
var sliderCodes = [32]byte{
	0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, // A-H
	0x0C, 0x0D, 0x0E, 0x0F, 0x10, 0x11, 0x12, 0x13, // I-P
	0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1A, 0x1B, // Q-X
	0x1C, 0x1D, // Y, Z
	0x1E, 0x1F, 0x20, 0x21, 0x22, 0x23, // 1-6
}

// airCodes are the 6 fixed HID usage IDs for the air-tower booleans, in
// order: ` / - , ; .
var airCodes = [6]byte{0x35, 0x38, 0x2D, 0x36, 0x33, 0x37}

// Report holds the accumulated NKRO bitmap for one HID write.
type Report struct {
	bitmap [BitmapSize]byte
}

// MarkSlider sets the bit for slider sensor i (0..31).
func (r *Report) MarkSlider(i int) { r.setCode(sliderCodes[i]) }

// MarkAir sets the bit for air-tower boolean i (0..5).
func (r *Report) MarkAir(i int) { r.setCode(airCodes[i]) }

// setCode sets the bitmap bit for a raw HID usage code. Codes 240..247 are
// modifiers and land in byte 0; every other code lands in byte code/8+1.
func (r *Report) setCode(code byte) {
	bit := byte(1) << (code % 8)
	if code >= 240 && code <= 247 {
		r.bitmap[0] |= bit
		return
	}
	r.bitmap[code/8+1] |= bit
}

// Bitmap returns the current report bytes, ready to write to the HID
// endpoint.
func (r *Report) Bitmap() *[BitmapSize]byte { return &r.bitmap }

// Clear zeroes the bitmap, called after the report has been sent upstream.
func (r *Report) Clear() {
	for i := range r.bitmap {
		r.bitmap[i] = 0
	}
}

// HIDWriter is the HID endpoint the bitmap is written to.
type HIDWriter interface {
	WriteReport(report []byte) error
}

// SendUpdate writes the bitmap to w in one call, then clears it.
func (r *Report) SendUpdate(w HIDWriter) error {
	err := w.WriteReport(r.bitmap[:])
	r.Clear()
	return err
}

// SetSliderStates marks every pressed slider sensor in states.
func (r *Report) SetSliderStates(states [32]bool) {
	for i, pressed := range states {
		if pressed {
			r.MarkSlider(i)
		}
	}
}

// SetAirSensors marks every pressed air-tower boolean in states.
func (r *Report) SetAirSensors(states [6]bool) {
	for i, pressed := range states {
		if pressed {
			r.MarkAir(i)
		}
	}
}

// FromTouchStates builds a Report from the 32 slider sensor states and 6
// air-tower booleans.
func FromTouchStates(sliderStates [32]bool, airStates [6]bool) *Report {
	r := &Report{}
	r.SetSliderStates(sliderStates)
	r.SetAirSensors(airStates)
	return r
}
