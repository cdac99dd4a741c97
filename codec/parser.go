package codec

type phase int

const (
	phaseIdle phase = iota
	phaseHeader
	phaseBody
	phaseChecksum
)

// Parser is one instance of the byte->packet state machine described in
// §4.C's parser table. It is byte-driven, re-entrant, and never blocks: Feed
// consumes whatever is currently available and preserves partial progress
// across calls, so a frame split across any number of Feed calls is parsed
// identically to one delivered whole (§8 property 2).
//
// One Parser exists per physical byte stream; three independent instances
// run concurrently in this firmware (slider, LED board 0, LED board 1).
type Parser struct {
	d Dialect

	phase   phase
	header  []byte
	body    []byte
	bodyLen int

	escapePending bool
	inProgress    bool
}

// New returns a Parser for the given dialect, idle until the first byte.
func New(d Dialect) *Parser {
	return &Parser{
		d:      d,
		header: make([]byte, 0, d.HeaderFields),
		body:   make([]byte, 0, 256),
	}
}

// InProgress reports whether a frame is partway through being read. The
// coordinator uses this to avoid interleaving an outbound auto-report with
// an in-flight inbound frame (§8 property 8).
func (p *Parser) InProgress() bool { return p.inProgress }

func (p *Parser) reset() {
	p.phase = phaseIdle
	p.header = p.header[:0]
	p.body = p.body[:0]
	p.bodyLen = 0
	p.escapePending = false
	p.inProgress = false
}

// unescape consumes one raw wire byte from after the sync marker. ok is
// false when raw was an escape byte whose paired byte hasn't arrived yet —
// the state persists across Feed calls so a split escape pair still
// resolves correctly.
func (p *Parser) unescape(raw byte) (b byte, ok bool) {
	if p.escapePending {
		p.escapePending = false
		return raw + 1, true
	}
	if raw == p.d.Escape {
		p.escapePending = true
		return 0, false
	}
	return raw, true
}

// Feed processes every byte of buf in arrival order, invoking fn once for
// each frame completed along the way, in the order completed. Bytes before
// the first sync marker, or arriving in the idle phase, are silently
// dropped per §7 — any value that isn't the sync byte while idle is noise
// and the parser waits for the next sync to resynchronize.
func (p *Parser) Feed(buf []byte, fn func(Frame)) {
	for _, raw := range buf {
		if p.phase == phaseIdle {
			if raw == p.d.Sync {
				p.inProgress = true
				p.phase = phaseHeader
			}
			continue
		}

		b, ok := p.unescape(raw)
		if !ok {
			continue
		}

		switch p.phase {
		case phaseHeader:
			p.header = append(p.header, b)
			if len(p.header) == p.d.HeaderFields {
				p.bodyLen = p.d.BodyLen(p.header)
				if p.bodyLen <= 0 {
					p.phase = phaseChecksum
				} else {
					p.phase = phaseBody
				}
			}
		case phaseBody:
			p.body = append(p.body, b)
			if len(p.body) == p.bodyLen {
				p.phase = phaseChecksum
			}
		case phaseChecksum:
			frame := Frame{
				Header:   append([]byte(nil), p.header...),
				Body:     append([]byte(nil), p.body...),
				Checksum: b,
			}
			p.reset()
			fn(frame)
		}
	}
}
