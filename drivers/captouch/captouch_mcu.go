//go:build rp2040 || rp2350

package captouch

import (
	"time"

	"tinygo.org/x/drivers"
)

// MPR121 register map.
const (
	regTouchStatusLo = 0x00
	regTouchStatusHi = 0x01
	regFilteredData  = 0x04 // 2 bytes LE per electrode, electrode 0 first
	regElectrodeConf = 0x5E // ECR: bits 0..3 select electrode run count; 0 = stop mode
	regTouchThresh0  = 0x41 // pairs of (touch, release) per electrode, electrode 0 first
	regSoftReset     = 0x80
)

const numElectrodes = 12

// mcuDevice drives one physical MPR121 chip over I2C.
type mcuDevice struct {
	bus  drivers.I2C
	addr uint16
}

// New returns a Device backed by real I2C register access.
func New(bus drivers.I2C) Device {
	return &mcuDevice{bus: bus}
}

func (d *mcuDevice) Configure(cfg Config) error {
	d.addr = cfg.Address

	// Soft reset, then drop into stop mode before touching threshold
	// registers — the chip ignores writes to most registers outside stop
	// mode.
	if err := d.writeReg(regSoftReset, 0x63); err != nil {
		return err
	}
	if err := d.writeReg(regElectrodeConf, 0x00); err != nil {
		return err
	}

	for e := 0; e < numElectrodes; e++ {
		if err := d.writeReg(regTouchThresh0+byte(2*e), cfg.TouchThreshold); err != nil {
			return err
		}
		if err := d.writeReg(regTouchThresh0+byte(2*e)+1, cfg.ReleaseThreshold); err != nil {
			return err
		}
	}

	// Writing the electrode run count to ECR leaves stop mode and starts
	// sampling all 12 electrodes.
	if err := d.writeReg(regElectrodeConf, 0x0C); err != nil {
		return err
	}
	time.Sleep(defaultBringUpDelay)
	return nil
}

func (d *mcuDevice) GetAllTouched() (uint16, error) {
	buf := make([]byte, 2)
	if err := d.bus.Tx(d.addr, []byte{regTouchStatusLo}, buf); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func (d *mcuDevice) GetAllElectrodeValues() ([12]uint16, error) {
	var out [12]uint16
	buf := make([]byte, 2*numElectrodes)
	if err := d.bus.Tx(d.addr, []byte{regFilteredData}, buf); err != nil {
		return out, err
	}
	for e := 0; e < numElectrodes; e++ {
		out[e] = uint16(buf[2*e]) | uint16(buf[2*e+1])<<8
	}
	return out, nil
}

func (d *mcuDevice) writeReg(reg, val byte) error {
	return d.bus.Tx(d.addr, []byte{reg, val}, nil)
}
