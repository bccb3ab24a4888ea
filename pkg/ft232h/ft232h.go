// Package ft232h drives the FTDI FT232H in MPSSE mode as a bit-banged I2C
// register transport. Unlike the CP2112 the FT232H has no SMBus engine, so
// start/stop conditions and per-byte acks are synthesized from MPSSE
// command streams.
package ft232h

import (
	"fmt"

	"github.com/google/gousb"
)

// USB identifiers
const (
	VendorID  = 0x0403
	ProductID = 0x6014
)

// FTDI vendor requests
const (
	reqReset      = 0x00
	reqSetLatency = 0x09
	reqSetBitmode = 0x0B

	resetSIO     = 0x0000
	resetPurgeRX = 0x0001
	resetPurgeTX = 0x0002

	bitmodeReset = 0x0000
	bitmodeMPSSE = 0x0200
)

// MPSSE opcodes
const (
	mpsseWriteBytesFall = 0x11 // clock bytes out, MSB first, on falling edge
	mpsseReadBitsRise   = 0x22 // clock bits in on rising edge
	mpsseReadBytesRise  = 0x20 // clock bytes in on rising edge
	mpsseWriteBitsFall  = 0x13 // clock bits out on falling edge
	mpsseSetLowBits     = 0x80
	mpsseClockDivisor   = 0x86
	mpsseSendImmediate  = 0x87
	mpsseDisableDiv5    = 0x8A
	mpsseThreePhase     = 0x8C
	mpsseNoAdaptive     = 0x97
)

// ADBUS line assignment for I2C
const (
	lineSCL    = 0x01 // AD0
	lineSDAOut = 0x02 // AD1, tied to AD2 externally
	lineSDAIn  = 0x04 // AD2

	dirBoth = lineSCL | lineSDAOut // SCL and SDA driven
	dirSCL  = lineSCL              // SDA released for reads/acks
)

// clockDivisor yields 400 kHz SCL: 60 MHz / ((1+49) * 3) with three-phase
// clocking enabled
const clockDivisor = 49

// Bridge is one open FT232H with a target I2C device address
type Bridge struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint

	addr   uint8
	Serial string
}

// Open claims the first FT232H, switches it into MPSSE mode and configures
// the engine for 400 kHz I2C against the given device address.
func Open(ctx *gousb.Context, addr uint8) (*Bridge, error) {
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(VendorID), gousb.ID(ProductID))
	if err != nil {
		return nil, fmt.Errorf("failed to open FT232H: %w", err)
	}
	if dev == nil {
		return nil, fmt.Errorf("no FT232H found")
	}

	dev.SetAutoDetach(true)

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}
	in, err := intf.InEndpoint(1)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}
	out, err := intf.OutEndpoint(2)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	serial, _ := dev.SerialNumber()
	b := &Bridge{
		dev:    dev,
		cfg:    cfg,
		intf:   intf,
		in:     in,
		out:    out,
		addr:   addr,
		Serial: serial,
	}

	if err := b.configure(); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bridge) vendorRequest(request uint8, value uint16) error {
	rType := uint8(gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice)
	_, err := b.dev.Control(rType, request, value, 1, nil)
	return err
}

// configure resets the chip, enters MPSSE mode and sets up three-phase
// 400 kHz clocking with both lines idle high
func (b *Bridge) configure() error {
	steps := []struct {
		request uint8
		value   uint16
	}{
		{reqReset, resetSIO},
		{reqSetLatency, 16},
		{reqSetBitmode, bitmodeReset},
		{reqSetBitmode, bitmodeMPSSE},
		{reqReset, resetPurgeRX},
		{reqReset, resetPurgeTX},
	}
	for _, s := range steps {
		if err := b.vendorRequest(s.request, s.value); err != nil {
			return fmt.Errorf("failed to enter MPSSE mode: %w", err)
		}
	}

	setup := []byte{
		mpsseDisableDiv5,
		mpsseNoAdaptive,
		mpsseThreePhase,
		mpsseClockDivisor, clockDivisor & 0xFF, clockDivisor >> 8,
		mpsseSetLowBits, lineSCL | lineSDAOut, dirBoth, // idle: both high
	}
	if err := b.send(setup); err != nil {
		return fmt.Errorf("failed to configure MPSSE engine: %w", err)
	}
	return nil
}

func (b *Bridge) send(cmds []byte) error {
	if _, err := b.out.Write(cmds); err != nil {
		return fmt.Errorf("MPSSE write failed: %w", err)
	}
	return nil
}

// recv reads n payload bytes, skipping the two modem-status bytes FTDI
// prepends to every IN packet
func (b *Bridge) recv(n int) ([]byte, error) {
	buf := make([]byte, b.in.Desc.MaxPacketSize)
	out := make([]byte, 0, n)
	for len(out) < n {
		r, err := b.in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("MPSSE read failed: %w", err)
		}
		if r > 2 {
			out = append(out, buf[2:r]...)
		}
	}
	return out[:n], nil
}

// start appends an I2C start (or repeated start) condition: SDA falls while
// SCL is high, then SCL falls. States are repeated to stretch the setup
// time past the minimum.
func start(cmds []byte) []byte {
	for i := 0; i < 4; i++ {
		cmds = append(cmds, mpsseSetLowBits, lineSCL|lineSDAOut, dirBoth)
	}
	for i := 0; i < 4; i++ {
		cmds = append(cmds, mpsseSetLowBits, lineSCL, dirBoth)
	}
	return append(cmds, mpsseSetLowBits, 0x00, dirBoth)
}

// stop appends an I2C stop condition: SDA rises while SCL is high
func stop(cmds []byte) []byte {
	for i := 0; i < 4; i++ {
		cmds = append(cmds, mpsseSetLowBits, lineSCL, dirBoth)
	}
	for i := 0; i < 4; i++ {
		cmds = append(cmds, mpsseSetLowBits, lineSCL|lineSDAOut, dirBoth)
	}
	return cmds
}

// writeByte appends one data byte plus an ack-bit read
func writeByte(cmds []byte, v byte) []byte {
	cmds = append(cmds, mpsseWriteBytesFall, 0x00, 0x00, v)
	// release SDA and clock in the ack bit
	cmds = append(cmds, mpsseSetLowBits, 0x00, dirSCL)
	cmds = append(cmds, mpsseReadBitsRise, 0x00)
	return append(cmds, mpsseSendImmediate)
}

// readByte appends one data byte read plus the master's ack/nack bit
func readByte(cmds []byte, last bool) []byte {
	cmds = append(cmds, mpsseSetLowBits, 0x00, dirSCL)
	cmds = append(cmds, mpsseReadBytesRise, 0x00, 0x00)
	ack := byte(0x00) // ack: SDA low
	if last {
		ack = 0xFF // nack ends the read
	}
	cmds = append(cmds, mpsseSetLowBits, 0x00, dirBoth)
	cmds = append(cmds, mpsseWriteBitsFall, 0x00, ack)
	return append(cmds, mpsseSendImmediate)
}

// checkAck validates a clocked-in ack bit (0 = acked)
func checkAck(b byte) error {
	if b&0x01 != 0 {
		return fmt.Errorf("I2C target did not ack")
	}
	return nil
}

// WriteReg writes one register on the target device
func (b *Bridge) WriteReg(reg uint8, value byte) error {
	var cmds []byte
	cmds = start(cmds)
	cmds = writeByte(cmds, b.addr<<1)
	cmds = writeByte(cmds, reg)
	cmds = writeByte(cmds, value)
	cmds = stop(cmds)

	if err := b.send(cmds); err != nil {
		return fmt.Errorf("failed to write reg 0x%02X: %w", reg, err)
	}
	acks, err := b.recv(3)
	if err != nil {
		return fmt.Errorf("failed to write reg 0x%02X: %w", reg, err)
	}
	for _, a := range acks {
		if err := checkAck(a); err != nil {
			return fmt.Errorf("failed to write reg 0x%02X: %w", reg, err)
		}
	}
	return nil
}

// WriteBlock writes consecutive registers in one transaction; the Si5351
// auto-increments its register pointer
func (b *Bridge) WriteBlock(reg uint8, values []byte) error {
	var cmds []byte
	cmds = start(cmds)
	cmds = writeByte(cmds, b.addr<<1)
	cmds = writeByte(cmds, reg)
	for _, v := range values {
		cmds = writeByte(cmds, v)
	}
	cmds = stop(cmds)

	if err := b.send(cmds); err != nil {
		return fmt.Errorf("failed to write block at 0x%02X: %w", reg, err)
	}
	acks, err := b.recv(2 + len(values))
	if err != nil {
		return fmt.Errorf("failed to write block at 0x%02X: %w", reg, err)
	}
	for _, a := range acks {
		if err := checkAck(a); err != nil {
			return fmt.Errorf("failed to write block at 0x%02X: %w", reg, err)
		}
	}
	return nil
}

// ReadReg reads one register: a write of the register pointer, a repeated
// start, then a one-byte read ended with a nack
func (b *Bridge) ReadReg(reg uint8) (byte, error) {
	var cmds []byte
	cmds = start(cmds)
	cmds = writeByte(cmds, b.addr<<1)
	cmds = writeByte(cmds, reg)
	cmds = start(cmds)
	cmds = writeByte(cmds, b.addr<<1|0x01)
	cmds = readByte(cmds, true)
	cmds = stop(cmds)

	if err := b.send(cmds); err != nil {
		return 0, fmt.Errorf("failed to read reg 0x%02X: %w", reg, err)
	}
	resp, err := b.recv(4) // three acks plus the data byte
	if err != nil {
		return 0, fmt.Errorf("failed to read reg 0x%02X: %w", reg, err)
	}
	for _, a := range resp[:3] {
		if err := checkAck(a); err != nil {
			return 0, fmt.Errorf("failed to read reg 0x%02X: %w", reg, err)
		}
	}
	return resp[3], nil
}

// Close releases the USB interface, dropping the chip back out of MPSSE
// mode first
func (b *Bridge) Close() {
	if b.dev != nil {
		b.vendorRequest(reqSetBitmode, bitmodeReset)
	}
	if b.intf != nil {
		b.intf.Close()
	}
	if b.cfg != nil {
		b.cfg.Close()
	}
	if b.dev != nil {
		b.dev.Close()
	}
}

func (b *Bridge) String() string {
	return fmt.Sprintf("FT232H %s (I2C 0x%02X)", b.Serial, b.addr)
}
