// Package cp2112 drives the Silicon Labs CP2112 USB-HID to SMBus bridge as
// an I2C register transport. The bridge is a HID-class device: configuration
// goes over feature reports, transfers over interrupt reports.
package cp2112

import (
	"fmt"

	"github.com/google/gousb"
)

// USB identifiers
const (
	VendorID  = 0x10C4
	ProductID = 0xEA90
)

// HID report IDs
const (
	reportReset          = 0x01
	reportGPIOConfig     = 0x02
	reportSMBusConfig    = 0x06
	reportDataReadReq    = 0x11
	reportDataReadForce  = 0x12
	reportDataReadResp   = 0x13
	reportDataWrite      = 0x14
	reportTransferStatus = 0x15
	reportStatusResponse = 0x16
)

// maxStatusPolls bounds the completion wait for one read transfer
const maxStatusPolls = 20

// Bridge is one open CP2112 with a target I2C device address
type Bridge struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	epIn *gousb.InEndpoint
	out  *gousb.OutEndpoint

	addr   uint8
	Serial string
}

// Open claims the first CP2112 on the bus and configures it for 400 kHz
// SMBus transfers against the given I2C device address.
func Open(ctx *gousb.Context, addr uint8) (*Bridge, error) {
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(VendorID), gousb.ID(ProductID))
	if err != nil {
		return nil, fmt.Errorf("failed to open CP2112: %w", err)
	}
	if dev == nil {
		return nil, fmt.Errorf("no CP2112 found")
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
	epIn, err := intf.InEndpoint(1)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}
	out, err := intf.OutEndpoint(1)
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
		epIn:   epIn,
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

// configure parks the GPIO block and sets the SMBus clock to 400 kHz
func (b *Bridge) configure() error {
	if err := b.sendFeature([]byte{reportGPIOConfig, 0x00, 0x00, 0x00, 0x01}); err != nil {
		return fmt.Errorf("failed to configure GPIO: %w", err)
	}
	// 400 kHz clock, retries capped, timeouts enabled
	smbus := []byte{
		reportSMBusConfig,
		0x00, 0x01, 0x86, 0xA0, // clock speed 100 kHz x4
		0x02,       // device address (unused, master only)
		0x00, 0x00, // auto-send read off
		0xFF, 0x00, // write timeout
		0xFF, 0x01, // read timeout
		0x00, 0x0F, // SCL low timeout off, retry limit
	}
	if err := b.sendFeature(smbus); err != nil {
		return fmt.Errorf("failed to configure SMBus: %w", err)
	}
	return nil
}

// sendFeature issues a HID SET_REPORT(feature) control transfer; the report
// ID rides in the low byte of wValue
func (b *Bridge) sendFeature(report []byte) error {
	const (
		reqSetReport      = 0x09
		reportTypeFeature = 0x03
	)
	rType := uint8(gousb.ControlOut | gousb.ControlClass | gousb.ControlInterface)
	_, err := b.dev.Control(rType, reqSetReport,
		uint16(reportTypeFeature)<<8|uint16(report[0]), 0, report)
	return err
}

// WriteReg writes one register on the target device
func (b *Bridge) WriteReg(reg uint8, value byte) error {
	report := []byte{reportDataWrite, b.addr << 1, 0x02, reg, value}
	if _, err := b.out.Write(report); err != nil {
		return fmt.Errorf("failed to write reg 0x%02X: %w", reg, err)
	}
	return nil
}

// ReadReg reads one register through an addressed read: request, poll the
// transfer status until complete, then force the response out
func (b *Bridge) ReadReg(reg uint8) (byte, error) {
	req := []byte{reportDataReadReq, b.addr << 1, 0x00, 0x01, 0x01, reg}
	if _, err := b.out.Write(req); err != nil {
		return 0, fmt.Errorf("failed to request read of reg 0x%02X: %w", reg, err)
	}

	buf := make([]byte, b.epIn.Desc.MaxPacketSize)
	for i := 0; i < maxStatusPolls; i++ {
		if _, err := b.out.Write([]byte{reportTransferStatus, 0x01}); err != nil {
			return 0, fmt.Errorf("failed to poll status: %w", err)
		}
		n, err := b.epIn.Read(buf)
		if err != nil {
			return 0, fmt.Errorf("failed to read status: %w", err)
		}
		if n < 3 || buf[0] != reportStatusResponse || buf[2] != 0x05 {
			continue
		}

		if _, err := b.out.Write([]byte{reportDataReadForce, 0x00, 0x01}); err != nil {
			return 0, fmt.Errorf("failed to force read response: %w", err)
		}
		n, err = b.epIn.Read(buf)
		if err != nil {
			return 0, fmt.Errorf("failed to read response: %w", err)
		}
		if n < 4 || buf[0] != reportDataReadResp {
			return 0, fmt.Errorf("unexpected response report 0x%02X", buf[0])
		}
		return buf[3], nil
	}
	return 0, fmt.Errorf("read of reg 0x%02X timed out", reg)
}

// WriteBlock writes consecutive registers. The CP2112 caps a single SMBus
// write well below the chip's largest block, so this issues sequential
// single-register writes like the bridge's reference driver does.
func (b *Bridge) WriteBlock(reg uint8, values []byte) error {
	for i, v := range values {
		if err := b.WriteReg(reg+uint8(i), v); err != nil {
			return err
		}
	}
	return nil
}

// Reset soft-resets the bridge itself (not the target device)
func (b *Bridge) Reset() error {
	if err := b.sendFeature([]byte{reportReset, 0x01}); err != nil {
		return fmt.Errorf("failed to reset bridge: %w", err)
	}
	return nil
}

// Close releases the USB interface
func (b *Bridge) Close() {
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
	return fmt.Sprintf("CP2112 %s (I2C 0x%02X)", b.Serial, b.addr)
}
