package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/clkworks/si5351ctl/pkg/si5351"
	"github.com/clkworks/si5351ctl/pkg/synth"
)

// fakeBus is an in-memory register file standing in for a hardware bridge
type fakeBus struct {
	regs map[uint8]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{regs: map[uint8]byte{}}
}

func (b *fakeBus) WriteReg(reg uint8, value byte) error {
	b.regs[reg] = value
	return nil
}

func (b *fakeBus) ReadReg(reg uint8) (byte, error) {
	return b.regs[reg], nil
}

func (b *fakeBus) WriteBlock(reg uint8, values []byte) error {
	for i, v := range values {
		b.regs[reg+uint8(i)] = v
	}
	return nil
}

func programmedBus(t *testing.T, fout float64) *fakeBus {
	t.Helper()
	plan, err := synth.PlanChannels(synth.FrequencyRequest{Fout0: fout})
	if err != nil {
		t.Fatalf("PlanChannels(%g) error: %v", fout, err)
	}
	bus := newFakeBus()
	dev := si5351.New(bus)
	if err := dev.Initialize(); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	if err := dev.Apply(plan); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	return bus
}

func TestDumpDecodesProgrammedState(t *testing.T) {
	bus := programmedBus(t, 100)

	snap, err := DumpFromDevice(bus, "cp2112", "TEST01")
	if err != nil {
		t.Fatalf("DumpFromDevice error: %v", err)
	}

	vco, err := snap.PLLFrequencyMHz(synth.PLLA)
	if err != nil {
		t.Fatalf("PLLFrequencyMHz error: %v", err)
	}
	if vco < synth.VCOMinMHz || vco > synth.VCOMaxMHz {
		t.Errorf("decoded VCO %.3f MHz outside operating window", vco)
	}

	fout, err := snap.OutputFrequencyMHz(0)
	if err != nil {
		t.Fatalf("OutputFrequencyMHz error: %v", err)
	}
	if math.Abs(fout-100) > 100*synth.ErrorTolerance {
		t.Errorf("decoded CLK0 = %.9f MHz, want 100", fout)
	}

	if !snap.OutputEnabled(0) {
		t.Error("CLK0 not reported enabled")
	}
	if snap.OutputEnabled(1) || snap.OutputEnabled(2) {
		t.Error("unused channel reported enabled")
	}
	if snap.SSCEnabled() {
		t.Error("SSC reported enabled")
	}
}

func TestDumpDecodesDivBy4(t *testing.T) {
	bus := programmedBus(t, 162.5)

	snap, err := DumpFromDevice(bus, "ft232h", "")
	if err != nil {
		t.Fatalf("DumpFromDevice error: %v", err)
	}
	fout, err := snap.OutputFrequencyMHz(0)
	if err != nil {
		t.Fatalf("OutputFrequencyMHz error: %v", err)
	}
	if math.Abs(fout-162.5) > 1e-9 {
		t.Errorf("decoded CLK0 = %.9f MHz, want 162.5", fout)
	}
}

func TestApplyReplaysSnapshot(t *testing.T) {
	source := programmedBus(t, 27.12)
	snap, err := DumpFromDevice(source, "cp2112", "A")
	if err != nil {
		t.Fatalf("DumpFromDevice error: %v", err)
	}

	target := newFakeBus()
	if err := ApplyToDevice(target, snap); err != nil {
		t.Fatalf("ApplyToDevice error: %v", err)
	}

	replayed, err := DumpFromDevice(target, "cp2112", "B")
	if err != nil {
		t.Fatalf("DumpFromDevice error: %v", err)
	}
	if replayed.Registers != snap.Registers {
		t.Errorf("replayed register file differs:\n got %+v\nwant %+v",
			replayed.Registers, snap.Registers)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	bus := programmedBus(t, 10)
	snap, err := DumpFromDevice(bus, "cp2112", "RT")
	if err != nil {
		t.Fatalf("DumpFromDevice error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := SaveToFile(snap, path); err != nil {
		t.Fatalf("SaveToFile error: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}
	if loaded.Registers != snap.Registers {
		t.Error("loaded register file differs from saved")
	}
	if loaded.Serial != "RT" || loaded.Bridge != "cp2112" {
		t.Errorf("identity fields lost: %+v", loaded)
	}
}
