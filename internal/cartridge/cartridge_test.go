package cartridge

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func mustBuild(t *testing.T, b *TestROMBuilder) Cartridge {
	t.Helper()
	cart, err := b.BuildCartridge()
	if err != nil {
		t.Fatalf("Failed to build cartridge: %v", err)
	}
	return cart
}

func TestParseHeader(t *testing.T) {
	rom, err := NewTestROMBuilder().
		WithTitle("TETRIS").
		WithType(0x03).
		WithROMSize(0x02).
		WithRAMSize(0x03).
		WithVersion(1).
		Build()
	if err != nil {
		t.Fatalf("Failed to build ROM: %v", err)
	}

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	if h.Title != "TETRIS" {
		t.Errorf("Expected title TETRIS, got %q", h.Title)
	}
	if h.TypeName() != "MBC1+RAM+BATTERY" {
		t.Errorf("Expected MBC1+RAM+BATTERY, got %s", h.TypeName())
	}
	if h.ROMSize != 128*1024 || h.ROMBanks != 8 {
		t.Errorf("Expected 128 KiB in 8 banks, got %d bytes in %d banks", h.ROMSize, h.ROMBanks)
	}
	if h.RAMBanks != 4 {
		t.Errorf("Expected 4 RAM banks, got %d", h.RAMBanks)
	}
	if !h.HasBattery || h.HasRTC {
		t.Errorf("Expected battery without RTC, got battery=%t rtc=%t", h.HasBattery, h.HasRTC)
	}
	if h.Version != 1 {
		t.Errorf("Expected version 1, got %d", h.Version)
	}
	if !h.ChecksumOK {
		t.Error("Expected header checksum to pass")
	}
	if h.LicenseeName() != "Nintendo" {
		t.Errorf("Expected Nintendo licensee, got %s", h.LicenseeName())
	}
	if !strings.Contains(h.String(), "PASSED") {
		t.Errorf("Header summary missing checksum result:\n%s", h.String())
	}
}

func TestParseHeaderBadChecksum(t *testing.T) {
	rom, _ := NewTestROMBuilder().WithBadChecksum().Build()

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.ChecksumOK {
		t.Error("Expected header checksum to fail")
	}

	// A bad checksum is reported but the image still loads
	if _, err := New(rom); err != nil {
		t.Errorf("Expected image with bad checksum to load, got %v", err)
	}
}

func TestRAMSizeCodes(t *testing.T) {
	tests := []struct {
		code  uint8
		banks int
	}{
		{0x00, 0},
		{0x02, 1},
		{0x03, 4},
		{0x04, 16},
		{0x05, 8},
	}

	for _, tt := range tests {
		rom, _ := NewTestROMBuilder().WithRAMSize(tt.code).Build()
		h, err := ParseHeader(rom)
		if err != nil {
			t.Fatalf("code 0x%02X: %v", tt.code, err)
		}
		if h.RAMBanks != tt.banks {
			t.Errorf("code 0x%02X: expected %d banks, got %d", tt.code, tt.banks, h.RAMBanks)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := New(make([]byte, 0x100)); !errors.Is(err, ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall, got %v", err)
	}

	rom, _ := NewTestROMBuilder().WithType(0x19).Build()
	if _, err := New(rom); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Expected ErrUnsupportedType for MBC5, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gb")
	config := NewTestROMBuilder().WithTitle("FILE").config
	if err := SaveTestROM(path, config); err != nil {
		t.Fatalf("SaveTestROM failed: %v", err)
	}

	cart, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cart.Header().Title != "FILE" {
		t.Errorf("Expected title FILE, got %q", cart.Header().Title)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.gb")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestROMOnly(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().
		WithInstructions([]uint8{0x01, 0x34, 0x12}).
		WithData(0x7FFF, []uint8{0xAB}))

	if got := cart.Read(0x0100); got != 0x01 {
		t.Errorf("Expected 0x01 at entry point, got 0x%02X", got)
	}
	if got := cart.Read(0x7FFF); got != 0xAB {
		t.Errorf("Expected 0xAB at 0x7FFF, got 0x%02X", got)
	}

	cart.Write(0x0100, 0xFF)
	if got := cart.Read(0x0100); got != 0x01 {
		t.Errorf("ROM write must be ignored, got 0x%02X", got)
	}

	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("Expected 0xFF from absent RAM, got 0x%02X", got)
	}
	if cart.Save() != nil {
		t.Error("Expected nil save data without RAM")
	}
	if !strings.HasPrefix(cart.Describe(), "ROM") {
		t.Errorf("Unexpected description %q", cart.Describe())
	}
}

func TestROMOnlyWithRAM(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().WithType(0x08).WithRAMSize(0x02))

	cart.Write(0xA123, 0x5A)
	if got := cart.Read(0xA123); got != 0x5A {
		t.Errorf("Expected RAM round trip 0x5A, got 0x%02X", got)
	}
}

func TestMBC1ROMBanking(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().
		WithType(0x01).
		WithROMSize(0x05). // 1 MiB, 64 banks
		WithBankMarkers())

	if got := cart.Read(0x4000); got != 1 {
		t.Errorf("Expected bank 1 after reset, got %d", got)
	}

	tests := []struct {
		name     string
		bank     uint8
		bank2    uint8
		expected uint8
	}{
		{"bank 0 selects 1", 0x00, 0, 1},
		{"bank 5", 0x05, 0, 5},
		{"upper bits ignored", 0xE3, 0, 3},
		{"secondary bits", 0x02, 1, 0x22},
		{"0x20 maps to 0x21", 0x00, 1, 0x21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart.Write(0x4000, tt.bank2)
			cart.Write(0x2000, tt.bank)
			if got := cart.Read(0x4000); got != tt.expected {
				t.Errorf("Expected bank 0x%02X, got 0x%02X", tt.expected, got)
			}
		})
	}
}

func TestMBC1AdvancedMode(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().
		WithType(0x03).
		WithROMSize(0x05).
		WithRAMSize(0x03).
		WithBankMarkers())

	cart.Write(0x4000, 0x01)
	if got := cart.Read(0x0000); got != 0x00 {
		t.Errorf("Mode 0 must map bank 0 low, got marker 0x%02X", got)
	}

	cart.Write(0x6000, 0x01)
	if got := cart.Read(0x0000); got != 0x20 {
		t.Errorf("Mode 1 must map bank 0x20 low, got 0x%02X", got)
	}

	// RAM banks follow the secondary register in mode 1
	cart.Write(0x0000, 0x0A)
	cart.Write(0x4000, 0x02)
	cart.Write(0xA000, 0x77)
	cart.Write(0x4000, 0x00)
	if got := cart.Read(0xA000); got == 0x77 {
		t.Error("RAM bank 0 should not see the write to bank 2")
	}
	cart.Write(0x4000, 0x02)
	if got := cart.Read(0xA000); got != 0x77 {
		t.Errorf("Expected 0x77 in RAM bank 2, got 0x%02X", got)
	}
}

func TestMBC1RAMEnable(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().WithType(0x02).WithRAMSize(0x02))

	cart.Write(0xA000, 0x42)
	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("Disabled RAM must read 0xFF, got 0x%02X", got)
	}

	cart.Write(0x0000, 0x0A)
	cart.Write(0xA000, 0x42)
	if got := cart.Read(0xA000); got != 0x42 {
		t.Errorf("Expected 0x42, got 0x%02X", got)
	}

	cart.Write(0x0000, 0x00)
	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("RAM disabled again must read 0xFF, got 0x%02X", got)
	}
}

func TestSaveLoad(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().WithType(0x03).WithRAMSize(0x02))
	cart.Write(0x0000, 0x0A)
	cart.Write(0xA010, 0x99)

	data := cart.Save()
	if len(data) != RAMBankSize {
		t.Fatalf("Expected %d save bytes, got %d", RAMBankSize, len(data))
	}

	other := mustBuild(t, NewTestROMBuilder().WithType(0x03).WithRAMSize(0x02))
	if err := other.Load(data); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	other.Write(0x0000, 0x0A)
	if got := other.Read(0xA010); got != 0x99 {
		t.Errorf("Expected restored 0x99, got 0x%02X", got)
	}

	if err := other.Load(data[:10]); !errors.Is(err, ErrSaveSize) {
		t.Errorf("Expected ErrSaveSize, got %v", err)
	}

	// Save returns a copy
	data[0x10] = 0
	if got := cart.Read(0xA010); got != 0x99 {
		t.Errorf("Mutating save data changed cartridge RAM: 0x%02X", got)
	}
}

func TestMBC3Banking(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().
		WithType(0x13).
		WithROMSize(0x06). // 2 MiB, 128 banks
		WithRAMSize(0x03).
		WithBankMarkers())

	cart.Write(0x2000, 0x00)
	if got := cart.Read(0x4000); got != 1 {
		t.Errorf("Bank 0 must select 1, got %d", got)
	}
	cart.Write(0x2000, 0x45)
	if got := cart.Read(0x4000); got != 0x45 {
		t.Errorf("Expected bank 0x45, got 0x%02X", got)
	}

	cart.Write(0x0000, 0x0A)
	cart.Write(0x4000, 0x03)
	cart.Write(0xB000, 0x3C)
	cart.Write(0x4000, 0x01)
	cart.Write(0xB000, 0x1C)
	cart.Write(0x4000, 0x03)
	if got := cart.Read(0xB000); got != 0x3C {
		t.Errorf("Expected 0x3C in RAM bank 3, got 0x%02X", got)
	}
}

func TestMBC3FullWidthROMBank(t *testing.T) {
	cart := mustBuild(t, NewTestROMBuilder().
		WithType(0x13).
		WithROMSize(0x07). // 4 MiB, 256 banks
		WithBankMarkers())

	tests := []struct {
		value uint8
		bank  uint8
	}{
		{0x00, 0x01},
		{0x01, 0x01},
		{0x7F, 0x7F},
		{0x80, 0x80},
		{0x81, 0x81},
		{0xFF, 0xFF},
	}

	for _, tt := range tests {
		cart.Write(0x2000, tt.value)
		if got := cart.Read(0x4000); got != tt.bank {
			t.Errorf("Bank register 0x%02X: expected bank 0x%02X, got 0x%02X", tt.value, tt.bank, got)
		}
	}
}

// fakeClock is a controllable time source
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newRTCCartridge(t *testing.T, clock *fakeClock) Cartridge {
	t.Helper()
	rom, err := NewTestROMBuilder().WithType(0x10).WithRAMSize(0x03).Build()
	if err != nil {
		t.Fatalf("Failed to build ROM: %v", err)
	}
	cart, err := NewMBC3WithClock(rom, clock.Now)
	if err != nil {
		t.Fatalf("Failed to create MBC3: %v", err)
	}
	cart.Write(0x0000, 0x0A)
	return cart
}

func latch(cart Cartridge) {
	cart.Write(0x6000, 0x00)
	cart.Write(0x6000, 0x01)
}

func readRTC(cart Cartridge, reg uint8) uint8 {
	cart.Write(0x4000, reg)
	return cart.Read(0xA000)
}

func TestRTCLatchAccumulates(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cart := newRTCCartridge(t, clock)

	clock.Advance(90*time.Minute + 5*time.Second)
	if got := readRTC(cart, rtcSeconds); got != 0 {
		t.Errorf("Registers must hold until latched, got %d seconds", got)
	}

	latch(cart)
	if got := readRTC(cart, rtcSeconds); got != 5 {
		t.Errorf("Expected 5 seconds, got %d", got)
	}
	if got := readRTC(cart, rtcMinutes); got != 30 {
		t.Errorf("Expected 30 minutes, got %d", got)
	}
	if got := readRTC(cart, rtcHours); got != 1 {
		t.Errorf("Expected 1 hour, got %d", got)
	}

	// Latched values are frozen until the next 0 then 1 sequence
	clock.Advance(10 * time.Second)
	cart.Write(0x6000, 0x01)
	if got := readRTC(cart, rtcSeconds); got != 5 {
		t.Errorf("Writing 1 without 0 must not latch, got %d", got)
	}
	latch(cart)
	if got := readRTC(cart, rtcSeconds); got != 15 {
		t.Errorf("Expected 15 seconds after relatch, got %d", got)
	}
}

func TestRTCDayCarry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cart := newRTCCartridge(t, clock)

	clock.Advance(300 * 24 * time.Hour)
	latch(cart)
	if got := readRTC(cart, rtcDaysLow); got != uint8(300&0xFF) {
		t.Errorf("Expected day low 0x%02X, got 0x%02X", uint8(300&0xFF), got)
	}
	if got := readRTC(cart, rtcDaysHigh); got != 0x01 {
		t.Errorf("Expected day high bit set, got 0x%02X", got)
	}

	clock.Advance(220 * 24 * time.Hour) // day 520 wraps to 8
	latch(cart)
	if got := readRTC(cart, rtcDaysLow); got != 8 {
		t.Errorf("Expected day 8 after wrap, got %d", got)
	}
	if got := readRTC(cart, rtcDaysHigh); got&rtcCarryBit == 0 {
		t.Errorf("Expected carry bit after day overflow, got 0x%02X", got)
	}
}

func TestRTCHalt(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cart := newRTCCartridge(t, clock)

	cart.Write(0x4000, rtcDaysHigh)
	cart.Write(0xA000, rtcHaltBit)

	clock.Advance(time.Hour)
	latch(cart)
	if got := readRTC(cart, rtcHours); got != 0 {
		t.Errorf("Halted clock must not advance, got %d hours", got)
	}

	cart.Write(0x4000, rtcDaysHigh)
	cart.Write(0xA000, 0x00)
	clock.Advance(2 * time.Second)
	latch(cart)
	if got := readRTC(cart, rtcSeconds); got != 2 {
		t.Errorf("Expected 2 seconds after resume, got %d", got)
	}
}

func TestMockCartridge(t *testing.T) {
	mock := NewMockCartridge()
	mock.LoadROM([]uint8{0x00, 0xC3})
	mock.Write(0x2000, 0x01)

	if got := mock.Read(0x0001); got != 0xC3 {
		t.Errorf("Expected 0xC3, got 0x%02X", got)
	}
	if len(mock.ROMWrites()) != 1 {
		t.Errorf("Expected 1 recorded ROM write, got %d", len(mock.ROMWrites()))
	}

	mock.Write(0xA000, 0x11)
	if !bytes.Equal(mock.Save()[:1], []byte{0x11}) {
		t.Error("Mock save should reflect RAM")
	}
}
