package cartridge

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// TestROMConfig represents configuration for test ROM generation
type TestROMConfig struct {
	Title        string           // Up to 16 characters
	Type         uint8            // Cartridge type byte (0x147)
	ROMSizeCode  uint8            // 32 KiB << code
	RAMSizeCode  uint8            // RAM size byte (0x149)
	Version      uint8            // Mask ROM version
	Instructions []uint8          // Program placed at the entry point
	EntryPoint   uint16           // Where Instructions start; 0x0100 by default
	InitialData  map[uint32]uint8 // Raw bytes at image offsets (may target any bank)
	BadChecksum  bool             // Corrupt the header checksum
}

// TestROMBuilder provides a fluent interface for building test program images
type TestROMBuilder struct {
	config TestROMConfig
}

// NewTestROMBuilder creates a new test ROM builder with a 32 KiB ROM-only image
func NewTestROMBuilder() *TestROMBuilder {
	return &TestROMBuilder{
		config: TestROMConfig{
			Title:       "TEST",
			EntryPoint:  0x0100,
			InitialData: make(map[uint32]uint8),
		},
	}
}

// WithTitle sets the header title
func (b *TestROMBuilder) WithTitle(title string) *TestROMBuilder {
	b.config.Title = title
	return b
}

// WithType sets the cartridge type byte
func (b *TestROMBuilder) WithType(kind uint8) *TestROMBuilder {
	b.config.Type = kind
	return b
}

// WithROMSize sets the ROM size code
func (b *TestROMBuilder) WithROMSize(code uint8) *TestROMBuilder {
	b.config.ROMSizeCode = code
	return b
}

// WithRAMSize sets the RAM size code
func (b *TestROMBuilder) WithRAMSize(code uint8) *TestROMBuilder {
	b.config.RAMSizeCode = code
	return b
}

// WithVersion sets the mask ROM version
func (b *TestROMBuilder) WithVersion(version uint8) *TestROMBuilder {
	b.config.Version = version
	return b
}

// WithInstructions sets the program placed at the entry point
func (b *TestROMBuilder) WithInstructions(instructions []uint8) *TestROMBuilder {
	b.config.Instructions = make([]uint8, len(instructions))
	copy(b.config.Instructions, instructions)
	return b
}

// WithEntryPoint moves where instructions are placed
func (b *TestROMBuilder) WithEntryPoint(address uint16) *TestROMBuilder {
	b.config.EntryPoint = address
	return b
}

// WithData sets raw bytes at an image offset
func (b *TestROMBuilder) WithData(offset uint32, data []uint8) *TestROMBuilder {
	for i, value := range data {
		b.config.InitialData[offset+uint32(i)] = value
	}
	return b
}

// WithBankMarkers writes the bank number into the first byte of every 16 KiB bank
func (b *TestROMBuilder) WithBankMarkers() *TestROMBuilder {
	banks := (32 * 1024 << b.config.ROMSizeCode) / ROMBankSize
	for bank := 1; bank < banks; bank++ {
		b.config.InitialData[uint32(bank*ROMBankSize)] = uint8(bank)
	}
	return b
}

// WithBadChecksum stores a header checksum that does not match
func (b *TestROMBuilder) WithBadChecksum() *TestROMBuilder {
	b.config.BadChecksum = true
	return b
}

// Build generates the program image based on the current configuration
func (b *TestROMBuilder) Build() ([]byte, error) {
	return GenerateTestROM(b.config)
}

// BuildCartridge generates and loads the image as a cartridge
func (b *TestROMBuilder) BuildCartridge() (Cartridge, error) {
	romData, err := b.Build()
	if err != nil {
		return nil, err
	}
	return LoadFromReader(bytes.NewReader(romData))
}

// GenerateTestROM creates a program image with a valid header
func GenerateTestROM(config TestROMConfig) ([]byte, error) {
	if config.ROMSizeCode > maximumROMSizeShift {
		return nil, fmt.Errorf("invalid ROM size code 0x%02X", config.ROMSizeCode)
	}
	if len(config.Title) > titleLength {
		return nil, fmt.Errorf("title %q longer than %d characters", config.Title, titleLength)
	}

	rom := make([]byte, (32*1024)<<config.ROMSizeCode)

	entry := int(config.EntryPoint)
	if entry+len(config.Instructions) > len(rom) {
		return nil, fmt.Errorf("program of %d bytes does not fit at 0x%04X", len(config.Instructions), entry)
	}
	copy(rom[entry:], config.Instructions)

	for offset, value := range config.InitialData {
		if int(offset) >= len(rom) {
			return nil, fmt.Errorf("data offset 0x%X outside %d byte image", offset, len(rom))
		}
		rom[offset] = value
	}

	copy(rom[titleOffset:titleOffset+titleLength], config.Title)
	rom[typeOffset] = config.Type
	rom[romSizeOffset] = config.ROMSizeCode
	rom[ramSizeOffset] = config.RAMSizeCode
	rom[oldLicenseeOffset] = 0x01
	rom[versionOffset] = config.Version

	rom[headerChecksumOff] = computeHeaderChecksum(rom)
	if config.BadChecksum {
		rom[headerChecksumOff]++
	}

	var global uint16
	for i, v := range rom {
		if i != globalChecksumOff && i != globalChecksumOff+1 {
			global += uint16(v)
		}
	}
	rom[globalChecksumOff] = uint8(global >> 8)
	rom[globalChecksumOff+1] = uint8(global)

	return rom, nil
}

// SaveTestROM writes a generated image to filename
func SaveTestROM(filename string, config TestROMConfig) error {
	data, err := GenerateTestROM(config)
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, bytes.NewReader(data))
	return err
}
