// Package cartridge implements program image loading and the memory bank controllers.
package cartridge

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// ErrUnsupportedType is returned for cartridge types without a controller implementation
var ErrUnsupportedType = errors.New("unsupported cartridge type")

// ErrSaveSize is returned when a save image does not match the cartridge RAM size
var ErrSaveSize = errors.New("save data size mismatch")

// Cartridge is the interface every bank controller presents to the memory bus.
// ROM is mapped at 0x0000-0x7FFF and external RAM at 0xA000-0xBFFF.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	// Describe returns a short human readable summary
	Describe() string

	// Save returns a copy of the external RAM; nil when the cartridge has none
	Save() []byte
	// Load restores external RAM from a previous Save
	Load(data []byte) error

	Header() *Header
}

// LoadFromFile loads a cartridge from a program image on disk
func LoadFromFile(filename string) (Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader loads a cartridge from an io.Reader
func LoadFromReader(r io.Reader) (Cartridge, error) {
	rom, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(rom)
}

// New parses the header of rom and builds the matching bank controller
func New(rom []byte) (Cartridge, error) {
	if len(rom) < minimumImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooSmall, len(rom))
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	if !header.ChecksumOK {
		log.Printf("[CARTRIDGE] Header checksum mismatch for %q (stored 0x%02X)", header.Title, header.HeaderChecksum)
	}
	if len(rom) < header.ROMSize {
		log.Printf("[CARTRIDGE] Image is %d bytes, header declares %d", len(rom), header.ROMSize)
	}

	switch header.Type {
	case 0x00, 0x08, 0x09:
		return newROMOnly(rom, header), nil
	case 0x01, 0x02, 0x03:
		return newMBC1(rom, header), nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return newMBC3(rom, header), nil
	default:
		log.Printf("[CARTRIDGE] Cartridge type 0x%02X (%s) is not supported", header.Type, header.TypeName())
		return nil, fmt.Errorf("%w: 0x%02X (%s)", ErrUnsupportedType, header.Type, header.TypeName())
	}
}

// describe formats the summary shared by all controllers
func describe(kind string, h *Header) string {
	return fmt.Sprintf("%s %q: %d KiB ROM, %d KiB RAM", kind, h.Title, h.ROMSize/1024, h.RAMBanks*RAMBankSize/1024)
}

// newRAM allocates the external RAM declared by the header
func newRAM(h *Header) []uint8 {
	if h.RAMBanks == 0 {
		return nil
	}
	return make([]uint8, h.RAMBanks*RAMBankSize)
}

// saveRAM copies ram so callers cannot alias controller state
func saveRAM(ram []uint8) []byte {
	if len(ram) == 0 {
		return nil
	}
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

// loadRAM restores ram from data of exactly the same size
func loadRAM(ram []uint8, data []byte) error {
	if len(data) != len(ram) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSaveSize, len(data), len(ram))
	}
	copy(ram, data)
	return nil
}

// romByte reads rom at a banked offset, returning 0xFF past the end of the image
func romByte(rom []uint8, offset int) uint8 {
	if offset < 0 || offset >= len(rom) {
		return 0xFF
	}
	return rom[offset]
}

// MockCartridge implements Cartridge for testing with flat ROM and RAM
type MockCartridge struct {
	rom    [0x8000]uint8
	ram    [RAMBankSize]uint8
	header Header

	// Tracking for tests
	romReads  []uint16
	romWrites []uint16
	ramReads  []uint16
	ramWrites []uint16
}

// NewMockCartridge creates a new mock cartridge for testing
func NewMockCartridge() *MockCartridge {
	return &MockCartridge{
		header: Header{Title: "MOCK", ROMSize: 0x8000, ROMBanks: 2, RAMBanks: 1, ChecksumOK: true},
	}
}

// Read implements Cartridge
func (c *MockCartridge) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		c.romReads = append(c.romReads, address)
		return c.rom[address]
	case address >= 0xA000 && address < 0xC000:
		c.ramReads = append(c.ramReads, address)
		return c.ram[address-0xA000]
	}
	return 0xFF
}

// Write implements Cartridge; ROM writes are recorded but not stored
func (c *MockCartridge) Write(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		c.romWrites = append(c.romWrites, address)
	case address >= 0xA000 && address < 0xC000:
		c.ramWrites = append(c.ramWrites, address)
		c.ram[address-0xA000] = value
	}
}

// Describe implements Cartridge
func (c *MockCartridge) Describe() string { return describe("MOCK", &c.header) }

// Save implements Cartridge
func (c *MockCartridge) Save() []byte { return saveRAM(c.ram[:]) }

// Load implements Cartridge
func (c *MockCartridge) Load(data []byte) error { return loadRAM(c.ram[:], data) }

// Header implements Cartridge
func (c *MockCartridge) Header() *Header { return &c.header }

// LoadROM copies data into the flat ROM starting at 0x0000
func (c *MockCartridge) LoadROM(data []uint8) {
	copy(c.rom[:], data)
}

// ROMWrites returns the addresses of all ROM writes seen so far
func (c *MockCartridge) ROMWrites() []uint16 {
	return c.romWrites
}

