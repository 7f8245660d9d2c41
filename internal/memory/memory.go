// Package memory implements the address bus and the I/O register aggregator.
package memory

import (
	"log"
)

// Address map
const (
	romEnd     = 0x7FFF
	vramStart  = 0x8000
	vramEnd    = 0x9FFF
	extRAMEnd  = 0xBFFF
	wramStart  = 0xC000
	wramEnd    = 0xDFFF
	echoStart  = 0xE000
	echoEnd    = 0xFDFF
	oamStart   = 0xFE00
	oamEnd     = 0xFE9F
	unusedEnd  = 0xFEFF
	ioStart    = 0xFF00
	ioEnd      = 0xFF7F
	hramStart  = 0xFF80
	hramEnd    = 0xFFFE
	ieRegister = 0xFFFF

	wramSize = wramEnd - wramStart + 1
	hramSize = hramEnd - hramStart + 1
)

// PPUInterface defines the video memory access the bus needs
type PPUInterface interface {
	ReadVRAM(address uint16) uint8
	WriteVRAM(address uint16, value uint8)
	ReadOAM(address uint16) uint8
	WriteOAM(address uint16, value uint8)
}

// CartridgeInterface defines the interface for cartridge access
type CartridgeInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// IOInterface defines the register file at 0xFF00-0xFF7F and 0xFFFF
type IOInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Memory represents the address bus. It owns work RAM and high RAM and
// routes every other range to the component that handles it.
type Memory struct {
	wram [wramSize]uint8
	hram [hramSize]uint8

	cartridge CartridgeInterface
	ppu       PPUInterface
	io        IOInterface

	logger   *log.Logger
	unmapped map[uint16]bool
}

// New creates a new Memory instance
func New(cart CartridgeInterface, ppu PPUInterface, io IOInterface) *Memory {
	return &Memory{
		cartridge: cart,
		ppu:       ppu,
		io:        io,
		logger:    log.Default(),
		unmapped:  make(map[uint16]bool),
	}
}

// SetLogger replaces the logger used for unmapped accesses
func (m *Memory) SetLogger(logger *log.Logger) {
	m.logger = logger
}

// SetCartridge swaps the cartridge on the bus
func (m *Memory) SetCartridge(cart CartridgeInterface) {
	m.cartridge = cart
}

// Reset clears work RAM and high RAM
func (m *Memory) Reset() {
	m.wram = [wramSize]uint8{}
	m.hram = [hramSize]uint8{}
	m.unmapped = make(map[uint16]bool)
}

// Read reads a byte from the given address
func (m *Memory) Read(address uint16) uint8 {
	switch {
	case address <= romEnd:
		return m.readCartridge(address)
	case address <= vramEnd:
		return m.ppu.ReadVRAM(address)
	case address <= extRAMEnd:
		return m.readCartridge(address)
	case address <= wramEnd:
		return m.wram[address-wramStart]
	case address <= echoEnd:
		return m.wram[address-echoStart]
	case address <= oamEnd:
		return m.ppu.ReadOAM(address)
	case address <= unusedEnd:
		m.logUnmapped("read", address, 0)
		return 0xFF
	case address <= ioEnd:
		return m.io.Read(address)
	case address <= hramEnd:
		return m.hram[address-hramStart]
	default:
		return m.io.Read(address)
	}
}

// Write writes a byte to the given address
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address <= romEnd:
		m.writeCartridge(address, value)
	case address <= vramEnd:
		m.ppu.WriteVRAM(address, value)
	case address <= extRAMEnd:
		m.writeCartridge(address, value)
	case address <= wramEnd:
		m.wram[address-wramStart] = value
	case address <= echoEnd:
		m.wram[address-echoStart] = value
	case address <= oamEnd:
		m.ppu.WriteOAM(address, value)
	case address <= unusedEnd:
		m.logUnmapped("write", address, value)
	case address <= ioEnd:
		m.io.Write(address, value)
	case address <= hramEnd:
		m.hram[address-hramStart] = value
	default:
		m.io.Write(address, value)
	}
}

// Read16 reads a little-endian word
func (m *Memory) Read16(address uint16) uint16 {
	return uint16(m.Read(address)) | uint16(m.Read(address+1))<<8
}

func (m *Memory) readCartridge(address uint16) uint8 {
	if m.cartridge == nil {
		m.logUnmapped("read", address, 0)
		return 0xFF
	}
	return m.cartridge.Read(address)
}

func (m *Memory) writeCartridge(address uint16, value uint8) {
	if m.cartridge == nil {
		m.logUnmapped("write", address, value)
		return
	}
	m.cartridge.Write(address, value)
}

// logUnmapped reports the first access to each unmapped address
func (m *Memory) logUnmapped(kind string, address uint16, value uint8) {
	if m.unmapped[address] {
		return
	}
	m.unmapped[address] = true
	if kind == "write" {
		m.logger.Printf("[MEMORY] Unmapped write $%04X = $%02X dropped", address, value)
		return
	}
	m.logger.Printf("[MEMORY] Unmapped read $%04X returns $FF", address)
}
