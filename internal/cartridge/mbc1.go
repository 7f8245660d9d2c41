package cartridge

// mbc1 implements the MBC1 controller.
//
// Registers (write only, selected by address):
//
//	0x0000-0x1FFF  RAM enable (0x0A in the low nibble enables)
//	0x2000-0x3FFF  5-bit ROM bank, 0 is treated as 1
//	0x4000-0x5FFF  2-bit secondary bank (RAM bank or ROM bank bits 5-6)
//	0x6000-0x7FFF  banking mode
type mbc1 struct {
	rom    []uint8
	ram    []uint8
	header *Header

	ramEnabled bool
	romBank    uint8 // 5 bits
	bank2      uint8 // 2 bits
	mode       uint8 // 0 simple, 1 advanced

	romBankMask int
}

func newMBC1(rom []uint8, header *Header) *mbc1 {
	banks := len(rom) / ROMBankSize
	if banks < 2 {
		banks = 2
	}
	return &mbc1{
		rom:         rom,
		ram:         newRAM(header),
		header:      header,
		romBank:     1,
		romBankMask: banks - 1,
	}
}

// lowBank is the bank mapped at 0x0000-0x3FFF
func (c *mbc1) lowBank() int {
	if c.mode == 0 {
		return 0
	}
	return (int(c.bank2) << 5) & c.romBankMask
}

// highBank is the bank mapped at 0x4000-0x7FFF
func (c *mbc1) highBank() int {
	return (int(c.bank2)<<5 | int(c.romBank)) & c.romBankMask
}

// ramOffset resolves an 0xA000-0xBFFF address into the RAM slice
func (c *mbc1) ramOffset(address uint16) int {
	bank := 0
	if c.mode == 1 && len(c.ram) > RAMBankSize {
		bank = int(c.bank2)
	}
	return (bank*RAMBankSize + int(address-0xA000)) % len(c.ram)
}

func (c *mbc1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return romByte(c.rom, c.lowBank()*ROMBankSize+int(address))
	case address < 0x8000:
		return romByte(c.rom, c.highBank()*ROMBankSize+int(address-0x4000))
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled || len(c.ram) == 0 {
			return 0xFF
		}
		return c.ram[c.ramOffset(address)]
	}
	return 0xFF
}

func (c *mbc1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.romBank = value & 0x1F
		if c.romBank == 0 {
			c.romBank = 1
		}
	case address < 0x6000:
		c.bank2 = value & 0x03
	case address < 0x8000:
		c.mode = value & 0x01
	case address >= 0xA000 && address < 0xC000:
		if c.ramEnabled && len(c.ram) > 0 {
			c.ram[c.ramOffset(address)] = value
		}
	}
}

func (c *mbc1) Describe() string       { return describe("MBC1", c.header) }
func (c *mbc1) Save() []byte           { return saveRAM(c.ram) }
func (c *mbc1) Load(data []byte) error { return loadRAM(c.ram, data) }
func (c *mbc1) Header() *Header        { return c.header }
