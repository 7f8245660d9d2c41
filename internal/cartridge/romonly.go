package cartridge

// romOnly is a cartridge with a fixed 32 KiB ROM and optionally one unbanked RAM bank
type romOnly struct {
	rom    []uint8
	ram    []uint8
	header *Header
}

func newROMOnly(rom []uint8, header *Header) *romOnly {
	return &romOnly{rom: rom, ram: newRAM(header), header: header}
}

func (c *romOnly) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		return romByte(c.rom, int(address))
	case address >= 0xA000 && address < 0xC000:
		offset := int(address - 0xA000)
		if offset < len(c.ram) {
			return c.ram[offset]
		}
	}
	return 0xFF
}

// Write drops ROM writes and stores RAM writes when RAM is present
func (c *romOnly) Write(address uint16, value uint8) {
	if address >= 0xA000 && address < 0xC000 {
		offset := int(address - 0xA000)
		if offset < len(c.ram) {
			c.ram[offset] = value
		}
	}
}

func (c *romOnly) Describe() string       { return describe("ROM", c.header) }
func (c *romOnly) Save() []byte           { return saveRAM(c.ram) }
func (c *romOnly) Load(data []byte) error { return loadRAM(c.ram, data) }
func (c *romOnly) Header() *Header        { return c.header }
