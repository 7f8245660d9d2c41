package cartridge

import "time"

// mbc3 implements the MBC3 controller with its optional real time clock.
//
//	0x0000-0x1FFF  RAM and RTC enable
//	0x2000-0x3FFF  8-bit ROM bank, 0 is treated as 1
//	0x4000-0x5FFF  RAM bank 0x00-0x03 or RTC register 0x08-0x0C
//	0x6000-0x7FFF  latch clock data
type mbc3 struct {
	rom    []uint8
	ram    []uint8
	header *Header
	rtc    *RTC

	ramEnabled bool
	romBank    uint8
	selectReg  uint8

	romBankMask int
}

func newMBC3(rom []uint8, header *Header) *mbc3 {
	banks := len(rom) / ROMBankSize
	if banks < 2 {
		banks = 2
	}
	c := &mbc3{
		rom:         rom,
		ram:         newRAM(header),
		header:      header,
		romBank:     1,
		romBankMask: banks - 1,
	}
	if header.HasRTC {
		c.rtc = NewRTC(time.Now)
	}
	return c
}

// NewMBC3WithClock builds an MBC3 cartridge whose clock reads time from now
func NewMBC3WithClock(rom []byte, now func() time.Time) (Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	c := newMBC3(rom, header)
	c.rtc = NewRTC(now)
	return c, nil
}

func (c *mbc3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return romByte(c.rom, int(address))
	case address < 0x8000:
		bank := int(c.romBank) & c.romBankMask
		return romByte(c.rom, bank*ROMBankSize+int(address-0x4000))
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled {
			return 0xFF
		}
		if c.selectReg >= rtcSeconds {
			if c.rtc == nil {
				return 0xFF
			}
			return c.rtc.Read(c.selectReg)
		}
		if len(c.ram) == 0 {
			return 0xFF
		}
		return c.ram[c.ramOffset(address)]
	}
	return 0xFF
}

func (c *mbc3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.romBank = value
		if c.romBank == 0 {
			c.romBank = 1
		}
	case address < 0x6000:
		if value <= 0x03 || (value >= rtcSeconds && value <= rtcDaysHigh) {
			c.selectReg = value
		}
	case address < 0x8000:
		if c.rtc != nil {
			c.rtc.WriteLatch(value)
		}
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled {
			return
		}
		if c.selectReg >= rtcSeconds {
			if c.rtc != nil {
				c.rtc.Write(c.selectReg, value)
			}
			return
		}
		if len(c.ram) > 0 {
			c.ram[c.ramOffset(address)] = value
		}
	}
}

func (c *mbc3) ramOffset(address uint16) int {
	return (int(c.selectReg)*RAMBankSize + int(address-0xA000)) % len(c.ram)
}

func (c *mbc3) Describe() string {
	kind := "MBC3"
	if c.rtc != nil {
		kind = "MBC3+RTC"
	}
	return describe(kind, c.header)
}

func (c *mbc3) Save() []byte           { return saveRAM(c.ram) }
func (c *mbc3) Load(data []byte) error { return loadRAM(c.ram, data) }
func (c *mbc3) Header() *Header        { return c.header }
