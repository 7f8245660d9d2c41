package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// Header offsets
const (
	headerStart         = 0x0100
	entryPointOffset    = 0x0100
	logoOffset          = 0x0104
	titleOffset         = 0x0134
	newLicenseeOffset   = 0x0144
	sgbFlagOffset       = 0x0146
	typeOffset          = 0x0147
	romSizeOffset       = 0x0148
	ramSizeOffset       = 0x0149
	destinationOffset   = 0x014A
	oldLicenseeOffset   = 0x014B
	versionOffset       = 0x014C
	headerChecksumOff   = 0x014D
	globalChecksumOff   = 0x014E
	headerEnd           = 0x0150
	checksumRangeStart  = titleOffset
	checksumRangeEnd    = versionOffset
	titleLength         = 16
	logoLength          = 48
	RAMBankSize         = 0x2000
	ROMBankSize         = 0x4000
	minimumImageSize    = 2 * ROMBankSize
	maximumROMSizeShift = 8
)

// ErrImageTooSmall is returned for images that cannot hold a header and two ROM banks
var ErrImageTooSmall = errors.New("cartridge image too small")

// Header holds the fields decoded from 0x0100-0x014F of the program image
type Header struct {
	EntryPoint     [4]uint8
	Logo           [logoLength]uint8
	Title          string
	NewLicensee    string
	SGBFlag        uint8
	Type           uint8
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	Destination    uint8
	OldLicensee    uint8
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16

	// Derived values
	ROMSize    int  // bytes
	ROMBanks   int  // 16 KiB banks
	RAMBanks   int  // 8 KiB banks
	ChecksumOK bool // computed header checksum matches HeaderChecksum
	HasBattery bool
	HasRTC     bool
}

// ramBankCounts maps the RAM size byte to the number of 8 KiB banks
var ramBankCounts = map[uint8]int{
	0x00: 0,
	0x01: 0,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// ParseHeader decodes the cartridge header from a full program image
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooSmall, len(rom))
	}

	h := &Header{
		SGBFlag:        rom[sgbFlagOffset],
		Type:           rom[typeOffset],
		ROMSizeCode:    rom[romSizeOffset],
		RAMSizeCode:    rom[ramSizeOffset],
		Destination:    rom[destinationOffset],
		OldLicensee:    rom[oldLicenseeOffset],
		Version:        rom[versionOffset],
		HeaderChecksum: rom[headerChecksumOff],
		GlobalChecksum: uint16(rom[globalChecksumOff])<<8 | uint16(rom[globalChecksumOff+1]),
	}
	copy(h.EntryPoint[:], rom[entryPointOffset:logoOffset])
	copy(h.Logo[:], rom[logoOffset:titleOffset])

	title := rom[titleOffset : titleOffset+titleLength]
	if i := strings.IndexByte(string(title), 0); i >= 0 {
		title = title[:i]
	}
	h.Title = strings.TrimRight(string(title), " ")
	h.NewLicensee = string(rom[newLicenseeOffset : newLicenseeOffset+2])

	if h.ROMSizeCode > maximumROMSizeShift {
		return nil, fmt.Errorf("invalid ROM size code 0x%02X", h.ROMSizeCode)
	}
	h.ROMSize = (32 * 1024) << h.ROMSizeCode
	h.ROMBanks = h.ROMSize / ROMBankSize

	banks, ok := ramBankCounts[h.RAMSizeCode]
	if !ok {
		return nil, fmt.Errorf("invalid RAM size code 0x%02X", h.RAMSizeCode)
	}
	h.RAMBanks = banks

	h.ChecksumOK = computeHeaderChecksum(rom) == h.HeaderChecksum

	switch h.Type {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0x22, 0xFF:
		h.HasBattery = true
	}
	h.HasRTC = h.Type == 0x0F || h.Type == 0x10

	return h, nil
}

// computeHeaderChecksum runs the boot ROM's header checksum over 0x0134-0x014C
func computeHeaderChecksum(rom []byte) uint8 {
	var x uint8
	for i := checksumRangeStart; i <= checksumRangeEnd; i++ {
		x = x - rom[i] - 1
	}
	return x
}

// TypeName returns a readable name for the cartridge type byte
func (h *Header) TypeName() string {
	if name, ok := typeNames[h.Type]; ok {
		return name
	}
	return "UNKNOWN"
}

// LicenseeName returns the publisher name from the old or new licensee code
func (h *Header) LicenseeName() string {
	if h.OldLicensee == 0x33 {
		if name, ok := newLicensees[h.NewLicensee]; ok {
			return name
		}
		return "UNKNOWN (" + h.NewLicensee + ")"
	}
	if name, ok := oldLicensees[h.OldLicensee]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (0x%02X)", h.OldLicensee)
}

// String summarises the header on a few lines
func (h *Header) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title    : %s\n", h.Title)
	fmt.Fprintf(&b, "Type     : 0x%02X (%s)\n", h.Type, h.TypeName())
	fmt.Fprintf(&b, "ROM Size : %d KiB (%d banks)\n", h.ROMSize/1024, h.ROMBanks)
	fmt.Fprintf(&b, "RAM Size : %d KiB (%d banks)\n", h.RAMBanks*RAMBankSize/1024, h.RAMBanks)
	fmt.Fprintf(&b, "Licensee : %s\n", h.LicenseeName())
	fmt.Fprintf(&b, "Version  : %d\n", h.Version)
	checksum := "PASSED"
	if !h.ChecksumOK {
		checksum = "FAILED"
	}
	fmt.Fprintf(&b, "Checksum : 0x%02X (%s)", h.HeaderChecksum, checksum)
	return b.String()
}

var typeNames = map[uint8]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}

var oldLicensees = map[uint8]string{
	0x00: "None",
	0x01: "Nintendo",
	0x08: "Capcom",
	0x09: "Hot-B",
	0x0A: "Jaleco",
	0x0B: "Coconuts Japan",
	0x0C: "Elite Systems",
	0x13: "EA (Electronic Arts)",
	0x18: "Hudson Soft",
	0x19: "ITC Entertainment",
	0x1A: "Yanoman",
	0x1D: "Japan Clary",
	0x1F: "Virgin Games",
	0x24: "PCM Complete",
	0x25: "San-X",
	0x28: "Kemco",
	0x29: "SETA Corporation",
	0x30: "Infogrames",
	0x31: "Nintendo",
	0x32: "Bandai",
	0x34: "Konami",
	0x35: "HectorSoft",
	0x38: "Capcom",
	0x39: "Banpresto",
	0x41: "Ubi Soft",
	0x42: "Atlus",
	0x44: "Malibu Interactive",
	0x46: "Angel",
	0x47: "Spectrum HoloByte",
	0x49: "Irem",
	0x4A: "Virgin Games",
	0x4D: "Malibu Interactive",
	0x4F: "U.S. Gold",
	0x50: "Absolute",
	0x51: "Acclaim Entertainment",
	0x52: "Activision",
	0x53: "Sammy USA Corporation",
	0x54: "GameTek",
	0x56: "LJN",
	0x5A: "Mindscape",
	0x5B: "Romstar",
	0x5D: "Tradewest",
	0x60: "Titus Interactive",
	0x61: "Virgin Games",
	0x67: "Ocean Software",
	0x69: "EA (Electronic Arts)",
	0x6E: "Elite Systems",
	0x6F: "Electro Brain",
	0x70: "Infogrames",
	0x71: "Interplay Entertainment",
	0x72: "Broderbund",
	0x78: "THQ",
	0x79: "Accolade",
	0x7C: "Microprose",
	0x7F: "Kemco",
	0x83: "LOZC G.",
	0x8B: "Bullet-Proof Software",
	0x8C: "Vic Tokai Corp.",
	0x91: "Chunsoft Co.",
	0x92: "Video System",
	0x95: "Varie",
	0x97: "Kaneko",
	0x99: "Arc",
	0x9A: "Nihon Bussan",
	0x9B: "Tecmo",
	0x9C: "Imagineer",
	0x9F: "Nova",
	0xA4: "Konami (Yu-Gi-Oh!)",
	0xA7: "Takara",
	0xAF: "Namco",
	0xB0: "Acclaim Entertainment",
	0xB1: "ASCII Corporation or Nexsoft",
	0xB2: "Bandai",
	0xB4: "Square Enix",
	0xB6: "HAL Laboratory",
	0xB7: "SNK",
	0xBB: "Sunsoft",
	0xC0: "Taito",
	0xC2: "Kemco",
	0xC3: "Square",
	0xC5: "Data East",
	0xC6: "Tonkin House",
	0xC8: "Koei",
	0xCA: "Ultra Games",
	0xCB: "VAP, Inc.",
	0xCE: "Pony Canyon",
	0xD1: "Sofel",
	0xD2: "Quest",
	0xD9: "Banpresto",
	0xDA: "Tomy",
	0xDB: "LJN",
	0xDE: "Human Entertainment",
	0xDF: "Altron",
	0xE0: "Jaleco",
	0xE1: "Towa Chiki",
	0xE2: "Yutaka",
	0xE5: "Epoch",
	0xE7: "Athena",
	0xE8: "Asmik Ace Entertainment",
	0xE9: "Natsume",
	0xEA: "King Records",
	0xEB: "Atlus",
	0xEC: "Epic/Sony Records",
	0xF3: "Extreme Entertainment",
	0xFF: "LJN",
}

var newLicensees = map[string]string{
	"00": "None",
	"01": "Nintendo Research & Development 1",
	"08": "Capcom",
	"13": "EA (Electronic Arts)",
	"18": "Hudson Soft",
	"19": "B-AI",
	"20": "KSS",
	"22": "Planning Office WADA",
	"24": "PCM Complete",
	"25": "San-X",
	"28": "Kemco",
	"29": "SETA Corporation",
	"30": "Viacom",
	"31": "Nintendo",
	"32": "Bandai",
	"33": "Ocean Software/Acclaim Entertainment",
	"34": "Konami",
	"35": "HectorSoft",
	"37": "Taito",
	"38": "Hudson Soft",
	"39": "Banpresto",
	"41": "Ubi Soft",
	"42": "Atlus",
	"44": "Malibu Interactive",
	"46": "Angel",
	"47": "Bullet-Proof Software",
	"49": "Irem",
	"50": "Absolute",
	"51": "Acclaim Entertainment",
	"52": "Activision",
	"53": "Sammy USA Corporation",
	"54": "Konami",
	"55": "Hi Tech Expressions",
	"56": "LJN",
	"57": "Matchbox",
	"58": "Mattel",
	"59": "Milton Bradley Company",
	"60": "Titus Interactive",
	"61": "Virgin Games Ltd.",
	"64": "Lucasfilm Games",
	"67": "Ocean Software",
	"69": "EA (Electronic Arts)",
	"70": "Infogrames",
	"71": "Interplay Entertainment",
	"72": "Broderbund",
	"73": "Sculptured Software",
	"75": "The Sales Curve Limited",
	"78": "THQ",
	"79": "Accolade",
	"80": "Misawa Entertainment",
	"83": "lozc",
	"86": "Tokuma Shoten",
	"87": "Tsukuda Original",
	"91": "Chunsoft Co.",
	"92": "Video System",
	"93": "Ocean Software/Acclaim Entertainment",
	"95": "Varie",
	"96": "Yonezawa/s'pal",
	"97": "Kaneko",
	"99": "Pack-In-Video",
	"9H": "Bottom Up",
	"A4": "Konami (Yu-Gi-Oh!)",
	"BL": "MTO",
	"DK": "Kodansha",
}
