package emu

// Mode is the 2-bit phase field of the STAT register, using the hardware
// encoding so it can be packed straight into the register byte.
type Mode uint8

const (
	ModeHBlank       Mode = 0 // end of a visible scanline, bus fully open
	ModeVBlank       Mode = 1 // blank lines 144-153, bus fully open
	ModeSearchingOAM Mode = 2 // start of a visible scanline, OAM locked
	ModeTransferring Mode = 3 // pixel transfer, OAM and VRAM locked
)

func (m Mode) String() string {
	switch m {
	case ModeHBlank:
		return "HBlank"
	case ModeVBlank:
		return "VBlank"
	case ModeSearchingOAM:
		return "SearchingOAM"
	case ModeTransferring:
		return "Transferring"
	default:
		return "Unknown"
	}
}

// lcdControl is the LCDC register (0xFF40) unpacked into its eight flags.
type lcdControl struct {
	displayEnable     bool // bit 7: LCD on
	windowTileMapHigh bool // bit 6: window tile map at 0x9C00 instead of 0x9800
	windowEnable      bool // bit 5: window layer on (rendering not implemented)
	tileDataUnsigned  bool // bit 4: tile data at 0x8000 unsigned, else 0x9000 signed
	bgTileMapHigh     bool // bit 3: background tile map at 0x9C00 instead of 0x9800
	spriteSize16      bool // bit 2: 8x16 sprites instead of 8x8
	spriteEnable      bool // bit 1: sprite layer on
	bgEnable          bool // bit 0: background layer on
}

// Byte packs the flags back into the register byte.
func (c *lcdControl) Byte() uint8 {
	var v uint8
	if c.displayEnable {
		v |= 0x80
	}
	if c.windowTileMapHigh {
		v |= 0x40
	}
	if c.windowEnable {
		v |= 0x20
	}
	if c.tileDataUnsigned {
		v |= 0x10
	}
	if c.bgTileMapHigh {
		v |= 0x08
	}
	if c.spriteSize16 {
		v |= 0x04
	}
	if c.spriteEnable {
		v |= 0x02
	}
	if c.bgEnable {
		v |= 0x01
	}
	return v
}

// SetByte unpacks a register write. Every LCDC bit is writable.
func (c *lcdControl) SetByte(v uint8) {
	c.displayEnable = v&0x80 != 0
	c.windowTileMapHigh = v&0x40 != 0
	c.windowEnable = v&0x20 != 0
	c.tileDataUnsigned = v&0x10 != 0
	c.bgTileMapHigh = v&0x08 != 0
	c.spriteSize16 = v&0x04 != 0
	c.spriteEnable = v&0x02 != 0
	c.bgEnable = v&0x01 != 0
}

// lcdStatus is the STAT register (0xFF41). The interrupt enables are
// read/write; the coincidence flag and mode are owned by the state machine.
type lcdStatus struct {
	unused7        bool // bit 7: no function, but writable and read back
	coincidenceInt bool // bit 6: STAT interrupt on LYC=LY
	oamInt         bool // bit 5: accepted but never fired, see Step
	vblankInt      bool // bit 4: STAT interrupt on VBlank entry
	hblankInt      bool // bit 3: STAT interrupt on HBlank entry
	coincidence    bool // bit 2: read-only, recomputed every Step
	mode           Mode // bits 0-1: read-only
}

// Byte packs the full register byte, including the read-only fields.
func (s *lcdStatus) Byte() uint8 {
	v := uint8(s.mode) & 0x03
	if s.unused7 {
		v |= 0x80
	}
	if s.coincidenceInt {
		v |= 0x40
	}
	if s.oamInt {
		v |= 0x20
	}
	if s.vblankInt {
		v |= 0x10
	}
	if s.hblankInt {
		v |= 0x08
	}
	if s.coincidence {
		v |= 0x04
	}
	return v
}

// SetByte applies a register write. Bits 7-3 are writable; the coincidence
// flag and mode bits are preserved.
func (s *lcdStatus) SetByte(v uint8) {
	s.unused7 = v&0x80 != 0
	s.coincidenceInt = v&0x40 != 0
	s.oamInt = v&0x20 != 0
	s.vblankInt = v&0x10 != 0
	s.hblankInt = v&0x08 != 0
}

// paletteShades unpacks a palette register (BGP/OBP0/OBP1) into its four
// 2-bit shade selectors: entry N occupies bits 2N and 2N+1.
func paletteShades(p uint8) [4]uint8 {
	return [4]uint8{
		p & 0x03,
		(p >> 2) & 0x03,
		(p >> 4) & 0x03,
		(p >> 6) & 0x03,
	}
}
