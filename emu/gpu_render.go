package emu

// ShadeTable maps a framebuffer shade index to the DMG gray ramp, for
// presentation layers that want the hardware's monochrome look.
var ShadeTable = [4]uint8{0xEB, 0xC4, 0x60, 0x00}

// Tile layout: 16 bytes per 8x8 tile, 2 bytes per pixel row.
const (
	tileBytes = 16

	tileMapLow  = 0x9800
	tileMapHigh = 0x9C00

	// LCDC bit 4 set: tile index is unsigned from 0x8000. Clear: tile
	// index is signed from 0x9000 (so index -128 lands on 0x8800).
	tileDataUnsignedBase = 0x8000
	tileDataSignedBase   = 0x9000

	// Sprites always fetch unsigned from 0x8000.
	spriteTileDataBase = 0x8000
)

// Sprite attribute flags (OAM byte 3). Bits 0-3 are unused on this
// hardware variant.
const (
	spriteFlagBehindBG = 0x80 // only drawn over framebuffer shade 0
	spriteFlagYFlip    = 0x40
	spriteFlagXFlip    = 0x20
	spriteFlagPalette  = 0x10 // OBP1 instead of OBP0
)

// Stored OAM positions are offset from the true screen position so partially
// offscreen sprites stay representable in a byte.
const (
	spriteYOffset = 16
	spriteXOffset = 8
)

// renderScanline draws the current scanline into the framebuffer.
// Precondition: Step has already advanced the mode to HBlank, otherwise the
// bus reads below would be locked out and fetch neutral values.
func (g *GPU) renderScanline() {
	g.renderBackgroundScanline()

	if g.lcdc.windowEnable {
		// Window rendering is not implemented. The branch is kept so
		// the gap is explicit: enabling the window leaves the
		// background output untouched.
	}

	if g.lcdc.spriteEnable {
		g.renderSpriteScanline()
	}
}

// renderBackgroundScanline draws the background layer for the current
// scanline: 160 tile-map fetches, two pattern bytes each, mapped through
// the background palette.
func (g *GPU) renderBackgroundScanline() {
	line := int(g.scanline)
	row := g.framebuffer[line*ScreenWidth : (line+1)*ScreenWidth]

	if !g.lcdc.bgEnable {
		// A disabled background is blank: shade 0 regardless of the
		// palette contents.
		for x := range row {
			row[x] = 0
		}
		return
	}

	palette := paletteShades(g.bgPalette)

	tileMap := uint16(tileMapLow)
	if g.lcdc.bgTileMapHigh {
		tileMap = tileMapHigh
	}

	// Vertical position wraps at 256 pixels, then splits into a tile row
	// in the 32x32 map and a pixel row within the tile.
	bgY := (line + int(g.scrollY)) & 0xFF
	tileY := bgY / 8
	tileYOffset := bgY % 8

	for x := 0; x < ScreenWidth; x++ {
		bgX := (int(g.scrollX) + x) & 0xFF
		tileX := bgX / 8

		tileNumber := g.ReadByte(tileMap + uint16(tileY*32+tileX))

		var tileAddr uint16
		if g.lcdc.tileDataUnsigned {
			tileAddr = tileDataUnsignedBase + uint16(tileNumber)*tileBytes
		} else {
			tileAddr = uint16(tileDataSignedBase + int(int8(tileNumber))*tileBytes)
		}
		tileAddr += uint16(tileYOffset) * 2

		lo := g.ReadByte(tileAddr)
		hi := g.ReadByte(tileAddr + 1)

		// Bit 7 is the leftmost pixel of the tile row.
		bit := uint(7 - bgX%8)
		pixel := (lo>>bit)&0x01 | ((hi>>bit)&0x01)<<1

		row[x] = palette[pixel]
	}
}

// renderSpriteScanline composites sprites onto the scanline the background
// renderer produced. All 40 OAM entries are scanned in storage order with
// no per-line cap, so a later entry overlapping the same pixel wins
// unconditionally.
func (g *GPU) renderSpriteScanline() {
	line := int(g.scanline)
	row := g.framebuffer[line*ScreenWidth : (line+1)*ScreenWidth]

	height := 8
	if g.lcdc.spriteSize16 {
		height = 16
	}

	for i := 0; i < oamSize; i += 4 {
		y := int(g.oam[i]) - spriteYOffset
		if line < y || line >= y+height {
			continue
		}

		x := int(g.oam[i+1]) - spriteXOffset
		tileNumber := g.oam[i+2]
		flags := g.oam[i+3]

		// 8x16 sprites occupy a tile pair; the low index bit is
		// ignored.
		if height == 16 {
			tileNumber &= 0xFE
		}

		objPalette := g.objPalette0
		if flags&spriteFlagPalette != 0 {
			objPalette = g.objPalette1
		}
		// Entry 0 of the sprite palette is transparent, never drawn.
		shades := paletteShades(objPalette)

		tileRow := line - y
		if flags&spriteFlagYFlip != 0 {
			tileRow = (height - 1) - tileRow
		}

		tileAddr := uint16(spriteTileDataBase) + uint16(tileNumber)*tileBytes + uint16(tileRow)*2
		lo := g.ReadByte(tileAddr)
		hi := g.ReadByte(tileAddr + 1)

		for px := 0; px < 8; px++ {
			screenX := x + px
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}

			bit := uint(7 - px)
			if flags&spriteFlagXFlip != 0 {
				bit = uint(px)
			}
			pixel := (lo>>bit)&0x01 | ((hi>>bit)&0x01)<<1
			if pixel == 0 {
				continue
			}

			// Behind-background sprites only show through pixels
			// the background left at shade 0.
			if flags&spriteFlagBehindBG != 0 && row[screenX] != 0 {
				continue
			}
			row[screenX] = shades[pixel]
		}
	}
}
