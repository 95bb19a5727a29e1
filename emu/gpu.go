package emu

import "log"

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	// CyclesPerFrame is 144 visible lines plus 10 blank lines at 456
	// cycles each.
	CyclesPerFrame = 70224
)

// Per-mode cycle thresholds. A visible line is 80+172+204 = 456 cycles; a
// blank line is a single 456-cycle quantum.
const (
	searchingOAMCycles = 80
	transferringCycles = 172
	hblankCycles       = 204
	vblankCycles       = 456
)

// Memory ranges owned by the GPU.
const (
	VRAMStart = 0x8000
	VRAMEnd   = 0x9FFF
	OAMStart  = 0xFE00
	OAMEnd    = 0xFE9F

	oamSize = 0xA0
)

// Control register addresses, for the system's memory router.
const (
	AddrLCDControl      = 0xFF40
	AddrLCDStatus       = 0xFF41
	AddrScrollY         = 0xFF42
	AddrScrollX         = 0xFF43
	AddrScanline        = 0xFF44 // LY; any write resets it to 0
	AddrScanlineCompare = 0xFF45 // LYC
	AddrDMATransfer     = 0xFF46 // write-only
	AddrBGPalette       = 0xFF47
	AddrObjectPalette0  = 0xFF48
	AddrObjectPalette1  = 0xFF49
	AddrWindowY         = 0xFF4A
	AddrWindowX         = 0xFF4B
)

// blockedReadValue is returned for reads the bus rejects: locked VRAM/OAM,
// write-only registers, and unmapped addresses.
const blockedReadValue = 0x00

// MemoryReader is the system memory collaborator consumed during OAM DMA.
// Reads are assumed to always succeed.
type MemoryReader interface {
	ReadByte(addr uint16) uint8
}

// InterruptLine is the processor collaborator. The GPU raises two vectors:
// one for VBlank entry and one shared by all LCD status sources.
type InterruptLine interface {
	RequestVBlank()
	RequestLCDStat()
}

// GPU emulates the DMG picture processing unit: the mode/timing state
// machine, the memory-mapped register file with VRAM/OAM bus arbitration,
// the OAM DMA loader, and the scanline renderers.
//
// It is not safe for concurrent use; the driving processor is expected to
// call Step after each instruction, and all rendering happens inline there.
type GPU struct {
	mem MemoryReader
	irq InterruptLine

	vram [0x2000]uint8
	oam  [oamSize]uint8

	lcdc lcdControl
	stat lcdStatus

	scrollY         uint8
	scrollX         uint8
	scanline        uint8 // LY, 0-153
	scanlineCompare uint8 // LYC
	bgPalette       uint8
	objPalette0     uint8
	objPalette1     uint8
	windowY         uint8
	windowX         uint8 // stored value is true X plus 7; unused, see renderScanline

	// Cycles consumed so far within the current mode.
	modeClock int

	// Shade indices (0 lightest .. 3 darkest), row-major. Overwritten
	// scanline by scanline during the active phase, never cleared.
	framebuffer [ScreenWidth * ScreenHeight]uint8

	vsync  func()
	logger *log.Logger
}

// NewGPU creates a GPU wired to its collaborators. Either may be nil: a nil
// interrupt line drops interrupt requests, a nil memory reader is only a
// problem if a DMA transfer is triggered.
func NewGPU(mem MemoryReader, irq InterruptLine) *GPU {
	g := &GPU{mem: mem, irq: irq}
	g.stat.mode = ModeVBlank
	return g
}

// SetVSyncCallback registers the frame-ready callback, invoked exactly once
// per frame when the state machine enters VBlank.
func (g *GPU) SetVSyncCallback(callback func()) {
	g.vsync = callback
}

// SetLogger installs a logger for bus diagnostics (unmapped addresses,
// reads of write-only registers). Nil silences them.
func (g *GPU) SetLogger(logger *log.Logger) {
	g.logger = logger
}

// Framebuffer returns the live shade-index framebuffer. It is written
// scanline by scanline during the active phase, so reads between VSync
// callbacks can observe a torn frame.
func (g *GPU) Framebuffer() []uint8 {
	return g.framebuffer[:]
}

// Mode returns the current timing phase.
func (g *GPU) Mode() Mode {
	return g.stat.mode
}

// PreBoot sets the register file to the post-bootstrap state of the real
// hardware, for hosts that skip the boot ROM.
func (g *GPU) PreBoot() {
	g.scanline = 0x91
	g.scrollY = 0x00
	g.scrollX = 0x00
	g.scanlineCompare = 0x00
	g.bgPalette = 0xFC
	g.objPalette0 = 0xFF
	g.objPalette1 = 0xFF
	g.windowY = 0x00
	g.windowX = 0x00
}

// Step consumes the cycles spent by the last processor instruction and
// advances the mode state machine. Scanlines render on the transfer-to-
// HBlank edge, after the mode change, so the renderers' own bus reads are
// not locked out. The accumulator loop tolerates cycle counts larger than
// a single mode threshold.
func (g *GPU) Step(cycles int) {
	// With the LCD off there is no timing: park the machine at the end
	// of VBlank until the display is switched back on.
	if !g.lcdc.displayEnable {
		g.scanline = 153
		g.modeClock = vblankCycles
		g.stat.mode = ModeVBlank
		return
	}

	g.modeClock += cycles

	for advanced := true; advanced; {
		advanced = false

		switch g.stat.mode {
		case ModeSearchingOAM:
			if g.modeClock >= searchingOAMCycles {
				g.modeClock -= searchingOAMCycles
				g.stat.mode = ModeTransferring
				advanced = true
			}
		case ModeTransferring:
			if g.modeClock >= transferringCycles {
				g.modeClock -= transferringCycles
				g.stat.mode = ModeHBlank

				g.renderScanline()

				if g.stat.hblankInt {
					g.requestLCDStat()
				}
				advanced = true
			}
		case ModeHBlank:
			if g.modeClock >= hblankCycles {
				g.modeClock -= hblankCycles

				g.scanline++
				if g.scanline == ScreenHeight {
					g.stat.mode = ModeVBlank
					if g.vsync != nil {
						g.vsync()
					}
					g.requestVBlank()
					if g.stat.vblankInt {
						g.requestLCDStat()
					}
				} else {
					g.stat.mode = ModeSearchingOAM
				}
				advanced = true
			}
		case ModeVBlank:
			if g.modeClock >= vblankCycles {
				g.modeClock -= vblankCycles

				// Ten blank lines, one 456-cycle quantum each.
				g.scanline++
				if g.scanline == 154 {
					g.scanline = 0
					g.stat.mode = ModeSearchingOAM
				}
				advanced = true
			}
		}

		// Recompute after every transition so a multi-line step still
		// observes each coincidence edge; the trailing call covers
		// steps with no transition at all.
		if advanced {
			g.updateCoincidence()
		}
	}

	g.updateCoincidence()
}

// updateCoincidence recomputes the LYC=LY flag. The STAT interrupt fires
// only when the flag becomes newly set, not on every step it stays set.
func (g *GPU) updateCoincidence() {
	match := g.scanlineCompare == g.scanline
	if match && !g.stat.coincidence && g.stat.coincidenceInt {
		g.requestLCDStat()
	}
	g.stat.coincidence = match
}

func (g *GPU) requestVBlank() {
	if g.irq != nil {
		g.irq.RequestVBlank()
	}
}

func (g *GPU) requestLCDStat() {
	if g.irq != nil {
		g.irq.RequestLCDStat()
	}
}

// ReadByte services a bus read of any address the GPU owns. Locked memory
// and write-only or unmapped registers read back as blockedReadValue.
// The renderers use this same path, relying on Step having already moved
// the mode to HBlank before they run.
func (g *GPU) ReadByte(addr uint16) uint8 {
	if addr >= VRAMStart && addr <= VRAMEnd {
		// VRAM is locked while pixels are being transferred. With the
		// LCD off the bus is always open.
		if g.lcdc.displayEnable && g.stat.mode == ModeTransferring {
			return blockedReadValue
		}
		return g.vram[addr-VRAMStart]
	}
	if addr >= OAMStart && addr <= OAMEnd {
		// OAM is locked during attribute search as well.
		if g.lcdc.displayEnable && (g.stat.mode == ModeSearchingOAM || g.stat.mode == ModeTransferring) {
			return blockedReadValue
		}
		return g.oam[addr-OAMStart]
	}

	switch addr {
	case AddrLCDControl:
		return g.lcdc.Byte()
	case AddrLCDStatus:
		return g.stat.Byte()
	case AddrScrollY:
		return g.scrollY
	case AddrScrollX:
		return g.scrollX
	case AddrScanline:
		return g.scanline
	case AddrScanlineCompare:
		return g.scanlineCompare
	case AddrBGPalette:
		return g.bgPalette
	case AddrObjectPalette0:
		return g.objPalette0
	case AddrObjectPalette1:
		return g.objPalette1
	case AddrWindowY:
		return g.windowY
	case AddrWindowX:
		return g.windowX
	case AddrDMATransfer:
		g.logf("gpu: read from write-only DMA register 0x%04X", addr)
		return blockedReadValue
	default:
		g.logf("gpu: read from unmapped address 0x%04X", addr)
		return blockedReadValue
	}
}

// WriteByte services a bus write and reports whether it was applied.
// Rejected writes never corrupt state; the caller decides whether a
// rejection matters.
func (g *GPU) WriteByte(addr uint16, val uint8) bool {
	if addr >= VRAMStart && addr <= VRAMEnd {
		if g.lcdc.displayEnable && g.stat.mode == ModeTransferring {
			return false
		}
		g.vram[addr-VRAMStart] = val
		return true
	}
	if addr >= OAMStart && addr <= OAMEnd {
		if g.lcdc.displayEnable && (g.stat.mode == ModeSearchingOAM || g.stat.mode == ModeTransferring) {
			return false
		}
		g.oam[addr-OAMStart] = val
		return true
	}

	switch addr {
	case AddrLCDControl:
		g.lcdc.SetByte(val)
		return true
	case AddrLCDStatus:
		// Only the interrupt enables are writable; mode and the
		// coincidence flag stay untouched.
		g.stat.SetByte(val)
		return true
	case AddrScrollY:
		g.scrollY = val
		return true
	case AddrScrollX:
		g.scrollX = val
		return true
	case AddrScanline:
		// Writing LY resets it regardless of the value written.
		g.scanline = 0
		return true
	case AddrScanlineCompare:
		g.scanlineCompare = val
		return true
	case AddrBGPalette:
		g.bgPalette = val
		return true
	case AddrObjectPalette0:
		g.objPalette0 = val
		return true
	case AddrObjectPalette1:
		g.objPalette1 = val
		return true
	case AddrWindowY:
		g.windowY = val
		return true
	case AddrWindowX:
		g.windowX = val
		return true
	case AddrDMATransfer:
		g.launchDMATransfer(val)
		return true
	default:
		g.logf("gpu: write to unmapped address 0x%04X", addr)
		return false
	}
}

// launchDMATransfer copies 160 bytes from sourcePage*0x100 in system memory
// into OAM. The transfer completes within the triggering bus write; no
// cycle cost is modeled.
func (g *GPU) launchDMATransfer(sourcePage uint8) {
	source := uint16(sourcePage) << 8
	for offset := uint16(0); offset < oamSize; offset++ {
		g.oam[offset] = g.mem.ReadByte(source | offset)
	}
}

func (g *GPU) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}
