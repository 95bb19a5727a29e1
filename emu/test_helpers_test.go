package emu

// interruptRecorder counts interrupt requests per vector.
type interruptRecorder struct {
	vblank  int
	lcdStat int
}

func (r *interruptRecorder) RequestVBlank()  { r.vblank++ }
func (r *interruptRecorder) RequestLCDStat() { r.lcdStat++ }

func (r *interruptRecorder) reset() {
	r.vblank = 0
	r.lcdStat = 0
}

// patternMemory serves DMA reads with a value derived from the address and
// records every address read, in order.
type patternMemory struct {
	reads []uint16
}

func (m *patternMemory) ReadByte(addr uint16) uint8 {
	m.reads = append(m.reads, addr)
	return uint8(addr) ^ uint8(addr>>8)
}

// newTestGPU returns a GPU with the display and background enabled,
// positioned at the start of scanline 0 (SearchingOAM, empty accumulator),
// plus its collaborator recorders.
func newTestGPU() (*GPU, *interruptRecorder, *patternMemory) {
	mem := &patternMemory{}
	irq := &interruptRecorder{}
	g := NewGPU(mem, irq)

	g.WriteByte(AddrLCDControl, 0x91) // display on, unsigned tiles, background on

	// A fresh GPU idles in VBlank at scanline 0; run out the blank-line
	// counter so the machine sits at the top of the frame.
	g.Step(vblankCycles * 154)
	irq.reset()

	return g, irq, mem
}

// flatMemory is a plain 64KiB DMA source with settable contents.
type flatMemory struct {
	data [0x10000]uint8
}

func (m *flatMemory) ReadByte(addr uint16) uint8 {
	return m.data[addr]
}

// writeTilePattern fills all 8 rows of the tile at addr with the same two
// pattern-plane bytes.
func writeTilePattern(g *GPU, addr uint16, lo, hi uint8) {
	for row := uint16(0); row < 8; row++ {
		g.WriteByte(addr+row*2, lo)
		g.WriteByte(addr+row*2+1, hi)
	}
}
