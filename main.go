package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	ebitenbridge "github.com/adammendoza/GameLad/bridge/ebiten"
	"github.com/adammendoza/GameLad/emu"
)

// systemRAM is a flat 64KiB memory image standing in for the console's
// system bus. The GPU only reads it during OAM DMA transfers.
type systemRAM struct {
	data [0x10000]uint8
}

func (m *systemRAM) ReadByte(addr uint16) uint8 {
	return m.data[addr]
}

// interruptStub swallows the interrupt lines; the demo has no processor to
// deliver them to.
type interruptStub struct{}

func (interruptStub) RequestVBlank()  {}
func (interruptStub) RequestLCDStat() {}

// shadowOAM is the page in system RAM the demo keeps its sprite table in,
// copied to the GPU by DMA once per frame.
const shadowOAM = 0xC000

// demo drives the GPU through a frame per display tick and animates a small
// test scene.
type demo struct {
	gpu     *emu.GPU
	ram     *systemRAM
	display *ebitenbridge.Display

	behindBG bool
	frame    int
}

func newDemo(logger *log.Logger, behindBG bool) *demo {
	ram := &systemRAM{}
	gpu := emu.NewGPU(ram, interruptStub{})
	gpu.SetLogger(logger)

	d := &demo{
		gpu:      gpu,
		ram:      ram,
		display:  ebitenbridge.NewDisplay(gpu),
		behindBG: behindBG,
	}
	d.buildScene()

	// Refresh the sprite table at the top of every VBlank, the way a game
	// would from its frame interrupt handler.
	gpu.SetVSyncCallback(d.animate)

	return d
}

// buildScene loads tiles, the background map, palettes and the initial
// sprite table. The display is still off at this point, so the whole bus
// is open.
func (d *demo) buildScene() {
	g := d.gpu

	// Tile 0: blank. Tile 1: checker pattern, colors 0 and 1.
	for row := uint16(0); row < 8; row++ {
		pattern := uint8(0xAA)
		if row%2 == 1 {
			pattern = 0x55
		}
		g.WriteByte(0x8010+row*2, pattern)
	}

	// Tile 2: solid border frame at color 2.
	for row := uint16(0); row < 8; row++ {
		var lo, hi uint8
		if row == 0 || row == 7 {
			hi = 0xFF
		} else {
			hi = 0x81
		}
		g.WriteByte(0x8020+row*2, lo)
		g.WriteByte(0x8020+row*2+1, hi)
	}

	// Tile 3: solid color 3, used by the sprites.
	for row := uint16(0); row < 8; row++ {
		g.WriteByte(0x8030+row*2, 0xFF)
		g.WriteByte(0x8030+row*2+1, 0xFF)
	}

	// Background map: checker field with a frame tile every fourth cell.
	for ty := uint16(0); ty < 32; ty++ {
		for tx := uint16(0); tx < 32; tx++ {
			tile := uint8(1)
			if (tx+ty)%4 == 0 {
				tile = 2
			}
			g.WriteByte(0x9800+ty*32+tx, tile)
		}
	}

	g.WriteByte(emu.AddrBGPalette, 0xE4)
	g.WriteByte(emu.AddrObjectPalette0, 0xE4)
	g.WriteByte(emu.AddrObjectPalette1, 0x1B)

	// Four sprites in the shadow table; positions are set by animate.
	for i := 0; i < 4; i++ {
		base := shadowOAM + i*4
		d.ram.data[base+2] = 3
		var flags uint8
		if i%2 == 1 {
			flags |= 0x10 // second palette
		}
		if d.behindBG {
			flags |= 0x80 // only visible through shade-0 background
		}
		d.ram.data[base+3] = flags
	}
	d.animate()

	// Display, sprites and background on.
	g.WriteByte(emu.AddrLCDControl, 0x93)
}

// animate moves the sprites along simple orbits and pushes the shadow table
// into OAM.
func (d *demo) animate() {
	d.frame++

	for i := 0; i < 4; i++ {
		base := shadowOAM + i*4
		phase := d.frame + i*40
		x := phase % (emu.ScreenWidth + 8)
		y := 40 + i*20

		d.ram.data[base] = uint8(y + 16)
		d.ram.data[base+1] = uint8(x)
	}

	d.gpu.WriteByte(emu.AddrDMATransfer, shadowOAM>>8)
}

func (d *demo) Update() error {
	// A real system steps the GPU with each instruction's cycle count;
	// four cycles is the shortest instruction, so use that as the grain.
	for cycles := 0; cycles < emu.CyclesPerFrame; cycles += 4 {
		d.gpu.Step(4)
	}

	// Drift the background underneath the sprites.
	if d.frame%2 == 0 {
		d.gpu.WriteByte(emu.AddrScrollX, uint8(d.frame/2))
	}
	return nil
}

func (d *demo) Draw(screen *ebiten.Image) {
	d.display.DrawToScreen(screen)
}

func (d *demo) Layout(outsideWidth, outsideHeight int) (int, int) {
	return d.display.Layout(outsideWidth, outsideHeight)
}

func main() {
	scale := flag.Int("scale", 3, "initial window scale factor")
	behindBG := flag.Bool("behind-bg", false, "give the demo sprites behind-background priority")
	verbose := flag.Bool("verbose", false, "log bus diagnostics to stderr")
	flag.Parse()

	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "gameland: ", log.LstdFlags)
	}

	d := newDemo(logger, *behindBG)

	ebiten.SetWindowSize(emu.ScreenWidth*(*scale), emu.ScreenHeight*(*scale))
	ebiten.SetWindowTitle("GameLad")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(d); err != nil {
		log.Fatal(err)
	}
}
