// Package ebiten presents the GPU framebuffer through the Ebiten toolkit.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/adammendoza/GameLad/emu"
)

// Display converts the GPU's shade-index framebuffer to pixels and draws it
// scaled and centered into an Ebiten screen.
type Display struct {
	gpu *emu.GPU

	offscreen *ebiten.Image
	pixels    []byte                  // RGBA staging buffer, one frame
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewDisplay creates a display bound to the given GPU.
func NewDisplay(gpu *emu.GPU) *Display {
	return &Display{
		gpu:    gpu,
		pixels: make([]byte, emu.ScreenWidth*emu.ScreenHeight*4),
	}
}

// DrawToScreen renders the current framebuffer to the given screen, scaled
// to fit while preserving aspect ratio and centered in the window.
func (d *Display) DrawToScreen(screen *ebiten.Image) {
	if d.offscreen == nil {
		d.offscreen = ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight)
	}

	// Expand shade indices through the gray ramp into RGBA.
	fb := d.gpu.Framebuffer()
	for i, shade := range fb {
		gray := emu.ShadeTable[shade&0x03]
		d.pixels[i*4] = gray
		d.pixels[i*4+1] = gray
		d.pixels[i*4+2] = gray
		d.pixels[i*4+3] = 0xFF
	}
	d.offscreen.WritePixels(d.pixels)

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(emu.ScreenWidth)
	nativeH := float64(emu.ScreenHeight)

	scaleX := float64(screenW) / nativeW
	scaleY := float64(screenH) / nativeH
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	// Calculate offset to center the image
	scaledW := nativeW * scale
	scaledH := nativeH * scale
	offsetX := (float64(screenW) - scaledW) / 2
	offsetY := (float64(screenH) - scaledH) / 2

	// Draw scaled image centered in window using pre-allocated options
	d.drawOpts = ebiten.DrawImageOptions{}
	d.drawOpts.GeoM.Scale(scale, scale)
	d.drawOpts.GeoM.Translate(offsetX, offsetY)
	d.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(d.offscreen, &d.drawOpts)
}

// Layout implements the ebiten.Game layout contract.
func (d *Display) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in DrawToScreen
	return outsideWidth, outsideHeight
}
