//go:build !tinygo && cgo

package hal

import (
	"image"
	"time"

	"kiosk/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const windowScale = 4

// RunWindow starts a desktop window that shows the framebuffer and emulates
// the encoder: arrow keys or the mouse wheel rotate, Space or Enter press.
// It blocks until the window closes.
func RunWindow(opts HostOptions, newApp func(HAL) func() error) error {
	h := newHostHAL(opts)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("Days Tracker (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*windowScale, h.fb.height*windowScale)
	ebiten.SetTPS(250)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	img   *image.RGBA
	fbImg *ebiten.Image
	raw   []byte
	step  func() error

	wheel float64
}

func (g *hostGame) Update() error {
	g.pollInput()
	g.h.enc.Advance()
	g.h.t.follow(time.Now())
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) pollInput() {
	enc := g.h.enc
	for _, k := range []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyArrowDown} {
		if inpututil.IsKeyJustPressed(k) {
			enc.Rotate(1)
		}
	}
	for _, k := range []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyArrowUp} {
		if inpututil.IsKeyJustPressed(k) {
			enc.Rotate(-1)
		}
	}

	// Trackpads report fractional wheel deltas; accumulate to whole detents.
	_, dy := ebiten.Wheel()
	g.wheel += dy
	for g.wheel >= 1 {
		enc.Rotate(-1)
		g.wheel--
	}
	for g.wheel <= -1 {
		enc.Rotate(1)
		g.wheel++
	}

	pressed := ebiten.IsKeyPressed(ebiten.KeySpace) ||
		ebiten.IsKeyPressed(ebiten.KeyEnter) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	enc.SetButton(pressed)
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.raw = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	// A dark backlight hides the panel contents.
	if !g.h.enc.BacklightOn() {
		clear(g.img.Pix)
		for i := 3; i < len(g.img.Pix); i += 4 {
			g.img.Pix[i] = 0xFF
		}
	} else {
		fb.snapshotRGB565(g.raw)
		src, dst := g.raw, g.img.Pix
		for i := 0; i+1 < len(src) && i*2+3 < len(dst); i += 2 {
			r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := i * 2
			dst[j+0] = r
			dst[j+1] = gg
			dst[j+2] = b
			dst[j+3] = 0xFF
		}
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
