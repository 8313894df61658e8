package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per click.
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	OnClick func()
}

func NewButton(x, y, width float64, label string, onClick func()) *Button {
	return &Button{
		Label:   label,
		X:       x,
		Y:       y,
		W:       width,
		H:       22,
		OnClick: onClick,
	}
}

func (b *Button) Update() {
	if b.OnClick != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && cursorIn(b.X, b.Y, b.W, b.H) {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := colorButton
	if cursorIn(b.X, b.Y, b.W, b.H) {
		bg = colorHover
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, colorBorder, true)

	// DebugPrint glyphs are 6x16
	textX := b.X + (b.W-float64(6*len(b.Label)))/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(textX), int(b.Y+3))
}

func (b *Button) Height() float64 {
	return b.H + 8
}

func (b *Button) MoveTo(x, y float64) {
	b.X, b.Y = x, y
}
