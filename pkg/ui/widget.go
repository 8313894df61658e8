// Package ui holds the small ebiten widget set used by the flock viewer:
// sliders, checkboxes and buttons stacked in a scrollable panel.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Widget is anything the Panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64 // vertical space taken in the panel, margins included
	MoveTo(x, y float64)
}

var (
	colorBorder   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorTrack    = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	colorFill     = color.RGBA{R: 100, G: 200, B: 100, A: 255}
	colorSection  = color.RGBA{R: 60, G: 60, B: 70, A: 255}
	colorButton   = color.RGBA{R: 80, G: 120, B: 180, A: 255}
	colorHover    = color.RGBA{R: 100, G: 150, B: 220, A: 255}
	colorPanelBG  = color.RGBA{R: 40, G: 40, B: 45, A: 230}
	colorPanelBox = color.RGBA{R: 100, G: 100, B: 110, A: 255}
)

// cursorIn reports whether the mouse cursor is inside the rectangle.
func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return inRect(float64(mx), float64(my), x, y, w, h)
}

func inRect(px, py, x, y, w, h float64) bool {
	return px >= x && px <= x+w && py >= y && py <= y+h
}
