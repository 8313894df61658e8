package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float value in [Min, Max] by dragging.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	Format   string // value format, "%.2f" when empty

	// OnChange runs after every drag that changed the value.
	OnChange func(v float64)
}

func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label: label,
		Value: clamp(value, min, max),
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     14,
	}
}

func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || !cursorIn(s.X, s.Y, s.W, s.H) {
		return
	}
	mx, _ := ebiten.CursorPosition()
	if v := s.valueAt(float64(mx)); v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
}

// valueAt maps a cursor abscissa on the track to a value.
func (s *Slider) valueAt(mx float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	return clamp(s.Min+(mx-s.X)/s.W*(s.Max-s.Min), s.Min, s.Max)
}

func (s *Slider) ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), colorTrack, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.ratio()), float32(s.H), colorBorder, true)

	format := s.Format
	if format == "" {
		format = "%.2f"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: "+format, s.Label, s.Value), int(s.X), int(s.Y-16))
}

func (s *Slider) Height() float64 {
	return s.H + 25 // label line above the track
}

func (s *Slider) MoveTo(x, y float64) {
	s.X, s.Y = x, y+16
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
