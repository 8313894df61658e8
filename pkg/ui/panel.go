package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelTitleHeight   = 30.0
	panelSectionHeight = 25.0
	panelMargin        = 10.0
)

// Panel stacks widgets under section headers in a scrollable column.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64
	Hidden        bool

	rows []panelRow
}

// a row is either a section header or a widget
type panelRow struct {
	section string
	widget  Widget
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{Title: title, X: x, Y: y, Width: width, Height: height}
}

func (p *Panel) AddSection(title string) {
	p.rows = append(p.rows, panelRow{section: title})
}

func (p *Panel) AddSlider(label string, min, max, value float64, onChange func(float64)) *Slider {
	s := NewSlider(0, 0, p.Width-2*panelMargin, label, min, max, value)
	s.OnChange = onChange
	p.Add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool, onChange func(bool)) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	c.OnChange = onChange
	p.Add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*panelMargin, label, onClick)
	p.Add(b)
	return b
}

// Add appends any widget and lays the panel out again.
func (p *Panel) Add(w Widget) {
	p.rows = append(p.rows, panelRow{widget: w})
	p.layout()
}

// layout places every widget at its scrolled position.
func (p *Panel) layout() {
	y := p.Y + panelTitleHeight - p.ScrollOffset
	for _, r := range p.rows {
		if r.widget == nil {
			y += panelSectionHeight
			continue
		}
		r.widget.MoveTo(p.X+panelMargin, y)
		y += r.widget.Height()
	}
}

func (p *Panel) contentHeight() float64 {
	h := panelTitleHeight
	for _, r := range p.rows {
		if r.widget == nil {
			h += panelSectionHeight
		} else {
			h += r.widget.Height()
		}
	}
	return h
}

func (p *Panel) scroll(dy float64) {
	maxScroll := max(p.contentHeight()-p.Height+panelMargin, 0)
	p.ScrollOffset = clamp(p.ScrollOffset-dy*20, 0, maxScroll)
	p.layout()
}

// visible reports whether a row starting at y is at least partly inside the panel.
func (p *Panel) visible(y, h float64) bool {
	return y+h > p.Y+panelTitleHeight && y < p.Y+p.Height
}

func (p *Panel) Update() {
	if p.Hidden {
		return
	}
	if cursorIn(p.X, p.Y, p.Width, p.Height) {
		if _, dy := ebiten.Wheel(); dy != 0 {
			p.scroll(dy)
		}
	}
	for _, r := range p.rows {
		if r.widget != nil {
			r.widget.Update()
		}
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), colorPanelBG, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 2, colorPanelBox, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+panelMargin), int(p.Y+5))

	y := p.Y + panelTitleHeight - p.ScrollOffset
	for _, r := range p.rows {
		if r.widget == nil {
			if p.visible(y, panelSectionHeight) {
				vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.Width-10), 20, colorSection, true)
				ebitenutil.DebugPrintAt(screen, r.section, int(p.X+panelMargin), int(y+2))
			}
			y += panelSectionHeight
			continue
		}
		if p.visible(y, r.widget.Height()) {
			r.widget.Draw(screen)
		}
		y += r.widget.Height()
	}
}

// Contains reports whether the point is over the visible panel, so clicks there
// are not also handled by the scene behind it.
func (p *Panel) Contains(x, y float64) bool {
	return !p.Hidden && inRect(x, y, p.X, p.Y, p.Width, p.Height)
}
