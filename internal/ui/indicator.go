package ui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
)

var indicatorIdle = color.NRGBA{0x80, 0x80, 0x80, 0xFF}

// StreamIndicator is a small circle that pulses through green hues while a
// stream is playing and stays gray otherwise.
type StreamIndicator struct {
	wrap   *fyne.Container
	circle *canvas.Circle

	mu   sync.Mutex
	stop chan struct{}
}

// NewStreamIndicator builds an idle indicator of the given diameter.
func NewStreamIndicator(diameter float32) *StreamIndicator {
	c := canvas.NewCircle(indicatorIdle)
	inner := container.New(layout.NewGridWrapLayout(fyne.NewSize(diameter, diameter)), c)
	return &StreamIndicator{wrap: container.NewCenter(inner), circle: c}
}

// CanvasObject returns the object to embed in layouts.
func (s *StreamIndicator) CanvasObject() fyne.CanvasObject { return s.wrap }

// Active reports whether the pulse animation runs.
func (s *StreamIndicator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// SetActive starts or stops the pulse.
func (s *StreamIndicator) SetActive(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		if s.stop == nil {
			s.stop = make(chan struct{})
			go s.animate(s.stop)
		}
		return
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	CallOnMain(func() {
		s.circle.FillColor = indicatorIdle
		s.circle.Refresh()
	})
}

func (s *StreamIndicator) animate(stop <-chan struct{}) {
	t := time.NewTicker(90 * time.Millisecond)
	defer t.Stop()
	hue := 90.0
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		// cycle through the green part of the wheel
		hue += 4
		if hue >= 170 {
			hue = 90
		}
		col := hsvToNRGBA(hue, 0.65, 0.95)
		CallOnMain(func() {
			s.circle.FillColor = col
			s.circle.Refresh()
		})
	}
}

// hsvToNRGBA converts HSV (0..360, 0..1, 0..1) to color.NRGBA.
func hsvToNRGBA(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60.0, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8((r+m)*255 + 0.5),
		G: uint8((g+m)*255 + 0.5),
		B: uint8((b+m)*255 + 0.5),
		A: 0xFF,
	}
}
