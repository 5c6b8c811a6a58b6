package ui

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
)

// TickerController drives the status line under the station list. Text that
// overflows the label scrolls as a marquee. SetText is safe from any goroutine.
type TickerController struct {
	lbl    *widget.Label
	parent fyne.CanvasObject // measures the visible width
	bind   binding.String

	mu     sync.Mutex
	cancel context.CancelFunc
	text   string

	step    time.Duration
	padding string
}

// NewTickerController binds lbl and shows initial.
func NewTickerController(lbl *widget.Label, parent fyne.CanvasObject, initial string) *TickerController {
	b := binding.NewString()
	lbl.Bind(b)
	_ = b.Set(initial)
	return &TickerController{
		lbl:     lbl,
		parent:  parent,
		bind:    b,
		text:    initial,
		step:    120 * time.Millisecond,
		padding: "   ",
	}
}

// Text returns the last text set, without scroll rotation.
func (tc *TickerController) Text() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.text
}

// Close stops any running marquee.
func (tc *TickerController) Close() {
	tc.mu.Lock()
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
	tc.mu.Unlock()
}

// SetText shows text, scrolling it when it does not fit.
func (tc *TickerController) SetText(text string) {
	tc.mu.Lock()
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
	tc.text = text
	tc.mu.Unlock()

	_ = tc.bind.Set(text)

	textW := measureLabelTextWidth(tc.lbl, text)
	if tc.parent == nil || !tickerNeedsScroll(textW, tc.parent.Size().Width) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	tc.mu.Lock()
	tc.cancel = cancel
	tc.mu.Unlock()
	go tc.scroll(ctx, text, textW)
}

func (tc *TickerController) scroll(ctx context.Context, text string, textW float32) {
	runes := []rune(tc.padding + text + tc.padding)
	t := time.NewTicker(tc.step)
	defer t.Stop()
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if !tickerNeedsScroll(textW, tc.parent.Size().Width) {
			_ = tc.bind.Set(text)
			return
		}
		offset = (offset + 1) % len(runes)
		_ = tc.bind.Set(string(runes[offset:]) + string(runes[:offset]))
	}
}

// measureLabelTextWidth estimates the width lbl would need for text.
func measureLabelTextWidth(lbl *widget.Label, text string) float32 {
	if lbl == nil {
		return 0
	}
	tmp := widget.NewLabel(text)
	tmp.Alignment = lbl.Alignment
	tmp.TextStyle = lbl.TextStyle
	tmp.Truncation = fyne.TextTruncateOff
	return tmp.MinSize().Width
}
