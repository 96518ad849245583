package gfx

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/config"
)

// Terminal draws into a tcell.Screen. The logical window is the configured
// width/height clipped to the terminal, or the whole terminal in fullscreen.
type Terminal struct {
	screen     tcell.Screen
	title      string
	width      int
	height     int
	fullscreen bool
	log        *zap.Logger
}

// NewTerminal initialises screen and applies the window configuration.
func NewTerminal(screen tcell.Screen, cfg config.WindowConfig, log *zap.Logger) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	t := &Terminal{
		screen:     screen,
		width:      cfg.Width,
		height:     cfg.Height,
		fullscreen: cfg.Fullscreen,
		log:        log,
	}
	if cfg.Mouse {
		screen.EnableMouse()
	}
	screen.SetStyle(tcell.StyleDefault)
	t.SetTitle(cfg.Title)
	screen.Clear()
	return t, nil
}

// Screen exposes the underlying screen for the input poller.
func (t *Terminal) Screen() tcell.Screen { return t.screen }

// Sync repaints the whole terminal; used after a resize.
func (t *Terminal) Sync() { t.screen.Sync() }

func (t *Terminal) BeginFrame() { t.screen.Clear() }
func (t *Terminal) EndFrame()   { t.screen.Show() }

func (t *Terminal) Size() (int, int) {
	sw, sh := t.screen.Size()
	if t.fullscreen {
		return sw, sh
	}
	w, h := sw, sh
	if t.width > 0 && t.width < sw {
		w = t.width
	}
	if t.height > 0 && t.height < sh {
		h = t.height
	}
	return w, h
}

func (t *Terminal) SetSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	t.width, t.height = w, h
}

func (t *Terminal) Title() string { return t.title }

func (t *Terminal) SetTitle(title string) {
	t.title = title
	t.screen.SetTitle(title)
}

func (t *Terminal) Fullscreen() bool { return t.fullscreen }

func (t *Terminal) SetFullscreen(on bool) {
	if on != t.fullscreen {
		t.log.Debug("window fullscreen changed", zap.Bool("fullscreen", on))
	}
	t.fullscreen = on
}

func (t *Terminal) Clear() { t.screen.Clear() }

// Text writes s starting at (x, y), advancing by display width and clipping to
// the window.
func (t *Terminal) Text(x, y int, s string, color string) {
	w, h := t.Size()
	if y < 0 || y >= h {
		return
	}
	style := styleFor(color)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= w {
			return
		}
		if x >= 0 {
			t.screen.SetContent(x, y, r, nil, style)
		}
		x += rw
	}
}

// Fill paints a w×h rectangle with ch.
func (t *Terminal) Fill(x, y, w, h int, ch rune, color string) {
	sw, sh := t.Size()
	style := styleFor(color)
	for row := max(y, 0); row < min(y+h, sh); row++ {
		for col := max(x, 0); col < min(x+w, sw); col++ {
			t.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

func (t *Terminal) Close() { t.screen.Fini() }

// styleFor maps a colour name or #rrggbb to a foreground style.
func styleFor(color string) tcell.Style {
	if color == "" {
		return tcell.StyleDefault
	}
	c := tcell.GetColor(color)
	if c == tcell.ColorDefault {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(c)
}
