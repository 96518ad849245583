package gfx

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flandre-go/flandre/internal/config"
)

func newSimTerminal(t *testing.T, cfg config.WindowConfig) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTerminal(sim, cfg, zap.NewNop())
	require.NoError(t, err)
	sim.SetSize(20, 6)
	t.Cleanup(term.Close)
	return term, sim
}

func cellAt(sim tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := sim.GetContent(x, y)
	return r
}

func TestTerminal_Title(t *testing.T) {
	term, _ := newSimTerminal(t, config.WindowConfig{Title: "demo"})
	assert.Equal(t, "demo", term.Title())
	term.SetTitle("other")
	assert.Equal(t, "other", term.Title())
}

func TestTerminal_SizeClipping(t *testing.T) {
	term, _ := newSimTerminal(t, config.WindowConfig{Width: 10, Height: 40})
	w, h := term.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 6, h, "height is clipped to the terminal")

	term.SetFullscreen(true)
	w, h = term.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 6, h)
	assert.True(t, term.Fullscreen())

	term.SetFullscreen(false)
	term.SetSize(0, 3)
	w, h = term.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 3, h)
}

func TestTerminal_TextClipsToWindow(t *testing.T) {
	term, sim := newSimTerminal(t, config.WindowConfig{Width: 5})
	term.BeginFrame()
	term.Text(2, 1, "hello", "red")
	term.Text(0, 9, "off screen", "")
	term.EndFrame()

	assert.Equal(t, 'h', cellAt(sim, 2, 1))
	assert.Equal(t, 'l', cellAt(sim, 4, 1))
	assert.NotEqual(t, 'l', cellAt(sim, 5, 1), "text must stop at the window edge")
}

func TestTerminal_Fill(t *testing.T) {
	term, sim := newSimTerminal(t, config.WindowConfig{})
	term.BeginFrame()
	term.Fill(-1, -1, 3, 3, '#', "#00ff00")
	term.EndFrame()

	assert.Equal(t, '#', cellAt(sim, 0, 0))
	assert.Equal(t, '#', cellAt(sim, 1, 1))
	assert.NotEqual(t, '#', cellAt(sim, 2, 2))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, tcell.StyleDefault, styleFor(""))
	assert.Equal(t, tcell.StyleDefault, styleFor("not-a-colour"))
	assert.Equal(t, tcell.StyleDefault.Foreground(tcell.ColorRed), styleFor("red"))
}
