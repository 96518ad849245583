// Package gfx is the render backend the frame loop draws through. Scripts reach
// it via flandre.graphics and flandre.system.window; the entity core never does.
package gfx

// Backend is a character-cell surface with per-frame begin/end hooks.
type Backend interface {
	BeginFrame()
	EndFrame()

	Size() (w, h int)
	SetSize(w, h int)
	Title() string
	SetTitle(title string)
	Fullscreen() bool
	SetFullscreen(on bool)

	Clear()
	Text(x, y int, s string, color string)
	Fill(x, y, w, h int, ch rune, color string)

	Close()
}
