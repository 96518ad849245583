// Package input turns terminal events into the keyboard and mouse state that
// scripts query through flandre.keyboard and flandre.mouse.
package input

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Mouse buttons as reported to scripts.
type Buttons struct {
	Left, Right, Middle bool
}

// State accumulates input between frames. Terminals report no key-up events,
// so a key counts as down for hold after its most recent press.
type State struct {
	hold    time.Duration
	pressed map[string]time.Time

	mouseX, mouseY int
	buttons        Buttons
	wheel          float64

	width, height int
	resized       bool
	quit          bool
}

func NewState(hold time.Duration) *State {
	return &State{
		hold:    hold,
		pressed: make(map[string]time.Time, 32),
	}
}

// Apply folds one terminal event into the state.
func (s *State) Apply(ev tcell.Event, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			s.quit = true
		}
		if name := KeyName(ev); name != "" {
			s.pressed[name] = now
		}
	case *tcell.EventMouse:
		s.mouseX, s.mouseY = ev.Position()
		b := ev.Buttons()
		s.buttons = Buttons{
			Left:   b&tcell.Button1 != 0,
			Right:  b&tcell.Button2 != 0,
			Middle: b&tcell.Button3 != 0,
		}
		if b&tcell.WheelUp != 0 {
			s.wheel++
		}
		if b&tcell.WheelDown != 0 {
			s.wheel--
		}
	case *tcell.EventResize:
		s.width, s.height = ev.Size()
		s.resized = true
	}
}

// KeyName returns the lower-case name scripts use for ev: the character for
// printable keys ("a", "1", "space") and the tcell key name otherwise
// ("up", "enter", "esc", "ctrl+c").
func KeyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return "space"
		}
		return strings.ToLower(string(r))
	}
	if name, ok := tcell.KeyNames[ev.Key()]; ok {
		return strings.ToLower(name)
	}
	return ""
}

// KeyDown reports whether name was pressed within the hold window.
func (s *State) KeyDown(name string, now time.Time) bool {
	at, ok := s.pressed[strings.ToLower(name)]
	return ok && now.Sub(at) <= s.hold
}

// Expire forgets presses older than the hold window.
func (s *State) Expire(now time.Time) {
	for k, at := range s.pressed {
		if now.Sub(at) > s.hold {
			delete(s.pressed, k)
		}
	}
}

func (s *State) MousePosition() (x, y int) { return s.mouseX, s.mouseY }
func (s *State) MouseButtons() Buttons      { return s.buttons }

// Wheel returns the accumulated wheel movement, clearing it when reset is set.
func (s *State) Wheel(reset bool) float64 {
	w := s.wheel
	if reset {
		s.wheel = 0
	}
	return w
}

// TakeResize returns a pending terminal size change, if any.
func (s *State) TakeResize() (w, h int, ok bool) {
	if !s.resized {
		return 0, 0, false
	}
	s.resized = false
	return s.width, s.height, true
}

// QuitRequested reports whether the user pressed Ctrl-C.
func (s *State) QuitRequested() bool { return s.quit }
