package input

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Source is the part of tcell.Screen the poller reads from.
type Source interface {
	PollEvent() tcell.Event
}

// Poller moves events off the blocking PollEvent call onto a buffered channel
// the frame loop drains without blocking.
type Poller struct {
	events chan tcell.Event
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func NewPoller(src Source, queueSize int) *Poller {
	if queueSize <= 0 {
		queueSize = 128
	}
	p := &Poller{
		events: make(chan tcell.Event, queueSize),
		done:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.loop(src)
	return p
}

func (p *Poller) loop(src Source) {
	defer p.wg.Done()
	for {
		ev := src.PollEvent()
		if ev == nil {
			return // screen finalised
		}
		select {
		case p.events <- ev:
		case <-p.done:
			return
		}
	}
}

// Drain hands every queued event to fn and returns how many were handled.
func (p *Poller) Drain(fn func(tcell.Event)) int {
	n := 0
	for {
		select {
		case ev := <-p.events:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Stop ends the poll loop. The source must be finalised (or produce a nil
// event) for a blocked PollEvent to return.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
