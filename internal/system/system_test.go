package system

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flandre-go/flandre/internal/core/ecs"
	"github.com/flandre-go/flandre/internal/core/event"
	coresys "github.com/flandre-go/flandre/internal/core/system"
	"github.com/flandre-go/flandre/internal/input"
	"github.com/flandre-go/flandre/internal/persist"
)

type sliceQueue []tcell.Event

func (q *sliceQueue) Drain(fn func(tcell.Event)) int {
	n := len(*q)
	for _, ev := range *q {
		fn(ev)
	}
	*q = nil
	return n
}

type fakeScripts struct {
	trace   *[]string
	drawErr error
}

func (f *fakeScripts) Update() error { *f.trace = append(*f.trace, "update"); return nil }
func (f *fakeScripts) Draw() error   { *f.trace = append(*f.trace, "draw"); return f.drawErr }

// frameBackend records frame brackets; the rest of gfx.Backend is inert.
type frameBackend struct {
	trace *[]string
}

func (b *frameBackend) BeginFrame()                         { *b.trace = append(*b.trace, "begin") }
func (b *frameBackend) EndFrame()                           { *b.trace = append(*b.trace, "end") }
func (b *frameBackend) Size() (int, int)                    { return 80, 24 }
func (b *frameBackend) SetSize(int, int)                    {}
func (b *frameBackend) Title() string                       { return "" }
func (b *frameBackend) SetTitle(string)                     {}
func (b *frameBackend) Fullscreen() bool                    { return false }
func (b *frameBackend) SetFullscreen(bool)                  {}
func (b *frameBackend) Clear()                              {}
func (b *frameBackend) Text(int, int, string, string)       {}
func (b *frameBackend) Fill(int, int, int, int, rune, string) {}
func (b *frameBackend) Close()                              {}

type recorder struct{ rows []persist.FailureRow }

func (r *recorder) Record(row persist.FailureRow) bool {
	r.rows = append(r.rows, row)
	return true
}

func TestFrame_PhaseOrder(t *testing.T) {
	var trace []string
	scripts := &fakeScripts{trace: &trace}
	now := time.Unix(50, 0)
	clock := func() time.Time { return now }
	state := input.NewState(100 * time.Millisecond)
	bus := event.NewBus()

	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(state, clock))
	r.Register(NewDrawSystem(scripts, &frameBackend{trace: &trace}))
	r.Register(NewUpdateSystem(scripts))
	r.Register(NewEventSystem(bus, zap.NewNop()))
	r.Register(NewInputSystem(&sliceQueue{}, state, bus, clock, zap.NewNop()))

	require.NoError(t, r.Tick(16*time.Millisecond))
	assert.Equal(t, []string{"update", "begin", "draw", "end"}, trace)
}

func TestDrawSystem_EndsFrameOnError(t *testing.T) {
	var trace []string
	boom := errors.New("corrupt")
	s := NewDrawSystem(&fakeScripts{trace: &trace, drawErr: boom}, &frameBackend{trace: &trace})
	assert.ErrorIs(t, s.Update(0), boom)
	assert.Equal(t, []string{"begin", "draw", "end"}, trace)
}

func TestInputSystem_AppliesAndReportsResize(t *testing.T) {
	now := time.Unix(50, 0)
	clock := func() time.Time { return now }
	state := input.NewState(100 * time.Millisecond)
	bus := event.NewBus()
	var resized []event.WindowResized
	event.Subscribe(bus, func(ev event.WindowResized) { resized = append(resized, ev) })
	synced := 0
	TrackResize(bus, func() { synced++ })

	q := &sliceQueue{
		tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone),
		tcell.NewEventResize(100, 30),
	}
	in := NewInputSystem(q, state, bus, clock, zap.NewNop())
	require.NoError(t, in.Update(0))
	assert.True(t, state.KeyDown("a", now))

	require.NoError(t, NewEventSystem(bus, zap.NewNop()).Update(0))
	assert.Equal(t, []event.WindowResized{{Width: 100, Height: 30}}, resized)
	assert.Equal(t, 1, synced)

	// Cleanup drops the press once the hold window passes.
	now = now.Add(time.Second)
	require.NoError(t, NewCleanupSystem(state, clock).Update(0))
	assert.False(t, state.KeyDown("a", now.Add(-time.Second)))
}

func TestRecordFailures(t *testing.T) {
	bus := event.NewBus()
	rec := &recorder{}
	at := time.Unix(99, 0)
	RecordFailures(bus, rec, func() time.Time { return at }, zap.NewNop())

	h := ecs.NewHandle(1, 1)
	event.Emit(bus, event.EntitySuspended{
		Failure:    ecs.Failure{Handle: h, Layer: 2, Event: ecs.EventUpdate, Err: errors.New("boom")},
		ScriptHash: "feed",
	})
	assert.Empty(t, rec.rows, "delivered on the next frame")

	require.NoError(t, NewEventSystem(bus, zap.NewNop()).Update(0))
	require.Len(t, rec.rows, 1)
	assert.Equal(t, uint64(h), rec.rows[0].Entity)
	assert.Equal(t, "update", rec.rows[0].Event)
	assert.Equal(t, "boom", rec.rows[0].Message)
	assert.Equal(t, at, rec.rows[0].FailedAt)
}

func TestEventSystem_DeliversPendingOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bus := event.NewBus()
	s := NewEventSystem(bus, zap.New(core))
	var got []event.WindowResized
	event.Subscribe(bus, func(ev event.WindowResized) { got = append(got, ev) })

	require.NoError(t, s.Update(0))
	assert.Zero(t, logs.Len(), "idle frame stays quiet")

	event.Emit(bus, event.WindowResized{Width: 1, Height: 1})
	event.Emit(bus, event.WindowResized{Width: 2, Height: 2})
	require.NoError(t, s.Update(0))
	assert.Len(t, got, 2)

	entries := logs.FilterMessage("frame events delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["events"])

	require.NoError(t, s.Update(0))
	assert.Len(t, got, 2, "events are delivered once")
}
