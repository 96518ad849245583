package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRegistry(t *testing.T, cfg RegistryConfig) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewRegistry(cfg, zap.New(core)), logs
}

func collect(r *Registry) []Handle {
	var out []Handle
	r.Each(func(h Handle, _ Object) bool {
		out = append(out, h)
		return true
	})
	return out
}

func TestHandle_Encoding(t *testing.T) {
	h := NewHandle(7, 3)
	assert.Equal(t, uint32(7), h.Index())
	assert.Equal(t, uint32(3), h.Generation())
	assert.False(t, h.IsZero())
	assert.True(t, Handle(0).IsZero())
}

func TestRegistry_CreateAppendsInOrder(t *testing.T) {
	r, logs := newTestRegistry(t, RegistryConfig{})
	var want []Handle
	for i := 0; i < 5; i++ {
		h, err := r.Create(3, nil)
		require.NoError(t, err)
		want = append(want, h)
	}
	assert.Equal(t, want, collect(r))
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 5, r.LayerLen(3))
	assert.Zero(t, logs.Len())
	require.NoError(t, r.Verify())
}

func TestRegistry_ClampedLayer(t *testing.T) {
	for _, tc := range []struct {
		name      string
		requested int
		want      int
	}{
		{"above range", 17, 15},
		{"far above", 1000, 15},
		{"negative", -4, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, logs := newTestRegistry(t, RegistryConfig{})
			h, err := r.Create(tc.requested, nil)
			require.NoError(t, err)

			got, ok := r.Layer(h)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warns, 1)
			assert.Equal(t, "entity layer out of range, clamped", warns[0].Message)
			assert.Empty(t, logs.FilterLevelExact(zapcore.ErrorLevel).All())
		})
	}
}

func TestRegistry_ConfiguredLayerCount(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{Layers: 4})
	assert.Equal(t, 4, r.Layers())
	h, err := r.Create(9, nil)
	require.NoError(t, err)
	l, _ := r.Layer(h)
	assert.Equal(t, 3, l)
}

func TestRegistry_DestroyIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{})
	a, _ := r.Create(0, nil)
	b, _ := r.Create(0, nil)

	r.Destroy(a)
	r.Destroy(a)
	r.Destroy(Handle(0))
	r.Destroy(NewHandle(999, 1))

	assert.False(t, r.Alive(a))
	assert.True(t, r.Alive(b))
	assert.Equal(t, []Handle{b}, collect(r))
	require.NoError(t, r.Verify())
}

func TestRegistry_DestroyPositions(t *testing.T) {
	for _, tc := range []struct {
		name   string
		remove []int
		keep   []int
	}{
		{"sole", []int{0}, nil},
		{"first", []int{0}, []int{1, 2}},
		{"last", []int{2}, []int{0, 1}},
		{"middle", []int{1}, []int{0, 2}},
		{"all in order", []int{0, 1, 2}, nil},
		{"all reversed", []int{2, 1, 0}, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRegistry(t, RegistryConfig{})
			count := 3
			if tc.name == "sole" {
				count = 1
			}
			hs := make([]Handle, count)
			for i := range hs {
				hs[i], _ = r.Create(1, nil)
			}
			for _, i := range tc.remove {
				r.Destroy(hs[i])
			}
			var want []Handle
			for _, i := range tc.keep {
				want = append(want, hs[i])
			}
			assert.Equal(t, want, collect(r))
			assert.Equal(t, len(tc.keep), r.LayerLen(1))
			require.NoError(t, r.Verify())
		})
	}
}

func TestRegistry_StaleHandleAfterReuse(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{})
	a, _ := r.Create(0, "a")
	r.Destroy(a)
	b, _ := r.Create(0, "b")

	assert.Equal(t, a.Index(), b.Index(), "slot should be reused")
	assert.NotEqual(t, a, b)
	assert.False(t, r.Alive(a))

	r.Destroy(a)
	assert.True(t, r.Alive(b))
	obj, ok := r.Object(b)
	require.True(t, ok)
	assert.Equal(t, "b", obj)
}

func TestRegistry_OutOfMemory(t *testing.T) {
	r, logs := newTestRegistry(t, RegistryConfig{MaxObjects: 2})
	_, err := r.Create(0, nil)
	require.NoError(t, err)
	_, err = r.Create(1, nil)
	require.NoError(t, err)

	before := collect(r)
	h, err := r.Create(0, nil)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, h.IsZero())
	assert.Equal(t, before, collect(r))
	assert.Equal(t, 2, r.Len())
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
	require.NoError(t, r.Verify())
}

func TestRegistry_ActiveFlag(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{})
	h, _ := r.Create(0, nil)
	assert.True(t, r.Active(h))
	assert.True(t, r.SetActive(h, false))
	assert.False(t, r.Active(h))
	r.Destroy(h)
	assert.False(t, r.SetActive(h, true))
	assert.False(t, r.Active(h))
}

func TestRegistry_DestroyAll(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{})
	for i := 0; i < 10; i++ {
		_, err := r.Create(i%4, nil)
		require.NoError(t, err)
	}
	r.DestroyAll()
	assert.Zero(t, r.Len())
	assert.Empty(t, collect(r))
	require.NoError(t, r.Verify())
}

func TestRegistry_VerifyDetectsCorruption(t *testing.T) {
	r, _ := newTestRegistry(t, RegistryConfig{})
	a, _ := r.Create(0, nil)
	r.Create(0, nil)
	r.slots[a.Index()].next = a.Index()
	assert.ErrorIs(t, r.Verify(), ErrCorrupt)
	assert.ErrorIs(t, r.Dispatch(EventUpdate), ErrCorrupt)
}
