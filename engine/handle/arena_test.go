package handle

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/brics-go/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGetWith(t *testing.T) {
	device := gputest.NewDevice()
	arena := NewArena[Shape]()

	a, err := NewShapeLayout(1).CreateHandle(device)
	require.NoError(t, err)
	b, err := NewShapeLayout(2).CreateHandle(device)
	require.NoError(t, err)

	ia := arena.Insert(a)
	ib := arena.Insert(b)
	assert.Equal(t, 2, arena.Len())
	assert.False(t, ia.IsZero())

	got, err := arena.Get(ib)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count())

	err = arena.With(ia, func(s Shape) error {
		s.Translate(mgl32.Vec3{1, 0, 0})
		return nil
	})
	require.NoError(t, err)
	inst, err := a.Instance(0)
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, inst.Position())

	boom := errors.New("boom")
	assert.ErrorIs(t, arena.With(ia, func(Shape) error { return boom }), boom)
}

func TestArenaStaleAndForeignIndices(t *testing.T) {
	device := gputest.NewDevice()
	arena := NewArena[Shape]()
	other := NewArena[Shape]()

	s, err := NewShapeLayout(1).CreateHandle(device)
	require.NoError(t, err)
	idx := arena.Insert(s)

	_, err = other.Get(idx)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	var zero Index[Shape]
	_, err = arena.Get(zero)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	removed, err := arena.Remove(idx)
	require.NoError(t, err)
	assert.Same(t, s, removed)
	assert.Equal(t, 0, arena.Len())

	_, err = arena.Get(idx)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	// The slot is reused with a new generation; the old index stays invalid.
	reused := arena.Insert(s)
	assert.NotEqual(t, idx, reused)
	assert.ErrorIs(t, arena.With(idx, func(Shape) error { return nil }), ErrInvalidIndex)
	_, err = arena.Get(reused)
	assert.NoError(t, err)
}

func TestArenaUpdateAllAndEach(t *testing.T) {
	device := gputest.NewDevice()
	queue := gputest.NewQueue()
	arena := NewArena[Handle]()

	cam, err := NewCameraLayout().CreateHandle(device)
	require.NoError(t, err)
	light, err := NewLightLayout().CreateHandle(device)
	require.NoError(t, err)
	arena.Insert(cam)
	arena.Insert(light)

	require.NoError(t, arena.UpdateAll(queue))
	require.Len(t, queue.Writes, 2)
	assert.Len(t, queue.Writes[0].Data, 80)
	assert.Len(t, queue.Writes[1].Data, 32)

	var seen int
	arena.Each(func(Index[Handle], Handle) { seen++ })
	assert.Equal(t, 2, seen)

	queue.Err = errors.New("lost")
	assert.ErrorIs(t, arena.UpdateAll(queue), queue.Err)
}
