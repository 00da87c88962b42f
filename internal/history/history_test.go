package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(v byte) []byte { return []byte{v, v, v, v} }

func TestPushUndoRedo(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultLimit, s.Limit())
	_, ok := s.Undo()
	assert.False(t, ok)

	s.Push(snap(0))
	s.Push(snap(1))
	s.Push(snap(2))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Index())
	assert.False(t, s.CanRedo())

	got, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, snap(1), got)
	got, ok = s.Undo()
	require.True(t, ok)
	assert.Equal(t, snap(0), got)
	_, ok = s.Undo()
	assert.False(t, ok, "cursor stays on the first entry")

	got, ok = s.Redo()
	require.True(t, ok)
	assert.Equal(t, snap(1), got)
	got, ok = s.Redo()
	require.True(t, ok)
	assert.Equal(t, snap(2), got)
	_, ok = s.Redo()
	assert.False(t, ok)
}

func TestPushDiscardsRedoBranch(t *testing.T) {
	s := New(5)
	s.Push(snap(0))
	s.Push(snap(1))
	s.Push(snap(2))
	s.Undo()
	s.Undo()
	assert.True(t, s.CanRedo())

	s.Push(snap(9))
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.CanRedo())
	_, ok := s.Redo()
	assert.False(t, ok)

	got, ok := s.Undo()
	require.True(t, ok)
	assert.Equal(t, snap(0), got)
}

func TestBoundEvictsOldest(t *testing.T) {
	s := New(20)
	const n = 27
	for i := 0; i < n; i++ {
		s.Push(snap(byte(i)))
	}
	require.Equal(t, 20, s.Len())
	assert.Equal(t, 19, s.Index())
	for i, e := range s.Entries() {
		assert.Equal(t, snap(byte(n-20+i)), e.Pix)
	}

	undos := 0
	for s.CanUndo() {
		s.Undo()
		undos++
	}
	assert.Equal(t, 19, undos)
	e, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, snap(n-20), e.Pix)
}

func TestRevisions(t *testing.T) {
	s := New(2)
	assert.Zero(t, s.Revision())
	s.Push(snap(0))
	s.Push(snap(1))
	s.Push(snap(2))
	assert.Equal(t, uint64(3), s.Revision())
	s.Undo()
	assert.Equal(t, uint64(2), s.Revision())

	s.Reset()
	assert.Zero(t, s.Len())
	assert.Equal(t, -1, s.Index())
	assert.Zero(t, s.Revision())
	s.Push(snap(3))
	assert.Equal(t, uint64(4), s.Revision())
}
