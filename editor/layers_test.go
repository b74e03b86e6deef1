package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_SelectLayer(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	first := withImage(t, e)
	withImage(t, e)

	require.NoError(t, e.SelectLayer(first.ID))
	snap := e.Snapshot()
	assert.Equal(t, first.ID, snap.ActiveLayer)
	assert.Equal(t, first.ObjectID, snap.ActiveObject)

	assert.ErrorIs(t, e.SelectLayer("missing"), ErrLayerNotFound)
}

func TestEditor_ToggleLayerVisibility(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	l := withImage(t, e)

	got, err := e.ToggleLayerVisibility(l.ID)
	require.NoError(t, err)
	assert.False(t, got.Visible)
	assert.False(t, e.Snapshot().Objects[0].Visible)

	got, err = e.ToggleLayerVisibility(l.ID)
	require.NoError(t, err)
	assert.True(t, got.Visible)
	assert.True(t, e.Snapshot().Objects[0].Visible)

	_, err = e.ToggleLayerVisibility("missing")
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestEditor_ToggleLayerLock(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	l := withImage(t, e)

	got, err := e.ToggleLayerLock(l.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.False(t, e.Snapshot().Objects[0].Selectable)

	// a locked object stays put under the select tool
	e.PointerDown(400, 300)
	e.PointerUp(450, 300)
	assert.InDelta(t, 40, e.Snapshot().Objects[0].Left, 1e-9)

	_, err = e.ToggleLayerLock("missing")
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestEditor_DeleteLayer(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	first := withImage(t, e)
	second := withImage(t, e)

	require.NoError(t, e.DeleteLayer(second.ID))
	snap := e.Snapshot()
	require.Len(t, snap.Layers, 1)
	require.Len(t, snap.Objects, 1)
	assert.Equal(t, first.ID, snap.ActiveLayer)
	assert.Equal(t, first.ObjectID, snap.ActiveObject)

	require.NoError(t, e.DeleteLayer(first.ID))
	snap = e.Snapshot()
	assert.Empty(t, snap.Layers)
	assert.Empty(t, snap.Objects)
	assert.Empty(t, snap.ActiveLayer)

	assert.ErrorIs(t, e.DeleteLayer(first.ID), ErrLayerNotFound)
}
