package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/pixelforge/layer"
)

func TestEditor_SetActiveTool(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)

	for _, name := range []string{"draw", "eraser", "select"} {
		require.NoError(t, e.SetActiveTool(name))
		assert.Equal(t, name, e.Tool())
	}
	assert.ErrorIs(t, e.SetActiveTool("lasso"), ErrUnknownTool)
	assert.Equal(t, "select", e.Tool())
}

func TestEditor_SetActiveTool_SelectRestoresInteractivity(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	withImage(t, e)
	e.AddText()

	require.NoError(t, e.SetActiveTool("draw"))
	for _, o := range e.Snapshot().Objects {
		assert.False(t, o.Selectable)
		assert.False(t, o.Evented)
	}
	require.NoError(t, e.SetActiveTool("select"))
	for _, o := range e.Snapshot().Objects {
		assert.True(t, o.Selectable)
		assert.True(t, o.Evented)
	}
}

func TestEditor_SetActiveTool_Commands(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	withImage(t, e)

	require.NoError(t, e.SetActiveTool("draw"))
	require.NoError(t, e.SetActiveTool("rotate"))
	snap := e.Snapshot()
	assert.Equal(t, "select", snap.Tool)
	assert.Equal(t, 90.0, snap.Objects[0].Angle)

	require.NoError(t, e.SetActiveTool("text"))
	snap = e.Snapshot()
	assert.Equal(t, "select", snap.Tool)
	require.Len(t, snap.Layers, 2)
	assert.Equal(t, layer.TypeText, snap.Layers[1].Type)
	assert.Equal(t, snap.Layers[1].ID, snap.ActiveLayer)
}

func TestEditor_Crop(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	withImage(t, e)

	require.NoError(t, e.SetActiveTool("crop"))
	snap := e.Snapshot()
	assert.Equal(t, "crop", snap.Tool)
	assert.True(t, snap.CropActive)
	assert.Len(t, snap.Objects, 2)

	// selecting crop again keeps a single crop rectangle
	require.NoError(t, e.SetActiveTool("crop"))
	assert.Len(t, e.Snapshot().Objects, 2)

	e.ApplyCrop()
	snap = e.Snapshot()
	assert.Equal(t, "select", snap.Tool)
	assert.False(t, snap.CropActive)
	require.Len(t, snap.Objects, 1)
	assert.InDelta(t, 400/1.8, snap.Objects[0].Width, 1e-9)
}

func TestEditor_HandleKey(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	withImage(t, e)

	tests := []struct {
		key     string
		focused bool
		handled bool
		want    string
	}{
		{key: "b", handled: true, want: "draw"},
		{key: "V", handled: true, want: "select"},
		{key: "e", handled: true, want: "eraser"},
		{key: "v", focused: true, handled: false, want: "eraser"},
		{key: "x", handled: false, want: "eraser"},
		{key: "r", handled: true, want: "select"},
		{key: "Enter", handled: false, want: "select"},
	}
	for _, tt := range tests {
		handled, err := e.HandleKey(tt.key, tt.focused)
		require.NoError(t, err)
		assert.Equal(t, tt.handled, handled, tt.key)
		assert.Equal(t, tt.want, e.Tool(), tt.key)
	}
	assert.Equal(t, 90.0, e.Snapshot().Objects[0].Angle)
}

func TestEditor_HandleKey_Crop(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	withImage(t, e)

	_, err := e.HandleKey("c", false)
	require.NoError(t, err)
	require.True(t, e.Snapshot().CropActive)

	handled, err := e.HandleKey("Escape", false)
	require.NoError(t, err)
	assert.True(t, handled)
	snap := e.Snapshot()
	assert.False(t, snap.CropActive)
	assert.Equal(t, "select", snap.Tool)
	assert.Equal(t, 400.0, snap.Objects[0].Width)

	_, _ = e.HandleKey("c", false)
	handled, _ = e.HandleKey("Enter", false)
	assert.True(t, handled)
	assert.InDelta(t, 400/1.8, e.Snapshot().Objects[0].Width, 1e-9)
}

func TestEditor_Pointer_Draw(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	require.NoError(t, e.SetActiveTool("draw"))

	e.PointerDown(100, 100)
	e.PointerMove(150, 120)
	e.PointerUp(200, 100)

	snap := e.Snapshot()
	require.Len(t, snap.Objects, 1)
	assert.Equal(t, "path", snap.Objects[0].Kind)
	require.Len(t, snap.Layers, 1)
	assert.Equal(t, "Drawing", snap.Layers[0].Name)
	assert.Equal(t, layer.TypeDrawing, snap.Layers[0].Type)
}

func TestEditor_Pointer_Drag(t *testing.T) {
	t.Parallel()
	e := newEditor(t, nil)
	l := withImage(t, e)
	e.AddText()

	// the text sits at (300, 300); grab the image well away from it
	e.PointerDown(100, 100)
	e.PointerMove(110, 105)
	e.PointerUp(120, 110)

	snap := e.Snapshot()
	assert.Equal(t, l.ObjectID, snap.ActiveObject)
	assert.Equal(t, l.ID, snap.ActiveLayer)
	assert.InDelta(t, 60, snap.Objects[0].Left, 1e-9)
	assert.InDelta(t, 40, snap.Objects[0].Top, 1e-9)

	e.PointerDown(5, 5)
	assert.Empty(t, e.Snapshot().ActiveObject)
}
