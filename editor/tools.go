package editor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chaos-io/pixelforge/canvas"
)

// Command is an instantaneous action offered next to the modal tools.
type Command string

const (
	CommandRotate Command = "rotate"
	CommandText   Command = "text"
)

// shortcuts maps single-letter keys to tool or command names.
var shortcuts = map[string]string{
	"v": canvas.ToolSelect.String(),
	"b": canvas.ToolDraw.String(),
	"e": canvas.ToolEraser.String(),
	"c": canvas.ToolCrop.String(),
	"r": string(CommandRotate),
	"t": string(CommandText),
}

// SetActiveTool selects a modal tool or runs a command by name. Commands
// leave the select tool active; crop also opens a crop session.
func (e *Editor) SetActiveTool(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setActiveTool(name)
}

func (e *Editor) setActiveTool(name string) error {
	switch Command(name) {
	case CommandRotate:
		e.surface.Rotate(RotateStep)
		e.switchTool(canvas.ToolSelect)
		return nil
	case CommandText:
		e.apply(e.surface.AddText())
		e.switchTool(canvas.ToolSelect)
		return nil
	}

	t, ok := canvas.ParseTool(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	e.switchTool(t)
	if t == canvas.ToolCrop {
		e.surface.StartCrop()
	}
	return nil
}

func (e *Editor) switchTool(t canvas.Tool) {
	e.dragging = false
	e.surface.SetTool(t)
	slog.Debug("tool changed", "tool", t.String())
}

// Tool returns the name of the active modal tool.
func (e *Editor) Tool() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Tool().String()
}

// HandleKey maps a key press to a tool, a command or the open crop session.
// Keys are ignored while a text input has focus. It reports whether the key
// was consumed.
func (e *Editor) HandleKey(key string, textInputFocused bool) (bool, error) {
	if textInputFocused {
		return false, nil
	}
	key = strings.ToLower(key)

	e.mu.Lock()
	defer e.mu.Unlock()
	switch key {
	case "enter", "escape":
		if !e.surface.CropActive() {
			return false, nil
		}
		e.endCrop(key == "enter")
		return true, nil
	}

	name, ok := shortcuts[key]
	if !ok {
		return false, nil
	}
	return true, e.setActiveTool(name)
}

// PointerDown starts a stroke in drawing mode, otherwise selects the object
// under the pointer and starts dragging it.
func (e *Editor) PointerDown(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface.BeginStroke(x, y) {
		return
	}
	if !e.surface.SelectionEnabled() && !e.surface.CropActive() {
		return
	}
	e.dragging = e.surface.SelectAt(x, y) != nil
	e.lastX, e.lastY = x, y
}

func (e *Editor) PointerMove(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface.DrawingMode() {
		e.surface.ExtendStroke(x, y)
		return
	}
	if !e.dragging {
		return
	}
	e.surface.MoveActive(x-e.lastX, y-e.lastY)
	e.lastX, e.lastY = x, y
}

func (e *Editor) PointerUp(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface.DrawingMode() {
		e.surface.ExtendStroke(x, y)
		e.apply(e.surface.EndStroke())
		return
	}
	if e.dragging {
		e.surface.MoveActive(x-e.lastX, y-e.lastY)
	}
	e.dragging = false
}
