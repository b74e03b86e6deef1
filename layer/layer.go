// Package layer keeps the ordered layer list shown next to the canvas.
//
// Layers are metadata only: each one mirrors a single object on the canvas
// surface. The surface reports every change to its object set as a Delta and
// the registry applies it, so the list can't drift from the surface.
package layer

import "github.com/segmentio/ksuid"

type Type string

const (
	TypeImage   Type = "image"
	TypeDrawing Type = "drawing"
	TypeText    Type = "text"
)

type Layer struct {
	ID       string `json:"id"`
	ObjectID string `json:"objectId"`
	Name     string `json:"name"`
	Visible  bool   `json:"visible"`
	Locked   bool   `json:"locked"`
	Type     Type   `json:"type"`
}

// New returns a visible, unlocked layer for the given surface object.
// The id embeds a KSUID, so ids sort by creation time.
func New(objectID, name string, typ Type) Layer {
	return Layer{
		ID:       "layer-" + ksuid.New().String(),
		ObjectID: objectID,
		Name:     name,
		Visible:  true,
		Type:     typ,
	}
}

type Op int

const (
	OpNone Op = iota
	// OpAdd appends Layer and makes it active.
	OpAdd
	// OpReplace drops every layer, then adds Layer.
	OpReplace
	// OpReset drops every layer.
	OpReset
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpReplace:
		return "replace"
	case OpReset:
		return "reset"
	default:
		return "none"
	}
}

// Delta is a change to the surface's object set.
type Delta struct {
	Op    Op
	Layer Layer
}
