package blocks

import "github.com/danmuck/slotbox/internal/object"

// Group is a creatable open container, the building block for nested
// user trees. Its definition carries no payload; membership is
// reconstructed from the member objects' own records.
type Group struct {
	object.DynamicContainer
	object.PersistedAddress
}

func NewGroup() *Group {
	return &Group{}
}

func (g *Group) TypeID() object.TypeID {
	return TypeGroup
}

func makeGroup(def *object.Definition) (object.Object, object.Status) {
	if def.Len != 0 {
		return nil, object.StatusInvalidDefinition
	}
	return NewGroup(), object.StatusOK
}
