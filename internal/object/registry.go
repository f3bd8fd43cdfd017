package object

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/slotbox/internal/stream"
)

var (
	ErrTypeExists  = errors.New("object: type already registered")
	ErrNilFactory  = errors.New("object: nil factory")
	ErrInvalidType = errors.New("object: invalid type")
)

// Definition carries the payload an object is constructed from. In is
// bounded to Len bytes; factories that do not consume the whole
// payload call Spool before returning.
type Definition struct {
	Type TypeID
	Len  uint8
	In   stream.DataIn
}

// Spool discards whatever the factory left unread.
func (d *Definition) Spool() {
	if d.In != nil {
		stream.Spool(d.In)
	}
}

// Factory builds an object from its definition payload.
type Factory func(def *Definition) (Object, Status)

// ObjectType describes one creatable type.
type ObjectType struct {
	ID   TypeID
	Name string
	Make Factory
}

// Registry maps type ids to factories. Registration happens during
// box construction; lookups are read-only afterwards.
type Registry struct {
	items map[TypeID]ObjectType
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[TypeID]ObjectType)}
}

// Register adds a creatable type. Type id 0 is reserved.
func (r *Registry) Register(t ObjectType) error {
	if t.ID == 0 {
		return fmt.Errorf("%w: id 0 is reserved", ErrInvalidType)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidType)
	}
	if t.Make == nil {
		return ErrNilFactory
	}
	if _, ok := r.items[t.ID]; ok {
		return fmt.Errorf("%w: %d", ErrTypeExists, t.ID)
	}
	r.items[t.ID] = t
	return nil
}

// Resolve returns a registered type by id.
func (r *Registry) Resolve(id TypeID) (ObjectType, bool) {
	t, ok := r.items[id]
	return t, ok
}

// List returns all registered types ordered by id.
func (r *Registry) List() []ObjectType {
	list := make([]ObjectType, 0, len(r.items))
	for _, t := range r.items {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// Create builds an object from def, spooling any unread payload so the
// stream always advances exactly past the definition.
func (r *Registry) Create(def *Definition) (Object, Status) {
	t, ok := r.items[def.Type]
	if !ok {
		def.Spool()
		return nil, StatusInvalidType
	}
	o, st := t.Make(def)
	def.Spool()
	if !st.OK() {
		return nil, st
	}
	if o == nil {
		return nil, StatusInvalidDefinition
	}
	return o, StatusOK
}
