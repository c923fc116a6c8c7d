package hako

import (
	"fmt"
	"reflect"

	"github.com/rotisserie/eris"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a ComponentTypes registry, including the reserved entity
// column. This value is fixed at 256.
const MaxComponentTypes = 256

// EntityComponentID is reserved for the per-archetype column that stores the
// Entity handle owning each slot.
const EntityComponentID ComponentID = 0

// ComponentID is a unique identifier for a component type within one registry.
type ComponentID uint8

// ColumnFactory constructs an empty column store for one component type.
type ColumnFactory func(id ComponentID) Column

// ComponentTypes assigns IDs to component types and remembers how to build a
// column for each of them. IDs are handed out monotonically on first use and
// never reclaimed. A registry is passed to NewWorld explicitly, so independent
// worlds can use independent registries.
type ComponentTypes struct {
	typeMap   map[reflect.Type]ComponentID
	idToType  [MaxComponentTypes]reflect.Type
	factories [MaxComponentTypes]ColumnFactory
	nextID    uint16 // counter for assigning new component type IDs
}

// NewComponentTypes creates a registry with the entity column already
// registered under EntityComponentID.
func NewComponentTypes() *ComponentTypes {
	c := &ComponentTypes{
		typeMap: make(map[reflect.Type]ComponentID, 16),
	}
	RegisterComponent[Entity](c)
	return c
}

// IDFor returns the ComponentID for t, assigning the next free ID the first
// time t is seen. It panics when the registry already holds MaxComponentTypes
// types.
func (c *ComponentTypes) IDFor(t reflect.Type) ComponentID {
	if id, ok := c.typeMap[t]; ok {
		return id
	}
	if c.nextID >= MaxComponentTypes {
		panic(fmt.Sprintf("hako: cannot register component %s: maximum number of component types (%d) reached", t, MaxComponentTypes))
	}
	id := ComponentID(c.nextID)
	c.typeMap[t] = id
	c.idToType[id] = t
	c.nextID++
	return id
}

// Lookup returns the ComponentID for t without assigning one.
func (c *ComponentTypes) Lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := c.typeMap[t]
	return id, ok
}

// RegisterColumnFactory records how to build a column for t and returns its ID.
// Registering the same type twice is a no-op: the first factory is kept and the
// duplicate is discarded.
func (c *ComponentTypes) RegisterColumnFactory(t reflect.Type, factory ColumnFactory) ComponentID {
	id := c.IDFor(t)
	if c.factories[id] == nil {
		c.factories[id] = factory
	}
	return id
}

// Type returns the reflect.Type registered under id, or nil.
func (c *ComponentTypes) Type(id ComponentID) reflect.Type {
	return c.idToType[id]
}

// Registered reports whether id has a column factory.
func (c *ComponentTypes) Registered(id ComponentID) bool {
	return c.factories[id] != nil
}

// Len returns the number of IDs assigned so far, including the entity column.
func (c *ComponentTypes) Len() int {
	return int(c.nextID)
}

func (c *ComponentTypes) newColumn(id ComponentID) (Column, error) {
	f := c.factories[id]
	if f == nil {
		name := "<unassigned>"
		if t := c.idToType[id]; t != nil {
			name = t.String()
		}
		return nil, eris.Wrapf(ErrUnregisteredComponent, "component %d (%s)", id, name)
	}
	return f(id), nil
}

// idOfValue resolves the registered ID for a boxed component value.
func (c *ComponentTypes) idOfValue(v any) (ComponentID, error) {
	t := reflect.TypeOf(v)
	id, ok := c.typeMap[t]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownComponent, "value of type %v", t)
	}
	if c.factories[id] == nil {
		return 0, eris.Wrapf(ErrUnregisteredComponent, "component %d (%v)", id, t)
	}
	return id, nil
}

// RegisterComponent registers T with a column factory and returns its ID. If T
// is already registered, it returns the existing ID.
func RegisterComponent[T any](c *ComponentTypes) ComponentID {
	return c.RegisterColumnFactory(reflect.TypeFor[T](), NewColumn[T])
}

// IDOf returns the ComponentID for T, assigning one on first use. It does not
// register a column factory.
func IDOf[T any](c *ComponentTypes) ComponentID {
	return c.IDFor(reflect.TypeFor[T]())
}
