package hako

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// GetComponent retrieves a pointer to the component of type `T` for the given
// entity. It returns nil if the entity is stale or does not have the component.
//
// The pointer addresses column storage directly and is valid until the next
// structural change in the world.
func GetComponent[T any](w *World, e Entity) *T {
	meta, err := w.entities.get(e)
	if err != nil {
		return nil
	}
	id, ok := w.components.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return columnAt[T](meta.archetype.Column(id), meta.slot)
}

// HasComponent reports whether e is alive and has a component of type `T`.
func HasComponent[T any](w *World, e Entity) bool {
	meta, err := w.entities.get(e)
	if err != nil {
		return false
	}
	id, ok := w.components.Lookup(reflect.TypeFor[T]())
	return ok && meta.archetype.Has(id)
}

// SetComponent adds a component of type `T` with the given value to an entity,
// or updates it if the component already exists.
//
// If the entity does not already have the component, adding it moves the entity
// to a different archetype. This is a relatively expensive operation compared to
// updating an existing component.
func SetComponent[T any](w *World, e Entity, val T) error {
	if err := w.checkMutable("set component"); err != nil {
		return err
	}
	defer w.flushEvents()
	meta, err := w.entities.get(e)
	if err != nil {
		return eris.Wrap(err, "set component")
	}
	id, err := registeredID[T](w.components)
	if err != nil {
		return eris.Wrap(err, "set component")
	}
	a := meta.archetype
	if a.Has(id) {
		return setValue(a.Column(id), meta.slot, val)
	}
	dest := a.signature
	dest.Set(id)
	return w.migrate(e, dest, func(dst *Archetype, slot int) error {
		return setValue(dst.Column(id), slot, val)
	})
}

// RemoveComponent removes the component of type `T` from the specified entity.
// It is a no-op if the entity does not have the component.
func RemoveComponent[T any](w *World, e Entity) error {
	if err := w.checkMutable("remove component"); err != nil {
		return err
	}
	if _, err := w.entities.get(e); err != nil {
		return eris.Wrap(err, "remove component")
	}
	id, ok := w.components.Lookup(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return w.RemoveComponents(e, id)
}

func registeredID[T any](c *ComponentTypes) (ComponentID, error) {
	t := reflect.TypeFor[T]()
	id, ok := c.Lookup(t)
	if !ok || !c.Registered(id) {
		return 0, eris.Wrapf(ErrUnregisteredComponent, "%v", t)
	}
	if id == EntityComponentID {
		return 0, eris.Wrap(ErrUnknownComponent, "entity handles are not components")
	}
	return id, nil
}

// columnAt returns a typed pointer into col at slot, or nil if col is absent or
// holds another type.
func columnAt[T any](col Column, slot int) *T {
	if col == nil {
		return nil
	}
	if c, ok := col.(*column[T]); ok {
		return c.at(slot)
	}
	if col.Type() != reflect.TypeFor[T]() {
		return nil
	}
	return (*T)(unsafe.Add(col.RawData(), uintptr(slot)*col.ElemSize()))
}

func setValue[T any](col Column, slot int, val T) error {
	if c, ok := col.(*column[T]); ok {
		*c.at(slot) = val
		return nil
	}
	return col.Set(slot, val)
}
