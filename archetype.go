package hako

import (
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// Archetype stores every entity that has exactly the same set of component
// types. It owns one column per component in its signature plus the entity
// column, and all columns are allocated and released in lock-step.
//
// Released slots are not swap-removed: their values stay resident and
// iteration skips them until a later allocation reuses the index.
type Archetype struct {
	columns   []Column                   // columns[0] is the entity column
	colIndex  [MaxComponentTypes]int16   // column position per component ID; -1 if absent
	freeSlots *intmap.Map[int, struct{}] // membership of released slots
	freeStack []int                      // reuse order for released slots
	entities  *column[Entity]            // typed view of columns[0]
	signature ComponentSet               // component IDs, without the entity column
	index     int                        // position in World.archetypes
	slotCount int                        // next fresh slot index
}

// newArchetype builds an archetype for sig using the factories in types. It
// fails if any component in sig has no registered factory.
func newArchetype(index int, sig ComponentSet, types *ComponentTypes) (*Archetype, error) {
	sig.Unset(EntityComponentID)
	a := &Archetype{
		index:     index,
		signature: sig,
		freeSlots: intmap.New[int, struct{}](16),
	}
	for i := range a.colIndex {
		a.colIndex[i] = -1
	}
	ids := append([]ComponentID{EntityComponentID}, sig.IDs()...)
	a.columns = make([]Column, 0, len(ids))
	for _, id := range ids {
		col, err := types.newColumn(id)
		if err != nil {
			return nil, eris.Wrapf(err, "build archetype %s", sig)
		}
		a.colIndex[id] = int16(len(a.columns))
		a.columns = append(a.columns, col)
	}
	a.entities = a.columns[0].(*column[Entity])
	return a, nil
}

// Index returns the archetype's position in its world. It never changes.
func (a *Archetype) Index() int { return a.index }

// Signature returns the set of component IDs stored by this archetype.
func (a *Archetype) Signature() ComponentSet { return a.signature }

// Has reports whether the archetype stores component id.
func (a *Archetype) Has(id ComponentID) bool {
	return a.colIndex[id] >= 0
}

// Column returns the column for id, or nil if the archetype lacks it.
func (a *Archetype) Column(id ComponentID) Column {
	i := a.colIndex[id]
	if i < 0 {
		return nil
	}
	return a.columns[i]
}

// SlotCount returns the number of slots ever allocated, live or free.
func (a *Archetype) SlotCount() int { return a.slotCount }

// FreeCount returns the number of released slots waiting for reuse.
func (a *Archetype) FreeCount() int { return len(a.freeStack) }

// Len returns the number of live slots.
func (a *Archetype) Len() int { return a.slotCount - len(a.freeStack) }

// IsFree reports whether slot has been released and not yet reused.
func (a *Archetype) IsFree(slot int) bool {
	return a.freeSlots.Has(slot)
}

// Entity returns the entity stored at slot. The result is meaningless for free
// slots.
func (a *Archetype) Entity(slot int) Entity {
	return a.entities.data[slot]
}

// AllocateSlot returns a slot for a new occupant. Released slots are reused
// first, most recently released first, and are reset to zero values; otherwise
// every column grows by one element. The caller must write the entity column.
func (a *Archetype) AllocateSlot() int {
	if n := len(a.freeStack); n > 0 {
		slot := a.freeStack[n-1]
		a.freeStack = a.freeStack[:n-1]
		a.freeSlots.Del(slot)
		for _, col := range a.columns {
			col.Zero(slot)
		}
		return slot
	}
	slot := a.slotCount
	for _, col := range a.columns {
		col.Allocate()
	}
	a.slotCount++
	return slot
}

// ReleaseSlot marks slot free. It does not move or clear any value.
func (a *Archetype) ReleaseSlot(slot int) error {
	if slot < 0 || slot >= a.slotCount {
		return eris.Wrapf(ErrSlotOutOfRange, "release slot %d of %d in archetype %d", slot, a.slotCount, a.index)
	}
	if a.freeSlots.Has(slot) {
		return eris.Wrapf(ErrSlotAlreadyFree, "release slot %d in archetype %d", slot, a.index)
	}
	a.freeSlots.Put(slot, struct{}{})
	a.freeStack = append(a.freeStack, slot)
	return nil
}

// Matches reports whether the archetype holds every ID in required, none in
// excluded, and, when atLeastOne is non-empty, at least one ID from it.
func (a *Archetype) Matches(required, excluded, atLeastOne ComponentSet) bool {
	if !a.signature.Contains(required) {
		return false
	}
	if a.signature.Intersects(excluded) {
		return false
	}
	return atLeastOne.IsEmpty() || a.signature.Intersects(atLeastOne)
}

// ForEachSlot calls visitor for every live slot in ascending order.
func (a *Archetype) ForEachSlot(visitor func(slot int)) {
	a.eachSlot(func(slot int) bool {
		visitor(slot)
		return true
	})
}

// eachSlot is ForEachSlot with early termination when visit returns false.
func (a *Archetype) eachSlot(visit func(slot int) bool) bool {
	if len(a.freeStack) == 0 {
		for slot := 0; slot < a.slotCount; slot++ {
			if !visit(slot) {
				return false
			}
		}
		return true
	}
	for slot := 0; slot < a.slotCount; slot++ {
		if a.freeSlots.Has(slot) {
			continue
		}
		if !visit(slot) {
			return false
		}
	}
	return true
}
