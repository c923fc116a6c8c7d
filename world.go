// Package hako is an archetype-based entity/component store.
//
// Entities are grouped by the exact set of component types they own. Each
// group (an Archetype) keeps one append-only column per component type, and
// adding or removing a component migrates the entity to the archetype for its
// new set, copying the columns both archetypes share. Queries select
// archetypes by required, excluded and at-least-one component sets and iterate
// their live slots.
//
// A World is single-threaded. Structural changes are rejected with
// ErrTraversalActive while a query traversal over the same world is running.
package hako

import (
	"github.com/rotisserie/eris"
)

// archetypeRegistry is the append-only pool of archetypes.
type archetypeRegistry struct {
	bySet      map[ComponentSet]int // lookup set→archetype index
	archetypes []*Archetype         // list of all archetypes in the world
}

// World is the archetype registry: it owns every archetype and every entity
// descriptor, and performs entity creation, destruction and migration.
type World struct {
	components *ComponentTypes
	events     *EventBus
	archetypes archetypeRegistry
	entities   entityRegistry
	resources  Resources
	traversals int // depth of active query traversals

	pending  []func() // events queued until the current operation completes
	flushing bool
}

// NewWorld creates a World that resolves component columns through types and
// pre-allocates descriptor storage for initialCapacity entities.
func NewWorld(types *ComponentTypes, initialCapacity int) *World {
	if types == nil {
		types = NewComponentTypes()
	}
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	w := &World{
		components: types,
		events:     &EventBus{},
		archetypes: archetypeRegistry{
			bySet:      make(map[ComponentSet]int),
			archetypes: make([]*Archetype, 0, 16),
		},
		entities: newEntityRegistry(initialCapacity),
	}
	// Pre-create the empty archetype; it only needs the entity column.
	if _, err := w.getOrCreateArchetype(ComponentSet{}); err != nil {
		panic("hako: " + err.Error())
	}
	return w
}

// Components returns the registry this world resolves component types with.
func (w *World) Components() *ComponentTypes {
	return w.components
}

// Events returns the bus on which the world publishes structural events.
func (w *World) Events() *EventBus {
	return w.events
}

// BeginTraversal arms the traversal guard. Until the matching EndTraversal,
// every structural change fails with ErrTraversalActive. Traversals nest.
func (w *World) BeginTraversal() {
	w.traversals++
}

// EndTraversal disarms one level of the traversal guard. It panics if no
// traversal is active.
func (w *World) EndTraversal() {
	if w.traversals == 0 {
		panic("hako: EndTraversal without matching BeginTraversal")
	}
	w.traversals--
}

// Traversing reports whether a query traversal is active.
func (w *World) Traversing() bool {
	return w.traversals > 0
}

// emit queues an event. Queued events are published by flushEvents once the
// structural operation that produced them has finished updating storage.
func emit[T any](w *World, event T) {
	if !hasHandlers[T](w.events) {
		return
	}
	w.pending = append(w.pending, func() { Publish(w.events, event) })
}

// flushEvents publishes queued events in order. Handlers may perform
// structural changes; events those changes queue are published by the same
// flush.
func (w *World) flushEvents() {
	if w.flushing {
		return
	}
	w.flushing = true
	defer func() {
		clear(w.pending)
		w.pending = w.pending[:0]
		w.flushing = false
	}()
	for i := 0; i < len(w.pending); i++ {
		w.pending[i]()
	}
}

func (w *World) checkMutable(op string) error {
	if w.traversals > 0 {
		return eris.Wrapf(ErrTraversalActive, "%s", op)
	}
	return nil
}

// getOrCreateArchetype returns the archetype for set, building and appending a
// new one the first time set is seen.
func (w *World) getOrCreateArchetype(set ComponentSet) (*Archetype, error) {
	set.Unset(EntityComponentID)
	if idx, ok := w.archetypes.bySet[set]; ok {
		return w.archetypes.archetypes[idx], nil
	}
	a, err := newArchetype(len(w.archetypes.archetypes), set, w.components)
	if err != nil {
		return nil, err
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.bySet[set] = a.index
	emit(w, ArchetypeCreated{Index: a.index, Signature: set})
	return a, nil
}

// spawn places a new entity into a.
func (w *World) spawn(a *Archetype) Entity {
	slot := a.AllocateSlot()
	e := w.entities.alloc(a, slot)
	a.entities.data[slot] = e
	return e
}

// CreateEntity creates an entity owning the given component types, all set to
// their zero values. It fails with ErrUnregisteredComponent if any type has no
// column factory.
func (w *World) CreateEntity(ids ...ComponentID) (Entity, error) {
	if err := w.checkMutable("create entity"); err != nil {
		return Entity{}, err
	}
	defer w.flushEvents()
	a, err := w.getOrCreateArchetype(NewComponentSet(ids...))
	if err != nil {
		return Entity{}, eris.Wrap(err, "create entity")
	}
	e := w.spawn(a)
	emit(w, EntityCreated{Entity: e, Archetype: a.index})
	return e, nil
}

// CreateEntityWith creates an entity owning one component per value and
// stores the values. Each value's dynamic type must be registered. If a value
// cannot be stored, the slot is released and no entity is created.
func (w *World) CreateEntityWith(values ...any) (Entity, error) {
	if err := w.checkMutable("create entity"); err != nil {
		return Entity{}, err
	}
	defer w.flushEvents()
	ids, err := w.valueIDs(values)
	if err != nil {
		return Entity{}, eris.Wrap(err, "create entity")
	}
	a, err := w.getOrCreateArchetype(NewComponentSet(ids...))
	if err != nil {
		return Entity{}, eris.Wrap(err, "create entity")
	}
	slot := a.AllocateSlot()
	for i, v := range values {
		if err := a.Column(ids[i]).Set(slot, v); err != nil {
			if rerr := a.ReleaseSlot(slot); rerr != nil {
				return Entity{}, eris.Wrapf(rerr, "create entity: release after %v", err)
			}
			return Entity{}, eris.Wrap(err, "create entity")
		}
	}
	e := w.entities.alloc(a, slot)
	a.entities.data[slot] = e
	emit(w, EntityCreated{Entity: e, Archetype: a.index})
	return e, nil
}

// CreateEntities creates count entities owning the given component types.
func (w *World) CreateEntities(count int, ids ...ComponentID) ([]Entity, error) {
	if err := w.checkMutable("create entities"); err != nil {
		return nil, err
	}
	defer w.flushEvents()
	if count <= 0 {
		return nil, nil
	}
	a, err := w.getOrCreateArchetype(NewComponentSet(ids...))
	if err != nil {
		return nil, eris.Wrap(err, "create entities")
	}
	return w.spawnBatch(a, count), nil
}

func (w *World) spawnBatch(a *Archetype, count int) []Entity {
	ents := make([]Entity, count)
	for i := range ents {
		ents[i] = w.spawn(a)
		emit(w, EntityCreated{Entity: ents[i], Archetype: a.index})
	}
	return ents
}

// DestroyEntity releases e's slot and retires its descriptor. Destroying a
// stale handle fails with ErrStaleEntity.
func (w *World) DestroyEntity(e Entity) error {
	if err := w.checkMutable("destroy entity"); err != nil {
		return err
	}
	defer w.flushEvents()
	meta, err := w.entities.get(e)
	if err != nil {
		return eris.Wrap(err, "destroy entity")
	}
	a := meta.archetype
	if err := a.ReleaseSlot(meta.slot); err != nil {
		return eris.Wrap(err, "destroy entity")
	}
	w.entities.free(e.ID)
	emit(w, EntityDestroyed{Entity: e, Archetype: a.index})
	return nil
}

// IsValid checks if the entity is currently alive in the world.
func (w *World) IsValid(e Entity) bool {
	_, err := w.entities.get(e)
	return err == nil
}

// Location returns the archetype and slot currently holding e.
func (w *World) Location(e Entity) (*Archetype, int, error) {
	meta, err := w.entities.get(e)
	if err != nil {
		return nil, -1, err
	}
	return meta.archetype, meta.slot, nil
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.live
}

// Archetypes returns the world's archetypes in creation order. The slice is
// owned by the world and grows as new component sets appear.
func (w *World) Archetypes() []*Archetype {
	return w.archetypes.archetypes
}

// ArchetypeFor returns the archetype for set if it exists.
func (w *World) ArchetypeFor(set ComponentSet) (*Archetype, bool) {
	set.Unset(EntityComponentID)
	idx, ok := w.archetypes.bySet[set]
	if !ok {
		return nil, false
	}
	return w.archetypes.archetypes[idx], true
}

// Stats summarises storage usage.
type Stats struct {
	Archetypes int // archetypes ever created
	Entities   int // live entities
	Slots      int // slots allocated across all archetypes
	FreeSlots  int // released slots awaiting reuse
}

// Stats returns a snapshot of the world's storage usage.
func (w *World) Stats() Stats {
	s := Stats{
		Archetypes: len(w.archetypes.archetypes),
		Entities:   w.entities.live,
	}
	for _, a := range w.archetypes.archetypes {
		s.Slots += a.slotCount
		s.FreeSlots += len(a.freeStack)
	}
	return s
}

func (w *World) valueIDs(values []any) ([]ComponentID, error) {
	ids := make([]ComponentID, len(values))
	for i, v := range values {
		id, err := w.components.idOfValue(v)
		if err != nil {
			return nil, err
		}
		if id == EntityComponentID {
			return nil, eris.Wrap(ErrUnknownComponent, "entity handles are not components")
		}
		ids[i] = id
	}
	return ids, nil
}
