package hako

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus. This value is fixed at 256.
const MaxEventTypes = 256

// ArchetypeCreated is published when a component set is seen for the first time.
type ArchetypeCreated struct {
	Index     int
	Signature ComponentSet
}

// EntityCreated is published after an entity has been placed in its archetype.
type EntityCreated struct {
	Entity    Entity
	Archetype int
}

// EntityMigrated is published after an entity moved between archetypes.
type EntityMigrated struct {
	Entity Entity
	From   int
	To     int
}

// EntityDestroyed is published after an entity's slot has been released.
type EntityDestroyed struct {
	Entity    Entity
	Archetype int
}

// EventBus provides a simple, type-safe event bus. The World publishes its
// structural events here so that render caches, scene tooling and other
// collaborators can follow archetype and entity changes without polling.
//
// Handlers run synchronously before the structural operation that produced the
// event returns, after its storage changes are complete. A handler may itself
// create, migrate or destroy entities; the events that causes are delivered
// after the current one, in order.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID uint16
}

// Subscribe registers a handler function to be called when an event of type `T`
// is published. Handlers are stored in the order they are subscribed.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	id := bus.getEventTypeID(t)
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish broadcasts an event of type `T` to all registered handlers for that
// type, in subscription order. It does nothing when nobody subscribed to T.
func Publish[T any](bus *EventBus, event T) {
	if bus == nil || bus.eventTypeMap == nil {
		return
	}
	t := reflect.TypeFor[T]()
	if id, ok := bus.eventTypeMap[t]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// hasHandlers reports whether any handler is subscribed to T.
func hasHandlers[T any](bus *EventBus) bool {
	if bus == nil || bus.eventTypeMap == nil {
		return false
	}
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	return ok && len(bus.handlers[id]) > 0
}

// getEventTypeID retrieves or assigns an ID for the event type.
func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("hako: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
