package hako

import (
	"strconv"

	"github.com/rotisserie/eris"
)

// Entity represents a unique identifier for an object in the World. It is a
// non-owning handle: ID indexes the world's descriptor slab and Version must
// match the descriptor's current version for the handle to be valid, so a
// handle kept past destruction is detected rather than dereferenced.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	// It is never 0 for a handle returned by the World.
	Version uint32
}

// IsZero reports whether e is the zero handle, which never refers to an entity.
func (e Entity) IsZero() bool {
	return e.Version == 0
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.ID), 10) + "v" + strconv.FormatUint(uint64(e.Version), 10)
}

// entityMeta is the descriptor of one entity: where it lives right now. It is
// updated in place on every migration.
type entityMeta struct {
	archetype *Archetype
	slot      int
	version   uint32 // current version, 0 if the entity is dead
}

// entityRegistry is the descriptor slab. Descriptors are addressed by ID and
// the free-ID stack recycles the IDs of destroyed entities.
type entityRegistry struct {
	freeIDs       []uint32     // stack of recycled entity IDs
	metas         []entityMeta // descriptor per entity ID
	live          int          // number of live entities
	nextEntityVer uint32       // version for the next created entity
}

func newEntityRegistry(initialCapacity int) entityRegistry {
	return entityRegistry{
		freeIDs:       make([]uint32, 0, initialCapacity),
		metas:         make([]entityMeta, 0, initialCapacity),
		nextEntityVer: 1,
	}
}

// alloc claims a descriptor for an entity stored at (a, slot).
func (r *entityRegistry) alloc(a *Archetype, slot int) Entity {
	var id uint32
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
	} else {
		id = uint32(len(r.metas))
		r.metas = append(r.metas, entityMeta{})
	}
	meta := &r.metas[id]
	meta.archetype = a
	meta.slot = slot
	meta.version = r.nextEntityVer
	r.nextEntityVer++
	if r.nextEntityVer == 0 {
		r.nextEntityVer = 1
	}
	r.live++
	return Entity{ID: id, Version: meta.version}
}

// get returns the live descriptor for e.
func (r *entityRegistry) get(e Entity) (*entityMeta, error) {
	if int(e.ID) >= len(r.metas) {
		return nil, eris.Wrapf(ErrStaleEntity, "entity %s", e)
	}
	meta := &r.metas[e.ID]
	if meta.version == 0 || meta.version != e.Version {
		return nil, eris.Wrapf(ErrStaleEntity, "entity %s", e)
	}
	return meta, nil
}

// free retires the descriptor at id.
func (r *entityRegistry) free(id uint32) {
	meta := &r.metas[id]
	meta.archetype = nil
	meta.slot = -1
	meta.version = 0
	r.freeIDs = append(r.freeIDs, id)
	r.live--
}
