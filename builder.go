package hako

import "github.com/rotisserie/eris"

// Builder creates entities for one fixed component set. It resolves the
// archetype once, so repeated creation skips the set lookup.
type Builder struct {
	world *World
	arch  *Archetype
}

// NewBuilder returns a Builder for entities owning ids. It fails with
// ErrUnregisteredComponent if any id has no column factory.
func NewBuilder(w *World, ids ...ComponentID) (*Builder, error) {
	if err := w.checkMutable("new builder"); err != nil {
		return nil, err
	}
	defer w.flushEvents()
	a, err := w.getOrCreateArchetype(NewComponentSet(ids...))
	if err != nil {
		return nil, eris.Wrap(err, "new builder")
	}
	return &Builder{world: w, arch: a}, nil
}

// Archetype returns the archetype the builder fills.
func (b *Builder) Archetype() *Archetype {
	return b.arch
}

// NewEntity creates one entity with zero-valued components.
func (b *Builder) NewEntity() (Entity, error) {
	if err := b.world.checkMutable("builder new entity"); err != nil {
		return Entity{}, err
	}
	defer b.world.flushEvents()
	e := b.world.spawn(b.arch)
	emit(b.world, EntityCreated{Entity: e, Archetype: b.arch.index})
	return e, nil
}

// NewEntities creates count entities with zero-valued components.
func (b *Builder) NewEntities(count int) ([]Entity, error) {
	if err := b.world.checkMutable("builder new entities"); err != nil {
		return nil, err
	}
	defer b.world.flushEvents()
	if count <= 0 {
		return nil, nil
	}
	return b.world.spawnBatch(b.arch, count), nil
}
