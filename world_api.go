package hako

import (
	"github.com/rotisserie/eris"
)

// AddComponents adds one component per value to e, or overwrites the values of
// components e already has. When the resulting component set differs from e's
// current one, e migrates to the matching archetype: every shared column is
// copied, the new values are written, and only then is the old slot released.
func (w *World) AddComponents(e Entity, values ...any) error {
	if err := w.checkMutable("add components"); err != nil {
		return err
	}
	defer w.flushEvents()
	meta, err := w.entities.get(e)
	if err != nil {
		return eris.Wrap(err, "add components")
	}
	ids, err := w.valueIDs(values)
	if err != nil {
		return eris.Wrap(err, "add components")
	}
	src := meta.archetype
	dest := src.signature.Union(NewComponentSet(ids...))
	write := func(a *Archetype, slot int) error {
		for i, v := range values {
			if err := a.Column(ids[i]).Set(slot, v); err != nil {
				return err
			}
		}
		return nil
	}
	if dest != src.signature {
		return w.migrate(e, dest, write)
	}
	if err := write(src, meta.slot); err != nil {
		return eris.Wrap(err, "add components")
	}
	return nil
}

// RemoveComponents removes the given component types from e. Types e does not
// have are ignored; when none of them are present this is a no-op.
func (w *World) RemoveComponents(e Entity, ids ...ComponentID) error {
	if err := w.checkMutable("remove components"); err != nil {
		return err
	}
	defer w.flushEvents()
	meta, err := w.entities.get(e)
	if err != nil {
		return eris.Wrap(err, "remove components")
	}
	removed := NewComponentSet(ids...)
	removed.Unset(EntityComponentID)
	src := meta.archetype
	dest := src.signature.Difference(removed)
	if dest == src.signature {
		return nil
	}
	return w.migrate(e, dest, nil)
}

// migrate moves e from its current archetype to the archetype for dest. The
// order is fixed: allocate the destination slot, copy shared columns, run
// write, store the entity back-reference, release the source slot, then point
// the descriptor at the destination. If anything fails before the release, the
// destination slot is given back and e stays where it was.
//
// The descriptor is re-read by ID when it is updated: write may run column
// code supplied by a factory, and the descriptor slab can grow meanwhile.
func (w *World) migrate(e Entity, dest ComponentSet, write func(a *Archetype, slot int) error) error {
	meta, err := w.entities.get(e)
	if err != nil {
		return eris.Wrapf(err, "migrate entity %s", e)
	}
	src, srcSlot := meta.archetype, meta.slot
	dst, err := w.getOrCreateArchetype(dest)
	if err != nil {
		return eris.Wrapf(err, "migrate entity %s", e)
	}
	dstSlot := dst.AllocateSlot()
	rollback := func(cause error) error {
		if rerr := dst.ReleaseSlot(dstSlot); rerr != nil {
			return eris.Wrapf(rerr, "rollback after %v", cause)
		}
		return eris.Wrapf(cause, "migrate entity %s", e)
	}
	for _, col := range dst.columns[1:] {
		srcCol := src.Column(col.ID())
		if srcCol == nil {
			continue
		}
		if err := col.CopyFrom(srcCol, srcSlot, dstSlot); err != nil {
			return rollback(err)
		}
	}
	if write != nil {
		if err := write(dst, dstSlot); err != nil {
			return rollback(err)
		}
	}
	dst.entities.data[dstSlot] = e
	if err := src.ReleaseSlot(srcSlot); err != nil {
		return rollback(err)
	}
	meta = &w.entities.metas[e.ID]
	meta.archetype = dst
	meta.slot = dstSlot
	emit(w, EntityMigrated{Entity: e, From: src.index, To: dst.index})
	return nil
}
