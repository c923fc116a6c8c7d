package hako

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

// Access states whether a query term may write to its component.
type Access uint8

const (
	// ReadOnly terms see a copy of the stored value.
	ReadOnly Access = iota
	// ReadWrite terms address column storage directly.
	ReadWrite
)

func (a Access) String() string {
	if a == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Term declares one parameter of a query visitor: which component it reads,
// whether it may write it, and whether archetypes lacking it still match.
type Term struct {
	Type     reflect.Type
	ID       ComponentID
	Access   Access
	Optional bool
}

// Read declares a required read-only term for T.
func Read[T any](c *ComponentTypes) Term {
	return Term{ID: IDOf[T](c), Type: reflect.TypeFor[T](), Access: ReadOnly}
}

// Write declares a required read-write term for T.
func Write[T any](c *ComponentTypes) Term {
	return Term{ID: IDOf[T](c), Type: reflect.TypeFor[T](), Access: ReadWrite}
}

// Optional declares a read-only term for T that does not restrict matching.
// Rows from archetypes without T report the term as absent.
func Optional[T any](c *ComponentTypes) Term {
	return Term{ID: IDOf[T](c), Type: reflect.TypeFor[T](), Access: ReadOnly, Optional: true}
}

func (t Term) validate() error {
	if t.Optional && t.Access == ReadWrite {
		return eris.Wrapf(ErrOptionalWrite, "term %v", t.Type)
	}
	if t.ID == EntityComponentID {
		return eris.Wrap(ErrUnknownComponent, "entity handles are not query terms")
	}
	return nil
}

// Query selects archetypes by component sets and iterates their live slots.
// Filters only ever grow: With, Without and AnyOf add to the existing sets.
//
// Iteration arms the world's traversal guard, so the visitor may read and
// write component values but any structural change fails with
// ErrTraversalActive until iteration ends.
type Query struct {
	world        *World
	terms        []Term
	required     ComponentSet // explicit With plus non-optional terms
	excluded     ComponentSet
	atLeastOne   ComponentSet
	termRequired ComponentSet
}

// Query builds a query whose visitor parameters are described by terms. Every
// non-optional term is added to the required set. An optional term declared
// read-write is rejected with ErrOptionalWrite, and a term whose Type is not
// the type the world's registry holds under its ID is rejected with
// ErrTermMismatch.
func (w *World) Query(terms ...Term) (*Query, error) {
	q := &Query{
		world: w,
		terms: append([]Term(nil), terms...),
	}
	for i, t := range terms {
		if err := t.validate(); err != nil {
			return nil, eris.Wrap(err, "build query")
		}
		if got := w.components.Type(t.ID); t.Type == nil || got != t.Type {
			return nil, eris.Wrapf(ErrTermMismatch, "build query: term %d declares %v, component %d is %v", i, t.Type, t.ID, got)
		}
		if !t.Optional {
			q.termRequired.Set(t.ID)
		}
	}
	q.required = q.termRequired
	return q, nil
}

// With requires the given components without binding them to terms.
func (q *Query) With(ids ...ComponentID) *Query {
	q.required = q.required.Union(filterSet(ids))
	return q
}

// Without excludes archetypes holding any of the given components.
func (q *Query) Without(ids ...ComponentID) *Query {
	q.excluded = q.excluded.Union(filterSet(ids))
	return q
}

// AnyOf requires at least one of the given components. Calling it again widens
// the alternatives.
func (q *Query) AnyOf(ids ...ComponentID) *Query {
	q.atLeastOne = q.atLeastOne.Union(filterSet(ids))
	return q
}

func filterSet(ids []ComponentID) ComponentSet {
	s := NewComponentSet(ids...)
	s.Unset(EntityComponentID)
	return s
}

// Terms returns the query's declared terms.
func (q *Query) Terms() []Term { return q.terms }

// Required returns the required set, including ids inferred from terms.
func (q *Query) Required() ComponentSet { return q.required }

// Excluded returns the excluded set.
func (q *Query) Excluded() ComponentSet { return q.excluded }

// Matches reports whether the query visits archetype a.
func (q *Query) Matches(a *Archetype) bool {
	return a.Matches(q.required, q.excluded, q.atLeastOne)
}

// Archetypes returns the archetypes the query currently matches.
func (q *Query) Archetypes() []*Archetype {
	var out []*Archetype
	for _, a := range q.world.archetypes.archetypes {
		if q.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// All returns an iterator over every live slot of every matching archetype.
// The yielded Row is reused between iterations and must not be retained.
func (q *Query) All() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		w := q.world
		w.BeginTraversal()
		defer w.EndTraversal()
		row := newRow(q)
		for _, a := range w.archetypes.archetypes {
			if !q.Matches(a) || a.Len() == 0 {
				continue
			}
			row.bind(a)
			cont := a.eachSlot(func(slot int) bool {
				row.slot = slot
				return yield(row)
			})
			if !cont {
				return
			}
		}
	}
}

// ForEach calls visitor once per live slot of every matching archetype.
func (q *Query) ForEach(visitor func(row *Row)) {
	for row := range q.All() {
		visitor(row)
	}
}

// Count returns the number of live entities the query matches.
func (q *Query) Count() int {
	n := 0
	for _, a := range q.world.archetypes.archetypes {
		if q.Matches(a) {
			n += a.Len()
		}
	}
	return n
}

// Entities returns the matching entities in iteration order.
func (q *Query) Entities() []Entity {
	out := make([]Entity, 0, q.Count())
	for row := range q.All() {
		out = append(out, row.Entity())
	}
	return out
}

// checkTerms verifies that the first len(types) terms hold exactly types.
func (q *Query) checkTerms(types ...reflect.Type) error {
	if len(q.terms) < len(types) {
		return eris.Wrapf(ErrTermMismatch, "query declares %d terms, visitor takes %d", len(q.terms), len(types))
	}
	for i, t := range types {
		if q.terms[i].Type != t {
			return eris.Wrapf(ErrTermMismatch, "term %d holds %v, visitor takes %v", i, q.terms[i].Type, t)
		}
	}
	return nil
}
