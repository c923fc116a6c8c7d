package hako

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Row is the cursor handed to query visitors. It addresses one slot of one
// archetype; term pointers are resolved once per archetype and indexed by
// slot. A Row is only valid inside the visitor call that received it.
type Row struct {
	query *Query
	arch  *Archetype
	bases []unsafe.Pointer // column base per term; nil for an absent optional term
	sizes []uintptr
	slot  int
}

func newRow(q *Query) *Row {
	return &Row{
		query: q,
		bases: make([]unsafe.Pointer, len(q.terms)),
		sizes: make([]uintptr, len(q.terms)),
	}
}

// bind resolves each term's column in a.
func (r *Row) bind(a *Archetype) {
	r.arch = a
	for i, t := range r.query.terms {
		col := a.Column(t.ID)
		if col == nil {
			r.bases[i] = nil
			r.sizes[i] = 0
			continue
		}
		if col.Type() != t.Type {
			panic(fmt.Sprintf("hako: column %d holds %v, term %d expects %v", t.ID, col.Type(), i, t.Type))
		}
		r.bases[i] = col.RawData()
		r.sizes[i] = col.ElemSize()
	}
}

// Entity returns the entity stored in the current slot.
func (r *Row) Entity() Entity {
	return r.arch.entities.data[r.slot]
}

// Slot returns the current slot index.
func (r *Row) Slot() int { return r.slot }

// Archetype returns the archetype being iterated.
func (r *Row) Archetype() *Archetype { return r.arch }

// Has reports whether term is present in the current archetype. Required terms
// are always present.
func (r *Row) Has(term int) bool {
	return r.bases[term] != nil
}

func (r *Row) ptr(term int) unsafe.Pointer {
	return unsafe.Add(r.bases[term], uintptr(r.slot)*r.sizes[term])
}

func checkTermType[T any](r *Row, term int) Term {
	if term < 0 || term >= len(r.query.terms) {
		panic(fmt.Sprintf("hako: term %d out of range (%d terms)", term, len(r.query.terms)))
	}
	t := r.query.terms[term]
	if want := reflect.TypeFor[T](); t.Type != want {
		panic(fmt.Sprintf("hako: term %d holds %v, not %v", term, t.Type, want))
	}
	return t
}

// Get returns a copy of term's value in the current slot. ok is false when the
// term is optional and the archetype lacks it.
func Get[T any](r *Row, term int) (value T, ok bool) {
	checkTermType[T](r, term)
	if r.bases[term] == nil {
		return value, false
	}
	return *(*T)(r.ptr(term)), true
}

// Mut returns a pointer into column storage for a read-write term. It panics
// if the term was declared read-only or holds another type.
func Mut[T any](r *Row, term int) *T {
	t := checkTermType[T](r, term)
	if t.Access != ReadWrite {
		panic(fmt.Sprintf("hako: term %d (%v) is read-only", term, t.Type))
	}
	return (*T)(r.ptr(term))
}

// termPtr returns the pointer handed to typed visitors: column storage for
// read-write terms, scratch holding a copy for read-only terms, nil for an
// absent optional term.
func termPtr[T any](r *Row, term int, scratch *T) *T {
	if r.bases[term] == nil {
		return nil
	}
	p := (*T)(r.ptr(term))
	if r.query.terms[term].Access == ReadWrite {
		return p
	}
	*scratch = *p
	return scratch
}
