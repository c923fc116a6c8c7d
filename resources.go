package hako

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Resources holds world-wide singletons that are not attached to any entity,
// such as a frame clock or a spatial index built from query results. At most
// one resource per type is stored. Removed IDs are recycled.
//
// Resources are not structural: they may be added and removed while a query
// traversal is active.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

// Add stores res, which must be a non-nil pointer, and returns its ID. It fails
// with ErrDuplicateResource if a resource of the same type is already present.
func (r *Resources) Add(res any) (int, error) {
	t := reflect.TypeOf(res)
	if t == nil || t.Kind() != reflect.Pointer || reflect.ValueOf(res).IsNil() {
		return -1, eris.Errorf("add resource: want a non-nil pointer, got %T", res)
	}
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if _, ok := r.types[t]; ok {
		return -1, eris.Wrapf(ErrDuplicateResource, "add resource %v", t)
	}
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.items[id] = res
	} else {
		id = len(r.items)
		r.items = append(r.items, res)
	}
	r.types[t] = id
	return id, nil
}

// Has reports whether id refers to a stored resource.
func (r *Resources) Has(id int) bool {
	return id >= 0 && id < len(r.items) && r.items[id] != nil
}

// Get returns the resource stored under id, or nil.
func (r *Resources) Get(id int) any {
	if !r.Has(id) {
		return nil
	}
	return r.items[id]
}

// Remove drops the resource stored under id. Unknown IDs are ignored.
func (r *Resources) Remove(id int) {
	if !r.Has(id) {
		return
	}
	delete(r.types, reflect.TypeOf(r.items[id]))
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.types)
}

// Clear removes every resource.
func (r *Resources) Clear() {
	clear(r.items)
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// Resources returns the world's resource store.
func (w *World) Resources() *Resources {
	return &w.resources
}

// AddResource stores res as the world's singleton of type T.
func AddResource[T any](w *World, res *T) (int, error) {
	return w.resources.Add(res)
}

// GetResource returns the world's singleton of type T and its ID, or nil and
// -1 if none is stored.
func GetResource[T any](w *World) (*T, int) {
	id, ok := w.resources.types[reflect.TypeFor[*T]()]
	if !ok {
		return nil, -1
	}
	return w.resources.items[id].(*T), id
}

// RemoveResource drops the world's singleton of type T, reporting whether one
// was stored.
func RemoveResource[T any](w *World) bool {
	_, id := GetResource[T](w)
	if id < 0 {
		return false
	}
	w.resources.Remove(id)
	return true
}
