package hako

import (
	"reflect"
	"unsafe"

	"github.com/rotisserie/eris"
)

// Column is a type-erased, append-only array holding the values of exactly one
// component type inside one archetype. Indices are shared by every column of
// the archetype and are never compacted.
type Column interface {
	// ID returns the component ID this column holds.
	ID() ComponentID
	// Type returns the component's Go type.
	Type() reflect.Type
	// Len returns the number of allocated elements.
	Len() int
	// Allocate appends one zero-valued element and returns its index.
	Allocate() int
	// RawData returns a pointer to element 0, or nil when empty. It is valid
	// until the next Allocate.
	RawData() unsafe.Pointer
	// ElemSize returns the size in bytes of one element.
	ElemSize() uintptr
	// CopyFrom copies src[srcIndex] into dstIndex of the receiver.
	CopyFrom(src Column, srcIndex, dstIndex int) error
	// Zero resets the element at index to its zero value.
	Zero(index int)
	// Get returns a copy of the element at index.
	Get(index int) any
	// Set stores value at index. value must have the column's type.
	Set(index int, value any) error
}

// column is the Column implementation for a concrete element type T.
type column[T any] struct {
	data []T
	id   ComponentID
}

// NewColumn returns an empty column for T. It has the ColumnFactory signature.
func NewColumn[T any](id ComponentID) Column {
	return &column[T]{id: id}
}

func (c *column[T]) ID() ComponentID { return c.id }

func (c *column[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (c *column[T]) Len() int { return len(c.data) }

func (c *column[T]) Allocate() int {
	var zero T
	c.data = append(c.data, zero)
	return len(c.data) - 1
}

func (c *column[T]) RawData() unsafe.Pointer {
	if len(c.data) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(c.data))
}

func (c *column[T]) ElemSize() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func (c *column[T]) CopyFrom(src Column, srcIndex, dstIndex int) error {
	if src.ID() != c.id {
		return eris.Wrapf(ErrColumnMismatch, "copy component %d into %d", src.ID(), c.id)
	}
	if srcIndex < 0 || srcIndex >= src.Len() {
		return eris.Wrapf(ErrSlotOutOfRange, "source index %d (len %d)", srcIndex, src.Len())
	}
	if dstIndex < 0 || dstIndex >= len(c.data) {
		return eris.Wrapf(ErrSlotOutOfRange, "destination index %d (len %d)", dstIndex, len(c.data))
	}
	if s, ok := src.(*column[T]); ok {
		c.data[dstIndex] = s.data[srcIndex]
		return nil
	}
	// Columns from a custom factory only expose boxed values.
	v, ok := src.Get(srcIndex).(T)
	if !ok {
		return eris.Wrapf(ErrColumnMismatch, "copy %v into %v", src.Type(), c.Type())
	}
	c.data[dstIndex] = v
	return nil
}

func (c *column[T]) Zero(index int) {
	var zero T
	c.data[index] = zero
}

func (c *column[T]) Get(index int) any {
	return c.data[index]
}

func (c *column[T]) Set(index int, value any) error {
	v, ok := value.(T)
	if !ok {
		return eris.Wrapf(ErrColumnMismatch, "set %T into column of %v", value, c.Type())
	}
	if index < 0 || index >= len(c.data) {
		return eris.Wrapf(ErrSlotOutOfRange, "index %d (len %d)", index, len(c.data))
	}
	c.data[index] = v
	return nil
}

// at returns a pointer to the element at index.
func (c *column[T]) at(index int) *T {
	return &c.data[index]
}
