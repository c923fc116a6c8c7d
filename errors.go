package hako

import "github.com/rotisserie/eris"

var (
	// ErrUnregisteredComponent is returned when an archetype needs a column for a
	// component type that has no registered column factory.
	ErrUnregisteredComponent = eris.New("unregistered component type")

	// ErrUnknownComponent is returned when a value's type has never been seen by
	// the component registry.
	ErrUnknownComponent = eris.New("unknown component type")

	// ErrTraversalActive is returned by every structural mutation attempted while
	// a query traversal over the same world is in progress.
	ErrTraversalActive = eris.New("structural change during active traversal")

	// ErrSlotAlreadyFree is returned when releasing a slot that is already free.
	ErrSlotAlreadyFree = eris.New("slot already free")

	// ErrSlotOutOfRange is returned for slot indices that were never allocated.
	ErrSlotOutOfRange = eris.New("slot out of range")

	// ErrStaleEntity is returned for handles whose entity was destroyed or never
	// existed in this world.
	ErrStaleEntity = eris.New("stale entity handle")

	// ErrOptionalWrite is returned when a query term is both optional and writable.
	ErrOptionalWrite = eris.New("optional term must be read-only")

	// ErrColumnMismatch is returned when copying between columns of different
	// component types.
	ErrColumnMismatch = eris.New("column component mismatch")

	// ErrTermMismatch is returned when a typed iteration helper does not agree
	// with the query's declared terms.
	ErrTermMismatch = eris.New("query term mismatch")

	// ErrDuplicateResource is returned when a world already holds a resource of
	// the same type.
	ErrDuplicateResource = eris.New("resource of the same type already exists")
)
