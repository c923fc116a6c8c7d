package hako_test

import (
	"reflect"
	"slices"
	"testing"

	"github.com/edwinsyarief/hako"
	"github.com/rotisserie/eris"
)

// go test -run ^TestEach$ . -count 1
func TestEach(t *testing.T) {
	f := setupWorld(t)
	for i := range 10 {
		if _, err := f.world.CreateEntityWith(Position{X: float32(i)}, Velocity{VX: 1, VY: 2}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.world.CreateEntityWith(Position{X: 100}, Velocity{VX: 1, VY: 2}, Health{Max: 3}); err != nil {
		t.Fatal(err)
	}

	t.Run("Each1", func(t *testing.T) {
		q, err := f.world.Query(hako.Write[Position](f.types))
		if err != nil {
			t.Fatal(err)
		}
		n := 0
		if err := hako.Each1(q, func(_ hako.Entity, p *Position) { n++ }); err != nil {
			t.Fatal(err)
		}
		if n != 11 {
			t.Errorf("expected 11 visits, got %d", n)
		}
	})

	t.Run("Each2Writes", func(t *testing.T) {
		q, err := f.world.Query(hako.Write[Position](f.types), hako.Read[Velocity](f.types))
		if err != nil {
			t.Fatal(err)
		}
		err = hako.Each2(q, func(_ hako.Entity, p *Position, v *Velocity) {
			p.X += v.VX
			p.Y += v.VY
		})
		if err != nil {
			t.Fatal(err)
		}
		for row := range q.All() {
			p, _ := hako.Get[Position](row, 0)
			if p.Y != 2 {
				t.Errorf("entity %v: write through read-write term lost, got %+v", row.Entity(), p)
			}
		}
	})

	t.Run("Each3", func(t *testing.T) {
		q, err := f.world.Query(hako.Read[Position](f.types), hako.Read[Velocity](f.types), hako.Read[Health](f.types))
		if err != nil {
			t.Fatal(err)
		}
		var got []int
		err = hako.Each3(q, func(_ hako.Entity, _ *Position, _ *Velocity, h *Health) {
			got = append(got, h.Max)
		})
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, []int{3}) {
			t.Errorf("got %v", got)
		}
	})
}

// go test -run ^TestReadOnlyTermsSeeCopies$ . -count 1
func TestReadOnlyTermsSeeCopies(t *testing.T) {
	f := setupWorld(t)
	e, err := f.world.CreateEntityWith(Position{X: 1}, Velocity{VX: 2})
	if err != nil {
		t.Fatal(err)
	}
	q, err := f.world.Query(hako.Read[Position](f.types), hako.Write[Velocity](f.types))
	if err != nil {
		t.Fatal(err)
	}
	err = hako.Each2(q, func(_ hako.Entity, p *Position, v *Velocity) {
		p.X = 99
		v.VX = 42
	})
	if err != nil {
		t.Fatal(err)
	}
	if p := hako.GetComponent[Position](f.world, e); p.X != 1 {
		t.Errorf("write through a read-only term reached storage: %+v", p)
	}
	if v := hako.GetComponent[Velocity](f.world, e); v.VX != 42 {
		t.Errorf("write through a read-write term was lost: %+v", v)
	}
}

// go test -run ^TestMut$ . -count 1
func TestMut(t *testing.T) {
	f := setupWorld(t)
	e, err := f.world.CreateEntityWith(Position{X: 1}, Velocity{VX: 2})
	if err != nil {
		t.Fatal(err)
	}
	q, err := f.world.Query(hako.Write[Position](f.types), hako.Read[Velocity](f.types))
	if err != nil {
		t.Fatal(err)
	}
	q.ForEach(func(row *hako.Row) {
		hako.Mut[Position](row, 0).X = 7
	})
	if p := hako.GetComponent[Position](f.world, e); p.X != 7 {
		t.Errorf("Mut did not write storage: %+v", p)
	}

	t.Run("ReadOnlyTermPanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for Mut on a read-only term")
			}
		}()
		q.ForEach(func(row *hako.Row) {
			_ = hako.Mut[Velocity](row, 1)
		})
	})

	t.Run("WrongTypePanics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for a mismatched term type")
			}
		}()
		q.ForEach(func(row *hako.Row) {
			_, _ = hako.Get[Health](row, 0)
		})
	})

	if f.world.Traversing() {
		t.Error("guard still armed after recovered panics")
	}
}

// go test -run ^TestOptionalWriteRejected$ . -count 1
func TestOptionalWriteRejected(t *testing.T) {
	f := setupWorld(t)
	term := hako.Optional[Velocity](f.types)
	term.Access = hako.ReadWrite
	if _, err := f.world.Query(hako.Read[Position](f.types), term); !eris.Is(err, hako.ErrOptionalWrite) {
		t.Errorf("expected ErrOptionalWrite, got %v", err)
	}
}

// go test -run ^TestTermMismatch$ . -count 1
func TestTermMismatch(t *testing.T) {
	f := setupWorld(t)
	q, err := f.world.Query(hako.Read[Position](f.types))
	if err != nil {
		t.Fatal(err)
	}
	if err := hako.Each1(q, func(hako.Entity, *Velocity) {}); !eris.Is(err, hako.ErrTermMismatch) {
		t.Errorf("wrong type: expected ErrTermMismatch, got %v", err)
	}
	if err := hako.Each2(q, func(hako.Entity, *Position, *Velocity) {}); !eris.Is(err, hako.ErrTermMismatch) {
		t.Errorf("too few terms: expected ErrTermMismatch, got %v", err)
	}
	if f.world.Traversing() {
		t.Error("a rejected visitor must not arm the guard")
	}
}

// go test -run ^TestQueryFilters$ . -count 1
func TestQueryFilters(t *testing.T) {
	f := setupWorld(t)
	p := mustCreate(t, f.world, f.pos)
	pv := mustCreate(t, f.world, f.pos, f.vel)
	ph := mustCreate(t, f.world, f.pos, f.hp)
	pt := mustCreate(t, f.world, f.pos, f.tag)
	mustCreate(t, f.world, f.vel)

	newQuery := func() *hako.Query {
		q, err := f.world.Query(hako.Read[Position](f.types))
		if err != nil {
			t.Fatal(err)
		}
		return q
	}
	tests := []struct {
		name  string
		setup func(q *hako.Query)
		want  []hako.Entity
	}{
		{"Terms", func(*hako.Query) {}, []hako.Entity{p, pv, ph, pt}},
		{"With", func(q *hako.Query) { q.With(f.vel) }, []hako.Entity{pv}},
		{"Without", func(q *hako.Query) { q.Without(f.vel, f.hp) }, []hako.Entity{p, pt}},
		{"AnyOf", func(q *hako.Query) { q.AnyOf(f.hp, f.tag) }, []hako.Entity{ph, pt}},
		{"AnyOfWidens", func(q *hako.Query) { q.AnyOf(f.hp).AnyOf(f.vel) }, []hako.Entity{pv, ph}},
		{"FiltersAccumulate", func(q *hako.Query) { q.Without(f.vel).Without(f.hp) }, []hako.Entity{p, pt}},
		{"Contradiction", func(q *hako.Query) { q.With(f.vel).Without(f.vel) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newQuery()
			tt.setup(q)
			got := q.Entities()
			if q.Count() != len(tt.want) {
				t.Errorf("Count = %d, want %d", q.Count(), len(tt.want))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Entities = %v, want %v", got, tt.want)
			}
			for _, e := range tt.want {
				if !slices.Contains(got, e) {
					t.Errorf("missing %v in %v", e, got)
				}
			}
		})
	}
}

// go test -run ^TestQuerySeesNewArchetypes$ . -count 1
func TestQuerySeesNewArchetypes(t *testing.T) {
	f := setupWorld(t)
	q, err := f.world.Query(hako.Read[Position](f.types))
	if err != nil {
		t.Fatal(err)
	}
	if q.Count() != 0 || len(q.Archetypes()) != 0 {
		t.Fatal("expected an empty result before any entity exists")
	}
	mustCreate(t, f.world, f.pos, f.hp)
	if q.Count() != 1 || len(q.Archetypes()) != 1 {
		t.Errorf("query missed an archetype created after it: count %d", q.Count())
	}
}

// go test -run ^TestQuerySkipsFreeSlots$ . -count 1
func TestQuerySkipsFreeSlots(t *testing.T) {
	f := setupWorld(t)
	ents, err := f.world.CreateEntities(6, f.pos)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 3, 5} {
		if err := f.world.DestroyEntity(ents[i]); err != nil {
			t.Fatal(err)
		}
	}
	q, err := f.world.Query(hako.Read[Position](f.types))
	if err != nil {
		t.Fatal(err)
	}
	want := []hako.Entity{ents[1], ents[2], ents[4]}
	if got := q.Entities(); !slices.Equal(got, want) {
		t.Errorf("Entities = %v, want %v", got, want)
	}
}

// go test -run ^TestQueryRejectsForeignTermTypes$ . -count 1
func TestQueryRejectsForeignTermTypes(t *testing.T) {
	f := setupWorld(t)
	mustCreate(t, f.world, f.pos)
	type wide struct{ Data [64]byte }

	other := hako.NewComponentTypes()
	hako.RegisterComponent[Velocity](other)

	tests := []struct {
		name string
		term hako.Term
	}{
		{"TypeDisagreesWithID", hako.Term{ID: f.pos, Type: reflect.TypeFor[wide](), Access: hako.ReadWrite}},
		{"MissingType", hako.Term{ID: f.pos, Access: hako.ReadOnly}},
		{"OtherRegistry", hako.Read[Position](other)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.world.Query(tt.term); !eris.Is(err, hako.ErrTermMismatch) {
				t.Errorf("expected ErrTermMismatch, got %v", err)
			}
		})
	}

	same := hako.NewComponentTypes()
	hako.RegisterComponent[Position](same)
	q, err := f.world.Query(hako.Read[Position](same))
	if err != nil {
		t.Fatalf("a registry with identical ids must be accepted: %v", err)
	}
	if q.Count() != 1 {
		t.Errorf("Count = %d, want 1", q.Count())
	}
}
