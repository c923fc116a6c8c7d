package hako_test

import (
	"fmt"

	"github.com/edwinsyarief/hako"
)

type Mass struct{ Kg float64 }

type Thrust struct{ N float64 }

func Example() {
	types := hako.NewComponentTypes()
	mass := hako.RegisterComponent[Mass](types)
	hako.RegisterComponent[Thrust](types)
	w := hako.NewWorld(types, 8)

	ship, _ := w.CreateEntityWith(Mass{Kg: 2}, Thrust{N: 10})
	rock, _ := w.CreateEntity(mass)

	q, _ := w.Query(hako.Read[Mass](types), hako.Optional[Thrust](types))
	q.ForEach(func(row *hako.Row) {
		m, _ := hako.Get[Mass](row, 0)
		if th, ok := hako.Get[Thrust](row, 1); ok {
			fmt.Printf("%v accelerates at %.1f\n", row.Entity() == ship, th.N/m.Kg)
			return
		}
		fmt.Printf("%v drifts\n", row.Entity() == rock)
	})

	// Structural changes are refused while a query is running.
	q.ForEach(func(row *hako.Row) {
		if err := w.DestroyEntity(row.Entity()); err != nil {
			fmt.Println("destroy refused during traversal")
		}
	})
	// Output:
	// true accelerates at 5.0
	// true drifts
	// destroy refused during traversal
	// destroy refused during traversal
}
