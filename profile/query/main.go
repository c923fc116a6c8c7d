// Profiling:
// go build ./profile/query
// ./query -config workload.yaml
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"flag"
	"log"

	"github.com/edwinsyarief/hako"
	"github.com/edwinsyarief/hako/internal/workload"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

type comp3 struct {
	V int64
	W int64
}

type comp4 struct {
	V int64
	W int64
}

func main() {
	path := flag.String("config", "", "workload YAML file")
	flag.Parse()

	cfg, err := workload.Load(*path)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	log.Printf("query: rounds=%d iterations=%d entities=%d profile=%s",
		cfg.Rounds, cfg.Iterations, cfg.Entities, cfg.Profile)

	p := profile.Start(cfg.ProfileOptions()...)
	sum, err := run(cfg)
	p.Stop()
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	log.Printf("query: done checksum=%d", sum)
}

// run spreads the population over two archetypes, one with an extra optional
// component, and iterates both with a write term, a read term and an optional
// term.
func run(cfg workload.Config) (int64, error) {
	var sum int64
	for range cfg.Rounds {
		types := hako.NewComponentTypes()
		c1 := hako.RegisterComponent[comp1](types)
		c2 := hako.RegisterComponent[comp2](types)
		c3 := hako.RegisterComponent[comp3](types)
		c4 := hako.RegisterComponent[comp4](types)
		w := hako.NewWorld(types, cfg.Entities)

		half := cfg.Entities / 2
		if _, err := w.CreateEntities(half, c1, c2, c4); err != nil {
			return 0, err
		}
		if _, err := w.CreateEntities(cfg.Entities-half, c1, c2, c3, c4); err != nil {
			return 0, err
		}
		q, err := w.Query(
			hako.Write[comp1](types),
			hako.Read[comp2](types),
			hako.Optional[comp3](types),
		)
		if err != nil {
			return 0, err
		}
		for range cfg.Iterations {
			err := hako.Each3(q, func(_ hako.Entity, a *comp1, b *comp2, c *comp3) {
				a.V += b.V + 1
				a.W += b.W
				if c != nil {
					a.W += c.W
				}
			})
			if err != nil {
				return 0, err
			}
		}
		q.ForEach(func(row *hako.Row) {
			v, _ := hako.Get[comp1](row, 0)
			sum += v.V
		})
	}
	return sum, nil
}
