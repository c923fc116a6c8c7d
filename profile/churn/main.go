// Profiling:
// go build ./profile/churn
// ./churn -config workload.yaml
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn mem.pprof

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
}

func main() {
	path := flag.String("config", "", "workload YAML file")
	flag.Parse()

	cfg, err := workload.Load(*path)
	if err != nil {
		log.Fatalf("churn: %v", err)
	}
	log.Printf("churn: rounds=%d iterations=%d entities=%d churn=%.2f profile=%s",
		cfg.Rounds, cfg.Iterations, cfg.Entities, cfg.Churn, cfg.Profile)

	p := profile.Start(cfg.ProfileOptions()...)
	stats, err := run(cfg)
	p.Stop()
	if err != nil {
		log.Fatalf("churn: %v", err)
	}
	log.Printf("churn: done archetypes=%d entities=%d slots=%d free=%d",
		stats.Archetypes, stats.Entities, stats.Slots, stats.FreeSlots)
}

// run creates a population, then repeatedly migrates part of it into a third
// archetype and back and recycles another part through destroy and create.
func run(cfg workload.Config) (hako.Stats, error) {
	var last hako.Stats
	for range cfg.Rounds {
		types := hako.NewComponentTypes()
		c1 := hako.RegisterComponent[comp1](types)
		c2 := hako.RegisterComponent[comp2](types)
		hako.RegisterComponent[comp3](types)
		w := hako.NewWorld(types, cfg.Entities)

		b, err := hako.NewBuilder(w, c1, c2)
		if err != nil {
			return last, err
		}
		ents, err := b.NewEntities(cfg.Entities)
		if err != nil {
			return last, err
		}
		n := cfg.ChurnCount()
		for range cfg.Iterations {
			for i := 0; i < n; i++ {
				if err := hako.SetComponent(w, ents[i], comp3{V: int64(i)}); err != nil {
					return last, err
				}
			}
			for i := 0; i < n; i++ {
				if err := hako.RemoveComponent[comp3](w, ents[i]); err != nil {
					return last, err
				}
			}
			for i := len(ents) - n; i < len(ents); i++ {
				if err := w.DestroyEntity(ents[i]); err != nil {
					return last, err
				}
				if ents[i], err = b.NewEntity(); err != nil {
					return last, err
				}
			}
		}
		last = w.Stats()
	}
	return last, nil
}
