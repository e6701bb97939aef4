package track

import (
	"encoding/json"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
)

// IDGenerator hands out process-wide monotonically increasing integer IDs
// for entries and projects. The counter is loaded from the persisted store
// at construction and persisted on every allocation.
//
// Next is valid before Resync has run; it falls back to whatever counter is
// in memory. Resync advances the counter past the highest ID seen in loaded
// data, which is what makes backup restore safe.
type IDGenerator struct {
	store   kv.Store
	log     *logger.Logger
	counter int64
}

func NewIDGenerator(store kv.Store, log *logger.Logger) *IDGenerator {
	g := &IDGenerator{store: store, log: log, counter: 1}

	data, ok, err := store.Get(kv.KeyIDCounter)
	if err != nil {
		log.Warn("id counter load failed", logger.F("err", err))
		return g
	}
	if ok {
		var c int64
		if err := json.Unmarshal(data, &c); err != nil || c < 1 {
			log.Warn("id counter corrupt, starting at 1")
			return g
		}
		g.counter = c
	}
	return g
}

// Next allocates the next ID and persists the advanced counter.
func (g *IDGenerator) Next() int64 {
	id := g.counter
	g.counter++
	g.save()
	return id
}

// Current returns the counter without advancing it.
func (g *IDGenerator) Current() int64 {
	return g.counter
}

// Reset sets the counter to v (minimum 1).
func (g *IDGenerator) Reset(v int64) {
	if v < 1 {
		v = 1
	}
	g.counter = v
	g.save()
}

// Resync scans both collections for the highest ID and advances the counter
// past it if needed. Call after importing foreign data, before any allocation.
func (g *IDGenerator) Resync(projects []Project, entries []TimeEntry) {
	var highest int64
	for _, p := range projects {
		if p.ID > highest {
			highest = p.ID
		}
	}
	for _, e := range entries {
		if e.ID > highest {
			highest = e.ID
		}
	}
	if highest >= g.counter {
		g.counter = highest + 1
		g.save()
	}
}

func (g *IDGenerator) save() {
	data, _ := json.Marshal(g.counter)
	if err := g.store.Set(kv.KeyIDCounter, data); err != nil {
		g.log.Warn("id counter persist failed", logger.F("err", err))
	}
}
