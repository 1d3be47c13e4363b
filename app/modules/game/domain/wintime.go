package gamedomain

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultWindowMs int64 = 60000

	// winTimeStream is the fixed PCG stream selector. Changing it changes
	// every historic win time.
	winTimeStream uint64 = 0x1337

	defaultWinTimeCacheSize = 512
)

// DeriveWinTime is the pure mapping from an instance seed to its win offset
// in [0, windowMs].
func DeriveWinTime(seed int64, windowMs int64) int64 {
	if windowMs <= 0 {
		return 0
	}
	rng := rand.New(rand.NewPCG(uint64(seed), winTimeStream))
	return rng.Int64N(windowMs + 1)
}

// WinTimeGenerator memoizes DeriveWinTime per instance. The cache is bounded
// and evicts oldest-inserted entries first.
type WinTimeGenerator struct {
	windowMs   int64
	maxEntries int

	mu    sync.Mutex
	cache map[int64]int64
	order []int64
}

// NewWinTimeGenerator creates a generator. maxEntries <= 0 selects a default.
func NewWinTimeGenerator(windowMs int64, maxEntries int) *WinTimeGenerator {
	if maxEntries <= 0 {
		maxEntries = defaultWinTimeCacheSize
	}
	return &WinTimeGenerator{
		windowMs:   windowMs,
		maxEntries: maxEntries,
		cache:      make(map[int64]int64),
	}
}

func (g *WinTimeGenerator) WindowMs() int64 { return g.windowMs }

// WinTime returns the win offset for the instance, seeded by its epoch
// milliseconds.
func (g *WinTimeGenerator) WinTime(instanceStart time.Time) int64 {
	key := instanceStart.UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.cache[key]; ok {
		return v
	}

	v := DeriveWinTime(key, g.windowMs)
	g.cache[key] = v
	g.order = append(g.order, key)
	if len(g.order) > g.maxEntries {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.cache, oldest)
	}
	return v
}

// cached reports the number of memoized instances.
func (g *WinTimeGenerator) cached() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache)
}
