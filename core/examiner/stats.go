package examiner

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Stats are the aggregated figures of an examiner's calculations.
type Stats struct {
	Calculations      int             `json:"calculations"`
	TotalPapers       int             `json:"total_papers"`
	TotalStaff        int             `json:"total_staff"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	LastCalculationAt *time.Time      `json:"last_calculation_at"`
}

// StatsCache keeps computed Stats per examiner until they are invalidated.
// It is safe for concurrent use.
//
// Stats computed concurrently with an invalidation must not be cached: callers take a
// StatsToken with Begin before reading storage and store the result with SetIfCurrent.
type StatsCache struct {
	mu          sync.RWMutex
	entries     map[string]Stats
	generations map[string]uint64
	epoch       uint64 // bumped by Clear
}

// StatsToken identifies the cache state a computation started from.
type StatsToken struct {
	examinerID string
	generation uint64
	epoch      uint64
}

func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string]Stats), generations: make(map[string]uint64)}
}

func (c *StatsCache) Get(examinerID string) (Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[examinerID]
	return s, ok
}

func (c *StatsCache) Begin(examinerID string) StatsToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return StatsToken{examinerID: examinerID, generation: c.generations[examinerID], epoch: c.epoch}
}

// SetIfCurrent caches s unless the examiner's entry was invalidated since Begin.
func (c *StatsCache) SetIfCurrent(token StatsToken, s Stats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token.epoch != c.epoch || token.generation != c.generations[token.examinerID] {
		return false
	}
	c.entries[token.examinerID] = s
	return true
}

// Set caches s unconditionally.
func (c *StatsCache) Set(examinerID string, s Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[examinerID] = s
}

func (c *StatsCache) Invalidate(examinerIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range examinerIDs {
		delete(c.entries, id)
		c.generations[id]++
	}
}

func (c *StatsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Stats)
	c.generations = make(map[string]uint64)
	c.epoch++
}

func (c *StatsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
