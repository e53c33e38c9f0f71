package agent

import (
	"sync"
	"time"
)

// submissionCache remembers scheduler job ids obtained by submissions
// whose "submitted" report has not yet been confirmed by the remote
// API. It is the guard against double submission: as long as an entry
// lives, the next cycle retries the report instead of running sbatch
// again. Entries expire after a TTL; the cache is memory-only, so a
// process restart between submission and report is the documented
// duplicate-submission window, bounded by the TTL.
type submissionCache struct {
	mtx     sync.Mutex
	ttl     time.Duration
	entries map[int64]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	slurmJobID string
	created    time.Time
}

func newSubmissionCache(ttl time.Duration) *submissionCache {
	return &submissionCache{
		ttl:     ttl,
		entries: map[int64]cacheEntry{},
		now:     time.Now,
	}
}

// get returns the cached scheduler job id for a job submission id.
// Expired entries are evicted on access.
func (c *submissionCache) get(id int64) (string, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(e.created) > c.ttl {
		delete(c.entries, id)
		return "", false
	}
	return e.slurmJobID, true
}

func (c *submissionCache) put(id int64, slurmJobID string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.entries[id] = cacheEntry{slurmJobID: slurmJobID, created: c.now()}
}

func (c *submissionCache) evict(id int64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	delete(c.entries, id)
}

// sweep drops all expired entries. Called once per reconciliation
// cycle so entries for jobs the API stopped listing don't pile up.
func (c *submissionCache) sweep() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.ttl <= 0 {
		return
	}
	cutoff := c.now().Add(-c.ttl)
	for id, e := range c.entries {
		if e.created.Before(cutoff) {
			delete(c.entries, id)
		}
	}
}

func (c *submissionCache) len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return len(c.entries)
}
