// Package cache keeps synthesized nudges so recurring situations reuse the
// same phrasing and audio instead of paying for another synthesis call.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync/atomic"

	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/types"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultSize = 20

	summaryPrefixRunes = 50
)

// Entry is the unit that gets cached. The message travels with its audio so
// the two never disagree.
type Entry struct {
	Audio       string  `json:"audio_base64"`
	DurationSec float64 `json:"duration_sec"`
	MessageText string  `json:"message_text"`
}

type PhraseCache struct {
	lru     *lru.Cache[string, Entry]
	size    int
	metrics *metrics.Provider

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func NewPhraseCache(size int, m *metrics.Provider) (*PhraseCache, error) {
	if size <= 0 {
		size = DefaultSize
	}

	c := &PhraseCache{size: size, metrics: m}
	l, err := lru.NewWithEvict[string, Entry](size, func(string, Entry) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Key normalises the inputs and hashes them to a fixed-width string
func Key(sender string, status types.TaskStatus, summary string) string {
	s := []rune(strings.ToLower(summary))
	if len(s) > summaryPrefixRunes {
		s = s[:summaryPrefixRunes]
	}
	raw := strings.ToLower(sender) + "|" + string(status) + "|" + string(s)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Summary is the activity description the cache is keyed on
func Summary(app, title string) string {
	return app + ": " + title
}

func (c *PhraseCache) Get(sender string, status types.TaskStatus, summary string) (Entry, bool) {
	e, ok := c.lru.Get(Key(sender, status, summary))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.metrics.CacheLookup(ok)
	return e, ok
}

// Peek looks up without touching recency or the hit counters
func (c *PhraseCache) Peek(sender string, status types.TaskStatus, summary string) (Entry, bool) {
	return c.lru.Peek(Key(sender, status, summary))
}

func (c *PhraseCache) Put(sender string, status types.TaskStatus, summary string, e Entry) {
	c.lru.Add(Key(sender, status, summary), e)
}

func (c *PhraseCache) Len() int {
	return c.lru.Len()
}

func (c *PhraseCache) Stats() types.CacheStats {
	return types.CacheStats{
		Size:      c.lru.Len(),
		MaxSize:   c.size,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
