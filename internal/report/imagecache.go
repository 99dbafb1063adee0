package report

import (
	"sync"
	"time"
)

const DefaultImageTTL = 60 * time.Second

type imageEntry struct {
	createdAt time.Time
	images    [][]byte
}

// ImageCache holds rendered chart sets for a short while so a repeated
// request does not re-render. Reads return copies.
type ImageCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]imageEntry
}

func NewImageCache(ttl time.Duration) *ImageCache {
	if ttl <= 0 {
		ttl = DefaultImageTTL
	}
	return &ImageCache{ttl: ttl, now: time.Now, entries: map[string]imageEntry{}}
}

func (c *ImageCache) Get(key string) ([][]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.createdAt.Add(c.ttl)) {
		delete(c.entries, key)
		return nil, false
	}
	return cloneImages(entry.images), true
}

func (c *ImageCache) Set(key string, images [][]byte) {
	c.mu.Lock()
	c.entries[key] = imageEntry{createdAt: c.now(), images: cloneImages(images)}
	c.mu.Unlock()
}

func cloneImages(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, img := range in {
		out[i] = append([]byte(nil), img...)
	}
	return out
}
