package paginate

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache retains recently built anchor maps keyed by document and layout
// hash, so flipping back to recent parameters skips a full repagination.
type Cache struct {
	c *gocache.Cache
}

// NewCache returns a map cache whose entries expire after ttl. A
// non-positive ttl keeps entries until the process exits.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Cache{c: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached map for a document and parameter hash.
func (k *Cache) Get(docID, paramsHash string) (*AnchorMap, bool) {
	v, ok := k.c.Get(docID + "/" + paramsHash)
	if !ok {
		return nil, false
	}
	return v.(*AnchorMap), true
}

// Put stores a built map under its own document and parameter hash.
func (k *Cache) Put(m *AnchorMap) {
	k.c.Set(m.DocumentID+"/"+m.ParamsHash, m, gocache.DefaultExpiration)
}
