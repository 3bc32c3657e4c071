package mdb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// CachedCollection caches the richly-typed documents produced by the
// outgoing transform pass so that the same document is always returned.
// This is most useful for documents that change rarely.
type CachedCollection struct {
	*Collection
	cache       map[string]cacheEntry
	expireAfter time.Duration
}

type cacheEntry struct {
	item    interface{}
	expires time.Time
}

func NewCachedCollection(collection *Collection, expireAfter time.Duration) *CachedCollection {
	return &CachedCollection{
		Collection:  collection,
		cache:       make(map[string]cacheEntry),
		expireAfter: expireAfter,
	}
}

// Searchable locates a single document by cache key and filter.
// This supports keys that are not complete items.
type Searchable interface {
	CacheKey() string
	Filter() bson.D
}

// Create object in DB but not cache.
// The document is cached on the first Find.
func (c *CachedCollection) Create(item interface{}) error {
	return c.Collection.Create(item)
}

// Delete object in cache and DB.
func (c *CachedCollection) Delete(searchFor Searchable, idempotent bool) error {
	delete(c.cache, searchFor.CacheKey())
	return c.Collection.Delete(searchFor.Filter(), idempotent)
}

// InvalidateAll empties the cache without touching the DB.
func (c *CachedCollection) InvalidateAll() {
	c.cache = make(map[string]cacheEntry)
}

// Find a document in either cache or database.
// Documents coming from the database pass through the outgoing transform
// pipeline before being cached.
func (c *CachedCollection) Find(searchFor Searchable) (interface{}, error) {
	cacheKey := searchFor.CacheKey()
	if entry, found := c.cache[cacheKey]; found {
		if time.Now().Before(entry.expires) {
			return entry.item, nil
		}
		delete(c.cache, cacheKey)
	}

	item, err := c.Collection.Find(searchFor.Filter())
	if err != nil {
		return nil, err
	}
	c.cache[cacheKey] = cacheEntry{
		item:    item,
		expires: time.Now().Add(c.expireAfter),
	}

	return item, nil
}

// FindOrCreate returns an existing document or creates it if it does not already exist.
func (c *CachedCollection) FindOrCreate(searchFor Searchable, item interface{}) (interface{}, error) {
	found, err := c.Find(searchFor)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}

		err = c.Create(item)
		if err != nil {
			return nil, err
		}

		found, err = c.Find(searchFor)
		if err != nil {
			return nil, err
		}
	}

	return found, nil
}
