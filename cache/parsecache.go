// Package cache implements the content-hash-keyed parse-tree cache that
// lets a disk file re-touched with unchanged bytes skip re-parsing
// entirely (spec.md §4.4's diskPHash short circuit, §8's round-trip
// property).
package cache

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ParseCache is an LRU of (URI, content hash) → parsed result, sized at
// construction. Keyed on the pair rather than URI alone because two
// distinct files can legitimately share identical content (templated or
// generated source) — keying on hash alone would let one evict the other's
// entry for no reason. Trees are stored as `any`: this package sits below
// pipeline in the dependency graph (pipeline depends on cache, not the
// reverse), so it cannot name pipeline's concrete ParseTree type; callers
// cast on the way out.
type ParseCache struct {
	lru *lru.Cache[key, any]
}

type key struct {
	uri  string
	hash [sha256.Size]byte
}

// New creates a ParseCache holding up to size entries. Grounded on
// hashicorp/golang-lru/v2's constructor shape, matching the pack's own use
// of it for a content-addressed artifact cache.
func New(size int) (*ParseCache, error) {
	l, err := lru.New[key, any](size)
	if err != nil {
		return nil, err
	}
	return &ParseCache{lru: l}, nil
}

// Hash computes the SHA-256 fingerprint of a file's byte stream (spec.md
// §4.4, §6: "SHA-256 of the byte stream is the on-disk change fingerprint").
func Hash(bytes []byte) [sha256.Size]byte {
	return sha256.Sum256(bytes)
}

// Get returns the cached parse tree for (uri, hash), if present.
func (c *ParseCache) Get(uri string, hash [sha256.Size]byte) (any, bool) {
	return c.lru.Get(key{uri: uri, hash: hash})
}

// Put records the parse tree produced for (uri, hash).
func (c *ParseCache) Put(uri string, hash [sha256.Size]byte, tree any) {
	c.lru.Add(key{uri: uri, hash: hash}, tree)
}

// Invalidate removes every cached entry for uri, across all hashes seen for
// it. Called when a file's FileState is destroyed (it vanished from disk
// with no Opened content left), so a stale tree can't resurface if the same
// URI reappears later with old bytes.
func (c *ParseCache) Invalidate(uri string) {
	for _, k := range c.lru.Keys() {
		if k.uri == uri {
			c.lru.Remove(k)
		}
	}
}
