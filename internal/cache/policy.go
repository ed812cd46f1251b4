package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/terraconstructs/iamcore/internal/policydoc"
)

// policyDocEntry pairs a parsed document with the row version it was
// parsed from, so a stale cache hit can be detected without reparsing.
type policyDocEntry struct {
	doc       *policydoc.Document
	updatedAt int64
}

// PolicyDocumentCache is an LRU cache of parsed policy documents, keyed by
// policy ID. Policy documents are parsed once and reused across every
// authorization check that references them, instead of unmarshaling JSON
// on every evaluation.
type PolicyDocumentCache struct {
	lru *lru.Cache[string, policyDocEntry]
}

// NewPolicyDocumentCache builds a PolicyDocumentCache holding at most size
// parsed documents, evicting least-recently-used entries beyond that.
func NewPolicyDocumentCache(size int) (*PolicyDocumentCache, error) {
	l, err := lru.New[string, policyDocEntry](size)
	if err != nil {
		return nil, err
	}
	return &PolicyDocumentCache{lru: l}, nil
}

// Get returns the cached document for policyID if present and stamped
// with the given updatedAt (as a Unix timestamp), so an edited policy
// doesn't serve a stale parse.
func (c *PolicyDocumentCache) Get(policyID string, updatedAt int64) (*policydoc.Document, bool) {
	entry, ok := c.lru.Get(policyID)
	if !ok || entry.updatedAt != updatedAt {
		return nil, false
	}
	return entry.doc, true
}

// Put stores a parsed document, replacing any existing entry for policyID.
func (c *PolicyDocumentCache) Put(policyID string, updatedAt int64, doc *policydoc.Document) {
	c.lru.Add(policyID, policyDocEntry{doc: doc, updatedAt: updatedAt})
}

// Invalidate removes a cached document, e.g. after a policy is deleted.
func (c *PolicyDocumentCache) Invalidate(policyID string) {
	c.lru.Remove(policyID)
}

// Len reports the number of cached entries, mainly for tests and metrics.
func (c *PolicyDocumentCache) Len() int {
	return c.lru.Len()
}
