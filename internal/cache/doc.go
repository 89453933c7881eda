// Package cache holds the listing cache used to accelerate task listings.
// Entries are read-through copies of store results and are never the source
// of truth: a miss or an error always falls back to the durable store.
package cache
