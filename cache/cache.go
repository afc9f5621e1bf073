// Package cache implements the dispatch core's negative-cache
// collaborator (spec.md §4.5): a short-TTL, strictly advisory map used to
// filter out recently-reaped entries before they reach the strongly
// consistent store. Three backends are provided: MemcacheCache (the
// production backend, mirroring the Python original's literal use of App
// Engine memcache), RedisCache (an alternate production backend), and
// LocalCache (an in-process fallback for tests and the demo CLI).
package cache

import "time"

// DefaultTTL is the negative cache entry lifetime (spec.md §4.5):
// generous enough to absorb index staleness, short enough not to clog
// the cache server with unneeded keys.
const DefaultTTL = 120 * time.Second

// Namespace scopes all keys this package writes, so a shared
// memcache/redis instance can be used for other purposes too.
const Namespace = "task_to_run"

// ShortTTLCache is the negative cache contract.
type ShortTTLCache interface {
	// MarkTaken records that id was just reaped, for the backend's TTL
	// (DefaultTTL unless overridden with WithTTL). Reap and Abort call this.
	MarkTaken(id string) error
	// MarkAvailable removes id from the cache (Retry calls this).
	MarkAvailable(id string) error
	// IsTaken reports whether id is believed to be currently taken.
	// Absence is not an error: it simply means "not taken" (spec.md
	// §4.5).
	IsTaken(id string) (bool, error)
}

func namespacedKey(id string) string {
	return Namespace + ":" + id
}
