package dispatch

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ParseCache memoizes Dispatcher.Parse results keyed by the raw command
// string, the "precompile a command if it will be run often" optimization
// Dispatcher.Parse's own doc comment recommends callers perform themselves.
//
// A cache entry is tagged with the dispatcher's generation at the time it
// was stored. Dispatcher.Register bumps the generation, so an entry built
// against an older tree is discarded on next lookup rather than ever being
// returned stale — growing the command tree after commands are already
// flowing through a cache is a real scenario (plugins registering
// subcommands at startup) and must never serve a ParseResults computed
// against a tree that didn't yet have the new nodes.
//
// A cache hit still re-walks CanUse on every node along the cached path
// before being handed back (see Parse), since a RequireFn may depend on the
// calling context.Context (e.g. a permission check) rather than only on the
// tree shape, and that can legitimately differ from one caller to the next
// even against the same generation.
type ParseCache struct {
	cache *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	generation uint64
	results    *ParseResults
}

// NewParseCache returns a ParseCache of the given capacity. Capacity must
// be positive.
func NewParseCache(size int) *ParseCache {
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		panic(err)
	}
	return &ParseCache{cache: c}
}

// Parse returns the cached ParseResults for input against d if present,
// still valid for d's current tree shape, and the matched command path
// still CanUse under ctx. A miss (for any of those reasons) parses fresh
// through d and stores the result before returning it.
func (pc *ParseCache) Parse(d *Dispatcher, ctx context.Context, input string) *ParseResults {
	gen := d.generationOf()

	if entry, ok := pc.cache.Get(input); ok && entry.generation == gen {
		if nodesUsable(ctx, entry.results.Context) {
			return entry.results
		}
	}

	results := d.Parse(ctx, input)
	pc.cache.Add(input, cacheEntry{generation: gen, results: results})
	return results
}

// nodesUsable re-runs CanUse down a cached context's node chain (following
// Child through any redirect/fork hops), so a cache hit can never bypass a
// requirement the first parse happened to satisfy under a different ctx.
func nodesUsable(ctx context.Context, c *CommandContext) bool {
	for c != nil {
		for _, pn := range c.Nodes {
			if !pn.Node.CanUse(ctx) {
				return false
			}
		}
		c = c.Child
	}
	return true
}

// Len returns the number of entries currently cached.
func (pc *ParseCache) Len() int { return pc.cache.Len() }

// Purge evicts every cached entry.
func (pc *ParseCache) Purge() { pc.cache.Purge() }
