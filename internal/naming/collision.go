package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output paths claimed by work units and resolves
// duplicates by appending "_dupN" suffixes, so two movies whose frame names
// trim to the same stem cannot overwrite each other's stack. It is used
// sequentially within a single run. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output path → unit key that owns it
	counters map[string]int    // base output path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output path for the unit identified by key,
// handling collisions. If requestedOutput is unclaimed (or already owned by
// key), it is returned as-is. Otherwise a "_dupN" variant is generated.
func (cr *CollisionResolver) Resolve(key, requestedOutput string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requestedOutput]
	if !exists || owner == key {
		cr.owners[requestedOutput] = key
		return requestedOutput
	}

	dir := filepath.Dir(requestedOutput)
	base := filepath.Base(requestedOutput)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requestedOutput]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == key {
			cr.counters[requestedOutput] = counter + 1
			cr.owners[candidate] = key
			return candidate
		}
		counter++
	}
}
