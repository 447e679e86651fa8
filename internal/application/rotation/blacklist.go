package rotation

import "sync"

// Blacklist is the process-wide set of unreachable map content. A NoPathError
// from movement marks its (content type, code) here; every character consults
// it before planning work around that content.
type Blacklist struct {
	mu      sync.Mutex
	entries map[string]bool
}

// NewBlacklist creates an empty blacklist
func NewBlacklist() *Blacklist {
	return &Blacklist{entries: make(map[string]bool)}
}

func blacklistKey(contentType, code string) string {
	return contentType + ":" + code
}

// Mark records content as unreachable
func (b *Blacklist) Mark(contentType, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[blacklistKey(contentType, code)] = true
}

// Unreachable reports whether content was marked unreachable
func (b *Blacklist) Unreachable(contentType, code string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries[blacklistKey(contentType, code)]
}
