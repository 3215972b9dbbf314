package native

import (
	"sync"
)

// symtab memoizes resolved symbol addresses within one loaded library,
// keyed by mangled name, so repeated lookups do not hit the dynamic
// loader again.
type symtab struct {
	addrs map[string]uintptr
	mu    sync.RWMutex
}

func newSymtab() *symtab {
	return &symtab{
		addrs: make(map[string]uintptr),
	}
}

func (s *symtab) get(symbol string) (uintptr, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr, ok := s.addrs[symbol]
	return addr, ok
}

func (s *symtab) put(symbol string, addr uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addrs[symbol] = addr
}

func (s *symtab) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.addrs)
}
